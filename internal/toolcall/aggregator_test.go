package toolcall

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sibylline/llmbridge/llmtypes"
)

func TestAggregator_ByID(t *testing.T) {
	a := New()
	a.Add(llmtypes.ToolCallDelta{ID: "c1", FunctionName: "add"})
	a.Add(llmtypes.ToolCallDelta{ID: "c1", ArgumentsDelta: `{"a":`})
	a.Add(llmtypes.ToolCallDelta{ID: "c1", ArgumentsDelta: `2,"b":3}`})

	calls := a.Finalize()
	assert.Len(t, calls, 1)
	assert.Equal(t, "c1", calls[0].ID)
	assert.Equal(t, "add", calls[0].Function.Name)
	assert.Equal(t, `{"a":2,"b":3}`, calls[0].Function.Arguments)
}

func TestAggregator_ByIndexMultipleCalls(t *testing.T) {
	idx0, idx1 := 0, 1
	a := New()
	a.Add(llmtypes.ToolCallDelta{Index: &idx0, ID: "c1", FunctionName: "f1"})
	a.Add(llmtypes.ToolCallDelta{Index: &idx1, ID: "c2", FunctionName: "f2"})
	a.Add(llmtypes.ToolCallDelta{Index: &idx0, ArgumentsDelta: "a"})
	a.Add(llmtypes.ToolCallDelta{Index: &idx1, ArgumentsDelta: "b"})
	a.Add(llmtypes.ToolCallDelta{Index: &idx0, ArgumentsDelta: "c"})

	calls := a.Finalize()
	assert.Len(t, calls, 2)
	assert.Equal(t, "f1", calls[0].Function.Name)
	assert.Equal(t, "ac", calls[0].Function.Arguments)
	assert.Equal(t, "f2", calls[1].Function.Name)
	assert.Equal(t, "b", calls[1].Function.Arguments)
}

func TestAggregator_Empty(t *testing.T) {
	a := New()
	assert.True(t, a.Empty())
	assert.Nil(t, a.Finalize())
}

func TestAggregator_NameSetOnce(t *testing.T) {
	a := New()
	a.Add(llmtypes.ToolCallDelta{ID: "c1", FunctionName: "first"})
	a.Add(llmtypes.ToolCallDelta{ID: "c1", FunctionName: "second"})
	calls := a.Finalize()
	assert.Equal(t, "first", calls[0].Function.Name)
}
