// Package tokenest estimates prompt token counts ahead of a request so
// callers can budget context windows and rate limits without waiting on a
// provider's own usage accounting.
package tokenest

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/sibylline/llmbridge/llmtypes"
)

// defaultEncoding is the encoding shared by GPT-3.5/GPT-4-era models, and a
// reasonable stand-in for providers that don't publish a tokenizer at all.
const defaultEncoding = "cl100k_base"

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
)

func encoding() (*tiktoken.Tiktoken, error) {
	encOnce.Do(func() {
		enc, encErr = tiktoken.GetEncoding(defaultEncoding)
	})
	return enc, encErr
}

// EstimateTokens returns the token count tiktoken-go assigns to text using
// the cl100k_base encoding. If the encoding can't be loaded, it falls back
// to a heuristic of one token per four characters, rounded up.
func EstimateTokens(text string) int {
	tke, err := encoding()
	if err != nil {
		return heuristic(text)
	}
	return len(tke.Encode(text, nil, nil))
}

// EstimateMessages sums EstimateTokens over every message's text content
// plus a small per-message overhead to account for role/name framing, the
// same way chat-completion APIs bill a few tokens per message boundary.
func EstimateMessages(messages []llmtypes.ChatMessage) int {
	const perMessageOverhead = 4
	total := 0
	for _, m := range messages {
		total += perMessageOverhead + EstimateTokens(m.Text)
	}
	return total
}

func heuristic(text string) int {
	n := len(text) / 4
	if len(text)%4 != 0 {
		n++
	}
	return n
}
