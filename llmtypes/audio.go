package llmtypes

// TtsRequest parameterizes TextToSpeech.
type TtsRequest struct {
	Text   string
	Model  string
	Voice  string
	Format string // e.g. "mp3", "wav"
	Speed  float64
}

// TtsResponse is the audio produced by a TextToSpeech call.
type TtsResponse struct {
	Audio    []byte
	Format   string
	Metadata map[string]any
}

// SttRequest parameterizes SpeechToText and TranslateAudio.
type SttRequest struct {
	Audio    []byte
	Filename string
	Model    string
	Language string // ignored by TranslateAudio, which always targets English
}

// SttResponse is the transcript produced by a SpeechToText or
// TranslateAudio call.
type SttResponse struct {
	Text     string
	Language string
	Metadata map[string]any
}

// Voice describes one voice available to TextToSpeech.
type Voice struct {
	ID   string
	Name string
}
