package llmtypes

// ImageGenerationRequest parameterizes GenerateImages.
type ImageGenerationRequest struct {
	Prompt string
	Model  string
	N      int
	Size   string // e.g. "1024x1024"
	Style  string
}

// ImageEditRequest parameterizes EditImage.
type ImageEditRequest struct {
	Image  []byte
	Mask   []byte
	Prompt string
	Model  string
	N      int
	Size   string
}

// ImageVariationRequest parameterizes CreateVariation.
type ImageVariationRequest struct {
	Image []byte
	Model string
	N     int
	Size  string
}

// GeneratedImage is one image produced by an image capability call.
type GeneratedImage struct {
	URL      string
	B64JSON  string
	Metadata map[string]any
}
