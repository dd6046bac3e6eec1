package httpx

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/sibylline/llmbridge/llmtypes"
)

// MultipartField is one field in a multipart/form-data upload: either a
// plain value (File == nil) or a file part.
type MultipartField struct {
	Name     string
	Value    string
	File     []byte
	Filename string
}

// PostMultipart builds and sends a multipart/form-data POST request (used
// for file uploads, audio transcription/translation, and image edit/
// variation calls, per spec §6).
func (s *Substrate) PostMultipart(ctx context.Context, url string, fields []MultipartField) (*http.Response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if f.File != nil {
			part, err := w.CreateFormFile(f.Name, f.Filename)
			if err != nil {
				return nil, llmtypes.WrapError(llmtypes.ErrTransport, "building multipart body", err)
			}
			if _, err := io.Copy(part, bytes.NewReader(f.File)); err != nil {
				return nil, llmtypes.WrapError(llmtypes.ErrTransport, "writing multipart file", err)
			}
			continue
		}
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, llmtypes.WrapError(llmtypes.ErrTransport, "writing multipart field", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrTransport, "closing multipart writer", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrTransport, "building request", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	switch s.Auth {
	case AuthBearer:
		if s.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+s.APIKey)
		}
	case AuthXAPIKey:
		if s.APIKey != "" {
			req.Header.Set("x-api-key", s.APIKey)
		}
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, classifyStatusError(resp)
	}
	return resp, nil
}

// ValidatePurpose rejects empty file-upload purposes, per spec §7
// InvalidInput ("bad file purpose").
func ValidatePurpose(purpose string) error {
	if purpose == "" {
		return llmtypes.NewError(llmtypes.ErrInvalidInput, "file purpose must not be empty")
	}
	return nil
}
