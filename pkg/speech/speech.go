// Package speech proxies text to an OpenAI-compatible speech endpoint and
// streams the synthesized audio back, so voice replies work without any
// browser speech-synthesis support.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
)

type request struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}

func (r request) encode() *bytes.Reader {
	b, _ := json.Marshal(r)
	return bytes.NewReader(b)
}

// Synthesizer turns text into an mp3 stream.
type Synthesizer struct {
	endpoint string
	apiKey   string
	model    string
	voice    string
	client   *http.Client
	logger   *log.Logger
}

func NewSynthesizer(logger *log.Logger, endpoint, apiKey, model, voice string) *Synthesizer {
	return &Synthesizer{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		voice:    voice,
		client:   http.DefaultClient,
		logger:   logger,
	}
}

// Stream requests synthesis and returns the audio body. The caller owns
// the returned reader and must close it. An empty voice falls back to the
// configured default.
func (s *Synthesizer) Stream(ctx context.Context, text, voice string) (io.ReadCloser, error) {
	if voice == "" {
		voice = s.voice
	}
	req := request{
		Model:          s.model,
		Voice:          voice,
		Input:          text,
		ResponseFormat: "mp3",
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, req.encode())
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("speech endpoint returned %d: %s", resp.StatusCode, body)
	}
	return resp.Body, nil
}
