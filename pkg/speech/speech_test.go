package speech

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizerStream(t *testing.T) {
	var got request
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer upstream.Close()

	synth := NewSynthesizer(log.New(io.Discard), upstream.URL, "test-key", "tts-1", "nova")

	body, err := synth.Stream(context.Background(), "hello world", "")
	require.NoError(t, err)
	defer body.Close()

	audio, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "mp3-bytes", string(audio))

	assert.Equal(t, "tts-1", got.Model)
	assert.Equal(t, "nova", got.Voice)
	assert.Equal(t, "hello world", got.Input)
	assert.Equal(t, "mp3", got.ResponseFormat)
}

func TestSynthesizerVoiceOverride(t *testing.T) {
	var got request
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("x"))
	}))
	defer upstream.Close()

	synth := NewSynthesizer(log.New(io.Discard), upstream.URL, "", "tts-1", "nova")

	body, err := synth.Stream(context.Background(), "hi", "alloy")
	require.NoError(t, err)
	body.Close()

	assert.Equal(t, "alloy", got.Voice)
}

func TestSynthesizerUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	synth := NewSynthesizer(log.New(io.Discard), upstream.URL, "", "tts-1", "nova")

	_, err := synth.Stream(context.Background(), "hi", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
