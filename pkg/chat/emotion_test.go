package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Emotion
	}{
		{"happy keywords", "I am so happy and excited", EmotionHappy},
		{"uppercase", "THIS IS AWESOME", EmotionHappy},
		{"sad keyword", "feeling pretty lonely today", EmotionSad},
		{"angry keyword", "this makes me furious", EmotionAngry},
		{"neutral keyword", "it was okay I guess", EmotionNeutral},
		{"no keywords defaults to neutral", "fine", EmotionNeutral},
		{"empty defaults to neutral", "", EmotionNeutral},
		{"bucket order: happy beats sad", "happy but also sad", EmotionHappy},
		{"bucket order: sad beats angry", "sad and angry", EmotionSad},
		// Substring matching is deliberate: no negation handling.
		{"not happy still matches happy", "I am not happy", EmotionHappy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}
