package chat

import (
	"strings"
)

// Emotion is one of the four fixed labels attached to a message.
type Emotion string

const (
	EmotionHappy   Emotion = "happy"
	EmotionSad     Emotion = "sad"
	EmotionAngry   Emotion = "angry"
	EmotionNeutral Emotion = "neutral"
)

// emotionBuckets are checked in declared order; the first bucket with any
// keyword occurring anywhere in the lowercased text wins.
var emotionBuckets = []struct {
	label    Emotion
	keywords []string
}{
	{EmotionHappy, []string{"happy", "glad", "excited", "great", "awesome", "wonderful", "love", "amazing", ":)"}},
	{EmotionSad, []string{"sad", "unhappy", "depressed", "miserable", "lonely", "crying", ":("}},
	{EmotionAngry, []string{"angry", "mad", "furious", "annoyed", "frustrated", "hate"}},
	{EmotionNeutral, []string{"okay", "alright", "so-so"}},
}

// Classify maps a message to an emotion label. Total function: no input
// fails, unmatched text is neutral. This is deliberately crude substring
// matching — no tokenization and no negation handling, so "not happy"
// still classifies as happy.
func Classify(text string) Emotion {
	lowered := strings.ToLower(text)
	for _, bucket := range emotionBuckets {
		for _, keyword := range bucket.keywords {
			if strings.Contains(lowered, keyword) {
				return bucket.label
			}
		}
	}
	return EmotionNeutral
}
