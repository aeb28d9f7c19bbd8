package chat

import (
	"regexp"
	"strings"
)

// Fixed extraction tables. These are configuration, not state; first match
// per pattern wins and later candidate sentences are ignored.
var (
	// "remember (that)? (my)? <key> is|are <value>", value runs to the end
	// of the sentence. Key and value stay within one sentence.
	memoryPattern = regexp.MustCompile(`(?i)remember\s+(?:that\s+)?(?:my\s+)?([^.!?\n]+?)\s+(?:is|are)\s+([^.!?\n]+)`)

	// Negated-property triggers. Longer triggers come first so the most
	// specific one claims the sentence.
	propertyPattern = regexp.MustCompile(`(?i)\b(?:you weren't made by|you weren't created by|your name is not|you are not|you're not|you weren't)\s+([^.!?\n]+)`)
)

// MemoryMatch is the outcome of running the memory pattern over a message.
type MemoryMatch struct {
	IsMemory bool
	Key      string
	Value    string
}

// PropertyMatch is the outcome of running the property-negation pattern.
// Only negated properties are recorded, never asserted ones; Value is
// always the literal "false".
type PropertyMatch struct {
	IsProperty bool
	Key        string
	Value      string
}

// Extract pattern-matches a raw message against the memory template. The
// key is lowercased and trimmed; the value keeps its original case.
func Extract(text string) MemoryMatch {
	m := memoryPattern.FindStringSubmatch(text)
	if m == nil {
		return MemoryMatch{}
	}
	return MemoryMatch{
		IsMemory: true,
		Key:      strings.ToLower(strings.TrimSpace(m[1])),
		Value:    strings.TrimSpace(m[2]),
	}
}

// ExtractProperty pattern-matches a raw message against the
// property-negation triggers.
func ExtractProperty(text string) PropertyMatch {
	m := propertyPattern.FindStringSubmatch(text)
	if m == nil {
		return PropertyMatch{}
	}
	return PropertyMatch{
		IsProperty: true,
		Key:        strings.ToLower(strings.TrimSpace(m[1])),
		Value:      "false",
	}
}
