package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/samber/lo"

	"github.com/lumenai/lumen/pkg/model"
	"github.com/lumenai/lumen/pkg/storage"
)

// ContextBuilder assembles prior turns and stored facts into the payload
// shape the completions call expects.
type ContextBuilder struct {
	store storage.Storage
}

func NewContextBuilder(store storage.Storage) *ContextBuilder {
	return &ContextBuilder{store: store}
}

// BuildContext snapshots the conversational state visible at send time.
// The snapshot is immutable once attached to a message; facts stored later
// in the same request do not appear in it.
func (b *ContextBuilder) BuildContext(ctx context.Context, userID string, emotion Emotion) (*model.MessageContext, error) {
	memories, err := b.store.GetMemories(ctx, userID)
	if err != nil {
		return nil, err
	}

	facts := lo.Map(memories, func(m model.Memory, _ int) model.MemoryFact {
		return model.MemoryFact{Key: m.Key, Value: m.Value}
	})

	return &model.MessageContext{
		EmotionalState: string(emotion),
		PreviousTopics: []string{},
		Memories:       facts,
	}, nil
}

// BuildPrompt maps the full ledger into completion message params, oldest
// first, and returns the current turn's prompt text with the fact block
// prepended. The ledger's storage order is newest first, so the history is
// re-reversed before replay.
func (b *ContextBuilder) BuildPrompt(ctx context.Context, userID, raw string, facts []model.MemoryFact) ([]openai.ChatCompletionMessageParamUnion, string, error) {
	messages, err := b.store.GetMessages(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	history := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)

	props, err := b.store.GetAssistantProperties(ctx)
	if err != nil {
		return nil, "", err
	}
	if len(props) > 0 {
		history = append(history, openai.SystemMessage(propertyPreamble(props)))
	}

	for _, msg := range lo.Reverse(messages) {
		switch msg.Role {
		case model.RoleAssistant:
			history = append(history, openai.AssistantMessage(msg.Content))
		default:
			history = append(history, openai.UserMessage(msg.Content))
		}
	}

	return history, promptText(raw, facts), nil
}

// promptText prefixes the raw message with one "key: value" line per stored
// fact. No facts, no prefix.
func promptText(raw string, facts []model.MemoryFact) string {
	if len(facts) == 0 {
		return raw
	}
	var sb strings.Builder
	for _, f := range facts {
		sb.WriteString(f.Key)
		sb.WriteString(": ")
		sb.WriteString(f.Value)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(raw)
	return sb.String()
}

func propertyPreamble(props []model.AssistantProperty) string {
	var sb strings.Builder
	sb.WriteString("The user has corrected the following assumptions about you (a value of false means it is not true of you):\n")
	for _, p := range props {
		sb.WriteString(fmt.Sprintf("%s: %s\n", p.Key, p.Value))
	}
	return sb.String()
}
