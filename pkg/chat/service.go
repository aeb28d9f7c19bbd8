package chat

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/pkg/errors"

	"github.com/lumenai/lumen/pkg/model"
	"github.com/lumenai/lumen/pkg/storage"
)

// Completer is the external model call: full history plus the current
// prompt in, one text completion out. May fail; failure is surfaced to the
// caller without retry.
type Completer interface {
	Completions(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, model string) (openai.ChatCompletionMessage, error)
}

// ErrModelCall marks a completions failure. The user's turn is already
// persisted when this is returned; there is no compensating rollback.
var ErrModelCall = errors.New("model call failed")

// Service sequences a conversational turn: extract facts, classify
// emotion, persist the user turn, call the model, persist the reply.
type Service struct {
	store     storage.Storage
	completer Completer
	builder   *ContextBuilder
	model     string
	logger    *log.Logger
}

func NewService(logger *log.Logger, store storage.Storage, completer Completer, modelName string) *Service {
	return &Service{
		store:     store,
		completer: completer,
		builder:   NewContextBuilder(store),
		model:     modelName,
		logger:    logger,
	}
}

// SendResult carries the two persisted ledger entries of a completed turn.
type SendResult struct {
	UserMessage      model.Message `json:"userMessage"`
	AssistantMessage model.Message `json:"assistantMessage"`
}

// SendMessage runs one inbound user turn through the pipeline.
//
// The context snapshot is taken before the extracted fact is written, so a
// fact stored by this request becomes visible to snapshots from the next
// request on. The assistant message mirrors the user's detected emotion
// and shares the same snapshot.
func (s *Service) SendMessage(ctx context.Context, userID, content string, metadata *model.MessageMetadata) (*SendResult, error) {
	emotion := Classify(content)

	snapshot, err := s.builder.BuildContext(ctx, userID, emotion)
	if err != nil {
		return nil, err
	}

	memoryStored := false
	if m := Extract(content); m.IsMemory {
		_, err := s.store.CreateMemory(ctx, model.Memory{
			UserID: userID,
			Key:    m.Key,
			Value:  m.Value,
		})
		if err != nil {
			return nil, err
		}
		memoryStored = true
		s.logger.Info("Stored memory", "user_id", userID, "key", m.Key)
	}

	if p := ExtractProperty(content); p.IsProperty {
		_, err := s.store.SetAssistantProperty(ctx, model.AssistantProperty{
			Key:   p.Key,
			Value: p.Value,
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("Stored assistant property", "key", p.Key)
	}

	if metadata == nil {
		metadata = &model.MessageMetadata{}
	}
	metadata.Emotion = string(emotion)
	metadata.Memory = memoryStored

	userMessage, err := s.store.CreateMessage(ctx, model.Message{
		UserID:   userID,
		Content:  content,
		Role:     model.RoleUser,
		Metadata: metadata,
		Context:  snapshot,
	})
	if err != nil {
		return nil, err
	}

	history, prompt, err := s.builder.BuildPrompt(ctx, userID, content, snapshot.Memories)
	if err != nil {
		return nil, err
	}
	history = append(history, openai.UserMessage(prompt))

	completion, err := s.completer.Completions(ctx, history, s.model)
	if err != nil {
		// User turn stays persisted; the assistant turn is simply absent.
		s.logger.Error("Completions call failed", "user_id", userID, "error", err)
		return nil, errors.Wrap(ErrModelCall, err.Error())
	}

	assistantMessage, err := s.store.CreateMessage(ctx, model.Message{
		UserID:  userID,
		Content: completion.Content,
		Role:    model.RoleAssistant,
		Metadata: &model.MessageMetadata{
			Emotion: string(emotion),
		},
		Context: snapshot,
	})
	if err != nil {
		return nil, err
	}

	return &SendResult{
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
	}, nil
}

// GetMessages returns the user's ledger, newest first.
func (s *Service) GetMessages(ctx context.Context, userID string) ([]model.Message, error) {
	return s.store.GetMessages(ctx, userID)
}

// ClearMessages drops the user's ledger. Idempotent.
func (s *Service) ClearMessages(ctx context.Context, userID string) error {
	return s.store.ClearMessages(ctx, userID)
}
