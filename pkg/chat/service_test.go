package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenai/lumen/pkg/model"
	"github.com/lumenai/lumen/pkg/storage"
)

type fakeCompleter struct {
	reply       string
	err         error
	gotMessages []openai.ChatCompletionMessageParamUnion
	gotModel    string
}

func (f *fakeCompleter) Completions(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, model string) (openai.ChatCompletionMessage, error) {
	f.gotMessages = messages
	f.gotModel = model
	if f.err != nil {
		return openai.ChatCompletionMessage{}, f.err
	}
	return openai.ChatCompletionMessage{Role: "assistant", Content: f.reply}, nil
}

func newTestService(t *testing.T) (*Service, storage.Storage, *fakeCompleter, string) {
	t.Helper()

	store := storage.NewMemStorage()
	completer := &fakeCompleter{reply: "Nice to meet you!"}
	service := NewService(log.New(io.Discard), store, completer, "test-model")

	user, err := store.CreateUser(context.Background(), model.User{Username: "alex", Password: "x"})
	require.NoError(t, err)

	return service, store, completer, user.ID
}

func TestSendMessagePersistsBothTurns(t *testing.T) {
	service, _, completer, userID := newTestService(t)
	ctx := context.Background()

	result, err := service.SendMessage(ctx, userID, "I am so happy today", nil)
	require.NoError(t, err)
	assert.Equal(t, "test-model", completer.gotModel)

	assert.Equal(t, model.RoleUser, result.UserMessage.Role)
	assert.Equal(t, "I am so happy today", result.UserMessage.Content)
	require.NotNil(t, result.UserMessage.Metadata)
	assert.Equal(t, "happy", result.UserMessage.Metadata.Emotion)
	assert.False(t, result.UserMessage.Metadata.Memory)

	assert.Equal(t, model.RoleAssistant, result.AssistantMessage.Role)
	assert.Equal(t, "Nice to meet you!", result.AssistantMessage.Content)
	// The assistant turn mirrors the user's detected emotion and shares
	// the same context snapshot.
	require.NotNil(t, result.AssistantMessage.Metadata)
	assert.Equal(t, "happy", result.AssistantMessage.Metadata.Emotion)
	require.NotNil(t, result.AssistantMessage.Context)
	assert.Equal(t, "happy", result.AssistantMessage.Context.EmotionalState)

	messages, err := service.GetMessages(ctx, userID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, model.RoleAssistant, messages[0].Role)
	assert.Equal(t, model.RoleUser, messages[1].Role)
}

func TestSendMessageStoresExtractedMemory(t *testing.T) {
	service, store, _, userID := newTestService(t)
	ctx := context.Background()

	result, err := service.SendMessage(ctx, userID, "Remember that my name is Alex", nil)
	require.NoError(t, err)

	memories, err := store.SearchMemories(ctx, userID, "name")
	require.NoError(t, err)
	require.Len(t, memories, 1)
	assert.Equal(t, "Alex", memories[0].Value)

	require.NotNil(t, result.UserMessage.Metadata)
	assert.True(t, result.UserMessage.Metadata.Memory)

	// The snapshot is taken before the fact is written: this turn's
	// context does not contain the fact yet.
	require.NotNil(t, result.UserMessage.Context)
	assert.Empty(t, result.UserMessage.Context.Memories)

	// The next turn sees it.
	next, err := service.SendMessage(ctx, userID, "What is my name?", nil)
	require.NoError(t, err)
	require.NotNil(t, next.AssistantMessage.Context)
	assert.Contains(t, next.AssistantMessage.Context.Memories, model.MemoryFact{Key: "name", Value: "Alex"})
}

func TestSendMessagePrefixesPromptWithFacts(t *testing.T) {
	service, store, completer, userID := newTestService(t)
	ctx := context.Background()

	_, err := store.CreateMemory(ctx, model.Memory{UserID: userID, Key: "favorite color", Value: "blue"})
	require.NoError(t, err)

	_, err = service.SendMessage(ctx, userID, "What color should I paint my room?", nil)
	require.NoError(t, err)

	require.NotEmpty(t, completer.gotMessages)
	last, err := json.Marshal(completer.gotMessages[len(completer.gotMessages)-1])
	require.NoError(t, err)
	assert.Contains(t, string(last), "favorite color: blue")
	assert.Contains(t, string(last), "What color should I paint my room?")
}

func TestSendMessageStoresNegatedProperty(t *testing.T) {
	service, store, _, userID := newTestService(t)
	ctx := context.Background()

	_, err := service.SendMessage(ctx, userID, "You are not made by OpenAI", nil)
	require.NoError(t, err)

	prop, err := store.GetAssistantProperty(ctx, "made by openai")
	require.NoError(t, err)
	assert.Equal(t, "false", prop.Value)
}

func TestSendMessageModelFailureKeepsUserTurn(t *testing.T) {
	service, _, completer, userID := newTestService(t)
	completer.err = errors.New("quota exceeded")
	ctx := context.Background()

	_, err := service.SendMessage(ctx, userID, "hello", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelCall)

	// Partial failure: the user turn stays, the assistant turn is absent.
	messages, err := service.GetMessages(ctx, userID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, model.RoleUser, messages[0].Role)
	assert.Equal(t, "hello", messages[0].Content)
}

func TestSendMessageKeepsClientMetadata(t *testing.T) {
	service, _, _, userID := newTestService(t)
	ctx := context.Background()

	result, err := service.SendMessage(ctx, userID, "hello there", &model.MessageMetadata{IsVoice: true, Duration: 2.5})
	require.NoError(t, err)

	require.NotNil(t, result.UserMessage.Metadata)
	assert.True(t, result.UserMessage.Metadata.IsVoice)
	assert.Equal(t, 2.5, result.UserMessage.Metadata.Duration)
	assert.Equal(t, "neutral", result.UserMessage.Metadata.Emotion)
}

func TestClearMessagesIdempotent(t *testing.T) {
	service, _, _, userID := newTestService(t)
	ctx := context.Background()

	_, err := service.SendMessage(ctx, userID, "hello", nil)
	require.NoError(t, err)

	require.NoError(t, service.ClearMessages(ctx, userID))
	require.NoError(t, service.ClearMessages(ctx, userID))

	messages, err := service.GetMessages(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
