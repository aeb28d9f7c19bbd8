package storage

import (
	"context"
	"errors"

	"github.com/lumenai/lumen/pkg/model"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// Storage is the swappable persistence backend. The sqlite and in-memory
// implementations are interchangeable; both assign IDs and timestamps at
// insert time and treat messages and memories as append-only.
type Storage interface {
	GetMessages(ctx context.Context, userID string) ([]model.Message, error)
	CreateMessage(ctx context.Context, msg model.Message) (model.Message, error)
	ClearMessages(ctx context.Context, userID string) error

	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUserByID(ctx context.Context, id string) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)

	GetMemories(ctx context.Context, userID string) ([]model.Memory, error)
	CreateMemory(ctx context.Context, mem model.Memory) (model.Memory, error)
	SearchMemories(ctx context.Context, userID, key string) ([]model.Memory, error)

	GetAssistantProperty(ctx context.Context, key string) (model.AssistantProperty, error)
	GetAssistantProperties(ctx context.Context) ([]model.AssistantProperty, error)
	SetAssistantProperty(ctx context.Context, prop model.AssistantProperty) (model.AssistantProperty, error)
	DeleteAssistantProperty(ctx context.Context, key string) error

	Close() error
}
