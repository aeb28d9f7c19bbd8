package storage

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/lumenai/lumen/pkg/model"
)

// MemStorage keeps all state in process memory: incrementing IDs, slices in
// insertion order, one mutex. Useful for tests and for running without a
// database file.
type MemStorage struct {
	mu         sync.Mutex
	nextID     int64
	users      []model.User
	messages   []model.Message
	memories   []model.Memory
	properties []model.AssistantProperty
}

var _ Storage = (*MemStorage)(nil)

func NewMemStorage() *MemStorage {
	return &MemStorage{}
}

func (s *MemStorage) newID() string {
	s.nextID++
	return strconv.FormatInt(s.nextID, 10)
}

func (s *MemStorage) GetMessages(ctx context.Context, userID string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Reverse insertion order is descending timestamp order: timestamps are
	// assigned monotonically at insert.
	out := make([]model.Message, 0)
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].UserID == userID {
			out = append(out, s.messages[i])
		}
	}
	return out, nil
}

func (s *MemStorage) CreateMessage(ctx context.Context, msg model.Message) (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = s.newID()
	msg.Timestamp = time.Now()
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *MemStorage) ClearMessages(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.messages[:0]
	for _, m := range s.messages {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	s.messages = kept
	return nil
}

func (s *MemStorage) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return model.User{}, ErrUsernameTaken
		}
	}
	user.ID = s.newID()
	user.CreatedAt = time.Now()
	s.users = append(s.users, user)
	return user, nil
}

func (s *MemStorage) GetUserByID(ctx context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (s *MemStorage) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (s *MemStorage) GetMemories(ctx context.Context, userID string) ([]model.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Memory, 0)
	for i := len(s.memories) - 1; i >= 0; i-- {
		if s.memories[i].UserID == userID {
			out = append(out, s.memories[i])
		}
	}
	return out, nil
}

func (s *MemStorage) CreateMemory(ctx context.Context, mem model.Memory) (model.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mem.ID = s.newID()
	mem.CreatedAt = time.Now()
	s.memories = append(s.memories, mem)
	return mem, nil
}

func (s *MemStorage) SearchMemories(ctx context.Context, userID, key string) ([]model.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Memory, 0)
	for _, m := range s.memories {
		if m.UserID == userID && m.Key == key {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemStorage) GetAssistantProperty(ctx context.Context, key string) (model.AssistantProperty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Latest write wins; rows are never overwritten.
	for i := len(s.properties) - 1; i >= 0; i-- {
		if s.properties[i].Key == key {
			return s.properties[i], nil
		}
	}
	return model.AssistantProperty{}, ErrNotFound
}

func (s *MemStorage) GetAssistantProperties(ctx context.Context) ([]model.AssistantProperty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	out := make([]model.AssistantProperty, 0)
	for i := len(s.properties) - 1; i >= 0; i-- {
		p := s.properties[i]
		if !seen[p.Key] {
			seen[p.Key] = true
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemStorage) SetAssistantProperty(ctx context.Context, prop model.AssistantProperty) (model.AssistantProperty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prop.ID = s.newID()
	prop.UpdatedAt = time.Now()
	s.properties = append(s.properties, prop)
	return prop, nil
}

func (s *MemStorage) DeleteAssistantProperty(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.properties[:0]
	for _, p := range s.properties {
		if p.Key != key {
			kept = append(kept, p)
		}
	}
	s.properties = kept
	return nil
}

func (s *MemStorage) Close() error { return nil }
