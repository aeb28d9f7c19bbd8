package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/lumenai/lumen/pkg/model"
)

// SQLiteStorage is the relational backend. Metadata and context snapshots
// are stored as JSON columns.
type SQLiteStorage struct {
	db     *sqlx.DB
	logger *log.Logger
}

var _ Storage = (*SQLiteStorage)(nil)

func NewSQLiteStorage(dbPath string, logger *log.Logger) (*SQLiteStorage, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	// Enable WAL mode for better concurrency and performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := RunMigrations(db.DB, logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStorage{db: db, logger: logger}, nil
}

type messageRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Content   string    `db:"content"`
	Role      string    `db:"role"`
	Timestamp time.Time `db:"timestamp"`
	Metadata  []byte    `db:"metadata"`
	Context   []byte    `db:"context"`
}

func (r messageRow) toModel() (model.Message, error) {
	msg := model.Message{
		ID:        r.ID,
		UserID:    r.UserID,
		Content:   r.Content,
		Role:      model.Role(r.Role),
		Timestamp: r.Timestamp,
	}
	if len(r.Metadata) > 0 {
		var meta model.MessageMetadata
		if err := json.Unmarshal(r.Metadata, &meta); err != nil {
			return model.Message{}, fmt.Errorf("failed to decode message metadata: %w", err)
		}
		msg.Metadata = &meta
	}
	if len(r.Context) > 0 {
		var mctx model.MessageContext
		if err := json.Unmarshal(r.Context, &mctx); err != nil {
			return model.Message{}, fmt.Errorf("failed to decode message context: %w", err)
		}
		msg.Context = &mctx
	}
	return msg, nil
}

func (s *SQLiteStorage) GetMessages(ctx context.Context, userID string) ([]model.Message, error) {
	var rows []messageRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, content, role, timestamp, metadata, context
		FROM messages WHERE user_id = ?
		ORDER BY timestamp DESC, rowid DESC`, userID)
	if err != nil {
		return nil, err
	}

	messages := make([]model.Message, 0, len(rows))
	for _, r := range rows {
		msg, err := r.toModel()
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (s *SQLiteStorage) CreateMessage(ctx context.Context, msg model.Message) (model.Message, error) {
	msg.ID = uuid.New().String()
	msg.Timestamp = time.Now()

	var metadata, mctx []byte
	var err error
	if msg.Metadata != nil {
		if metadata, err = json.Marshal(msg.Metadata); err != nil {
			return model.Message{}, err
		}
	}
	if msg.Context != nil {
		if mctx, err = json.Marshal(msg.Context); err != nil {
			return model.Message{}, err
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (id, user_id, content, role, timestamp, metadata, context)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.UserID, msg.Content, string(msg.Role), msg.Timestamp, metadata, mctx)
	if err != nil {
		return model.Message{}, err
	}
	return msg, nil
}

func (s *SQLiteStorage) ClearMessages(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE user_id = ?`, userID)
	return err
}

func (s *SQLiteStorage) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password, created_at)
		VALUES (?, ?, ?, ?)`,
		user.ID, user.Username, user.Password, user.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return model.User{}, ErrUsernameTaken
		}
		return model.User{}, err
	}
	return user, nil
}

func (s *SQLiteStorage) GetUserByID(ctx context.Context, id string) (model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return user, err
}

func (s *SQLiteStorage) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user, `SELECT * FROM users WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return user, err
}

func (s *SQLiteStorage) GetMemories(ctx context.Context, userID string) ([]model.Memory, error) {
	memories := make([]model.Memory, 0)
	err := s.db.SelectContext(ctx, &memories, `
		SELECT * FROM memories WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC`, userID)
	return memories, err
}

func (s *SQLiteStorage) CreateMemory(ctx context.Context, mem model.Memory) (model.Memory, error) {
	mem.ID = uuid.New().String()
	mem.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memories (id, user_id, key, value, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		mem.ID, mem.UserID, mem.Key, mem.Value, mem.CreatedAt)
	if err != nil {
		return model.Memory{}, err
	}
	return mem, nil
}

func (s *SQLiteStorage) SearchMemories(ctx context.Context, userID, key string) ([]model.Memory, error) {
	memories := make([]model.Memory, 0)
	err := s.db.SelectContext(ctx, &memories, `
		SELECT * FROM memories WHERE user_id = ? AND key = ?
		ORDER BY created_at ASC, rowid ASC`, userID, key)
	return memories, err
}

func (s *SQLiteStorage) GetAssistantProperty(ctx context.Context, key string) (model.AssistantProperty, error) {
	var prop model.AssistantProperty
	err := s.db.GetContext(ctx, &prop, `
		SELECT * FROM assistant_properties WHERE key = ?
		ORDER BY updated_at DESC, rowid DESC LIMIT 1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AssistantProperty{}, ErrNotFound
	}
	return prop, err
}

func (s *SQLiteStorage) GetAssistantProperties(ctx context.Context) ([]model.AssistantProperty, error) {
	props := make([]model.AssistantProperty, 0)
	// Latest row per key wins; older rows are kept but shadowed.
	err := s.db.SelectContext(ctx, &props, `
		SELECT p.* FROM assistant_properties p
		WHERE p.rowid = (
			SELECT q.rowid FROM assistant_properties q
			WHERE q.key = p.key
			ORDER BY q.updated_at DESC, q.rowid DESC LIMIT 1
		)
		ORDER BY p.updated_at DESC, p.rowid DESC`)
	return props, err
}

func (s *SQLiteStorage) SetAssistantProperty(ctx context.Context, prop model.AssistantProperty) (model.AssistantProperty, error) {
	prop.ID = uuid.New().String()
	prop.UpdatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assistant_properties (id, key, value, updated_at)
		VALUES (?, ?, ?, ?)`,
		prop.ID, prop.Key, prop.Value, prop.UpdatedAt)
	if err != nil {
		return model.AssistantProperty{}, err
	}
	return prop, nil
}

func (s *SQLiteStorage) DeleteAssistantProperty(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM assistant_properties WHERE key = ?`, key)
	return err
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// DB returns the underlying sqlx.DB instance
func (s *SQLiteStorage) DB() *sqlx.DB {
	return s.db
}
