package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Message roles persisted in chat_messages.
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

const (
	defaultTitle  = "New chat"
	titleMaxRunes = 80
)

var (
	ErrChatNotFound = errors.New("chat not found")
	ErrInvalidRole  = errors.New("message role must be user or ai")
)

type Store struct {
	DB *sqlx.DB
}

type Message struct {
	ID        int64     `db:"id" json:"id"`
	ChatID    string    `db:"chat_id" json:"chat_id,omitempty"`
	Role      string    `db:"role" json:"role"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type ChatHistory struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	Messages  []Message `db:"-" json:"messages"`
}

// New opens a Postgres connection pool and verifies it with a ping.
func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// ValidateMessages checks every role and rejects empty content.
func ValidateMessages(msgs []Message) error {
	for i, m := range msgs {
		if m.Role != RoleUser && m.Role != RoleAI {
			return fmt.Errorf("message %d: %w", i, ErrInvalidRole)
		}
		if strings.TrimSpace(m.Content) == "" {
			return fmt.Errorf("message %d: content is empty", i)
		}
	}
	return nil
}

// TitleFor derives a chat title from the first user message.
func TitleFor(msgs []Message) string {
	for _, m := range msgs {
		if m.Role != RoleUser {
			continue
		}
		t := strings.Join(strings.Fields(m.Content), " ")
		if t == "" {
			continue
		}
		if utf8.RuneCountInString(t) > titleMaxRunes {
			t = string([]rune(t)[:titleMaxRunes]) + "…"
		}
		return t
	}
	return defaultTitle
}

// CreateChat stores a new transcript and returns its id. An empty title is
// derived from the messages.
func (s *Store) CreateChat(ctx context.Context, title string, msgs []Message) (string, error) {
	if err := ValidateMessages(msgs); err != nil {
		return "", err
	}
	if strings.TrimSpace(title) == "" {
		title = TitleFor(msgs)
	}
	id := uuid.NewString()

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT INTO chat_histories (id, title) VALUES ($1, $2)`, id, title); err != nil {
		return "", fmt.Errorf("insert chat: %w", err)
	}
	if err := insertMessages(ctx, tx, id, msgs); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit chat: %w", err)
	}
	return id, nil
}

// AppendMessages adds messages to an existing transcript.
func (s *Store) AppendMessages(ctx context.Context, chatID string, msgs []Message) error {
	if _, err := uuid.Parse(chatID); err != nil {
		return ErrChatNotFound
	}
	if err := ValidateMessages(msgs); err != nil {
		return err
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE chat_histories SET updated_at = now() WHERE id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("touch chat: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrChatNotFound
	}
	if err := insertMessages(ctx, tx, chatID, msgs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit messages: %w", err)
	}
	return nil
}

func insertMessages(ctx context.Context, tx *sqlx.Tx, chatID string, msgs []Message) error {
	for _, m := range msgs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO chat_messages (chat_id, role, content) VALUES ($1, $2, $3)`, chatID, m.Role, m.Content); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}
	return nil
}

// GetChat loads one transcript with its messages in insertion order.
func (s *Store) GetChat(ctx context.Context, id string) (ChatHistory, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ChatHistory{}, ErrChatNotFound
	}
	var chat ChatHistory
	err := s.DB.GetContext(ctx, &chat, `SELECT id, title, created_at, updated_at FROM chat_histories WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ChatHistory{}, ErrChatNotFound
	}
	if err != nil {
		return ChatHistory{}, fmt.Errorf("get chat: %w", err)
	}
	chat.Messages = []Message{}
	if err := s.DB.SelectContext(ctx, &chat.Messages,
		`SELECT id, chat_id, role, content, created_at FROM chat_messages WHERE chat_id = $1 ORDER BY id`, id); err != nil {
		return ChatHistory{}, fmt.Errorf("get chat messages: %w", err)
	}
	return chat, nil
}

// ListChats returns every transcript, most recently updated first.
func (s *Store) ListChats(ctx context.Context) ([]ChatHistory, error) {
	chats := []ChatHistory{}
	if err := s.DB.SelectContext(ctx, &chats,
		`SELECT id, title, created_at, updated_at FROM chat_histories ORDER BY updated_at DESC`); err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	if len(chats) == 0 {
		return chats, nil
	}

	ids := make([]string, len(chats))
	index := make(map[string]int, len(chats))
	for i := range chats {
		ids[i] = chats[i].ID
		index[chats[i].ID] = i
		chats[i].Messages = []Message{}
	}

	var msgs []Message
	if err := s.DB.SelectContext(ctx, &msgs,
		`SELECT id, chat_id, role, content, created_at FROM chat_messages WHERE chat_id = ANY($1) ORDER BY id`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	for _, m := range msgs {
		if i, ok := index[m.ChatID]; ok {
			chats[i].Messages = append(chats[i].Messages, m)
		}
	}
	return chats, nil
}

// DeleteChat removes a transcript; its messages cascade.
func (s *Store) DeleteChat(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrChatNotFound
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM chat_histories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrChatNotFound
	}
	return nil
}
