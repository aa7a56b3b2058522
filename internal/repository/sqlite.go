// Package repository implements the per-user record store on SQLite.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mediguard/internal/domain"
)

// Store is the record store used by the service. All entities live in the
// owning user's partition; writes are append-only inserts and reads are
// ordered collection scans.
type Store interface {
	CreatePrescription(ctx context.Context, p *domain.Prescription) error
	ListPrescriptions(ctx context.Context, userID string, limit int) ([]domain.Prescription, error)

	CreateInventoryItem(ctx context.Context, item *domain.InventoryItem) error
	ListInventory(ctx context.Context, userID string) ([]domain.InventoryItem, error)

	CreateChatMessage(ctx context.Context, msg *domain.ChatMessage) error
	ListChatMessages(ctx context.Context, userID string, limit int) ([]domain.ChatMessage, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at dsn and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS prescriptions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			provider TEXT NOT NULL,
			safety_score INTEGER NOT NULL,
			issues TEXT NOT NULL DEFAULT '[]',
			source_text TEXT,
			uploaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prescriptions_user ON prescriptions(user_id, uploaded_at)`,
		`CREATE TABLE IF NOT EXISTS medications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			stock INTEGER NOT NULL DEFAULT 0,
			expiry_date DATETIME,
			status TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_medications_user ON medications(user_id)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			sender TEXT NOT NULL,
			text TEXT NOT NULL,
			ts INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_user ON chat_messages(user_id, ts)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreatePrescription inserts one verified prescription record.
func (s *SQLiteStore) CreatePrescription(ctx context.Context, p *domain.Prescription) error {
	issues, err := json.Marshal(p.Issues)
	if err != nil {
		return fmt.Errorf("failed to marshal issues: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO prescriptions (id, user_id, name, provider, safety_score, issues, source_text, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Name, p.Provider, p.SafetyScore, string(issues), p.SourceText, p.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prescription: %w", err)
	}
	return nil
}

// ListPrescriptions returns the user's prescriptions, newest first.
func (s *SQLiteStore) ListPrescriptions(ctx context.Context, userID string, limit int) ([]domain.Prescription, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, provider, safety_score, issues, source_text, uploaded_at
		 FROM prescriptions WHERE user_id = ? ORDER BY uploaded_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query prescriptions: %w", err)
	}
	defer rows.Close()

	prescriptions := []domain.Prescription{}
	for rows.Next() {
		var p domain.Prescription
		var issues string
		var sourceText sql.NullString
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Provider, &p.SafetyScore, &issues, &sourceText, &p.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prescription: %w", err)
		}
		if err := json.Unmarshal([]byte(issues), &p.Issues); err != nil {
			return nil, fmt.Errorf("failed to unmarshal issues: %w", err)
		}
		p.SourceText = sourceText.String
		prescriptions = append(prescriptions, p)
	}
	return prescriptions, rows.Err()
}

// CreateInventoryItem inserts one inventory item.
func (s *SQLiteStore) CreateInventoryItem(ctx context.Context, item *domain.InventoryItem) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO medications (id, user_id, name, stock, expiry_date, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.UserID, item.Name, item.Stock, item.ExpiryDate, string(item.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to insert inventory item: %w", err)
	}
	return nil
}

// ListInventory returns the user's inventory items.
func (s *SQLiteStore) ListInventory(ctx context.Context, userID string) ([]domain.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, stock, expiry_date, status
		 FROM medications WHERE user_id = ? ORDER BY name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	items := []domain.InventoryItem{}
	for rows.Next() {
		var item domain.InventoryItem
		var status string
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.Stock, &item.ExpiryDate, &status); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		item.Status = domain.InventoryStatus(status)
		items = append(items, item)
	}
	return items, rows.Err()
}

// CreateChatMessage appends one message to the user's conversation log.
// Timestamps are stored with nanosecond precision so user/assistant ordering
// survives round-trips.
func (s *SQLiteStore) CreateChatMessage(ctx context.Context, msg *domain.ChatMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, user_id, sender, text, ts)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.UserID, string(msg.Sender), msg.Text, msg.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

// ListChatMessages returns the user's messages in conversation order.
func (s *SQLiteStore) ListChatMessages(ctx context.Context, userID string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, sender, text, ts
		 FROM chat_messages WHERE user_id = ? ORDER BY ts LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.ChatMessage{}
	for rows.Next() {
		var msg domain.ChatMessage
		var sender string
		var ts int64
		if err := rows.Scan(&msg.ID, &msg.UserID, &sender, &msg.Text, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		msg.Sender = domain.MessageSender(sender)
		msg.Timestamp = time.Unix(0, ts)
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
