// Package domain defines the core domain models for the medication service.
package domain

import (
	"strings"
	"time"
)

// Defaults applied when image extraction is unavailable or failed.
const (
	UnknownMedication = "Unknown Medication"
	UnknownProvider   = "Unknown Provider"
)

// InventoryStatus is the declared stock status of an inventory item.
// It is read as stored and never recomputed by the pipeline.
type InventoryStatus string

const (
	InventoryInStock  InventoryStatus = "In Stock"
	InventoryLowStock InventoryStatus = "Low Stock"
	InventoryExpired  InventoryStatus = "Expired"
)

// MessageSender identifies who authored a chat message.
type MessageSender string

const (
	SenderUser      MessageSender = "user"
	SenderAssistant MessageSender = "assistant"
)

// PrescriptionSubmission is the ephemeral input to one verification attempt.
// At least one of Text/Image must be present. Image, when present, must be a
// data URI with an explicit MIME type and base64 payload.
type PrescriptionSubmission struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

// Empty reports whether the submission carries neither text nor image.
func (s PrescriptionSubmission) Empty() bool {
	return s.Text == "" && s.Image == ""
}

// SafetyAssessment is the output of the safety scoring capability.
type SafetyAssessment struct {
	SafetyScore int      `json:"safetyScore"`
	Issues      []string `json:"issues"`
}

// ExtractionResult is the output of the image detail extraction capability.
// Reasoning is populated whenever IsFake is true.
type ExtractionResult struct {
	MedicationName string `json:"medicationName"`
	Provider       string `json:"provider"`
	IsFake         bool   `json:"isFake"`
	Reasoning      string `json:"reasoning"`
}

// Prescription is the persisted result of one successful verification.
// Records are inserted exactly once and never mutated.
type Prescription struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Provider    string    `json:"provider"`
	SafetyScore int       `json:"safetyScore"`
	Issues      []string  `json:"issues"`
	SourceText  string    `json:"sourceText"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// InventoryItem is one medication in a user's stock.
type InventoryItem struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	Name       string          `json:"name"`
	Stock      int             `json:"stock"`
	ExpiryDate time.Time       `json:"expiryDate"`
	Status     InventoryStatus `json:"status"`
}

// ChatMessage is one entry in a user's append-only conversation log.
// Timestamps are server-assigned and monotonic per conversation.
type ChatMessage struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Sender    MessageSender `json:"sender"`
	Text      string        `json:"text"`
	Timestamp time.Time     `json:"timestamp"`
}

// IsDataURI reports whether s is an inline image of the form
// "data:<mimetype>;base64,<encoded_data>".
func IsDataURI(s string) bool {
	if !strings.HasPrefix(s, "data:") {
		return false
	}
	rest := s[len("data:"):]
	sep := strings.Index(rest, ";base64,")
	if sep <= 0 {
		return false
	}
	mime := rest[:sep]
	if !strings.Contains(mime, "/") {
		return false
	}
	return len(rest) > sep+len(";base64,")
}
