package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// BookabilityEventType represents the type of bookability event
type BookabilityEventType string

const (
	BookabilityEventTypeContractChanged    BookabilityEventType = "contract_changed"
	BookabilityEventTypeSupervisionChanged BookabilityEventType = "supervision_changed"
	BookabilityEventTypePayerChanged       BookabilityEventType = "payer_changed"
	BookabilityEventTypeRefreshCompleted   BookabilityEventType = "refresh_completed"
)

// BookabilityEvent signals that a payer's bookable entries may be stale and
// need recomputation
type BookabilityEvent struct {
	ID         string               `json:"id"`
	PayerID    string               `json:"payer_id"`
	ProviderID string               `json:"provider_id,omitempty"`
	EventType  BookabilityEventType `json:"event_type"`
	Timestamp  time.Time            `json:"timestamp"`
}

// NewBookabilityEvent creates a new bookability event
func NewBookabilityEvent(payerID, providerID string, eventType BookabilityEventType) *BookabilityEvent {
	return &BookabilityEvent{
		ID:         generateEventID(),
		PayerID:    payerID,
		ProviderID: providerID,
		EventType:  eventType,
		Timestamp:  time.Now(),
	}
}

// generateEventID generates a unique event ID
func generateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomString(8)
}

// randomString generates a random string of specified length
func randomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based if crypto/rand fails
		return time.Now().Format("150405.000")
	}
	return hex.EncodeToString(bytes)[:length]
}
