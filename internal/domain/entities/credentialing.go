package entities

import (
	"time"
)

// CredentialingTaskStatus represents progress on a single checklist task
type CredentialingTaskStatus string

const (
	CredentialingTaskStatusPending    CredentialingTaskStatus = "pending"
	CredentialingTaskStatusInProgress CredentialingTaskStatus = "in_progress"
	CredentialingTaskStatusDone       CredentialingTaskStatus = "done"
)

// CredentialingTask is one step a provider must complete before a contract
// with a payer can be activated. Tasks are generated verbatim from the
// payer's workflow template and ordered by Position.
type CredentialingTask struct {
	ID            string                  `json:"id" db:"id"`
	ApplicationID string                  `json:"application_id" db:"application_id"`
	ProviderID    string                  `json:"provider_id" db:"provider_id"`
	PayerID       string                  `json:"payer_id" db:"payer_id"`
	Position      int                     `json:"position" db:"position"`
	Name          string                  `json:"name" db:"name"`
	Description   string                  `json:"description" db:"description"`
	Status        CredentialingTaskStatus `json:"status" db:"status"`
	CreatedAt     time.Time               `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at" db:"updated_at"`
}

// CredentialingApplication tracks one provider's onboarding with one payer.
// Exactly one application exists per (provider, payer) pair with tasks.
type CredentialingApplication struct {
	ID         string    `json:"id" db:"id"`
	ProviderID string    `json:"provider_id" db:"provider_id"`
	PayerID    string    `json:"payer_id" db:"payer_id"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// WorkflowStep is one entry of a payer's onboarding template
type WorkflowStep struct {
	Position    int    `json:"position" db:"position"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// WorkflowTemplate is a payer's ordered onboarding checklist, stored as data
// and interpreted by the credentialing engine. No default template exists;
// the template is the explicit contract with the payer.
type WorkflowTemplate struct {
	ID        string         `json:"id" db:"id"`
	PayerID   string         `json:"payer_id" db:"payer_id"`
	Steps     []WorkflowStep `json:"steps"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}
