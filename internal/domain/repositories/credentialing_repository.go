package repositories

import (
	"context"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
)

// CredentialingRepository defines the interface for credentialing workflow
// data access
type CredentialingRepository interface {
	// GetTemplate retrieves a payer's workflow template, or a not-found error
	// when the payer has none
	GetTemplate(ctx context.Context, payerID string) (*entities.WorkflowTemplate, error)

	// ReplaceTasks deletes any prior application and tasks for the
	// (provider, payer) pair and inserts the new application and tasks in a
	// single transaction
	ReplaceTasks(ctx context.Context, application *entities.CredentialingApplication, tasks []*entities.CredentialingTask) error

	// ListTasks retrieves the ordered tasks for a (provider, payer) pair
	ListTasks(ctx context.Context, providerID, payerID string) ([]*entities.CredentialingTask, error)
}
