package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/Providerbookabilitydesign/backend/pkg/errors"
)

// CredentialingAdapter implements CredentialingRepository
type CredentialingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCredentialingAdapter creates a new credentialing adapter
func NewCredentialingAdapter(client *postgres.Client) repositories.CredentialingRepository {
	return &CredentialingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetTemplate retrieves a payer's workflow template with its ordered steps
func (a *CredentialingAdapter) GetTemplate(ctx context.Context, payerID string) (*entities.WorkflowTemplate, error) {
	query, args, err := a.db.Select("id", "payer_id", "created_at", "updated_at").
		From("credentialing_workflow_templates").
		Where(goqu.Ex{"payer_id": payerID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build template query", err)
	}

	template := &entities.WorkflowTemplate{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&template.ID,
		&template.PayerID,
		&template.CreatedAt,
		&template.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no credentialing workflow template for payer %s", payerID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get workflow template", err)
	}

	stepQuery, stepArgs, err := a.db.Select("position", "name", "description").
		From("credentialing_workflow_steps").
		Where(goqu.Ex{"template_id": template.ID}).
		Order(goqu.I("position").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build step query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, stepQuery, stepArgs...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list workflow steps", err)
	}
	defer rows.Close()

	for rows.Next() {
		var step entities.WorkflowStep
		if err := rows.Scan(&step.Position, &step.Name, &step.Description); err != nil {
			return nil, apperrors.NewInternalError("failed to scan workflow step", err)
		}
		template.Steps = append(template.Steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read workflow steps", err)
	}
	return template, nil
}

// ReplaceTasks regenerates the application and tasks for a (provider, payer)
// pair in one transaction. Prior rows are removed first so a re-run can
// never leave orphaned tasks behind.
func (a *CredentialingAdapter) ReplaceTasks(ctx context.Context, application *entities.CredentialingApplication, tasks []*entities.CredentialingTask) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	pairEx := goqu.Ex{
		"provider_id": application.ProviderID,
		"payer_id":    application.PayerID,
	}

	deleteTasks, deleteTaskArgs, err := a.db.Delete("credentialing_tasks").Where(pairEx).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build task delete", err)
	}
	if _, err := tx.ExecContext(ctx, deleteTasks, deleteTaskArgs...); err != nil {
		return apperrors.NewInternalError("failed to delete prior tasks", err)
	}

	deleteApps, deleteAppArgs, err := a.db.Delete("credentialing_applications").Where(pairEx).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build application delete", err)
	}
	if _, err := tx.ExecContext(ctx, deleteApps, deleteAppArgs...); err != nil {
		return apperrors.NewInternalError("failed to delete prior application", err)
	}

	appInsert, appArgs, err := a.db.Insert("credentialing_applications").
		Rows(goqu.Record{
			"id":          application.ID,
			"provider_id": application.ProviderID,
			"payer_id":    application.PayerID,
			"status":      application.Status,
			"created_at":  application.CreatedAt,
			"updated_at":  application.UpdatedAt,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build application insert", err)
	}
	if _, err := tx.ExecContext(ctx, appInsert, appArgs...); err != nil {
		return apperrors.NewInternalError("failed to insert application", err)
	}

	if len(tasks) > 0 {
		records := make([]goqu.Record, 0, len(tasks))
		for _, task := range tasks {
			records = append(records, goqu.Record{
				"id":             task.ID,
				"application_id": task.ApplicationID,
				"provider_id":    task.ProviderID,
				"payer_id":       task.PayerID,
				"position":       task.Position,
				"name":           task.Name,
				"description":    task.Description,
				"status":         task.Status,
				"created_at":     task.CreatedAt,
				"updated_at":     task.UpdatedAt,
			})
		}

		taskInsert, taskArgs, err := a.db.Insert("credentialing_tasks").Rows(records).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build task insert", err)
		}
		if _, err := tx.ExecContext(ctx, taskInsert, taskArgs...); err != nil {
			return apperrors.NewInternalError("failed to insert tasks", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit task regeneration", err)
	}
	return nil
}

// ListTasks retrieves the ordered tasks for a (provider, payer) pair
func (a *CredentialingAdapter) ListTasks(ctx context.Context, providerID, payerID string) ([]*entities.CredentialingTask, error) {
	query, args, err := a.db.Select(
		"id", "application_id", "provider_id", "payer_id", "position",
		"name", "description", "status", "created_at", "updated_at",
	).From("credentialing_tasks").
		Where(goqu.Ex{"provider_id": providerID, "payer_id": payerID}).
		Order(goqu.I("position").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build task query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list tasks", err)
	}
	defer rows.Close()

	var tasks []*entities.CredentialingTask
	for rows.Next() {
		task := &entities.CredentialingTask{}
		err := rows.Scan(
			&task.ID,
			&task.ApplicationID,
			&task.ProviderID,
			&task.PayerID,
			&task.Position,
			&task.Name,
			&task.Description,
			&task.Status,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan task", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}
