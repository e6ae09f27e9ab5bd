package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/adapters/database"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/application/services"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/Providerbookabilitydesign/backend/pkg/config"
)

// Seeds a development database with a small payer panel, a provider group
// with a supervision arrangement, availability, and credentialing templates,
// then materializes the initial bookability snapshots.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()
	db := pgClient.DB()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := db.ExecContext(ctx, `
			TRUNCATE TABLE
				credentialing_tasks,
				credentialing_applications,
				credentialing_workflow_steps,
				credentialing_workflow_templates,
				appointments,
				availability_exceptions,
				availability_rules,
				bookable_entries,
				bookability_snapshots,
				service_instances,
				supervision_relationships,
				contracts,
				providers,
				payers
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	now := time.Now()
	lastMonth := now.AddDate(0, -1, 0)

	// 1. Payers
	bluePayerID := uuid.New().String()
	goldPayerID := uuid.New().String()
	futurePayerID := uuid.New().String()
	futureEffective := now.AddDate(0, 0, 14)

	exec(ctx, db, `INSERT INTO payers (id, name, status_code, effective_date) VALUES
		($1, 'Blue Shield North', 'approved', $2),
		($3, 'Golden Care', 'approved', $2),
		($4, 'Evergreen Health', 'approved', $5)`,
		bluePayerID, lastMonth, goldPayerID, futurePayerID, futureEffective)

	// 2. Providers: one attending, one resident supervised by the attending
	attendingID := uuid.New().String()
	residentID := uuid.New().String()

	exec(ctx, db, `INSERT INTO providers (id, full_name, billing_role, is_active, is_bookable) VALUES
		($1, 'Dr. Amara Osei', 'attending', TRUE, TRUE),
		($2, 'Dr. Lena Fischer', 'resident', TRUE, TRUE)`,
		attendingID, residentID)

	// 3. Contracts: attending holds direct contracts with both active payers
	exec(ctx, db, `INSERT INTO contracts (id, provider_id, payer_id, status, effective_date) VALUES
		($1, $2, $3, 'active', $4),
		($5, $2, $6, 'active', $4)`,
		uuid.New().String(), attendingID, bluePayerID, lastMonth,
		uuid.New().String(), goldPayerID)

	// 4. Supervision: resident billed through the attending for Blue Shield
	exec(ctx, db, `INSERT INTO supervision_relationships
		(id, supervisee_id, supervisor_id, payer_id, designation, supervision_level, effective_date) VALUES
		($1, $2, $3, $4, 'primary', 'co_visit_required', $5)`,
		uuid.New().String(), residentID, attendingID, bluePayerID, lastMonth)

	// 5. Service catalog: a global therapy intake plus a payer-specific one
	exec(ctx, db, `INSERT INTO service_instances
		(id, service_name, payer_id, delivery_location, duration_minutes, external_billing_code, is_active) VALUES
		($1, 'Therapy Intake', NULL, 'telehealth', 60, 'EHR-90791', TRUE),
		($2, 'Therapy Intake', $3, 'telehealth', 45, 'EHR-90791-G', TRUE),
		($4, 'Psychiatry Follow-up', NULL, 'telehealth', 30, 'EHR-99213', TRUE)`,
		uuid.New().String(), uuid.New().String(), goldPayerID, uuid.New().String())

	// 6. Availability: weekday mornings for both providers
	for _, providerID := range []string{attendingID, residentID} {
		for weekday := 1; weekday <= 5; weekday++ {
			exec(ctx, db, `INSERT INTO availability_rules
				(id, provider_id, weekday, start_minute, end_minute, is_recurring, timezone) VALUES
				($1, $2, $3, 540, 720, TRUE, 'America/New_York')`,
				uuid.New().String(), providerID, weekday)
		}
	}

	// 7. Credentialing workflow template for the future payer
	templateID := uuid.New().String()
	exec(ctx, db, `INSERT INTO credentialing_workflow_templates (id, payer_id) VALUES ($1, $2)`,
		templateID, futurePayerID)
	exec(ctx, db, `INSERT INTO credentialing_workflow_steps (template_id, position, name, description) VALUES
		($1, 1, 'Submit roster form', 'Send the provider roster form to the payer'),
		($1, 2, 'CAQH attestation', 'Confirm the CAQH profile is current and attested'),
		($1, 3, 'Await countersignature', 'Payer returns the countersigned agreement')`,
		templateID)

	// 8. Materialize initial bookability snapshots
	bookability := services.NewBookabilityService(
		database.NewPayerAdapter(pgClient),
		database.NewContractAdapter(pgClient),
		database.NewSupervisionAdapter(pgClient),
		database.NewBookableEntryAdapter(pgClient),
		nil,
		nil,
		cfg.Engine.BookabilityCacheTTL,
	)
	report, err := bookability.RefreshAll(ctx, now)
	if err != nil {
		log.Fatalf("Failed to materialize bookability: %v", err)
	}

	log.Printf("Seed complete: %d bookable entries materialized (%d errors)",
		report.EntriesProcessed, len(report.Errors))
}

func exec(ctx context.Context, db *sql.DB, query string, args ...interface{}) {
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		log.Fatalf("Seed insert failed: %v", err)
	}
}
