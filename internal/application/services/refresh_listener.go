package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/providers"
)

// RefreshListener keeps materialized bookability in step with contract,
// supervision and payer mutations. Writers publish an event naming the payer
// they touched; the listener refreshes that payer's snapshot. Events carry
// no payload beyond identity, so a lost event costs freshness until the next
// reconcile pass, never correctness.
type RefreshListener struct {
	bookability *BookabilityService
	eventBus    providers.EventBus
	cache       providers.CacheProvider
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewRefreshListener creates a new refresh listener
func NewRefreshListener(bookability *BookabilityService, eventBus providers.EventBus, cache providers.CacheProvider) *RefreshListener {
	ctx, cancel := context.WithCancel(context.Background())
	return &RefreshListener{
		bookability: bookability,
		eventBus:    eventBus,
		cache:       cache,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins listening for bookability events
func (l *RefreshListener) Start() error {
	eventChan, err := l.eventBus.Subscribe(l.ctx, providers.EventChannelBookabilityUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to bookability updates: %w", err)
	}

	go l.processEvents(eventChan)
	log.Info().Msg("bookability refresh listener started")
	return nil
}

// Stop stops the listener
func (l *RefreshListener) Stop() {
	l.cancel()
	log.Info().Msg("bookability refresh listener stopped")
}

func (l *RefreshListener) processEvents(eventChan <-chan *entities.BookabilityEvent) {
	for {
		select {
		case <-l.ctx.Done():
			return
		case event := <-eventChan:
			if event == nil {
				continue
			}
			l.handleEvent(event)
		}
	}
}

func (l *RefreshListener) handleEvent(event *entities.BookabilityEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Refresh completions are published by this listener's own refreshes;
	// reacting to them would loop
	if event.EventType == entities.BookabilityEventTypeRefreshCompleted {
		return
	}

	logger := log.With().Str("event_id", event.ID).
		Str("event_type", string(event.EventType)).
		Str("payer_id", event.PayerID).Logger()
	logger.Debug().Msg("processing bookability event")

	now := time.Now()
	if event.PayerID == "" {
		// A mutation without a payer scope (e.g. provider deactivation) can
		// affect any payer; refresh them all
		report, err := l.bookability.RefreshAll(ctx, now)
		if err != nil {
			logger.Error().Err(err).Msg("full bookability refresh failed")
			return
		}
		logger.Info().Int("entries", report.EntriesProcessed).
			Int("added", report.Added).Int("removed", report.Removed).
			Int("errors", len(report.Errors)).Msg("full bookability refresh completed")
		return
	}

	report, err := l.bookability.Refresh(ctx, event.PayerID, now)
	if err != nil {
		logger.Error().Err(err).Msg("bookability refresh failed")
		return
	}
	logger.Info().Int("entries", report.EntriesProcessed).
		Int("added", report.Added).Int("removed", report.Removed).
		Msg("bookability refresh completed")

	done := entities.NewBookabilityEvent(event.PayerID, event.ProviderID, entities.BookabilityEventTypeRefreshCompleted)
	if err := l.eventBus.Publish(ctx, providers.GetPayerChannel(event.PayerID), done); err != nil {
		logger.Warn().Err(err).Msg("failed to publish refresh completion")
	}
}

// InvalidatePayerCaches drops every cached bookability response for a payer.
// Used by operational tooling during bulk data loads.
func (l *RefreshListener) InvalidatePayerCaches(ctx context.Context, payerID string) error {
	pattern := fmt.Sprintf("bookability:payer:%s*", payerID)
	if err := l.cache.DeletePattern(ctx, pattern); err != nil {
		return fmt.Errorf("failed to invalidate payer caches: %w", err)
	}
	log.Info().Str("payer_id", payerID).Msg("invalidated payer bookability caches")
	return nil
}
