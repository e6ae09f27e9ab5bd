package services

import (
	"context"
	"fmt"
	"time"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/entities"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/Providerbookabilitydesign/backend/pkg/errors"
)

// AvailabilityService expands recurring weekly rules and date-specific
// exceptions into concrete open windows for a date range.
//
// Rules are stored as minutes from local midnight in the rule's own
// timezone, so a provider's 9:00 window stays at 9:00 across DST
// transitions. All expansion happens in the rule's location; only the final
// windows carry absolute instants.
type AvailabilityService struct {
	repo repositories.AvailabilityRepository
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(repo repositories.AvailabilityRepository) *AvailabilityService {
	return &AvailabilityService{repo: repo}
}

// OpenWindows computes the provider's open windows within the range, merged
// and sorted. Exceptions are applied after rule expansion: "remove" closes
// time a rule opened, "add" opens ad-hoc time.
func (s *AvailabilityService) OpenWindows(ctx context.Context, providerID string, dateRange entities.DateRange) ([]entities.Interval, error) {
	if !dateRange.Valid() {
		return nil, apperrors.NewValidationError("date range end must be after start")
	}

	rules, err := s.repo.ListRules(ctx, providerID)
	if err != nil {
		return nil, err
	}

	var windows []entities.Interval
	for _, rule := range rules {
		expanded, err := expandRule(rule, dateRange)
		if err != nil {
			return nil, err
		}
		windows = append(windows, expanded...)
	}

	exceptions, err := s.repo.ListExceptions(ctx, providerID, dateRange)
	if err != nil {
		return nil, err
	}

	windows = entities.MergeIntervals(windows)
	for _, exc := range exceptions {
		window, err := exceptionWindow(exc)
		if err != nil {
			return nil, err
		}
		switch exc.Kind {
		case entities.ExceptionKindRemove:
			windows = entities.SubtractInterval(windows, window)
		case entities.ExceptionKindAdd:
			windows = entities.MergeIntervals(append(windows, window))
		}
	}

	// Clamp to the requested range so a rule window straddling a boundary
	// does not leak time outside it
	windows = entities.IntersectIntervals(windows, []entities.Interval{{Start: dateRange.From, End: dateRange.To}})
	return windows, nil
}

// expandRule yields one window per matching weekday in the range. A
// non-recurring rule applies only to the first matching weekday on or after
// its creation date.
func expandRule(rule *entities.AvailabilityRule, dateRange entities.DateRange) ([]entities.Interval, error) {
	loc, err := time.LoadLocation(rule.Timezone)
	if err != nil {
		return nil, apperrors.NewInternalError(
			fmt.Sprintf("availability rule %s has invalid timezone %q", rule.ID, rule.Timezone), err)
	}

	var windows []entities.Interval
	day := dateRange.From.In(loc)
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	for day.Before(dateRange.To) {
		if day.Weekday() == rule.Weekday {
			// Wall-clock, not offset-from-midnight: on a DST transition day
			// minute 540 must still mean 9:00 local
			window := entities.Interval{
				Start: time.Date(day.Year(), day.Month(), day.Day(), 0, rule.StartMinute, 0, 0, loc),
				End:   time.Date(day.Year(), day.Month(), day.Day(), 0, rule.EndMinute, 0, 0, loc),
			}
			if window.End.After(dateRange.From) && !window.Empty() {
				windows = append(windows, window)
				if !rule.IsRecurring {
					break
				}
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return windows, nil
}

func exceptionWindow(exc *entities.AvailabilityException) (entities.Interval, error) {
	loc := exc.Date.Location()
	window := entities.Interval{
		Start: time.Date(exc.Date.Year(), exc.Date.Month(), exc.Date.Day(), 0, exc.StartMinute, 0, 0, loc),
		End:   time.Date(exc.Date.Year(), exc.Date.Month(), exc.Date.Day(), 0, exc.EndMinute, 0, 0, loc),
	}
	if window.Empty() {
		return entities.Interval{}, apperrors.NewInternalError(
			fmt.Sprintf("availability exception %s has an empty window", exc.ID), nil)
	}
	return window, nil
}
