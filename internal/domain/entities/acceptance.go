package entities

import (
	"fmt"
	"time"
)

// AcceptanceStatus is the patient-facing classification of a payer
type AcceptanceStatus string

const (
	AcceptanceNotAccepted AcceptanceStatus = "not-accepted"
	AcceptanceWaitlist    AcceptanceStatus = "waitlist"
	AcceptanceFuture      AcceptanceStatus = "future"
	AcceptanceActive      AcceptanceStatus = "active"
)

// DefaultFutureAcceptanceWindow is how far out an approved effective date may
// be and still read as "future" rather than "waitlist".
const DefaultFutureAcceptanceWindow = 21 * 24 * time.Hour

// AcceptanceResult is the outcome of classifying a payer at a point in time
type AcceptanceResult struct {
	Status        AcceptanceStatus `json:"status"`
	Message       string           `json:"message"`
	EffectiveDate *time.Time       `json:"effective_date,omitempty"`
}

// ClassifyAcceptance classifies whether a payer's plans are accepted, purely
// from the payer's status code, its effective date, and the supplied now.
// Callers must pass now explicitly; the function never reads a clock.
func ClassifyAcceptance(payer *Payer, now time.Time) AcceptanceResult {
	return ClassifyAcceptanceWithWindow(payer, now, DefaultFutureAcceptanceWindow)
}

// ClassifyAcceptanceWithWindow is ClassifyAcceptance with a configurable
// future-vs-waitlist window.
func ClassifyAcceptanceWithWindow(payer *Payer, now time.Time, futureWindow time.Duration) AcceptanceResult {
	switch payer.StatusCode {
	case PayerStatusDenied, PayerStatusBlocked, PayerStatusWithdrawn, PayerStatusOnPause:
		return AcceptanceResult{
			Status:  AcceptanceNotAccepted,
			Message: fmt.Sprintf("%s is not currently accepted", payer.Name),
		}

	case PayerStatusApproved:
		if payer.EffectiveDate == nil {
			return AcceptanceResult{
				Status:  AcceptanceWaitlist,
				Message: fmt.Sprintf("%s will be in network soon, timing uncertain", payer.Name),
			}
		}
		effective := *payer.EffectiveDate
		if !effective.After(now) {
			return AcceptanceResult{
				Status:        AcceptanceActive,
				Message:       fmt.Sprintf("%s is in network", payer.Name),
				EffectiveDate: &effective,
			}
		}
		if effective.Sub(now) > futureWindow {
			return AcceptanceResult{
				Status:        AcceptanceWaitlist,
				Message:       fmt.Sprintf("%s will be in network soon, timing uncertain", payer.Name),
				EffectiveDate: &effective,
			}
		}
		return AcceptanceResult{
			Status:        AcceptanceFuture,
			Message:       fmt.Sprintf("%s is available starting %s", payer.Name, effective.Format("January 2, 2006")),
			EffectiveDate: &effective,
		}

	case PayerStatusWaitingOnThem, PayerStatusInProgress, PayerStatusNotStarted:
		return AcceptanceResult{
			Status:  AcceptanceWaitlist,
			Message: fmt.Sprintf("%s will be in network soon, timing uncertain", payer.Name),
		}

	default:
		return AcceptanceResult{
			Status:  AcceptanceNotAccepted,
			Message: fmt.Sprintf("%s is not currently accepted", payer.Name),
		}
	}
}
