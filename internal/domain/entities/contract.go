package entities

import (
	"time"
)

// ContractStatus represents the lifecycle state of a provider-payer contract
type ContractStatus string

const (
	ContractStatusActive     ContractStatus = "active"
	ContractStatusPending    ContractStatus = "pending"
	ContractStatusTerminated ContractStatus = "terminated"
	ContractStatusSuspended  ContractStatus = "suspended"
)

// Contract represents a direct billing relationship between a provider and a
// payer. Contracts are terminated explicitly, never deleted; at most one
// active contract may exist per (provider, payer) at any instant.
type Contract struct {
	ID              string         `json:"id" db:"id"`
	ProviderID      string         `json:"provider_id" db:"provider_id"`
	PayerID         string         `json:"payer_id" db:"payer_id"`
	Status          ContractStatus `json:"status" db:"status"`
	EffectiveDate   time.Time      `json:"effective_date" db:"effective_date"`
	TerminationDate *time.Time     `json:"termination_date" db:"termination_date"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// InEffect reports whether the contract permits direct billing as of the
// given instant.
func (c *Contract) InEffect(asOf time.Time) bool {
	if c.Status != ContractStatusActive {
		return false
	}
	if c.EffectiveDate.After(asOf) {
		return false
	}
	if c.TerminationDate != nil && !c.TerminationDate.After(asOf) {
		return false
	}
	return true
}
