// internal/models/risk_profile.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Allocation holds per-category percentages summing to 100.
type Allocation struct {
	Cash         decimal.Decimal `json:"cash"`
	FixedIncome  decimal.Decimal `json:"fixedIncome"`
	Equities     decimal.Decimal `json:"equities"`
	Alternatives decimal.Decimal `json:"alternatives"`
}

func (a Allocation) Total() decimal.Decimal {
	return a.Cash.Add(a.FixedIncome).Add(a.Equities).Add(a.Alternatives)
}

// RiskProfile is immutable once created.
type RiskProfile struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"ownerId,omitempty"`
	Name         string          `json:"name"`
	Answers      map[string]int  `json:"answers"`
	Score        decimal.Decimal `json:"score"`
	Archetype    string          `json:"archetype"`
	Allocation   Allocation      `json:"allocation"`
	AverageYield decimal.Decimal `json:"averageYield"`
	CreatedAt    time.Time       `json:"createdAt"`
}
