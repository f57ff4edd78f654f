// Package risk scores the investor questionnaire and maps the score onto
// one of eight ordered archetypes.
package risk

import (
	"errors"
	"fmt"
	"time"

	"brokerage-portal/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingAnswer   = errors.New("questionnaire answer missing")
	ErrInvalidChoice   = errors.New("answer is not one of the question's choices")
	ErrScoreOutOfRange = errors.New("score outside every archetype band")
)

type Choice struct {
	Label string
	Value int
}

type Question struct {
	Key     string
	Weight  decimal.Decimal
	Choices []Choice
}

// Answers maps a question key to the chosen value.
type Answers map[string]int

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Questions is the fixed questionnaire. Weights sum to 1.
var Questions = []Question{
	{Key: "type", Weight: d("0.2"), Choices: []Choice{
		{"First-time investor", 1},
		{"Savings and deposits only", 2},
		{"Funds and bonds", 3},
		{"Individual equities", 4},
		{"Derivatives and leverage", 5},
	}},
	{Key: "loss", Weight: d("0.15"), Choices: []Choice{
		{"Sell everything on any loss", 1},
		{"Sell after a 5% loss", 2},
		{"Hold through a 10% loss", 3},
		{"Hold through a 20% loss", 4},
		{"Buy more on a 30% loss", 5},
	}},
	{Key: "gain", Weight: d("0.15"), Choices: []Choice{
		{"Preserve capital", 1},
		{"Beat inflation", 2},
		{"Moderate growth", 3},
		{"Strong growth", 4},
		{"Maximum return", 5},
	}},
	{Key: "period", Weight: d("0.15"), Choices: []Choice{
		{"Under 1 year", 1},
		{"1 to 3 years", 2},
		{"3 to 5 years", 3},
		{"5 to 10 years", 4},
		{"Over 10 years", 5},
	}},
	{Key: "diversification", Weight: d("0.15"), Choices: []Choice{
		{"Single asset", 1},
		{"A few holdings", 2},
		{"Balanced mix", 3},
		{"Broad global mix", 4},
		{"Concentrated high-conviction bets", 5},
	}},
	{Key: "goals", Weight: d("0.2"), Choices: []Choice{
		{"Emergency reserve", 1},
		{"Income", 2},
		{"Retirement", 3},
		{"Wealth building", 4},
		{"Speculation", 5},
	}},
}

func (q Question) hasChoice(v int) bool {
	for _, c := range q.Choices {
		if c.Value == v {
			return true
		}
	}
	return false
}

// Score returns the weighted sum of the answers.
func Score(answers Answers) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, q := range Questions {
		v, ok := answers[q.Key]
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrMissingAnswer, q.Key)
		}
		if !q.hasChoice(v) {
			return decimal.Zero, fmt.Errorf("%w: %s=%d", ErrInvalidChoice, q.Key, v)
		}
		total = total.Add(q.Weight.Mul(decimal.NewFromInt(int64(v))))
	}
	return total, nil
}

// NewProfile scores and classifies answers into an immutable profile.
func NewProfile(name, ownerID string, answers Answers, now time.Time) (*models.RiskProfile, error) {
	score, err := Score(answers)
	if err != nil {
		return nil, err
	}
	arch, err := Classify(score)
	if err != nil {
		return nil, err
	}

	copied := make(map[string]int, len(answers))
	for k, v := range answers {
		copied[k] = v
	}

	return &models.RiskProfile{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Name:         name,
		Answers:      copied,
		Score:        score,
		Archetype:    arch.Name,
		Allocation:   arch.Allocation,
		AverageYield: arch.AverageYield,
		CreatedAt:    now.UTC(),
	}, nil
}
