package risk

import (
	"fmt"

	"brokerage-portal/internal/models"

	"github.com/shopspring/decimal"
)

// Archetype is a named allocation selected by the half-open band [Min, Max).
type Archetype struct {
	Name         string
	Min          decimal.Decimal
	Max          decimal.Decimal
	Allocation   models.Allocation
	AverageYield decimal.Decimal
}

func (a Archetype) Contains(score decimal.Decimal) bool {
	return score.GreaterThanOrEqual(a.Min) && score.LessThan(a.Max)
}

func alloc(cash, fixed, equities, alts int64) models.Allocation {
	return models.Allocation{
		Cash:         decimal.NewFromInt(cash),
		FixedIncome:  decimal.NewFromInt(fixed),
		Equities:     decimal.NewFromInt(equities),
		Alternatives: decimal.NewFromInt(alts),
	}
}

// Archetypes is ordered by band. The top band extends past 5 so that the
// maximum attainable score is inside it.
var Archetypes = []Archetype{
	{"Capital Preservation", d("1.0"), d("1.5"), alloc(40, 55, 5, 0), d("2.0")},
	{"Conservative", d("1.5"), d("2.0"), alloc(20, 60, 15, 5), d("3.0")},
	{"Moderately Conservative", d("2.0"), d("2.5"), alloc(10, 55, 30, 5), d("3.8")},
	{"Balanced", d("2.5"), d("3.0"), alloc(5, 45, 45, 5), d("4.6")},
	{"Moderate Growth", d("3.0"), d("3.5"), alloc(5, 35, 52, 8), d("5.3")},
	{"Growth", d("3.5"), d("4.0"), alloc(3, 25, 62, 10), d("6.0")},
	{"Aggressive Growth", d("4.0"), d("4.5"), alloc(2, 13, 73, 12), d("6.8")},
	{"Speculative", d("4.5"), d("5.5"), alloc(0, 5, 75, 20), d("7.5")},
}

var hundred = decimal.NewFromInt(100)

func init() {
	if err := ValidateBands(Archetypes); err != nil {
		panic(err)
	}
}

// ValidateBands checks that bands are non-empty, contiguous and that each
// allocation sums to 100.
func ValidateBands(bands []Archetype) error {
	if len(bands) == 0 {
		return fmt.Errorf("no archetype bands")
	}
	for i, b := range bands {
		if !b.Min.LessThan(b.Max) {
			return fmt.Errorf("band %q is empty: [%s, %s)", b.Name, b.Min, b.Max)
		}
		if !b.Allocation.Total().Equal(hundred) {
			return fmt.Errorf("band %q allocation sums to %s", b.Name, b.Allocation.Total())
		}
		if i > 0 && !bands[i-1].Max.Equal(b.Min) {
			return fmt.Errorf("bands %q and %q are not contiguous: %s != %s",
				bands[i-1].Name, b.Name, bands[i-1].Max, b.Min)
		}
	}
	return nil
}

// Classify returns the archetype whose band contains score.
func Classify(score decimal.Decimal) (Archetype, error) {
	for _, a := range Archetypes {
		if a.Contains(score) {
			return a, nil
		}
	}
	return Archetype{}, fmt.Errorf("%w: %s", ErrScoreOutOfRange, score)
}
