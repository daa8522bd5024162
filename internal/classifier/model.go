package classifier

import (
	"context"
	"strings"
	"unicode"

	"github.com/gigworks/gigtax/internal/core/domain"
)

// TokenScorer is the in-process statistical stage: a bag-of-words scorer
// over per-category token weights. Weights are immutable after construction;
// swapping in retrained weights means building a new scorer.
//
// Confidence is the winning category's share of the total matched weight, so
// a description whose tokens spread across several categories scores low and
// falls back to Unclassified at the service layer.
type TokenScorer struct {
	weights map[domain.Category]map[string]float64
}

// NewTokenScorer builds a scorer from explicit per-category token weights.
func NewTokenScorer(weights map[domain.Category]map[string]float64) *TokenScorer {
	return &TokenScorer{weights: weights}
}

// NewDefaultTokenScorer returns the scorer seeded with the built-in gig-work
// vocabulary.
func NewDefaultTokenScorer() *TokenScorer {
	return NewTokenScorer(map[domain.Category]map[string]float64{
		domain.CategoryVehicle: {
			"gas": 1.0, "gasoline": 1.0, "fuel": 1.0, "pump": 0.6,
			"mileage": 0.8, "tire": 0.8, "tires": 0.8, "mechanic": 0.8,
			"repair": 0.5, "garage": 0.5,
		},
		domain.CategorySupplies: {
			"supplies": 1.0, "paper": 0.6, "ink": 0.7, "printer": 0.7,
			"envelopes": 0.7, "notebook": 0.6, "charger": 0.6, "cable": 0.5,
			"misc": 0.3,
		},
		domain.CategoryMeals: {
			"lunch": 0.9, "dinner": 0.8, "meal": 0.9, "restaurant": 0.7,
			"cafe": 0.6, "coffee": 0.4,
		},
		domain.CategoryInsurance: {
			"insurance": 1.0, "premium": 0.8, "policy": 0.7, "coverage": 0.7,
			"liability": 0.6,
		},
		domain.CategoryFees: {
			"fee": 1.0, "fees": 1.0, "commission": 0.9, "subscription": 0.6,
			"surcharge": 0.8, "membership": 0.5, "misc": 0.3,
		},
		domain.CategoryOtherNonDeductible: {
			"grocery": 0.8, "groceries": 0.8, "pharmacy": 0.7, "movie": 0.7,
			"personal": 0.9, "misc": 0.4,
		},
	})
}

// Score tokenizes the description and returns the best-scoring category with
// its confidence. A description with no known tokens scores zero; the caller
// maps that to Unclassified. The context is honored so callers can bound the
// call the same way they bound a remote model.
func (s *TokenScorer) Score(ctx context.Context, description string) (domain.Category, float64, error) {
	if err := ctx.Err(); err != nil {
		return domain.CategoryUnclassified, 0, err
	}

	tokens := tokenize(description)
	if len(tokens) == 0 {
		return domain.CategoryUnclassified, 0, nil
	}

	scores := make(map[domain.Category]float64, len(s.weights))
	total := 0.0
	for _, token := range tokens {
		for category, vocab := range s.weights {
			if w, ok := vocab[token]; ok {
				scores[category] += w
				total += w
			}
		}
	}
	if total == 0 {
		return domain.CategoryUnclassified, 0, nil
	}

	// Iterate in the fixed category order so ties break deterministically.
	best := domain.CategoryUnclassified
	bestScore := 0.0
	for _, category := range domain.ExpenseCategories {
		if scores[category] > bestScore {
			best = category
			bestScore = scores[category]
		}
	}
	return best, bestScore / total, nil
}

func tokenize(description string) []string {
	return strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
