package domain_test

import (
	"testing"
	"time"

	"github.com/gigworks/gigtax/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestSupersedes(t *testing.T) {
	earlier := time.Date(2024, time.July, 1, 10, 0, 0, 0, time.UTC)
	later := earlier.Add(time.Hour)

	automaticAt := func(at time.Time) *domain.CategoryAssignment {
		return &domain.CategoryAssignment{Method: domain.MethodAutomatic, AssignedAt: at}
	}
	overrideAt := func(at time.Time) *domain.CategoryAssignment {
		return &domain.CategoryAssignment{Method: domain.MethodManualOverride, AssignedAt: at}
	}

	tests := []struct {
		name     string
		incoming domain.CategoryAssignment
		existing *domain.CategoryAssignment
		want     bool
	}{
		{"anything beats no assignment", *automaticAt(earlier), nil, true},
		{"later automatic beats earlier automatic", *automaticAt(later), automaticAt(earlier), true},
		{"equal timestamp automatic wins as last writer", *automaticAt(earlier), automaticAt(earlier), true},
		{"earlier automatic loses to later automatic", *automaticAt(earlier), automaticAt(later), false},
		{"override beats later automatic", *overrideAt(earlier), automaticAt(later), true},
		{"automatic never beats an override", *automaticAt(later), overrideAt(earlier), false},
		{"newer override replaces older override", *overrideAt(later), overrideAt(earlier), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.incoming.Supersedes(tt.existing))
		})
	}
}

func TestEffectiveCategory(t *testing.T) {
	earning := domain.CategorizedTransaction{Transaction: txnAt("200", time.Now())}
	assert.Equal(t, domain.CategoryEarnings, earning.EffectiveCategory())

	unassigned := domain.CategorizedTransaction{Transaction: txnAt("-20", time.Now())}
	assert.Equal(t, domain.CategoryUnclassified, unassigned.EffectiveCategory())

	assigned := domain.CategorizedTransaction{
		Transaction: txnAt("-20", time.Now()),
		Assignment:  &domain.CategoryAssignment{Category: domain.CategoryVehicle},
	}
	assert.Equal(t, domain.CategoryVehicle, assigned.EffectiveCategory())
}
