package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gigworks/gigtax/internal/core/domain"
	portsrepo "github.com/gigworks/gigtax/internal/core/ports/repositories"
	portssvc "github.com/gigworks/gigtax/internal/core/ports/services"
	"github.com/gigworks/gigtax/internal/taxrules"
)

// taxService implements the TaxService interface
type taxService struct {
	BaseService
	reporting    portssvc.ReportingService
	estimateRepo portsrepo.EstimateRepositoryFacade
	registry     *taxrules.Registry
	defaultLoc   *time.Location
	now          func() time.Time
}

// TaxServiceOption is a functional option for configuring the tax service
type TaxServiceOption func(*taxService)

// WithTaxTimezone sets the timezone the tax-year window is bucketed in.
func WithTaxTimezone(loc *time.Location) TaxServiceOption {
	return func(s *taxService) {
		s.defaultLoc = loc
	}
}

// WithTaxClock overrides the time source, mainly for tests.
func WithTaxClock(now func() time.Time) TaxServiceOption {
	return func(s *taxService) {
		s.now = now
	}
}

// NewTaxService creates a new tax service with the provided options
func NewTaxService(
	reporting portssvc.ReportingService,
	estimateRepo portsrepo.EstimateRepositoryFacade,
	registry *taxrules.Registry,
	options ...TaxServiceOption,
) portssvc.TaxService {
	svc := &taxService{
		reporting:    reporting,
		estimateRepo: estimateRepo,
		registry:     registry,
		defaultLoc:   time.UTC,
		now:          time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure taxService implements the TaxService interface
var _ portssvc.TaxService = (*taxService)(nil)

// EstimateTax aggregates the user's yearly figures and applies the bracket
// table registered for taxYear. The bracket computation itself is pure; the
// persisted estimate pins the rule version so it can be reproduced later.
func (s *taxService) EstimateTax(ctx context.Context, userID string, taxYear int) (*domain.TaxEstimate, error) {
	table, err := s.registry.Table(taxYear)
	if err != nil {
		s.LogWarn(ctx, "Tax estimate requested for unsupported year",
			slog.String("user_id", userID),
			slog.Int("tax_year", taxYear))
		return nil, err
	}

	// Any instant inside the year identifies the yearly window.
	anchor := time.Date(taxYear, time.July, 1, 0, 0, 0, 0, s.defaultLoc)
	summary, err := s.reporting.Aggregate(ctx, userID, domain.PeriodYearly, anchor, s.defaultLoc)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tax year %d: %w", taxYear, err)
	}

	estimate := taxrules.Estimate(userID, *summary, table, s.now().UTC())

	if err := s.estimateRepo.SaveEstimate(ctx, estimate); err != nil {
		s.LogError(ctx, err, "Failed to persist tax estimate",
			slog.String("user_id", userID),
			slog.Int("tax_year", taxYear))
		return nil, fmt.Errorf("failed to save tax estimate: %w", err)
	}

	s.LogInfo(ctx, "Tax estimate computed",
		slog.String("user_id", userID),
		slog.Int("tax_year", taxYear),
		slog.String("rule_version", estimate.RuleVersion),
		slog.String("taxable_income", estimate.EstimatedTaxableIncome.String()),
		slog.String("tax_owed", estimate.EstimatedTaxOwed.String()))
	return &estimate, nil
}

// LatestEstimate returns the stored estimate from the last EstimateTax run,
// pinned to the rule version it was computed with.
func (s *taxService) LatestEstimate(ctx context.Context, userID string, taxYear int) (*domain.TaxEstimate, error) {
	estimate, err := s.estimateRepo.FindEstimate(ctx, userID, taxYear)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored estimate: %w", err)
	}
	return estimate, nil
}
