package services

import (
	"fmt"
	"time"

	"github.com/gigworks/gigtax/internal/classifier"
	portsrepo "github.com/gigworks/gigtax/internal/core/ports/repositories"
	portssvc "github.com/gigworks/gigtax/internal/core/ports/services"
	"github.com/gigworks/gigtax/internal/taxrules"
	"github.com/gigworks/gigtax/pkg/config"
)

// ContainerOption injects optional infrastructure into the container.
type ContainerOption func(*containerDeps)

type containerDeps struct {
	lock   portsrepo.SummaryLock
	cache  portsrepo.ReportCache
	scorer portssvc.ModelScorer
}

// WithContainerSummaryLock uses an external (e.g. redis) summary lock.
func WithContainerSummaryLock(lock portsrepo.SummaryLock) ContainerOption {
	return func(d *containerDeps) {
		d.lock = lock
	}
}

// WithContainerReportCache enables the report cache.
func WithContainerReportCache(cache portsrepo.ReportCache) ContainerOption {
	return func(d *containerDeps) {
		d.cache = cache
	}
}

// WithContainerModelScorer uses an external (e.g. Gemini-backed) scorer.
func WithContainerModelScorer(scorer portssvc.ModelScorer) ContainerOption {
	return func(d *containerDeps) {
		d.scorer = scorer
	}
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, options ...ContainerOption) (*portssvc.ServiceContainer, error) {
	deps := &containerDeps{}
	for _, option := range options {
		option(deps)
	}

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_TIMEZONE %q: %w", cfg.DefaultTimezone, err)
	}
	weekStart, err := parseWeekday(cfg.WeekStartDay)
	if err != nil {
		return nil, err
	}

	ruleTable := classifier.DefaultRuleTable()
	if cfg.RuleTablePath != "" {
		ruleTable, err = classifier.LoadRuleTable(cfg.RuleTablePath)
		if err != nil {
			return nil, err
		}
	}

	registry := taxrules.DefaultRegistry()
	if cfg.TaxTablePath != "" {
		registry, err = taxrules.LoadRegistry(cfg.TaxTablePath)
		if err != nil {
			return nil, err
		}
	}

	container := &portssvc.ServiceContainer{}

	classifierOpts := []ClassifierServiceOption{
		WithRuleTable(ruleTable),
		WithMinConfidence(cfg.ClassifierMinConfidence),
		WithScoreTimeout(cfg.ClassifierTimeout),
	}
	if deps.scorer != nil {
		classifierOpts = append(classifierOpts, WithModelScorer(deps.scorer))
	}
	if deps.cache != nil {
		classifierOpts = append(classifierOpts, WithClassifierReportCache(deps.cache))
	}
	container.Classifier = NewClassifierService(repos.AssignmentRepo, repos.TransactionRepo, classifierOpts...)

	normalizerOpts := []NormalizerServiceOption{}
	if deps.cache != nil {
		normalizerOpts = append(normalizerOpts, WithNormalizerReportCache(deps.cache))
	}
	container.Normalizer = NewNormalizerService(repos.TransactionRepo, repos.AssignmentRepo, container.Classifier, normalizerOpts...)

	reportingOpts := []ReportingServiceOption{
		WithDefaultTimezone(loc),
		WithWeekStart(weekStart),
	}
	if deps.lock != nil {
		reportingOpts = append(reportingOpts, WithSummaryLock(deps.lock))
	}
	if deps.cache != nil {
		reportingOpts = append(reportingOpts, WithReportCache(deps.cache, cfg.SummaryCacheTTL))
	}
	container.Reporting = NewReportingService(repos.TransactionRepo, repos.SummaryRepo, reportingOpts...)

	container.Tax = NewTaxService(container.Reporting, repos.EstimateRepo, registry, WithTaxTimezone(loc))

	return container, nil
}

func parseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == name {
			return d, nil
		}
	}
	return time.Monday, fmt.Errorf("invalid WEEK_START_DAY %q", name)
}
