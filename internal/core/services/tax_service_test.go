package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/gigworks/gigtax/internal/apperrors"
	"github.com/gigworks/gigtax/internal/core/domain"
	portssvc "github.com/gigworks/gigtax/internal/core/ports/services"
	"github.com/gigworks/gigtax/internal/core/services"
	"github.com/gigworks/gigtax/internal/taxrules"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) Aggregate(ctx context.Context, userID string, kind domain.PeriodKind, anchor time.Time, loc *time.Location) (*domain.PeriodSummary, error) {
	args := m.Called(ctx, userID, kind, anchor, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodSummary), args.Error(1)
}

func (m *MockReportingService) LastComputed(ctx context.Context, userID string, kind domain.PeriodKind, anchor time.Time, loc *time.Location) (*domain.PeriodSummary, error) {
	args := m.Called(ctx, userID, kind, anchor, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodSummary), args.Error(1)
}

// --- Mock EstimateRepository ---
type MockEstimateRepository struct {
	mock.Mock
}

func (m *MockEstimateRepository) FindEstimate(ctx context.Context, userID string, taxYear int) (*domain.TaxEstimate, error) {
	args := m.Called(ctx, userID, taxYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxEstimate), args.Error(1)
}

func (m *MockEstimateRepository) SaveEstimate(ctx context.Context, estimate domain.TaxEstimate) error {
	args := m.Called(ctx, estimate)
	return args.Error(0)
}

// --- Test Suite ---
type TaxServiceTestSuite struct {
	suite.Suite
	mockReporting    *MockReportingService
	mockEstimateRepo *MockEstimateRepository
	now              time.Time
}

func (suite *TaxServiceTestSuite) SetupTest() {
	suite.mockReporting = new(MockReportingService)
	suite.mockEstimateRepo = new(MockEstimateRepository)
	suite.now = time.Date(2025, time.February, 1, 8, 0, 0, 0, time.UTC)
}

func (suite *TaxServiceTestSuite) service() portssvc.TaxService {
	return services.NewTaxService(
		suite.mockReporting,
		suite.mockEstimateRepo,
		taxrules.DefaultRegistry(),
		services.WithTaxClock(func() time.Time { return suite.now }),
	)
}

func (suite *TaxServiceTestSuite) yearlySummary(earnings, deductible string) *domain.PeriodSummary {
	return &domain.PeriodSummary{
		UserID:          "user-1",
		PeriodKind:      domain.PeriodYearly,
		TotalEarnings:   decimal.RequireFromString(earnings),
		TotalDeductible: decimal.RequireFromString(deductible),
	}
}

// --- Test Cases ---

func (suite *TaxServiceTestSuite) TestEstimateTax_Success() {
	ctx := context.Background()

	suite.mockReporting.On("Aggregate", ctx, "user-1", domain.PeriodYearly,
		mock.MatchedBy(func(anchor time.Time) bool { return anchor.Year() == 2024 }),
		mock.Anything,
	).Return(suite.yearlySummary("1200", "150"), nil).Once()
	suite.mockEstimateRepo.On("SaveEstimate", ctx, mock.MatchedBy(func(e domain.TaxEstimate) bool {
		return e.UserID == "user-1" && e.TaxYear == 2024 && e.RuleVersion == "2024.1"
	})).Return(nil).Once()

	estimate, err := suite.service().EstimateTax(ctx, "user-1", 2024)

	suite.Require().NoError(err)
	suite.True(estimate.EstimatedTaxableIncome.Equal(decimal.RequireFromString("1050")), "taxable: %s", estimate.EstimatedTaxableIncome)
	suite.True(estimate.EstimatedTaxOwed.Equal(decimal.RequireFromString("265.65")), "owed: %s", estimate.EstimatedTaxOwed)
	suite.Equal("2024.1", estimate.RuleVersion)
	suite.Equal(suite.now, estimate.ComputedAt)
	suite.mockEstimateRepo.AssertExpectations(suite.T())
}

func (suite *TaxServiceTestSuite) TestEstimateTax_UnsupportedYear() {
	ctx := context.Background()

	_, err := suite.service().EstimateTax(ctx, "user-1", 1999)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnsupportedTaxYear)
	suite.mockReporting.AssertNotCalled(suite.T(), "Aggregate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockEstimateRepo.AssertNotCalled(suite.T(), "SaveEstimate", mock.Anything, mock.Anything)
}

func (suite *TaxServiceTestSuite) TestEstimateTax_Deterministic() {
	ctx := context.Background()
	summary := suite.yearlySummary("48000.37", "1234.56")

	suite.mockReporting.On("Aggregate", ctx, "user-1", domain.PeriodYearly, mock.Anything, mock.Anything).
		Return(summary, nil).Twice()
	suite.mockEstimateRepo.On("SaveEstimate", ctx, mock.AnythingOfType("domain.TaxEstimate")).Return(nil).Twice()

	first, err := suite.service().EstimateTax(ctx, "user-1", 2024)
	suite.Require().NoError(err)
	second, err := suite.service().EstimateTax(ctx, "user-1", 2024)
	suite.Require().NoError(err)

	suite.Equal(first, second)
}

func (suite *TaxServiceTestSuite) TestEstimateTax_AggregationFailure() {
	ctx := context.Background()

	suite.mockReporting.On("Aggregate", ctx, "user-1", domain.PeriodYearly, mock.Anything, mock.Anything).
		Return(nil, assert.AnError).Once()

	_, err := suite.service().EstimateTax(ctx, "user-1", 2025)

	suite.Require().Error(err)
	suite.ErrorIs(err, assert.AnError)
	suite.mockEstimateRepo.AssertNotCalled(suite.T(), "SaveEstimate", mock.Anything, mock.Anything)
}

func (suite *TaxServiceTestSuite) TestEstimateTax_SaveFailure() {
	ctx := context.Background()

	suite.mockReporting.On("Aggregate", ctx, "user-1", domain.PeriodYearly, mock.Anything, mock.Anything).
		Return(suite.yearlySummary("1000", "0"), nil).Once()
	suite.mockEstimateRepo.On("SaveEstimate", ctx, mock.AnythingOfType("domain.TaxEstimate")).Return(assert.AnError).Once()

	_, err := suite.service().EstimateTax(ctx, "user-1", 2025)

	suite.Require().Error(err)
	suite.ErrorIs(err, assert.AnError)
}

func (suite *TaxServiceTestSuite) TestLatestEstimate_ReturnsStoredWithoutRecompute() {
	ctx := context.Background()
	stored := &domain.TaxEstimate{
		UserID:           "user-1",
		TaxYear:          2024,
		EstimatedTaxOwed: decimal.RequireFromString("265.65"),
		RuleVersion:      "2024.1",
	}

	suite.mockEstimateRepo.On("FindEstimate", ctx, "user-1", 2024).Return(stored, nil).Once()

	estimate, err := suite.service().LatestEstimate(ctx, "user-1", 2024)

	suite.Require().NoError(err)
	suite.Equal(stored, estimate)
	suite.mockReporting.AssertNotCalled(suite.T(), "Aggregate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockEstimateRepo.AssertNotCalled(suite.T(), "SaveEstimate", mock.Anything, mock.Anything)
}

func (suite *TaxServiceTestSuite) TestLatestEstimate_NoneStored() {
	ctx := context.Background()

	suite.mockEstimateRepo.On("FindEstimate", ctx, "user-1", 2025).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service().LatestEstimate(ctx, "user-1", 2025)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestTaxServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaxServiceTestSuite))
}
