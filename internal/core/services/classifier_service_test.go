package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/gigworks/gigtax/internal/apperrors"
	"github.com/gigworks/gigtax/internal/core/domain"
	portssvc "github.com/gigworks/gigtax/internal/core/ports/services"
	"github.com/gigworks/gigtax/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ModelScorer ---
type MockModelScorer struct {
	mock.Mock
}

func (m *MockModelScorer) Score(ctx context.Context, description string) (domain.Category, float64, error) {
	args := m.Called(ctx, description)
	return args.Get(0).(domain.Category), args.Get(1).(float64), args.Error(2)
}

// --- Test Suite ---
type ClassifierServiceTestSuite struct {
	suite.Suite
	mockAssignmentRepo *MockAssignmentRepository
	mockTxnRepo        *MockTransactionRepository
	now                time.Time
}

func (suite *ClassifierServiceTestSuite) SetupTest() {
	suite.mockAssignmentRepo = new(MockAssignmentRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.now = time.Date(2024, time.July, 10, 12, 0, 0, 0, time.UTC)
}

func (suite *ClassifierServiceTestSuite) service(options ...services.ClassifierServiceOption) portssvc.ClassifierSvcFacade {
	options = append(options, services.WithClassifierClock(func() time.Time { return suite.now }))
	return services.NewClassifierService(suite.mockAssignmentRepo, suite.mockTxnRepo, options...)
}

func expenseTxn(id, description string) domain.Transaction {
	return domain.Transaction{
		TransactionID: id,
		UserID:        "user-1",
		Platform:      domain.PlatformManual,
		Amount:        decimal.RequireFromString("-42.10"),
		Description:   description,
	}
}

// expectSaveAndReload wires the save-then-reload sequence Classify runs: the
// write may lose a concurrent conflict, so the service reports what is active
// afterwards.
func (suite *ClassifierServiceTestSuite) expectSaveAndReload(ctx context.Context, txnID string, match func(domain.CategoryAssignment) bool) {
	suite.mockAssignmentRepo.On("FindActiveAssignment", ctx, txnID).Return(nil, apperrors.ErrNotFound).Once()
	var saved domain.CategoryAssignment
	suite.mockAssignmentRepo.On("SaveAssignment", ctx, mock.MatchedBy(func(a domain.CategoryAssignment) bool {
		if !match(a) {
			return false
		}
		saved = a
		return true
	})).Return(nil).Once()
	suite.mockAssignmentRepo.On("FindActiveAssignment", ctx, txnID).Return(&saved, nil).Once()
}

// --- Test Cases ---

func (suite *ClassifierServiceTestSuite) TestClassify_EarningsBypass() {
	ctx := context.Background()
	txn := domain.Transaction{
		TransactionID: "txn-1",
		Amount:        decimal.RequireFromString("150"),
		Description:   "Weekly payout",
	}

	suite.expectSaveAndReload(ctx, "txn-1", func(a domain.CategoryAssignment) bool {
		return a.Category == domain.CategoryEarnings && a.Confidence == 1.0 && a.Method == domain.MethodAutomatic
	})

	assignment, err := suite.service().Classify(ctx, txn)

	suite.Require().NoError(err)
	suite.Equal(domain.CategoryEarnings, assignment.Category)
	suite.Equal(1.0, assignment.Confidence)
	suite.mockAssignmentRepo.AssertExpectations(suite.T())
}

func (suite *ClassifierServiceTestSuite) TestClassify_RuleStageMatch() {
	ctx := context.Background()

	suite.expectSaveAndReload(ctx, "txn-1", func(a domain.CategoryAssignment) bool {
		return a.Category == domain.CategoryVehicle && a.Confidence == 1.0
	})

	assignment, err := suite.service().Classify(ctx, expenseTxn("txn-1", "Shell Gas Station #42"))

	suite.Require().NoError(err)
	suite.Equal(domain.CategoryVehicle, assignment.Category)
	suite.Equal(1.0, assignment.Confidence)
	suite.Equal(suite.now, assignment.AssignedAt)
}

func (suite *ClassifierServiceTestSuite) TestClassify_ModelStageBelowThresholdYieldsUnclassified() {
	ctx := context.Background()

	// "ambiguous misc" spreads its weight across categories; the best share
	// 0.4 is below the 0.55 threshold.
	suite.expectSaveAndReload(ctx, "txn-1", func(a domain.CategoryAssignment) bool {
		return a.Category == domain.CategoryUnclassified
	})

	assignment, err := suite.service().Classify(ctx, expenseTxn("txn-1", "ambiguous misc"))

	suite.Require().NoError(err)
	suite.Equal(domain.CategoryUnclassified, assignment.Category)
	suite.InDelta(0.4, assignment.Confidence, 1e-9)
}

func (suite *ClassifierServiceTestSuite) TestClassify_ModelStageAboveThreshold() {
	ctx := context.Background()
	scorer := new(MockModelScorer)
	scorer.On("Score", mock.Anything, "weird merchant name").Return(domain.CategoryMeals, 0.8, nil).Once()

	suite.expectSaveAndReload(ctx, "txn-1", func(a domain.CategoryAssignment) bool {
		return a.Category == domain.CategoryMeals && a.Confidence == 0.8
	})

	assignment, err := suite.service(services.WithModelScorer(scorer)).Classify(ctx, expenseTxn("txn-1", "weird merchant name"))

	suite.Require().NoError(err)
	suite.Equal(domain.CategoryMeals, assignment.Category)
	scorer.AssertExpectations(suite.T())
}

func (suite *ClassifierServiceTestSuite) TestClassify_ScorerErrorDegradesToUnclassified() {
	ctx := context.Background()
	scorer := new(MockModelScorer)
	scorer.On("Score", mock.Anything, mock.Anything).Return(domain.CategoryUnclassified, 0.0, assert.AnError).Once()

	suite.expectSaveAndReload(ctx, "txn-1", func(a domain.CategoryAssignment) bool {
		return a.Category == domain.CategoryUnclassified && a.Confidence == 0
	})

	assignment, err := suite.service(services.WithModelScorer(scorer)).Classify(ctx, expenseTxn("txn-1", "anything"))

	suite.Require().NoError(err)
	suite.Equal(domain.CategoryUnclassified, assignment.Category)
	suite.Zero(assignment.Confidence)
}

func (suite *ClassifierServiceTestSuite) TestClassify_ExistingOverrideShortCircuits() {
	ctx := context.Background()
	override := &domain.CategoryAssignment{
		TransactionID: "txn-1",
		Category:      domain.CategorySupplies,
		Method:        domain.MethodManualOverride,
	}

	suite.mockAssignmentRepo.On("FindActiveAssignment", ctx, "txn-1").Return(override, nil).Once()

	assignment, err := suite.service().Classify(ctx, expenseTxn("txn-1", "Shell Gas Station"))

	suite.Require().NoError(err)
	suite.Equal(override, assignment)
	suite.mockAssignmentRepo.AssertNotCalled(suite.T(), "SaveAssignment", mock.Anything, mock.Anything)
}

func (suite *ClassifierServiceTestSuite) TestOverride_Success() {
	ctx := context.Background()
	txn := expenseTxn("txn-1", "Shell Gas Station")

	suite.mockTxnRepo.On("FindTransactionByID", ctx, "txn-1").Return(&txn, nil).Once()
	suite.mockAssignmentRepo.On("SaveAssignment", ctx, mock.MatchedBy(func(a domain.CategoryAssignment) bool {
		return a.Method == domain.MethodManualOverride && a.Category == domain.CategoryMeals && a.Confidence == 1.0
	})).Return(nil).Once()

	assignment, err := suite.service().Override(ctx, "txn-1", domain.CategoryMeals)

	suite.Require().NoError(err)
	suite.Equal(domain.CategoryMeals, assignment.Category)
	suite.Equal(domain.MethodManualOverride, assignment.Method)
	suite.False(assignment.Stale)
	suite.mockAssignmentRepo.AssertExpectations(suite.T())
}

func (suite *ClassifierServiceTestSuite) TestOverride_InvalidCategory() {
	ctx := context.Background()

	_, err := suite.service().Override(ctx, "txn-1", domain.Category("PETS"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "FindTransactionByID", mock.Anything, mock.Anything)
}

func (suite *ClassifierServiceTestSuite) TestOverride_EarningsCategoryRejected() {
	ctx := context.Background()

	_, err := suite.service().Override(ctx, "txn-1", domain.CategoryEarnings)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ClassifierServiceTestSuite) TestOverride_TransactionNotFound() {
	ctx := context.Background()

	suite.mockTxnRepo.On("FindTransactionByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service().Override(ctx, "missing", domain.CategoryMeals)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ClassifierServiceTestSuite) TestClearOverride_Reclassifies() {
	ctx := context.Background()
	txn := expenseTxn("txn-1", "Shell Gas Station")
	override := &domain.CategoryAssignment{
		TransactionID: "txn-1",
		Category:      domain.CategorySupplies,
		Method:        domain.MethodManualOverride,
	}

	suite.mockAssignmentRepo.On("FindActiveAssignment", ctx, "txn-1").Return(override, nil).Once()
	suite.mockAssignmentRepo.On("DeleteAssignment", ctx, "txn-1").Return(nil).Once()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, "txn-1").Return(&txn, nil).Once()
	// Reclassification runs the full Classify flow against the rule stage.
	suite.expectSaveAndReload(ctx, "txn-1", func(a domain.CategoryAssignment) bool {
		return a.Category == domain.CategoryVehicle && a.Method == domain.MethodAutomatic
	})

	assignment, err := suite.service().ClearOverride(ctx, "txn-1")

	suite.Require().NoError(err)
	suite.Equal(domain.CategoryVehicle, assignment.Category)
	suite.Equal(domain.MethodAutomatic, assignment.Method)
	suite.mockAssignmentRepo.AssertExpectations(suite.T())
}

func (suite *ClassifierServiceTestSuite) TestClearOverride_NoOverrideActive() {
	ctx := context.Background()
	automatic := &domain.CategoryAssignment{
		TransactionID: "txn-1",
		Category:      domain.CategoryVehicle,
		Method:        domain.MethodAutomatic,
	}

	suite.mockAssignmentRepo.On("FindActiveAssignment", ctx, "txn-1").Return(automatic, nil).Once()

	_, err := suite.service().ClearOverride(ctx, "txn-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockAssignmentRepo.AssertNotCalled(suite.T(), "DeleteAssignment", mock.Anything, mock.Anything)
}

func (suite *ClassifierServiceTestSuite) TestOverride_InvalidatesReportCache() {
	ctx := context.Background()
	cache := new(MockReportCache)
	txn := expenseTxn("txn-1", "Shell Gas Station")

	suite.mockTxnRepo.On("FindTransactionByID", ctx, "txn-1").Return(&txn, nil).Once()
	suite.mockAssignmentRepo.On("SaveAssignment", ctx, mock.AnythingOfType("domain.CategoryAssignment")).Return(nil).Once()
	cache.On("InvalidateUser", ctx, "user-1").Return(nil).Once()

	_, err := suite.service(services.WithClassifierReportCache(cache)).Override(ctx, "txn-1", domain.CategoryMeals)

	suite.Require().NoError(err)
	cache.AssertExpectations(suite.T())
}

func (suite *ClassifierServiceTestSuite) TestClearOverride_InvalidatesReportCache() {
	ctx := context.Background()
	cache := new(MockReportCache)
	txn := expenseTxn("txn-1", "Shell Gas Station")
	override := &domain.CategoryAssignment{
		TransactionID: "txn-1",
		Category:      domain.CategorySupplies,
		Method:        domain.MethodManualOverride,
	}

	suite.mockAssignmentRepo.On("FindActiveAssignment", ctx, "txn-1").Return(override, nil).Once()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, "txn-1").Return(&txn, nil).Once()
	suite.mockAssignmentRepo.On("DeleteAssignment", ctx, "txn-1").Return(nil).Once()
	suite.expectSaveAndReload(ctx, "txn-1", func(a domain.CategoryAssignment) bool {
		return a.Method == domain.MethodAutomatic
	})
	cache.On("InvalidateUser", ctx, "user-1").Return(nil).Once()

	_, err := suite.service(services.WithClassifierReportCache(cache)).ClearOverride(ctx, "txn-1")

	suite.Require().NoError(err)
	cache.AssertExpectations(suite.T())
}

func (suite *ClassifierServiceTestSuite) TestClassify_CustomThreshold() {
	ctx := context.Background()
	scorer := new(MockModelScorer)
	scorer.On("Score", mock.Anything, mock.Anything).Return(domain.CategoryMeals, 0.5, nil).Once()

	// With the threshold lowered to 0.4, a 0.5-confidence guess sticks.
	suite.expectSaveAndReload(ctx, "txn-1", func(a domain.CategoryAssignment) bool {
		return a.Category == domain.CategoryMeals
	})

	assignment, err := suite.service(
		services.WithModelScorer(scorer),
		services.WithMinConfidence(0.4),
	).Classify(ctx, expenseTxn("txn-1", "corner diner"))

	suite.Require().NoError(err)
	suite.Equal(domain.CategoryMeals, assignment.Category)
}

func TestClassifierServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ClassifierServiceTestSuite))
}
