package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fdcbooks/tax_ledger_app/internal/apperrors"
	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
	portsrepo "github.com/fdcbooks/tax_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/fdcbooks/tax_ledger_app/internal/core/ports/services"
	"github.com/fdcbooks/tax_ledger_app/internal/core/services"
	"github.com/fdcbooks/tax_ledger_app/internal/dto"
)

// --- Mock WorkpaperLockRepository ---
type MockWorkpaperLockRepository struct {
	mock.Mock
}

var _ portsrepo.WorkpaperLockRepository = (*MockWorkpaperLockRepository)(nil)

func (m *MockWorkpaperLockRepository) LockForWorkpaper(ctx context.Context, transactionIDs []string, workpaperID string, module domain.ModuleRouting, period string, actor domain.Actor, now time.Time) (*domain.LockResult, error) {
	args := m.Called(ctx, transactionIDs, workpaperID, module, period, actor, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LockResult), args.Error(1)
}

func (m *MockWorkpaperLockRepository) Unlock(ctx context.Context, transactionID string, actor domain.Actor, comment string, now time.Time) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, actor, comment, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockWorkpaperLockRepository) FindLinksByWorkpaper(ctx context.Context, workpaperID string) ([]domain.WorkpaperLink, error) {
	args := m.Called(ctx, workpaperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkpaperLink), args.Error(1)
}

// --- Test Suite Setup ---
type WorkpaperLockServiceTestSuite struct {
	suite.Suite
	mockRepo *MockWorkpaperLockRepository
	service  portssvc.WorkpaperLockSvcFacade
	taxAgent domain.Actor
	admin    domain.Actor
}

func (suite *WorkpaperLockServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockWorkpaperLockRepository)
	suite.service = services.NewWorkpaperLockService(suite.mockRepo)
	suite.taxAgent = domain.Actor{UserID: uuid.NewString(), Role: domain.RoleTaxAgent}
	suite.admin = domain.Actor{UserID: uuid.NewString(), Role: domain.RoleAdmin}
}

func (suite *WorkpaperLockServiceTestSuite) TestLockReportsBuckets() {
	ctx := context.Background()
	ids := []string{"t1", "t2", "t3", "t4"}
	req := dto.WorkpaperLockRequest{
		TransactionIDs: ids,
		WorkpaperID:    "wp-2025",
		Module:         string(domain.ModuleMotorVehicle),
		Period:         "2024-25",
	}
	want := &domain.LockResult{
		Requested:     4,
		Locked:        []string{"t1"},
		AlreadyLocked: []string{"t2"},
		Ineligible:    []string{"t3"},
		NotFound:      []string{"t4"},
	}

	suite.mockRepo.On("LockForWorkpaper", ctx, ids, "wp-2025", domain.ModuleMotorVehicle, "2024-25", suite.taxAgent, mock.AnythingOfType("time.Time")).Return(want, nil).Once()

	result, err := suite.service.LockForWorkpaper(ctx, req, suite.taxAgent)
	suite.Require().NoError(err)
	suite.Equal(want, result)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *WorkpaperLockServiceTestSuite) TestLockForbiddenForBookkeeper() {
	bookkeeper := domain.Actor{UserID: uuid.NewString(), Role: domain.RoleBookkeeper}
	req := dto.WorkpaperLockRequest{TransactionIDs: []string{"t1"}, WorkpaperID: "wp", Module: string(domain.ModuleGeneral), Period: "2024-25"}

	_, err := suite.service.LockForWorkpaper(context.Background(), req, bookkeeper)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockRepo.AssertNotCalled(suite.T(), "LockForWorkpaper")
}

func (suite *WorkpaperLockServiceTestSuite) TestLockRejectsUnknownModule() {
	req := dto.WorkpaperLockRequest{TransactionIDs: []string{"t1"}, WorkpaperID: "wp", Module: "VEHICLES", Period: "2024-25"}

	_, err := suite.service.LockForWorkpaper(context.Background(), req, suite.taxAgent)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *WorkpaperLockServiceTestSuite) TestUnlockRequiresAdmin() {
	_, err := suite.service.Unlock(context.Background(), "t1", "reopening for reclassification", suite.taxAgent)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockRepo.AssertNotCalled(suite.T(), "Unlock")
}

func (suite *WorkpaperLockServiceTestSuite) TestUnlockRequiresJustification() {
	_, err := suite.service.Unlock(context.Background(), "t1", "  oops  ", suite.admin)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "Unlock")
}

func (suite *WorkpaperLockServiceTestSuite) TestUnlockSuccessTrimsComment() {
	ctx := context.Background()
	unlocked := &domain.Transaction{TransactionID: "t1", Status: domain.StatusReadyForWorkpaper}

	suite.mockRepo.On("Unlock", ctx, "t1", suite.admin, "client supplied a corrected invoice", mock.AnythingOfType("time.Time")).Return(unlocked, nil).Once()

	txn, err := suite.service.Unlock(ctx, "t1", "  client supplied a corrected invoice  ", suite.admin)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusReadyForWorkpaper, txn.Status)
	suite.Nil(txn.LockedAt)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestWorkpaperLockServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WorkpaperLockServiceTestSuite))
}
