package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/core/services"
	"github.com/SscSPs/water_billing_ledger/pkg/clock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type DebtCaseServiceTestSuite struct {
	suite.Suite
	accountRepo *MockAccountRepository
	caseRepo    *MockDebtCaseRepository
	tariffRepo  *MockTariffRepository
	ledger      *MockLedgerWriter
	events      *MockEventPublisher
	clock       *clock.Fixed
	service     portssvc.DebtCaseSvcFacade
	day         time.Time
	tariff      domain.Tariff
}

func (suite *DebtCaseServiceTestSuite) SetupTest() {
	suite.accountRepo = new(MockAccountRepository)
	suite.caseRepo = new(MockDebtCaseRepository)
	suite.tariffRepo = new(MockTariffRepository)
	suite.ledger = new(MockLedgerWriter)
	suite.events = new(MockEventPublisher)
	suite.clock = clock.NewFixed(time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC))
	suite.day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	suite.tariff = domain.Tariff{TariffID: "tariff-1", PenaltyRatePercent: dec("0.1"), IsActive: true}

	// Events are delivered best effort; these tests only assert on them where it matters.
	suite.events.On("Publish", mock.Anything, mock.AnythingOfType("domain.LedgerEvent")).Return(nil).Maybe()

	suite.service = services.NewDebtCaseService(
		suite.accountRepo,
		suite.caseRepo,
		suite.tariffRepo,
		suite.ledger,
		nil,
		services.DebtCaseServiceConfig{
			Policy: domain.DebtPolicy{GracePeriodDays: 30, MinDebtForAction: dec("100")},
		},
		services.WithClock(suite.clock),
		services.WithEventPublisher(suite.events),
	)
}

// debtor owes balance since 2025-01-01, 68 days before the sweep day.
func (suite *DebtCaseServiceTestSuite) debtor(id string, balance string) domain.Account {
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return domain.Account{
		AccountID:    id,
		Status:       domain.AccountActive,
		Balance:      dec(balance),
		OverdueSince: &since,
	}
}

func (suite *DebtCaseServiceTestSuite) expectSweepInputs(openCases []domain.DebtCase, debtors []domain.Account) {
	suite.tariffRepo.On("FindActiveTariff", mock.Anything).Return(&suite.tariff, nil).Once()
	suite.caseRepo.On("ListOpenCases", mock.Anything).Return(openCases, nil).Once()
	suite.accountRepo.On("ListAccountsInDebt", mock.Anything).Return(debtors, nil).Once()
}

func (suite *DebtCaseServiceTestSuite) TestSweep_OpensCaseAndChargesPenalty() {
	ctx := context.Background()
	suite.expectSweepInputs([]domain.DebtCase{}, []domain.Account{suite.debtor("acc-1", "-500")})

	suite.caseRepo.On("SaveCase", mock.Anything,
		mock.MatchedBy(func(c domain.DebtCase) bool {
			return c.AccountID == "acc-1" && c.Status == domain.CaseMonitoring && c.DebtAgeDays == 68 && c.DebtAmount.Equal(dec("500"))
		}),
		mock.MatchedBy(func(e domain.DebtCaseHistoryEntry) bool {
			return e.FromStatus == domain.CaseMonitoring && e.ToStatus == domain.CaseMonitoring && e.Actor == domain.SystemActor
		})).Return(nil).Once()
	suite.ledger.On("ApplyDelta", mock.Anything, mock.MatchedBy(func(p domain.Posting) bool {
		return p.Reason == domain.ReasonPenalty && p.Penalty != nil && p.CaseNote != nil && p.Delta.Equal(dec("-19"))
	})).Return(&domain.LedgerEntry{}, nil).Once()

	result, err := suite.service.RunDailySweep(ctx, suite.day.Add(15*time.Hour), domain.SystemActor)

	suite.Require().NoError(err)
	suite.Equal("2025-03-10", result.Day)
	suite.Len(result.CasesOpened, 1)
	suite.Empty(result.CasesEscalated, "a case is never escalated on the day it opens")
	suite.Require().Len(result.Penalties, 1)
	penalty := result.Penalties[0]
	suite.Equal(38, penalty.DaysOver)
	suite.True(dec("19").Equal(penalty.Amount), "penalty: %s", penalty.Amount)
	suite.True(dec("500").Equal(penalty.BaseDebt))
	suite.Equal(suite.day, penalty.PenaltyDate)
	suite.Equal(result.CasesOpened[0], penalty.CaseID)
	suite.caseRepo.AssertExpectations(suite.T())
	suite.ledger.AssertExpectations(suite.T())
}

func (suite *DebtCaseServiceTestSuite) TestSweep_EscalatesMonitoringCaseOnLaterDay() {
	ctx := context.Background()
	openCase := domain.DebtCase{
		CaseID:    "case-1",
		AccountID: "acc-1",
		Status:    domain.CaseMonitoring,
		OpenedAt:  time.Date(2025, 3, 1, 3, 0, 0, 0, time.UTC),
	}
	suite.expectSweepInputs([]domain.DebtCase{openCase}, []domain.Account{suite.debtor("acc-1", "-500")})

	suite.caseRepo.On("UpdateSnapshot", mock.Anything, "case-1", mock.Anything, 68, domain.SystemActor, suite.clock.Now()).Return(nil).Once()
	suite.caseRepo.On("TransitionCase", mock.Anything, "case-1", mock.MatchedBy(func(e domain.DebtCaseHistoryEntry) bool {
		return e.FromStatus == domain.CaseMonitoring && e.ToStatus == domain.CaseWarningSent
	}), (*time.Time)(nil)).Return(nil).Once()
	suite.ledger.On("ApplyDelta", mock.Anything, mock.MatchedBy(func(p domain.Posting) bool {
		return p.CaseNote != nil && p.CaseNote.FromStatus == domain.CaseWarningSent && p.Penalty.CaseID == "case-1"
	})).Return(&domain.LedgerEntry{}, nil).Once()

	result, err := suite.service.RunDailySweep(ctx, suite.day, domain.SystemActor)

	suite.Require().NoError(err)
	suite.Equal([]string{"case-1"}, result.CasesEscalated)
	suite.Empty(result.CasesOpened)
	suite.Len(result.Penalties, 1)
	suite.caseRepo.AssertNotCalled(suite.T(), "SaveCase", mock.Anything, mock.Anything, mock.Anything)
	suite.caseRepo.AssertExpectations(suite.T())
}

func (suite *DebtCaseServiceTestSuite) TestSweep_ClosesRepaidCase() {
	ctx := context.Background()
	openCase := domain.DebtCase{CaseID: "case-2", AccountID: "acc-2", Status: domain.CasePreLegal}
	suite.expectSweepInputs([]domain.DebtCase{openCase}, []domain.Account{})

	suite.accountRepo.On("FindAccountByID", mock.Anything, "acc-2").Return(&domain.Account{AccountID: "acc-2", Balance: dec("0")}, nil).Once()
	suite.caseRepo.On("TransitionCase", mock.Anything, "case-2", mock.MatchedBy(func(e domain.DebtCaseHistoryEntry) bool {
		return e.FromStatus == domain.CasePreLegal && e.ToStatus == domain.CaseClosed
	}), mock.AnythingOfType("*time.Time")).Return(nil).Once()

	result, err := suite.service.RunDailySweep(ctx, suite.day, domain.SystemActor)

	suite.Require().NoError(err)
	suite.Equal([]string{"case-2"}, result.CasesClosed)
	suite.Empty(result.Penalties)
	suite.ledger.AssertNotCalled(suite.T(), "ApplyDelta", mock.Anything, mock.Anything)
}

func (suite *DebtCaseServiceTestSuite) TestSweep_PenaltyOncePerDay() {
	ctx := context.Background()
	openCase := domain.DebtCase{CaseID: "case-1", AccountID: "acc-1", Status: domain.CaseWarningSent, OpenedAt: suite.day.AddDate(0, 0, -5)}
	suite.expectSweepInputs([]domain.DebtCase{openCase}, []domain.Account{suite.debtor("acc-1", "-500")})

	suite.caseRepo.On("UpdateSnapshot", mock.Anything, "case-1", mock.Anything, 68, domain.SystemActor, mock.Anything).Return(nil).Once()
	suite.ledger.On("ApplyDelta", mock.Anything, mock.AnythingOfType("domain.Posting")).Return(nil, apperrors.ErrDuplicatePenalty).Once()

	result, err := suite.service.RunDailySweep(ctx, suite.day, domain.SystemActor)

	suite.Require().NoError(err)
	suite.Empty(result.Penalties)
	suite.Equal([]string{"acc-1"}, result.PenaltiesSkipped)
	suite.Empty(result.Failures)
}

func (suite *DebtCaseServiceTestSuite) TestSweep_PenaltyWithdrawnWhenRepaidUnderLock() {
	ctx := context.Background()
	openCase := domain.DebtCase{CaseID: "case-1", AccountID: "acc-1", Status: domain.CaseWarningSent, OpenedAt: suite.day.AddDate(0, 0, -5)}
	suite.expectSweepInputs([]domain.DebtCase{openCase}, []domain.Account{suite.debtor("acc-1", "-500")})

	suite.caseRepo.On("UpdateSnapshot", mock.Anything, "case-1", mock.Anything, 68, domain.SystemActor, mock.Anything).Return(nil).Once()
	// A payment cleared the debt after ListAccountsInDebt read it.
	repaid := suite.debtor("acc-1", "0")
	suite.ledger.On("ApplyDelta", mock.Anything, mock.AnythingOfType("domain.Posting")).
		Return(func(_ context.Context, p domain.Posting) *domain.LedgerEntry {
			suite.Require().NotNil(p.ComputeDelta)
			_, ok := p.ComputeDelta(repaid)
			suite.False(ok)
			return nil
		}, apperrors.ErrPostingWithdrawn).Once()

	result, err := suite.service.RunDailySweep(ctx, suite.day, domain.SystemActor)

	suite.Require().NoError(err)
	suite.Empty(result.Penalties)
	suite.Empty(result.PenaltiesSkipped)
	suite.Empty(result.Failures)
	suite.ledger.AssertExpectations(suite.T())
}

func (suite *DebtCaseServiceTestSuite) TestSweep_PenaltyRepricedFromLockedBalance() {
	ctx := context.Background()
	openCase := domain.DebtCase{CaseID: "case-1", AccountID: "acc-1", Status: domain.CaseWarningSent, OpenedAt: suite.day.AddDate(0, 0, -5)}
	suite.expectSweepInputs([]domain.DebtCase{openCase}, []domain.Account{suite.debtor("acc-1", "-500")})

	suite.caseRepo.On("UpdateSnapshot", mock.Anything, "case-1", mock.Anything, 68, domain.SystemActor, mock.Anything).Return(nil).Once()
	// Another accrual landed after the snapshot; the ledger sees a larger debt.
	locked := suite.debtor("acc-1", "-1000")
	suite.ledger.On("ApplyDelta", mock.Anything, mock.AnythingOfType("domain.Posting")).
		Return(func(_ context.Context, p domain.Posting) *domain.LedgerEntry {
			delta, ok := p.ComputeDelta(locked)
			suite.Require().True(ok)
			p.Delta = delta
			return entryFor(p, locked.Balance.Add(delta))
		}, nil).Once()

	result, err := suite.service.RunDailySweep(ctx, suite.day, domain.SystemActor)

	suite.Require().NoError(err)
	suite.Require().Len(result.Penalties, 1)
	penalty := result.Penalties[0]
	suite.True(dec("38").Equal(penalty.Amount), "penalty: %s", penalty.Amount)
	suite.True(dec("1000").Equal(penalty.BaseDebt), "base debt: %s", penalty.BaseDebt)
	suite.Equal(38, penalty.DaysOver)
}

func (suite *DebtCaseServiceTestSuite) TestSweep_SmallDebtOpensCaseWithoutPenalty() {
	ctx := context.Background()
	suite.expectSweepInputs([]domain.DebtCase{}, []domain.Account{suite.debtor("acc-3", "-50")})
	suite.caseRepo.On("SaveCase", mock.Anything, mock.AnythingOfType("domain.DebtCase"), mock.AnythingOfType("domain.DebtCaseHistoryEntry")).Return(nil).Once()

	result, err := suite.service.RunDailySweep(ctx, suite.day, domain.SystemActor)

	suite.Require().NoError(err)
	suite.Len(result.CasesOpened, 1)
	suite.Empty(result.Penalties)
	suite.ledger.AssertNotCalled(suite.T(), "ApplyDelta", mock.Anything, mock.Anything)
}

func (suite *DebtCaseServiceTestSuite) TestSweep_InsideGracePeriodDoesNothing() {
	ctx := context.Background()
	recent := suite.debtor("acc-4", "-900")
	since := suite.day.AddDate(0, 0, -10)
	recent.OverdueSince = &since
	suite.expectSweepInputs([]domain.DebtCase{}, []domain.Account{recent})

	result, err := suite.service.RunDailySweep(ctx, suite.day, domain.SystemActor)

	suite.Require().NoError(err)
	suite.Empty(result.CasesOpened)
	suite.Empty(result.Penalties)
	suite.caseRepo.AssertNotCalled(suite.T(), "SaveCase", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DebtCaseServiceTestSuite) TestSweep_MissingTariff() {
	suite.tariffRepo.On("FindActiveTariff", mock.Anything).Return(nil, apperrors.ErrNotFound).Once()

	result, err := suite.service.RunDailySweep(context.Background(), suite.day, domain.SystemActor)

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrMissingTariff)
}

func (suite *DebtCaseServiceTestSuite) TestTransition_Allowed() {
	ctx := context.Background()
	before := &domain.DebtCase{CaseID: "case-1", AccountID: "acc-1", Status: domain.CaseWarningSent}
	after := &domain.DebtCase{CaseID: "case-1", AccountID: "acc-1", Status: domain.CasePreLegal}
	suite.caseRepo.On("FindCaseByID", ctx, "case-1").Return(before, nil).Once()
	suite.caseRepo.On("TransitionCase", ctx, "case-1", mock.MatchedBy(func(e domain.DebtCaseHistoryEntry) bool {
		return e.ToStatus == domain.CasePreLegal && e.Actor == "clerk-1" && e.Action == "letter handed over" && e.At.Equal(suite.clock.Now())
	}), (*time.Time)(nil)).Return(nil).Once()
	suite.caseRepo.On("FindCaseByID", ctx, "case-1").Return(after, nil).Once()

	updated, err := suite.service.Transition(ctx, "case-1", domain.CasePreLegal, "clerk-1", "letter handed over")

	suite.Require().NoError(err)
	suite.Equal(domain.CasePreLegal, updated.Status)
	suite.caseRepo.AssertExpectations(suite.T())
	suite.events.AssertCalled(suite.T(), "Publish", ctx, mock.MatchedBy(func(e domain.LedgerEvent) bool {
		return e.Type == domain.EventDebtCaseTransitioned && e.SubjectID == "case-1"
	}))
}

func (suite *DebtCaseServiceTestSuite) TestTransition_SkippingAStepIsRejected() {
	ctx := context.Background()
	suite.caseRepo.On("FindCaseByID", ctx, "case-1").Return(&domain.DebtCase{CaseID: "case-1", Status: domain.CaseMonitoring}, nil).Once()

	updated, err := suite.service.Transition(ctx, "case-1", domain.CaseLegalAction, "clerk-1", "")

	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.caseRepo.AssertNotCalled(suite.T(), "TransitionCase", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DebtCaseServiceTestSuite) TestTransition_ClosedIsTerminal() {
	ctx := context.Background()
	suite.caseRepo.On("FindCaseByID", ctx, "case-9").Return(&domain.DebtCase{CaseID: "case-9", Status: domain.CaseClosed}, nil).Once()

	_, err := suite.service.Transition(ctx, "case-9", domain.CaseMonitoring, "clerk-1", "reopen")

	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (suite *DebtCaseServiceTestSuite) TestTransition_ConcurrentChange() {
	ctx := context.Background()
	suite.caseRepo.On("FindCaseByID", ctx, "case-1").Return(&domain.DebtCase{CaseID: "case-1", Status: domain.CaseMonitoring}, nil).Once()
	suite.caseRepo.On("TransitionCase", ctx, "case-1", mock.AnythingOfType("domain.DebtCaseHistoryEntry"), (*time.Time)(nil)).Return(apperrors.ErrConflict).Once()

	_, err := suite.service.Transition(ctx, "case-1", domain.CaseWarningSent, "clerk-1", "")

	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *DebtCaseServiceTestSuite) TestAddNote_ClosedCase() {
	ctx := context.Background()
	suite.caseRepo.On("FindCaseByID", ctx, "case-9").Return(&domain.DebtCase{CaseID: "case-9", Status: domain.CaseClosed}, nil).Once()

	_, err := suite.service.AddNote(ctx, "case-9", "clerk-1", "called the abonent")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.caseRepo.AssertNotCalled(suite.T(), "AddHistory", mock.Anything, mock.Anything)
}

func (suite *DebtCaseServiceTestSuite) TestAddNote_KeepsStatus() {
	ctx := context.Background()
	c := &domain.DebtCase{CaseID: "case-1", Status: domain.CaseWarningSent}
	suite.caseRepo.On("FindCaseByID", ctx, "case-1").Return(c, nil).Twice()
	suite.caseRepo.On("AddHistory", ctx, mock.MatchedBy(func(e domain.DebtCaseHistoryEntry) bool {
		return e.FromStatus == domain.CaseWarningSent && e.ToStatus == domain.CaseWarningSent && e.Action == "called the abonent"
	})).Return(nil).Once()

	updated, err := suite.service.AddNote(ctx, "case-1", "clerk-1", "  called the abonent ")

	suite.Require().NoError(err)
	suite.Equal(domain.CaseWarningSent, updated.Status)
	suite.caseRepo.AssertExpectations(suite.T())
}

func (suite *DebtCaseServiceTestSuite) TestListCases_UnknownStatus() {
	_, err := suite.service.ListCases(context.Background(), domain.DebtCaseStatus("PAID"))

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestDebtCaseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DebtCaseServiceTestSuite))
}
