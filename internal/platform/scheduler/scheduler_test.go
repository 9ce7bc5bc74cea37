package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/pkg/clock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type mockAccruals struct {
	mock.Mock
}

func (m *mockAccruals) GenerateMonthlyAccruals(ctx context.Context, period domain.BillingPeriod, accounts []domain.Account, tariff domain.Tariff, actor string) (*domain.AccrualRunResult, error) {
	args := m.Called(ctx, period, accounts, tariff, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccrualRunResult), args.Error(1)
}

func (m *mockAccruals) RunMonthlyAccruals(ctx context.Context, period domain.BillingPeriod, actor string) (*domain.AccrualRunResult, error) {
	args := m.Called(ctx, period, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccrualRunResult), args.Error(1)
}

type mockSweep struct {
	mock.Mock
}

func (m *mockSweep) RunDailySweep(ctx context.Context, day time.Time, actor string) (*domain.SweepResult, error) {
	args := m.Called(ctx, day, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SweepResult), args.Error(1)
}

type SchedulerTestSuite struct {
	suite.Suite
	accruals  *mockAccruals
	sweep     *mockSweep
	clock     *clock.Fixed
	scheduler *JobScheduler
}

func (s *SchedulerTestSuite) SetupTest() {
	s.accruals = new(mockAccruals)
	s.sweep = new(mockSweep)
	s.clock = clock.NewFixed(time.Date(2025, time.March, 3, 9, 30, 0, 0, time.UTC))
	scheduler, err := NewJobScheduler(s.accruals, s.sweep, s.clock, time.UTC, time.Hour, 2, nil)
	s.Require().NoError(err)
	s.scheduler = scheduler
}

func (s *SchedulerTestSuite) TestNewJobScheduler_RegistersCronEntries() {
	from := time.Date(2025, time.March, 3, 9, 30, 0, 0, time.UTC)

	s.Len(s.scheduler.cron.Entries(), 3)
	s.Equal(time.Date(2025, time.April, 2, 1, 0, 0, 0, time.UTC),
		s.scheduler.cron.Entry(s.scheduler.accrualEntry).Schedule.Next(from))
	s.Equal(time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC),
		s.scheduler.cron.Entry(s.scheduler.sweepEntry).Schedule.Next(from))
	s.Equal(from.Add(time.Hour),
		s.scheduler.cron.Entry(s.scheduler.catchUpEntry).Schedule.Next(from))
}

func (s *SchedulerTestSuite) TestNewJobScheduler_UsesLocation() {
	almaty := time.FixedZone("ALMT", 5*60*60)
	scheduler, err := NewJobScheduler(s.accruals, s.sweep, s.clock, almaty, time.Hour, 2, nil)
	s.Require().NoError(err)

	s.Equal(almaty, scheduler.cron.Location())
}

func (s *SchedulerTestSuite) TestNewJobScheduler_RejectsBadInterval() {
	_, err := NewJobScheduler(s.accruals, s.sweep, s.clock, time.UTC, 0, 2, nil)

	s.Error(err)
}

func (s *SchedulerTestSuite) TestRun_ChecksDueJobsAndStopsOnCancel() {
	swept := make(chan struct{})
	s.accruals.On("RunMonthlyAccruals", mock.Anything, mock.Anything, domain.SystemActor).
		Return(&domain.AccrualRunResult{}, nil).Once()
	s.sweep.On("RunDailySweep", mock.Anything, mock.Anything, domain.SystemActor).
		Return(&domain.SweepResult{}, nil).Once().
		Run(func(mock.Arguments) { close(swept) })
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		s.scheduler.Run(ctx)
		close(done)
	}()
	select {
	case <-swept:
	case <-time.After(time.Second):
		s.FailNow("sweep did not run on start")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.FailNow("scheduler did not stop")
	}
	s.accruals.AssertExpectations(s.T())
}

func (s *SchedulerTestSuite) TestTick_RunsEachJobOncePerDue() {
	february := domain.BillingPeriod{Year: 2025, Month: time.February}
	today := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

	s.accruals.On("RunMonthlyAccruals", mock.Anything, february, domain.SystemActor).
		Return(&domain.AccrualRunResult{Period: "2025-02"}, nil).Once()
	s.sweep.On("RunDailySweep", mock.Anything, today, domain.SystemActor).
		Return(&domain.SweepResult{Day: "2025-03-03"}, nil).Once()

	s.scheduler.Tick(context.Background())
	s.clock.Advance(time.Hour)
	s.scheduler.Tick(context.Background())

	s.accruals.AssertExpectations(s.T())
	s.sweep.AssertExpectations(s.T())
}

func (s *SchedulerTestSuite) TestTick_SweepsAgainOnNextDay() {
	s.accruals.On("RunMonthlyAccruals", mock.Anything, mock.Anything, domain.SystemActor).
		Return(&domain.AccrualRunResult{}, nil).Once()
	s.sweep.On("RunDailySweep", mock.Anything, mock.Anything, domain.SystemActor).
		Return(&domain.SweepResult{}, nil).Twice()

	s.scheduler.Tick(context.Background())
	s.clock.Advance(24 * time.Hour)
	s.scheduler.Tick(context.Background())

	s.sweep.AssertNumberOfCalls(s.T(), "RunDailySweep", 2)
	s.accruals.AssertNumberOfCalls(s.T(), "RunMonthlyAccruals", 1)
}

func (s *SchedulerTestSuite) TestTick_WaitsForAccrualDay() {
	s.clock.Set(time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC))
	s.sweep.On("RunDailySweep", mock.Anything, mock.Anything, domain.SystemActor).
		Return(&domain.SweepResult{}, nil).Once()

	s.scheduler.Tick(context.Background())

	s.accruals.AssertNotCalled(s.T(), "RunMonthlyAccruals", mock.Anything, mock.Anything, mock.Anything)
}

func (s *SchedulerTestSuite) TestTick_RetriesFailedJob() {
	s.accruals.On("RunMonthlyAccruals", mock.Anything, mock.Anything, domain.SystemActor).
		Return(nil, apperrors.ErrMissingTariff).Once()
	s.accruals.On("RunMonthlyAccruals", mock.Anything, mock.Anything, domain.SystemActor).
		Return(&domain.AccrualRunResult{}, nil).Once()
	s.sweep.On("RunDailySweep", mock.Anything, mock.Anything, domain.SystemActor).
		Return(nil, errors.New("connection refused")).Once()
	s.sweep.On("RunDailySweep", mock.Anything, mock.Anything, domain.SystemActor).
		Return(nil, apperrors.ErrConflict).Once()

	s.scheduler.Tick(context.Background())
	s.scheduler.Tick(context.Background())
	s.scheduler.Tick(context.Background())

	s.accruals.AssertNumberOfCalls(s.T(), "RunMonthlyAccruals", 2)
	s.sweep.AssertNumberOfCalls(s.T(), "RunDailySweep", 2)
}

func TestScheduler(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}
