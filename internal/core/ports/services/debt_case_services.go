package services

import (
	"context"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
)

// DebtSweepSvc runs the automatic part of the debt case lifecycle.
type DebtSweepSvc interface {
	// RunDailySweep closes repaid cases, opens cases for debts past the grace period, escalates
	// qualifying Monitoring cases and applies the daily penalty.
	RunDailySweep(ctx context.Context, day time.Time, actor string) (*domain.SweepResult, error)
}

// DebtCaseSvc handles manual case work.
type DebtCaseSvc interface {
	// Transition moves a case along the state machine. Invalid moves fail with
	// ErrInvalidTransition before anything is written.
	Transition(ctx context.Context, caseID string, target domain.DebtCaseStatus, actor string, action string) (*domain.DebtCase, error)
	// AddNote appends a history entry without changing the status.
	AddNote(ctx context.Context, caseID string, actor string, action string) (*domain.DebtCase, error)
	GetCase(ctx context.Context, caseID string) (*domain.DebtCase, error)
	ListCases(ctx context.Context, status domain.DebtCaseStatus) ([]domain.DebtCase, error)
	ListPenalties(ctx context.Context, caseID string) ([]domain.Penalty, error)
}

// DebtCaseSvcFacade combines all debt-case service interfaces
type DebtCaseSvcFacade interface {
	DebtSweepSvc
	DebtCaseSvc
}
