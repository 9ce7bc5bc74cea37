package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/core/ports"
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/google/uuid"
)

type checkClosingService struct {
	BaseService
	closingRepo portsrepo.CheckClosingRepositoryFacade
	locker      ports.Locker
	lockTTL     time.Duration
}

// NewCheckClosingService creates a new check closing service.
func NewCheckClosingService(closingRepo portsrepo.CheckClosingRepositoryFacade, locker ports.Locker, lockTTL time.Duration, options ...ServiceOption) portssvc.CheckClosingSvcFacade {
	return &checkClosingService{
		BaseService: newBaseService(options),
		closingRepo: closingRepo,
		locker:      locker,
		lockTTL:     lockTTL,
	}
}

var _ portssvc.CheckClosingSvcFacade = (*checkClosingService)(nil)

func (s *checkClosingService) CreateCheckClosing(ctx context.Context, date time.Time, controllerID string, notes string, actor string) (*domain.CheckClosing, error) {
	controllerID = strings.TrimSpace(controllerID)
	if controllerID == "" {
		return nil, fmt.Errorf("%w: controller is required", apperrors.ErrValidation)
	}
	day := domain.DateOnly(date)
	key := "check-closing:" + controllerID + ":" + day.Format(time.DateOnly)

	var created *domain.CheckClosing
	err := s.withLock(ctx, s.locker, key, s.lockTTL, func() error {
		closing := domain.CheckClosing{
			ClosingID:    uuid.NewString(),
			ClosingDate:  day,
			ControllerID: controllerID,
			Status:       domain.ClosingPending,
			Notes:        strings.TrimSpace(notes),
			AuditFields:  domain.NewAuditFields(actor, s.Now()),
		}
		var err error
		created, err = s.closingRepo.CreateClosing(ctx, closing)
		return err
	})
	if err != nil {
		s.LogWarn(ctx, "Check closing not created",
			slog.String("controller_id", controllerID),
			slog.String("closing_date", day.Format(time.DateOnly)),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.LogInfo(ctx, "Check closing created",
		slog.String("closing_id", created.ClosingID),
		slog.String("controller_id", controllerID),
		slog.Int("payments", len(created.PaymentIDs)),
		slog.String("total", created.TotalAmount.String()))
	s.Publish(ctx, domain.EventCheckClosingCreated, actor, created.ClosingID, map[string]any{
		"controllerID": controllerID,
		"closingDate":  day.Format(time.DateOnly),
		"payments":     len(created.PaymentIDs),
		"total":        created.TotalAmount.String(),
	})
	return created, nil
}

func (s *checkClosingService) ConfirmCheckClosing(ctx context.Context, closingID string, actor string) (*domain.CheckClosing, error) {
	if err := s.closingRepo.ConfirmClosing(ctx, closingID, actor, s.Now()); err != nil {
		s.LogWarn(ctx, "Check closing not confirmed", slog.String("closing_id", closingID), slog.String("error", err.Error()))
		return nil, err
	}
	s.LogInfo(ctx, "Check closing confirmed", slog.String("closing_id", closingID), slog.String("actor", actor))
	s.Publish(ctx, domain.EventCheckClosingConfirmed, actor, closingID, nil)
	return s.closingRepo.FindClosingByID(ctx, closingID)
}

func (s *checkClosingService) CancelCheckClosing(ctx context.Context, closingID string, reason string, actor string) (*domain.CheckClosing, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: a cancel reason is required", apperrors.ErrValidation)
	}
	if err := s.closingRepo.CancelClosing(ctx, closingID, reason, actor, s.Now()); err != nil {
		s.LogWarn(ctx, "Check closing not cancelled", slog.String("closing_id", closingID), slog.String("error", err.Error()))
		return nil, err
	}
	s.LogInfo(ctx, "Check closing cancelled", slog.String("closing_id", closingID), slog.String("actor", actor))
	s.Publish(ctx, domain.EventCheckClosingCancelled, actor, closingID, map[string]any{"reason": reason})
	return s.closingRepo.FindClosingByID(ctx, closingID)
}

func (s *checkClosingService) GetCheckClosing(ctx context.Context, closingID string) (*domain.CheckClosing, error) {
	return s.closingRepo.FindClosingByID(ctx, closingID)
}

func (s *checkClosingService) ListCheckClosings(ctx context.Context, controllerID string, from, to time.Time) ([]domain.CheckClosing, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: 'to' is before 'from'", apperrors.ErrValidation)
	}
	return s.closingRepo.ListClosings(ctx, strings.TrimSpace(controllerID), domain.DateOnly(from), domain.DateOnly(to))
}
