package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
	"github.com/google/uuid"
)

type meterReadingService struct {
	BaseService
	readingRepo portsrepo.MeterReadingRepositoryFacade
	accountRepo portsrepo.AccountReader
}

// NewMeterReadingService creates a new meter reading service.
func NewMeterReadingService(readingRepo portsrepo.MeterReadingRepositoryFacade, accountRepo portsrepo.AccountReader, options ...ServiceOption) portssvc.MeterReadingSvcFacade {
	return &meterReadingService{
		BaseService: newBaseService(options),
		readingRepo: readingRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.MeterReadingSvcFacade = (*meterReadingService)(nil)

func (s *meterReadingService) RecordReading(ctx context.Context, req dto.RecordReadingRequest, actor string) (*domain.MeterReading, error) {
	readingDate, err := time.Parse(time.DateOnly, req.ReadingDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid readingDate %q", apperrors.ErrValidation, req.ReadingDate)
	}
	if req.Value.IsNegative() {
		return nil, fmt.Errorf("%w: reading value must not be negative", apperrors.ErrValidation)
	}

	account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Status == domain.AccountArchived {
		return nil, fmt.Errorf("%w: account %s is archived", apperrors.ErrValidation, account.AccountID)
	}
	if account.WaterTariffMode != domain.ByMeter {
		return nil, fmt.Errorf("%w: account %s is billed per person", apperrors.ErrValidation, account.AccountID)
	}

	// Latest reading up to and including the same day.
	previous, err := s.readingRepo.FindLatestReadingBefore(ctx, account.AccountID, readingDate.AddDate(0, 0, 1))
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if previous != nil && req.Value.LessThan(previous.Value) && !req.ManualOverride {
		s.LogWarn(ctx, "Rejected decreasing meter reading",
			slog.String("account_id", account.AccountID),
			slog.String("previous", previous.Value.String()),
			slog.String("value", req.Value.String()))
		return nil, fmt.Errorf("account %s: value %s is below previous %s: %w",
			account.AccountID, req.Value.String(), previous.Value.String(), apperrors.ErrInvalidConsumption)
	}

	// A back-dated reading must not exceed the one that follows it.
	next, err := s.readingRepo.FindEarliestReadingAfter(ctx, account.AccountID, readingDate)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if next != nil && req.Value.GreaterThan(next.Value) && !req.ManualOverride {
		s.LogWarn(ctx, "Rejected meter reading above a later reading",
			slog.String("account_id", account.AccountID),
			slog.String("next", next.Value.String()),
			slog.Time("next_date", next.ReadingDate),
			slog.String("value", req.Value.String()))
		return nil, fmt.Errorf("account %s: value %s is above later reading %s on %s: %w",
			account.AccountID, req.Value.String(), next.Value.String(), next.ReadingDate.Format(time.DateOnly), apperrors.ErrInvalidConsumption)
	}

	reading := domain.MeterReading{
		ReadingID:      uuid.NewString(),
		AccountID:      account.AccountID,
		ReadingDate:    readingDate,
		Value:          req.Value,
		ManualOverride: req.ManualOverride,
		AuditFields:    domain.NewAuditFields(actor, s.Now()),
	}
	if err := s.readingRepo.SaveReading(ctx, reading); err != nil {
		s.LogError(ctx, err, "Failed to save meter reading", slog.String("account_id", account.AccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Meter reading recorded",
		slog.String("reading_id", reading.ReadingID),
		slog.String("account_id", reading.AccountID),
		slog.Bool("manual_override", reading.ManualOverride))
	return &reading, nil
}

func (s *meterReadingService) ListReadings(ctx context.Context, accountID string) ([]domain.MeterReading, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.readingRepo.ListReadings(ctx, accountID)
}
