package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
	"github.com/google/uuid"
)

type paymentService struct {
	BaseService
	paymentRepo portsrepo.PaymentRepositoryFacade
	accountRepo portsrepo.AccountReader
	ledger      portssvc.LedgerWriterSvc
}

// NewPaymentService creates a new payment service.
func NewPaymentService(paymentRepo portsrepo.PaymentRepositoryFacade, accountRepo portsrepo.AccountReader, ledger portssvc.LedgerWriterSvc, options ...ServiceOption) portssvc.PaymentSvcFacade {
	return &paymentService{
		BaseService: newBaseService(options),
		paymentRepo: paymentRepo,
		accountRepo: accountRepo,
		ledger:      ledger,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

func (s *paymentService) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest, actor string) (*domain.Payment, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}
	if req.Amount.Exponent() < -2 {
		return nil, fmt.Errorf("%w: payment amount %s has more than 2 decimal places", apperrors.ErrValidation, req.Amount.String())
	}
	method := domain.PaymentMethod(domain.NormalizeEnum(req.Method))
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, req.Method)
	}
	paymentDate, err := time.Parse(time.DateOnly, req.PaymentDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid paymentDate %q", apperrors.ErrValidation, req.PaymentDate)
	}

	account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Status == domain.AccountArchived {
		return nil, fmt.Errorf("%w: account %s is archived", apperrors.ErrValidation, account.AccountID)
	}

	now := s.Now()
	payment := domain.Payment{
		PaymentID:    uuid.NewString(),
		AccountID:    account.AccountID,
		Amount:       req.Amount,
		PaymentDate:  paymentDate,
		Method:       method,
		ControllerID: strings.TrimSpace(req.ControllerID),
		Reference:    strings.TrimSpace(req.Reference),
		CreatedAt:    now,
		CreatedBy:    actor,
	}
	_, err = s.ledger.ApplyDelta(ctx, domain.Posting{
		AccountID:   account.AccountID,
		Delta:       payment.Amount,
		Reason:      domain.ReasonPayment,
		ReferenceID: payment.PaymentID,
		Memo:        string(payment.Method) + " payment",
		Actor:       actor,
		At:          now,
		Payment:     &payment,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record payment", slog.String("account_id", account.AccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Payment recorded",
		slog.String("payment_id", payment.PaymentID),
		slog.String("account_id", payment.AccountID),
		slog.String("amount", payment.Amount.String()),
		slog.String("method", string(payment.Method)))
	return &payment, nil
}

func (s *paymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return s.paymentRepo.FindPaymentByID(ctx, paymentID)
}

func (s *paymentService) ListPayments(ctx context.Context, filter portsrepo.PaymentFilter) ([]domain.Payment, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fmt.Errorf("%w: 'to' is before 'from'", apperrors.ErrValidation)
	}
	return s.paymentRepo.ListPayments(ctx, filter)
}
