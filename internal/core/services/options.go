package services

import (
	"github.com/SscSPs/water_billing_ledger/internal/core/ports"
	"github.com/SscSPs/water_billing_ledger/pkg/clock"
)

// ServiceOption is a functional option shared by every service through BaseService
type ServiceOption func(*BaseService)

// WithClock sets the time source used for audit stamps and date maths.
func WithClock(c clock.Clock) ServiceOption {
	return func(s *BaseService) {
		s.Clock = c
	}
}

// WithEventPublisher sets where ledger events are delivered.
func WithEventPublisher(p ports.EventPublisher) ServiceOption {
	return func(s *BaseService) {
		s.Events = p
	}
}

func newBaseService(options []ServiceOption) BaseService {
	var base BaseService
	for _, option := range options {
		option(&base)
	}
	return base
}
