package common

import "errors"

// Typed failures surfaced to callers. Handlers map these onto HTTP statuses;
// anything else is reported as a generic persistence failure.
var (
	ErrUnitNotFound           = errors.New("unit not found")
	ErrBookingNotFound        = errors.New("booking not found")
	ErrPaymentNotFound        = errors.New("payment record not found")
	ErrDatesUnavailable       = errors.New("selected dates are not available")
	ErrBookingNotPending      = errors.New("booking is not pending")
	ErrPaymentNotEligible     = errors.New("booking is not eligible for payment")
	ErrInvalidWebhookPayload  = errors.New("invalid webhook payload")
	ErrLiveCaptureUnsupported = errors.New("live capture not configured")
)
