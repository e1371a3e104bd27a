package common

import (
	"cbe/src/config"
	"cbe/src/db"
	"cbe/src/lib"
	"cbe/src/models"
	"cbe/src/types"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PreauthResult struct {
	PaymentURL    string `json:"payment_url"`
	TransactionID string `json:"transaction_id"`
}

// CreatePreauth starts (or replays) the payment pre-authorization for a
// booking. The operation is idempotent on booking: a payment row that
// already carries a provider transaction id is returned as-is instead of
// hitting the provider again.
func CreatePreauth(ctx context.Context, bookingID uint) (*PreauthResult, error) {
	dbi := db.GetDb()
	var booking models.BookingRequest
	if err := dbi.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if booking.Status != types.BOOKING_PENDING && booking.Status != types.BOOKING_APPROVED {
		return nil, ErrPaymentNotEligible
	}

	var payment models.Payment
	err := dbi.Where("booking_id = ?", bookingID).First(&payment).Error
	if err == nil && payment.ProviderTransactionID != nil {
		return &PreauthResult{
			PaymentURL:    paymentReturnURL(bookingID),
			TransactionID: *payment.ProviderTransactionID,
		}, nil
	}
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		payment = models.Payment{
			BookingID: bookingID,
			Amount:    booking.TotalPrice,
			Status:    types.PAYMENT_PENDING,
		}
		if err := dbi.Create(&payment).Error; err != nil {
			return nil, err
		}
	}

	if config.GetPaymentMode() == config.PAYMENT_MODE_STUB {
		txid := fmt.Sprintf("stub_%s", payment.ID.String())
		if err := dbi.
			Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Updates(map[string]interface{}{
				"provider_transaction_id": txid,
				"provider_response":       types.JSONB{"mode": "stub", "operation": "preauth"},
			}).Error; err != nil {
			return nil, err
		}
		return &PreauthResult{PaymentURL: paymentReturnURL(bookingID), TransactionID: txid}, nil
	}

	client := lib.GetBancardClient()
	res, err := client.CreatePreauth(ctx, &lib.PreauthRequest{
		MerchantID:            client.MerchantID,
		Amount:                booking.TotalPrice,
		Currency:              "USD",
		Description:           fmt.Sprintf("Booking request #%d", bookingID),
		ExternalTransactionID: payment.ID.String(),
		Customer:              lib.PreauthCustomer{Name: booking.GuestName, Email: booking.GuestEmail},
		ReturnURL:             paymentReturnURL(bookingID),
		CancelURL:             paymentReturnURL(bookingID),
	})
	if err != nil {
		return nil, err
	}
	if err := dbi.
		Model(&models.Payment{}).
		Where("id = ?", payment.ID).
		Updates(map[string]interface{}{
			"provider_transaction_id": res.TransactionID,
			"provider_response":       res.Raw,
		}).Error; err != nil {
		return nil, err
	}
	return &PreauthResult{PaymentURL: res.PaymentURL, TransactionID: res.TransactionID}, nil
}

func paymentReturnURL(bookingID uint) string {
	return fmt.Sprintf("%s/bookings/%d/payment", config.DashboardURL(), bookingID)
}

// CapturePayment settles the pre-authorized amount for a booking. In stub
// mode the capture succeeds immediately and cascades the booking to paid.
// Live capture requires provider credentials this deployment does not
// carry, so it reports a typed error instead of pretending.
func CapturePayment(bookingID uint) error {
	dbi := db.GetDb()
	var payment models.Payment
	if err := dbi.Where("booking_id = ?", bookingID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}

	if config.GetPaymentMode() != config.PAYMENT_MODE_STUB {
		return ErrLiveCaptureUnsupported
	}
	now := time.Now().UTC()
	return dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Updates(map[string]interface{}{
				"status":            types.PAYMENT_COMPLETED,
				"completed_at":      now,
				"provider_response": types.JSONB{"mode": "stub", "operation": "capture"},
			}).Error; err != nil {
			return err
		}
		return tx.
			Model(&models.BookingRequest{}).
			Where("id = ?", bookingID).
			Update("status", types.BOOKING_PAID).Error
	})
}

// HandleBancardWebhook applies a provider notification to the payment it
// references. The external transaction id on the wire is our payment id.
// Unknown statuses are logged and ignored so provider-side additions never
// break the endpoint.
func HandleBancardWebhook(rawBody []byte) error {
	var event types.BancardWebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return ErrInvalidWebhookPayload
	}
	paymentID, err := uuid.Parse(event.ExternalTransactionID)
	if err != nil {
		return ErrInvalidWebhookPayload
	}
	var raw types.JSONB
	if err := json.Unmarshal(rawBody, &raw); err != nil {
		return ErrInvalidWebhookPayload
	}

	dbi := db.GetDb()
	var payment models.Payment
	if err := dbi.First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}

	now := time.Now().UTC()
	switch strings.ToLower(event.Status) {
	case "completed":
		return dbi.Transaction(func(tx *gorm.DB) error {
			if err := tx.
				Model(&models.Payment{}).
				Where("id = ?", payment.ID).
				Updates(map[string]interface{}{
					"status":            types.PAYMENT_COMPLETED,
					"completed_at":      now,
					"provider_response": raw,
				}).Error; err != nil {
				return err
			}
			return tx.
				Model(&models.BookingRequest{}).
				Where("id = ?", payment.BookingID).
				Update("status", types.BOOKING_PAID).Error
		})
	case "failed":
		reason := event.Reason
		if reason == "" {
			reason = "Payment failed"
		}
		return dbi.
			Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Updates(map[string]interface{}{
				"status":            types.PAYMENT_FAILED,
				"failed_at":         now,
				"failure_reason":    reason,
				"provider_response": raw,
			}).Error
	default:
		log.Printf("[payment] Ignoring webhook status %q for payment %s\n", event.Status, payment.ID)
		return nil
	}
}
