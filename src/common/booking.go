package common

import (
	"cbe/src/db"
	"cbe/src/models"
	"cbe/src/types"
	"cbe/src/utils"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
)

// CreateBookingRequest validates the requested stay against the unit's
// current blocked-date set and persists a pending request priced at
// nights x nightly rate. Availability is advisory: the snapshot can be
// stale, which is why the last successful sync time is stamped onto the
// request for the reviewing admin.
func CreateBookingRequest(body *types.CreateBookingRequestBody) (*models.BookingRequest, error) {
	if err := utils.ValidateDateRange(body.CheckInDate, body.CheckOutDate); err != nil {
		return nil, err
	}
	dbi := db.GetDb()
	var unit models.Unit
	if err := dbi.
		Where("id = ? AND status = ?", body.UnitID, types.UNIT_ACTIVE).
		First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}

	var blocked int64
	if err := dbi.
		Model(&models.BlockedDate{}).
		Where("unit_id = ? AND date >= ? AND date < ?", unit.ID, body.CheckInDate, body.CheckOutDate).
		Count(&blocked).Error; err != nil {
		return nil, err
	}
	if blocked > 0 {
		return nil, ErrDatesUnavailable
	}

	nights, err := utils.NightsBetween(body.CheckInDate, body.CheckOutDate)
	if err != nil {
		return nil, err
	}
	booking := models.BookingRequest{
		UnitID:               unit.ID,
		GuestName:            body.GuestName,
		GuestEmail:           body.GuestEmail,
		GuestPhone:           body.GuestPhone,
		CheckInDate:          body.CheckInDate,
		CheckOutDate:         body.CheckOutDate,
		SpecialRequests:      body.SpecialRequests,
		TotalPrice:           float64(nights) * unit.NightlyRate,
		Status:               types.BOOKING_PENDING,
		LastSyncAtSubmission: lastSuccessfulSyncAt(dbi, unit.ID),
	}
	if err := dbi.Create(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// lastSuccessfulSyncAt falls back to the current time when the unit has
// never synced, so the freshness stamp is never zero.
func lastSuccessfulSyncAt(dbi *gorm.DB, unitID uint) time.Time {
	var run models.SyncRun
	err := dbi.
		Where("unit_id = ? AND status = ?", unitID, types.SYNC_SUCCESS).
		Order("completed_at DESC").
		First(&run).Error
	if err != nil || run.CompletedAt == nil {
		return time.Now().UTC()
	}
	return *run.CompletedAt
}

// ApproveBooking moves a pending request to approved. The transition is a
// conditional update keyed on the prior status, so concurrent approvals of
// the same request resolve with exactly one winner. A successful approval
// triggers payment capture; a capture failure leaves the booking approved
// and is reported alongside it.
func ApproveBooking(id uint, actor string) (*models.BookingRequest, error) {
	dbi := db.GetDb()
	var booking models.BookingRequest
	now := time.Now().UTC()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		res := tx.
			Model(&models.BookingRequest{}).
			Where("id = ? AND status = ?", id, types.BOOKING_PENDING).
			Updates(map[string]interface{}{
				"status":      types.BOOKING_APPROVED,
				"approved_by": actor,
				"approved_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBookingNotPending
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	booking.Status = types.BOOKING_APPROVED
	booking.ApprovedBy = &actor
	booking.ApprovedAt = &now

	if err := CapturePayment(booking.ID); err != nil {
		log.Printf("[booking] Capture after approval of booking %d failed: %s\n", booking.ID, err.Error())
		return &booking, err
	}
	return &booking, nil
}

// RejectBooking moves a pending request to rejected with a mandatory
// reason, under the same status guard as approval.
func RejectBooking(id uint, reason string) (*models.BookingRequest, error) {
	dbi := db.GetDb()
	var booking models.BookingRequest
	now := time.Now().UTC()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		res := tx.
			Model(&models.BookingRequest{}).
			Where("id = ? AND status = ?", id, types.BOOKING_PENDING).
			Updates(map[string]interface{}{
				"status":           types.BOOKING_REJECTED,
				"rejected_at":      now,
				"rejection_reason": reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBookingNotPending
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	booking.Status = types.BOOKING_REJECTED
	booking.RejectedAt = &now
	booking.RejectionReason = &reason
	return &booking, nil
}
