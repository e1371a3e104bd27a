package common

import (
	"cbe/src/models"
	"cbe/src/types"
	"cbe/src/utils"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pendingBookingBody(unitID uint, checkIn, checkOut string) *types.CreateBookingRequestBody {
	return &types.CreateBookingRequestBody{
		UnitID:       unitID,
		GuestName:    "Ana Benitez",
		GuestEmail:   "ana@example.com",
		GuestPhone:   "+595981123456",
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
	}
}

func TestCreateBookingRequestPricing(t *testing.T) {
	d := newTestDB(t)
	unit := createTestUnit(t, d, 50, "http://feeds.local/1.ics")

	booking, err := CreateBookingRequest(pendingBookingBody(unit.ID, "2027-03-01", "2027-03-04"))
	assert.Nil(t, err)
	assert.Equal(t, types.BOOKING_PENDING, booking.Status)
	assert.Equal(t, float64(150), booking.TotalPrice)
	assert.False(t, booking.LastSyncAtSubmission.IsZero())
}

func TestCreateBookingRequestOverlapRejected(t *testing.T) {
	d := newTestDB(t)
	unit := createTestUnit(t, d, 50, "http://feeds.local/1.ics")
	assert.Nil(t, ReplaceBlockedDates(unit.ID, []string{"2027-03-03"}))

	_, err := CreateBookingRequest(pendingBookingBody(unit.ID, "2027-03-02", "2027-03-05"))
	assert.ErrorIs(t, err, ErrDatesUnavailable)
}

func TestCreateBookingRequestCheckoutDayIsOpen(t *testing.T) {
	d := newTestDB(t)
	unit := createTestUnit(t, d, 50, "http://feeds.local/1.ics")
	assert.Nil(t, ReplaceBlockedDates(unit.ID, []string{"2027-03-07"}))

	// Checking out the morning a new stay begins is allowed.
	booking, err := CreateBookingRequest(pendingBookingBody(unit.ID, "2027-03-05", "2027-03-07"))
	assert.Nil(t, err)
	assert.Equal(t, float64(100), booking.TotalPrice)
}

func TestCreateBookingRequestInvalidRange(t *testing.T) {
	d := newTestDB(t)
	unit := createTestUnit(t, d, 50, "http://feeds.local/1.ics")

	_, err := CreateBookingRequest(pendingBookingBody(unit.ID, "2027-03-04", "2027-03-01"))
	assert.ErrorIs(t, err, utils.ErrInvalidDateRange)

	_, err = CreateBookingRequest(pendingBookingBody(unit.ID, "2027-03-01", "2027-03-01"))
	assert.ErrorIs(t, err, utils.ErrInvalidDateRange)
}

func TestCreateBookingRequestUnknownOrInactiveUnit(t *testing.T) {
	d := newTestDB(t)
	_, err := CreateBookingRequest(pendingBookingBody(999, "2027-03-01", "2027-03-04"))
	assert.ErrorIs(t, err, ErrUnitNotFound)

	unit := createTestUnit(t, d, 50, "http://feeds.local/1.ics")
	assert.Nil(t, d.Model(unit).Update("status", types.UNIT_INACTIVE).Error)

	_, err = CreateBookingRequest(pendingBookingBody(unit.ID, "2027-03-01", "2027-03-04"))
	assert.ErrorIs(t, err, ErrUnitNotFound)
}

func TestApproveBookingHasOneWinner(t *testing.T) {
	d := newTestDB(t)
	unit := createTestUnit(t, d, 50, "http://feeds.local/1.ics")
	booking, err := CreateBookingRequest(pendingBookingBody(unit.ID, "2027-03-01", "2027-03-04"))
	assert.Nil(t, err)
	_, err = CreatePreauth(t.Context(), booking.ID)
	assert.Nil(t, err)

	approved, err := ApproveBooking(booking.ID, "admin@example.com")
	assert.Nil(t, err)
	assert.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, "admin@example.com", *approved.ApprovedBy)

	// Stub capture cascades the stored request to paid.
	var stored models.BookingRequest
	assert.Nil(t, d.First(&stored, booking.ID).Error)
	assert.Equal(t, types.BOOKING_PAID, stored.Status)

	_, err = ApproveBooking(booking.ID, "admin@example.com")
	assert.ErrorIs(t, err, ErrBookingNotPending)
}

func TestApproveBookingWithoutPayment(t *testing.T) {
	d := newTestDB(t)
	unit := createTestUnit(t, d, 50, "http://feeds.local/1.ics")
	booking, err := CreateBookingRequest(pendingBookingBody(unit.ID, "2027-03-01", "2027-03-04"))
	assert.Nil(t, err)

	approved, err := ApproveBooking(booking.ID, "admin@example.com")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
	assert.NotNil(t, approved)

	// Approval itself sticks even though the capture had nothing to settle.
	var stored models.BookingRequest
	assert.Nil(t, d.First(&stored, booking.ID).Error)
	assert.Equal(t, types.BOOKING_APPROVED, stored.Status)
}

func TestApproveBookingNotFound(t *testing.T) {
	newTestDB(t)
	_, err := ApproveBooking(42, "admin@example.com")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRejectBooking(t *testing.T) {
	d := newTestDB(t)
	unit := createTestUnit(t, d, 50, "http://feeds.local/1.ics")
	booking, err := CreateBookingRequest(pendingBookingBody(unit.ID, "2027-03-01", "2027-03-04"))
	assert.Nil(t, err)

	rejected, err := RejectBooking(booking.ID, "Dates no longer available")
	assert.Nil(t, err)
	assert.Equal(t, types.BOOKING_REJECTED, rejected.Status)
	assert.Equal(t, "Dates no longer available", *rejected.RejectionReason)
	assert.NotNil(t, rejected.RejectedAt)

	_, err = RejectBooking(booking.ID, "again")
	assert.ErrorIs(t, err, ErrBookingNotPending)

	var stored models.BookingRequest
	assert.Nil(t, d.First(&stored, booking.ID).Error)
	assert.Equal(t, types.BOOKING_REJECTED, stored.Status)
}
