package main

import (
	"cbe/src/common"
	"cbe/src/db"
	"cbe/src/lib"
	"cbe/src/middlewares"
	"cbe/src/models"
	"cbe/src/types"
	"cbe/src/utils"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

func statusForError(err error) int {
	switch {
	case errors.Is(err, common.ErrUnitNotFound),
		errors.Is(err, common.ErrBookingNotFound),
		errors.Is(err, common.ErrPaymentNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrDatesUnavailable),
		errors.Is(err, common.ErrBookingNotPending),
		errors.Is(err, common.ErrPaymentNotEligible):
		return http.StatusConflict
	case errors.Is(err, utils.ErrInvalidDateRange):
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

// notifyGuest sends lifecycle emails best effort. Mail problems are logged
// and never surface to the API caller.
func notifyGuest(booking *models.BookingRequest, subject string, body string) {
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		return
	}
	err := lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: os.Getenv("SMTP_FROM_NAME"),
		To:       []string{booking.GuestEmail},
		Subject:  subject,
		Body:     body,
	})
	if err != nil {
		log.Printf("Error sending mail for booking %d: %s\n", booking.ID, err.Error())
	}
}

func bookingPublicHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/booking-request", middlewares.RateLimit("booking", 10, time.Hour), func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, err := common.CreateBookingRequest(&body)
			if err != nil {
				ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
				return
			}
			go notifyGuest(booking, "Booking request received",
				fmt.Sprintf("Hi %s, we received your booking request for %s to %s. We will confirm availability shortly.",
					booking.GuestName, booking.CheckInDate, booking.CheckOutDate))
			ctx.JSON(http.StatusCreated, gin.H{"data": booking})
		})
	return g
}

func bookingAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/booking-requests", func(ctx *gin.Context) {
			var query struct {
				Status *types.BookingStatus `form:"status"`
				UnitID *uint                `form:"unit_id"`
			}
			if err := ctx.BindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			tx := db.Model(&models.BookingRequest{}).Preload("Unit")
			if query.Status != nil {
				tx = tx.Where("status = ?", *query.Status)
			}
			if query.UnitID != nil {
				tx = tx.Where("unit_id = ?", *query.UnitID)
			}
			var bookings []models.BookingRequest
			if err := tx.Order("created_at DESC").Limit(100).Find(&bookings).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/booking-requests/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var booking models.BookingRequest
			if err := db.
				Model(&models.BookingRequest{}).
				Preload("Unit").
				First(&booking, params.ID).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/booking-requests/:id/approve", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			actor := ctx.GetString("email")
			booking, err := common.ApproveBooking(params.ID, actor)
			if err != nil {
				// Approval may have landed with only the capture failing.
				if booking != nil {
					ctx.JSON(http.StatusAccepted, gin.H{"data": booking, "warning": err.Error()})
					return
				}
				ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
				return
			}
			go notifyGuest(booking, "Booking approved",
				fmt.Sprintf("Hi %s, your booking from %s to %s has been approved and your payment is being processed.",
					booking.GuestName, booking.CheckInDate, booking.CheckOutDate))
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/booking-requests/:id/reject", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.RejectBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, err := common.RejectBooking(params.ID, body.RejectionReason)
			if err != nil {
				ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
				return
			}
			go notifyGuest(booking, "Booking request declined",
				fmt.Sprintf("Hi %s, unfortunately your booking from %s to %s could not be confirmed: %s",
					booking.GuestName, booking.CheckInDate, booking.CheckOutDate, body.RejectionReason))
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		})
	return g
}
