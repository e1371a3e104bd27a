package main

import (
	"cbe/src/common"
	"cbe/src/db"
	"cbe/src/lib"
	"cbe/src/models"
	"cbe/src/types"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

func paymentPublicHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/payments/preauth", func(ctx *gin.Context) {
			var body types.CreatePreauthRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := common.CreatePreauth(ctx.Request.Context(), body.BookingID)
			if err != nil {
				ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		})
	return g
}

func bancardWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/bancard", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		// The signature covers the raw body and must pass before anything
		// in the payload is trusted. Failures get one generic answer.
		whsecret := os.Getenv("BANCARD_WEBHOOK_SECRET")
		signature := ctx.GetHeader("X-Bancard-Signature")
		if !lib.VerifyWebhookSignature([]byte(whsecret), payload, signature) {
			log.Println("Error verifying webhook signature")
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
		if err := common.HandleBancardWebhook(payload); err != nil {
			ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"received": true})
	})
	return apiv1
}

func paymentAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/payments", func(ctx *gin.Context) {
			var query struct {
				Status *types.PaymentStatus `form:"status"`
			}
			if err := ctx.BindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			tx := db.Model(&models.Payment{})
			if query.Status != nil {
				tx = tx.Where("status = ?", *query.Status)
			}
			var payments []models.Payment
			if err := tx.Order("initiated_at DESC").Limit(100).Find(&payments).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": payments, "count": len(payments)})
		})
	return g
}
