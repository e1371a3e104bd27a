package main

import (
	"cbe/src/db"
	"cbe/src/models"
	"cbe/src/types"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func publicRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})
	unitPublicHandlers(apiv1)
	bookingPublicHandlers(apiv1)
	paymentPublicHandlers(apiv1)
	return apiv1
}

func unitPublicHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/units", func(ctx *gin.Context) {
			db := db.GetDb()
			var units []models.Unit
			if err := db.
				Model(&models.Unit{}).
				Where("status = ?", types.UNIT_ACTIVE).
				Order("id asc").
				Find(&units).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": units, "count": len(units)})
		}).
		GET("/units/:id/blocked-dates", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var unit models.Unit
			if err := db.
				Where("id = ? AND status = ?", params.ID, types.UNIT_ACTIVE).
				First(&unit).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "unit not found"})
				return
			}
			var dates []string
			if err := db.
				Model(&models.BlockedDate{}).
				Where("unit_id = ?", unit.ID).
				Order("date asc").
				Pluck("date", &dates).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": dates, "count": len(dates)})
		})
	return g
}

func unitAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/units", func(ctx *gin.Context) {
			db := db.GetDb()
			var units []models.Unit
			if err := db.Model(&models.Unit{}).Order("id asc").Find(&units).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": units, "count": len(units)})
		}).
		POST("/units", func(ctx *gin.Context) {
			var body types.CreateUnitRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			unit := models.Unit{
				Name:        body.Name,
				Description: body.Description,
				NightlyRate: body.NightlyRate,
				MaxGuests:   body.MaxGuests,
				ListingURL:  body.ListingURL,
				CalendarURL: body.CalendarURL,
				ImageURLs:   types.JSONBArrayOf(body.ImageURLs),
			}
			if body.Status != "" {
				unit.Status = types.UnitStatus(body.Status)
			}
			db := db.GetDb()
			if err := db.Create(&unit).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": unit})
		}).
		PUT("/units/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateUnitRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			updates := map[string]interface{}{}
			if body.Name != nil {
				updates["name"] = *body.Name
			}
			if body.Description != nil {
				updates["description"] = *body.Description
			}
			if body.NightlyRate != nil {
				updates["nightly_rate"] = *body.NightlyRate
			}
			if body.MaxGuests != nil {
				updates["max_guests"] = *body.MaxGuests
			}
			if body.ListingURL != nil {
				updates["listing_url"] = *body.ListingURL
			}
			if body.CalendarURL != nil {
				updates["calendar_url"] = *body.CalendarURL
			}
			if body.ImageURLs != nil {
				updates["image_urls"] = types.JSONBArrayOf(body.ImageURLs)
			}
			if body.Status != nil {
				updates["status"] = *body.Status
			}
			db := db.GetDb()
			var unit models.Unit
			if err := db.First(&unit, params.ID).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "unit not found"})
				return
			}
			if len(updates) > 0 {
				if err := db.Model(&unit).Updates(updates).Error; err != nil {
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
					return
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"data": unit})
		}).
		DELETE("/units/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			// Units are retired, not erased: history keeps pointing at them.
			db := db.GetDb()
			res := db.
				Model(&models.Unit{}).
				Where("id = ?", params.ID).
				Update("status", types.UNIT_INACTIVE)
			if res.Error != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "unit not found"})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
