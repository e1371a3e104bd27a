package main

import (
	"cbe/src/common"
	"cbe/src/db"
	"cbe/src/middlewares"
	"cbe/src/models"
	"cbe/src/types"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func syncAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/sync/manual", middlewares.RateLimit("sync", 5, time.Hour), func(ctx *gin.Context) {
			// An empty body means sync the whole fleet.
			var body types.ManualSyncRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			// A started sync runs to completion even if the admin client
			// disconnects, so the fan-out is detached from the request.
			if body.UnitID == nil {
				outcomes := common.SyncAllUnits(context.Background())
				ctx.JSON(http.StatusOK, gin.H{"data": outcomes, "count": len(outcomes)})
				return
			}
			db := db.GetDb()
			var unit models.Unit
			if err := db.First(&unit, *body.UnitID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": common.ErrUnitNotFound.Error()})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			outcome := common.SyncUnit(context.Background(), &unit)
			ctx.JSON(http.StatusOK, gin.H{"data": outcome})
		}).
		GET("/sync-logs", func(ctx *gin.Context) {
			var query struct {
				UnitID *uint             `form:"unit_id"`
				Status *types.SyncStatus `form:"status"`
			}
			if err := ctx.BindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			tx := db.Model(&models.SyncRun{})
			if query.UnitID != nil {
				tx = tx.Where("unit_id = ?", *query.UnitID)
			}
			if query.Status != nil {
				tx = tx.Where("status = ?", *query.Status)
			}
			var runs []models.SyncRun
			if err := tx.Order("started_at DESC").Limit(100).Find(&runs).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": runs, "count": len(runs)})
		})
	return g
}
