package common

import (
	"cbe/src/config"
	"cbe/src/db"
	"cbe/src/lib"
	"cbe/src/models"
	"cbe/src/types"
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type SyncOutcome struct {
	RunID        uint             `json:"run_id,omitempty"`
	UnitID       uint             `json:"unit_id"`
	Status       types.SyncStatus `json:"status"`
	BlockedDates int              `json:"blocked_dates_found,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// SyncUnit runs the Fetch -> Parse -> Reduce -> Reconcile pipeline for one
// unit. Every failure is recorded on the SyncRun and absorbed here; the
// caller only sees the outcome, never an error.
func SyncUnit(ctx context.Context, unit *models.Unit) SyncOutcome {
	dbi := db.GetDb()
	run := models.SyncRun{
		UnitID:    &unit.ID,
		FeedURL:   unit.CalendarURL,
		Status:    types.SYNC_IN_PROGRESS,
		StartedAt: time.Now().UTC(),
	}
	if err := dbi.Create(&run).Error; err != nil {
		log.Printf("[sync] Could not create sync run for unit %d: %s\n", unit.ID, err.Error())
		return SyncOutcome{UnitID: unit.ID, Status: types.SYNC_FAILED, Error: err.Error()}
	}

	data, err := lib.FetchCalendar(ctx, unit.CalendarURL)
	if err != nil {
		return markRunFailed(&run, unit.ID, err)
	}
	now := time.Now().UTC()
	ranges, err := lib.ParseBlockedEvents(data, now.AddDate(-1, 0, 0), now.AddDate(3, 0, 0))
	if err != nil {
		return markRunFailed(&run, unit.ID, err)
	}
	dates := lib.ReduceBlockedDates(ranges)
	if err := ReplaceBlockedDates(unit.ID, dates); err != nil {
		return markRunFailed(&run, unit.ID, err)
	}
	return markRunSuccess(&run, unit.ID, len(dates))
}

// ReplaceBlockedDates performs the atomic wholesale replace of a unit's
// availability set. Either the whole new set lands or the prior set stays.
func ReplaceBlockedDates(unitID uint, dates []string) error {
	dbi := db.GetDb()
	return dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("unit_id = ?", unitID).Delete(&models.BlockedDate{}).Error; err != nil {
			return err
		}
		if len(dates) == 0 {
			return nil
		}
		rows := make([]models.BlockedDate, 0, len(dates))
		for _, date := range dates {
			rows = append(rows, models.BlockedDate{UnitID: unitID, Date: date})
		}
		return tx.CreateInBatches(&rows, 500).Error
	})
}

func markRunFailed(run *models.SyncRun, unitID uint, cause error) SyncOutcome {
	dbi := db.GetDb()
	now := time.Now().UTC()
	message := cause.Error()
	if err := dbi.
		Model(&models.SyncRun{}).
		Where("id = ? AND status = ?", run.ID, types.SYNC_IN_PROGRESS).
		Updates(map[string]interface{}{
			"status":        types.SYNC_FAILED,
			"completed_at":  now,
			"error_message": message,
		}).Error; err != nil {
		log.Printf("[sync] Could not update sync run %d: %s\n", run.ID, err.Error())
	}
	log.Printf("[sync] Unit %d failed: %s\n", unitID, message)
	return SyncOutcome{RunID: run.ID, UnitID: unitID, Status: types.SYNC_FAILED, Error: message}
}

func markRunSuccess(run *models.SyncRun, unitID uint, found int) SyncOutcome {
	dbi := db.GetDb()
	now := time.Now().UTC()
	if err := dbi.
		Model(&models.SyncRun{}).
		Where("id = ? AND status = ?", run.ID, types.SYNC_IN_PROGRESS).
		Updates(map[string]interface{}{
			"status":              types.SYNC_SUCCESS,
			"completed_at":        now,
			"blocked_dates_found": found,
		}).Error; err != nil {
		log.Printf("[sync] Could not update sync run %d: %s\n", run.ID, err.Error())
	}
	return SyncOutcome{RunID: run.ID, UnitID: unitID, Status: types.SYNC_SUCCESS, BlockedDates: found}
}

// SyncAllUnits fans out over all active units with a hard concurrency
// ceiling. The batch is best effort: it waits for every unit to settle and a
// failed unit never cancels its siblings.
func SyncAllUnits(ctx context.Context) []SyncOutcome {
	dbi := db.GetDb()
	var units []models.Unit
	if err := dbi.
		Model(&models.Unit{}).
		Where("status = ?", types.UNIT_ACTIVE).
		Find(&units).Error; err != nil {
		log.Printf("[sync] Could not load units: %s\n", err.Error())
		return nil
	}

	outcomes := make([]SyncOutcome, len(units))
	g := new(errgroup.Group)
	g.SetLimit(config.SYNC_CONCURRENCY)
	for i := range units {
		g.Go(func() error {
			outcomes[i] = SyncUnit(ctx, &units[i])
			return nil
		})
	}
	g.Wait()

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Status == types.SYNC_FAILED {
			failed++
		}
	}
	log.Printf("[sync] Completed batch run: %d units, %d failed\n", len(units), failed)
	return outcomes
}
