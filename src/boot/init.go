package boot

import (
	"cbe/src/common"
	"cbe/src/config"
	"cbe/src/db"
	"cbe/src/lib"
	"cbe/src/models"
	"context"
	"log"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.Unit{},
		&models.BlockedDate{},
		&models.SyncRun{},
		&models.BookingRequest{},
		&models.Payment{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler registers the periodic calendar sync and starts the shared
// scheduler. The first run fires one interval after startup.
func InitScheduler() {
	interval := config.SyncInterval()
	id, err := lib.CreateCronJob(func() {
		common.SyncAllUnits(context.Background())
	}, interval)
	if err != nil {
		log.Printf("Error scheduling periodic sync: %s\n", err.Error())
		return
	}
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	sched.Start()
	log.Printf("Periodic sync scheduled every %s (job %s)\n", interval, *id)
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
	}
}
