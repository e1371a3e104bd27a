package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const DATE_FORMAT = "2006-01-02"

// Feed fetcher identity and per-request ceiling.
const (
	FEED_USER_AGENT    = "CustomBookingEngine/1.0"
	FEED_FETCH_TIMEOUT = 10 * time.Second
)

// SYNC_CONCURRENCY caps simultaneous in-flight unit syncs during a batch run.
const SYNC_CONCURRENCY = 5

const (
	syncIntervalDefault = 15
	syncIntervalMin     = 5
	syncIntervalMax     = 60
)

// SyncInterval returns the periodic sync cadence, clamped to [5m, 60m].
func SyncInterval() time.Duration {
	minutes := syncIntervalDefault
	if v := os.Getenv("SYNC_INTERVAL_MINUTES"); v != "" {
		atoi, err := strconv.Atoi(v)
		if err == nil {
			minutes = atoi
		}
	}
	if minutes < syncIntervalMin {
		minutes = syncIntervalMin
	}
	if minutes > syncIntervalMax {
		minutes = syncIntervalMax
	}
	return time.Duration(minutes) * time.Minute
}

type PaymentMode string

const (
	PAYMENT_MODE_STUB PaymentMode = "stub"
	PAYMENT_MODE_LIVE PaymentMode = "live"
)

func GetPaymentMode() PaymentMode {
	if os.Getenv("PAYMENT_MODE") == string(PAYMENT_MODE_LIVE) {
		return PAYMENT_MODE_LIVE
	}
	return PAYMENT_MODE_STUB
}

func DashboardURL() string {
	return os.Getenv("ADMIN_DASHBOARD_URL")
}
