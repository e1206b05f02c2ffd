package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/julianstephens/habitual/internal/constants"
)

// DaemonConfig holds configuration for the background resync daemon.
type DaemonConfig struct {
	// ResyncCronSpec controls when all active habit reminders are
	// re-registered against the notification backend.
	ResyncCronSpec string
	// Timezone is the IANA name used for cron evaluation. Empty means
	// the system local timezone.
	Timezone string
	// DryRun logs what would be scheduled without touching the backend.
	DryRun bool
	// CallbackAddr is the loopback address the daemon listens on for
	// delivery and action callbacks from the tray companion app.
	CallbackAddr string
}

// LoadDaemon reads daemon configuration from environment variables and a
// .env file if present. godotenv never overrides variables already set in
// the environment.
func LoadDaemon() (*DaemonConfig, error) {
	_ = godotenv.Load()

	cfg := &DaemonConfig{
		ResyncCronSpec: os.Getenv("HABITUAL_RESYNC_CRON"),
		Timezone:       os.Getenv("HABITUAL_TIMEZONE"),
		CallbackAddr:   os.Getenv("HABITUAL_CALLBACK_ADDR"),
	}

	if cfg.ResyncCronSpec == "" {
		cfg.ResyncCronSpec = constants.DefaultResyncCronSpec
	}
	if cfg.CallbackAddr == "" {
		cfg.CallbackAddr = constants.DefaultCallbackAddr
	}

	switch os.Getenv("HABITUAL_DRY_RUN") {
	case "", "0", "false":
		cfg.DryRun = false
	case "1", "true":
		cfg.DryRun = true
	default:
		return nil, fmt.Errorf("invalid HABITUAL_DRY_RUN value %q", os.Getenv("HABITUAL_DRY_RUN"))
	}

	return cfg, nil
}
