package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/daemon"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/logger"
)

type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized habitual storage at %s\n", ctx.Store.GetConfigPath())
	return nil
}

type SyncCmd struct{}

func (c *SyncCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	if err := ctx.Scheduler.Resync(context.Background()); err != nil {
		return err
	}
	fmt.Println("Reminders synchronized.")
	return nil
}

type DaemonCmd struct{}

func (c *DaemonCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	cfg, err := config.LoadDaemon()
	if err != nil {
		return err
	}

	d, err := daemon.New(ctx.Scheduler, ctx.Feedback, cfg)
	if err != nil {
		return err
	}
	if err := d.Start(); err != nil {
		return err
	}
	logger.Info("daemon started", "resync_cron", cfg.ResyncCronSpec, "callback_addr", cfg.CallbackAddr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	d.Stop()
	logger.Info("daemon stopped")
	return nil
}

type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store."`
}

func (c *KeyringSetCmd) Run(ctx *Context) error {
	if !keyring.IsAvailable() {
		return fmt.Errorf("system keyring is not available")
	}
	if err := keyring.SetConnectionString(c.ConnectionString); err != nil {
		return err
	}
	fmt.Println("Connection string stored in system keyring.")
	return nil
}

type KeyringDeleteCmd struct{}

func (c *KeyringDeleteCmd) Run(ctx *Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		return err
	}
	fmt.Println("Connection string removed from system keyring.")
	return nil
}
