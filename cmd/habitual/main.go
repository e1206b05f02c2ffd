package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/clock"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/feedback"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/notify"
	"github.com/julianstephens/habitual/internal/scheduler"
	"github.com/julianstephens/habitual/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Storage path, or 'postgres' to use the keyring connection string." type:"path" default:"~/.config/habitual/habitual.db"`
	Debug   bool   `help:"Enable debug logging."`

	Init    cli.InitCmd    `cmd:"" help:"Initialize habitual storage."`
	Today   cli.TodayCmd   `cmd:"" help:"Show today's habits." default:"1"`
	Mark    cli.MarkCmd    `cmd:"" help:"Mark a habit done (or skipped) for today."`
	History cli.HistoryCmd `cmd:"" help:"Show a habit's recent progress."`
	Sync    cli.SyncCmd    `cmd:"" help:"Re-register reminders for all active habits."`
	Daemon  cli.DaemonCmd  `cmd:"" help:"Run the background resync daemon."`
	Habit   struct {
		Add     cli.HabitAddCmd     `cmd:"" help:"Add a new habit."`
		Edit    cli.HabitEditCmd    `cmd:"" help:"Edit an existing habit."`
		List    cli.HabitListCmd    `cmd:"" help:"List habits."`
		Delete  cli.HabitDeleteCmd  `cmd:"" help:"Delete a habit."`
		Enable  cli.HabitEnableCmd  `cmd:"" help:"Enable a disabled habit."`
		Disable cli.HabitDisableCmd `cmd:"" help:"Disable a habit and cancel its reminder."`
	} `cmd:"" help:"Manage habits."`
	Keyring struct {
		Set    cli.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the system keyring."`
		Delete cli.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	} `cmd:"" help:"Manage stored database credentials."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Personal habit tracker with scheduled reminders"),
		kong.UsageOnError(),
		kong.Vars{"version": constants.Version},
	)

	store, logDir, err := buildStore(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: logDir}); err != nil {
		apperrors.Fatalf("failed to initialize logging: %v", err)
	}

	backend := notify.NewTrayBackend()
	clk := clock.Real{}
	sched := scheduler.New(backend, store, clk)

	appCtx := &cli.Context{
		Store:     store,
		Scheduler: sched,
		Feedback:  feedback.NewHandler(sched, store, backend, clk),
		Clock:     clk,
	}

	err = ctx.Run(appCtx)
	if cerr := store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	apperrors.Fatal(err)
}

// buildStore selects the storage backend from the config flag and reports the
// directory logs should live in. Connection strings with embedded passwords
// are rejected; credentials belong in the system keyring.
func buildStore(config string) (storage.Provider, string, error) {
	switch {
	case config == "postgres":
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			return nil, "", fmt.Errorf("no connection string in keyring, run 'habitual keyring set' first: %w", err)
		}
		return storage.NewPostgresStore(connStr), defaultLogDir(), nil
	case strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://"):
		if storage.HasEmbeddedCredentials(config) {
			return nil, "", fmt.Errorf("connection string contains an embedded password, store it with 'habitual keyring set' instead")
		}
		return storage.NewPostgresStore(config), defaultLogDir(), nil
	default:
		return storage.NewSQLiteStore(config), filepath.Dir(config), nil
	}
}

// defaultLogDir is used when the config flag is a connection string rather
// than a filesystem path.
func defaultLogDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, constants.AppName)
}
