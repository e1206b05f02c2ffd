// Package daemon runs the periodic best-effort reminder resync and the
// callback endpoint the tray companion app reports into.
//
// Chained one-shot registrations cover habits between app launches, but a
// machine that sleeps through a fire time or a tray restart can drop
// them. The daemon re-registers every active habit on a cron schedule so
// reminders self-heal without user interaction. The callback server turns
// tray delivery and action reports into feedback events.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/feedback"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/scheduler"
	"github.com/julianstephens/habitual/internal/timeutil"
)

type Daemon struct {
	cronEngine *cron.Cron
	scheduler  *scheduler.Scheduler
	feedback   *feedback.Handler
	cfg        *config.DaemonConfig
	server     *http.Server
}

func New(sched *scheduler.Scheduler, fb *feedback.Handler, cfg *config.DaemonConfig) (*Daemon, error) {
	loc, err := timeutil.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid daemon timezone %q: %w", cfg.Timezone, err)
	}

	d := &Daemon{
		cronEngine: cron.New(cron.WithLocation(loc)),
		scheduler:  sched,
		feedback:   fb,
		cfg:        cfg,
	}
	d.server = &http.Server{
		Addr:              cfg.CallbackAddr,
		Handler:           d.callbackMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return d, nil
}

// Start registers the resync job, starts the cron engine and brings up
// the callback server. It returns after scheduling; jobs and the server
// run on their own goroutines.
func (d *Daemon) Start() error {
	logger.Info("Starting resync daemon", "cron", d.cfg.ResyncCronSpec, "callback", d.cfg.CallbackAddr)

	_, err := d.cronEngine.AddFunc(d.cfg.ResyncCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if d.cfg.DryRun {
			logger.Info("Dry run: skipping reminder resync")
			return
		}

		if err := d.scheduler.Resync(ctx); err != nil {
			logger.Error("Reminder resync failed", "error", err)
		} else {
			logger.Info("Reminder resync completed")
		}
	})
	if err != nil {
		return fmt.Errorf("could not add resync cron job: %w", err)
	}

	d.cronEngine.Start()

	go func() {
		if err := d.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Callback server failed", "addr", d.cfg.CallbackAddr, "error", err)
		}
	}()

	return nil
}

// Stop shuts the callback server and the cron engine down gracefully,
// waiting for a running resync to finish.
func (d *Daemon) Stop() {
	logger.Info("Stopping resync daemon")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Callback server shutdown failed", "error", err)
	}

	ctx := d.cronEngine.Stop()
	<-ctx.Done()
	logger.Info("Resync daemon stopped")
}

type deliveredRequest struct {
	HabitID     string    `json:"habit_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type actionRequest struct {
	HabitID string `json:"habit_id"`
	Action  string `json:"action"`
	Handle  string `json:"handle"`
}

// callbackMux routes tray reports. POST /delivered registers the next
// occurrence after a reminder reaches the user; POST /action records the
// user's response.
func (d *Daemon) callbackMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/delivered", d.handleDelivered)
	mux.HandleFunc("/action", d.handleAction)
	return mux
}

func (d *Daemon) handleDelivered(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req deliveredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	event := feedback.DeliveryEvent{HabitID: req.HabitID, ScheduledAt: req.ScheduledAt}
	if err := d.feedback.HandleDelivered(r.Context(), event); err != nil {
		logger.Error("Delivery callback failed", "habit", req.HabitID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (d *Daemon) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	event := feedback.ActionEvent{
		HabitID: req.HabitID,
		Action:  constants.ReminderAction(req.Action),
		Handle:  req.Handle,
	}
	if err := d.feedback.HandleAction(r.Context(), event); err != nil {
		logger.Error("Action callback failed", "habit", req.HabitID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
