package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/timeutil"
)

type HabitAddCmd struct {
	Name    string `arg:"" help:"Habit name."`
	Message string `short:"m" help:"Reminder message." required:""`
	Time    string `short:"t" help:"Reminder time (HH:MM)." required:""`
	Type    string `help:"Habit type (build|break)." default:"build"`
	Days    string `short:"d" help:"Comma-separated weekdays (e.g. mon,wed,fri). Omit for every day."`
	Start   string `short:"s" help:"Start date (YYYY-MM-DD). Defaults to today."`
}

func (c *HabitAddCmd) Validate() error {
	if !timeutil.ValidateClockFormat(c.Time) {
		return fmt.Errorf("invalid time %q, expected HH:MM", c.Time)
	}
	if c.Type != string(constants.HabitTypeBuild) && c.Type != string(constants.HabitTypeBreak) {
		return fmt.Errorf("invalid habit type: %s", c.Type)
	}
	return nil
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	now := ctx.Clock.Now()

	startDay := now.Format(constants.DateFormat)
	if c.Start != "" {
		startDay = c.Start
	}
	startDate, err := time.ParseInLocation(constants.DateFormat, startDay, now.Location())
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", c.Start, err)
	}

	notifyAt, err := timeutil.CombineDateAndTime(now.Format(constants.DateFormat), c.Time, now.Location())
	if err != nil {
		return err
	}

	occurrence := models.Occurrence{Type: constants.OccurrenceDaily}
	if c.Days != "" {
		days, err := models.ParseWeekdays(c.Days)
		if err != nil {
			return err
		}
		occurrence = models.Occurrence{Type: constants.OccurrenceCustom, Days: days}
	}

	habit := models.Habit{
		ID:         uuid.New().String(),
		Name:       c.Name,
		Type:       constants.HabitType(c.Type),
		Occurrence: occurrence,
		Notification: models.Notification{
			Message: c.Message,
			Time:    notifyAt,
		},
		IsActive:  true,
		CreatedAt: now,
		StartDate: startDate,
	}

	if err := habit.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.AddHabit(habit); err != nil {
		return err
	}

	if handle, err := ctx.Scheduler.Schedule(context.Background(), habit.ID); err != nil {
		fmt.Printf("Added habit %q (ID: %s), but no reminder was registered: %v\n", habit.Name, habit.ID, err)
	} else {
		fmt.Printf("Added habit %q (ID: %s), reminder %s\n", habit.Name, habit.ID, handle)
	}
	return nil
}

type HabitListCmd struct {
	All  bool   `short:"a" help:"Include disabled habits."`
	Type string `help:"Only show active habits of one type (build|break)."`
}

func (c *HabitListCmd) Validate() error {
	if c.Type != "" && c.Type != string(constants.HabitTypeBuild) && c.Type != string(constants.HabitTypeBreak) {
		return fmt.Errorf("invalid habit type: %s", c.Type)
	}
	return nil
}

func (c *HabitListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habits, err := ctx.Store.GetAllHabits(c.All)
	if err != nil {
		return err
	}
	if c.Type != "" {
		habits = models.FilterByType(habits, constants.HabitType(c.Type))
		if len(habits) == 0 {
			fmt.Printf("No active %s habits.\n", c.Type)
			return nil
		}
	}
	if len(habits) == 0 {
		fmt.Println("No habits yet. Add one with 'habitual habit add'.")
		return nil
	}

	fmt.Println(titleStyle.Render("Habits"))
	for _, h := range habits {
		timeStr, err := timeutil.FormatForDisplay(h.Notification.Time, timeutil.DisplayOptions{})
		if err != nil {
			timeStr = h.Notification.Time.Format(constants.TimeFormat)
		}
		line := fmt.Sprintf("  %s [%s] %s at %s", h.Name, h.Type, h.FormatSchedule(), timeStr)
		if !h.IsActive {
			line = inactiveStyle.Render(line + " (disabled)")
		}
		fmt.Println(line)
		fmt.Println(detailStyle.Render(fmt.Sprintf("    id: %s", h.ID)))
	}
	return nil
}

type HabitEditCmd struct {
	Habit   string `arg:"" help:"Habit ID or name."`
	Name    string `short:"n" help:"New name."`
	Message string `short:"m" help:"New reminder message."`
	Time    string `short:"t" help:"New reminder time (HH:MM)."`
	Days    string `short:"d" help:"New comma-separated weekdays, or 'daily' for every day."`
}

func (c *HabitEditCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	old, err := resolveHabit(ctx.Store, c.Habit)
	if err != nil {
		return err
	}

	updated := old
	if c.Name != "" {
		updated.Name = c.Name
	}
	if c.Message != "" {
		updated.Notification.Message = c.Message
	}
	if c.Time != "" {
		if !timeutil.ValidateClockFormat(c.Time) {
			return fmt.Errorf("invalid time %q, expected HH:MM", c.Time)
		}
		day := old.Notification.Time.Format(constants.DateFormat)
		notifyAt, err := timeutil.CombineDateAndTime(day, c.Time, old.Notification.Time.Location())
		if err != nil {
			return err
		}
		updated.Notification.Time = notifyAt
	}
	if c.Days != "" {
		if strings.EqualFold(c.Days, "daily") {
			updated.Occurrence = models.Occurrence{Type: constants.OccurrenceDaily}
		} else {
			days, err := models.ParseWeekdays(c.Days)
			if err != nil {
				return err
			}
			updated.Occurrence = models.Occurrence{Type: constants.OccurrenceCustom, Days: days}
		}
	}

	if err := updated.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.UpdateHabit(updated); err != nil {
		return err
	}

	occurrenceChanged := updated.Occurrence.Type != old.Occurrence.Type || c.Days != ""
	if updated.IsActive && (models.NeedsNotificationUpdate(old, updated) || occurrenceChanged) {
		if _, err := ctx.Scheduler.Schedule(context.Background(), updated.ID); err != nil {
			fmt.Printf("Updated habit %q, but rescheduling failed: %v\n", updated.Name, err)
			return nil
		}
	}

	fmt.Printf("Updated habit %q\n", updated.Name)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := resolveHabit(ctx.Store, c.Habit)
	if err != nil {
		return err
	}

	if err := ctx.Scheduler.Unschedule(context.Background(), habit.ID); err != nil {
		return err
	}
	if err := ctx.Store.DeleteHabit(habit.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted habit %q\n", habit.Name)
	return nil
}

type HabitEnableCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitEnableCmd) Run(ctx *Context) error {
	return setHabitActive(ctx, c.Habit, true)
}

type HabitDisableCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitDisableCmd) Run(ctx *Context) error {
	return setHabitActive(ctx, c.Habit, false)
}

func setHabitActive(ctx *Context, ref string, active bool) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := resolveHabit(ctx.Store, ref)
	if err != nil {
		return err
	}
	if habit.IsActive == active {
		fmt.Printf("Habit %q is already %s\n", habit.Name, activeWord(active))
		return nil
	}

	if !active {
		if err := ctx.Scheduler.Unschedule(context.Background(), habit.ID); err != nil {
			return err
		}
	}

	habit.IsActive = active
	if err := ctx.Store.UpdateHabit(habit); err != nil {
		return err
	}

	if active {
		if _, err := ctx.Scheduler.Schedule(context.Background(), habit.ID); err != nil {
			fmt.Printf("Enabled habit %q, but no reminder was registered: %v\n", habit.Name, err)
			return nil
		}
	}

	fmt.Printf("Habit %q %s\n", habit.Name, activeWord(active))
	return nil
}

func activeWord(active bool) string {
	if active {
		return "enabled"
	}
	return "disabled"
}

// resolveHabit looks up a habit by ID first, then by name.
func resolveHabit(store storage.Provider, ref string) (models.Habit, error) {
	habit, err := store.GetHabit(ref)
	if err == nil {
		return habit, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, err
	}

	habit, err = store.GetHabitByName(ref)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Habit{}, fmt.Errorf("no habit with ID or name %q", ref)
		}
		return models.Habit{}, err
	}
	return habit, nil
}
