package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/feedback"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/schedule"
	"github.com/julianstephens/habitual/internal/timeutil"
)

type MarkCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Skip  bool   `short:"s" help:"Record a skip instead of a completion."`
}

func (c *MarkCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := resolveHabit(ctx.Store, c.Habit)
	if err != nil {
		return err
	}

	action := constants.ActionComplete
	if c.Skip {
		action = constants.ActionSkip
	}

	err = ctx.Feedback.HandleAction(context.Background(), feedback.ActionEvent{
		HabitID: habit.ID,
		Action:  action,
		Handle:  habit.Notification.Handle,
	})
	if err != nil {
		return err
	}

	if c.Skip {
		fmt.Println(skippedStyle.Render(fmt.Sprintf("Skipped %q for today", habit.Name)))
	} else {
		fmt.Println(doneStyle.Render(fmt.Sprintf("Completed %q for today", habit.Name)))
	}
	return nil
}

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	now := ctx.Clock.Now()
	habits, err := ctx.Store.GetAllHabits(false)
	if err != nil {
		return err
	}

	records, err := ctx.Store.GetProgressForDay(timeutil.DayOf(now))
	if err != nil {
		return err
	}
	byHabit := make(map[string]models.ProgressRecord, len(records))
	for _, r := range records {
		byHabit[r.HabitID] = r
	}

	fmt.Println(titleStyle.Render(now.Format("Monday, January 2")))

	due := 0
	for _, h := range habits {
		if !h.OccursOn(now.Weekday()) {
			continue
		}
		due++

		status := nextReminderStatus(h, now)
		if rec, ok := byHabit[h.ID]; ok {
			switch {
			case rec.Completed:
				status = doneStyle.Render("done")
			case rec.Skipped:
				status = skippedStyle.Render("skipped")
			}
		}
		fmt.Printf("  %s  %s\n", h.Name, detailStyle.Render(status))
	}

	if due == 0 {
		fmt.Println("Nothing due today.")
	}
	return nil
}

func nextReminderStatus(h models.Habit, now time.Time) string {
	nominal := h.Notification.Time
	candidate := time.Date(now.Year(), now.Month(), now.Day(),
		nominal.Hour(), nominal.Minute(), 0, 0, now.Location())
	minutes := schedule.MinutesUntil(candidate, now)
	return schedule.NextReminderText(minutes)
}
