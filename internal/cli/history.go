package cli

import (
	"fmt"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/timeutil"
)

type HistoryCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Days  int    `short:"n" help:"Number of days to show, ending today." default:"7"`
}

func (c *HistoryCmd) Validate() error {
	if c.Days < 1 {
		return fmt.Errorf("days must be at least 1, got %d", c.Days)
	}
	return nil
}

func (c *HistoryCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := resolveHabit(ctx.Store, c.Habit)
	if err != nil {
		return err
	}

	now := ctx.Clock.Now()
	start := now.AddDate(0, 0, -(c.Days - 1))

	records, err := ctx.Store.GetProgress(habit.ID, timeutil.DayOf(start), timeutil.DayOf(now))
	if err != nil {
		return err
	}
	byDay := make(map[string]models.ProgressRecord, len(records))
	for _, r := range records {
		byDay[r.Date] = r
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s — last %d days", habit.Name, c.Days)))

	completed, skipped := 0, 0
	for day := start; !day.After(now); day = day.AddDate(0, 0, 1) {
		if !habit.OccursOn(day.Weekday()) {
			continue
		}

		status := detailStyle.Render("no record")
		if rec, ok := byDay[timeutil.DayOf(day)]; ok {
			switch {
			case rec.Completed:
				status = doneStyle.Render("done")
				completed++
			case rec.Skipped:
				status = skippedStyle.Render("skipped")
				skipped++
			}
		}
		fmt.Printf("  %s  %s\n", day.Format("Mon Jan 2"), status)
	}

	fmt.Println(detailStyle.Render(fmt.Sprintf("  %d done, %d skipped", completed, skipped)))
	return nil
}
