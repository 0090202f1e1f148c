package reports

import (
	"fmt"
	"strings"

	"github.com/julianstephens/foodlog/internal/cli"
	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/summary"
)

type SummaryCmd struct {
	Date string `help:"Day to summarize (YYYY-MM-DD, today, yesterday)." default:"today"`
}

func (c *SummaryCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}
	s := summary.ForDay(day, ctx.Logs.LogsForDay(day))
	goal := ctx.Settings.WaterGoalLiters

	ctx.Printf("Summary for %s\n\n", day.Format(constants.DateFormat))
	ctx.Printf("  Calories:  %.0f kcal\n", s.TotalCalories)
	if s.HasData() {
		ctx.Printf("  Protein:   %.1f g (%d%%)\n", s.TotalProtein, summary.Percent(s.ProteinPercentage))
		ctx.Printf("  Carbs:     %.1f g (%d%%)\n", s.TotalCarbs, summary.Percent(s.CarbsPercentage))
		ctx.Printf("  Fats:      %.1f g (%d%%)\n", s.TotalFats, summary.Percent(s.FatsPercentage))
	} else {
		ctx.Println("  Macros:    no data")
	}
	ctx.Printf("  Water:     %s / %s (%d%%)\n",
		ctx.Settings.FormatWater(s.TotalWater),
		ctx.Settings.FormatWater(goal),
		summary.Percent(s.WaterProgress(goal)))
	ctx.Printf("  Entries:   %d food, %d water\n", s.FoodCount, s.WaterCount)
	return nil
}

type HistoryCmd struct {
	Days int    `help:"Number of days to show." default:"7"`
	End  string `help:"Last day to show (YYYY-MM-DD, today, yesterday)." default:"today"`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	if c.Days <= 0 {
		return fmt.Errorf("--days must be greater than zero, got %d", c.Days)
	}
	end, err := ctx.ParseDay(c.End)
	if err != nil {
		return err
	}

	days := summary.History(ctx.Logs, end, c.Days)
	ctx.Printf("%-10s  %8s  %8s  %8s  %8s  %10s\n", "Date", "kcal", "Protein", "Carbs", "Fats", "Water")
	ctx.Println(strings.Repeat("-", 62))
	var total summary.DaySummary
	for _, d := range days {
		ctx.Printf("%-10s  %8.0f  %7.1fg  %7.1fg  %7.1fg  %10s\n",
			d.Date.Format(constants.DateFormat),
			d.TotalCalories, d.TotalProtein, d.TotalCarbs, d.TotalFats,
			ctx.Settings.FormatWater(d.TotalWater))
		total.TotalCalories += d.TotalCalories
		total.TotalWater += d.TotalWater
	}
	ctx.Println(strings.Repeat("-", 62))
	n := float64(len(days))
	ctx.Printf("Average: %.0f kcal, %s water per day\n", total.TotalCalories/n, ctx.Settings.FormatWater(total.TotalWater/n))
	return nil
}
