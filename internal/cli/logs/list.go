package logs

import (
	"github.com/julianstephens/foodlog/internal/cli"
	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/logstore"
	"github.com/julianstephens/foodlog/internal/models"
)

type ListCmd struct {
	Date   string `help:"Day to list (YYYY-MM-DD, today, yesterday)." default:"today"`
	All    bool   `help:"List every day instead of a single one."`
	Search string `short:"s" help:"Only show entries whose name contains this text."`
	IDs    bool   `help:"Show full entry ids."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	var logs []models.NutritionLog
	title := "All entries"
	if c.All {
		logs = ctx.Logs.All()
	} else {
		day, err := ctx.ParseDay(c.Date)
		if err != nil {
			return err
		}
		logs = ctx.Logs.LogsForDay(day)
		title = day.Format(constants.DateFormat)
	}
	logs = logstore.Search(logs, c.Search)

	if len(logs) == 0 {
		if c.Search != "" {
			ctx.Printf("No entries matching %q.\n", c.Search)
		} else {
			ctx.Println("No entries logged.")
		}
		return nil
	}

	ctx.Printf("%s (%d entries):\n\n", title, len(logs))
	lastDay := ""
	for _, l := range logs {
		if c.All {
			day := l.Date.In(ctx.Logs.Location()).Format(constants.DateFormat)
			if day != lastDay {
				if lastDay != "" {
					ctx.Println()
				}
				ctx.Printf("%s\n", day)
				lastDay = day
			}
		}
		ctx.Printf("  %s\n", ctx.FormatLogLine(l, c.IDs))
	}
	return nil
}

type ShowCmd struct {
	ID string `arg:"" help:"Entry id or unique id prefix."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	log, err := ctx.FindLog(c.ID)
	if err != nil {
		return err
	}

	ctx.Printf("ID:        %s\n", log.ID)
	ctx.Printf("Date:      %s\n", log.Date.In(ctx.Logs.Location()).Format(constants.DateFormat+" "+constants.TimeFormat))
	ctx.Printf("Kind:      %s\n", log.Kind())
	if water, ok := log.Water(); ok {
		ctx.Printf("Amount:    %s\n", ctx.Settings.FormatWater(water.AmountLiters))
		return nil
	}

	food, _ := log.Food()
	ctx.Printf("Name:      %s\n", food.Name)
	ctx.Printf("Calories:  %.0f kcal\n", food.Calories)
	ctx.Printf("Protein:   %.1f g\n", food.Protein)
	ctx.Printf("Carbs:     %.1f g\n", food.Carbs)
	ctx.Printf("Fats:      %.1f g\n", food.Fats)
	if len(food.Image) > 0 {
		ctx.Printf("Image:     attached (%.1f KB)\n", float64(len(food.Image))/1024.0)
	}
	return nil
}
