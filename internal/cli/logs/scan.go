package logs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/julianstephens/foodlog/internal/analysis"
	"github.com/julianstephens/foodlog/internal/cli"
	"github.com/julianstephens/foodlog/internal/flows"
)

type ScanCmd struct {
	Image string `arg:"" type:"existingfile" help:"Path to a JPEG photo of the meal."`

	Name     *string `help:"Override the detected name."`
	Calories *string `help:"Override the estimated calories."`
	Protein  *string `help:"Override the estimated protein."`
	Carbs    *string `help:"Override the estimated carbohydrates."`
	Fats     *string `help:"Override the estimated fat."`
	Yes      bool    `short:"y" help:"Save without asking for confirmation."`
}

func (c *ScanCmd) Run(ctx *cli.Context) error {
	image, err := os.ReadFile(c.Image)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	if ctx.Analyzer == nil {
		return errors.New("no analyzer configured")
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session := flows.NewScanSession()
	ctx.Println("Analyzing image... (Ctrl+C to cancel)")
	if err := session.Run(runCtx, ctx.Analyzer, image); err != nil {
		if errors.Is(err, analysis.ErrCanceled) {
			ctx.Println("Analysis canceled. Nothing was saved.")
			return nil
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	form := c.applyOverrides(session.Form())
	entry := form.Entry()
	ctx.Println()
	ctx.Println("Review:")
	ctx.Printf("  Name:      %s\n", entry.Name)
	ctx.Printf("  Calories:  %.0f kcal\n", entry.Calories)
	ctx.Printf("  Protein:   %.1f g\n", entry.Protein)
	ctx.Printf("  Carbs:     %.1f g\n", entry.Carbs)
	ctx.Printf("  Fats:      %.1f g\n", entry.Fats)
	ctx.Println()

	if !c.Yes {
		ok, err := ctx.Confirm("Save this entry?", true)
		if err != nil {
			return err
		}
		if !ok {
			session.Cancel()
			ctx.Println("Scan discarded.")
			return nil
		}
	}

	if err := ctx.AcquireLock(); err != nil {
		return err
	}
	log, err := session.Save(ctx.Logs, form, ctx.Clock())
	if err != nil {
		return err
	}
	if err := ctx.CheckPersisted(); err != nil {
		return err
	}

	ctx.Printf("✓ Logged food: %s\n", ctx.FormatLogLine(log, false))
	return nil
}

func (c *ScanCmd) applyOverrides(form flows.FoodForm) flows.FoodForm {
	if c.Name != nil {
		form.Name = *c.Name
	}
	if c.Calories != nil {
		form.Calories = *c.Calories
	}
	if c.Protein != nil {
		form.Protein = *c.Protein
	}
	if c.Carbs != nil {
		form.Carbs = *c.Carbs
	}
	if c.Fats != nil {
		form.Fats = *c.Fats
	}
	return form
}
