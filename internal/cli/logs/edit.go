package logs

import (
	"errors"
	"fmt"

	"github.com/julianstephens/foodlog/internal/cli"
	"github.com/julianstephens/foodlog/internal/flows"
	"github.com/julianstephens/foodlog/internal/models"
)

type EditCmd struct {
	ID string `arg:"" help:"Entry id or unique id prefix."`

	Name     *string `help:"New name (food entries)."`
	Calories *string `help:"New calories (food entries)."`
	Protein  *string `help:"New protein in grams (food entries)."`
	Carbs    *string `help:"New carbohydrates in grams (food entries)."`
	Fats     *string `help:"New fat in grams (food entries)."`
	Water    *string `help:"New amount in liters (water entries)."`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	if err := ctx.AcquireLock(); err != nil {
		return err
	}

	log, err := ctx.FindLog(c.ID)
	if err != nil {
		return err
	}

	updated, err := c.apply(log)
	if err != nil {
		return err
	}

	ctx.Logs.Update(log.ID, updated)
	if err := ctx.CheckPersisted(); err != nil {
		return err
	}

	ctx.Printf("✓ Updated: %s\n", ctx.FormatLogLine(updated, false))
	return nil
}

// apply merges the given flags into log. Values that do not parse keep
// what was there before.
func (c *EditCmd) apply(log models.NutritionLog) (models.NutritionLog, error) {
	foodFlags := c.Name != nil || c.Calories != nil || c.Protein != nil || c.Carbs != nil || c.Fats != nil

	if _, ok := log.Water(); ok {
		if foodFlags {
			return log, errors.New("food fields cannot be set on a water entry")
		}
		if c.Water == nil {
			return log, errors.New("no changes specified, use --water to set the amount")
		}
		return flows.ApplyWaterEdit(log, *c.Water), nil
	}

	if c.Water != nil {
		return log, errors.New("--water only applies to water entries")
	}
	if !foodFlags {
		return log, errors.New("no changes specified, use --name, --calories, --protein, --carbs or --fats")
	}

	form := flows.FoodFormFromLog(log)
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
	return flows.ApplyEdit(log, form), nil
}

type DeleteCmd struct {
	ID  string `arg:"" help:"Entry id or unique id prefix."`
	Yes bool   `short:"y" help:"Delete without asking for confirmation."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	log, err := ctx.FindLog(c.ID)
	if err != nil {
		return err
	}

	if !c.Yes {
		ctx.Printf("%s\n", ctx.FormatLogLine(log, false))
		ok, err := ctx.Confirm("Delete this entry?", false)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	if err := ctx.AcquireLock(); err != nil {
		return err
	}
	if !ctx.Logs.Delete(log.ID) {
		return fmt.Errorf("%w: %s", cli.ErrLogNotFound, cli.ShortID(log.ID))
	}
	if err := ctx.CheckPersisted(); err != nil {
		return err
	}

	ctx.Printf("✓ Deleted entry %s\n", cli.ShortID(log.ID))
	return nil
}
