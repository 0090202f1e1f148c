package logs

import (
	"errors"
	"fmt"

	"github.com/julianstephens/foodlog/internal/cli"
	"github.com/julianstephens/foodlog/internal/flows"
)

type AddFoodCmd struct {
	Name     string `arg:"" help:"Food name."`
	Calories string `help:"Calories (kcal)." default:"0"`
	Protein  string `help:"Protein in grams." default:"0"`
	Carbs    string `help:"Carbohydrates in grams." default:"0"`
	Fats     string `help:"Fat in grams." default:"0"`
}

func (c *AddFoodCmd) Run(ctx *cli.Context) error {
	if err := ctx.AcquireLock(); err != nil {
		return err
	}

	form := flows.FoodForm{
		Name:     c.Name,
		Calories: c.Calories,
		Protein:  c.Protein,
		Carbs:    c.Carbs,
		Fats:     c.Fats,
	}
	log := form.ToLog(ctx.Clock())
	ctx.Logs.Add(log)
	if err := ctx.CheckPersisted(); err != nil {
		return err
	}

	ctx.Printf("✓ Logged food: %s\n", ctx.FormatLogLine(log, false))
	return nil
}

type AddWaterCmd struct {
	Amount string `arg:"" optional:"" help:"Amount in liters."`
	Preset int    `help:"Quick-add preset number (1-6: 0.25, 0.5, 0.75, 1, 1.5, 2 L)."`
}

func (c *AddWaterCmd) Run(ctx *cli.Context) error {
	picker := flows.NewWaterPicker()
	switch {
	case c.Amount != "" && c.Preset != 0:
		return errors.New("give either an amount or --preset, not both")
	case c.Amount != "":
		if !picker.SetCustom(c.Amount) {
			return fmt.Errorf("invalid water amount %q: must be a number greater than zero", c.Amount)
		}
	case c.Preset != 0:
		if err := picker.SelectPreset(c.Preset - 1); err != nil {
			return err
		}
	}

	if err := ctx.AcquireLock(); err != nil {
		return err
	}

	log := picker.ToLog(ctx.Clock())
	ctx.Logs.Add(log)
	if err := ctx.CheckPersisted(); err != nil {
		return err
	}

	ctx.Printf("✓ Logged water: %s\n", ctx.Settings.FormatWater(picker.Amount()))
	return nil
}
