package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/julianstephens/foodlog/internal/cli"
	"github.com/julianstephens/foodlog/internal/models"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

var csvHeader = []string{"id", "date", "kind", "name", "calories", "protein", "carbs", "fats", "water_liters", "has_image"}

type ExportCmd struct {
	Format string `help:"Output format." enum:"json,csv" default:"json"`
	Output string `short:"o" help:"Write to this file instead of stdout." type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	logs := ctx.Logs.All()

	if c.Output == "" {
		return c.write(ctx.Out(), logs)
	}

	if err := os.MkdirAll(filepath.Dir(c.Output), 0700); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.OpenFile(c.Output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := c.write(f, logs); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	ctx.Printf("✓ Exported %d entries to %s\n", len(logs), c.Output)
	return nil
}

func (c *ExportCmd) write(w io.Writer, logs []models.NutritionLog) error {
	switch c.Format {
	case FormatCSV:
		return WriteCSV(w, logs)
	case FormatJSON, "":
		return WriteJSON(w, logs)
	default:
		return fmt.Errorf("unsupported export format %q", c.Format)
	}
}

// WriteJSON writes logs in the same shape they are persisted in.
func WriteJSON(w io.Writer, logs []models.NutritionLog) error {
	data, err := models.EncodeLogs(logs)
	if err != nil {
		return fmt.Errorf("failed to encode logs: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// WriteCSV writes one row per log. Image bytes are not exported.
func WriteCSV(w io.Writer, logs []models.NutritionLog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	for _, l := range logs {
		food, _ := l.Food()
		water, _ := l.Water()
		row := []string{
			l.ID,
			l.Date.Format(time.RFC3339),
			string(l.Kind()),
			l.DisplayName(),
			formatNumber(food.Calories),
			formatNumber(food.Protein),
			formatNumber(food.Carbs),
			formatNumber(food.Fats),
			formatNumber(water.AmountLiters),
			strconv.FormatBool(len(food.Image) > 0),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
