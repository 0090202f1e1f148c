package cli

import (
	"fmt"

	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/models"
)

const shortIDLen = 8

// ShortID is the id prefix shown in listings.
func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// FormatLogLine renders one log as a single listing row.
func (c *Context) FormatLogLine(l models.NutritionLog, fullID bool) string {
	id := ShortID(l.ID)
	if fullID {
		id = l.ID
	}
	at := l.Date.In(c.location()).Format(constants.TimeFormat)

	if water, ok := l.Water(); ok {
		return fmt.Sprintf("%s  %s  %-24s %s", at, id, l.DisplayName(), c.Settings.FormatWater(water.AmountLiters))
	}
	food, _ := l.Food()
	return fmt.Sprintf("%s  %s  %-24s %4.0f kcal  P %.0fg  C %.0fg  F %.0fg",
		at, id, truncate(food.Name, 24), food.Calories, food.Protein, food.Carbs, food.Fats)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
