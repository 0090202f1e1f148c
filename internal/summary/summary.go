package summary

import (
	"time"

	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/models"
)

// DaySummary aggregates one day's logs. Macro totals are grams, water is liters.
type DaySummary struct {
	Date          time.Time
	TotalCalories float64
	TotalProtein  float64
	TotalCarbs    float64
	TotalFats     float64
	TotalWater    float64

	ProteinPercentage float64
	CarbsPercentage   float64
	FatsPercentage    float64

	FoodCount  int
	WaterCount int
}

// Summarize folds logs into a DaySummary. Water never contributes to the
// macro totals and food never contributes to TotalWater.
func Summarize(logs []models.NutritionLog) DaySummary {
	var s DaySummary
	for _, l := range logs {
		if w, ok := l.Water(); ok {
			s.TotalWater += w.AmountLiters
			s.WaterCount++
			continue
		}
		f, _ := l.Food()
		s.TotalCalories += f.Calories
		s.TotalProtein += f.Protein
		s.TotalCarbs += f.Carbs
		s.TotalFats += f.Fats
		s.FoodCount++
	}

	protein := s.ProteinCalories()
	carbs := s.CarbsCalories()
	fats := s.FatsCalories()
	total := protein + carbs + fats
	if total == 0 {
		s.ProteinPercentage = constants.FallbackProteinShare
		s.CarbsPercentage = constants.FallbackCarbsShare
		s.FatsPercentage = constants.FallbackFatsShare
	} else {
		s.ProteinPercentage = protein / total
		s.CarbsPercentage = carbs / total
		s.FatsPercentage = fats / total
	}
	return s
}

// ForDay summarizes logs and stamps the result with day.
func ForDay(day time.Time, logs []models.NutritionLog) DaySummary {
	s := Summarize(logs)
	s.Date = day
	return s
}

func (s DaySummary) ProteinCalories() float64 { return s.TotalProtein * constants.KcalPerGramProtein }
func (s DaySummary) CarbsCalories() float64   { return s.TotalCarbs * constants.KcalPerGramCarbs }
func (s DaySummary) FatsCalories() float64    { return s.TotalFats * constants.KcalPerGramFat }

// HasData reports whether the day has any calories to chart.
func (s DaySummary) HasData() bool {
	return s.TotalCalories > 0
}

// WaterProgress is the fraction of goal reached, capped at 1.
func (s DaySummary) WaterProgress(goal float64) float64 {
	if goal <= 0 || s.TotalWater <= 0 {
		return 0
	}
	p := s.TotalWater / goal
	if p > 1 {
		return 1
	}
	return p
}

// DayLogger is the read side of the log store used for history.
type DayLogger interface {
	LogsForDay(day time.Time) []models.NutritionLog
	Location() *time.Location
}

// History summarizes the days calendar days ending on end, oldest first.
func History(store DayLogger, end time.Time, days int) []DaySummary {
	if days <= 0 {
		return []DaySummary{}
	}
	loc := store.Location()
	y, m, d := end.In(loc).Date()
	// Noon keeps AddDate away from DST edges.
	anchor := time.Date(y, m, d, 12, 0, 0, 0, loc)

	out := make([]DaySummary, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := anchor.AddDate(0, 0, -i)
		out = append(out, ForDay(day, store.LogsForDay(day)))
	}
	return out
}

// Percent renders a share as a whole percentage, truncating.
func Percent(share float64) int {
	return int(share * 100)
}
