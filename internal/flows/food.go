package flows

import (
	"time"

	"github.com/julianstephens/foodlog/internal/analysis"
	"github.com/julianstephens/foodlog/internal/models"
)

// FoodForm holds the food fields exactly as typed.
type FoodForm struct {
	Name     string
	Calories string
	Protein  string
	Carbs    string
	Fats     string
}

// FoodFormFromResult pre-fills the review form with an analysis proposal.
func FoodFormFromResult(r analysis.Result) FoodForm {
	return FoodForm{
		Name:     r.Name,
		Calories: FormatAmount(r.Calories),
		Protein:  FormatAmount(r.Protein),
		Carbs:    FormatAmount(r.Carbs),
		Fats:     FormatAmount(r.Fats),
	}
}

// FoodFormFromLog pre-fills the edit form from an existing food log.
func FoodFormFromLog(l models.NutritionLog) FoodForm {
	f, _ := l.Food()
	return FoodForm{
		Name:     f.Name,
		Calories: FormatAmount(f.Calories),
		Protein:  FormatAmount(f.Protein),
		Carbs:    FormatAmount(f.Carbs),
		Fats:     FormatAmount(f.Fats),
	}
}

// Entry converts the form to a food entry, treating unparsable numbers as 0.
func (f FoodForm) Entry() models.FoodEntry {
	return models.FoodEntry{
		Name:     f.Name,
		Calories: ParseAmount(f.Calories),
		Protein:  ParseAmount(f.Protein),
		Carbs:    ParseAmount(f.Carbs),
		Fats:     ParseAmount(f.Fats),
	}
}

// ToLog builds a new food log stamped with now.
func (f FoodForm) ToLog(now time.Time) models.NutritionLog {
	l := models.DefaultFoodLog(now)
	l.Entry = f.Entry()
	return l
}

// ApplyEdit returns l with the form applied. Unparsable numbers keep the
// previous value; id, date and image are preserved.
func ApplyEdit(l models.NutritionLog, f FoodForm) models.NutritionLog {
	prev, _ := l.Food()
	return l.WithEntry(models.FoodEntry{
		Name:     f.Name,
		Calories: parseOr(f.Calories, prev.Calories),
		Protein:  parseOr(f.Protein, prev.Protein),
		Carbs:    parseOr(f.Carbs, prev.Carbs),
		Fats:     parseOr(f.Fats, prev.Fats),
		Image:    prev.Image,
	})
}
