package flows

import (
	"fmt"
	"time"

	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/models"
)

// WaterPicker tracks the amount chosen on the quick-add water screen.
type WaterPicker struct {
	amount float64
}

func NewWaterPicker() *WaterPicker {
	return &WaterPicker{amount: constants.WaterPresets[0]}
}

// Presets returns the quick-add amounts in liters.
func (p *WaterPicker) Presets() []float64 {
	out := make([]float64, len(constants.WaterPresets))
	copy(out, constants.WaterPresets)
	return out
}

// Amount is the currently selected amount in liters.
func (p *WaterPicker) Amount() float64 {
	return p.amount
}

// SelectPreset picks the preset at index i.
func (p *WaterPicker) SelectPreset(i int) error {
	if i < 0 || i >= len(constants.WaterPresets) {
		return fmt.Errorf("preset %d out of range (1-%d)", i+1, len(constants.WaterPresets))
	}
	p.amount = constants.WaterPresets[i]
	return nil
}

// SetCustom takes a typed amount. Only values greater than zero are
// accepted; anything else leaves the selection unchanged and reports false.
func (p *WaterPicker) SetCustom(s string) bool {
	v, ok := parseFloat(s)
	if !ok || v <= 0 {
		return false
	}
	p.amount = v
	return true
}

// ToLog builds a water log for the selected amount.
func (p *WaterPicker) ToLog(now time.Time) models.NutritionLog {
	return models.DefaultWaterLog(p.amount, now)
}

// ApplyWaterEdit returns l with a new amount. Unparsable input keeps the
// previous amount.
func ApplyWaterEdit(l models.NutritionLog, amount string) models.NutritionLog {
	prev, _ := l.Water()
	return l.WithEntry(models.WaterEntry{AmountLiters: parseOr(amount, prev.AmountLiters)})
}
