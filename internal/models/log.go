package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/foodlog/internal/constants"
)

type Kind string

const (
	KindFood  Kind = "food"
	KindWater Kind = "water"
)

// Entry is the payload of a NutritionLog. It is implemented only by
// FoodEntry and WaterEntry.
type Entry interface {
	Kind() Kind
	isEntry()
}

type FoodEntry struct {
	Name     string
	Calories float64
	Protein  float64 // grams
	Carbs    float64 // grams
	Fats     float64 // grams
	Image    []byte  // JPEG, attached by the scan flow
}

func (FoodEntry) Kind() Kind { return KindFood }
func (FoodEntry) isEntry()   {}

type WaterEntry struct {
	AmountLiters float64
}

func (WaterEntry) Kind() Kind { return KindWater }
func (WaterEntry) isEntry()   {}

// NutritionLog is one recorded food or water event.
type NutritionLog struct {
	ID    string
	Date  time.Time
	Entry Entry
}

// NewID returns a fresh log identifier.
func NewID() string {
	return uuid.New().String()
}

// DefaultFoodLog returns an unsaved food log with an empty name and zero macros.
func DefaultFoodLog(now time.Time) NutritionLog {
	return NutritionLog{
		ID:    NewID(),
		Date:  now,
		Entry: FoodEntry{},
	}
}

// DefaultWaterLog returns a water log for the given amount in liters.
func DefaultWaterLog(amount float64, now time.Time) NutritionLog {
	return NutritionLog{
		ID:    NewID(),
		Date:  now,
		Entry: WaterEntry{AmountLiters: amount},
	}
}

// Kind reports the entry kind. A log without an entry is treated as food.
func (l NutritionLog) Kind() Kind {
	if l.Entry == nil {
		return KindFood
	}
	return l.Entry.Kind()
}

// Food returns the food payload and whether the log is a food log.
func (l NutritionLog) Food() (FoodEntry, bool) {
	switch e := l.Entry.(type) {
	case FoodEntry:
		return e, true
	case *FoodEntry:
		if e != nil {
			return *e, true
		}
	}
	return FoodEntry{}, false
}

// Water returns the water payload and whether the log is a water log.
func (l NutritionLog) Water() (WaterEntry, bool) {
	switch e := l.Entry.(type) {
	case WaterEntry:
		return e, true
	case *WaterEntry:
		if e != nil {
			return *e, true
		}
	}
	return WaterEntry{}, false
}

// DisplayName is the label shown in lists: the food name, or "Water".
func (l NutritionLog) DisplayName() string {
	if _, ok := l.Water(); ok {
		return constants.WaterEntryName
	}
	food, _ := l.Food()
	return food.Name
}

// WithEntry returns a copy of l carrying e, keeping id and date.
func (l NutritionLog) WithEntry(e Entry) NutritionLog {
	l.Entry = e
	return l
}
