package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/foodlog/internal/constants"
)

// record is the persisted shape of a NutritionLog. Both the food and the
// water fields are always written so the blob stays flat.
type record struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Kind        Kind      `json:"kind"`
	Name        string    `json:"name"`
	Calories    float64   `json:"calories"`
	Protein     float64   `json:"protein"`
	Carbs       float64   `json:"carbs"`
	Fats        float64   `json:"fats"`
	WaterAmount float64   `json:"waterAmount"`
	Image       []byte    `json:"image,omitempty"`
}

func (l NutritionLog) MarshalJSON() ([]byte, error) {
	r := record{ID: l.ID, Date: l.Date, Kind: l.Kind()}
	if water, ok := l.Water(); ok {
		r.Name = constants.WaterEntryName
		r.WaterAmount = water.AmountLiters
	} else {
		food, _ := l.Food()
		r.Name = food.Name
		r.Calories = food.Calories
		r.Protein = food.Protein
		r.Carbs = food.Carbs
		r.Fats = food.Fats
		r.Image = food.Image
	}
	return json.Marshal(r)
}

func (l *NutritionLog) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}

	l.ID = r.ID
	l.Date = r.Date
	switch r.Kind {
	case KindFood:
		l.Entry = FoodEntry{
			Name:     r.Name,
			Calories: r.Calories,
			Protein:  r.Protein,
			Carbs:    r.Carbs,
			Fats:     r.Fats,
			Image:    r.Image,
		}
	case KindWater:
		l.Entry = WaterEntry{AmountLiters: r.WaterAmount}
	default:
		return fmt.Errorf("unknown log kind %q for log %s", r.Kind, r.ID)
	}
	return nil
}

// EncodeLogs serializes the full ordered collection.
func EncodeLogs(logs []NutritionLog) ([]byte, error) {
	if logs == nil {
		logs = []NutritionLog{}
	}
	data, err := json.Marshal(logs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode logs: %w", err)
	}
	return data, nil
}

// DecodeLogs parses a collection written by EncodeLogs.
func DecodeLogs(data []byte) ([]NutritionLog, error) {
	var logs []NutritionLog
	if err := json.Unmarshal(data, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode logs: %w", err)
	}
	if logs == nil {
		logs = []NutritionLog{}
	}
	return logs, nil
}
