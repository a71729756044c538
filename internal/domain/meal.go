package domain

import "time"

// Meal is the listing snapshot orders price against. Only the fields the
// pricing path needs are mirrored here.
type Meal struct {
	MealID     string    `json:"mealId"`
	MakerID    string    `json:"makerId"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	Available  bool      `json:"available"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
