package models

import "time"

// Literal values accepted for the diet-adherence flag.
const (
	OnDietYes = "Yes"
	OnDietNo  = "No"
)

// Meal represents one logged meal. DateAndTime is when the meal was eaten,
// distinct from the row's creation time.
type Meal struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	MealName    string    `json:"meal_name" db:"meal_name"`
	Description string    `json:"description" db:"description"`
	DateAndTime time.Time `json:"date_and_time" db:"date_and_time"`
	OnDiet      string    `json:"on_diet" db:"on_diet"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CreateMealRequest represents the request to log a meal. All fields are
// required; date_and_time must be RFC 3339.
type CreateMealRequest struct {
	MealName    string `json:"meal_name"`
	Description string `json:"description"`
	DateAndTime string `json:"date_and_time"`
	OnDiet      string `json:"on_diet"`
}

// UpdateMealRequest represents a partial update. Empty fields are left
// untouched on the stored record.
type UpdateMealRequest struct {
	MealName    string `json:"meal_name,omitempty"`
	Description string `json:"description,omitempty"`
	DateAndTime string `json:"date_and_time,omitempty"`
	OnDiet      string `json:"on_diet,omitempty"`
}

// ValidOnDiet reports whether v is one of the two accepted flag literals.
func ValidOnDiet(v string) bool {
	return v == OnDietYes || v == OnDietNo
}
