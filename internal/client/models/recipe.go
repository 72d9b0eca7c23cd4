package models

import (
	"slices"
)

// Ingredient is one line of a recipe's ingredient list. OrderNum is the
// display position; it survives every conversion between the flattened
// recipe view and the decomposed local rows.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	OrderNum int    `json:"order_num"`
}

// Instruction is one step of a recipe. StepNum is the display position.
type Instruction struct {
	Description string `json:"description"`
	StepNum     int    `json:"step_num"`
}

// Recipe is the flattened recipe view handed to callers. Children are owned
// exclusively by the recipe and are deleted with it.
type Recipe struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Description         string        `json:"description"`
	Servings            int           `json:"servings"`
	Cuisine             string        `json:"cuisine"`
	MealType            string        `json:"meal_type"`
	AuthorID            string        `json:"author_id"`
	ImageURI            string        `json:"image_uri"`
	CookTimeMin         int           `json:"cook_time"`
	UpdatedAt           int64         `json:"last_updated_timestamp"`
	Ingredients         []Ingredient  `json:"ingredients"`
	Instructions        []Instruction `json:"instructions"`
	DietaryRestrictions []string      `json:"dietary_restrictions"`
}

// SortChildren orders ingredients by OrderNum and instructions by StepNum.
// Reads from the local cache arrive ordered already; this normalizes recipes
// built in memory or received from the backend.
func (r *Recipe) SortChildren() {
	slices.SortStableFunc(r.Ingredients, func(a, b Ingredient) int { return a.OrderNum - b.OrderNum })
	slices.SortStableFunc(r.Instructions, func(a, b Instruction) int { return a.StepNum - b.StepNum })
}

// Clone returns a deep copy.
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	c := *r
	c.Ingredients = slices.Clone(r.Ingredients)
	c.Instructions = slices.Clone(r.Instructions)
	c.DietaryRestrictions = slices.Clone(r.DietaryRestrictions)
	return &c
}
