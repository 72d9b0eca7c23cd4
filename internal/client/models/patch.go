package models

// Sparse patch types. A nil field means "leave untouched"; a non-nil empty
// slice means "set to empty". This keeps the two distinguishable, which
// nullable parameters cannot do.

// UserPatch describes a partial update to the current user.
type UserPatch struct {
	DisplayName         *string
	DietaryRestrictions []string
	FavoriteCuisines    []string
	FavoriteRecipeIDs   []string
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.DisplayName == nil &&
		p.DietaryRestrictions == nil &&
		p.FavoriteCuisines == nil &&
		p.FavoriteRecipeIDs == nil
}

// Fields returns the wire form of the patch: a map holding only the fields
// that are set, keyed by their document field names.
func (p UserPatch) Fields() map[string]any {
	m := map[string]any{}
	if p.DisplayName != nil {
		m["display_name"] = *p.DisplayName
	}
	if p.DietaryRestrictions != nil {
		m["dietary_restrictions"] = p.DietaryRestrictions
	}
	if p.FavoriteCuisines != nil {
		m["favorite_cuisines"] = p.FavoriteCuisines
	}
	if p.FavoriteRecipeIDs != nil {
		m["favorite_recipe_ids"] = p.FavoriteRecipeIDs
	}
	return m
}

// ApplyTo mutates u with the fields the patch carries.
func (p UserPatch) ApplyTo(u *User) {
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.DietaryRestrictions != nil {
		u.DietaryRestrictions = normalizeSet(p.DietaryRestrictions)
	}
	if p.FavoriteCuisines != nil {
		u.FavoriteCuisines = normalizeSet(p.FavoriteCuisines)
	}
	if p.FavoriteRecipeIDs != nil {
		u.FavoriteRecipeIDs = normalizeSet(p.FavoriteRecipeIDs)
	}
}

// RecipePatch describes a partial update to a recipe. Child collections are
// replaced wholesale when present; there is no per-child patching.
type RecipePatch struct {
	Name                *string
	Description         *string
	Servings            *int
	Cuisine             *string
	MealType            *string
	ImageURI            *string
	CookTimeMin         *int
	Ingredients         []Ingredient
	Instructions        []Instruction
	DietaryRestrictions []string
}

func (p RecipePatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Servings == nil &&
		p.Cuisine == nil && p.MealType == nil && p.ImageURI == nil &&
		p.CookTimeMin == nil && p.Ingredients == nil &&
		p.Instructions == nil && p.DietaryRestrictions == nil
}

func (p RecipePatch) Fields() map[string]any {
	m := map[string]any{}
	if p.Name != nil {
		m["name"] = *p.Name
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Servings != nil {
		m["servings"] = *p.Servings
	}
	if p.Cuisine != nil {
		m["cuisine"] = *p.Cuisine
	}
	if p.MealType != nil {
		m["meal_type"] = *p.MealType
	}
	if p.ImageURI != nil {
		m["image_uri"] = *p.ImageURI
	}
	if p.CookTimeMin != nil {
		m["cook_time"] = *p.CookTimeMin
	}
	if p.Ingredients != nil {
		m["ingredients"] = p.Ingredients
	}
	if p.Instructions != nil {
		m["instructions"] = p.Instructions
	}
	if p.DietaryRestrictions != nil {
		m["dietary_restrictions"] = p.DietaryRestrictions
	}
	return m
}

func (p RecipePatch) ApplyTo(r *Recipe) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Servings != nil {
		r.Servings = *p.Servings
	}
	if p.Cuisine != nil {
		r.Cuisine = *p.Cuisine
	}
	if p.MealType != nil {
		r.MealType = *p.MealType
	}
	if p.ImageURI != nil {
		r.ImageURI = *p.ImageURI
	}
	if p.CookTimeMin != nil {
		r.CookTimeMin = *p.CookTimeMin
	}
	if p.Ingredients != nil {
		r.Ingredients = p.Ingredients
	}
	if p.Instructions != nil {
		r.Instructions = p.Instructions
	}
	if p.DietaryRestrictions != nil {
		r.DietaryRestrictions = p.DietaryRestrictions
	}
	r.SortChildren()
}
