// Package models defines the client-side data model: the current user, the
// recipe aggregate with its ordered children, and the sparse patch types used
// by partial updates.
package models

import (
	"slices"
)

// User is the profile of an authenticated account. Exactly one user is
// cached locally at a time; its absence means nobody is signed in.
//
// The three string collections are logically unordered sets. They are kept
// sorted and de-duplicated so two equal users compare equal field by field.
type User struct {
	ID                  string   `json:"uid"`
	DisplayName         string   `json:"display_name"`
	Email               string   `json:"email"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	FavoriteCuisines    []string `json:"favorite_cuisines"`
	FavoriteRecipeIDs   []string `json:"favorite_recipe_ids"`
}

// Normalize sorts and de-duplicates the set-valued fields in place.
func (u *User) Normalize() {
	u.DietaryRestrictions = normalizeSet(u.DietaryRestrictions)
	u.FavoriteCuisines = normalizeSet(u.FavoriteCuisines)
	u.FavoriteRecipeIDs = normalizeSet(u.FavoriteRecipeIDs)
}

// Clone returns a deep copy.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.DietaryRestrictions = slices.Clone(u.DietaryRestrictions)
	c.FavoriteCuisines = slices.Clone(u.FavoriteCuisines)
	c.FavoriteRecipeIDs = slices.Clone(u.FavoriteRecipeIDs)
	return &c
}

func normalizeSet(in []string) []string {
	if in == nil {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
