package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/hmmelton/bytechef/internal/client/models"
)

// list prints the cached recipes, optionally filtered by cuisine.
func (a *App) list(ctx context.Context, cuisine string) error {
	recipes, err := a.recipes.Filtered(ctx, cuisine, "")
	if err != nil {
		return err
	}
	if len(recipes) == 0 {
		fmt.Println("No recipes")
		return nil
	}

	var favorites []string
	if user, err := a.users.Current(ctx); err == nil && user != nil {
		favorites = user.FavoriteRecipeIDs
	}

	for _, r := range recipes {
		marker := " "
		if slices.Contains(favorites, r.ID) {
			marker = "*"
		}
		fmt.Printf("%s %s  %s (%s, %d min)\n", marker, r.ID, r.Name, r.Cuisine, r.CookTimeMin)
	}
	return nil
}

// show prints one cached recipe in full.
func (a *App) show(ctx context.Context, id string) error {
	r, err := a.recipes.ByID(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n%s\n", r.Name, r.Description)
	fmt.Printf("Cuisine: %s, meal: %s, servings: %d, cook time: %d min\n",
		r.Cuisine, r.MealType, r.Servings, r.CookTimeMin)
	if len(r.DietaryRestrictions) > 0 {
		fmt.Printf("Dietary: %v\n", r.DietaryRestrictions)
	}
	fmt.Println("Ingredients:")
	for _, ing := range r.Ingredients {
		fmt.Printf("  - %s %s %s\n", ing.Quantity, ing.Unit, ing.Name)
	}
	fmt.Println("Instructions:")
	for _, step := range r.Instructions {
		fmt.Printf("  %d. %s\n", step.StepNum, step.Description)
	}
	return nil
}

// delete removes a recipe from both stores.
func (a *App) delete(ctx context.Context, id string) error {
	if err := a.recipes.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Println("Deleted", id)
	return nil
}

// favorite toggles a recipe in the signed-in user's favorites.
func (a *App) favorite(ctx context.Context, id string) error {
	session := a.authManager.Current()
	if session == nil {
		fmt.Println("Please log in first")
		return nil
	}

	user, err := a.users.Current(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Println("No cached profile, run 'sync' first")
		return nil
	}

	favorites := slices.Clone(user.FavoriteRecipeIDs)
	if i := slices.Index(favorites, id); i >= 0 {
		favorites = slices.Delete(favorites, i, i+1)
		fmt.Println("Removed from favorites")
	} else {
		favorites = append(favorites, id)
		fmt.Println("Added to favorites")
	}

	return a.users.Update(ctx, session.UID, models.UserPatch{FavoriteRecipeIDs: favorites})
}

// sync forces an immediate refresh of the profile and the recipe collection.
func (a *App) syncNow(ctx context.Context) error {
	session := a.authManager.Current()
	if session == nil {
		fmt.Println("Please log in first")
		return nil
	}

	if err := a.users.ForceRefresh(ctx, session.UID); err != nil {
		return err
	}
	if err := a.recipes.ForceRefresh(ctx, session.UID); err != nil {
		return err
	}
	fmt.Println("Synced")
	return nil
}
