package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/hmmelton/bytechef/internal/client/models"
	"github.com/hmmelton/bytechef/internal/common"
	"github.com/stretchr/testify/require"
)

func testRecipe(id, author string) *models.Recipe {
	return &models.Recipe{
		ID:          id,
		Name:        "Pancakes",
		Description: "Fluffy",
		Servings:    4,
		Cuisine:     "american",
		MealType:    "breakfast",
		AuthorID:    author,
		ImageURI:    "images/" + id + ".jpg",
		CookTimeMin: 20,
		UpdatedAt:   time.Now().UnixMilli(),
		Ingredients: []models.Ingredient{
			{Name: "flour", Quantity: "2", Unit: "cups", OrderNum: 0},
			{Name: "eggs", Quantity: "2", Unit: "", OrderNum: 1},
		},
		Instructions: []models.Instruction{
			{Description: "mix", StepNum: 1},
			{Description: "fry", StepNum: 2},
		},
		DietaryRestrictions: []string{"vegetarian"},
	}
}

func TestUpsertRecipe_RoundTripPreservesChildOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r := testRecipe("r-1", "u-1")
	// Children deliberately inserted out of index order.
	r.Ingredients = []models.Ingredient{
		{Name: "flour", OrderNum: 2},
		{Name: "eggs", OrderNum: 0},
		{Name: "milk", OrderNum: 1},
	}
	require.NoError(t, s.UpsertRecipe(ctx, r))

	got, err := s.RecipeByID(ctx, "r-1")
	require.NoError(t, err)
	require.Equal(t, "Pancakes", got.Name)
	require.Equal(t, "u-1", got.AuthorID)

	// The flattened view is ordered by index, not by insertion order.
	names := []string{got.Ingredients[0].Name, got.Ingredients[1].Name, got.Ingredients[2].Name}
	require.Equal(t, []string{"eggs", "milk", "flour"}, names)
	require.Equal(t, []int{0, 1, 2}, []int{
		got.Ingredients[0].OrderNum, got.Ingredients[1].OrderNum, got.Ingredients[2].OrderNum,
	})
	require.Equal(t, "mix", got.Instructions[0].Description)
	require.Equal(t, "fry", got.Instructions[1].Description)
	require.Equal(t, []string{"vegetarian"}, got.DietaryRestrictions)
}

func TestUpsertRecipe_ReplacesChildrenWholesale(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertRecipe(ctx, testRecipe("r-1", "u-1")))

	r := testRecipe("r-1", "u-1")
	r.Ingredients = []models.Ingredient{{Name: "butter", OrderNum: 0}}
	r.Instructions = nil
	require.NoError(t, s.UpsertRecipe(ctx, r))

	got, err := s.RecipeByID(ctx, "r-1")
	require.NoError(t, err)
	require.Len(t, got.Ingredients, 1)
	require.Equal(t, "butter", got.Ingredients[0].Name)
	require.Empty(t, got.Instructions)
}

func TestDeleteRecipe_CascadesToChildren(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertRecipe(ctx, testRecipe("r-1", "u-1")))
	require.NoError(t, s.DeleteRecipe(ctx, "r-1"))

	_, err := s.RecipeByID(ctx, "r-1")
	require.ErrorIs(t, err, common.ErrorNotFound)

	for _, table := range []string{"ingredients", "instructions", "recipe_dietary_restrictions"} {
		var n int
		require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		require.Zero(t, n, "children of %s must cascade", table)
	}
}

func TestDeleteRecipe_MissingIsNotAnError(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.DeleteRecipe(context.Background(), "ghost"))
}

func TestFilteredRecipes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	thai := testRecipe("r-1", "u-1")
	thai.Cuisine = "thai"
	thai.DietaryRestrictions = []string{"vegan"}
	require.NoError(t, s.UpsertRecipe(ctx, thai))

	italian := testRecipe("r-2", "u-1")
	italian.Cuisine = "italian"
	italian.DietaryRestrictions = []string{"vegetarian"}
	require.NoError(t, s.UpsertRecipe(ctx, italian))

	all, err := s.FilteredRecipes(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	onlyThai, err := s.FilteredRecipes(ctx, "thai", "")
	require.NoError(t, err)
	require.Len(t, onlyThai, 1)
	require.Equal(t, "r-1", onlyThai[0].ID)

	onlyVegan, err := s.FilteredRecipes(ctx, "", "vegan")
	require.NoError(t, err)
	require.Len(t, onlyVegan, 1)
	require.Equal(t, "r-1", onlyVegan[0].ID)

	none, err := s.FilteredRecipes(ctx, "italian", "vegan")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestRecipesUpdatedSince(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	old := testRecipe("r-1", "u-1")
	old.UpdatedAt = 1000
	require.NoError(t, s.UpsertRecipe(ctx, old))

	fresh := testRecipe("r-2", "u-1")
	fresh.UpdatedAt = 2000
	require.NoError(t, s.UpsertRecipe(ctx, fresh))

	got, err := s.RecipesUpdatedSince(ctx, 1500)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "r-2", got[0].ID)
}

func TestReplaceRecipesForAuthor_PrunesAndUpserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertRecipe(ctx, testRecipe("r-1", "u-1")))
	require.NoError(t, s.UpsertRecipe(ctx, testRecipe("r-2", "u-1")))
	other := testRecipe("r-3", "u-other")
	require.NoError(t, s.UpsertRecipe(ctx, other))

	// Remote snapshot: r-1 survives with a new name, r-2 is gone, r-4 is new.
	updated := *testRecipe("r-1", "u-1")
	updated.Name = "Crepes"
	incoming := []models.Recipe{updated, *testRecipe("r-4", "u-1")}
	require.NoError(t, s.ReplaceRecipesForAuthor(ctx, "u-1", incoming))

	all, err := s.AllRecipes(ctx)
	require.NoError(t, err)
	ids := map[string]string{}
	for _, r := range all {
		ids[r.ID] = r.Name
	}
	require.Len(t, ids, 3)
	require.Equal(t, "Crepes", ids["r-1"])
	require.Contains(t, ids, "r-4")
	require.Contains(t, ids, "r-3", "other authors' recipes are untouched")
	require.NotContains(t, ids, "r-2")
}

func TestObserveRecipes_EmitsOnMutation(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.ObserveRecipes(ctx)

	select {
	case snap := <-ch:
		require.Empty(t, snap, "seed snapshot is the empty collection")
	case <-time.After(2 * time.Second):
		t.Fatal("no seed snapshot")
	}

	require.NoError(t, s.UpsertRecipe(context.Background(), testRecipe("r-1", "u-1")))

	select {
	case snap := <-ch:
		require.Len(t, snap, 1)
		require.Equal(t, "r-1", snap[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after upsert")
	}
}
