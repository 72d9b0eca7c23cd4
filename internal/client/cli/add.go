package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hmmelton/bytechef/internal/client/models"
	"github.com/hmmelton/bytechef/internal/netx"
)

// uploadImage is a test seam for the presigned-URL upload.
var uploadImage = netx.UploadToS3PresignedURL

// parseIngredient turns a "name | quantity | unit" line into an Ingredient.
// Quantity and unit are optional.
func parseIngredient(line string, orderNum int) models.Ingredient {
	parts := strings.Split(line, "|")
	ing := models.Ingredient{Name: strings.TrimSpace(parts[0]), OrderNum: orderNum}
	if len(parts) > 1 {
		ing.Quantity = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		ing.Unit = strings.TrimSpace(parts[2])
	}
	return ing
}

// addRecipe interactively builds a recipe and creates it, backend first.
func (a *App) addRecipe(ctx context.Context) error {
	session := a.authManager.Current()
	if session == nil {
		fmt.Println("Please log in first")
		return nil
	}

	name, err := getSimpleText(a.reader, "Recipe name", os.Stdout)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "Description", os.Stdout)
	if err != nil {
		return err
	}
	cuisine, err := getSimpleText(a.reader, "Cuisine", os.Stdout)
	if err != nil {
		return err
	}
	mealType, err := getSimpleText(a.reader, "Meal type", os.Stdout)
	if err != nil {
		return err
	}
	servingsText, err := getSimpleText(a.reader, "Servings", os.Stdout)
	if err != nil {
		return err
	}
	servings, _ := strconv.Atoi(servingsText)
	cookTimeText, err := getSimpleText(a.reader, "Cook time (minutes)", os.Stdout)
	if err != nil {
		return err
	}
	cookTime, _ := strconv.Atoi(cookTimeText)

	ingredientLines, err := GetLines(a.reader, "Ingredients, one per line as: name | quantity | unit", os.Stdout)
	if err != nil {
		return err
	}
	instructionLines, err := GetLines(a.reader, "Instructions, one step per line", os.Stdout)
	if err != nil {
		return err
	}

	recipe := &models.Recipe{
		Name:        name,
		Description: description,
		Cuisine:     cuisine,
		MealType:    mealType,
		Servings:    servings,
		CookTimeMin: cookTime,
		AuthorID:    session.UID,
		UpdatedAt:   time.Now().UnixMilli(),
	}
	for i, line := range ingredientLines {
		recipe.Ingredients = append(recipe.Ingredients, parseIngredient(line, i))
	}
	for i, line := range instructionLines {
		recipe.Instructions = append(recipe.Instructions, models.Instruction{
			Description: strings.TrimSpace(line),
			StepNum:     i + 1,
		})
	}

	id, err := a.recipes.Create(ctx, recipe)
	if err != nil {
		return err
	}
	fmt.Printf("Created recipe %s\n", id)

	imagePath, err := getSimpleText(a.reader, "Image file path (empty to skip)", os.Stdout)
	if err != nil || imagePath == "" {
		return nil
	}
	return a.uploadRecipeImage(ctx, id, imagePath)
}

// uploadRecipeImage streams a local file to the backend's presigned URL.
func (a *App) uploadRecipeImage(ctx context.Context, recipeID, path string) error {
	url, err := a.recipes.ImageUploadURL(ctx, recipeID)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := uploadImage(url, data); err != nil {
		return err
	}
	fmt.Println("Image uploaded")
	return nil
}
