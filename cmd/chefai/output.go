package main

import (
	"fmt"
	"io"

	"github.com/pageza/chefai/backend/internal/model"
)

func printRecipe(w io.Writer, r *model.Recipe) {
	fmt.Fprintf(w, "\n%s\n", r.Title)
	if r.Description != "" {
		fmt.Fprintf(w, "%s\n", r.Description)
	}
	fmt.Fprintln(w)
	for _, field := range []struct{ label, value string }{
		{"Prep time", r.PrepTime},
		{"Cook time", r.CookTime},
		{"Total time", r.TotalTime},
		{"Servings", r.Servings},
	} {
		if field.value != "" {
			fmt.Fprintf(w, "%-11s %s\n", field.label+":", field.value)
		}
	}

	if len(r.Ingredients) > 0 {
		fmt.Fprintln(w, "\nIngredients:")
		for _, ingredient := range r.Ingredients {
			fmt.Fprintf(w, "  - %s\n", ingredient)
		}
	}
	if len(r.Instructions) > 0 {
		fmt.Fprintln(w, "\nInstructions:")
		for i, step := range r.Instructions {
			fmt.Fprintf(w, "  %d. %s\n", i+1, step)
		}
	}
	if r.ImageURL != nil {
		fmt.Fprintf(w, "\nImage: %s\n", *r.ImageURL)
	}
	if r.ID != 0 {
		fmt.Fprintf(w, "\nSaved as recipe #%d\n", r.ID)
	}
}

func printRecipeList(w io.Writer, recipes []model.Recipe) {
	if len(recipes) == 0 {
		fmt.Fprintln(w, "No recipes found.")
		return
	}
	for _, r := range recipes {
		fmt.Fprintf(w, "#%-4d %s\n", r.ID, r.Title)
	}
}
