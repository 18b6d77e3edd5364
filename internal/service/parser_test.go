package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/chefai/backend/internal/model"
	"github.com/pageza/chefai/backend/internal/testhelpers"
)

func TestParseRecipeResponse(t *testing.T) {
	t.Run("should recover every section of a complete response", func(t *testing.T) {
		recipe, err := ParseRecipeResponse(testhelpers.RecipeResponse("Basil Chicken"))
		require.NoError(t, err)

		assert.Zero(t, recipe.ID)
		assert.Equal(t, "Basil Chicken", recipe.Title)
		assert.Equal(t, "Juicy chicken tossed with fresh basil and garlic.", recipe.Description)
		assert.Equal(t, "15 minutes", recipe.PrepTime)
		assert.Equal(t, "20 minutes", recipe.CookTime)
		assert.Equal(t, "35 minutes", recipe.TotalTime)
		assert.Equal(t, "4 servings", recipe.Servings)
		assert.Equal(t, model.StringList{
			"2 chicken breasts, sliced",
			"1 cup fresh basil leaves",
			"3 cloves garlic, minced",
			"2 tbsp olive oil",
		}, recipe.Ingredients)
		assert.Equal(t, model.StringList{
			"Heat the olive oil in a large skillet.",
			"Sear the chicken until golden, about 6 minutes.",
			"Add the garlic and cook for 1 minute.",
			"Toss in the basil and serve.",
		}, recipe.Instructions)
		assert.Equal(t, "A rustic skillet of golden Basil Chicken with fresh basil, natural light, close-up shot.", recipe.ImagePrompt)
		assert.Nil(t, recipe.ImageURL)
	})

	t.Run("should fail on empty input", func(t *testing.T) {
		recipe, err := ParseRecipeResponse("")
		assert.ErrorIs(t, err, ErrParseFailure)
		assert.Nil(t, recipe)
	})

	t.Run("should fail on whitespace-only input", func(t *testing.T) {
		_, err := ParseRecipeResponse("  \n\t \n")
		assert.ErrorIs(t, err, ErrParseFailure)
	})

	t.Run("should fail when no labels are present", func(t *testing.T) {
		_, err := ParseRecipeResponse("Here is a lovely recipe for soup.\n- water\n1. boil")
		assert.ErrorIs(t, err, ErrParseFailure)
	})

	t.Run("should accept a title-only response", func(t *testing.T) {
		recipe, err := ParseRecipeResponse("**Title:** Soup\n")
		require.NoError(t, err)

		assert.Equal(t, "Soup", recipe.Title)
		assert.Empty(t, recipe.Description)
		assert.Empty(t, recipe.PrepTime)
		assert.Empty(t, recipe.CookTime)
		assert.Empty(t, recipe.TotalTime)
		assert.Empty(t, recipe.Servings)
		assert.Empty(t, recipe.ImagePrompt)
		assert.NotNil(t, recipe.Ingredients)
		assert.Empty(t, recipe.Ingredients)
		assert.NotNil(t, recipe.Instructions)
		assert.Empty(t, recipe.Instructions)
	})

	t.Run("should default a blank title when other content exists", func(t *testing.T) {
		recipe, err := ParseRecipeResponse("**Title:**   \n**Image Prompt:** a bowl of soup")
		require.NoError(t, err)
		assert.Equal(t, model.DefaultTitle, recipe.Title)
		assert.Equal(t, "a bowl of soup", recipe.ImagePrompt)
	})

	t.Run("should fail when only the default title and blank sections remain", func(t *testing.T) {
		raw := "**Title:**\n**Description:** nice\n**Ingredients:**\n\n**Instructions:**\n \n**Image Prompt:**   "
		_, err := ParseRecipeResponse(raw)
		assert.ErrorIs(t, err, ErrParseFailure)
	})

	t.Run("should match labels case-sensitively", func(t *testing.T) {
		_, err := ParseRecipeResponse("**title:** Soup\n**INGREDIENTS:**\n- water")
		assert.ErrorIs(t, err, ErrParseFailure)
	})

	t.Run("should run a section to the end when its end label is missing", func(t *testing.T) {
		recipe, err := ParseRecipeResponse("**Ingredients:**\n- flour\n- water\n")
		require.NoError(t, err)
		assert.Equal(t, model.StringList{"flour", "water"}, recipe.Ingredients)
		assert.Empty(t, recipe.Instructions)
	})

	t.Run("should use the first start label and the first end label after it", func(t *testing.T) {
		raw := strings.Join([]string{
			"**Title:** First",
			"**Title:** Second",
			"**Ingredients:**",
			"- salt",
			"**Instructions:**",
			"1. stir",
			"**Instructions:**",
			"2. again",
			"**Image Prompt:** soup",
		}, "\n")

		recipe, err := ParseRecipeResponse(raw)
		require.NoError(t, err)
		assert.Equal(t, "First", recipe.Title)
		assert.Equal(t, model.StringList{"salt"}, recipe.Ingredients)
		assert.Equal(t, model.StringList{"stir", "**Instructions:**", "again"}, recipe.Instructions)
	})

	t.Run("should ignore an end label that only appears before the start label", func(t *testing.T) {
		raw := "**Instructions:** see below\n**Title:** Stew\n**Ingredients:**\n- beef\n- carrots"
		recipe, err := ParseRecipeResponse(raw)
		require.NoError(t, err)
		assert.Equal(t, model.StringList{"beef", "carrots"}, recipe.Ingredients)
	})

	t.Run("should keep a single-line field to its own line", func(t *testing.T) {
		recipe, err := ParseRecipeResponse("**Title:** Soup\r\n**Servings:** 2\r\n")
		require.NoError(t, err)
		assert.Equal(t, "Soup", recipe.Title)
		assert.Equal(t, "2", recipe.Servings)
	})
}

func TestParseIngredients(t *testing.T) {
	cases := []struct {
		name  string
		block string
		want  model.StringList
	}{
		{"strips marker and padding", "-    Tomato  ", model.StringList{"Tomato"}},
		{"keeps unmarked lines", "Tomato", model.StringList{"Tomato"}},
		{"strips the marker once", "- - Tomato", model.StringList{"- Tomato"}},
		{"drops blank and marker-only lines", "- a\n\n-  \n- b", model.StringList{"a", "b"}},
		{"strips the marker of an indented line", "- a\n  - b", model.StringList{"a", "b"}},
		{"keeps duplicates in order", "- salt\n- pepper\n- salt", model.StringList{"salt", "pepper", "salt"}},
		{"empty block", "", model.StringList{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseIngredients(tc.block))
		})
	}
}

func TestParseInstructions(t *testing.T) {
	cases := []struct {
		name  string
		block string
		want  model.StringList
	}{
		{"period and spaces", "12.   Stir well ", model.StringList{"Stir well"}},
		{"no period", "2 Stir well", model.StringList{"Stir well"}},
		{"no space", "10.Stir well", model.StringList{"Stir well"}},
		{"no marker", "Stir well", model.StringList{"Stir well"}},
		{"marker consumed once", "1. 2. Stir", model.StringList{"2. Stir"}},
		{"marker only", "3.", model.StringList{}},
		{"order preserved", "1. a\n2. b\n\n3. c", model.StringList{"a", "b", "c"}},
		{"indented marker", "1. one\n   2. two", model.StringList{"one", "two"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseInstructions(tc.block))
		})
	}
}

func TestBuildUserPrompt(t *testing.T) {
	prompt := BuildUserPrompt("weeknight dinner", "chicken, basil", "")
	assert.Contains(t, prompt, `Recipe Idea: "weeknight dinner"`)
	assert.Contains(t, prompt, `Ingredients Available: "chicken, basil"`)
	assert.NotContains(t, prompt, "Optional Recipe Name Suggestion")

	named := BuildUserPrompt("dessert", "apples", "Grandma's Pie")
	assert.Contains(t, named, `Optional Recipe Name Suggestion: "Grandma's Pie"`)
}

func TestSystemPromptCarriesEveryLabel(t *testing.T) {
	prompt := BuildSystemPrompt()
	for _, label := range []string{
		labelTitle, labelDescription, labelPrepTime, labelCookTime, labelTotalTime,
		labelServings, labelIngredients, labelInstructions, labelImagePrompt,
	} {
		assert.Contains(t, prompt, label)
	}
}
