package testhelpers

import (
	"fmt"

	"github.com/pageza/chefai/backend/internal/model"
)

// RecipeResponse returns a fully populated model response in the labeled-section format
func RecipeResponse(title string) string {
	return fmt.Sprintf(`**Title:** %s

**Description:** Juicy chicken tossed with fresh basil and garlic.

**Prep Time:** 15 minutes

**Cook Time:** 20 minutes

**Total Time:** 35 minutes

**Servings:** 4 servings

**Ingredients:**
- 2 chicken breasts, sliced
- 1 cup fresh basil leaves
- 3 cloves garlic, minced
- 2 tbsp olive oil

**Instructions:**
1. Heat the olive oil in a large skillet.
2. Sear the chicken until golden, about 6 minutes.
3. Add the garlic and cook for 1 minute.
4. Toss in the basil and serve.

**Image Prompt:** A rustic skillet of golden %s with fresh basil, natural light, close-up shot.`, title, title)
}

// NewTestRecipe builds an unsaved recipe with the given title
func NewTestRecipe(title string) *model.Recipe {
	return &model.Recipe{
		Title:        title,
		Description:  "A test recipe",
		PrepTime:     "10 minutes",
		CookTime:     "20 minutes",
		TotalTime:    "30 minutes",
		Servings:     "2 servings",
		Ingredients:  model.StringList{"ingredient1", "ingredient2"},
		Instructions: model.StringList{"step1", "step2"},
		ImagePrompt:  "A photo of " + title,
	}
}
