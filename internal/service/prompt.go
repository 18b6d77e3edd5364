package service

import (
	"fmt"
	"strings"
)

// Section labels the text model is instructed to emit. The parser matches them literally,
// so editing systemPrompt means editing these too.
const (
	labelTitle        = "**Title:**"
	labelDescription  = "**Description:**"
	labelPrepTime     = "**Prep Time:**"
	labelCookTime     = "**Cook Time:**"
	labelTotalTime    = "**Total Time:**"
	labelServings     = "**Servings:**"
	labelIngredients  = "**Ingredients:**"
	labelInstructions = "**Instructions:**"
	labelImagePrompt  = "**Image Prompt:**"
)

const systemPrompt = `You are ChefAI, an expert culinary assistant. Your task is to generate a recipe based on user-provided ideas and ingredients.
You MUST provide the response strictly in the following structured format, using these exact headings and markdown:

` + labelTitle + ` [Generated Recipe Title]

` + labelDescription + ` [A short, appealing description of the dish, 1-2 sentences]

` + labelPrepTime + ` [Estimated preparation time, e.g., 15 minutes]

` + labelCookTime + ` [Estimated cooking time, e.g., 30 minutes]

` + labelTotalTime + ` [Estimated total time]

` + labelServings + ` [Number of servings, e.g., 4 servings]

` + labelIngredients + `
- [Quantity] [Unit] [Ingredient Name]
- [Quantity] [Unit] [Ingredient Name]
(List all necessary ingredients)

` + labelInstructions + `
1. [Step 1 description]
2. [Step 2 description]
(List all steps clearly and concisely)

` + labelImagePrompt + ` [A detailed text description suitable for an AI image generator to create a picture of the final dish. Example: 'A vibrant photo of freshly cooked pasta aglio e olio in a white bowl, garnished with parsley, close-up shot, natural light.']

Do not include any extra introductory or concluding text outside of this structure. Ensure each section is clearly marked with the headings in bold. Use bullet points (-) for ingredients and numbered lists (1., 2.) for instructions.`

// BuildSystemPrompt returns the fixed instructions sent with every recipe request
func BuildSystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt describes what the user asked for
func BuildUserPrompt(idea, ingredients, name string) string {
	var b strings.Builder
	b.WriteString("Generate a recipe based on the following details:\n")
	fmt.Fprintf(&b, "Recipe Idea: %q\n", idea)
	fmt.Fprintf(&b, "Ingredients Available: %q", ingredients)
	if strings.TrimSpace(name) != "" {
		fmt.Fprintf(&b, "\nOptional Recipe Name Suggestion: %q", name)
	}
	return b.String()
}
