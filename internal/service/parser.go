package service

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pageza/chefai/backend/internal/model"
)

// stepMarker matches a leading instruction ordinal such as "1. ", "2 " or "10."
var stepMarker = regexp.MustCompile(`^\d+\.?\s*`)

// ParseRecipeResponse converts the labeled-section text produced by the model into a recipe.
// Labels are matched literally and case-sensitively. Sections that are missing are left empty;
// ErrParseFailure is returned only when nothing recognizable was found at all.
func ParseRecipeResponse(raw string) (*model.Recipe, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrParseFailure
	}

	title := extractSection(raw, labelTitle, "\n")
	if title == "" {
		title = model.DefaultTitle
	}

	recipe := &model.Recipe{
		Title:        title,
		Description:  extractSection(raw, labelDescription, "\n"),
		PrepTime:     extractSection(raw, labelPrepTime, "\n"),
		CookTime:     extractSection(raw, labelCookTime, "\n"),
		TotalTime:    extractSection(raw, labelTotalTime, "\n"),
		Servings:     extractSection(raw, labelServings, "\n"),
		Ingredients:  parseIngredients(extractSection(raw, labelIngredients, labelInstructions)),
		Instructions: parseInstructions(extractSection(raw, labelInstructions, labelImagePrompt)),
		ImagePrompt:  extractToEnd(raw, labelImagePrompt),
	}

	if !recipe.HasContent() {
		return nil, ErrParseFailure
	}

	return recipe, nil
}

// extractSection returns the trimmed text between the first occurrence of start and the
// first occurrence of end after it. A missing end runs the section to the end of text.
func extractSection(text, start, end string) string {
	_, after, found := strings.Cut(text, start)
	if !found {
		return ""
	}
	if i := strings.Index(after, end); i >= 0 {
		after = after[:i]
	}
	return strings.TrimSpace(after)
}

func extractToEnd(text, start string) string {
	_, after, found := strings.Cut(text, start)
	if !found {
		return ""
	}
	return strings.TrimSpace(after)
}

func parseIngredients(block string) model.StringList {
	items := model.StringList{}
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimLeftFunc(line, unicode.IsSpace)
		line = strings.TrimSpace(strings.TrimPrefix(line, "- "))
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

func parseInstructions(block string) model.StringList {
	steps := model.StringList{}
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimLeftFunc(line, unicode.IsSpace)
		if loc := stepMarker.FindStringIndex(line); loc != nil {
			line = line[loc[1]:]
		}
		line = strings.TrimSpace(line)
		if line != "" {
			steps = append(steps, line)
		}
	}
	return steps
}
