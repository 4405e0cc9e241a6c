package imagegen

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// styleCatalog maps content categories to prompt fragments that steer the
// model. Unknown categories borrow the casual set.
var styleCatalog = map[string][]string{
	"business": {"professional photography", "clean minimalist", "corporate style", "modern business"},
	"social":   {"vibrant colors", "engaging", "social media style", "eye-catching"},
	"artistic": {"digital art", "watercolor painting", "oil painting", "concept art"},
	"nature":   {"natural lighting", "organic", "landscape photography", "environmental"},
	"tech":     {"futuristic", "sci-fi", "cyberpunk", "tech aesthetic", "digital"},
	"casual":   {"friendly", "warm tones", "approachable", "everyday style"},
}

// moodKeywords narrows a category down to entries matching the requested mood.
// Unlisted moods leave the catalog untouched.
var moodKeywords = map[string][]string{
	"professional": {"professional", "clean", "modern"},
	"friendly":     {"warm", "friendly", "casual"},
	"creative":     {"art", "creative", "concept"},
}

const fallbackCategory = "casual"

// exampleSubject seeds the usage example attached to each suggestion.
const exampleSubject = "brand cover artwork"

var titleCaser = cases.Title(language.Und)

// SuggestStyles recommends prompt styles for a content category, optionally
// narrowed by mood. The mood filter matches keywords inside the style text;
// when nothing survives the filter the full category list comes back, so the
// caller always has something to work with.
func SuggestStyles(req StyleRequest) StyleResult {
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	styles, ok := styleCatalog[contentType]
	if !ok {
		styles = styleCatalog[fallbackCategory]
	}

	mood := strings.ToLower(strings.TrimSpace(req.Mood))
	if keywords, ok := moodKeywords[mood]; ok {
		filtered := make([]string, 0, len(styles))
		for _, style := range styles {
			for _, kw := range keywords {
				if strings.Contains(style, kw) {
					filtered = append(filtered, style)
					break
				}
			}
		}
		if len(filtered) > 0 {
			styles = filtered
		}
	}

	suggestions := make([]StyleSuggestion, 0, len(styles))
	for _, style := range styles {
		suggestions = append(suggestions, StyleSuggestion{
			Style:   style,
			Label:   titleCaser.String(style),
			Example: exampleSubject + ", " + style,
		})
	}

	return StyleResult{
		Status:      StatusSuccess,
		ContentType: contentType,
		Mood:        mood,
		Styles:      suggestions,
	}
}

// applyStyle appends a style fragment to a prompt. Catalog entries are already
// complete fragments, so a plain comma join is all the model needs.
func applyStyle(prompt, style string) string {
	style = strings.TrimSpace(style)
	if style == "" {
		return prompt
	}
	return prompt + ", " + style
}
