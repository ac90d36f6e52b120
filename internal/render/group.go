package render

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kevinmichaelchen/folio/internal/models"
)

// Section is one category heading and its projects.
type Section struct {
	Category string
	Projects []models.Project
}

// Group orders projects for the listing page: one section per declared
// category in declaration order (repeats included), then one per
// undeclared category in first-seen order. A blank category, declared or
// on a project, counts as "Other".
func Group(c models.Categorization) []Section {
	byCategory := make(map[string][]models.Project)
	var seen []string
	for _, p := range c.Projects {
		cat := categoryOrOther(p.Category)
		if _, ok := byCategory[cat]; !ok {
			seen = append(seen, cat)
		}
		byCategory[cat] = append(byCategory[cat], p)
	}

	declared := make(map[string]bool, len(c.Categories))
	sections := make([]Section, 0, len(c.Categories)+len(seen))
	for _, cat := range c.Categories {
		cat = categoryOrOther(cat)
		declared[cat] = true
		sections = append(sections, Section{Category: cat, Projects: byCategory[cat]})
	}
	for _, cat := range seen {
		if !declared[cat] {
			sections = append(sections, Section{Category: cat, Projects: byCategory[cat]})
		}
	}
	return sections
}

func categoryOrOther(cat string) string {
	if strings.TrimSpace(cat) == "" {
		return "Other"
	}
	return cat
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToTitle(r)) + strings.ToLower(s[size:])
}
