package training

import "strings"

const CategoryOther = "other"

// CategorizeMilestone guesses a milestone category from its title.
// Exact match first, then substring match, then "other".
func CategorizeMilestone(title string) string {
	name := strings.ToLower(strings.TrimSpace(title))
	if name == "" {
		return CategoryOther
	}

	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return CategoryOther
}

var exactMatch = map[string]string{
	"first bath":               "grooming",
	"first haircut":            "grooming",
	"first nail trim":          "grooming",
	"first vet visit":          "health",
	"spay":                     "health",
	"neuter":                   "health",
	"microchip":                "health",
	"first walk":               "physical",
	"first car ride":           "socialization",
	"meet the family":          "socialization",
	"puppy class":              "training",
	"house trained":            "training",
	"crate trained":            "training",
	"sleeps through the night": "physical",
}

type substringEntry struct {
	keyword  string
	category string
}

// Longer, more specific phrases first.
var substringMatches = []substringEntry{
	{"nail trim", "grooming"},
	{"brush", "grooming"},
	{"groom", "grooming"},
	{"bath", "grooming"},

	{"vaccin", "health"},
	{"shot", "health"},
	{"vet", "health"},
	{"deworm", "health"},
	{"teeth", "health"},
	{"tooth", "health"},

	{"other dogs", "socialization"},
	{"strangers", "socialization"},
	{"children", "socialization"},
	{"kids", "socialization"},
	{"social", "socialization"},
	{"meet", "socialization"},
	{"park", "socialization"},

	{"leash", "training"},
	{"recall", "training"},
	{"potty", "training"},
	{"crate", "training"},
	{"sit", "training"},
	{"stay", "training"},
	{"command", "training"},
	{"train", "training"},

	{"weight", "physical"},
	{"walk", "physical"},
	{"stairs", "physical"},
	{"swim", "physical"},
	{"sleep", "physical"},
}
