package catalog

import (
	"strings"

	"lookbook-service/internal/models"
)

// MoodAll is the lookbook filter value that shows every look
const MoodAll = "all"

// FilterByMood returns the public looks matching a mood tag.
// The "all" sentinel (or an empty value) matches every look; matching is
// case-insensitive against each look's mood list.
func FilterByMood(ootds []models.Ootd, mood string) []models.Ootd {
	mood = strings.ToLower(strings.TrimSpace(mood))
	out := make([]models.Ootd, 0, len(ootds))
	for _, o := range ootds {
		if !o.IsPublic {
			continue
		}
		if mood == "" || mood == MoodAll || hasMood(o, mood) {
			out = append(out, o)
		}
	}
	return out
}

func hasMood(o models.Ootd, mood string) bool {
	for _, m := range o.Mood {
		if strings.ToLower(m) == mood {
			return true
		}
	}
	return false
}

// Moods collects the distinct mood tags across a set of looks, in order
// of first appearance, for the storefront filter bar.
func Moods(ootds []models.Ootd) []string {
	seen := make(map[string]bool)
	var moods []string
	for _, o := range ootds {
		for _, m := range o.Mood {
			key := strings.ToLower(m)
			if key == "" || key == MoodAll || seen[key] {
				continue
			}
			seen[key] = true
			moods = append(moods, m)
		}
	}
	return moods
}
