package catalog

import (
	"sort"
	"strings"

	"github.com/ariefcatur/go-freshbite.git/internal/pricing"
)

const AllCategories = "All"

// Filter narrows items to a category ("" or "All" for every category) and a
// free-text query matched against name, description and category. Results
// list popular dishes first, then by rating.
func Filter(items []MenuItem, category, query string) []MenuItem {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]MenuItem, 0, len(items))
	for _, it := range items {
		if category != "" && category != AllCategories && it.Category != category {
			continue
		}
		if q != "" && !matches(it, q) {
			continue
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPopular != out[j].IsPopular {
			return out[i].IsPopular
		}
		return out[i].Rating > out[j].Rating
	})
	return out
}

func matches(it MenuItem, q string) bool {
	return strings.Contains(strings.ToLower(it.Name), q) ||
		strings.Contains(strings.ToLower(it.Description), q) ||
		strings.Contains(strings.ToLower(it.Category), q)
}

// Categories is "All" followed by each category in first-seen order.
func Categories(items []MenuItem) []string {
	return append([]string{AllCategories}, pricing.Categories(items)...)
}

// PopularSearches are the suggestions offered before anything is typed.
var PopularSearches = []string{"Burger", "Pizza", "Healthy", "Chicken", "Vegetarian"}
