package markdown

import "strings"

// CategoryMisc is the fallback category for URLs that match no known
// documentation section.
const CategoryMisc = "misc"

// categoryBySubstring maps documentation URL path markers to archive
// subdirectories.
var categoryBySubstring = []struct {
	marker   string
	category string
}{
	{"/api-", "api-reference"},
	{"/productdesc-", "product-overview"},
	{"/ug-", "user-guide"},
	{"/bestpractice-", "best-practices"},
	{"/faq-", "faq"},
	{"/price-", "pricing"},
}

// Categorize determines the archive subdirectory for a page URL.
func Categorize(url string) string {
	for _, c := range categoryBySubstring {
		if strings.Contains(url, c.marker) {
			return c.category
		}
	}
	return CategoryMisc
}
