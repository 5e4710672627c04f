package aggregate

import (
	"strings"
	"unicode"

	"github.com/alchemistbuilder/stockdrivernews/models"
)

// normalizedTitleLen bounds the title-derived dedup key.
const normalizedTitleLen = 50

// Deduplicate collapses duplicate articles across providers. The key is
// the URL when present, else a normalized title. The first occurrence
// wins, so the order providers are joined in decides which copy of a
// duplicate survives.
func Deduplicate(articles []models.NewsArticle) []models.NewsArticle {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]models.NewsArticle, 0, len(articles))
	for _, article := range articles {
		key := dedupKey(article)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, article)
	}
	return unique
}

func dedupKey(article models.NewsArticle) string {
	if article.URL != "" {
		return article.URL
	}
	return normalizeTitle(article.Title)
}

// normalizeTitle lowercases, strips non-alphanumerics and truncates so
// near-identical headlines from different outlets collapse together.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
		if b.Len() >= normalizedTitleLen {
			break
		}
	}
	return b.String()
}
