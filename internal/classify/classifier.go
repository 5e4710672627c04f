// Package classify assigns news articles to relevance categories and
// scores them against a (symbol, sector) pair. It is a deterministic rule
// engine over static keyword tables, not a model.
package classify

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/alchemistbuilder/stockdrivernews/models"
)

// defaultHoursAgo stands in for articles without a publication time: one
// week, old enough to get no recency bonus.
const defaultHoursAgo = 168.0

// Classifier scores articles. Stateless beyond its logger; safe for
// concurrent use.
type Classifier struct {
	logger zerolog.Logger
	// now is swappable in tests.
	now func() time.Time
}

// New creates a Classifier.
func New() *Classifier {
	return &Classifier{
		logger: log.With().Str("component", "classifier").Logger(),
		now:    time.Now,
	}
}

// Classify scores one article against a symbol and its sector. The
// category decision is a strict priority cascade; the first matching
// branch wins.
func (c *Classifier) Classify(article models.NewsArticle, symbol, sector string) models.Classification {
	title := strings.ToLower(article.Title)
	body := strings.ToLower(article.Body())
	text := title + " " + body

	category, subcategory, reason := c.categorize(text, symbol, sector)

	cls := models.Classification{
		Category:    category,
		Subcategory: subcategory,
		Relevance:   c.relevance(title, body, symbol, article.PublishedAt),
		Sentiment:   sentiment(text),
		Urgency:     c.urgency(title, article.PublishedAt),
		PriceImpact: priceImpact(text),
		Reason:      reason,
	}
	cls.Confidence = c.confidence(cls, article)
	return cls
}

func (c *Classifier) categorize(text, symbol, sector string) (models.NewsCategory, string, string) {
	symbolLower := strings.ToLower(symbol)
	nameLower := strings.ToLower(CompanyName(symbol))

	// 1. Direct mention of the symbol or company — always wins, even when
	// a competitor is also named.
	if strings.Contains(text, symbolLower) || strings.Contains(text, nameLower) {
		sub := firstBucket(text, stockBuckets, "general")
		return models.CategoryStockSpecific, sub,
			fmt.Sprintf("Direct mention of %s with %s context", symbol, sub)
	}

	// 2. Competitor mention.
	for _, comp := range Competitors(symbol) {
		if strings.Contains(text, strings.ToLower(comp)) {
			return models.CategoryCompetitor, "peer-impact",
				fmt.Sprintf("Competitor %s mentioned", comp)
		}
	}

	// 3. Sector relevance.
	if containsAny(text, sectorKeywords[sector]) {
		sub := firstBucket(text, industryBuckets, "sector-general")
		return models.CategoryIndustry, sub,
			fmt.Sprintf("%s industry relevance - %s", sector, sub)
	}

	// 4. Macro events.
	for _, bucket := range macroBuckets {
		if containsAny(text, bucket.keywords) {
			return models.CategoryMacro, bucket.name,
				fmt.Sprintf("Market-wide %s event", bucket.name)
		}
	}

	return models.CategoryUnrelated, "other", "No clear relevance detected"
}

// relevance is additive and capped to [0,1]. Monotonic in match strength:
// adding a title or body mention never lowers the score, holding recency
// fixed.
func (c *Classifier) relevance(title, body, symbol string, publishedAt time.Time) float64 {
	symbolLower := strings.ToLower(symbol)
	nameLower := strings.ToLower(CompanyName(symbol))

	score := 0.0
	if strings.Contains(title, symbolLower) {
		score += 0.8
	}
	if strings.Contains(body, symbolLower) {
		score += 0.3
	}
	if strings.Contains(title, nameLower) {
		score += 0.7
	}
	if strings.Contains(body, nameLower) {
		score += 0.2
	}

	hours := c.hoursAgo(publishedAt)
	if hours < 24 {
		score += 0.1
	}
	if hours < 6 {
		score += 0.1
	}
	return min(score, 1.0)
}

// sentiment counts keyword occurrences: +0.1 per positive, -0.1 per
// negative, clamped to [-1,1]. Antisymmetric in the counts.
func sentiment(text string) float64 {
	score := 0.0
	for _, word := range positiveWords {
		score += float64(strings.Count(text, word)) * 0.1
	}
	for _, word := range negativeWords {
		score -= float64(strings.Count(text, word)) * 0.1
	}
	return clamp(score, -1, 1)
}

// urgency decays linearly over a week, with bonuses for breaking-news
// phrasing, clamped to [0,1].
func (c *Classifier) urgency(title string, publishedAt time.Time) float64 {
	urgency := 1.0 - c.hoursAgo(publishedAt)/168
	if strings.Contains(title, "breaking") || strings.Contains(title, "urgent") {
		urgency += 0.3
	}
	if strings.Contains(title, "halted") || strings.Contains(title, "suspended") {
		urgency += 0.5
	}
	return clamp(urgency, 0, 1)
}

// priceImpact picks the highest matching tier.
func priceImpact(text string) models.PriceImpact {
	switch {
	case containsAny(text, highImpactKeywords):
		return models.ImpactHigh
	case containsAny(text, mediumImpactKeywords):
		return models.ImpactMedium
	case containsAny(text, lowImpactKeywords):
		return models.ImpactLow
	default:
		return models.ImpactUnknown
	}
}

func (c *Classifier) confidence(cls models.Classification, article models.NewsArticle) float64 {
	confidence := 0.5
	if cls.Category == models.CategoryStockSpecific {
		confidence += 0.3
	}
	if c.hoursAgo(article.PublishedAt) < 24 {
		confidence += 0.1
	}
	if len(article.Content) > 500 {
		confidence += 0.1
	}
	return min(confidence, 0.95)
}

func (c *Classifier) hoursAgo(publishedAt time.Time) float64 {
	if publishedAt.IsZero() {
		return defaultHoursAgo
	}
	return c.now().Sub(publishedAt).Hours()
}

// ClassifyAll returns copies of the articles augmented with their
// classification. Input order is preserved; articles are never mutated in
// place.
func (c *Classifier) ClassifyAll(articles []models.NewsArticle, symbol, sector string) []models.NewsArticle {
	classified := make([]models.NewsArticle, len(articles))
	for i, article := range articles {
		cls := c.Classify(article, symbol, sector)
		article.Classification = &cls
		classified[i] = article
	}
	return classified
}

func firstBucket(text string, buckets []keywordBucket, fallback string) string {
	for _, bucket := range buckets {
		if containsAny(text, bucket.keywords) {
			return bucket.name
		}
	}
	return fallback
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
