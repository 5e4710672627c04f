package classify

import (
	"fmt"
	"math"

	"github.com/alchemistbuilder/stockdrivernews/models"
)

// DailySummary builds a news-based movement summary for one symbol from
// its quote and classified news.
func (c *Classifier) DailySummary(symbol string, quote *models.Quote, articles []models.NewsArticle) *models.DailySummary {
	priceChange := quote.ChangePercent

	var relevant []models.NewsArticle
	for _, a := range articles {
		if a.Classification != nil && a.Classification.Relevance > 0.3 {
			relevant = append(relevant, a)
		}
	}

	breakdown := CountByCategory(relevant)

	summary := &models.DailySummary{
		Symbol: symbol,
		Date:   c.now().UTC().Format("2006-01-02"),
		PriceMovement: models.PriceMovement{
			Direction:    direction(priceChange),
			Magnitude:    math.Abs(priceChange),
			Significance: movementSignificance(math.Abs(priceChange)),
		},
		News:      breakdown,
		Sentiment: averageSentiment(relevant),
	}

	stockSpecific := filterCategory(relevant, models.CategoryStockSpecific)
	competitor := filterCategory(relevant, models.CategoryCompetitor)

	switch {
	case len(stockSpecific) > 0:
		summary.MovementExplanation = fmt.Sprintf("Primary driver: Company-specific news (%d articles)", len(stockSpecific))
		summary.KeyEvents = keyEvents(stockSpecific, 3)
	case len(competitor) > 0:
		summary.MovementExplanation = "Likely driver: Competitor developments affecting sector"
		summary.KeyEvents = keyEvents(competitor, 2)
	case breakdown.Industry > 0:
		summary.MovementExplanation = "Likely driver: Industry-wide developments"
	case breakdown.Macro > 0:
		summary.MovementExplanation = "Likely driver: Market-wide macro events"
	case math.Abs(priceChange) > 2:
		summary.MovementExplanation = "No specific news found - likely macro/market driven movement"
	default:
		summary.MovementExplanation = "Normal trading activity with minimal news impact"
	}

	return summary
}

// CountByCategory tallies classified articles per category.
func CountByCategory(articles []models.NewsArticle) models.NewsBreakdown {
	breakdown := models.NewsBreakdown{Total: len(articles)}
	for _, a := range articles {
		if a.Classification == nil {
			continue
		}
		switch a.Classification.Category {
		case models.CategoryStockSpecific:
			breakdown.StockSpecific++
		case models.CategoryCompetitor:
			breakdown.Competitor++
		case models.CategoryIndustry:
			breakdown.Industry++
		case models.CategoryMacro:
			breakdown.Macro++
		}
	}
	return breakdown
}

func filterCategory(articles []models.NewsArticle, category models.NewsCategory) []models.NewsArticle {
	var out []models.NewsArticle
	for _, a := range articles {
		if a.Classification != nil && a.Classification.Category == category {
			out = append(out, a)
		}
	}
	return out
}

func keyEvents(articles []models.NewsArticle, limit int) []models.KeyEvent {
	if len(articles) > limit {
		articles = articles[:limit]
	}
	events := make([]models.KeyEvent, 0, len(articles))
	for _, a := range articles {
		impact := models.ImpactUnknown
		if a.Classification != nil {
			impact = a.Classification.PriceImpact
		}
		events = append(events, models.KeyEvent{Title: a.Title, Impact: impact})
	}
	return events
}

func averageSentiment(articles []models.NewsArticle) float64 {
	if len(articles) == 0 {
		return 0
	}
	total := 0.0
	for _, a := range articles {
		if a.Classification != nil {
			total += a.Classification.Sentiment
		}
	}
	return total / float64(len(articles))
}

func direction(change float64) string {
	switch {
	case change > 0:
		return "up"
	case change < 0:
		return "down"
	default:
		return "flat"
	}
}

func movementSignificance(absChange float64) string {
	switch {
	case absChange > 5:
		return "high"
	case absChange > 2:
		return "medium"
	case absChange > 0.5:
		return "low"
	default:
		return "minimal"
	}
}
