// Package digest scores symbols for attention and assembles watchlist
// digests: per-symbol priority scores, alerts, and cross-symbol insights
// framed by market context.
package digest

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/alchemistbuilder/stockdrivernews/internal/aggregate"
	"github.com/alchemistbuilder/stockdrivernews/internal/classify"
	"github.com/alchemistbuilder/stockdrivernews/internal/correlate"
	"github.com/alchemistbuilder/stockdrivernews/models"
)

// highPriorityThreshold marks scores that demand immediate attention.
const highPriorityThreshold = 7

// Builder assembles digests and alert scans from aggregated data.
type Builder struct {
	agg        *aggregate.Aggregator
	correlator *correlate.Correlator
	logger     zerolog.Logger
	now        func() time.Time
}

// New creates a digest Builder.
func New(agg *aggregate.Aggregator, correlator *correlate.Correlator) *Builder {
	return &Builder{
		agg:        agg,
		correlator: correlator,
		logger:     log.With().Str("component", "digest").Logger(),
		now:        time.Now,
	}
}

// PriorityScore rates how much attention a symbol deserves, 0 to 10.
// Price-move tiers are mutually exclusive; news and volume contributions
// are additive with per-category caps.
func PriorityScore(changePercent float64, articles []models.NewsArticle, volumeSignificance string) int {
	score := 0.0

	abs := math.Abs(changePercent)
	switch {
	case abs > 5:
		score += 4
	case abs > 3:
		score += 3
	case abs > 2:
		score += 2
	case abs > 1:
		score += 1
	}

	highRelevance := 0
	stockSpecific := 0
	highImpact := 0
	for _, a := range articles {
		cls := a.Classification
		if cls == nil {
			continue
		}
		if cls.Relevance > 0.7 {
			highRelevance++
		}
		if cls.Category == models.CategoryStockSpecific {
			stockSpecific++
		}
		if cls.PriceImpact == models.ImpactHigh {
			highImpact++
		}
	}

	score += math.Min(float64(highRelevance)*2, 6)
	score += math.Min(float64(stockSpecific)*1.5, 4)

	switch volumeSignificance {
	case "high":
		score += 2
	case "medium":
		score += 1
	}

	score += float64(highImpact) * 2

	return int(math.Min(math.Round(score), 10))
}

// GenerateAlerts produces the independent alert set for one symbol.
// Alert types may co-occur.
func GenerateAlerts(quote *models.Quote, articles []models.NewsArticle, analysis *models.CorrelationAnalysis) []models.Alert {
	var alerts []models.Alert
	symbol := quote.Symbol
	change := quote.ChangePercent

	if math.Abs(change) > 5 {
		verb := "surged"
		if change < 0 {
			verb = "dropped"
		}
		alerts = append(alerts, models.Alert{
			Type:        models.AlertPriceMovement,
			Severity:    "high",
			Message:     fmt.Sprintf("%s %s %.1f%%", symbol, verb, math.Abs(change)),
			Explanation: movementExplanation(analysis, "Significant price movement detected"),
		})
	} else if math.Abs(change) > 3 {
		alerts = append(alerts, models.Alert{
			Type:        models.AlertPriceMovement,
			Severity:    "medium",
			Message:     fmt.Sprintf("%s moved %.1f%%", symbol, math.Abs(change)),
			Explanation: movementExplanation(analysis, "Notable price movement"),
		})
	}

	stockSpecific := 0
	highImpact := 0
	for _, a := range articles {
		if a.Classification == nil {
			continue
		}
		if a.Classification.Category == models.CategoryStockSpecific {
			stockSpecific++
		}
		if a.Classification.PriceImpact == models.ImpactHigh {
			highImpact++
		}
	}

	if highImpact > 0 {
		plural := ""
		if highImpact > 1 {
			plural = "s"
		}
		alerts = append(alerts, models.Alert{
			Type:        models.AlertHighImpactNews,
			Severity:    "high",
			Message:     fmt.Sprintf("%d high-impact news article%s for %s", highImpact, plural, symbol),
			Explanation: "Major developments that could significantly affect stock price",
		})
	}

	if stockSpecific > 2 {
		alerts = append(alerts, models.Alert{
			Type:        models.AlertNewsVolume,
			Severity:    "medium",
			Message:     fmt.Sprintf("High news activity for %s (%d articles)", symbol, stockSpecific),
			Explanation: "Increased media attention may indicate important developments",
		})
	}

	if analysis != nil && analysis.VolumeInfo.Significance == "high" {
		alerts = append(alerts, models.Alert{
			Type:        models.AlertVolumeSpike,
			Severity:    "medium",
			Message:     fmt.Sprintf("Unusual trading volume for %s", symbol),
			Explanation: fmt.Sprintf("Trading volume is %.1fx average", analysis.VolumeInfo.Ratio),
		})
	}

	return alerts
}

func movementExplanation(analysis *models.CorrelationAnalysis, fallback string) string {
	if analysis != nil && analysis.Explanation != "" {
		return analysis.Explanation
	}
	return fallback
}

// MarketDirection buckets the average index move into an overall bias.
func MarketDirection(indices map[string]models.IndexQuote) string {
	if len(indices) == 0 {
		return "neutral"
	}
	var sum float64
	for _, idx := range indices {
		sum += idx.ChangePercent
	}
	avg := sum / float64(len(indices))

	if avg > 0.5 {
		return "bullish"
	}
	if avg < -0.5 {
		return "bearish"
	}
	return "neutral"
}

// OverallInsights derives cross-symbol observations from a digest's
// per-symbol reports.
func OverallInsights(stocks []models.SymbolReport) []models.Insight {
	var insights []models.Insight

	movingWithMarket := 0
	for _, s := range stocks {
		text := s.Movement.Explanation
		if strings.Contains(text, "market") || strings.Contains(text, "correlation") {
			movingWithMarket++
		}
	}
	if float64(movingWithMarket) > float64(len(stocks))*0.6 {
		insights = append(insights, models.Insight{
			Type:         "market_correlation",
			Message:      fmt.Sprintf("%d/%d stocks moving with broader market", movingWithMarket, len(stocks)),
			Significance: "high",
		})
	}

	// Sector concentration: map iteration order is unstable, so collect
	// sector names in first-seen order.
	var sectorOrder []string
	sectorGroups := map[string][]models.SymbolReport{}
	for _, s := range stocks {
		sector := s.Quote.Sector
		if sector == "" {
			sector = "Unknown"
		}
		if _, ok := sectorGroups[sector]; !ok {
			sectorOrder = append(sectorOrder, sector)
		}
		sectorGroups[sector] = append(sectorGroups[sector], s)
	}
	for _, sector := range sectorOrder {
		group := sectorGroups[sector]
		if len(group) < 2 {
			continue
		}
		var sum float64
		for _, s := range group {
			sum += s.Quote.ChangePercent
		}
		avg := sum / float64(len(group))
		if math.Abs(avg) <= 2 {
			continue
		}
		direction := "up"
		if avg < 0 {
			direction = "down"
		}
		significance := "medium"
		if math.Abs(avg) > 3 {
			significance = "high"
		}
		insights = append(insights, models.Insight{
			Type:         "sector_movement",
			Message:      fmt.Sprintf("%s sector %s %.1f%% on average", sector, direction, math.Abs(avg)),
			Significance: significance,
		})
	}

	var highPriority []string
	for _, s := range stocks {
		if s.PriorityScore > highPriorityThreshold {
			highPriority = append(highPriority, s.Symbol)
		}
	}
	if len(highPriority) > 0 {
		insights = append(insights, models.Insight{
			Type:         "high_priority",
			Message:      fmt.Sprintf("%d stocks require immediate attention", len(highPriority)),
			Significance: "high",
			Symbols:      highPriority,
		})
	}

	return insights
}

// Build assembles the full digest for a watchlist. Symbols that fail to
// produce data are skipped with a warning; the digest covers the rest.
func (b *Builder) Build(ctx context.Context, symbols []string) (*models.Digest, error) {
	date := b.now().Format("2006-01-02")

	// Market context first: the correlator judges every symbol against
	// the same snapshot.
	overview, err := b.agg.GetMarketOverview(ctx)
	if err != nil {
		return nil, fmt.Errorf("market overview: %w", err)
	}
	snapshot := correlate.SnapshotFromOverview(overview)

	reports := make([]*models.SymbolReport, len(symbols))
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			report, err := b.symbolReport(ctx, symbol, date, snapshot)
			if err != nil {
				b.logger.Warn().Err(err).Str("symbol", symbol).Msg("skipping symbol in digest")
				return
			}
			reports[i] = report
		}(i, symbol)
	}
	wg.Wait()

	var stocks []models.SymbolReport
	for _, r := range reports {
		if r != nil {
			stocks = append(stocks, *r)
		}
	}
	sort.SliceStable(stocks, func(i, j int) bool {
		return stocks[i].PriorityScore > stocks[j].PriorityScore
	})

	digest := &models.Digest{
		Date:      date,
		Symbols:   symbols,
		Summary:   summarize(stocks),
		Market:    marketContext(overview),
		Insights:  OverallInsights(stocks),
		Stocks:    stocks,
		Generated: b.now(),
	}
	return digest, nil
}

func (b *Builder) symbolReport(ctx context.Context, symbol, date string, snapshot correlate.MarketSnapshot) (*models.SymbolReport, error) {
	quote, err := b.agg.GetStockData(ctx, symbol)
	if err != nil {
		return nil, err
	}
	news, err := b.agg.GetStockNews(ctx, symbol, models.NewsOptions{
		From: b.now().Add(-24 * time.Hour),
	})
	if err != nil {
		b.logger.Warn().Err(err).Str("symbol", symbol).Msg("digest proceeding without news")
	}

	avgVolume := b.agg.AverageVolume(ctx, symbol)
	analysis := b.correlator.AnalyzeMovement(symbol, quote, news, avgVolume, snapshot)

	todays := filterByDate(news, date)
	score := PriorityScore(quote.ChangePercent, todays, analysis.VolumeInfo.Significance)

	report := &models.SymbolReport{
		Symbol: symbol,
		Quote:  quoteSummary(quote),
		Movement: models.MovementSummary{
			Explanation: analysis.Explanation,
			Confidence:  analysis.Confidence,
			Driver:      analysis.Driver,
		},
		News:          classify.CountByCategory(todays),
		TopNews:       topHighlights(todays, 5),
		PriorityScore: score,
		Alerts:        GenerateAlerts(quote, todays, analysis),
	}
	return report, nil
}

// SymbolAlerts is one alert-scan hit.
type SymbolAlerts struct {
	Symbol        string              `json:"symbol"`
	PriorityScore int                 `json:"priorityScore"`
	Alerts        []models.Alert      `json:"alerts"`
	Quote         models.QuoteSummary `json:"stockData"`
}

// ScanAlerts checks every watchlist symbol and returns those whose
// priority score reaches minPriority, highest first.
func (b *Builder) ScanAlerts(ctx context.Context, symbols []string, minPriority int) ([]SymbolAlerts, error) {
	overview, err := b.agg.GetMarketOverview(ctx)
	if err != nil {
		return nil, fmt.Errorf("market overview: %w", err)
	}
	snapshot := correlate.SnapshotFromOverview(overview)

	results := make([]*SymbolAlerts, len(symbols))
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			quote, err := b.agg.GetStockData(ctx, symbol)
			if err != nil {
				b.logger.Warn().Err(err).Str("symbol", symbol).Msg("skipping symbol in alert scan")
				return
			}
			news, err := b.agg.GetStockNews(ctx, symbol, models.NewsOptions{
				From: b.now().Add(-24 * time.Hour),
			})
			if err != nil {
				news = nil
			}

			avgVolume := b.agg.AverageVolume(ctx, symbol)
			analysis := b.correlator.AnalyzeMovement(symbol, quote, news, avgVolume, snapshot)
			score := PriorityScore(quote.ChangePercent, news, analysis.VolumeInfo.Significance)
			if score < minPriority {
				return
			}
			results[i] = &SymbolAlerts{
				Symbol:        symbol,
				PriorityScore: score,
				Alerts:        GenerateAlerts(quote, news, analysis),
				Quote:         quoteSummary(quote),
			}
		}(i, symbol)
	}
	wg.Wait()

	var hits []SymbolAlerts
	for _, r := range results {
		if r != nil {
			hits = append(hits, *r)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].PriorityScore > hits[j].PriorityScore
	})
	return hits, nil
}

func summarize(stocks []models.SymbolReport) models.DigestSummary {
	summary := models.DigestSummary{TotalStocks: len(stocks)}
	var totalScore int
	for _, s := range stocks {
		if s.News.Total > 0 {
			summary.StocksWithNews++
		}
		if s.PriorityScore > highPriorityThreshold {
			summary.HighPriorityAlerts++
		}
		summary.TotalNewsArticles += len(s.TopNews)
		totalScore += s.PriorityScore
	}
	if len(stocks) > 0 {
		summary.AveragePriorityScore = float64(totalScore) / float64(len(stocks))
	}
	return summary
}

func marketContext(overview *models.MarketOverview) models.MarketContext {
	top := overview.TopNews
	if len(top) > 3 {
		top = top[:3]
	}
	return models.MarketContext{
		Indices:          overview.Indices,
		OverallDirection: MarketDirection(overview.Indices),
		TopMarketNews:    top,
	}
}

func quoteSummary(quote *models.Quote) models.QuoteSummary {
	summary := models.QuoteSummary{
		Name:          quote.Symbol,
		Price:         quote.Price,
		Change:        quote.Change,
		ChangePercent: quote.ChangePercent,
		Volume:        quote.Volume,
	}
	if quote.Profile != nil {
		if quote.Profile.Name != "" {
			summary.Name = quote.Profile.Name
		}
		summary.Sector = quote.Profile.Sector
	}
	return summary
}

func filterByDate(articles []models.NewsArticle, date string) []models.NewsArticle {
	filtered := make([]models.NewsArticle, 0, len(articles))
	for _, a := range articles {
		if a.PublishedAt.Format("2006-01-02") == date {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

func topHighlights(articles []models.NewsArticle, limit int) []models.NewsHighlight {
	sorted := make([]models.NewsArticle, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return relevanceOf(sorted[i]) > relevanceOf(sorted[j])
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	highlights := make([]models.NewsHighlight, 0, len(sorted))
	for _, a := range sorted {
		h := models.NewsHighlight{
			Title:       a.Title,
			Source:      a.Source,
			Category:    models.CategoryUnrelated,
			Impact:      models.ImpactUnknown,
			PublishedAt: a.PublishedAt,
			URL:         a.URL,
		}
		if a.Classification != nil {
			h.Category = a.Classification.Category
			h.Relevance = a.Classification.Relevance
			h.Sentiment = a.Classification.Sentiment
			h.Impact = a.Classification.PriceImpact
		}
		highlights = append(highlights, h)
	}
	return highlights
}

func relevanceOf(a models.NewsArticle) float64 {
	if a.Classification == nil {
		return 0
	}
	return a.Classification.Relevance
}
