// Package correlate explains a stock's price move by relating it to the
// broad market, its sector proxy, its trading volume and the day's
// classified news. The correlation coefficient is a coarse sign-alignment
// proxy rather than a statistical correlation; every threshold downstream
// is calibrated to its fixed values.
package correlate

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/alchemistbuilder/stockdrivernews/models"
)

// sectorETFs maps a profile sector to its ETF proxy symbol.
var sectorETFs = map[string]string{
	"Technology":    "XLK",
	"Healthcare":    "XLV",
	"Financial":     "XLF",
	"Energy":        "XLE",
	"Consumer":      "XLY",
	"Utilities":     "XLU",
	"Materials":     "XLB",
	"Industrial":    "XLI",
	"Real Estate":   "XLRE",
	"Communication": "XLC",
}

// MarketSnapshot is the market-wide context a movement is judged
// against: the average index move and per-ETF sector moves.
type MarketSnapshot struct {
	AvgIndexChange float64
	// SectorChanges is keyed by ETF symbol.
	SectorChanges map[string]float64
}

// SnapshotFromOverview condenses a market overview into the inputs the
// correlator needs. Missing data leaves zero values, which downstream
// resolves to neutral/weak correlations.
func SnapshotFromOverview(overview *models.MarketOverview) MarketSnapshot {
	snapshot := MarketSnapshot{SectorChanges: map[string]float64{}}
	if overview == nil {
		return snapshot
	}

	if len(overview.Indices) > 0 {
		var sum float64
		for _, idx := range overview.Indices {
			sum += idx.ChangePercent
		}
		snapshot.AvgIndexChange = sum / float64(len(overview.Indices))
	}
	for symbol, q := range overview.Sectors {
		snapshot.SectorChanges[symbol] = q.ChangePercent
	}
	return snapshot
}

// newsStats summarizes classified articles for driver selection. Only
// articles above the relevance floor count.
type newsStats struct {
	totalRelevant int
	hasHighImpact bool
	breakdown     models.NewsBreakdown
	power         float64
}

// Correlator synthesizes movement-driver analyses. Stateless; safe for
// concurrent use.
type Correlator struct {
	logger zerolog.Logger
}

// New creates a Correlator.
func New() *Correlator {
	return &Correlator{
		logger: log.With().Str("component", "correlator").Logger(),
	}
}

// AnalyzeMovement explains why a stock moved, given its quote, its
// classified news, its average daily volume and the market snapshot.
func (c *Correlator) AnalyzeMovement(symbol string, quote *models.Quote, articles []models.NewsArticle, avgVolume int64, snapshot MarketSnapshot) *models.CorrelationAnalysis {
	market := marketCorrelation(quote.ChangePercent, snapshot.AvgIndexChange)
	sector := c.sectorCorrelation(quote, snapshot)
	volume := volumeAnalysis(quote.Volume, avgVolume)
	news := summarizeNews(articles)

	driver, confidence, reasoning := determineDriver(market, sector, volume, news, math.Abs(quote.ChangePercent))

	analysis := &models.CorrelationAnalysis{
		Symbol:      symbol,
		PriceChange: quote.ChangePercent,
		Volume:      quote.Volume,
		Market:      market,
		Sector:      sector,
		VolumeInfo:  volume,
		Driver:      driver,
		Reasoning:   reasoning,
		Explanation: explanation(driver, market, sector, news),
		Factors:     contributingFactors(market, sector, volume, news),
	}
	analysis.Confidence = adjustConfidence(confidence, market, sector, news)

	c.logger.Debug().Str("symbol", symbol).Str("driver", string(driver)).
		Float64("confidence", analysis.Confidence).Msg("movement analyzed")
	return analysis
}

func marketCorrelation(stockChange, avgMarketChange float64) models.MarketCorrelation {
	alignment := alignmentOf(stockChange, avgMarketChange)
	coefficient := coefficientOf(alignment)

	direction := "flat"
	if avgMarketChange > 0 {
		direction = "up"
	} else if avgMarketChange < 0 {
		direction = "down"
	}

	return models.MarketCorrelation{
		Coefficient:     coefficient,
		MarketDirection: direction,
		MarketMagnitude: math.Abs(avgMarketChange),
		Alignment:       alignment,
		Strength:        strengthOf(coefficient),
	}
}

// sectorCorrelation is nil when the symbol's sector has no ETF proxy or
// the proxy's move is unknown.
func (c *Correlator) sectorCorrelation(quote *models.Quote, snapshot MarketSnapshot) *models.SectorCorrelation {
	if quote.Profile == nil || quote.Profile.Sector == "" {
		return nil
	}
	sector := quote.Profile.Sector
	etf, ok := sectorETFs[sector]
	if !ok {
		return nil
	}
	sectorChange, ok := snapshot.SectorChanges[etf]
	if !ok {
		return nil
	}

	alignment := alignmentOf(quote.ChangePercent, sectorChange)
	coefficient := coefficientOf(alignment)

	return &models.SectorCorrelation{
		Sector:         sector,
		SectorChange:   sectorChange,
		Coefficient:    coefficient,
		Alignment:      alignment,
		Strength:       strengthOf(coefficient),
		Outperformance: quote.ChangePercent - sectorChange,
	}
}

// volumeAnalysis buckets current volume against average. An unknown
// average degrades to ratio 1.0 (normal) rather than poisoning the
// arithmetic downstream.
func volumeAnalysis(current, average int64) models.VolumeAnalysis {
	ratio := 1.0
	if average > 0 {
		ratio = float64(current) / float64(average)
	}
	return models.VolumeAnalysis{
		Ratio:        ratio,
		Pattern:      volumePattern(ratio),
		Significance: volumeSignificance(ratio),
	}
}

func summarizeNews(articles []models.NewsArticle) newsStats {
	var stats newsStats
	for _, article := range articles {
		cls := article.Classification
		if cls == nil || cls.Relevance <= 0.3 {
			continue
		}
		stats.totalRelevant++
		stats.breakdown.Total++
		if cls.PriceImpact == models.ImpactHigh {
			stats.hasHighImpact = true
		}
		switch cls.Category {
		case models.CategoryStockSpecific:
			stats.breakdown.StockSpecific++
		case models.CategoryCompetitor:
			stats.breakdown.Competitor++
		case models.CategoryIndustry:
			stats.breakdown.Industry++
		case models.CategoryMacro:
			stats.breakdown.Macro++
		}
	}
	stats.power = explanationPower(stats)
	return stats
}

// explanationPower weighs how much of the movement the day's news can
// account for, capped at 1.0.
func explanationPower(stats newsStats) float64 {
	if stats.totalRelevant == 0 {
		return 0
	}
	power := float64(stats.breakdown.StockSpecific)*0.4 +
		float64(stats.breakdown.Competitor)*0.25 +
		float64(stats.breakdown.Industry)*0.2 +
		float64(stats.breakdown.Macro)*0.15
	return math.Min(1.0, power)
}

// determineDriver picks the primary movement driver. A fixed-order
// cascade: the first satisfied branch wins.
func determineDriver(market models.MarketCorrelation, sector *models.SectorCorrelation, volume models.VolumeAnalysis, news newsStats, changeMagnitude float64) (models.MovementDriver, float64, string) {
	switch {
	case news.hasHighImpact && news.breakdown.StockSpecific > 0:
		return models.DriverStockNews, 0.9, "High-impact company-specific news identified"

	case news.power > 0.7 && news.breakdown.StockSpecific > 0:
		return models.DriverStockNews, 0.8, "Multiple relevant company-specific news articles"

	case news.power > 0.5 && (news.breakdown.Competitor > 0 || news.breakdown.Industry > 0):
		return models.DriverIndustrySector, 0.7, "Industry or competitor news likely driving movement"

	case market.Strength == models.StrengthStrong && news.power < 0.3:
		return models.DriverMarket, 0.8, "Strong correlation with market movement, minimal specific news"

	case sector != nil && sector.Strength == models.StrengthStrong && news.power < 0.4:
		return models.DriverSector, 0.7,
			fmt.Sprintf("Strong correlation with %s sector movement", sector.Sector)

	case volume.Significance == "high" && changeMagnitude > 3:
		return models.DriverUnusualActivity, 0.6, "Unusual volume suggests institutional activity or unknown catalyst"

	case news.breakdown.Macro > 0 && market.Strength != models.StrengthWeak:
		return models.DriverMacroEvents, 0.6, "Macro economic events affecting broader market"

	default:
		return models.DriverUnexplainedMarket, 0.4, "No clear catalyst identified - likely broad market forces"
	}
}

func explanation(driver models.MovementDriver, market models.MarketCorrelation, sector *models.SectorCorrelation, news newsStats) string {
	switch driver {
	case models.DriverStockNews:
		return fmt.Sprintf("Movement primarily driven by company-specific news. %d relevant articles identified.",
			news.breakdown.StockSpecific)
	case models.DriverIndustrySector:
		return "Movement likely driven by industry/sector developments. Check competitor and sector news for insights."
	case models.DriverMarket:
		return fmt.Sprintf("Movement correlates strongly with broader market (%s). No significant company-specific news identified.",
			market.MarketDirection)
	case models.DriverSector:
		return fmt.Sprintf("Movement follows %s sector trend. Sector-wide factors likely at play.", sector.Sector)
	case models.DriverUnusualActivity:
		return "Unusual trading volume detected. May indicate institutional activity or unreported catalyst."
	case models.DriverMacroEvents:
		return "Movement likely related to macro economic events affecting the broader market."
	default:
		return "No clear catalyst identified. Movement may be due to general market sentiment, profit-taking, or unknown factors."
	}
}

func contributingFactors(market models.MarketCorrelation, sector *models.SectorCorrelation, volume models.VolumeAnalysis, news newsStats) []models.Factor {
	var factors []models.Factor

	if market.Strength != models.StrengthWeak {
		factors = append(factors, models.Factor{
			Type:        "market-correlation",
			Strength:    string(market.Strength),
			Description: fmt.Sprintf("%s correlation with market (%s)", market.Strength, market.MarketDirection),
		})
	}
	if sector != nil && sector.Strength != models.StrengthWeak {
		factors = append(factors, models.Factor{
			Type:        "sector-correlation",
			Strength:    string(sector.Strength),
			Description: fmt.Sprintf("%s correlation with %s sector", sector.Strength, sector.Sector),
		})
	}
	if volume.Significance != "normal" {
		factors = append(factors, models.Factor{
			Type:        "volume-pattern",
			Strength:    volume.Significance,
			Description: fmt.Sprintf("%s trading volume (%.1fx average)", volume.Pattern, volume.Ratio),
		})
	}
	for _, cat := range []struct {
		key   string
		label string
		count int
	}{
		{"stock-specific", "stock specific", news.breakdown.StockSpecific},
		{"competitor", "competitor", news.breakdown.Competitor},
		{"industry", "industry", news.breakdown.Industry},
		{"macro", "macro", news.breakdown.Macro},
	} {
		if cat.count == 0 {
			continue
		}
		strength := "low"
		if cat.count > 2 {
			strength = "high"
		} else if cat.count > 1 {
			strength = "medium"
		}
		factors = append(factors, models.Factor{
			Type:        "news-" + cat.key,
			Strength:    strength,
			Description: fmt.Sprintf("%d %s news articles", cat.count, cat.label),
		})
	}

	return factors
}

func adjustConfidence(confidence float64, market models.MarketCorrelation, sector *models.SectorCorrelation, news newsStats) float64 {
	if market.Strength == models.StrengthStrong {
		confidence += 0.1
	}
	if sector != nil && sector.Strength == models.StrengthStrong {
		confidence += 0.1
	}
	if news.power > 0.8 {
		confidence += 0.1
	}
	// Conflicting signals: the market moved against the stock while
	// relevant news exists.
	if market.Alignment == models.AlignmentOpposite && news.totalRelevant > 0 {
		confidence -= 0.2
	}
	return math.Max(0.1, math.Min(0.95, confidence))
}

func alignmentOf(a, b float64) models.Alignment {
	if (a > 0 && b > 0) || (a < 0 && b < 0) {
		return models.AlignmentSame
	}
	if (a > 0 && b < 0) || (a < 0 && b > 0) {
		return models.AlignmentOpposite
	}
	return models.AlignmentNeutral
}

func coefficientOf(alignment models.Alignment) float64 {
	switch alignment {
	case models.AlignmentSame:
		return 0.8
	case models.AlignmentOpposite:
		return -0.8
	default:
		return 0.1
	}
}

func strengthOf(coefficient float64) models.CorrelationStrength {
	abs := math.Abs(coefficient)
	if abs > 0.7 {
		return models.StrengthStrong
	}
	if abs > 0.3 {
		return models.StrengthMedium
	}
	return models.StrengthWeak
}

func volumePattern(ratio float64) string {
	switch {
	case ratio > 3:
		return "extremely high"
	case ratio > 2:
		return "very high"
	case ratio > 1.5:
		return "high"
	case ratio > 0.8:
		return "normal"
	case ratio > 0.5:
		return "low"
	default:
		return "very low"
	}
}

func volumeSignificance(ratio float64) string {
	switch {
	case ratio > 2.5:
		return "high"
	case ratio > 1.5:
		return "medium"
	case ratio < 0.6:
		return "low"
	default:
		return "normal"
	}
}
