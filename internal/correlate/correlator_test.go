package correlate

import (
	"math"
	"testing"

	"github.com/alchemistbuilder/stockdrivernews/models"
)

func classified(category models.NewsCategory, impact models.PriceImpact, relevance float64) models.NewsArticle {
	return models.NewsArticle{
		Classification: &models.Classification{
			Category:    category,
			PriceImpact: impact,
			Relevance:   relevance,
		},
	}
}

func techQuote(changePercent float64, volume int64) *models.Quote {
	return &models.Quote{
		Symbol:        "AAPL",
		ChangePercent: changePercent,
		Volume:        volume,
		Profile:       &models.CompanyProfile{Sector: "Technology"},
	}
}

func TestAlignment(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want models.Alignment
	}{
		{"both up", 2.0, 0.5, models.AlignmentSame},
		{"both down", -1.0, -0.3, models.AlignmentSame},
		{"stock up market down", 2.0, -0.5, models.AlignmentOpposite},
		{"stock down market up", -2.0, 0.5, models.AlignmentOpposite},
		{"zero stock change", 0, 0.5, models.AlignmentNeutral},
		{"zero market change", 1.0, 0, models.AlignmentNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := alignmentOf(tt.a, tt.b); got != tt.want {
				t.Errorf("alignmentOf(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCoefficientAndStrength(t *testing.T) {
	tests := []struct {
		alignment   models.Alignment
		coefficient float64
		strength    models.CorrelationStrength
	}{
		{models.AlignmentSame, 0.8, models.StrengthStrong},
		{models.AlignmentOpposite, -0.8, models.StrengthStrong},
		{models.AlignmentNeutral, 0.1, models.StrengthWeak},
	}
	for _, tt := range tests {
		t.Run(string(tt.alignment), func(t *testing.T) {
			c := coefficientOf(tt.alignment)
			if c != tt.coefficient {
				t.Errorf("coefficientOf = %v, want %v", c, tt.coefficient)
			}
			if s := strengthOf(c); s != tt.strength {
				t.Errorf("strengthOf(%v) = %v, want %v", c, s, tt.strength)
			}
		})
	}
}

func TestVolumeBuckets(t *testing.T) {
	tests := []struct {
		ratio        float64
		pattern      string
		significance string
	}{
		{3.5, "extremely high", "high"},
		{2.2, "very high", "medium"},
		{1.7, "high", "medium"},
		{1.0, "normal", "normal"},
		{0.7, "low", "normal"},
		{0.55, "low", "low"},
		{0.3, "very low", "low"},
	}
	for _, tt := range tests {
		if got := volumePattern(tt.ratio); got != tt.pattern {
			t.Errorf("volumePattern(%v) = %q, want %q", tt.ratio, got, tt.pattern)
		}
		if got := volumeSignificance(tt.ratio); got != tt.significance {
			t.Errorf("volumeSignificance(%v) = %q, want %q", tt.ratio, got, tt.significance)
		}
	}
}

func TestVolumeAnalysisUnknownAverage(t *testing.T) {
	v := volumeAnalysis(50_000_000, 0)
	if v.Ratio != 1.0 || v.Pattern != "normal" || v.Significance != "normal" {
		t.Errorf("unknown average should degrade to normal, got %+v", v)
	}
}

func TestExplanationPower(t *testing.T) {
	articles := []models.NewsArticle{
		classified(models.CategoryStockSpecific, models.ImpactLow, 0.8),
		classified(models.CategoryStockSpecific, models.ImpactLow, 0.8),
		classified(models.CategoryCompetitor, models.ImpactLow, 0.5),
		classified(models.CategoryMacro, models.ImpactLow, 0.4),
		// Below the relevance floor; must not count.
		classified(models.CategoryStockSpecific, models.ImpactHigh, 0.2),
	}
	stats := summarizeNews(articles)

	if stats.totalRelevant != 4 {
		t.Fatalf("totalRelevant = %d, want 4", stats.totalRelevant)
	}
	if stats.hasHighImpact {
		t.Error("low-relevance high-impact article must not set hasHighImpact")
	}
	want := 2*0.4 + 0.25 + 0.15
	if math.Abs(stats.power-want) > 1e-9 {
		t.Errorf("power = %v, want %v", stats.power, want)
	}
}

func TestExplanationPowerCapped(t *testing.T) {
	var articles []models.NewsArticle
	for i := 0; i < 5; i++ {
		articles = append(articles, classified(models.CategoryStockSpecific, models.ImpactLow, 0.8))
	}
	if stats := summarizeNews(articles); stats.power != 1.0 {
		t.Errorf("power = %v, want capped 1.0", stats.power)
	}
}

func TestDriverHighImpactStockNews(t *testing.T) {
	c := New()
	quote := techQuote(-6.2, 80_000_000)
	articles := []models.NewsArticle{
		classified(models.CategoryStockSpecific, models.ImpactHigh, 0.9),
	}

	analysis := c.AnalyzeMovement("AAPL", quote, articles, 75_000_000, MarketSnapshot{
		AvgIndexChange: -0.5,
		SectorChanges:  map[string]float64{"XLK": -0.7},
	})

	if analysis.Driver != models.DriverStockNews {
		t.Fatalf("Driver = %v, want %v", analysis.Driver, models.DriverStockNews)
	}
	if analysis.Confidence < 0.9 {
		t.Errorf("Confidence = %v, want >= 0.9 (base 0.9 plus strong-correlation boosts)", analysis.Confidence)
	}
	if analysis.Confidence > 0.95 {
		t.Errorf("Confidence = %v, want clamped to 0.95", analysis.Confidence)
	}
}

func TestDriverMarketWhenNoNews(t *testing.T) {
	c := New()
	quote := techQuote(-1.2, 50_000_000)

	analysis := c.AnalyzeMovement("AAPL", quote, nil, 50_000_000, MarketSnapshot{
		AvgIndexChange: -0.8,
	})

	if analysis.Driver != models.DriverMarket {
		t.Fatalf("Driver = %v, want %v", analysis.Driver, models.DriverMarket)
	}
	if analysis.Market.Alignment != models.AlignmentSame {
		t.Errorf("Alignment = %v, want same", analysis.Market.Alignment)
	}
}

func TestDriverUnexplainedWithoutContext(t *testing.T) {
	c := New()
	quote := techQuote(0.2, 50_000_000)

	analysis := c.AnalyzeMovement("AAPL", quote, nil, 50_000_000, MarketSnapshot{})

	// Flat market, neutral alignment, no news: nothing explains it.
	if analysis.Driver != models.DriverUnexplainedMarket {
		t.Fatalf("Driver = %v, want %v", analysis.Driver, models.DriverUnexplainedMarket)
	}
	if analysis.Confidence != 0.4 {
		t.Errorf("Confidence = %v, want 0.4", analysis.Confidence)
	}
}

func TestDriverUnusualActivity(t *testing.T) {
	c := New()
	// 4x average volume, big move, no news, no correlations.
	quote := techQuote(-4.0, 200_000_000)

	// Opposite alignment counts as a strong correlation, and with zero
	// news power the market-driven branch fires before volume.
	analysis := c.AnalyzeMovement("AAPL", quote, nil, 50_000_000, MarketSnapshot{
		AvgIndexChange: 0.2,
	})
	if analysis.Driver == models.DriverUnusualActivity {
		t.Fatal("strong market correlation should win over volume")
	}

	analysis = c.AnalyzeMovement("AAPL", quote, nil, 50_000_000, MarketSnapshot{})
	if analysis.Driver != models.DriverUnusualActivity {
		t.Fatalf("Driver = %v, want %v", analysis.Driver, models.DriverUnusualActivity)
	}
	if analysis.VolumeInfo.Significance != "high" {
		t.Errorf("volume significance = %q, want high", analysis.VolumeInfo.Significance)
	}
}

func TestDriverSectorDriven(t *testing.T) {
	c := New()
	quote := techQuote(-1.5, 50_000_000)

	// Neutral market (flat), strong sector alignment.
	analysis := c.AnalyzeMovement("AAPL", quote, nil, 50_000_000, MarketSnapshot{
		SectorChanges: map[string]float64{"XLK": -1.1},
	})

	if analysis.Driver != models.DriverSector {
		t.Fatalf("Driver = %v, want %v", analysis.Driver, models.DriverSector)
	}
	if analysis.Sector == nil || analysis.Sector.Sector != "Technology" {
		t.Fatalf("sector correlation missing: %+v", analysis.Sector)
	}
	if math.Abs(analysis.Sector.Outperformance-(-0.4)) > 1e-9 {
		t.Errorf("Outperformance = %v, want -0.4", analysis.Sector.Outperformance)
	}
}

func TestConfidencePenaltyOnConflict(t *testing.T) {
	c := New()
	// Stock down hard against a rising market, with relevant but
	// non-high-impact industry news.
	quote := techQuote(-2.0, 50_000_000)
	articles := []models.NewsArticle{
		classified(models.CategoryIndustry, models.ImpactLow, 0.5),
		classified(models.CategoryIndustry, models.ImpactLow, 0.5),
		classified(models.CategoryCompetitor, models.ImpactLow, 0.5),
	}

	analysis := c.AnalyzeMovement("AAPL", quote, articles, 50_000_000, MarketSnapshot{
		AvgIndexChange: 0.8,
	})

	// power = 2*0.2 + 0.25 = 0.65 > 0.5 with industry news → industry-sector 0.7;
	// +0.1 strong (opposite) market, −0.2 conflict penalty.
	if analysis.Driver != models.DriverIndustrySector {
		t.Fatalf("Driver = %v, want %v", analysis.Driver, models.DriverIndustrySector)
	}
	if math.Abs(analysis.Confidence-0.6) > 1e-9 {
		t.Errorf("Confidence = %v, want 0.6", analysis.Confidence)
	}
}

func TestSnapshotFromOverview(t *testing.T) {
	overview := &models.MarketOverview{
		Indices: map[string]models.IndexQuote{
			"SP500":  {ChangePercent: -0.4},
			"NASDAQ": {ChangePercent: -1.2},
		},
		Sectors: map[string]models.IndexQuote{
			"XLK": {ChangePercent: -0.9},
		},
	}

	snapshot := SnapshotFromOverview(overview)
	if math.Abs(snapshot.AvgIndexChange-(-0.8)) > 1e-9 {
		t.Errorf("AvgIndexChange = %v, want -0.8", snapshot.AvgIndexChange)
	}
	if snapshot.SectorChanges["XLK"] != -0.9 {
		t.Errorf("SectorChanges[XLK] = %v, want -0.9", snapshot.SectorChanges["XLK"])
	}

	empty := SnapshotFromOverview(nil)
	if empty.AvgIndexChange != 0 || empty.SectorChanges == nil {
		t.Errorf("nil overview should produce a zero snapshot, got %+v", empty)
	}
}

func TestFactorsIncludeNonWeakSignals(t *testing.T) {
	c := New()
	quote := techQuote(-2.0, 150_000_000)
	articles := []models.NewsArticle{
		classified(models.CategoryStockSpecific, models.ImpactHigh, 0.9),
		classified(models.CategoryMacro, models.ImpactLow, 0.5),
	}

	analysis := c.AnalyzeMovement("AAPL", quote, articles, 50_000_000, MarketSnapshot{
		AvgIndexChange: -0.5,
		SectorChanges:  map[string]float64{"XLK": -0.7},
	})

	types := map[string]bool{}
	for _, f := range analysis.Factors {
		types[f.Type] = true
	}
	for _, want := range []string{"market-correlation", "sector-correlation", "volume-pattern", "news-stock-specific", "news-macro"} {
		if !types[want] {
			t.Errorf("missing factor %q in %v", want, analysis.Factors)
		}
	}
}
