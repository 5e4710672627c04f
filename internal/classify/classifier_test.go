package classify

import (
	"testing"
	"time"

	"github.com/alchemistbuilder/stockdrivernews/models"
)

func newTestClassifier(now time.Time) *Classifier {
	c := New()
	c.now = func() time.Time { return now }
	return c
}

func TestCategoryCascade(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	c := newTestClassifier(now)

	tests := []struct {
		name     string
		article  models.NewsArticle
		symbol   string
		sector   string
		category models.NewsCategory
		subcat   string
	}{
		{
			name: "symbol mention is stock-specific",
			article: models.NewsArticle{
				Title: "AAPL reports record quarterly results",
			},
			symbol:   "AAPL",
			sector:   "Technology",
			category: models.CategoryStockSpecific,
			subcat:   "earnings",
		},
		{
			name: "company name mention is stock-specific",
			article: models.NewsArticle{
				Title: "Apple unveils new product lineup",
			},
			symbol:   "AAPL",
			sector:   "Technology",
			category: models.CategoryStockSpecific,
			subcat:   "products",
		},
		{
			name: "symbol beats competitor mention",
			article: models.NewsArticle{
				Title: "AAPL gains as Samsung stumbles",
			},
			symbol:   "AAPL",
			sector:   "Technology",
			category: models.CategoryStockSpecific,
		},
		{
			name: "competitor only",
			article: models.NewsArticle{
				Title: "Samsung unveils new flagship phone",
			},
			symbol:   "AAPL",
			sector:   "Technology",
			category: models.CategoryCompetitor,
			subcat:   "peer-impact",
		},
		{
			name: "sector keyword is industry",
			article: models.NewsArticle{
				Title: "Cloud spending accelerates across software vendors",
			},
			symbol:   "AAPL",
			sector:   "Technology",
			category: models.CategoryIndustry,
		},
		{
			name: "fed news is macro",
			article: models.NewsArticle{
				Title: "Federal Reserve signals rate path",
			},
			symbol:   "AAPL",
			sector:   "Technology",
			category: models.CategoryMacro,
			subcat:   "monetary",
		},
		{
			name: "nothing matches",
			article: models.NewsArticle{
				Title: "Local bakery wins best croissant award",
			},
			symbol:   "AAPL",
			sector:   "Technology",
			category: models.CategoryUnrelated,
			subcat:   "other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.article, tt.symbol, tt.sector)
			if got.Category != tt.category {
				t.Errorf("Category = %v, want %v", got.Category, tt.category)
			}
			if tt.subcat != "" && got.Subcategory != tt.subcat {
				t.Errorf("Subcategory = %v, want %v", got.Subcategory, tt.subcat)
			}
		})
	}
}

func TestRelevanceMonotonic(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	c := newTestClassifier(now)
	old := now.Add(-72 * time.Hour) // outside every recency window

	titleOnly := c.Classify(models.NewsArticle{
		Title: "AAPL update", PublishedAt: old,
	}, "AAPL", "Technology")

	titleAndBody := c.Classify(models.NewsArticle{
		Title: "AAPL update", Content: "AAPL extended its run", PublishedAt: old,
	}, "AAPL", "Technology")

	none := c.Classify(models.NewsArticle{
		Title: "markets mixed", PublishedAt: old,
	}, "AAPL", "Technology")

	if !(none.Relevance <= titleOnly.Relevance && titleOnly.Relevance <= titleAndBody.Relevance) {
		t.Errorf("relevance not monotonic: none=%f titleOnly=%f titleAndBody=%f",
			none.Relevance, titleOnly.Relevance, titleAndBody.Relevance)
	}
	if titleAndBody.Relevance > 1.0 {
		t.Errorf("relevance exceeds cap: %f", titleAndBody.Relevance)
	}
}

func TestRelevanceRecencyBonus(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	c := newTestClassifier(now)

	recent := c.Classify(models.NewsArticle{
		Title: "markets mixed", PublishedAt: now.Add(-2 * time.Hour),
	}, "AAPL", "Technology")

	stale := c.Classify(models.NewsArticle{
		Title: "markets mixed", PublishedAt: now.Add(-48 * time.Hour),
	}, "AAPL", "Technology")

	if recent.Relevance != 0.2 {
		t.Errorf("recent relevance = %f, want 0.2 (both recency bonuses)", recent.Relevance)
	}
	if stale.Relevance != 0 {
		t.Errorf("stale relevance = %f, want 0", stale.Relevance)
	}
}

func TestSentimentAntisymmetric(t *testing.T) {
	c := newTestClassifier(time.Now())

	positive := c.Classify(models.NewsArticle{Title: "strong growth and gain"}, "AAPL", "Technology")
	negative := c.Classify(models.NewsArticle{Title: "weak decline and loss"}, "AAPL", "Technology")

	if positive.Sentiment <= 0 {
		t.Errorf("positive sentiment = %f, want > 0", positive.Sentiment)
	}
	if negative.Sentiment >= 0 {
		t.Errorf("negative sentiment = %f, want < 0", negative.Sentiment)
	}
	if positive.Sentiment+negative.Sentiment != 0 {
		t.Errorf("sentiment not antisymmetric: %f vs %f", positive.Sentiment, negative.Sentiment)
	}
}

func TestUrgency(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	c := newTestClassifier(now)

	tests := []struct {
		name    string
		article models.NewsArticle
		min     float64
		max     float64
	}{
		{
			name:    "fresh breaking news",
			article: models.NewsArticle{Title: "breaking: big move", PublishedAt: now.Add(-time.Hour)},
			min:     0.99,
			max:     1.0,
		},
		{
			name:    "halted trading spikes urgency",
			article: models.NewsArticle{Title: "trading halted in shares", PublishedAt: now.Add(-100 * time.Hour)},
			min:     0.9,
			max:     1.0,
		},
		{
			name:    "week-old news has no urgency",
			article: models.NewsArticle{Title: "quiet recap", PublishedAt: now.Add(-170 * time.Hour)},
			min:     0,
			max:     0.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.article, "AAPL", "Technology")
			if got.Urgency < tt.min || got.Urgency > tt.max {
				t.Errorf("Urgency = %f, want in [%f, %f]", got.Urgency, tt.min, tt.max)
			}
		})
	}
}

func TestPriceImpactTiers(t *testing.T) {
	c := newTestClassifier(time.Now())

	tests := []struct {
		title  string
		impact models.PriceImpact
	}{
		{"merger talks heat up", models.ImpactHigh},
		{"new partnership signed", models.ImpactMedium},
		{"brief comment from the firm", models.ImpactLow},
		{"shares trade sideways", models.ImpactUnknown},
		// High tier wins over lower tiers present in the same text.
		{"acquisition update announcement", models.ImpactHigh},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := c.Classify(models.NewsArticle{Title: tt.title}, "AAPL", "Technology")
			if got.PriceImpact != tt.impact {
				t.Errorf("PriceImpact = %v, want %v", got.PriceImpact, tt.impact)
			}
		})
	}
}

func TestConfidenceBoundsAndBoosts(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	c := newTestClassifier(now)

	long := make([]byte, 600)
	for i := range long {
		long[i] = 'a'
	}

	best := c.Classify(models.NewsArticle{
		Title:       "AAPL earnings beat",
		Content:     "AAPL " + string(long),
		PublishedAt: now.Add(-time.Hour),
	}, "AAPL", "Technology")

	if best.Confidence != 0.95 {
		t.Errorf("Confidence = %f, want capped 0.95", best.Confidence)
	}

	base := c.Classify(models.NewsArticle{
		Title: "nothing relevant", PublishedAt: now.Add(-48 * time.Hour),
	}, "AAPL", "Technology")

	if base.Confidence != 0.5 {
		t.Errorf("Confidence = %f, want base 0.5", base.Confidence)
	}
}

func TestClassifyAllPreservesOrderAndInput(t *testing.T) {
	c := newTestClassifier(time.Now())
	articles := []models.NewsArticle{
		{ID: "1", Title: "AAPL earnings"},
		{ID: "2", Title: "unrelated story"},
	}

	classified := c.ClassifyAll(articles, "AAPL", "Technology")

	if len(classified) != 2 || classified[0].ID != "1" || classified[1].ID != "2" {
		t.Fatalf("order not preserved: %+v", classified)
	}
	if classified[0].Classification == nil || classified[1].Classification == nil {
		t.Fatal("classification missing")
	}
	if articles[0].Classification != nil {
		t.Error("input slice was mutated")
	}
}
