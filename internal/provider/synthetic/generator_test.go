package synthetic

import (
	"context"
	"testing"

	"github.com/alchemistbuilder/stockdrivernews/models"
)

func TestGetQuoteDeterministic(t *testing.T) {
	g := NewGenerator()

	first, err := g.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetQuote() error = %v", err)
	}
	second, err := g.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetQuote() error = %v", err)
	}

	if first.Price != second.Price || first.Change != second.Change || first.Volume != second.Volume {
		t.Errorf("repeated synthetic quotes differ: %+v vs %+v", first, second)
	}
}

func TestGetQuoteProvenanceAndSymbol(t *testing.T) {
	g := NewGenerator()

	tests := []struct {
		name   string
		symbol string
	}{
		{"known symbol", "aapl"},
		{"unknown symbol", "zzxy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := g.GetQuote(context.Background(), tt.symbol)
			if err != nil {
				t.Fatalf("GetQuote() error = %v", err)
			}
			if quote.Source != models.SourceSynthetic {
				t.Errorf("Source = %q, want %q", quote.Source, models.SourceSynthetic)
			}
			if quote.Symbol != "AAPL" && quote.Symbol != "ZZXY" {
				t.Errorf("Symbol = %q, want uppercased input", quote.Symbol)
			}
			if quote.Price <= 0 {
				t.Errorf("Price = %f, want positive", quote.Price)
			}
			if quote.Profile == nil || quote.Profile.Sector == "" {
				t.Errorf("expected profile with sector, got %+v", quote.Profile)
			}
		})
	}
}

func TestGetQuoteInternallyConsistent(t *testing.T) {
	g := NewGenerator()

	quote, err := g.GetQuote(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("GetQuote() error = %v", err)
	}

	diff := quote.Price - quote.Change - quote.PreviousClose
	if diff > 0.02 || diff < -0.02 {
		t.Errorf("previousClose inconsistent: price=%f change=%f previousClose=%f",
			quote.Price, quote.Change, quote.PreviousClose)
	}
}
