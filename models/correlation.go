package models

// Alignment describes sign agreement between two percent changes.
type Alignment string

const (
	AlignmentSame     Alignment = "same"
	AlignmentOpposite Alignment = "opposite"
	AlignmentNeutral  Alignment = "neutral"
)

// CorrelationStrength buckets the absolute correlation coefficient.
type CorrelationStrength string

const (
	StrengthStrong CorrelationStrength = "strong"
	StrengthMedium CorrelationStrength = "medium"
	StrengthWeak   CorrelationStrength = "weak"
)

// MarketCorrelation relates a symbol's move to the broad market.
// The coefficient is a sign-alignment proxy, not a statistical correlation;
// downstream strength thresholds are calibrated to its fixed values.
type MarketCorrelation struct {
	Coefficient     float64             `json:"coefficient"`
	MarketDirection string              `json:"marketDirection"`
	MarketMagnitude float64             `json:"marketMagnitude"`
	Alignment       Alignment           `json:"alignment"`
	Strength        CorrelationStrength `json:"strength"`
}

// SectorCorrelation relates a symbol's move to its sector proxy.
type SectorCorrelation struct {
	Sector         string              `json:"sector"`
	SectorChange   float64             `json:"sectorChange"`
	Coefficient    float64             `json:"coefficient"`
	Alignment      Alignment           `json:"alignment"`
	Strength       CorrelationStrength `json:"strength"`
	Outperformance float64             `json:"outperformance"`
}

// VolumeAnalysis describes how current volume compares to average.
type VolumeAnalysis struct {
	Ratio        float64 `json:"ratio"`
	Pattern      string  `json:"pattern"`
	Significance string  `json:"significance"`
}

// MovementDriver is the chosen primary explanation for a price move.
type MovementDriver string

const (
	DriverStockNews         MovementDriver = "stock-specific-news"
	DriverIndustrySector    MovementDriver = "industry-sector"
	DriverMarket            MovementDriver = "market-driven"
	DriverSector            MovementDriver = "sector-driven"
	DriverUnusualActivity   MovementDriver = "unusual-activity"
	DriverMacroEvents       MovementDriver = "macro-events"
	DriverUnexplainedMarket MovementDriver = "unexplained-market"
)

// Factor is one contributing element of a movement explanation.
type Factor struct {
	Type        string `json:"type"`
	Strength    string `json:"strength"`
	Description string `json:"description"`
}

// NewsBreakdown counts classified articles per category.
type NewsBreakdown struct {
	Total         int `json:"total"`
	StockSpecific int `json:"stockSpecific"`
	Competitor    int `json:"competitor"`
	Industry      int `json:"industry"`
	Macro         int `json:"macro"`
}

// CorrelationAnalysis is the full per-symbol movement analysis.
type CorrelationAnalysis struct {
	Symbol      string             `json:"symbol"`
	PriceChange float64            `json:"priceChange"`
	Volume      int64              `json:"volume"`
	Market      MarketCorrelation  `json:"marketCorrelation"`
	Sector      *SectorCorrelation `json:"sectorCorrelation,omitempty"`
	VolumeInfo  VolumeAnalysis     `json:"volumeAnalysis"`
	Driver      MovementDriver     `json:"driver"`
	Confidence  float64            `json:"confidence"`
	Reasoning   string             `json:"reasoning"`
	Explanation string             `json:"explanation"`
	Factors     []Factor           `json:"factors"`
}
