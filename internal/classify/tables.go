package classify

// Static keyword configuration for the rule engine. These tables are
// fixed lookup data, not learned; bucket order matters because the first
// matching bucket wins.

type keywordBucket struct {
	name     string
	keywords []string
}

// stockBuckets refine stock-specific articles, consulted in order.
var stockBuckets = []keywordBucket{
	{"earnings", []string{"earnings", "revenue", "profit", "eps", "quarterly results", "beat estimates", "miss estimates"}},
	{"management", []string{"ceo", "cfo", "president", "executive", "management", "board", "leadership"}},
	{"products", []string{"launch", "product", "release", "innovation", "patent", "development"}},
	{"financial", []string{"acquisition", "merger", "buyback", "dividend", "debt", "funding", "ipo"}},
	{"guidance", []string{"guidance", "outlook", "forecast", "expectations", "projections"}},
}

// industryBuckets refine industry articles, consulted in order.
var industryBuckets = []keywordBucket{
	{"regulatory", []string{"regulation", "fda", "sec", "government", "policy", "compliance"}},
	{"sector", []string{"industry", "sector", "market share", "competition", "peer"}},
	{"technology", []string{"ai", "artificial intelligence", "blockchain", "cloud", "software"}},
	{"healthcare", []string{"drug", "clinical trial", "pharma", "medical", "healthcare"}},
	{"energy", []string{"oil", "gas", "renewable", "energy", "petroleum"}},
}

// macroBuckets both detect and refine macro articles, consulted in order.
var macroBuckets = []keywordBucket{
	{"monetary", []string{"fed", "federal reserve", "interest rates", "inflation", "monetary policy"}},
	{"economic", []string{"gdp", "unemployment", "recession", "economic growth", "consumer spending"}},
	{"geopolitical", []string{"war", "conflict", "sanctions", "trade war", "election"}},
	{"market", []string{"market", "dow", "nasdaq", "s&p", "volatility", "correction"}},
}

// Sentiment word lists; each occurrence shifts the score by 0.1.
var positiveWords = []string{"beat", "exceed", "growth", "rise", "gain", "positive", "strong", "bullish", "upgrade"}
var negativeWords = []string{"miss", "decline", "fall", "drop", "negative", "weak", "bearish", "downgrade", "loss"}

// Price impact tiers, highest first; first matching tier wins.
var highImpactKeywords = []string{"earnings", "acquisition", "merger", "fda approval", "breakthrough"}
var mediumImpactKeywords = []string{"guidance", "partnership", "contract", "expansion"}
var lowImpactKeywords = []string{"announcement", "update", "comment"}

// sectorKeywords relate an article to a sector without naming the company.
var sectorKeywords = map[string][]string{
	"Technology": {"tech", "software", "ai", "cloud", "digital"},
	"Healthcare": {"pharma", "biotech", "medical", "drug", "clinical"},
	"Financial":  {"bank", "finance", "credit", "loan", "insurance"},
}

// companyNames maps tickers to the name used for relevance matching and
// provider query expansion.
var companyNames = map[string]string{
	"AAPL":  "Apple",
	"TSLA":  "Tesla",
	"GOOGL": "Google",
	"GOOG":  "Google",
	"MSFT":  "Microsoft",
	"AMZN":  "Amazon",
	"META":  "Meta",
	"NVDA":  "NVIDIA",
	"NFLX":  "Netflix",
	"AMD":   "Advanced Micro Devices",
	"INTC":  "Intel",
	"CRM":   "Salesforce",
	"ORCL":  "Oracle",
	"IBM":   "IBM",
	"CSCO":  "Cisco",
	"ADBE":  "Adobe",
	"PLTR":  "Palantir",
	"CRWD":  "CrowdStrike",
	"SHOP":  "Shopify",
	"PYPL":  "PayPal",
	"V":     "Visa",
	"MA":    "Mastercard",
	"JPM":   "JPMorgan",
	"BAC":   "Bank of America",
	"WFC":   "Wells Fargo",
	"GS":    "Goldman Sachs",
	"MS":    "Morgan Stanley",
}

// competitors lists peer names checked for the competitor category.
var competitors = map[string][]string{
	"AAPL":  {"Samsung", "Google", "Microsoft", "GOOGL", "MSFT"},
	"TSLA":  {"Ford", "GM", "Volkswagen", "BMW", "Rivian"},
	"GOOGL": {"Apple", "Microsoft", "Facebook", "AAPL", "MSFT", "META"},
	"MSFT":  {"Apple", "Google", "Amazon", "AAPL", "GOOGL", "AMZN"},
	"NVDA":  {"AMD", "Intel", "Qualcomm", "INTC"},
}

// CompanyName resolves a ticker to its mapped company name, falling back
// to the ticker itself.
func CompanyName(symbol string) string {
	if name, ok := companyNames[symbol]; ok {
		return name
	}
	return symbol
}

// Competitors returns the static peer list for a symbol, possibly empty.
func Competitors(symbol string) []string {
	return competitors[symbol]
}
