package domain

// EstimateRequest asks for a price estimate from a free-text description.
type EstimateRequest struct {
	Description string
	IsForSale   bool
}

// Estimate is a typed price range. Rent estimates are monthly amounts.
type Estimate struct {
	EstimatedPrice float64
	MinPrice       float64
	MaxPrice       float64
	Explanation    string
}

const FallbackExplanation = "default estimate - AI response parse error"

// FallbackEstimate is returned when the completion reply cannot be decoded.
func FallbackEstimate(isForSale bool) Estimate {
	if isForSale {
		return Estimate{EstimatedPrice: 250000, MinPrice: 200000, MaxPrice: 300000, Explanation: FallbackExplanation}
	}
	return Estimate{EstimatedPrice: 1200, MinPrice: 1000, MaxPrice: 1400, Explanation: FallbackExplanation}
}

// CompletionRequest is a single prompt sent to the completion API.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}
