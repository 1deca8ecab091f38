package domain

type CompetitorOffer struct {
	SellerID string
	Price    Money
}

type Rationale string

const (
	RationaleNone           Rationale = "none"
	RationaleMinProfitClamp Rationale = "minProfitClamp"
	RationaleMaxProfitClamp Rationale = "maxProfitClamp"
	RationaleNoCompetitors  Rationale = "noCompetitors"
)

type PricingDecision struct {
	ProductID        string
	RecommendedPrice Money
	Rationale        Rationale
}
