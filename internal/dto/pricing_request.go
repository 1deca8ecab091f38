package dto

import "github.com/shopspring/decimal"

type PricingPassRequest struct {
	ProductIDs  []string `json:"productIds" validate:"omitempty,max=1000,dive,required,max=64"`
	AllActive   bool     `json:"allActive"`
	Concurrency int      `json:"concurrency" validate:"gte=0,lte=64"`
	Async       bool     `json:"async"`
}

type ActivationRequest struct {
	ProductIDs  []string `json:"productIds" validate:"required,min=1,max=1000,dive,required,max=64"`
	Active      *bool    `json:"active" validate:"required"`
	Concurrency int      `json:"concurrency" validate:"gte=0,lte=64"`
}

// QuoteRequest carries amounts in major units ("125.40").
type QuoteRequest struct {
	CostPrice decimal.Decimal  `json:"costPrice"`
	Strategy  string           `json:"strategy" validate:"required,oneof=become-first equal-price"`
	MinProfit decimal.Decimal  `json:"minProfit"`
	MaxProfit decimal.Decimal  `json:"maxProfit"`
	Step      *decimal.Decimal `json:"step,omitempty"`
	Offers    []QuoteOffer     `json:"offers" validate:"max=500,dive"`
}

type QuoteOffer struct {
	SellerID string          `json:"sellerId" validate:"max=64"`
	Price    decimal.Decimal `json:"price"`
}
