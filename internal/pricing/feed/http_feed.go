package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"repricer/internal/domain"
)

type offersResponse struct {
	Offers []offerDTO `json:"offers"`
}

type offerDTO struct {
	SellerID string          `json:"sellerId"`
	Price    decimal.Decimal `json:"price"`
}

// HTTPFeed reads competitor offers from the price-monitoring service.
type HTTPFeed struct {
	client      *http.Client
	baseURL     string
	token       string
	minorDigits int32
}

func NewHTTPFeed(client *http.Client, baseURL, token string, minorDigits int32) *HTTPFeed {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFeed{
		client:      client,
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		minorDigits: minorDigits,
	}
}

// Fetch returns the offers currently listed against productID. A product the
// feed does not know has no competitors, which is not an error.
func (f *HTTPFeed) Fetch(ctx context.Context, productID string) ([]domain.CompetitorOffer, error) {
	endpoint := fmt.Sprintf("%s/products/%s/offers", f.baseURL, url.PathEscape(productID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting competitor offers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []domain.CompetitorOffer{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("competitor feed returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload offersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding competitor offers: %w", err)
	}

	offers := make([]domain.CompetitorOffer, 0, len(payload.Offers))
	for _, o := range payload.Offers {
		if o.Price.IsNegative() {
			return nil, fmt.Errorf("competitor %q offers negative price %s", o.SellerID, o.Price)
		}
		offers = append(offers, domain.CompetitorOffer{
			SellerID: o.SellerID,
			Price:    domain.MoneyFromDecimal(o.Price, f.minorDigits),
		})
	}

	return offers, nil
}
