package applier

import (
	"bytes"
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

type priceRequest struct {
	Price decimal.Decimal `json:"price"`
}

// HTTPApplier commits prices to the marketplace listing API.
type HTTPApplier struct {
	client      *http.Client
	baseURL     string
	token       string
	minorDigits int32
}

func NewHTTPApplier(client *http.Client, baseURL, token string, minorDigits int32) *HTTPApplier {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPApplier{
		client:      client,
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		minorDigits: minorDigits,
	}
}

func (a *HTTPApplier) Apply(ctx context.Context, productID string, price domain.Money) error {
	endpoint := fmt.Sprintf("%s/products/%s/price", a.baseURL, url.PathEscape(productID))

	body, err := json.Marshal(priceRequest{Price: price.Decimal(a.minorDigits)})
	if err != nil {
		return fmt.Errorf("encoding price update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building price update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending price update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("marketplace rejected price update with %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return nil
}
