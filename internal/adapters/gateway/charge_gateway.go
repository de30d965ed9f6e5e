package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gymcore/internal/core/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// httpChargeGateway posts charge requests to the payment provider's HTTP
// endpoint. When no endpoint is configured (development, tests against a
// local stack) it falls back to approving every charge with a synthetic
// transaction id.
type httpChargeGateway struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewChargeGateway creates a charge gateway. An empty endpoint enables the
// approve-everything development mode.
func NewChargeGateway(endpoint, apiKey string) services.ChargeGateway {
	return &httpChargeGateway{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type chargeRequest struct {
	MemberID uint   `json:"member_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Method   string `json:"method"`
}

// Charge performs one charge attempt against the provider
func (g *httpChargeGateway) Charge(ctx context.Context, memberID uint, amount decimal.Decimal, method string) (*services.ChargeResult, error) {
	if g.endpoint == "" {
		return &services.ChargeResult{
			Success:       true,
			TransactionID: fmt.Sprintf("DEV-%s", uuid.New().String()[:13]),
		}, nil
	}

	body, err := json.Marshal(chargeRequest{
		MemberID: memberID,
		Amount:   amount.StringFixed(2),
		Currency: "THB",
		Method:   method,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"/charges", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("charge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("gateway returned %d", resp.StatusCode)
	}

	var result services.ChargeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode charge response: %w", err)
	}
	return &result, nil
}
