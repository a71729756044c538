package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client creates payment intents against the provider's REST API. Only the
// checkout path uses it; webhook handling never calls out to the provider.
type Client struct {
	Key     string
	BaseURL string
	HTTP    *http.Client
}

type PaymentIntentRef struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

func (c *Client) CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (PaymentIntentRef, error) {
	if amountCents <= 0 {
		return PaymentIntentRef{}, fmt.Errorf("amount must be positive")
	}
	if currency == "" {
		currency = "usd"
	}
	if strings.HasPrefix(strings.ToLower(c.Key), "mock_") {
		return PaymentIntentRef{ID: "pi_mock_" + strconv.FormatInt(time.Now().UnixNano(), 36), ClientSecret: "mock_secret"}, nil
	}
	base := c.BaseURL
	if base == "" {
		base = "https://api.stripe.com"
	}
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", currency)
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return PaymentIntentRef{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.Key)
	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return PaymentIntentRef{}, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return PaymentIntentRef{}, fmt.Errorf("stripe error: %s", strings.TrimSpace(string(body)))
	}
	var out PaymentIntentRef
	if err := json.Unmarshal(body, &out); err != nil {
		return PaymentIntentRef{}, err
	}
	if out.ID == "" {
		return PaymentIntentRef{}, fmt.Errorf("missing payment intent id")
	}
	return out, nil
}
