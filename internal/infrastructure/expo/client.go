package expo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client sends push notifications through the Expo push API. Delivery is
// best-effort everywhere it is used: callers log failures and move on.
type Client struct {
	AccessToken string
	BaseURL     string
	HTTP        *http.Client
}

type pushMessage struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound,omitempty"`
}

type pushTicket struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type pushResp struct {
	Data []pushTicket `json:"data"`
}

func (c *Client) Send(ctx context.Context, pushToken, title, body string) error {
	if strings.TrimSpace(pushToken) == "" {
		return fmt.Errorf("push token required")
	}
	if strings.HasPrefix(strings.ToLower(pushToken), "mock_") {
		return nil
	}
	base := c.BaseURL
	if base == "" {
		base = "https://exp.host"
	}
	raw, err := json.Marshal(pushMessage{To: pushToken, Title: title, Body: body, Sound: "default"})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/--/api/v2/push/send", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	}
	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 8 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	payload, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("expo push error: %s", strings.TrimSpace(string(payload)))
	}
	var out pushResp
	if err := json.Unmarshal(payload, &out); err != nil {
		return err
	}
	for _, tk := range out.Data {
		if tk.Status == "error" {
			return fmt.Errorf("expo push ticket error: %s", tk.Message)
		}
	}
	return nil
}
