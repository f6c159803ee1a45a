package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPGateway posts one JSON message per recipient to an SMS/WhatsApp
// gateway endpoint.
type HTTPGateway struct {
	Endpoint string
	Token    string
	Client   *http.Client
}

func NewHTTPGateway(endpoint, token string) *HTTPGateway {
	return &HTTPGateway{
		Endpoint: endpoint,
		Token:    token,
		Client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (g *HTTPGateway) Send(ctx context.Context, r Recipient) error {
	body, err := json.Marshal(map[string]string{"to": r.Phone, "text": r.Message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	return nil
}
