package verifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendibd/vendi-server/internal/domains/orders/ports"
)

// DefaultTimeout bounds the single long-latency external call in the system.
const DefaultTimeout = 10 * time.Second

var _ ports.BanknoteVerifier = (*Client)(nil)

// Client calls the banknote classification service. The oracle is treated as
// exactly that: any transport failure, timeout, or unparseable response becomes
// a non-genuine verdict with a reason, never an error surfaced to the order flow.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout overrides the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient instantiates the verifier client with sane defaults.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("verifier base URL is required")
	}
	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// classifyRequest is the wire payload for the classification endpoint.
type classifyRequest struct {
	Image string `json:"image"`
}

// classifyResponse mirrors the oracle's verdict shape.
type classifyResponse struct {
	Denomination json.Number `json:"denomination"`
	IsGenuine    bool        `json:"isGenuine"`
	Confidence   float64     `json:"confidence"`
	Reason       string      `json:"reason"`
}

// Verify classifies the banknote image.
func (c *Client) Verify(ctx context.Context, image []byte) ports.Verdict {
	if c == nil || c.httpClient == nil {
		return rejected("verifier client not configured")
	}
	body, err := json.Marshal(classifyRequest{Image: base64.StdEncoding.EncodeToString(image)})
	if err != nil {
		return rejected(fmt.Sprintf("encode banknote image: %v", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/classify", bytes.NewReader(body))
	if err != nil {
		return rejected(fmt.Sprintf("build verifier request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return rejected(fmt.Sprintf("verification service unreachable: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return rejected(fmt.Sprintf("verification service returned %s", resp.Status))
	}
	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return rejected(fmt.Sprintf("read verifier response: %v", err))
	}
	var verdict classifyResponse
	if err := json.Unmarshal(payload, &verdict); err != nil {
		return rejected(fmt.Sprintf("unparseable verifier response: %v", err))
	}
	denomination, err := decimal.NewFromString(verdict.Denomination.String())
	if err != nil {
		if verdict.IsGenuine {
			return rejected("verifier returned a genuine verdict without a readable denomination")
		}
		denomination = decimal.Zero
	}
	return ports.Verdict{
		Denomination: denomination,
		IsGenuine:    verdict.IsGenuine,
		Confidence:   verdict.Confidence,
		Reason:       verdict.Reason,
	}
}

func rejected(reason string) ports.Verdict {
	return ports.Verdict{IsGenuine: false, Reason: reason}
}
