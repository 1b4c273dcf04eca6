package lookup

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/Mr-Dark-debug/orderlens/pkg/jsonvalue"
)

// OrderPath is the path prefix of the order-lookup endpoint.
const OrderPath = "/api/order/"

// Response is what a successful (or status-failed) fetch observed.
type Response struct {
	StatusCode int
	Size       int
	Value      jsonvalue.Value
}

// Fetcher performs the single GET of a lookup.
type Fetcher interface {
	OrderURL(orderID string) string
	GetOrder(ctx context.Context, orderID, requestID string) (*Response, error)
}

// Client talks to the order-lookup service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. A nil httpClient means a plain
// http.Client: no timeout, a request runs until it completes or the
// network gives up.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// OrderURL returns the endpoint for orderID. The ID is embedded as-is,
// without additional escaping.
func (c *Client) OrderURL(orderID string) string {
	return c.baseURL + OrderPath + orderID
}

// GetOrder fetches and decodes one order. The returned Response is non-nil
// whenever an HTTP status was received, including on status errors, so
// callers can record it.
func (c *Client) GetOrder(ctx context.Context, orderID, requestID string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.OrderURL(orderID), nil)
	if err != nil {
		return nil, transportError(err)
	}
	req.Header.Set("Accept", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	out := &Response{StatusCode: resp.StatusCode}

	if !IsSuccessStatus(resp.StatusCode) {
		// Drain so the connection can be reused.
		n, _ := io.Copy(io.Discard, resp.Body)
		out.Size = int(n)
		return out, statusError(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	out.Size = len(body)
	if err != nil {
		return out, transportError(err)
	}

	v, err := jsonvalue.Decode(body)
	if err != nil {
		return out, decodeError(err)
	}
	out.Value = v
	return out, nil
}

// IsSuccessStatus returns true if status code is 2xx.
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
