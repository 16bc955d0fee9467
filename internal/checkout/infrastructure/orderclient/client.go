package orderclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dmehra2102/chipstore/internal/checkout/application"
	"github.com/dmehra2102/chipstore/pkg/idempotency"
)

var ErrRejected = errors.New("order endpoint rejected the order")

// Client posts checkout orders to the order endpoint. Trace context travels
// with the request through the otelhttp transport.
type Client struct {
	endpoint string
	http     *http.Client
}

func New(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type response struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id"`
	Error   string `json:"error"`
}

func (c *Client) Submit(ctx context.Context, idempotencyKey string, req application.OrderRequest) (application.OrderReceipt, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return application.OrderReceipt{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return application.OrderReceipt{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		httpReq.Header.Set(idempotency.HeaderKey, idempotencyKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return application.OrderReceipt{}, fmt.Errorf("post order: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return application.OrderReceipt{}, fmt.Errorf("read order response: %w", err)
	}
	var out response
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := out.Error
		if decodeErr != nil || msg == "" {
			msg = "Failed to place order"
		}
		return application.OrderReceipt{}, fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	if decodeErr != nil {
		return application.OrderReceipt{}, fmt.Errorf("decode order response: %w", decodeErr)
	}
	return application.OrderReceipt{OrderID: out.OrderID}, nil
}
