// Package razorpay creates remote payment orders and authenticates payment
// callbacks for the Razorpay gateway.
package razorpay

import (
	"context"
	"errors"
	"fmt"

	rzp "github.com/razorpay/razorpay-go"
	"go.uber.org/zap"
)

// OrderRequest describes a remote order to create. Amount is in minor units.
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// RemoteOrder is the gateway's view of a created order.
type RemoteOrder struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

// orderCreator is the slice of the SDK used here.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client talks to the gateway's Orders API.
type Client struct {
	keyID  string
	orders orderCreator
	logger *zap.Logger
}

// New returns a Client backed by the official SDK.
func New(keyID, keySecret string, logger *zap.Logger) *Client {
	return NewWithCreator(keyID, rzp.NewClient(keyID, keySecret).Order, logger)
}

// NewWithCreator returns a Client using the given orders resource.
func NewWithCreator(keyID string, orders orderCreator, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{keyID: keyID, orders: orders, logger: logger.Named("razorpay")}
}

// KeyID is the public key the browser checkout needs.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder creates a remote order. The SDK call is not cancellable, so ctx
// is only checked before the request is sent.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*RemoteOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("razorpay: amount must be positive, got %d", req.Amount)
	}

	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		notes := make(map[string]interface{}, len(req.Notes))
		for k, v := range req.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}

	body, err := c.orders.Create(data, nil)
	if err != nil {
		c.logger.Warn("create order failed", zap.String("receipt", req.Receipt), zap.Error(err))
		return nil, fmt.Errorf("razorpay: create order: %w", err)
	}

	out, err := parseOrder(body)
	if err != nil {
		c.logger.Warn("unexpected create order response", zap.String("receipt", req.Receipt), zap.Error(err))
		return nil, err
	}
	c.logger.Info("remote order created",
		zap.String("gateway_order_id", out.ID),
		zap.String("receipt", out.Receipt),
		zap.Int64("amount", out.Amount),
	)
	return out, nil
}

func parseOrder(body map[string]interface{}) (*RemoteOrder, error) {
	id, _ := body["id"].(string)
	if id == "" {
		if e, ok := body["error"].(map[string]interface{}); ok {
			return nil, fmt.Errorf("razorpay: %v", e["description"])
		}
		return nil, errors.New("razorpay: response has no order id")
	}
	out := &RemoteOrder{ID: id}
	out.Currency, _ = body["currency"].(string)
	out.Receipt, _ = body["receipt"].(string)
	out.Status, _ = body["status"].(string)
	switch v := body["amount"].(type) {
	case float64:
		out.Amount = int64(v)
	case int64:
		out.Amount = v
	case int:
		out.Amount = int64(v)
	}
	return out, nil
}
