package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus tracks fulfilment of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderConfirmed  OrderStatus = "Confirmed"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

var orderStatuses = []OrderStatus{OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}

// ParseOrderStatus validates s against the known order statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range orderStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: order status %q", ErrInvalidStatus, s)
}

// PaymentStatus tracks the money side of an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentFailed   PaymentStatus = "Failed"
	PaymentRefunded PaymentStatus = "Refunded"
)

// IsTerminal is true once an outcome has been recorded for the payment attempt.
func (s PaymentStatus) IsTerminal() bool {
	return s != PaymentPending
}

// LineItem is a price and name snapshot of one product in an order.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

// Total is Price times Quantity.
func (li LineItem) Total() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type ShippingAddress struct {
	Fullname string `json:"fullname"`
	Phone    string `json:"phone"`
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

// PaymentMethodGateway is the method tag recorded for gateway payments.
const PaymentMethodGateway = "razorpay"

type PaymentInfo struct {
	GatewayOrderID   string  `json:"gatewayOrderId"`
	GatewayPaymentID *string `json:"gatewayPaymentId,omitempty"`
	GatewaySignature *string `json:"gatewaySignature,omitempty"`
	Method           string  `json:"method"`
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Items           []LineItem      `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentInfo     PaymentInfo     `json:"paymentInfo"`
	Status          OrderStatus     `json:"status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ItemsTotal recomputes the sum of line totals.
func (o Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Total())
	}
	return total
}

// PaymentOutcome is a conditional change of an order's payment state.
// It applies only while the order's payment status equals From.
type PaymentOutcome struct {
	From             PaymentStatus
	To               PaymentStatus
	Status           *OrderStatus
	GatewayPaymentID *string
	GatewaySignature *string
}

// StockPolicy controls how checkout treats stock levels.
type StockPolicy string

const (
	// StockUnchecked decrements stock on payment without bounds; stock may go negative.
	StockUnchecked StockPolicy = "unchecked"
	// StockStrict rejects checkouts the stock cannot cover and never drives stock below zero.
	StockStrict StockPolicy = "strict"
)

// ParseStockPolicy maps a config value to a StockPolicy, defaulting to StockUnchecked.
func ParseStockPolicy(s string) StockPolicy {
	if StockPolicy(s) == StockStrict {
		return StockStrict
	}
	return StockUnchecked
}
