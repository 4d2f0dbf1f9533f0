package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entitlement-app/internal/domain/payments"
	"entitlement-app/internal/infra/razorpay"
)

const (
	CurrencyINR = "INR"

	// PurposePlatformAccess tags orders that unlock paid entitlement.
	PurposePlatformAccess = "platform_access"

	maxReceiptLen = 40
)

// OrderGateway creates payable orders at the payment provider.
type OrderGateway interface {
	CreateOrder(ctx context.Context, keyID, keySecret string, req razorpay.OrderRequest) (*razorpay.Order, error)
}

type Order struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type OrderService struct {
	Gateway     OrderGateway
	Credentials payments.Credentials
	Now         func() time.Time
}

func NewOrderService(gateway OrderGateway, creds payments.Credentials) *OrderService {
	return &OrderService{Gateway: gateway, Credentials: creds, Now: time.Now}
}

// CreateOrder asks the gateway for an order of amount major units. The
// returned amount and currency are the gateway's, not recomputed here.
func (s *OrderService) CreateOrder(ctx context.Context, amount int64, subjectID string, env payments.Environment) (Order, error) {
	if amount <= 0 {
		return Order{}, payments.New(payments.CodeInvalidRequest, "Amount and userId are required")
	}
	if subjectID == "" {
		return Order{}, payments.New(payments.CodeInvalidRequest, "Amount and userId are required")
	}

	cred, err := s.Credentials.Resolve(env)
	if err != nil {
		return Order{}, err
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	order, err := s.Gateway.CreateOrder(ctx, cred.KeyID, cred.KeySecret, razorpay.OrderRequest{
		Amount:   amount * 100,
		Currency: CurrencyINR,
		Receipt:  Receipt(subjectID, now),
		Notes: map[string]string{
			"user_id": subjectID,
			"purpose": PurposePlatformAccess,
		},
	})
	if err != nil {
		var apiErr *razorpay.APIError
		if errors.As(err, &apiErr) {
			return Order{}, &payments.Error{Code: payments.CodeGateway, Message: apiErr.Body, Cause: apiErr}
		}
		return Order{}, payments.Wrap(payments.CodeGateway, "Failed to create order", err)
	}

	return Order{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  order.Receipt,
	}, nil
}

// Receipt builds a per-subject, per-issuance receipt that fits the
// gateway's 40 character limit.
func Receipt(subjectID string, at time.Time) string {
	suffix := fmt.Sprintf("_%d", at.UnixMilli())
	prefix := "rcpt_" + subjectID
	if room := maxReceiptLen - len(suffix); len(prefix) > room {
		prefix = prefix[:room]
	}
	return prefix + suffix
}
