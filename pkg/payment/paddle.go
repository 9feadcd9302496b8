package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

// PaddleConfig holds the Paddle provider configuration.
type PaddleConfig struct {
	APIKey      string `env:"PADDLE_API_KEY"`
	Environment string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddleProvider implements Provider over Paddle hosted checkouts.
type PaddleProvider struct {
	client *paddle.SDK
}

// NewPaddleProvider creates a Paddle-backed checkout provider.
func NewPaddleProvider(cfg PaddleConfig) (*PaddleProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: paddle API key is required", ErrInvalidConfig)
	}

	var client *paddle.SDK
	var err error
	switch strings.ToLower(cfg.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(cfg.APIKey)
	case "production", "":
		client, err = paddle.New(cfg.APIKey)
	default:
		return nil, fmt.Errorf("%w: unknown paddle environment %q", ErrInvalidConfig, cfg.Environment)
	}
	if err != nil {
		return nil, errors.Join(ErrProviderFailure, err)
	}

	return &PaddleProvider{client: client}, nil
}

// CreateCheckoutSession creates a Paddle transaction with a hosted
// checkout and returns its redirect URL.
func (p *PaddleProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	if len(params.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]paddle.CreateTransactionItems, 0, len(params.Items))
	for _, li := range params.Items {
		quantity := li.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
			PriceID:  li.PriceID,
			Quantity: quantity,
		})
		items = append(items, *item)
	}

	customData := paddle.CustomData{}
	for k, v := range params.Metadata {
		customData[k] = v
	}

	req := &paddle.CreateTransactionRequest{
		Items:      items,
		CustomData: customData,
	}
	if params.SuccessURL != "" {
		req.Checkout = &paddle.TransactionCheckout{
			URL: paddle.PtrTo(params.SuccessURL),
		}
	}

	txn, err := p.client.TransactionsClient.CreateTransaction(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrProviderFailure, err)
	}

	if txn.Checkout == nil || txn.Checkout.URL == nil {
		return nil, fmt.Errorf("%w: no checkout URL returned", ErrProviderFailure)
	}

	return &CheckoutSession{ID: txn.ID, URL: *txn.Checkout.URL}, nil
}

// RetrieveSession fetches the transaction backing the session.
func (p *PaddleProvider) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrProviderFailure)
	}

	txn, err := p.client.TransactionsClient.GetTransaction(ctx, &paddle.GetTransactionRequest{
		TransactionID: sessionID,
	})
	if err != nil {
		return nil, errors.Join(ErrProviderFailure, err)
	}

	metadata := make(map[string]string, len(txn.CustomData))
	for k, v := range txn.CustomData {
		if s, ok := v.(string); ok {
			metadata[k] = s
		}
	}

	return &Session{
		ID:       txn.ID,
		Status:   string(txn.Status),
		Metadata: metadata,
	}, nil
}
