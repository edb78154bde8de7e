package clients

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

type Subaccount struct {
	StoreID     string `json:"store_id"`
	AmountMinor int64  `json:"amount"`
}

type PaymentMetadata struct {
	SessionID     string              `json:"session_id"`
	UserID        string              `json:"user_id,omitempty"`
	DeliveryToken string              `json:"delivery_token"`
	Allocation    checkout.Allocation `json:"allocation"`
}

// PaymentRequest amounts are in minor units. StoreID, SplitPayment and
// Subaccounts are only understood by the split endpoint.
type PaymentRequest struct {
	Email        string          `json:"email"`
	AmountMinor  int64           `json:"amount"`
	Currency     string          `json:"currency"`
	Reference    string          `json:"reference"`
	CallbackURL  string          `json:"callback_url"`
	Metadata     PaymentMetadata `json:"metadata"`
	StoreID      string          `json:"store_id,omitempty"`
	SplitPayment bool            `json:"split_payment,omitempty"`
	Subaccounts  []Subaccount    `json:"subaccounts,omitempty"`
}

// WithoutSplit returns a copy carrying none of the split-only fields.
func (r PaymentRequest) WithoutSplit() PaymentRequest {
	r.StoreID = ""
	r.SplitPayment = false
	r.Subaccounts = nil
	return r
}

type PaymentInit struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type PaymentVerification struct {
	Reference   string     `json:"reference"`
	Status      string     `json:"status"`
	AmountMinor int64      `json:"amount"`
	Currency    string     `json:"currency"`
	PaidAt      *time.Time `json:"paid_at"`
	Channel     string     `json:"channel,omitempty"`
}

func (v PaymentVerification) Successful() bool {
	return strings.EqualFold(v.Status, "success")
}

type PaymentClient struct {
	c         *Client
	initPath  string
	splitPath string
	verify    string
}

func NewPaymentClient(c *Client, initPath, splitPath, verifyPath string) *PaymentClient {
	return &PaymentClient{c: c, initPath: initPath, splitPath: splitPath, verify: verifyPath}
}

func (pc *PaymentClient) Initialize(ctx context.Context, token string, req PaymentRequest) (*PaymentInit, error) {
	return pc.initialize(ctx, pc.initPath, token, req)
}

func (pc *PaymentClient) InitializeSplit(ctx context.Context, token string, req PaymentRequest) (*PaymentInit, error) {
	return pc.initialize(ctx, pc.splitPath, token, req)
}

func (pc *PaymentClient) initialize(ctx context.Context, path, token string, req PaymentRequest) (*PaymentInit, error) {
	var out PaymentInit
	if err := pc.c.DoJSON(ctx, http.MethodPost, path, req, authHeaders(token, ""), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (pc *PaymentClient) Verify(ctx context.Context, token, reference string) (*PaymentVerification, error) {
	path := strings.ReplaceAll(pc.verify, "{reference}", url.PathEscape(reference))
	var out PaymentVerification
	if err := pc.c.DoJSON(ctx, http.MethodGet, path, nil, authHeaders(token, ""), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
