package lib

import (
	"bytes"
	"cbe/src/types"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

type BancardClient struct {
	BaseURL    string
	MerchantID string
	PublicKey  string
	PrivateKey []byte
	HTTP       *http.Client
}

var bancardClient *BancardClient

func GetBancardClient() *BancardClient {
	if bancardClient != nil {
		return bancardClient
	}
	c := &BancardClient{
		BaseURL:    os.Getenv("BANCARD_API_URL"),
		MerchantID: os.Getenv("BANCARD_MERCHANT_ID"),
		PublicKey:  os.Getenv("BANCARD_PUBLIC_KEY"),
		PrivateKey: []byte(os.Getenv("BANCARD_PRIVATE_KEY")),
		HTTP:       &http.Client{Timeout: 10 * time.Second},
	}
	bancardClient = c
	return c
}

// NewBancardClient replaces the shared client with a custom instance.
func NewBancardClient(c *BancardClient) *BancardClient {
	bancardClient = c
	return bancardClient
}

// SignPayload produces a hex HMAC-SHA256 digest over the canonical JSON
// encoding of payload.
func SignPayload(key []byte, payload any) (string, error) {
	serialized, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(serialized)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifyWebhookSignature checks an inbound webhook signature against the raw,
// unparsed request body. The comparison is constant time; callers must reject
// before parsing the payload when this returns false.
func VerifyWebhookSignature(secret, rawBody []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

type PreauthCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PreauthRequest struct {
	MerchantID            string          `json:"merchant_id"`
	Amount                float64         `json:"amount"`
	Currency              string          `json:"currency"`
	Description           string          `json:"description"`
	ExternalTransactionID string          `json:"external_transaction_id"`
	Customer              PreauthCustomer `json:"customer"`
	ReturnURL             string          `json:"return_url"`
	CancelURL             string          `json:"cancel_url"`
}

type PreauthResponse struct {
	PaymentURL    string
	TransactionID string
	Raw           types.JSONB
}

// CreatePreauth signs the outgoing payload with the merchant private key and
// asks the provider for a payment authorization.
func (c *BancardClient) CreatePreauth(ctx context.Context, body *PreauthRequest) (*PreauthResponse, error) {
	signature, err := SignPayload(c.PrivateKey, body)
	if err != nil {
		return nil, err
	}
	serialized, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/payments", c.BaseURL), bytes.NewReader(serialized))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.PublicKey)
	req.Header.Set("X-Signature", signature)
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bancard request failed: %s", err.Error())
	}
	defer res.Body.Close()
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("bancard returned status %d", res.StatusCode)
	}
	var raw types.JSONB
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid response from bancard: %s", err.Error())
	}
	paymentURL, _ := raw["payment_url"].(string)
	transactionID, _ := raw["transaction_id"].(string)
	if paymentURL == "" || transactionID == "" {
		return nil, errors.New("invalid response from bancard")
	}
	return &PreauthResponse{
		PaymentURL:    paymentURL,
		TransactionID: transactionID,
		Raw:           raw,
	}, nil
}
