package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/distinctmentorship/payments/pkg/httpclient"
	"github.com/distinctmentorship/payments/pkg/mpesa"
	"go.uber.org/zap"
)

const (
	chargeEndpoint = "/charge"
	verifyEndpoint = "/transaction/verify/"

	mobileMoneyProvider = "mpesa"
)

type ChargeCommand struct {
	Phone            string
	Amount           float64
	AccountReference string
	Description      string
	PayerName        string
}

// ChargeResult holds the provider's acceptance of a charge. Reference is the
// checkout id every later webhook and verify call correlates on.
type ChargeResult struct {
	Reference   string
	Status      string
	DisplayText string
}

// VerifyResult is the guaranteed-fresh status of a charge. Amount is already
// converted from minor to major currency units.
type VerifyResult struct {
	Reference       string
	Status          string
	Amount          float64
	PaidAt          string
	GatewayResponse string
	CustomerPhone   string
}

type Client interface {
	Charge(ctx context.Context, cmd ChargeCommand) (ChargeResult, error)
	Verify(ctx context.Context, reference string) (VerifyResult, error)
}

type client struct {
	config Config
	http   httpclient.HTTPClient
	logger *zap.Logger
}

func NewClient(cfg Config, http httpclient.HTTPClient, logger *zap.Logger) Client {
	return &client{config: cfg, http: http, logger: logger}
}

func (c *client) Charge(ctx context.Context, cmd ChargeCommand) (ChargeResult, error) {
	request := chargeRequest{
		// The API expects the amount in the smallest currency unit.
		Amount:   int64(math.Round(cmd.Amount * 100)),
		Email:    c.config.CustomerEmail,
		Currency: c.config.Currency,
		MobileMoney: mobileMoney{
			Phone:    "+" + mpesa.SanitizePhone(cmd.Phone),
			Provider: mobileMoneyProvider,
		},
		Metadata: chargeMetadata{
			AccountReference: cmd.AccountReference,
			Description:      cmd.Description,
			PayerName:        cmd.PayerName,
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(request); err != nil {
		return ChargeResult{}, fmt.Errorf("encoding error: %w", err)
	}

	resp, err := c.http.Post(ctx, c.config.BaseURL+chargeEndpoint, &buf, c.headers())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ChargeResult{}, ErrTimeout
		}
		return ChargeResult{}, err
	}
	defer resp.Body.Close()

	var response apiResponse[chargeData]
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return ChargeResult{}, fmt.Errorf("decoding error: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !response.Status || response.Data.Reference == "" {
		c.logger.Error("paystack charge rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("message", response.Message),
		)
		return ChargeResult{}, ErrChargeFailed
	}

	return ChargeResult{
		Reference:   response.Data.Reference,
		Status:      response.Data.Status,
		DisplayText: response.Data.DisplayText,
	}, nil
}

func (c *client) Verify(ctx context.Context, reference string) (VerifyResult, error) {
	endpoint := c.config.BaseURL + verifyEndpoint + url.PathEscape(reference)

	resp, err := c.http.Get(ctx, endpoint, c.headers())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return VerifyResult{}, ErrTimeout
		}
		return VerifyResult{}, err
	}
	defer resp.Body.Close()

	var response apiResponse[verifyData]
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return VerifyResult{}, fmt.Errorf("decoding error: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !response.Status || response.Data.Reference == "" {
		c.logger.Warn("paystack verify failed",
			zap.String("reference", reference),
			zap.Int("status", resp.StatusCode),
			zap.String("message", response.Message),
		)
		return VerifyResult{}, ErrVerifyFailed
	}

	data := response.Data

	return VerifyResult{
		Reference:       data.Reference,
		Status:          data.Status,
		Amount:          MinorToMajor(data.Amount),
		PaidAt:          data.PaidAt,
		GatewayResponse: data.GatewayResponse,
		CustomerPhone:   data.Customer.Phone,
	}, nil
}

func (c *client) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.config.SecretKey,
		"Content-Type":  "application/json",
	}
}

// MinorToMajor converts a minor-unit amount (kobo/cents) to major units,
// rounded to the nearest whole unit.
func MinorToMajor(minor int64) float64 {
	return math.Round(float64(minor) / 100)
}

type chargeRequest struct {
	Amount      int64          `json:"amount"`
	Email       string         `json:"email"`
	Currency    string         `json:"currency"`
	MobileMoney mobileMoney    `json:"mobile_money"`
	Metadata    chargeMetadata `json:"metadata"`
}

type mobileMoney struct {
	Phone    string `json:"phone"`
	Provider string `json:"provider"`
}

type chargeMetadata struct {
	AccountReference string `json:"accountReference"`
	Description      string `json:"description"`
	PayerName        string `json:"payerName,omitempty"`
}

type apiResponse[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type chargeData struct {
	Reference   string `json:"reference"`
	Status      string `json:"status"`
	DisplayText string `json:"display_text"`
}

type verifyData struct {
	Reference       string `json:"reference"`
	Status          string `json:"status"`
	Amount          int64  `json:"amount"`
	PaidAt          string `json:"paid_at"`
	GatewayResponse string `json:"gateway_response"`
	Customer        struct {
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"customer"`
}
