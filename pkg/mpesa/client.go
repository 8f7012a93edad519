package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/distinctmentorship/payments/pkg/httpclient"
	"go.uber.org/zap"
)

const (
	tokenEndpoint    = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushEndpoint  = "/mpesa/stkpush/v1/processrequest"
	stkQueryEndpoint = "/mpesa/stkpushquery/v1/query"

	transactionType = "CustomerPayBillOnline"

	maxReferenceLen   = 12
	maxDescriptionLen = 100

	// Re-acquire the token slightly before the provider expires it.
	tokenExpiryMargin = 30 * time.Second
)

type StkPushCommand struct {
	Phone            string
	Amount           float64
	AccountReference string
	Description      string
}

type Client interface {
	STKPush(ctx context.Context, cmd StkPushCommand) (StkPushResponse, error)
	STKQuery(ctx context.Context, checkoutRequestID string) (StkQueryResponse, error)
}

type client struct {
	config Config
	http   httpclient.HTTPClient
	logger *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time

	now func() time.Time
}

func NewClient(cfg Config, http httpclient.HTTPClient, logger *zap.Logger) Client {
	return &client{config: cfg, http: http, logger: logger, now: time.Now}
}

func (c *client) STKPush(ctx context.Context, cmd StkPushCommand) (StkPushResponse, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return StkPushResponse{}, err
	}

	timestamp := c.timestamp()
	request := stkPushRequest{
		BusinessShortCode: c.config.ShortCode,
		Password:          buildPassword(c.config.ShortCode, c.config.PassKey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   transactionType,
		Amount:            cmd.Amount,
		PartyA:            SanitizePhone(cmd.Phone),
		PartyB:            c.config.ShortCode,
		PhoneNumber:       SanitizePhone(cmd.Phone),
		CallBackURL:       c.config.CallbackURL,
		AccountReference:  truncate(cmd.AccountReference, maxReferenceLen),
		TransactionDesc:   truncate(cmd.Description, maxDescriptionLen),
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(request); err != nil {
		return StkPushResponse{}, fmt.Errorf("encoding error: %w", err)
	}

	resp, err := c.http.Post(ctx, c.config.BaseURL+stkPushEndpoint, &buf, bearerHeaders(token))
	if err != nil {
		return StkPushResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		json.NewDecoder(resp.Body).Decode(&apiErr)
		c.logger.Error("stk push rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("error_code", apiErr.ErrorCode),
			zap.String("error_message", apiErr.ErrorMessage),
		)
		return StkPushResponse{}, ErrPushRejected
	}

	var response StkPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return StkPushResponse{}, fmt.Errorf("decoding error: %w", err)
	}

	if response.CheckoutRequestID == "" {
		return StkPushResponse{}, fmt.Errorf("stk push response missing CheckoutRequestID: %w", ErrPushRejected)
	}

	return response, nil
}

func (c *client) STKQuery(ctx context.Context, checkoutRequestID string) (StkQueryResponse, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return StkQueryResponse{}, err
	}

	timestamp := c.timestamp()
	request := stkQueryRequest{
		BusinessShortCode: c.config.ShortCode,
		Password:          buildPassword(c.config.ShortCode, c.config.PassKey, timestamp),
		Timestamp:         timestamp,
		CheckoutRequestID: checkoutRequestID,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(request); err != nil {
		return StkQueryResponse{}, fmt.Errorf("encoding error: %w", err)
	}

	resp, err := c.http.Post(ctx, c.config.BaseURL+stkQueryEndpoint, &buf, bearerHeaders(token))
	if err != nil {
		return StkQueryResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		json.NewDecoder(resp.Body).Decode(&apiErr)
		if pendingErrorCode(apiErr.ErrorCode) {
			return StkQueryResponse{}, ErrResultPending
		}

		c.logger.Error("stk query failed",
			zap.Int("status", resp.StatusCode),
			zap.String("error_code", apiErr.ErrorCode),
			zap.String("error_message", apiErr.ErrorMessage),
		)
		return StkQueryResponse{}, ErrServerError
	}

	var response StkQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return StkQueryResponse{}, fmt.Errorf("decoding error: %w", err)
	}

	if response.ResultCode == "" {
		return StkQueryResponse{}, ErrResultPending
	}

	return response, nil
}

// accessToken returns the cached OAuth token, re-acquiring it when absent or
// close to expiry. The raw credentials and token are never logged.
func (c *client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	auth := base64.StdEncoding.EncodeToString([]byte(c.config.ConsumerKey + ":" + c.config.ConsumerSecret))
	headers := map[string]string{"Authorization": "Basic " + auth}

	resp, err := c.http.Get(ctx, c.config.BaseURL+tokenEndpoint, headers)
	if err != nil {
		c.logger.Error("token request failed", zap.Error(err))
		return "", ErrTokenFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("token request rejected", zap.Int("status", resp.StatusCode))
		return "", ErrTokenFailed
	}

	var response tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", ErrTokenFailed
	}

	if response.AccessToken == "" {
		return "", ErrTokenFailed
	}

	ttl := time.Hour
	if seconds, err := response.ExpiresIn.Int64(); err == nil && seconds > 0 {
		ttl = time.Duration(seconds) * time.Second
	}

	c.token = response.AccessToken
	c.tokenExpiry = c.now().Add(ttl - tokenExpiryMargin)

	return c.token, nil
}

func (c *client) timestamp() string {
	return c.now().Format("20060102150405")
}

func buildPassword(shortCode, passKey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortCode + passKey + timestamp))
}

func bearerHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + token,
		"Content-Type":  "application/json",
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
