package mpesa_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/distinctmentorship/payments/pkg/mocks"
	"github.com/distinctmentorship/payments/pkg/mpesa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var testConfig = mpesa.Config{
	BaseURL:        "https://sandbox.test",
	ConsumerKey:    "consumer-key",
	ConsumerSecret: "consumer-secret",
	ShortCode:      "174379",
	PassKey:        "pass-key",
	CallbackURL:    "https://example.test/callbacks/mpesa",
	Timeout:        30 * time.Second,
}

const (
	tokenURL = "https://sandbox.test/oauth/v1/generate?grant_type=client_credentials"
	pushURL  = "https://sandbox.test/mpesa/stkpush/v1/processrequest"
	queryURL = "https://sandbox.test/mpesa/stkpushquery/v1/query"
)

func basicAuthHeaders() map[string]string {
	auth := base64.StdEncoding.EncodeToString([]byte("consumer-key:consumer-secret"))
	return map[string]string{"Authorization": "Basic " + auth}
}

func bearerHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + token,
		"Content-Type":  "application/json",
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func tokenResponse() *http.Response {
	return jsonResponse(200, `{"access_token":"test-token","expires_in":"3599"}`)
}

func TestClient_STKPush(t *testing.T) {
	logger := zap.NewNop()

	cmd := mpesa.StkPushCommand{
		Phone:            "0708374149",
		Amount:           150,
		AccountReference: "INV-2025-0001-JUNE",
		Description:      "June subscription",
	}

	t.Run("successful push sanitizes phone and truncates reference", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		c := mpesa.NewClient(testConfig, mockClient, logger)

		mockClient.On("Get", context.Background(), tokenURL, basicAuthHeaders()).
			Return(tokenResponse(), nil)

		pushBody := `{
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": "ws_CO_191220191020363925",
			"ResponseCode": "0",
			"ResponseDescription": "Success. Request accepted for processing",
			"CustomerMessage": "Success. Request accepted for processing"
		}`

		mockClient.On("Post", context.Background(), pushURL, mock.MatchedBy(func(body interface{}) bool {
			buf, ok := body.(*bytes.Buffer)
			if !ok {
				return false
			}

			var req map[string]interface{}
			if err := json.NewDecoder(bytes.NewReader(buf.Bytes())).Decode(&req); err != nil {
				return false
			}

			return req["PartyA"] == "254708374149" &&
				req["PhoneNumber"] == "254708374149" &&
				req["BusinessShortCode"] == "174379" &&
				req["AccountReference"] == "INV-2025-000" &&
				req["TransactionType"] == "CustomerPayBillOnline"
		}), bearerHeaders("test-token")).Return(jsonResponse(200, pushBody), nil)

		response, err := c.STKPush(context.Background(), cmd)

		assert.NoError(t, err)
		assert.Equal(t, "ws_CO_191220191020363925", response.CheckoutRequestID)
		assert.Equal(t, "0", response.ResponseCode)
		mockClient.AssertExpectations(t)
	})

	t.Run("token is reused across calls until expiry", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		c := mpesa.NewClient(testConfig, mockClient, logger)

		pushBody := `{"CheckoutRequestID":"ws_CO_1","ResponseCode":"0"}`

		mockClient.On("Get", context.Background(), tokenURL, basicAuthHeaders()).
			Return(tokenResponse(), nil).Once()
		mockClient.On("Post", context.Background(), pushURL, mock.Anything, bearerHeaders("test-token")).
			Return(jsonResponse(200, pushBody), nil).Once()
		mockClient.On("Post", context.Background(), pushURL, mock.Anything, bearerHeaders("test-token")).
			Return(jsonResponse(200, pushBody), nil).Once()

		_, err := c.STKPush(context.Background(), cmd)
		assert.NoError(t, err)

		_, err = c.STKPush(context.Background(), cmd)
		assert.NoError(t, err)

		mockClient.AssertNumberOfCalls(t, "Get", 1)
	})

	t.Run("token rejection fails the push", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		c := mpesa.NewClient(testConfig, mockClient, logger)

		mockClient.On("Get", context.Background(), tokenURL, basicAuthHeaders()).
			Return(jsonResponse(401, `{"errorCode":"401.002.01"}`), nil)

		_, err := c.STKPush(context.Background(), cmd)

		assert.ErrorIs(t, err, mpesa.ErrTokenFailed)
		mockClient.AssertNotCalled(t, "Post")
	})

	t.Run("rejected push maps to push error", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		c := mpesa.NewClient(testConfig, mockClient, logger)

		mockClient.On("Get", context.Background(), tokenURL, basicAuthHeaders()).
			Return(tokenResponse(), nil)
		mockClient.On("Post", context.Background(), pushURL, mock.Anything, bearerHeaders("test-token")).
			Return(jsonResponse(400, `{"errorCode":"400.002.02","errorMessage":"Bad Request - Invalid Amount"}`), nil)

		_, err := c.STKPush(context.Background(), cmd)

		assert.ErrorIs(t, err, mpesa.ErrPushRejected)
	})

	t.Run("response without checkout id is rejected", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		c := mpesa.NewClient(testConfig, mockClient, logger)

		mockClient.On("Get", context.Background(), tokenURL, basicAuthHeaders()).
			Return(tokenResponse(), nil)
		mockClient.On("Post", context.Background(), pushURL, mock.Anything, bearerHeaders("test-token")).
			Return(jsonResponse(200, `{"ResponseCode":"0"}`), nil)

		_, err := c.STKPush(context.Background(), cmd)

		assert.ErrorIs(t, err, mpesa.ErrPushRejected)
	})
}

func TestClient_STKQuery(t *testing.T) {
	logger := zap.NewNop()
	checkoutID := "ws_CO_191220191020363925"

	t.Run("terminal verdict", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		c := mpesa.NewClient(testConfig, mockClient, logger)

		queryBody := `{
			"ResponseCode": "0",
			"CheckoutRequestID": "ws_CO_191220191020363925",
			"ResultCode": "1032",
			"ResultDesc": "Request cancelled by user"
		}`

		mockClient.On("Get", context.Background(), tokenURL, basicAuthHeaders()).
			Return(tokenResponse(), nil)
		mockClient.On("Post", context.Background(), queryURL, mock.Anything, bearerHeaders("test-token")).
			Return(jsonResponse(200, queryBody), nil)

		response, err := c.STKQuery(context.Background(), checkoutID)

		assert.NoError(t, err)
		assert.Equal(t, json.Number("1032"), response.ResultCode)
		assert.Equal(t, "Request cancelled by user", response.ResultDesc)
	})

	t.Run("transaction being processed answers pending", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		c := mpesa.NewClient(testConfig, mockClient, logger)

		mockClient.On("Get", context.Background(), tokenURL, basicAuthHeaders()).
			Return(tokenResponse(), nil)
		mockClient.On("Post", context.Background(), queryURL, mock.Anything, bearerHeaders("test-token")).
			Return(jsonResponse(500, `{"errorCode":"500.001.1001","errorMessage":"The transaction is being processed"}`), nil)

		_, err := c.STKQuery(context.Background(), checkoutID)

		assert.ErrorIs(t, err, mpesa.ErrResultPending)
	})

	t.Run("unseen checkout id answers pending", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		c := mpesa.NewClient(testConfig, mockClient, logger)

		mockClient.On("Get", context.Background(), tokenURL, basicAuthHeaders()).
			Return(tokenResponse(), nil)
		mockClient.On("Post", context.Background(), queryURL, mock.Anything, bearerHeaders("test-token")).
			Return(jsonResponse(404, `{"errorCode":"404.001.04","errorMessage":"Invalid CheckoutRequestID"}`), nil)

		_, err := c.STKQuery(context.Background(), checkoutID)

		assert.ErrorIs(t, err, mpesa.ErrResultPending)
	})

	t.Run("missing result code answers pending", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		c := mpesa.NewClient(testConfig, mockClient, logger)

		mockClient.On("Get", context.Background(), tokenURL, basicAuthHeaders()).
			Return(tokenResponse(), nil)
		mockClient.On("Post", context.Background(), queryURL, mock.Anything, bearerHeaders("test-token")).
			Return(jsonResponse(200, `{"ResponseCode":"0"}`), nil)

		_, err := c.STKQuery(context.Background(), checkoutID)

		assert.ErrorIs(t, err, mpesa.ErrResultPending)
	})

	t.Run("other provider errors map to server error", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		c := mpesa.NewClient(testConfig, mockClient, logger)

		mockClient.On("Get", context.Background(), tokenURL, basicAuthHeaders()).
			Return(tokenResponse(), nil)
		mockClient.On("Post", context.Background(), queryURL, mock.Anything, bearerHeaders("test-token")).
			Return(jsonResponse(500, `{"errorCode":"500.003.02","errorMessage":"Spike arrest violation"}`), nil)

		_, err := c.STKQuery(context.Background(), checkoutID)

		assert.ErrorIs(t, err, mpesa.ErrServerError)
	})
}
