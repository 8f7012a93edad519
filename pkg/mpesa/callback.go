package mpesa

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedCallback = errors.New("MPESA_MALFORMED_CALLBACK")

// CallbackResult is the flattened outcome of an STK push callback. Amount,
// ReceiptNumber, Phone and TransactionDate come from the metadata items and
// may be absent on failure callbacks.
type CallbackResult struct {
	CheckoutRequestID string
	MerchantRequestID string
	ResultCode        int
	ResultDesc        string
	Amount            float64
	ReceiptNumber     string
	Phone             string
	TransactionDate   string
}

type callbackBody struct {
	Body struct {
		StkCallback *struct {
			MerchantRequestID string      `json:"MerchantRequestID"`
			CheckoutRequestID string      `json:"CheckoutRequestID"`
			ResultCode        json.Number `json:"ResultCode"`
			ResultDesc        string      `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string      `json:"Name"`
					Value interface{} `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// ParseCallback extracts the outcome from the nested callback payload.
// Metadata items are matched by name and tolerated when absent; a payload
// without a checkout id cannot be correlated and is rejected.
func ParseCallback(raw []byte) (*CallbackResult, error) {
	var body callbackBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}

	callback := body.Body.StkCallback
	if callback == nil || callback.CheckoutRequestID == "" {
		return nil, ErrMalformedCallback
	}

	code, err := callback.ResultCode.Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: bad ResultCode %q", ErrMalformedCallback, callback.ResultCode.String())
	}

	result := &CallbackResult{
		CheckoutRequestID: callback.CheckoutRequestID,
		MerchantRequestID: callback.MerchantRequestID,
		ResultCode:        int(code),
		ResultDesc:        callback.ResultDesc,
	}

	for _, item := range callback.CallbackMetadata.Item {
		if item.Value == nil {
			continue
		}
		switch item.Name {
		case "Amount":
			if amount, ok := item.Value.(float64); ok {
				result.Amount = amount
			}
		case "MpesaReceiptNumber":
			result.ReceiptNumber = stringValue(item.Value)
		case "PhoneNumber":
			result.Phone = stringValue(item.Value)
		case "TransactionDate":
			result.TransactionDate = stringValue(item.Value)
		}
	}

	return result, nil
}

// stringValue renders a metadata value that the provider sends either as a
// string or as a number (phone and date arrive numeric).
func stringValue(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return fmt.Sprintf("%.0f", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
