package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Safaricom subscriber numbering: country prefix plus a 7xx/1xx mobile block.
const msisdnRegex = `^254[17]\d{8}$`

const (
	MsisdnTag = "msisdn"
)

var valid = map[string]func(fl validator.FieldLevel) bool{
	MsisdnTag: ValidateMsisdn,
}

func ValidateMsisdn(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	return regexp.MustCompile(msisdnRegex).MatchString(phone)
}
