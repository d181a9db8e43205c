// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var base58Pattern = regexp.MustCompile("^[1-9A-HJ-NP-Za-km-z]+$")

func init() {
	validate = validator.New()
	validate.RegisterValidation("solana_address", validateSolanaAddress)
	validate.RegisterValidation("tx_signature", validateTxSignature)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// validateSolanaAddress accepts base58-encoded 32-byte public keys. Lengths
// outside 32-44 characters cannot decode to 32 bytes.
func validateSolanaAddress(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	if len(addr) < 32 || len(addr) > 44 {
		return false
	}
	return base58Pattern.MatchString(addr)
}

// validateTxSignature accepts base58-encoded 64-byte transaction signatures.
func validateTxSignature(fl validator.FieldLevel) bool {
	sig := fl.Field().String()
	if len(sig) < 64 || len(sig) > 90 {
		return false
	}
	return base58Pattern.MatchString(sig)
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "solana_address":
		return e.Field() + " must be a valid base58 Solana address"
	case "tx_signature":
		return e.Field() + " must be a valid base58 transaction signature"
	default:
		return e.Field() + " is invalid"
	}
}
