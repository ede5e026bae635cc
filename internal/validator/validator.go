package validator

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"

	"github.com/volari/license-quoter/internal/errors"
	"github.com/volari/license-quoter/internal/pricing"
)

var validate = newValidate()

func newValidate() *playground.Validate {
	v := playground.New(playground.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateItemRequest validates a product selection before it reaches the pricing engine
func ValidateItemRequest(req *pricing.ItemRequest) error {
	if req == nil {
		return errors.ErrInvalidRequest("item request is required", nil)
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	req.DurationID = strings.TrimSpace(req.DurationID)

	if err := validate.Struct(req); err != nil {
		return translate(err)
	}
	return nil
}

// ValidateCurrency validates a currency mode and exchange rate pair
func ValidateCurrency(mode string, rate float64) (pricing.CurrencyContext, error) {
	cc := pricing.CurrencyContext{
		Mode:         pricing.CurrencyMode(strings.ToUpper(strings.TrimSpace(mode))),
		ExchangeRate: rate,
	}
	if cc.Mode == "" {
		return cc, errors.ErrValidation("currency", "is required")
	}
	if !cc.Mode.Valid() {
		return cc, errors.ErrValidation("currency", fmt.Sprintf("must be one of %v", GetSupportedCurrencies()))
	}
	if cc.Mode == pricing.ModeOrigin && cc.ExchangeRate <= 0 {
		cc.ExchangeRate = 1
	}
	if err := pricing.ValidateCurrency(cc); err != nil {
		return cc, err
	}
	return cc, nil
}

// IsSupportedCurrency checks if a currency mode is supported
func IsSupportedCurrency(mode string) bool {
	return pricing.CurrencyMode(strings.ToUpper(strings.TrimSpace(mode))).Valid()
}

// GetSupportedCurrencies returns the supported currency modes
func GetSupportedCurrencies() []string {
	return []string{string(pricing.ModeOrigin), string(pricing.ModeResale)}
}

func translate(err error) error {
	var verrs playground.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.ErrInvalidRequest("invalid item request", err)
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		if field == "productId" {
			return errors.ErrValidation(field, "a product must be selected")
		}
		return errors.ErrValidation(field, "is required")
	case "oneof":
		return errors.ErrValidation(field, fmt.Sprintf("must be one of [%s]", fe.Param()))
	case "gte":
		if field == "quantity" {
			return errors.ErrValidation(field, "must be a positive integer")
		}
		return errors.ErrValidation(field, "must be at least "+fe.Param())
	case "lte":
		return errors.ErrValidation(field, "must be at most "+fe.Param())
	default:
		return errors.ErrValidation(field, "failed '"+fe.Tag()+"' check")
	}
}
