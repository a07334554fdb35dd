package customer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"customer-service/internal/pkg/apperrors"

	"github.com/go-playground/validator/v10"
)

const (
	FieldName        = "name"
	FieldAddress     = "address"
	FieldPhoneNumber = "phone_number"
	FieldEmail       = "email"
	FieldCreditCard  = "credit_card"

	msgBadOrNoData = "Invalid Customer: body of request contained bad or no data"
)

var requiredFields = []string{FieldAddress, FieldPhoneNumber, FieldEmail, FieldCreditCard}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Deserialize builds a Customer from a decoded JSON value. Anything that is not a JSON object is rejected,
// required fields are checked in a fixed order and the first missing one is reported. The id in the
// payload is ignored and the customer always comes back active. Values are kept exactly as sent; a
// required field holding only whitespace counts as missing.
func Deserialize(data any) (*Customer, error) {
	fields, ok := data.(map[string]any)
	if !ok || fields == nil {
		return nil, apperrors.NewValidationError("", msgBadOrNoData)
	}

	values := make(map[string]string, len(requiredFields))
	for _, field := range requiredFields {
		value, err := requiredString(fields, field)
		if err != nil {
			return nil, err
		}
		values[field] = value
	}

	name, err := optionalString(fields, FieldName)
	if err != nil {
		return nil, err
	}

	cust := NewCustomer(name, values[FieldAddress], values[FieldPhoneNumber], values[FieldEmail], values[FieldCreditCard])
	if err := Validate(cust); err != nil {
		return nil, err
	}
	return cust, nil
}

// Validate checks the column constraints of an already populated Customer.
func Validate(cust *Customer) error {
	err := validate.Struct(cust)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return apperrors.NewValidationError(fe.Field(), "Invalid Customer: "+formatFieldError(fe))
	}
	return apperrors.NewValidationError("", msgBadOrNoData)
}

func requiredString(fields map[string]any, field string) (string, error) {
	raw, present := fields[field]
	if !present || raw == nil {
		return "", apperrors.NewValidationError(field, "Invalid Customer: missing "+field)
	}
	s, ok := raw.(string)
	if !ok {
		return "", apperrors.NewValidationError(field, fmt.Sprintf("Invalid Customer: %s must be a string", field))
	}
	if strings.TrimSpace(s) == "" {
		return "", apperrors.NewValidationError(field, "Invalid Customer: missing "+field)
	}
	return s, nil
}

func optionalString(fields map[string]any, field string) (string, error) {
	raw, present := fields[field]
	if !present || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", apperrors.NewValidationError(field, fmt.Sprintf("Invalid Customer: %s must be a string", field))
	}
	return s, nil
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "max":
		return fmt.Sprintf("Field '%s' must be at most %s characters", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("Field '%s' failed validation for '%s'", fe.Field(), fe.Tag())
}
