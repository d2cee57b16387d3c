package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	customError "github.com/jazanyumba/chama-vault/pkg/errors"
	"github.com/jazanyumba/chama-vault/pkg/utils"
)

// NewValidator returns a validator that understands decimal amounts.
// decimal.Decimal fields are validated through their string form, so
// decimal_gt=N and decimal_gte=N compare exactly without float rounding, and
// cents rejects amounts finer than the two places the ledger stores.
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(f reflect.Value) interface{} {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("decimal_gt", func(fl validator.FieldLevel) bool {
		value, limit, ok := decimalPair(fl)
		return ok && value.GreaterThan(limit)
	})
	_ = v.RegisterValidation("decimal_gte", func(fl validator.FieldLevel) bool {
		value, limit, ok := decimalPair(fl)
		return ok && value.GreaterThanOrEqual(limit)
	})

	_ = v.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		value, err := decimal.NewFromString(fl.Field().String())
		return err == nil && utils.IsCents(value)
	})

	return v
}

func decimalPair(fl validator.FieldLevel) (decimal.Decimal, decimal.Decimal, bool) {
	value, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return decimal.Zero, decimal.Zero, false
	}
	limit, err := decimal.NewFromString(fl.Param())
	if err != nil {
		return decimal.Zero, decimal.Zero, false
	}
	return value, limit, true
}

// validationError flattens validator errors into one readable message.
func validationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return customError.NewValidation("invalid request", err)
	}

	parts := make([]string, 0, len(ve))
	for _, e := range ve {
		parts = append(parts, e.Field()+" "+fieldMessage(e))
	}
	return customError.NewValidation(strings.Join(parts, "; "), err)
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if":
		return "is required"
	case "decimal_gt", "gt":
		return "must be greater than " + e.Param()
	case "decimal_gte", "gte":
		return "must be greater than or equal to " + e.Param()
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "oneof":
		return "must be one of: " + e.Param()
	case "cents":
		return "must have at most 2 decimal places"
	}
	return "is invalid"
}

// decodeAndValidate reads a JSON body into dst and validates it.
func (b *base) decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return customError.NewValidation("invalid request body", err)
	}
	if err := b.validator.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, customError.NewValidation("invalid "+name, err)
	}
	return id, nil
}

// queryUUID parses an optional id from the query string.
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, customError.NewValidation("invalid "+name, err)
	}
	return &id, nil
}

func muxVar(r *http.Request, name string) (string, bool) {
	v, ok := mux.Vars(r)[name]
	return v, ok
}
