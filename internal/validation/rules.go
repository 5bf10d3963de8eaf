// Package validation holds the fixed rule sets applied to product requests.
//
// Every rule is a (field, check, message) triple. All rules of a set run in
// order against the request, and each failing check adds exactly one error,
// so a single field may report several failures at once.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"productapi/internal/models"

	"github.com/go-playground/validator/v10"
)

var intPattern = regexp.MustCompile(`^[-+]?[0-9]+$`)

// Body is a decoded JSON object keyed by field name.
type Body map[string]json.RawMessage

// ParseBody decodes a request body. An empty body is treated as an empty object.
func ParseBody(raw []byte) (Body, error) {
	body := Body{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return body, nil
}

type check func(v *Validator, value interface{}) bool

type rule struct {
	field   string
	check   check
	message string
}

var productRules = []rule{
	{field: "name", check: (*Validator).notBlank, message: MsgNameEmpty},
	{field: "name", check: (*Validator).maxLength, message: MsgNameTooLong},
	{field: "price", check: (*Validator).numeric, message: MsgPriceNotNumeric},
	{field: "price", check: (*Validator).notEmpty, message: MsgPriceEmpty},
	{field: "price", check: (*Validator).positive, message: MsgPriceNotPositive},
}

// Validator runs the product rule sets. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the custom "int" tag registered.
func New() *Validator {
	validate := validator.New()
	// Only fails for reserved tag names.
	_ = validate.RegisterValidation("int", isInt)
	return &Validator{validate: validate}
}

func isInt(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !intPattern.MatchString(s) {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// ValidateID checks the id path parameter and returns it parsed.
func (v *Validator) ValidateID(raw string) (int64, Errors) {
	if err := v.validate.Var(raw, "int"); err != nil {
		return 0, Errors{{
			Type:     "field",
			Value:    raw,
			Msg:      MsgInvalidID,
			Path:     "id",
			Location: LocationParams,
		}}
	}
	id, _ := strconv.ParseInt(raw, 10, 64)
	return id, nil
}

// ValidateProduct runs every product rule against body. The input is only
// meaningful when no errors are returned.
func (v *Validator) ValidateProduct(body Body) (models.ProductInput, Errors) {
	values := make(map[string]interface{}, len(productRules))
	var errs Errors
	for _, r := range productRules {
		value, seen := values[r.field]
		if !seen {
			value = decodeField(body, r.field)
			values[r.field] = value
		}
		if r.check(v, value) {
			continue
		}
		errs = append(errs, FieldError{
			Type:     "field",
			Value:    value,
			Msg:      r.message,
			Path:     r.field,
			Location: LocationBody,
		})
	}
	if len(errs) > 0 {
		return models.ProductInput{}, errs
	}

	name, _ := asText(values["name"])
	return models.ProductInput{
		Name:  name,
		Price: toNumber(values["price"]),
	}, nil
}

func decodeField(body Body, field string) interface{} {
	raw, ok := body[field]
	if !ok {
		return nil
	}
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		// Numbers beyond float64 range; keep the literal so the field counts as sent.
		return string(raw)
	}
	return value
}

func (v *Validator) notBlank(value interface{}) bool {
	s, ok := asText(value)
	return ok && v.validate.Var(strings.TrimSpace(s), "required") == nil
}

func (v *Validator) maxLength(value interface{}) bool {
	s, _ := asText(value)
	return v.validate.Var(s, "max=100") == nil
}

func (v *Validator) numeric(value interface{}) bool {
	switch val := value.(type) {
	case float64:
		return true
	case string:
		return v.validate.Var(val, "numeric") == nil && !math.IsInf(toNumber(val), 0)
	default:
		return false
	}
}

func (v *Validator) notEmpty(value interface{}) bool {
	switch val := value.(type) {
	case nil:
		return false
	case string:
		return val != ""
	default:
		return true
	}
}

func (v *Validator) positive(value interface{}) bool {
	return v.validate.Var(toNumber(value), "gt=0") == nil
}

// asText renders scalar JSON values as text. Objects, arrays and null are not text.
func asText(value interface{}) (string, bool) {
	switch val := value.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

// toNumber coerces a JSON value to a number, or NaN when it has no numeric reading.
func toNumber(value interface{}) float64 {
	switch val := value.(type) {
	case float64:
		return val
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return math.NaN()
		}
		return f
	case bool:
		if val {
			return 1
		}
		return 0
	default:
		return math.NaN()
	}
}
