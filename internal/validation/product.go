// Package validation checks product payloads against the create (full) and
// update (partial) schemas. Validation is exhaustive: every field is checked
// and all violations are reported in field declaration order.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jeswanthjohn/api-forge/internal/apperror"
	"github.com/jeswanthjohn/api-forge/internal/domain"
)

// Mode selects which schema a payload is validated against
type Mode int

const (
	// ModeCreate requires name, price and category
	ModeCreate Mode = iota
	// ModeUpdate makes every field optional while keeping its constraints
	ModeUpdate
)

func (m Mode) String() string {
	if m == ModeUpdate {
		return "update"
	}
	return "create"
}

// Field slots in declaration order
const (
	fieldName = iota
	fieldPrice
	fieldCategory
	fieldDescription
	fieldCount
)

type fieldSpec struct {
	key      string
	label    string
	required bool
	numeric  bool
}

var fields = [fieldCount]fieldSpec{
	fieldName:        {key: "name", label: "Product name", required: true},
	fieldPrice:       {key: "price", label: "Price", required: true, numeric: true},
	fieldCategory:    {key: "category", label: "Category", required: true},
	fieldDescription: {key: "description", label: "Description"},
}

var structFieldSlots = map[string]int{
	"Name":        fieldName,
	"Price":       fieldPrice,
	"Category":    fieldCategory,
	"Description": fieldDescription,
}

// createSchema and updateSchema are the two explicit rule sets; they differ
// only in whether the first three fields are required.
type createSchema struct {
	Name        string   `validate:"required,min=2,max=100"`
	Price       *float64 `validate:"required,gte=0"`
	Category    string   `validate:"required,min=2,max=50"`
	Description string   `validate:"max=1000"`
}

type updateSchema struct {
	Name        *string  `validate:"omitempty,min=2,max=100"`
	Price       *float64 `validate:"omitempty,gte=0"`
	Category    *string  `validate:"omitempty,min=2,max=50"`
	Description *string  `validate:"omitempty,max=1000"`
}

// Validator instance
var validate = validator.New()

// ErrInvalidBody is returned when the body is not a JSON object
var ErrInvalidBody = apperror.BadRequest("Invalid request body")

// ValidateCreate validates a create payload and returns exactly the four
// recognized fields. Description defaults to empty when absent.
func ValidateCreate(body []byte) (domain.ProductInput, error) {
	patch, err := Validate(body, ModeCreate)
	if err != nil {
		return domain.ProductInput{}, err
	}

	return domain.ProductInput{
		Name:        *patch.Name,
		Price:       *patch.Price,
		Category:    *patch.Category,
		Description: *patch.Description,
	}, nil
}

// ValidateUpdate validates a partial update. Fields that were not supplied
// stay nil in the returned patch.
func ValidateUpdate(body []byte) (domain.ProductPatch, error) {
	return Validate(body, ModeUpdate)
}

// Validate decodes body and checks it against the schema for mode. On
// success the returned patch holds only recognized, trimmed fields; in create
// mode every field is set. On failure the error is an *apperror.Error of kind
// KindValidation or KindBadRequest.
func Validate(body []byte, mode Mode) (domain.ProductPatch, error) {
	raw, err := decodeObject(body)
	if err != nil {
		return domain.ProductPatch{}, ErrInvalidBody
	}

	var (
		patch    domain.ProductPatch
		messages [fieldCount]string
	)

	patch.Name = decodeString(raw, fieldName, &messages)
	patch.Price = decodeNumber(raw, fieldPrice, &messages)
	patch.Category = decodeString(raw, fieldCategory, &messages)
	patch.Description = decodeString(raw, fieldDescription, &messages)

	if mode == ModeCreate {
		err = validate.Struct(createSchema{
			Name:        deref(patch.Name),
			Price:       patch.Price,
			Category:    deref(patch.Category),
			Description: deref(patch.Description),
		})
	} else {
		err = validate.Struct(updateSchema{
			Name:        patch.Name,
			Price:       patch.Price,
			Category:    patch.Category,
			Description: patch.Description,
		})
	}
	collectRuleErrors(err, &messages)

	if errs := compact(messages); len(errs) > 0 {
		return domain.ProductPatch{}, apperror.Validation(errs)
	}

	if mode == ModeCreate && patch.Description == nil {
		empty := ""
		patch.Description = &empty
	}

	return patch, nil
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("body is not an object")
	}
	return raw, nil
}

// decodeString returns the trimmed value of a string field. Present but
// blank required fields are reported here since both schemas reject them.
func decodeString(raw map[string]json.RawMessage, slot int, messages *[fieldCount]string) *string {
	spec := fields[slot]
	value, ok := raw[spec.key]
	if !ok {
		return nil
	}

	var s string
	if err := json.Unmarshal(value, &s); err != nil || isNull(value) {
		messages[slot] = spec.label + " must be a string"
		return nil
	}

	s = strings.TrimSpace(s)
	if s == "" && spec.required {
		messages[slot] = spec.label + " is required"
		return nil
	}
	return &s
}

// decodeNumber accepts a JSON number or a numeric string
func decodeNumber(raw map[string]json.RawMessage, slot int, messages *[fieldCount]string) *float64 {
	spec := fields[slot]
	value, ok := raw[spec.key]
	if !ok {
		return nil
	}

	var f float64
	if err := json.Unmarshal(value, &f); err == nil && !isNull(value) {
		return &f
	}

	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil &&
			!math.IsNaN(parsed) && !math.IsInf(parsed, 0) {
			return &parsed
		}
	}

	messages[slot] = spec.label + " must be a number"
	return nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

// collectRuleErrors keeps the first violation per field; decode errors
// already recorded for a field take precedence.
func collectRuleErrors(err error, messages *[fieldCount]string) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return
	}

	for _, e := range validationErrors {
		slot, known := structFieldSlots[e.StructField()]
		if !known || messages[slot] != "" {
			continue
		}
		messages[slot] = getErrorMessage(fields[slot], e)
	}
}

func getErrorMessage(spec fieldSpec, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return spec.label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", spec.label, e.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", spec.label, e.Param())
	case "gte":
		if e.Param() == "0" {
			return spec.label + " cannot be negative"
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", spec.label, e.Param())
	default:
		return spec.label + " is invalid"
	}
}

func compact(messages [fieldCount]string) []string {
	var out []string
	for _, m := range messages {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
