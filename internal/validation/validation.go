// Package validation checks inbound payloads and outbound representations
// against their struct-tag contracts and reports failures as apperr errors.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/apperr"
)

// DateLayout is the only accepted calendar date format.
const DateLayout = "2006-01-02"

// Amounts are bounded before their digits are ever expanded: at most
// maxIntegerDigits before the point (NUMERIC(12,2)) and an exponent no
// lower than minExponent.
const (
	maxIntegerDigits = 10
	minExponent      = -20
	outOfRange       = "out-of-range"
)

var (
	validate    = newValidator()
	decimalType = reflect.TypeOf(decimal.Decimal{})
	amountLimit = decimal.New(1, maxIntegerDigits)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	v.RegisterCustomTypeFunc(optionalValue,
		Optional[string]{},
		Optional[decimal.Decimal]{},
	)
	_ = v.RegisterValidation("isodate", isISODate)
	_ = v.RegisterValidation("money", isMoney)
	return v
}

// decimalValue renders a decimal for the string rules. Values outside the
// amount bounds become outOfRange, which fails "money".
func decimalValue(field reflect.Value) any {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	if !inAmountRange(d) {
		return outOfRange
	}
	return d.String()
}

// inAmountRange only looks at the exponent and compares against a small
// bound, so it never expands a value like 1e2000000000.
func inAmountRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > maxIntegerDigits || exp < minExponent {
		return false
	}
	return d.Abs().LessThan(amountLimit)
}

// optionalValue unwraps an Optional. Absent and null yield nil, which fails
// every rule; Struct keeps only the required failures for such fields.
func optionalValue(field reflect.Value) any {
	if !field.FieldByName("Present").Bool() || field.FieldByName("Null").Bool() {
		return nil
	}
	return field.FieldByName("Value").Interface()
}

func isISODate(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// isMoney accepts a non-negative decimal with at most two fractional digits.
func isMoney(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil || !inAmountRange(d) {
		return false
	}
	return !d.IsNegative() && d.Equal(d.Round(2))
}

// Struct validates an inbound payload. Failures are BadRequest with one
// FieldError per violated field, in declaration order.
func Struct(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			if fields := fieldErrors(v, verrs); len(fields) > 0 {
				return apperr.Invalid(fields)
			}
			return nil
		}
		return apperr.NewInternal(err)
	}
	return nil
}

// Output validates an outbound representation. A failure here is a bug in
// the service, never something the client can fix, so it is Internal.
func Output(v any) error {
	if err := validate.Struct(v); err != nil {
		return apperr.NewInternal(fmt.Errorf("output contract %T: %w", v, err))
	}
	return nil
}

// Decode reads one JSON value from r into dst. Type mismatches become field
// errors; anything that is not JSON becomes UnsupportedMediaType.
func Decode(r io.Reader, dst any) error {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return apperr.Invalid([]apperr.FieldError{{Loc: location(te.Field), Msg: typeMessage(te.Type)}})
		}
		return apperr.Wrap(apperr.UnsupportedMediaType, "Request body must contain valid JSON", err)
	}
	return nil
}

// Bind decodes r into dst and validates the result.
func Bind(r io.Reader, dst any) error {
	if err := Decode(r, dst); err != nil {
		return err
	}
	return Struct(dst)
}

func location(field string) []string {
	if field == "" {
		return []string{"body"}
	}
	return strings.Split(field, ".")
}

func fieldErrors(v any, verrs validator.ValidationErrors) []apperr.FieldError {
	root := reflect.Indirect(reflect.ValueOf(v))
	out := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() != "required" && unset(root, fe.StructField()) {
			continue
		}
		out = append(out, apperr.FieldError{Loc: location(fieldPath(fe)), Msg: message(fe)})
	}
	return out
}

// unset reports whether the named top-level field is an Optional that was
// absent or null. Such fields are not validated beyond "required".
func unset(root reflect.Value, name string) bool {
	if root.Kind() != reflect.Struct {
		return false
	}
	f := root.FieldByName(name)
	if !f.IsValid() || f.Kind() != reflect.Struct {
		return false
	}
	present, null := f.FieldByName("Present"), f.FieldByName("Null")
	if !present.IsValid() || !null.IsValid() || present.Kind() != reflect.Bool {
		return false
	}
	return !present.Bool() || null.Bool()
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Field required"
	case "min":
		return fmt.Sprintf("String should have at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("String should have at most %s characters", fe.Param())
	case "email":
		return "value is not a valid email address"
	case "oneof":
		opts := strings.Fields(fe.Param())
		for i, o := range opts {
			opts[i] = "'" + o + "'"
		}
		return "Input should be " + strings.Join(opts, " or ")
	case "isodate":
		return "Input should be a valid date in YYYY-MM-DD format"
	case "money":
		if fe.Value() == outOfRange {
			return "Input should be a decimal between 0 and 9999999999.99"
		}
		return "Input should be a non-negative decimal with at most 2 decimal places"
	case "gte":
		return "Input should be greater than or equal to " + fe.Param()
	default:
		return fmt.Sprintf("Failed on the '%s' rule", fe.Tag())
	}
}

func typeMessage(t reflect.Type) string {
	if t == nil {
		return "Input has an invalid type"
	}
	if t == decimalType {
		return "Input should be a valid decimal"
	}
	switch t.Kind() {
	case reflect.String:
		return "Input should be a valid string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "Input should be a valid integer"
	case reflect.Float32, reflect.Float64:
		return "Input should be a valid number"
	case reflect.Bool:
		return "Input should be a valid boolean"
	case reflect.Slice, reflect.Array:
		return "Input should be a valid list"
	default:
		return "Input should be a valid object"
	}
}
