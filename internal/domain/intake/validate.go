package intake

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Field error codes
const (
	ErrCodeRequired = "required"
	ErrCodeNumber   = "number"
	ErrCodeMin      = "min"
	ErrCodeMax      = "max"
	ErrCodeOption   = "option"
	ErrCodePattern  = "pattern"
	ErrCodeEmail    = "email"
	ErrCodeBool     = "bool"
)

// FieldError reports why one field value was rejected
type FieldError struct {
	Field   string `json:"field" yaml:"field"`
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

var (
	emailValidator = validator.New()
	patternCache   sync.Map // string -> *regexp.Regexp
)

// Validate checks values against the schema and returns one error per
// failing field, in schema order. Read-only fields are not checked. Each
// field is checked on its own; no rule looks at another field.
func (s Schema) Validate(values map[string]any) []FieldError {
	var errs []FieldError
	for _, f := range s.Fields {
		if f.ReadOnly {
			continue
		}
		if fe, ok := f.Check(values[f.Name]); !ok {
			errs = append(errs, fe)
		}
	}
	return errs
}

// Check validates a single value against the field definition
func (f Field) Check(value any) (FieldError, bool) {
	if isEmpty(value) {
		if f.Required {
			return f.fail(ErrCodeRequired, "is required"), false
		}
		return FieldError{}, true
	}

	switch f.Kind {
	case FieldKindNumber:
		n, ok := ParseNumber(value)
		if !ok {
			return f.fail(ErrCodeNumber, "must be a number"), false
		}
		if lo := f.Constraints.Min; lo != nil && n.LessThan(NumberOf(*lo)) {
			return f.fail(ErrCodeMin, fmt.Sprintf("must be at least %v", *lo)), false
		}
		if hi := f.Constraints.Max; hi != nil && n.GreaterThan(NumberOf(*hi)) {
			return f.fail(ErrCodeMax, fmt.Sprintf("must be at most %v", *hi)), false
		}
	case FieldKindEnum:
		if !f.Constraints.HasOption(stringOf(value)) {
			return f.fail(ErrCodeOption, "is not one of the allowed options"), false
		}
	case FieldKindMulti:
		choices, ok := listOf(value)
		if !ok {
			return f.fail(ErrCodeOption, "must be a list of options"), false
		}
		for _, c := range choices {
			if !f.Constraints.HasOption(stringOf(c)) {
				return f.fail(ErrCodeOption, "is not one of the allowed options"), false
			}
		}
	case FieldKindEmail:
		if err := emailValidator.Var(stringOf(value), "email"); err != nil {
			return f.fail(ErrCodeEmail, "must be a valid email address"), false
		}
	case FieldKindBool:
		switch v := value.(type) {
		case bool:
		case string:
			if v != "true" && v != "false" {
				return f.fail(ErrCodeBool, "must be true or false"), false
			}
		default:
			return f.fail(ErrCodeBool, "must be true or false"), false
		}
	}

	if f.Constraints.Pattern != "" && (f.Kind == FieldKindText || f.Kind == FieldKindPattern) {
		re, err := compilePattern(f.Constraints.Pattern)
		if err != nil || !re.MatchString(stringOf(value)) {
			return f.fail(ErrCodePattern, "does not match the required format"), false
		}
	}
	return FieldError{}, true
}

func (f Field) fail(code, msg string) FieldError {
	label := f.Label
	if label == "" {
		label = f.Name
	}
	return FieldError{Field: f.Name, Code: code, Message: label + " " + msg}
}

// compilePattern anchors the expression so it must match the whole value
func compilePattern(expr string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return nil, err
	}
	patternCache.Store(expr, re)
	return re, nil
}

func isEmpty(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(s) == ""
	case []any:
		return len(s) == 0
	case []string:
		return len(s) == 0
	}
	return false
}

func listOf(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// stringOf renders a value the way it was typed. Numbers decoded from JSON
// keep their digits: 9876543210 reads as "9876543210", not "9.87654321e+09".
func stringOf(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}
