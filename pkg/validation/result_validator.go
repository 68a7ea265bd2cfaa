package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/prodcheck/prodcheck-go/internal/errors"
	"github.com/prodcheck/prodcheck-go/pkg/models"
)

// ResultValidator enforces the AnalysisResult shape: required fields,
// score bounds and the trust rating enum. It reports the first violated
// constraint only.
type ResultValidator struct {
	validate *validator.Validate
}

// NewResultValidator creates a validator wired to the struct tags on
// models.AnalysisResult.
func NewResultValidator() *ResultValidator {
	return &ResultValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ValidateResult checks that result satisfies the AnalysisResult contract.
// Returns a schema error naming the first violated constraint.
func (v *ResultValidator) ValidateResult(result *models.AnalysisResult) error {
	if result == nil {
		return apperrors.NewSchemaError("analysis result is missing", nil)
	}

	if err := v.validate.Struct(result); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			return apperrors.NewSchemaError(describeViolation(fieldErrs[0]), err)
		}
		return apperrors.NewSchemaError("analysis result failed validation", err)
	}

	return nil
}

// describeViolation turns the first field error into a message in terms of
// the wire field names.
func describeViolation(fe validator.FieldError) string {
	field := wireFieldName(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("missing required field %q", field)
	case "gte", "lte":
		return fmt.Sprintf("field %q must be between 0 and 100 (got %v)", field, fe.Value())
	case "oneof":
		return fmt.Sprintf("field %q must be one of high, medium, low (got %v)", field, fe.Value())
	default:
		return fmt.Sprintf("field %q failed %s validation", field, fe.Tag())
	}
}

// wireFieldName maps a struct field path like
// "AnalysisResult.OtherLinks[1].TrustRating" to its JSON wire form.
func wireFieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		ns = ns[idx+1:]
	}
	parts := strings.Split(ns, ".")
	for i, part := range parts {
		suffix := ""
		if b := strings.Index(part, "["); b >= 0 {
			suffix = part[b:]
			part = part[:b]
		}
		parts[i] = lowerFirst(part) + suffix
	}
	// Struct names URL and TrustRating serialize as url and trustRating.
	name := strings.Join(parts, ".")
	name = strings.ReplaceAll(name, "uRL", "url")
	return name
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
