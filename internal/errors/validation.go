package errors

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ValidationError lists problems per field. It surfaces as an
// InvalidArgument whose "validation_errors" meta holds Fields.
type ValidationError struct {
	Fields map[string][]string `json:"fields"`
}

// Error lists fields in name order so messages are stable across runs.
func (v *ValidationError) Error() string {
	if len(v.Fields) == 0 {
		return "validation failed"
	}
	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, field := range slices.Sorted(maps.Keys(v.Fields)) {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", field, strings.Join(v.Fields[field], ", "))
	}
	return b.String()
}

// ToError is nil when no field failed.
func (v *ValidationError) ToError() *Error {
	if len(v.Fields) == 0 {
		return nil
	}
	return InvalidArgument(v.Error()).WithMeta("validation_errors", v.Fields)
}

// ValidationBuilder is how every Config.Validate in the server reports
// problems:
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("HTTPAddr", c.HTTPAddr, vb)
//	return vb.Build()
type ValidationBuilder struct {
	fields map[string][]string
}

func NewValidationBuilder() *ValidationBuilder {
	return &ValidationBuilder{fields: map[string][]string{}}
}

func (vb *ValidationBuilder) Field(field, message string) *ValidationBuilder {
	vb.fields[field] = append(vb.fields[field], message)
	return vb
}

func (vb *ValidationBuilder) Fieldf(field, format string, args ...any) *ValidationBuilder {
	return vb.Field(field, fmt.Sprintf(format, args...))
}

func (vb *ValidationBuilder) RequiredField(field string) *ValidationBuilder {
	return vb.Field(field, "is required")
}

// Build returns nil when nothing was recorded. The result is a plain error
// so a clean build compares equal to nil.
func (vb *ValidationBuilder) Build() error {
	if len(vb.fields) == 0 {
		return nil
	}
	return (&ValidationError{Fields: vb.fields}).ToError()
}

// ValidateRequired treats whitespace-only values as missing.
func ValidateRequired(field, value string, vb *ValidationBuilder) {
	if strings.TrimSpace(value) == "" {
		vb.RequiredField(field)
	}
}

// ValidateRange is inclusive on both ends.
func ValidateRange(field string, value, minValue, maxValue int, vb *ValidationBuilder) {
	if value < minValue || value > maxValue {
		vb.Fieldf(field, "must be between %d and %d", minValue, maxValue)
	}
}

func ValidateEnum(field, value string, allowed []string, vb *ValidationBuilder) {
	if !slices.Contains(allowed, value) {
		vb.Fieldf(field, "must be one of: %s", strings.Join(allowed, ", "))
	}
}
