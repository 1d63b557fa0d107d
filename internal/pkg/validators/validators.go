package validators

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
)

var permissionNamePattern = regexp.MustCompile(`^[a-z][a-z_]*\.([a-z][a-z_]*|\*)$`)

// PermissionNameValidation validates permission names of the form resource.action,
// e.g. users.view or users.*
func PermissionNameValidation(fl validator.FieldLevel) bool {
	return permissionNamePattern.MatchString(fl.Field().String())
}

// MailScopeValidation requires a scope id for team and user scoped mail settings and
// forbids one for the app scope.
func MailScopeValidation(fl validator.FieldLevel) bool {
	scope := fl.Parent().FieldByName("Scope").String()
	scopeID := strings.TrimSpace(fl.Field().String())

	switch scope {
	case "app":
		return scopeID == ""
	case "team", "user":
		return scopeID != ""
	default:
		return false
	}
}

// New returns a validator with the custom validations registered.
func New() (*validator.Validate, error) {
	validate := validator.New()

	if err := validate.RegisterValidation("permissionName", PermissionNameValidation); err != nil {
		return nil, fmt.Errorf("failed to register custom validator: %w", err)
	}
	if err := validate.RegisterValidation("mailScope", MailScopeValidation); err != nil {
		return nil, fmt.Errorf("failed to register custom validator: %w", err)
	}
	return validate, nil
}

// ValidateStruct validates s and flattens field errors into a single error wrapping
// errs.ErrValidation.
func ValidateStruct(s interface{}) error {
	validate, err := New()
	if err != nil {
		return err
	}

	err = validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldErr := range validationErrors {
			messages = append(messages, fmt.Sprintf("Field: %s, Tag: %s", fieldErr.Field(), fieldErr.Tag()))
		}
		return errs.Validation(fmt.Sprintf("validation failed: %v", messages), FieldErrors(validationErrors))
	}
	return fmt.Errorf("validation error: %w", err)
}

// FieldErrors maps field names to the failed tag.
func FieldErrors(validationErrors validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields[fieldErr.Field()] = fieldErr.Tag()
	}
	return fields
}
