// Package validate provides pure per-field validators for form input.
//
// Each validator takes a raw string and either returns a normalized value or
// fails with a *models.ValidationError carrying a fixed user-facing message.
// Validators hold no state and never touch storage.
package validate

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/formflow/FormFlow/internal/models"
	"github.com/nyaruka/phonenumbers"
)

// Fixed user-facing failure messages.
const (
	MsgEmptyName    = "name must not be empty"
	MsgInvalidEmail = "Please provide a valid email address."
	MsgInvalidPhone = "Please provide a valid international phone number with country code (e.g. +9779828126222)"
)

// nonDigits matches everything that is not a decimal digit.
var nonDigits = regexp.MustCompile(`[^0-9]`)

// Field runs the validator for the named field on raw input and returns the
// normalized value. An empty appointment date is valid and normalizes to "".
func Field(field, raw string) (string, error) {
	switch field {
	case models.FieldName:
		return Name(raw)
	case models.FieldEmail:
		return Email(raw)
	case models.FieldPhone:
		return Phone(raw)
	case models.FieldAppointmentDate:
		return Date(raw)
	default:
		return "", models.ErrUnknownField
	}
}

// Name accepts any input that is non-empty after trimming whitespace.
func Name(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", &models.ValidationError{Field: models.FieldName, Message: MsgEmptyName}
	}
	return name, nil
}

// Email validates standard email address grammar. The domain must be
// TLD-shaped (contain a dot), so bare "user@host" is rejected.
func Email(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	at := strings.LastIndex(email, "@")
	if email == "" || at < 1 || !strings.Contains(email[at+1:], ".") || !govalidator.IsEmail(email) {
		return "", &models.ValidationError{Field: models.FieldEmail, Message: MsgInvalidEmail}
	}
	return email, nil
}

// Phone validates an international phone number and renders it in E.164 form.
// All separators are stripped first, keeping a single leading "+". Parsing is
// region-agnostic: the number must carry its own country code.
func Phone(raw string) (string, error) {
	cleaned := cleanPhone(raw)

	parsed, err := phonenumbers.Parse(cleaned, "")
	if err != nil {
		slog.Debug("Phone validation parse failed", "error", err)
		return "", &models.ValidationError{Field: models.FieldPhone, Message: MsgInvalidPhone}
	}
	if !phonenumbers.IsValidNumber(parsed) {
		slog.Debug("Phone validation rejected unassigned number", "cleaned", cleaned)
		return "", &models.ValidationError{Field: models.FieldPhone, Message: MsgInvalidPhone}
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// cleanPhone strips every character except digits, preserving one leading "+".
func cleanPhone(raw string) string {
	s := strings.TrimSpace(raw)
	prefix := ""
	if strings.HasPrefix(s, "+") {
		prefix = "+"
		s = s[1:]
	}
	return prefix + nonDigits.ReplaceAllString(s, "")
}
