package bot

import (
	"strings"

	"github.com/formflow/FormFlow/internal/models"
)

// Trigger phrases checked on free text when no form is active. Contact
// triggers are checked before appointment triggers.
var (
	contactTriggers = []string{
		"contact me",
		"call me",
		"reach out",
		"get in touch",
		"callback",
		"i want to be contacted",
	}
	appointmentTriggers = []string{
		"book",
		"appointment",
		"schedule",
		"meeting",
		"set up a meeting",
	}
)

// DetectFormTrigger decides from free text whether a form should start.
// Matching is case-insensitive substring matching.
func DetectFormTrigger(message string) (models.FormType, bool) {
	lowered := strings.ToLower(message)
	for _, trigger := range contactTriggers {
		if strings.Contains(lowered, trigger) {
			return models.FormTypeContact, true
		}
	}
	for _, trigger := range appointmentTriggers {
		if strings.Contains(lowered, trigger) {
			return models.FormTypeAppointment, true
		}
	}
	return "", false
}
