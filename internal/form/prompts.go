package form

import (
	"fmt"

	"github.com/formflow/FormFlow/internal/models"
)

// fieldPrompts maps each field to its static prompt, used both when advancing
// to a field and when re-prompting after a validation failure.
var fieldPrompts = map[string]string{
	models.FieldName:            "What's your full name?",
	models.FieldEmail:           "What's your email address? (e.g., name@example.com)",
	models.FieldPhone:           "What's your phone number with country code? (e.g., +9779828026222)",
	models.FieldAppointmentDate: "When would you like to schedule? (e.g., 'next Monday' or '2024-06-15')",
}

// FieldPrompt returns the prompt text for a field.
func FieldPrompt(field string) string {
	if prompt, ok := fieldPrompts[field]; ok {
		return prompt
	}
	return fmt.Sprintf("Please provide your %s", field)
}

// startGreeting returns the greeting prefixed to the first field prompt when
// a form starts.
func startGreeting(ft models.FormType) string {
	if ft == models.FormTypeAppointment {
		return "Let's schedule an appointment. "
	}
	return "Let's get your contact details. "
}

// invalidPrompt builds the re-prompt shown when a field fails validation.
func invalidPrompt(field, message string) string {
	return fmt.Sprintf("Invalid %s. %s Please try again:", field, message)
}

// successMessage generates the completion message for a persisted record.
// Both variants confirm that the information has been saved.
func successMessage(ft models.FormType, rec models.ContactRecord) string {
	if ft == models.FormTypeAppointment {
		date := ""
		if rec.AppointmentDate != nil {
			date = *rec.AppointmentDate
		}
		return fmt.Sprintf(
			"Appointment scheduled!\nName: %s\nDate: %s\nWe'll contact you at %s to confirm.\nYour information has been saved.",
			rec.Name, date, rec.Phone)
	}
	return fmt.Sprintf(
		"Thank you, %s!\nWe'll contact you shortly at %s.\nYour information has been saved.",
		rec.Name, rec.Phone)
}

// saveFailedMessage is returned when a completed form's record could not be
// persisted. The session is still cleared so the user is not stuck mid-form.
const saveFailedMessage = "Sorry, your information could not be saved. Please try again later."
