// Package models defines the core data structures for FormFlow.
//
// It includes form types, the contact record produced by completed forms,
// form turn responses, and the shared error taxonomy.
package models

import (
	"errors"
	"fmt"
)

// FormType identifies which structured form is being collected.
type FormType string

const (
	// FormTypeContact collects name, email and phone for a follow-up call.
	FormTypeContact FormType = "contact"
	// FormTypeAppointment additionally collects a desired appointment date.
	FormTypeAppointment FormType = "appointment"
)

// Field name constants shared by the validators, the form state machine and storage.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldAppointmentDate = "appointment_date"
)

// Error variables for better error handling and testability
var (
	ErrNoActiveForm    = errors.New("no active form")
	ErrUnknownFormType = errors.New("unknown form type")
	ErrUnknownField    = errors.New("unknown form field")
	ErrStorageIO       = errors.New("record storage failure")
)

// IsValidFormType checks if the given form type is supported.
func IsValidFormType(ft FormType) bool {
	switch ft {
	case FormTypeContact, FormTypeAppointment:
		return true
	default:
		return false
	}
}

// RequiredFields returns the ordered field list collected for a form type.
// The order is the order fields are prompted for, one per turn.
func RequiredFields(ft FormType) []string {
	switch ft {
	case FormTypeContact:
		return []string{FieldName, FieldEmail, FieldPhone}
	case FormTypeAppointment:
		return []string{FieldName, FieldEmail, FieldPhone, FieldAppointmentDate}
	default:
		return nil
	}
}

// ValidationError reports that user input for a single field failed semantic
// validation. Message is user-facing and fixed per field; the state machine
// converts it into a re-prompt and never propagates it further.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ContactRecord is the validated data entity produced once all fields of a
// form pass validation. It is immutable once constructed and is the unit of
// persistence.
type ContactRecord struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"` // E.164 format
	AppointmentDate *string `json:"appointment_date"`
}

// FormStatus describes the outcome of a single form turn.
type FormStatus string

const (
	// FormStatusInProgress means the input was accepted and the next field is prompted.
	FormStatusInProgress FormStatus = "in_progress"
	// FormStatusComplete means the final field was accepted and the record was persisted.
	FormStatusComplete FormStatus = "complete"
	// FormStatusError means the input failed validation and the same field is re-prompted.
	FormStatusError FormStatus = "error"
	// FormStatusFailed means the form completed but the record could not be persisted.
	FormStatusFailed FormStatus = "failed"
)

// FormResponse is the result of feeding one user turn to the form state machine.
type FormResponse struct {
	Status  FormStatus     `json:"status"`
	Field   string         `json:"field,omitempty"`   // field the turn applied to
	Prompt  string         `json:"prompt,omitempty"`  // next prompt or re-prompt text
	Message string         `json:"message,omitempty"` // completion or failure message
	Record  *ContactRecord `json:"record,omitempty"`  // set only on completion
}

// Response is an inbound message from a messaging transport: who sent it,
// what they said, and when it arrived (unix seconds).
type Response struct {
	From string `json:"from"`
	Body string `json:"body"`
	Time int64  `json:"time"`
}
