package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/formflow/FormFlow/internal/models"
	"github.com/formflow/FormFlow/internal/store"
	"github.com/formflow/FormFlow/internal/validate"
)

// Handler is the public entry point of the form subsystem. It starts forms,
// feeds user turns to the per-session state machine, and hands completed
// records to the record store exactly once.
type Handler struct {
	sessions *SessionManager
	store    store.RecordStore
}

// NewHandler creates a form Handler backed by the given record store.
func NewHandler(st store.RecordStore) *Handler {
	return &Handler{
		sessions: NewSessionManager(),
		store:    st,
	}
}

// Active reports whether the session currently has a form in progress.
func (h *Handler) Active(sessionID string) bool {
	sess := h.sessions.Get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.active()
}

// StartForm begins collection of the given form type and returns the prompt
// for the first field. Any form already in progress for the session is
// abandoned silently; no partial data is ever persisted.
func (h *Handler) StartForm(ctx context.Context, sessionID string, ft models.FormType) (string, error) {
	if !models.IsValidFormType(ft) {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownFormType, ft)
	}

	sess := h.sessions.Get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.active() {
		slog.Info("Form handler abandoning in-progress form", "sessionID", sessionID, "previous", sess.ActiveForm, "new", ft)
	}

	sess.reset()
	sess.ActiveForm = ft
	sess.RequiredFields = models.RequiredFields(ft)

	slog.Info("Form handler started form", "sessionID", sessionID, "formType", ft, "fields", len(sess.RequiredFields))
	return startGreeting(ft) + FieldPrompt(sess.RequiredFields[0]), nil
}

// ProcessInput feeds one user turn to the session's form. On validation
// failure the session is unchanged and the same field is re-prompted. On
// acceptance of the final field the record is persisted and the session
// resets to idle. Returns models.ErrNoActiveForm if no form is in progress.
func (h *Handler) ProcessInput(ctx context.Context, sessionID, rawText string) (models.FormResponse, error) {
	sess := h.sessions.Get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.active() {
		return models.FormResponse{}, models.ErrNoActiveForm
	}

	field := sess.RequiredFields[sess.CurrentIndex]
	value, err := validate.Field(field, rawText)
	if err != nil {
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			return models.FormResponse{}, err
		}
		slog.Debug("Form handler rejected input", "sessionID", sessionID, "field", field, "message", verr.Message)
		return models.FormResponse{
			Status: models.FormStatusError,
			Field:  field,
			Prompt: invalidPrompt(field, verr.Message),
		}, nil
	}

	sess.CollectedValues[field] = value

	if sess.CurrentIndex < len(sess.RequiredFields)-1 {
		sess.CurrentIndex++
		next := sess.RequiredFields[sess.CurrentIndex]
		slog.Debug("Form handler advanced", "sessionID", sessionID, "accepted", field, "next", next)
		return models.FormResponse{
			Status: models.FormStatusInProgress,
			Field:  next,
			Prompt: FieldPrompt(next),
		}, nil
	}

	record := buildRecord(sess.CollectedValues)
	ft := sess.ActiveForm
	sess.reset()

	if err := h.store.SaveRecord(record); err != nil {
		slog.Error("Form handler failed to persist completed record", "error", err, "sessionID", sessionID, "formType", ft)
		return models.FormResponse{
			Status:  models.FormStatusFailed,
			Message: saveFailedMessage,
		}, nil
	}

	slog.Info("Form handler completed form", "sessionID", sessionID, "formType", ft)
	return models.FormResponse{
		Status:  models.FormStatusComplete,
		Message: successMessage(ft, record),
		Record:  &record,
	}, nil
}

// Reset discards any form progress for the session. Exposed for external
// resets; there is deliberately no user-facing cancellation mid-form.
func (h *Handler) Reset(sessionID string) {
	h.sessions.Reset(sessionID)
}

// buildRecord assembles a ContactRecord from individually validated values.
// Every value was already normalized by its field validator, so no
// whole-record re-validation runs here.
func buildRecord(values map[string]string) models.ContactRecord {
	rec := models.ContactRecord{
		Name:  values[models.FieldName],
		Email: values[models.FieldEmail],
		Phone: values[models.FieldPhone],
	}
	if date, ok := values[models.FieldAppointmentDate]; ok && date != "" {
		rec.AppointmentDate = &date
	}
	return rec
}
