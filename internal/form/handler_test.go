package form

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/formflow/FormFlow/internal/models"
	"github.com/formflow/FormFlow/internal/store"
)

type failingStore struct{}

func (failingStore) SaveRecord(models.ContactRecord) error { return models.ErrStorageIO }
func (failingStore) LoadAllRecords() ([]models.ContactRecord, error) {
	return nil, models.ErrStorageIO
}
func (failingStore) RecordsByDate(string) ([]models.ContactRecord, error) {
	return nil, models.ErrStorageIO
}
func (failingStore) Close() error { return nil }

func TestProcessInputWithoutActiveForm(t *testing.T) {
	h := NewHandler(store.NewInMemoryStore())
	_, err := h.ProcessInput(context.Background(), "sess", "hello")
	if !errors.Is(err, models.ErrNoActiveForm) {
		t.Fatalf("expected ErrNoActiveForm, got %v", err)
	}
}

func TestStartFormRejectsUnknownType(t *testing.T) {
	h := NewHandler(store.NewInMemoryStore())
	if _, err := h.StartForm(context.Background(), "sess", "survey"); !errors.Is(err, models.ErrUnknownFormType) {
		t.Fatalf("expected ErrUnknownFormType, got %v", err)
	}
}

func TestContactFormFullScenario(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemoryStore()
	h := NewHandler(st)

	prompt, err := h.StartForm(ctx, "sess", models.FormTypeContact)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "What's your full name?") {
		t.Errorf("unexpected first prompt: %q", prompt)
	}
	if !h.Active("sess") {
		t.Error("expected form to be active after start")
	}

	resp, err := h.ProcessInput(ctx, "sess", "Jane Doe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != models.FormStatusInProgress || resp.Field != models.FieldEmail {
		t.Fatalf("unexpected response after name: %+v", resp)
	}

	// Invalid email leaves state untouched and re-prompts the same field.
	resp, err = h.ProcessInput(ctx, "sess", "not-an-email")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != models.FormStatusError || resp.Field != models.FieldEmail {
		t.Fatalf("unexpected response for invalid email: %+v", resp)
	}
	if !strings.HasPrefix(resp.Prompt, "Invalid email.") || !strings.HasSuffix(resp.Prompt, "Please try again:") {
		t.Errorf("unexpected re-prompt: %q", resp.Prompt)
	}

	resp, err = h.ProcessInput(ctx, "sess", "jane@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != models.FormStatusInProgress || resp.Field != models.FieldPhone {
		t.Fatalf("unexpected response after email: %+v", resp)
	}

	resp, err = h.ProcessInput(ctx, "sess", "+1 202-555-0182")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != models.FormStatusComplete {
		t.Fatalf("expected completion, got %+v", resp)
	}
	if resp.Record == nil || resp.Record.Phone != "+12025550182" {
		t.Fatalf("unexpected record: %+v", resp.Record)
	}
	if resp.Record.AppointmentDate != nil {
		t.Error("contact record should have no appointment date")
	}
	if !strings.Contains(resp.Message, "Thank you, Jane Doe!") || !strings.Contains(resp.Message, "has been saved") {
		t.Errorf("unexpected success message: %q", resp.Message)
	}
	if h.Active("sess") {
		t.Error("session should be idle after completion")
	}

	records, err := st.LoadAllRecords()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected exactly one persisted record, got %d", len(records))
	}
	if records[0].Name != "Jane Doe" || records[0].Email != "jane@example.com" || records[0].Phone != "+12025550182" {
		t.Errorf("persisted record mismatch: %+v", records[0])
	}
}

func TestAppointmentFormPersistsDate(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemoryStore()
	h := NewHandler(st)

	prompt, err := h.StartForm(ctx, "sess", models.FormTypeAppointment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(prompt, "Let's schedule an appointment.") {
		t.Errorf("unexpected greeting: %q", prompt)
	}

	for _, input := range []string{"Jane Doe", "jane@example.com", "+12025550182"} {
		if _, err := h.ProcessInput(ctx, "sess", input); err != nil {
			t.Fatalf("unexpected error on %q: %v", input, err)
		}
	}

	resp, err := h.ProcessInput(ctx, "sess", "2030-06-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != models.FormStatusComplete {
		t.Fatalf("expected completion, got %+v", resp)
	}
	if resp.Record.AppointmentDate == nil || *resp.Record.AppointmentDate != "2030-06-15" {
		t.Fatalf("unexpected appointment date: %+v", resp.Record)
	}
	if !strings.Contains(resp.Message, "Appointment scheduled!") || !strings.Contains(resp.Message, "2030-06-15") {
		t.Errorf("unexpected success message: %q", resp.Message)
	}

	records, err := st.LoadAllRecords()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].AppointmentDate == nil {
		t.Fatalf("expected one record with appointment date, got %+v", records)
	}
}

func TestInvalidInputLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	h := NewHandler(store.NewInMemoryStore())

	if _, err := h.StartForm(ctx, "sess", models.FormTypeContact); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := h.ProcessInput(ctx, "sess", "Jane Doe"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sess := h.sessions.Get("sess")
	sess.mu.Lock()
	indexBefore := sess.CurrentIndex
	collectedBefore := len(sess.CollectedValues)
	sess.mu.Unlock()

	for i := 0; i < 3; i++ {
		resp, err := h.ProcessInput(ctx, "sess", "still-not-an-email")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Status != models.FormStatusError {
			t.Fatalf("expected error status, got %+v", resp)
		}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.CurrentIndex != indexBefore || len(sess.CollectedValues) != collectedBefore {
		t.Errorf("state mutated on invalid input: index %d -> %d, collected %d -> %d",
			indexBefore, sess.CurrentIndex, collectedBefore, len(sess.CollectedValues))
	}
}

func TestStartFormDiscardsInProgressForm(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemoryStore()
	h := NewHandler(st)

	if _, err := h.StartForm(ctx, "sess", models.FormTypeContact); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := h.ProcessInput(ctx, "sess", "Jane Doe"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := h.StartForm(ctx, "sess", models.FormTypeAppointment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sess := h.sessions.Get("sess")
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.ActiveForm != models.FormTypeAppointment {
		t.Errorf("expected appointment form, got %q", sess.ActiveForm)
	}
	if sess.CurrentIndex != 0 || len(sess.CollectedValues) != 0 {
		t.Errorf("prior partial data not discarded: index %d, collected %d", sess.CurrentIndex, len(sess.CollectedValues))
	}

	// The abandoned form never persisted anything.
	records, err := st.LoadAllRecords()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("abandoned form persisted %d records", len(records))
	}
}

func TestStorageFailureReportedDistinctly(t *testing.T) {
	ctx := context.Background()
	h := NewHandler(failingStore{})

	if _, err := h.StartForm(ctx, "sess", models.FormTypeContact); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, input := range []string{"Jane Doe", "jane@example.com"} {
		if _, err := h.ProcessInput(ctx, "sess", input); err != nil {
			t.Fatalf("unexpected error on %q: %v", input, err)
		}
	}

	resp, err := h.ProcessInput(ctx, "sess", "+12025550182")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != models.FormStatusFailed {
		t.Fatalf("expected failed status, got %+v", resp)
	}
	if resp.Message == "" {
		t.Error("expected user-facing failure message")
	}
	// Session is cleared so the user is not stuck mid-form.
	if h.Active("sess") {
		t.Error("session should be idle after storage failure")
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	h := NewHandler(store.NewInMemoryStore())

	if _, err := h.StartForm(ctx, "alice", models.FormTypeContact); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Active("bob") {
		t.Error("bob should have no active form")
	}
	if _, err := h.ProcessInput(ctx, "bob", "hi"); !errors.Is(err, models.ErrNoActiveForm) {
		t.Errorf("expected ErrNoActiveForm for bob, got %v", err)
	}
	if !h.Active("alice") {
		t.Error("alice's form should still be active")
	}
}
