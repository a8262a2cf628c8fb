package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/formflow/FormFlow/internal/models"
)

func TestJSONStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	st, err := NewJSONStore(WithJSONPath(path))
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	defer st.Close()
	runRecordStoreSuite(t, st)
}

func TestJSONStoreInitializesEmptyArrayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "records.json")
	if _, err := NewJSONStore(WithJSONPath(path)); err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("store file not created: %v", err)
	}
	var records []models.ContactRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("fresh store file is not a JSON array: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("fresh store file has %d records", len(records))
	}
}

func TestJSONStoreFileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	st, err := NewJSONStore(WithJSONPath(path))
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}

	if err := st.SaveRecord(models.ContactRecord{Name: "Jane Doe", Email: "jane@example.com", Phone: "+12025550182"}); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("got %d objects, want 1", len(raw))
	}
	obj := raw[0]
	if obj["name"] != "Jane Doe" || obj["email"] != "jane@example.com" || obj["phone"] != "+12025550182" {
		t.Errorf("unexpected field values: %+v", obj)
	}
	// A contact record without an appointment stores an explicit null.
	if date, ok := obj["appointment_date"]; !ok || date != nil {
		t.Errorf("appointment_date = %v (present=%v), want explicit null", date, ok)
	}
}

func TestJSONStoreReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	st, err := NewJSONStore(WithJSONPath(path))
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	if err := st.SaveRecord(models.ContactRecord{Name: "Jane", Email: "jane@example.com", Phone: "+12025550182"}); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}

	reopened, err := NewJSONStore(WithJSONPath(path))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	records, err := reopened.LoadAllRecords()
	if err != nil {
		t.Fatalf("LoadAllRecords: %v", err)
	}
	if len(records) != 1 || records[0].Email != "jane@example.com" {
		t.Errorf("records lost across reopen: %+v", records)
	}
}

func TestJSONStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	st, err := NewJSONStore(WithJSONPath(path))
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	if _, err := st.LoadAllRecords(); err == nil {
		t.Fatal("expected error for corrupt store file")
	}
	if err := st.SaveRecord(models.ContactRecord{Name: "Jane", Email: "jane@example.com", Phone: "+12025550182"}); err == nil {
		t.Fatal("expected SaveRecord to fail on corrupt store file")
	}
}

func TestJSONStoreRequiresPath(t *testing.T) {
	if _, err := NewJSONStore(); err == nil {
		t.Fatal("expected error when no path configured")
	}
}
