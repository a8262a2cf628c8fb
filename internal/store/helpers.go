package store

import (
	"database/sql"
	"fmt"

	"github.com/formflow/FormFlow/internal/models"
)

// nilIfNoDate returns nil for an absent appointment date.
// Used for the nullable appointment_date column.
func nilIfNoDate(date *string) interface{} {
	if date == nil || *date == "" {
		return nil
	}
	return *date
}

// scanRecords scans ContactRecords from sql.Rows.
func scanRecords(rows *sql.Rows) ([]models.ContactRecord, error) {
	records := []models.ContactRecord{}
	for rows.Next() {
		var rec models.ContactRecord
		var date sql.NullString
		if err := rows.Scan(&rec.Name, &rec.Email, &rec.Phone, &date); err != nil {
			return nil, fmt.Errorf("%w: failed to scan record row: %v", models.ErrStorageIO, err)
		}
		if date.Valid {
			d := date.String
			rec.AppointmentDate = &d
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate record rows: %v", models.ErrStorageIO, err)
	}
	return records, nil
}
