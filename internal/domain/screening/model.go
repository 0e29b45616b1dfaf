package screening

import "time"

// Result maps to the screening_results table. Screening results are
// append-only: every import creates a new row with a generated identifier,
// so a donor's screening history is never overwritten.
type Result struct {
	ID              string    `db:"id" json:"id"`
	DonorID         string    `db:"donor_id" json:"donor_id"`
	BloodType       string    `db:"blood_type" json:"blood_type"`
	HemoglobinLevel float64   `db:"hemoglobin_level" json:"hemoglobin_level"`
	HIVTest         bool      `db:"hiv_test" json:"hiv_test"`
	HepatitisBTest  bool      `db:"hepatitis_b_test" json:"hepatitis_b_test"`
	HepatitisCTest  bool      `db:"hepatitis_c_test" json:"hepatitis_c_test"`
	SyphilisTest    bool      `db:"syphilis_test" json:"syphilis_test"`
	ScreeningDate   time.Time `db:"screening_date" json:"screening_date"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
