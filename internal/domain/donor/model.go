package donor

import "time"

// Donor maps to the donors table. Donors are created on first import and
// updated in place on re-import; they are never deleted.
type Donor struct {
	ID          string    `db:"id" json:"id"`
	Age         int       `db:"age" json:"age"`
	Gender      string    `db:"gender" json:"gender"`
	Occupation  *string   `db:"occupation" json:"occupation,omitempty"`
	Location    *string   `db:"location" json:"location,omitempty"`
	ContactInfo *string   `db:"contact_info" json:"contact_info,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
