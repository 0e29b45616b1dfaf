package donation

import "time"

// Donation maps to the donations table. Each donation belongs to an existing
// donor; a donor may have at most one donation per calendar day.
type Donation struct {
	ID              string    `db:"id" json:"id"`
	DonorID         string    `db:"donor_id" json:"donor_id"`
	DonationDate    time.Time `db:"donation_date" json:"donation_date"`
	BloodType       string    `db:"blood_type" json:"blood_type"`
	VolumeCollected float64   `db:"volume_collected" json:"volume_collected"`
	CollectionSite  string    `db:"collection_site" json:"collection_site"`
	StaffID         string    `db:"staff_id" json:"staff_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
