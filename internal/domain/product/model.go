package product

import (
	"strings"
	"time"
)

// Product types with cold-chain storage requirements.
const (
	TypeWholeBlood    = "Whole Blood"
	TypeRedBloodCells = "Red Blood Cells"
	TypePlasma        = "Plasma"
)

// Product maps to the blood_products table. A product derives from exactly
// one donation; its blood type must match the source donation and its volume
// must not exceed what was collected.
type Product struct {
	ID             string    `db:"id" json:"id"`
	DonationID     string    `db:"donation_id" json:"donation_id"`
	BloodType      string    `db:"blood_type" json:"blood_type"`
	ProductType    string    `db:"product_type" json:"product_type"`
	Volume         float64   `db:"volume" json:"volume"`
	CollectionDate time.Time `db:"collection_date" json:"collection_date"`
	ExpiryDate     time.Time `db:"expiry_date" json:"expiry_date"`
	Status         string    `db:"status" json:"status"`
	Location       string    `db:"location" json:"location"`
	Temperature    *float64  `db:"temperature" json:"temperature,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ColdChainViolation reports whether the product's recorded temperature is
// outside the storage range for its product type. Products without a
// temperature reading, and product types without a cold-chain rule, never
// violate.
func (p *Product) ColdChainViolation() bool {
	if p.Temperature == nil {
		return false
	}
	t := *p.Temperature
	switch {
	case strings.EqualFold(p.ProductType, TypeWholeBlood), strings.EqualFold(p.ProductType, TypeRedBloodCells):
		return t < 2 || t > 6
	case strings.EqualFold(p.ProductType, TypePlasma):
		return t >= -18
	default:
		return false
	}
}
