package importer

import (
	"time"

	"github.com/PIO-VIA/blood-bank/internal/domain/blood"
	"github.com/PIO-VIA/blood-bank/internal/domain/donation"
	"github.com/PIO-VIA/blood-bank/internal/domain/donor"
	"github.com/PIO-VIA/blood-bank/internal/domain/product"
	"github.com/PIO-VIA/blood-bank/internal/domain/screening"
)

// Request DTOs for the import endpoints. Field-level bounds live here as
// validate tags and reject a whole payload with 422 before any record is
// processed; the store-dependent rules (referential, duplicate, cold-chain)
// are applied per record by Validator afterwards.

type DonorRequest struct {
	ID          string  `json:"id" validate:"required"`
	Age         int     `json:"age" validate:"required,gte=18,lte=65"`
	Gender      string  `json:"gender" validate:"required,gender"`
	Occupation  *string `json:"occupation"`
	Location    *string `json:"location"`
	ContactInfo *string `json:"contact_info"`
}

func (r *DonorRequest) ToModel() *donor.Donor {
	return &donor.Donor{
		ID:          r.ID,
		Age:         r.Age,
		Gender:      r.Gender,
		Occupation:  r.Occupation,
		Location:    r.Location,
		ContactInfo: r.ContactInfo,
	}
}

type DonationRequest struct {
	ID              string    `json:"id" validate:"required"`
	DonorID         string    `json:"donor_id" validate:"required"`
	DonationDate    time.Time `json:"donation_date" validate:"required"`
	BloodType       string    `json:"blood_type" validate:"required,blood_type"`
	VolumeCollected float64   `json:"volume_collected" validate:"required,gte=300,lte=500"`
	CollectionSite  string    `json:"collection_site" validate:"required"`
	StaffID         string    `json:"staff_id" validate:"required"`
}

func (r *DonationRequest) ToModel() *donation.Donation {
	return &donation.Donation{
		ID:              r.ID,
		DonorID:         r.DonorID,
		DonationDate:    r.DonationDate,
		BloodType:       r.BloodType,
		VolumeCollected: r.VolumeCollected,
		CollectionSite:  r.CollectionSite,
		StaffID:         r.StaffID,
	}
}

type ProductRequest struct {
	ID             string    `json:"id" validate:"required"`
	DonationID     string    `json:"donation_id" validate:"required"`
	BloodType      string    `json:"blood_type" validate:"required,blood_type"`
	ProductType    string    `json:"product_type" validate:"required"`
	Volume         float64   `json:"volume" validate:"required,gt=0"`
	CollectionDate time.Time `json:"collection_date" validate:"required"`
	ExpiryDate     time.Time `json:"expiry_date" validate:"required"`
	Status         string    `json:"status" validate:"omitempty,product_status"`
	Location       string    `json:"location" validate:"required"`
	Temperature    *float64  `json:"temperature"`
}

func (r *ProductRequest) ToModel() *product.Product {
	status := r.Status
	if status == "" {
		status = blood.StatusAvailable
	}
	return &product.Product{
		ID:             r.ID,
		DonationID:     r.DonationID,
		BloodType:      r.BloodType,
		ProductType:    r.ProductType,
		Volume:         r.Volume,
		CollectionDate: r.CollectionDate,
		ExpiryDate:     r.ExpiryDate,
		Status:         status,
		Location:       r.Location,
		Temperature:    r.Temperature,
	}
}

type ScreeningRequest struct {
	DonorID         string    `json:"donor_id" validate:"required"`
	BloodType       string    `json:"blood_type" validate:"required,blood_type"`
	HemoglobinLevel float64   `json:"hemoglobin_level" validate:"required,gte=12,lte=20"`
	HIVTest         bool      `json:"hiv_test"`
	HepatitisBTest  bool      `json:"hepatitis_b_test"`
	HepatitisCTest  bool      `json:"hepatitis_c_test"`
	SyphilisTest    bool      `json:"syphilis_test"`
	ScreeningDate   time.Time `json:"screening_date" validate:"required"`
}

func (r *ScreeningRequest) ToModel() *screening.Result {
	return &screening.Result{
		DonorID:         r.DonorID,
		BloodType:       r.BloodType,
		HemoglobinLevel: r.HemoglobinLevel,
		HIVTest:         r.HIVTest,
		HepatitisBTest:  r.HepatitisBTest,
		HepatitisCTest:  r.HepatitisCTest,
		SyphilisTest:    r.SyphilisTest,
		ScreeningDate:   r.ScreeningDate,
	}
}
