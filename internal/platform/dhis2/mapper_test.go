package dhis2

import (
	"reflect"
	"testing"
	"time"

	"github.com/PIO-VIA/blood-bank/internal/domain/donation"
	"github.com/PIO-VIA/blood-bank/internal/domain/product"
)

func TestMapDonation(t *testing.T) {
	d := &donation.Donation{
		ID:              "DON_001",
		DonorID:         "DONOR_001",
		DonationDate:    time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
		BloodType:       "O+",
		VolumeCollected: 450,
	}

	values := MapDonation(d, "blood_bank")
	if len(values) != 2 {
		t.Fatalf("expected 2 data values, got %d", len(values))
	}

	for i, v := range values {
		if v.Period != "20250314" {
			t.Errorf("value %d: expected period 20250314, got %s", i, v.Period)
		}
		if v.OrgUnit != "BLOOD_BANK_ORG_UNIT_ID" {
			t.Errorf("value %d: expected mapped org unit, got %s", i, v.OrgUnit)
		}
	}

	if values[0].Value != "O+" {
		t.Errorf("expected blood type value O+, got %s", values[0].Value)
	}
	if values[1].Value != "450" {
		t.Errorf("expected volume value 450, got %s", values[1].Value)
	}
}

func TestMapDonation_Idempotent(t *testing.T) {
	d := &donation.Donation{
		ID:              "DON_002",
		DonationDate:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		BloodType:       "AB-",
		VolumeCollected: 387.5,
	}

	first := MapDonation(d, "blood_bank")
	second := MapDonation(d, "blood_bank")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("mapping is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestResolveOrgUnit_PassthroughUnknown(t *testing.T) {
	if got := ResolveOrgUnit("SOME_RAW_UID"); got != "SOME_RAW_UID" {
		t.Errorf("expected passthrough for unknown code, got %s", got)
	}
	if got := ResolveOrgUnit("collection_site_1"); got != "COLLECTION_SITE_1_ORG_UNIT_ID" {
		t.Errorf("expected mapped id for known code, got %s", got)
	}
}

func TestMapInventory_SortedAndDeterministic(t *testing.T) {
	products := []*product.Product{
		{BloodType: "O+", Status: "AVAILABLE"},
		{BloodType: "A+", Status: "RESERVED"},
		{BloodType: "A+", Status: "AVAILABLE"},
		{BloodType: "A+", Status: "AVAILABLE"},
		{BloodType: "O+", Status: "AVAILABLE"},
	}

	counts := GroupInventory(products)
	values := MapInventory(counts, "202503", "blood_bank")

	if len(values) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(values))
	}

	// Sorted by blood type, then status.
	wantCombos := []string{"A+_AVAILABLE_COMBO_ID", "A+_RESERVED_COMBO_ID", "O+_AVAILABLE_COMBO_ID"}
	wantCounts := []string{"2", "1", "2"}
	for i, v := range values {
		if v.AttributeOptionCombo != wantCombos[i] {
			t.Errorf("value %d: expected combo %s, got %s", i, wantCombos[i], v.AttributeOptionCombo)
		}
		if v.Value != wantCounts[i] {
			t.Errorf("value %d: expected count %s, got %s", i, wantCounts[i], v.Value)
		}
		if v.Period != "202503" {
			t.Errorf("value %d: expected monthly period 202503, got %s", i, v.Period)
		}
	}

	again := MapInventory(GroupInventory(products), "202503", "blood_bank")
	if !reflect.DeepEqual(values, again) {
		t.Error("inventory mapping is not deterministic across runs")
	}
}

func TestMapInventory_Empty(t *testing.T) {
	values := MapInventory(map[InventoryGroup]int{}, "202503", "blood_bank")
	if len(values) != 0 {
		t.Errorf("expected no data values for empty inventory, got %d", len(values))
	}
}
