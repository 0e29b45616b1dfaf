package dhis2

import (
	"sort"
	"strconv"

	"github.com/PIO-VIA/blood-bank/internal/domain/donation"
	"github.com/PIO-VIA/blood-bank/internal/domain/product"
)

// DataValue is one tuple in the external system's generic data model.
type DataValue struct {
	DataElement          string `json:"dataElement"`
	Period               string `json:"period"`
	OrgUnit              string `json:"orgUnit"`
	Value                string `json:"value"`
	AttributeOptionCombo string `json:"attributeOptionCombo,omitempty"`
}

// Static mapping tables configured against the target DHIS2 instance.
// These are fixed at build time, not runtime-configurable.
var dataElements = map[string]string{
	"blood_type":       "BLOOD_TYPE_DATA_ELEMENT_ID",
	"volume_collected": "VOLUME_COLLECTED_DATA_ELEMENT_ID",
	"inventory_count":  "BLOOD_INVENTORY_DATA_ELEMENT_ID",
}

var orgUnits = map[string]string{
	"blood_bank":        "BLOOD_BANK_ORG_UNIT_ID",
	"collection_site_1": "COLLECTION_SITE_1_ORG_UNIT_ID",
	"collection_site_2": "COLLECTION_SITE_2_ORG_UNIT_ID",
}

// ResolveOrgUnit maps a local site code to its DHIS2 org-unit identifier.
// Unknown codes pass through unchanged so pre-resolved identifiers work too.
func ResolveOrgUnit(code string) string {
	if id, ok := orgUnits[code]; ok {
		return id
	}
	return code
}

// MapDonation translates one donation into its DHIS2 data values: a blood
// type tuple and a volume tuple, keyed by the donation date as an 8-digit
// daily period. The translation is pure and deterministic, which is what
// makes repeated sync runs safely re-postable.
func MapDonation(d *donation.Donation, orgUnit string) []DataValue {
	period := d.DonationDate.Format("20060102")
	ou := ResolveOrgUnit(orgUnit)

	return []DataValue{
		{
			DataElement: dataElements["blood_type"],
			Period:      period,
			OrgUnit:     ou,
			Value:       d.BloodType,
		},
		{
			DataElement: dataElements["volume_collected"],
			Period:      period,
			OrgUnit:     ou,
			Value:       strconv.FormatFloat(d.VolumeCollected, 'f', -1, 64),
		},
	}
}

// InventoryGroup is the disaggregation key for inventory counts.
type InventoryGroup struct {
	BloodType string
	Status    string
}

// GroupInventory counts products per (blood type, status) group.
func GroupInventory(products []*product.Product) map[InventoryGroup]int {
	counts := make(map[InventoryGroup]int)
	for _, p := range products {
		counts[InventoryGroup{BloodType: p.BloodType, Status: p.Status}]++
	}
	return counts
}

// MapInventory translates grouped inventory counts into DHIS2 data values:
// one tuple per group, value = count, disaggregated through the attribute
// option combo. Groups are emitted in sorted order so the output is
// byte-identical across runs over the same input.
func MapInventory(counts map[InventoryGroup]int, period, orgUnit string) []DataValue {
	groups := make([]InventoryGroup, 0, len(counts))
	for g := range counts {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].BloodType != groups[j].BloodType {
			return groups[i].BloodType < groups[j].BloodType
		}
		return groups[i].Status < groups[j].Status
	})

	ou := ResolveOrgUnit(orgUnit)
	values := make([]DataValue, 0, len(groups))
	for _, g := range groups {
		values = append(values, DataValue{
			DataElement:          dataElements["inventory_count"],
			Period:               period,
			OrgUnit:              ou,
			Value:                strconv.Itoa(counts[g]),
			AttributeOptionCombo: g.BloodType + "_" + g.Status + "_COMBO_ID",
		})
	}
	return values
}
