// Package blood holds the enumerations shared by every blood-bank entity:
// ABO/Rh blood types, donor gender, and product lifecycle status.
package blood

// Blood type values (ABO group + Rh factor).
const (
	APositive  = "A+"
	ANegative  = "A-"
	BPositive  = "B+"
	BNegative  = "B-"
	ABPositive = "AB+"
	ABNegative = "AB-"
	OPositive  = "O+"
	ONegative  = "O-"
)

// Types lists every valid blood type in a stable order.
var Types = []string{
	APositive, ANegative,
	BPositive, BNegative,
	ABPositive, ABNegative,
	OPositive, ONegative,
}

var validTypes = map[string]bool{
	APositive: true, ANegative: true,
	BPositive: true, BNegative: true,
	ABPositive: true, ABNegative: true,
	OPositive: true, ONegative: true,
}

// ValidType reports whether s is a recognized blood type.
func ValidType(s string) bool { return validTypes[s] }

// Donor gender values.
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
	GenderOther  = "OTHER"
)

var validGenders = map[string]bool{
	GenderMale: true, GenderFemale: true, GenderOther: true,
}

// ValidGender reports whether s is a recognized gender value.
func ValidGender(s string) bool { return validGenders[s] }

// Blood product status values.
const (
	StatusAvailable  = "AVAILABLE"
	StatusReserved   = "RESERVED"
	StatusExpired    = "EXPIRED"
	StatusUsed       = "USED"
	StatusQuarantine = "QUARANTINE"
)

var validStatuses = map[string]bool{
	StatusAvailable: true, StatusReserved: true, StatusExpired: true,
	StatusUsed: true, StatusQuarantine: true,
}

// ValidStatus reports whether s is a recognized product status.
func ValidStatus(s string) bool { return validStatuses[s] }
