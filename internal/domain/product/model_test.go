package product

import "testing"

func temp(v float64) *float64 { return &v }

func TestColdChainViolation(t *testing.T) {
	tests := []struct {
		name        string
		productType string
		temperature *float64
		want        bool
	}{
		{"whole blood in range", TypeWholeBlood, temp(4), false},
		{"whole blood too warm", TypeWholeBlood, temp(7), true},
		{"whole blood too cold", TypeWholeBlood, temp(1.5), true},
		{"red cells lower bound", TypeRedBloodCells, temp(2), false},
		{"red cells upper bound", TypeRedBloodCells, temp(6), false},
		{"plasma frozen", TypePlasma, temp(-20), false},
		{"plasma at threshold", TypePlasma, temp(-18), true},
		{"plasma too warm", TypePlasma, temp(-10), true},
		{"case-insensitive type", "whole blood", temp(8), true},
		{"no reading", TypeWholeBlood, nil, false},
		{"unknown product type", "Platelets", temp(30), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{ProductType: tt.productType, Temperature: tt.temperature}
			if got := p.ColdChainViolation(); got != tt.want {
				t.Errorf("ColdChainViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}
