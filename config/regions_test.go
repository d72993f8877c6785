package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDepartmentCode(t *testing.T) {
	tests := []struct {
		name        string
		communeCode string
		expected    string
	}{
		{
			name:        "Metropolitan commune",
			communeCode: "75056",
			expected:    "75",
		},
		{
			name:        "Corsican commune south",
			communeCode: "2A004",
			expected:    "2A",
		},
		{
			name:        "Corsican commune north",
			communeCode: "2B033",
			expected:    "2B",
		},
		{
			name:        "Overseas commune",
			communeCode: "97411",
			expected:    "974",
		},
		{
			name:        "Short code left untouched",
			communeCode: "9",
			expected:    "9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DepartmentCode(tt.communeCode))
		})
	}
}

func TestRegionForDepartment(t *testing.T) {
	tests := []struct {
		name         string
		deptCode     string
		expectedCode string
		expectedName string
		found        bool
	}{
		{
			name:         "Paris",
			deptCode:     "75",
			expectedCode: "11",
			expectedName: "Île-de-France",
			found:        true,
		},
		{
			name:         "Corse-du-Sud",
			deptCode:     "2A",
			expectedCode: "94",
			expectedName: "Corse",
			found:        true,
		},
		{
			name:         "La Réunion",
			deptCode:     "974",
			expectedCode: "04",
			expectedName: "La Réunion",
			found:        true,
		},
		{
			name:     "Unknown department",
			deptCode: "99",
			found:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, ok := RegionForDepartment(tt.deptCode)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.expectedCode, region.Code)
				assert.Equal(t, tt.expectedName, region.Name)
			}
		})
	}
}

func TestEveryDepartmentMapsToKnownRegion(t *testing.T) {
	for dept, key := range departmentRegions {
		_, ok := regions[key]
		assert.True(t, ok, "department %s maps to unknown region key %s", dept, key)
	}
}
