package config

import "strings"

// Region identifies a French administrative region by its INSEE code.
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var regions = map[string]Region{
	"ARA": {Code: "84", Name: "Auvergne-Rhône-Alpes"},
	"BFC": {Code: "27", Name: "Bourgogne-Franche-Comté"},
	"BRE": {Code: "53", Name: "Bretagne"},
	"CVL": {Code: "24", Name: "Centre-Val de Loire"},
	"COR": {Code: "94", Name: "Corse"},
	"GES": {Code: "44", Name: "Grand Est"},
	"HDF": {Code: "32", Name: "Hauts-de-France"},
	"IDF": {Code: "11", Name: "Île-de-France"},
	"NOR": {Code: "28", Name: "Normandie"},
	"NAQ": {Code: "75", Name: "Nouvelle-Aquitaine"},
	"OCC": {Code: "76", Name: "Occitanie"},
	"PDL": {Code: "52", Name: "Pays de la Loire"},
	"PAC": {Code: "93", Name: "Provence-Alpes-Côte d'Azur"},
	"GUA": {Code: "01", Name: "Guadeloupe"},
	"MTQ": {Code: "02", Name: "Martinique"},
	"GUF": {Code: "03", Name: "Guyane"},
	"REU": {Code: "04", Name: "La Réunion"},
	"MAY": {Code: "06", Name: "Mayotte"},
}

// departmentRegions maps every department code to its region.
var departmentRegions = map[string]string{
	"01": "ARA", "03": "ARA", "07": "ARA", "15": "ARA", "26": "ARA", "38": "ARA",
	"42": "ARA", "43": "ARA", "63": "ARA", "69": "ARA", "73": "ARA", "74": "ARA",
	"21": "BFC", "25": "BFC", "39": "BFC", "58": "BFC", "70": "BFC", "71": "BFC",
	"89": "BFC", "90": "BFC",
	"22": "BRE", "29": "BRE", "35": "BRE", "56": "BRE",
	"18": "CVL", "28": "CVL", "36": "CVL", "37": "CVL", "41": "CVL", "45": "CVL",
	"2A": "COR", "2B": "COR",
	"08": "GES", "10": "GES", "51": "GES", "52": "GES", "54": "GES", "55": "GES",
	"57": "GES", "67": "GES", "68": "GES", "88": "GES",
	"02": "HDF", "59": "HDF", "60": "HDF", "62": "HDF", "80": "HDF",
	"75": "IDF", "77": "IDF", "78": "IDF", "91": "IDF", "92": "IDF", "93": "IDF",
	"94": "IDF", "95": "IDF",
	"14": "NOR", "27": "NOR", "50": "NOR", "61": "NOR", "76": "NOR",
	"16": "NAQ", "17": "NAQ", "19": "NAQ", "23": "NAQ", "24": "NAQ", "33": "NAQ",
	"40": "NAQ", "47": "NAQ", "64": "NAQ", "79": "NAQ", "86": "NAQ", "87": "NAQ",
	"09": "OCC", "11": "OCC", "12": "OCC", "30": "OCC", "31": "OCC", "32": "OCC",
	"34": "OCC", "46": "OCC", "48": "OCC", "65": "OCC", "66": "OCC", "81": "OCC",
	"82": "OCC",
	"04": "PAC", "05": "PAC", "06": "PAC", "13": "PAC", "83": "PAC", "84": "PAC",
	"44": "PDL", "49": "PDL", "53": "PDL", "72": "PDL", "85": "PDL",
	"971": "GUA", "972": "MTQ", "973": "GUF", "974": "REU", "976": "MAY",
}

// RegionForDepartment returns the region a department belongs to.
// The second return value is false for unknown department codes.
func RegionForDepartment(deptCode string) (Region, bool) {
	key, ok := departmentRegions[deptCode]
	if !ok {
		return Region{}, false
	}
	return regions[key], true
}

// DepartmentCode extracts the department code from a commune INSEE code.
// Overseas departments start with "97" and use three characters, Corsican
// communes start with "2A" or "2B", everything else uses the first two
// characters.
func DepartmentCode(communeCode string) string {
	if strings.HasPrefix(communeCode, "97") {
		if len(communeCode) < 3 {
			return communeCode
		}
		return communeCode[:3]
	}
	if len(communeCode) < 2 {
		return communeCode
	}
	return communeCode[:2]
}
