package geography

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"foncier/server/config"
)

// Commune is a leaf of the location hierarchy.
type Commune struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Department groups the communes sharing a department code.
type Department struct {
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Communes []Commune `json:"communes"`
}

// RegionNode is the top of the hierarchy served to the location selector.
// Center is the [latitude, longitude] the map pans to when the region is
// selected.
type RegionNode struct {
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	Center      []float64    `json:"center"`
	Departments []Department `json:"departments"`
}

// Hierarchy is the full region > department > commune tree.
type Hierarchy struct {
	Regions []RegionNode `json:"regions"`
}

// BuildHierarchy assembles the location tree from the three boundary
// files. Departments whose region is unknown are logged and skipped
// rather than failing the whole build.
func BuildHierarchy(regionsGeoJSON, departmentsGeoJSON, communesGeoJSON []byte, logger *logrus.Logger) (*Hierarchy, error) {
	regionsFC, err := geojson.UnmarshalFeatureCollection(regionsGeoJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regions boundary file: %w", err)
	}
	departmentsFC, err := geojson.UnmarshalFeatureCollection(departmentsGeoJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to parse departments boundary file: %w", err)
	}
	communesFC, err := geojson.UnmarshalFeatureCollection(communesGeoJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to parse communes boundary file: %w", err)
	}

	regionNames := make(map[string]string, len(regionsFC.Features))
	regionCenters := make(map[string][]float64, len(regionsFC.Features))
	for _, f := range regionsFC.Features {
		code := propString(f, "code")
		regionNames[code] = propString(f, "nom")
		lat, lon := Centroid(&geojson.FeatureCollection{Features: []*geojson.Feature{f}})
		regionCenters[code] = []float64{lat, lon}
	}

	nodes := make(map[string]*RegionNode)
	departments := make(map[string]*Department)
	regionDepts := make(map[string][]string)
	var skipped int

	for _, f := range departmentsFC.Features {
		deptCode := propString(f, "code")
		deptName := propString(f, "nom")

		region, ok := config.RegionForDepartment(deptCode)
		if !ok {
			skipped++
			continue
		}

		if _, ok := nodes[region.Code]; !ok {
			name := regionNames[region.Code]
			if name == "" {
				name = region.Name
			}
			center := regionCenters[region.Code]
			if center == nil {
				center = []float64{franceCenter[0], franceCenter[1]}
			}
			nodes[region.Code] = &RegionNode{Code: region.Code, Name: name, Center: center}
		}

		departments[deptCode] = &Department{Code: deptCode, Name: deptName}
		regionDepts[region.Code] = append(regionDepts[region.Code], deptCode)
	}

	for _, f := range communesFC.Features {
		communeCode := propString(f, "code")
		deptCode := config.DepartmentCode(communeCode)
		dept, ok := departments[deptCode]
		if !ok {
			skipped++
			continue
		}
		dept.Communes = append(dept.Communes, Commune{
			Code: communeCode,
			Name: propString(f, "nom"),
		})
	}

	if skipped > 0 && logger != nil {
		logger.WithField("skipped", skipped).Warn("Some boundary features had no known region")
	}

	h := &Hierarchy{Regions: make([]RegionNode, 0, len(nodes))}
	for code, node := range nodes {
		depts := make([]Department, 0, len(regionDepts[code]))
		for _, deptCode := range regionDepts[code] {
			dept := departments[deptCode]
			sort.Slice(dept.Communes, func(i, j int) bool {
				return dept.Communes[i].Name < dept.Communes[j].Name
			})
			depts = append(depts, *dept)
		}
		sort.Slice(depts, func(i, j int) bool { return depts[i].Code < depts[j].Code })
		node.Departments = depts
		h.Regions = append(h.Regions, *node)
	}
	sort.Slice(h.Regions, func(i, j int) bool { return h.Regions[i].Code < h.Regions[j].Code })

	return h, nil
}

func propString(f *geojson.Feature, key string) string {
	if f.Properties == nil {
		return ""
	}
	if s, ok := f.Properties[key].(string); ok {
		return s
	}
	return ""
}

// franceCenter is used when a feature collection carries no polygon
// coordinates at all.
var franceCenter = [2]float64{46.603354, 1.888334}

// Centroid returns the mean vertex position (latitude, longitude) of all
// polygons in the collection, used to center the map on a selection.
func Centroid(fc *geojson.FeatureCollection) (float64, float64) {
	var latSum, lonSum float64
	var n int

	addRing := func(ring orb.Ring) {
		for _, pt := range ring {
			lonSum += pt.Lon()
			latSum += pt.Lat()
			n++
		}
	}

	for _, f := range fc.Features {
		switch geom := f.Geometry.(type) {
		case orb.Polygon:
			for _, ring := range geom {
				addRing(ring)
			}
		case orb.MultiPolygon:
			for _, poly := range geom {
				for _, ring := range poly {
					addRing(ring)
				}
			}
		}
	}

	if n == 0 {
		return franceCenter[0], franceCenter[1]
	}
	return latSum / float64(n), lonSum / float64(n)
}
