package geography

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var regionsJSON = []byte(`{"type":"FeatureCollection","features":[
	{"type":"Feature","properties":{"code":"11","nom":"Île-de-France"},"geometry":{"type":"Polygon","coordinates":[[[2,48],[3,48],[3,49],[2,48]]]}},
	{"type":"Feature","properties":{"code":"94","nom":"Corse"},"geometry":{"type":"Polygon","coordinates":[[[9,41],[9.5,41],[9.5,43],[9,41]]]}}
]}`)

var departmentsJSON = []byte(`{"type":"FeatureCollection","features":[
	{"type":"Feature","properties":{"code":"75","nom":"Paris"},"geometry":{"type":"Polygon","coordinates":[[[2.2,48.8],[2.4,48.8],[2.4,48.9],[2.2,48.8]]]}},
	{"type":"Feature","properties":{"code":"77","nom":"Seine-et-Marne"},"geometry":{"type":"Polygon","coordinates":[[[2.5,48.4],[3.5,48.4],[3.5,49],[2.5,48.4]]]}},
	{"type":"Feature","properties":{"code":"2A","nom":"Corse-du-Sud"},"geometry":{"type":"Polygon","coordinates":[[[8.5,41.3],[9.3,41.3],[9.3,42],[8.5,41.3]]]}}
]}`)

var communesJSON = []byte(`{"type":"FeatureCollection","features":[
	{"type":"Feature","properties":{"code":"75056","nom":"Paris"},"geometry":null},
	{"type":"Feature","properties":{"code":"77288","nom":"Meaux"},"geometry":null},
	{"type":"Feature","properties":{"code":"77014","nom":"Avon"},"geometry":null},
	{"type":"Feature","properties":{"code":"2A004","nom":"Ajaccio"},"geometry":null}
]}`)

func TestBuildHierarchy(t *testing.T) {
	h, err := BuildHierarchy(regionsJSON, departmentsJSON, communesJSON, nil)
	require.NoError(t, err)
	require.Len(t, h.Regions, 2)

	idf := h.Regions[0]
	assert.Equal(t, "11", idf.Code)
	assert.Equal(t, "Île-de-France", idf.Name)

	// Center is the mean vertex of the region's boundary polygon
	require.Len(t, idf.Center, 2)
	assert.InDelta(t, 48.25, idf.Center[0], 1e-9)
	assert.InDelta(t, 2.5, idf.Center[1], 1e-9)

	require.Len(t, idf.Departments, 2)
	assert.Equal(t, "75", idf.Departments[0].Code)
	assert.Equal(t, "77", idf.Departments[1].Code)

	// Communes are sorted by name within their department
	seineEtMarne := idf.Departments[1]
	require.Len(t, seineEtMarne.Communes, 2)
	assert.Equal(t, "Avon", seineEtMarne.Communes[0].Name)
	assert.Equal(t, "Meaux", seineEtMarne.Communes[1].Name)

	corse := h.Regions[1]
	assert.Equal(t, "94", corse.Code)
	require.Len(t, corse.Center, 2)
	assert.InDelta(t, 41.5, corse.Center[0], 1e-9)
	assert.InDelta(t, 9.25, corse.Center[1], 1e-9)
	require.Len(t, corse.Departments, 1)
	assert.Equal(t, "2A", corse.Departments[0].Code)
	require.Len(t, corse.Departments[0].Communes, 1)
	assert.Equal(t, "Ajaccio", corse.Departments[0].Communes[0].Name)
}

func TestBuildHierarchySkipsUnknownDepartments(t *testing.T) {
	badDepartments := []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"code":"99","nom":"Nulle Part"},"geometry":null}
	]}`)

	h, err := BuildHierarchy(regionsJSON, badDepartments, communesJSON, nil)
	require.NoError(t, err)
	assert.Empty(t, h.Regions)
}

func TestBuildHierarchyCenterFallsBackWithoutBoundary(t *testing.T) {
	bareRegions := []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"code":"11","nom":"Île-de-France"},"geometry":null}
	]}`)

	h, err := BuildHierarchy(bareRegions, departmentsJSON, communesJSON, nil)
	require.NoError(t, err)
	require.NotEmpty(t, h.Regions)

	idf := h.Regions[0]
	require.Len(t, idf.Center, 2)
	assert.InDelta(t, franceCenter[0], idf.Center[0], 1e-9)
	assert.InDelta(t, franceCenter[1], idf.Center[1], 1e-9)
}

func TestBuildHierarchyRejectsMalformedInput(t *testing.T) {
	_, err := BuildHierarchy([]byte("not geojson"), departmentsJSON, communesJSON, nil)
	assert.Error(t, err)
}

func TestCentroid(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Polygon{{{2, 48}, {4, 48}, {4, 50}, {2, 50}}}))

	lat, lon := Centroid(fc)
	assert.InDelta(t, 49.0, lat, 1e-9)
	assert.InDelta(t, 3.0, lon, 1e-9)
}

func TestCentroidFallsBackToFranceCenter(t *testing.T) {
	lat, lon := Centroid(geojson.NewFeatureCollection())
	assert.InDelta(t, 46.603354, lat, 1e-9)
	assert.InDelta(t, 1.888334, lon, 1e-9)
}
