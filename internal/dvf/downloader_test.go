package dvf

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foncier/server/internal/loader"
)

const sampleCSV = `id_mutation,id_parcelle,date_mutation,valeur_fonciere,surface_reelle_bati,type_local,code_departement,code_commune,latitude,longitude
2023-1,750560000A0001,2023-03-15,300000,100,Appartement,75,75056,48.85,2.35
2023-1,750560000A0001,2023-03-15,300000,40,Dépendance,75,75056,48.85,2.35
2023-2,690010000B0002,2023-03-16,150000,50,Maison,69,69001,45.76,4.83
`

func TestParseCSVDeduplicatesParcels(t *testing.T) {
	d := NewDownloader(logrus.New(), t.TempDir())

	columns, records, err := d.parseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Contains(t, columns, loader.ColPrice)
	assert.Contains(t, columns, loader.ColArea)

	// The duplicated parcel is kept once, first occurrence wins.
	require.Len(t, records, 2)
	assert.Equal(t, "2023-1", records[0][loader.ColMutationID])
	assert.Equal(t, "Appartement", records[0][loader.ColType])
	assert.Equal(t, "75056", records[0][loader.ColCommune])
	assert.Equal(t, "2023-2", records[1][loader.ColMutationID])
}

func TestParseCSVFeedsClean(t *testing.T) {
	d := NewDownloader(logrus.New(), t.TempDir())

	columns, records, err := d.parseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	table, report, err := loader.Clean(columns, records, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 0, report.Rejected)
	assert.Equal(t, 3000.0, table.Rows[0].PricePerM2)
}

func TestToRawTransactions(t *testing.T) {
	rec := loader.RawRecord{
		loader.ColMutationID: "2023-1",
		loader.ColParcelID:   "750560000A0001",
		loader.ColDate:       "2023-03-15",
		loader.ColPrice:      "300000",
		loader.ColArea:       "100",
		loader.ColType:       "Appartement",
		loader.ColDepartment: "75",
		loader.ColCommune:    "75056",
	}

	batch := ToRawTransactions([]loader.RawRecord{rec})
	require.Len(t, batch, 1)
	assert.Equal(t, "2023-1", batch[0].MutationID)
	assert.Equal(t, "750560000A0001", batch[0].ParcelID)
	assert.Equal(t, "300000", batch[0].Price)
	assert.Equal(t, "75056", batch[0].Commune)

	// Round-trips back into the raw record shape
	assert.Equal(t, rec[loader.ColPrice], batch[0].Record()[loader.ColPrice])
}

func TestFetchGeoJSONUsesCache(t *testing.T) {
	payload := `{"type":"FeatureCollection","features":[]}`
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(payload))
	}))
	defer server.Close()

	cacheDir := t.TempDir()
	d := NewDownloader(logrus.New(), cacheDir)

	data, err := d.FetchGeoJSON("regions", server.URL)
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))
	assert.Equal(t, 1, hits)

	// Second fetch is served from disk
	data, err = d.FetchGeoJSON("regions", server.URL)
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))
	assert.Equal(t, 1, hits)

	_, err = os.Stat(cacheDir + "/regions.geojson")
	assert.NoError(t, err)
}
