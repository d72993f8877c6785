// Package dvf fetches the public DVF dataset and the French boundary
// files. It is the only component doing network or disk I/O on the data
// path; everything downstream works on in-memory records.
package dvf

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/sirupsen/logrus"

	"foncier/server/internal/database"
	"foncier/server/internal/loader"
)

type Downloader struct {
	logger   *logrus.Logger
	cacheDir string
	client   *http.Client
}

func NewDownloader(logger *logrus.Logger, cacheDir string) *Downloader {
	// Create cache directory if it doesn't exist
	os.MkdirAll(cacheDir, 0755)

	return &Downloader{
		logger:   logger,
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: 10 * time.Minute},
	}
}

// FetchDataset downloads the gzipped DVF CSV dump and parses it into raw
// records, dropping duplicate parcels (the dump repeats a mutation once
// per lot). Returns the column names alongside the records so the
// cleaning step can check the schema.
func (d *Downloader) FetchDataset(url string) ([]string, []loader.RawRecord, error) {
	d.logger.WithField("url", url).Info("Downloading DVF dataset")

	resp, err := d.client.Get(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("dataset download returned status %d", resp.StatusCode)
	}

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()

	return d.parseCSV(gz)
}

// parseCSV loads the CSV into a dataframe with every column typed as a
// string; coercion is the cleaning step's job, not the reader's.
func (d *Downloader) parseCSV(r io.Reader) ([]string, []loader.RawRecord, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(map[string]series.Type{
			loader.ColDepartment: series.String,
			loader.ColCommune:    series.String,
			loader.ColPrice:      series.String,
			loader.ColArea:       series.String,
		}),
	)
	if df.Err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", df.Err)
	}

	columns := df.Names()
	records := make([]loader.RawRecord, 0, df.Nrow())
	seenParcels := make(map[string]bool, df.Nrow())

	for _, row := range df.Maps() {
		rec := make(loader.RawRecord, len(row))
		for col, val := range row {
			if val == nil {
				continue
			}
			s := fmt.Sprint(val)
			if s == "NaN" {
				continue
			}
			rec[col] = s
		}

		if parcel := rec[loader.ColParcelID]; parcel != "" {
			if seenParcels[parcel] {
				continue
			}
			seenParcels[parcel] = true
		}
		records = append(records, rec)
	}

	d.logger.WithFields(logrus.Fields{
		"rows":    len(records),
		"columns": len(columns),
	}).Info("Parsed DVF dataset")

	return columns, records, nil
}

// FetchGeoJSON returns the boundary file with the given name, downloading
// it once and serving it from the cache directory afterwards.
func (d *Downloader) FetchGeoJSON(name, url string) ([]byte, error) {
	cachePath := filepath.Join(d.cacheDir, name+".geojson")

	if data, err := os.ReadFile(cachePath); err == nil {
		d.logger.WithField("path", cachePath).Debug("Loaded boundary file from cache")
		return data, nil
	}

	d.logger.WithField("url", url).Info("Downloading boundary file")
	resp, err := d.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("boundary download for %s returned status %d", name, resp.StatusCode)
	}

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := os.WriteFile(cachePath, buf, 0644); err != nil {
		d.logger.WithError(err).Warnf("Could not cache boundary file %s", name)
	}

	return buf, nil
}

// ToRawTransactions converts parsed records into the persistence shape
// consumed by the batch processor.
func ToRawTransactions(records []loader.RawRecord) []*database.RawTransaction {
	out := make([]*database.RawTransaction, 0, len(records))
	for _, rec := range records {
		out = append(out, &database.RawTransaction{
			MutationID:   rec[loader.ColMutationID],
			ParcelID:     rec[loader.ColParcelID],
			Date:         rec[loader.ColDate],
			Price:        rec[loader.ColPrice],
			BuiltArea:    rec[loader.ColArea],
			PropertyType: rec[loader.ColType],
			Department:   rec[loader.ColDepartment],
			Commune:      rec[loader.ColCommune],
			Latitude:     rec[loader.ColLatitude],
			Longitude:    rec[loader.ColLongitude],
		})
	}
	return out
}
