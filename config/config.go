package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// HTTP server configuration
	Server struct {
		// Port the API listens on
		Port string `env:"SERVER_PORT" envDefault:"5250"`
	}

	// Data locations
	Data struct {
		// Path to the sqlite database holding raw DVF transactions
		DatabasePath string `env:"DVF_DB_PATH" envDefault:"database/dvf.db"`

		// Directory used to cache downloaded boundary files
		CacheDir string `env:"DVF_CACHE_DIR" envDefault:"data/cache"`

		// URL of the yearly DVF dump (gzipped CSV)
		DatasetURL string `env:"DVF_DATASET_URL" envDefault:"https://files.data.gouv.fr/geo-dvf/latest/csv/2023/full.csv.gz"`

		// Boundary files used to build the location hierarchy
		RegionsGeoJSONURL     string `env:"DVF_REGIONS_URL" envDefault:"https://raw.githubusercontent.com/gregoiredavid/france-geojson/master/regions.geojson"`
		DepartmentsGeoJSONURL string `env:"DVF_DEPARTMENTS_URL" envDefault:"https://raw.githubusercontent.com/gregoiredavid/france-geojson/master/departements.geojson"`
		CommunesGeoJSONURL    string `env:"DVF_COMMUNES_URL" envDefault:"https://raw.githubusercontent.com/gregoiredavid/france-geojson/master/communes.geojson"`
	}

	// Aggregation configuration
	Aggregation struct {
		// Number of daily buckets the trailing mean smooths over
		MovingAverageWindow int `env:"AGG_MA_WINDOW" envDefault:"14"`

		// Default number of histogram bins
		HistogramBins int `env:"AGG_HISTOGRAM_BINS" envDefault:"40"`
	}

	// BatchIngest configuration
	BatchIngest struct {
		// Maximum number of transactions per batch pushed to the queue
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"500"`

		// Number of batches the queue buffers before Push fails
		QueueBufferSize int `env:"BATCH_QUEUE_SIZE" envDefault:"50"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
