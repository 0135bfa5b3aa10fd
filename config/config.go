package config

import (
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Server struct {
		Port string `env:"PORT" envDefault:"5250"`

		// Origins allowed to call the API from a browser
		AllowedOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	}

	Database struct {
		Path string `env:"DB_PATH" envDefault:"database/hotelperf.db"`
	}

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Lexicon struct {
		// Empty means the embedded default lexicon
		Path string `env:"LEXICON_PATH"`
	}

	// BatchProcessing configuration
	BatchProcessing struct {
		// Number of review batches that can wait in the queue
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Initial delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}

	Scraping struct {
		Enabled bool `env:"SCRAPE_ENABLED" envDefault:"false"`

		// Standard five-field cron expression
		Schedule string `env:"SCRAPE_SCHEDULE" envDefault:"0 3 * * *"`

		Command       string        `env:"SCRAPER_COMMAND" envDefault:"node"`
		ScriptDir     string        `env:"SCRAPER_DIR" envDefault:"scraper"`
		MaxConcurrent int           `env:"SCRAPE_MAX_CONCURRENT" envDefault:"2"`
		Timeout       time.Duration `env:"SCRAPE_TIMEOUT" envDefault:"10m"`
	}

	// Scraping summaries are sent when both token and chat id are set
	Telegram struct {
		APIURL   string `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
		BotToken string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `env:"TELEGRAM_CHAT_ID"`
	}

	Geocoding struct {
		Enabled bool `env:"GEOCODE_ENABLED" envDefault:"false"`

		// Nominatim-compatible search endpoint
		URL      string `env:"GEOCODER_URL" envDefault:"https://nominatim.openstreetmap.org/search"`
		CacheDir string `env:"GEOCODE_CACHE_DIR"`
	}

	Report struct {
		CacheTTL time.Duration `env:"REPORT_CACHE_TTL" envDefault:"5m"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
