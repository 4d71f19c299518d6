package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/joseph-ayodele/cibil-extractor/constants"
)

// ConfigFileEnv names the environment variable pointing at an optional TOML file.
const ConfigFileEnv = "CIBIL_CONFIG"

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Extract  ExtractConfig
	Queue    QueueConfig
	Export   ExportConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // sqlite | postgres
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds listener addresses for the daemon
type ServerConfig struct {
	GRPCAddr string
	HTTPAddr string
	WatchDir string // optional folder fed into the processing queue
}

// ExtractConfig holds text extraction configuration
type ExtractConfig struct {
	Method    constants.ExtractMethod
	Pdftotext string
	Pdftoppm  string
	Tesseract string
	Lang      string // tesseract language
	DPI       int
	MaxPages  int
	Timeout   time.Duration
}

// QueueConfig sizes the async processing queue
type QueueConfig struct {
	Workers int
	Size    int
}

// ExportConfig holds export defaults
type ExportConfig struct {
	Dir string
}

// lookup resolves a key from the process environment first, then the config file.
type lookup func(key string) string

// LoadConfig loads configuration from defaults, the optional TOML file named by
// CIBIL_CONFIG, a .env file in the working directory and the environment.
// Later sources win.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	file := map[string]string{}
	if path := os.Getenv(ConfigFileEnv); path != "" {
		var err error
		if file, err = readConfigFile(path); err != nil {
			return nil, NewAppError(CodeConfig, "read "+path, err)
		}
	}
	get := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return file[key]
	}

	method, ok := constants.ParseExtractMethod(get("EXTRACT_METHOD"))
	if !ok {
		// keep the raw value so Validate can report it
		method = constants.ExtractMethod(get("EXTRACT_METHOD"))
	}

	return &Config{
		Database: DatabaseConfig{
			Driver:           strings.ToLower(getEnv(get, "DB_DRIVER", "sqlite")),
			DSN:              getEnv(get, "DB_URL", "cibil.db"),
			MaxConns:         getEnvAsInt32(get, "DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32(get, "DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration(get, "DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration(get, "DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration(get, "DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration(get, "DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv(get, "GRPC_ADDR", ":8080"),
			HTTPAddr: getEnv(get, "HTTP_ADDR", ":8081"),
			WatchDir: getEnv(get, "WATCH_DIR", ""),
		},
		Extract: ExtractConfig{
			Method:    method,
			Pdftotext: getEnv(get, "PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:  getEnv(get, "PDFTOPPM_BIN", "pdftoppm"),
			Tesseract: getEnv(get, "TESSERACT_BIN", "tesseract"),
			Lang:      getEnv(get, "OCR_LANG", "eng"),
			DPI:       getEnvAsInt(get, "OCR_DPI", 300),
			MaxPages:  getEnvAsInt(get, "OCR_MAX_PAGES", 0),
			Timeout:   getEnvAsDuration(get, "EXTRACT_TIMEOUT", 2*time.Minute),
		},
		Queue: QueueConfig{
			Workers: getEnvAsInt(get, "QUEUE_WORKERS", 4),
			Size:    getEnvAsInt(get, "QUEUE_SIZE", 256),
		},
		Export: ExportConfig{
			Dir: getEnv(get, "EXPORT_DIR", "."),
		},
	}, nil
}

// readConfigFile flattens a TOML document into KEY -> string. Keys may be
// written either flat (DB_URL = "...") or grouped ([db] url = "...").
func readConfigFile(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := toml.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	out := map[string]string{}
	flatten("", raw, out)
	return out, nil
}

func flatten(prefix string, m map[string]any, out map[string]string) {
	for k, v := range m {
		key := strings.ToUpper(k)
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Helper functions for configuration value parsing
func getEnv(get lookup, key, defaultValue string) string {
	if value := get(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(get lookup, key string, defaultValue int) int {
	if value := get(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(get lookup, key string, defaultValue int32) int32 {
	if value := get(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(get lookup, key string, defaultValue time.Duration) time.Duration {
	if value := get(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate reports every invalid setting at once as a CONFIG_ERROR.
func (c *Config) Validate() error {
	v := NewValidator().
		Field("DB_DRIVER", c.Database.Driver, Required, OneOf("sqlite", "postgres")).
		Field("DB_URL", c.Database.DSN, Required).
		Field("EXTRACT_METHOD", string(c.Extract.Method), OneOf(
			string(constants.ExtractAuto),
			string(constants.ExtractNative),
			string(constants.ExtractPdftotext),
			string(constants.ExtractOCR),
		)).
		Field("OCR_DPI", c.Extract.DPI, Range(72, 1200)).
		Field("QUEUE_WORKERS", c.Queue.Workers, Positive).
		Field("QUEUE_SIZE", c.Queue.Size, Positive)
	if c.Server.GRPCAddr == "" && c.Server.HTTPAddr == "" {
		v.Field("GRPC_ADDR", c.Server.GRPCAddr, Required)
	}
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
