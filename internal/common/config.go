package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	Scan    ScanConfig
	Extract ExtractConfig
	Output  OutputConfig
}

// ScanConfig holds engine-related configuration
type ScanConfig struct {
	Workers   int           // documents extracted in parallel; 1 = sequential
	Normalize bool          // collapse tabs/multi-spaces in page text before matching
	Timeout   time.Duration // 0 = no timeout
}

// ExtractConfig holds text-extraction configuration
type ExtractConfig struct {
	Pdftotext     string
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	DPI           int
	MaxPages      int // 0 = no limit
	OCRFallback   bool
}

// OutputConfig holds output-related configuration
type OutputConfig struct {
	MetricsFile string
	SkipHidden  bool
	Dedup       bool // scan identical files once, under the first name
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Workers:   getEnvAsInt("SCANNER_WORKERS", 1),
			Normalize: getEnvAsBool("SCANNER_NORMALIZE", false),
			Timeout:   getEnvAsDuration("SCANNER_TIMEOUT", 0),
		},
		Extract: ExtractConfig{
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MaxPages:      getEnvAsInt("SCANNER_MAX_PAGES", 0),
			OCRFallback:   getEnvAsBool("OCR_FALLBACK", false),
		},
		Output: OutputConfig{
			MetricsFile: getEnv("SCANNER_METRICS_FILE", ""),
			SkipHidden:  getEnvAsBool("SCANNER_SKIP_HIDDEN", true),
			Dedup:       getEnvAsBool("SCANNER_DEDUP", false),
		},
	}
}

// fileConfig mirrors the TOML layout; nil fields leave the current value alone.
type fileConfig struct {
	Scan struct {
		Workers   *int    `toml:"workers"`
		Normalize *bool   `toml:"normalize"`
		Timeout   *string `toml:"timeout"`
	} `toml:"scan"`
	Extract struct {
		Pdftotext     *string `toml:"pdftotext"`
		Pdftoppm      *string `toml:"pdftoppm"`
		Tesseract     *string `toml:"tesseract"`
		TesseractLang *string `toml:"tesseract_lang"`
		TessdataDir   *string `toml:"tessdata_dir"`
		DPI           *int    `toml:"dpi"`
		MaxPages      *int    `toml:"max_pages"`
		OCRFallback   *bool   `toml:"ocr_fallback"`
	} `toml:"extract"`
	Output struct {
		MetricsFile *string `toml:"metrics_file"`
		SkipHidden  *bool   `toml:"skip_hidden"`
		Dedup       *bool   `toml:"dedup"`
	} `toml:"output"`
}

// LoadConfigFile overlays the TOML file at path onto c. The document is checked
// against the config schema before any value is applied.
func (c *Config) LoadConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return WrapError(err, "read config")
	}
	return c.ApplyTOML(data)
}

// ApplyTOML overlays raw TOML onto c.
func (c *Config) ApplyTOML(data []byte) error {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return NewAppError("CONFIG_ERROR", "decode toml", wrapSentinel(ErrInvalidInput, err))
	}
	if err := ValidateConfigDocument(raw); err != nil {
		return NewAppError("CONFIG_ERROR", "config does not match schema", wrapSentinel(ErrValidation, err))
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return NewAppError("CONFIG_ERROR", "decode toml", wrapSentinel(ErrInvalidInput, err))
	}

	setInt(&c.Scan.Workers, fc.Scan.Workers)
	setBool(&c.Scan.Normalize, fc.Scan.Normalize)
	if fc.Scan.Timeout != nil {
		d, err := time.ParseDuration(*fc.Scan.Timeout)
		if err != nil {
			return NewAppError("CONFIG_ERROR", "scan.timeout", wrapSentinel(ErrInvalidInput, err))
		}
		c.Scan.Timeout = d
	}
	setString(&c.Extract.Pdftotext, fc.Extract.Pdftotext)
	setString(&c.Extract.Pdftoppm, fc.Extract.Pdftoppm)
	setString(&c.Extract.Tesseract, fc.Extract.Tesseract)
	setString(&c.Extract.TesseractLang, fc.Extract.TesseractLang)
	setString(&c.Extract.TessdataDir, fc.Extract.TessdataDir)
	setInt(&c.Extract.DPI, fc.Extract.DPI)
	setInt(&c.Extract.MaxPages, fc.Extract.MaxPages)
	setBool(&c.Extract.OCRFallback, fc.Extract.OCRFallback)
	setString(&c.Output.MetricsFile, fc.Output.MetricsFile)
	setBool(&c.Output.SkipHidden, fc.Output.SkipHidden)
	setBool(&c.Output.Dedup, fc.Output.Dedup)
	return nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Scan.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "workers must be positive", ErrInvalidInput)
	}
	if c.Extract.DPI <= 0 {
		return NewAppError("CONFIG_ERROR", "dpi must be positive", ErrInvalidInput)
	}
	if c.Extract.MaxPages < 0 {
		return NewAppError("CONFIG_ERROR", "max_pages must not be negative", ErrInvalidInput)
	}
	if strings.TrimSpace(c.Extract.Pdftotext) == "" {
		return NewAppError("CONFIG_ERROR", "pdftotext binary is required", ErrInvalidInput)
	}
	return nil
}

func wrapSentinel(sentinel, cause error) error {
	return fmt.Errorf("%w: %w", sentinel, cause)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
