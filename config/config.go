package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"photodup/version"
)

type Config struct {
	RootPath            string   `json:"root_path"`
	Mode                string   `json:"mode"`
	OutputFormat        string   `json:"output_format"`
	OutputFileName      string   `json:"output_file_name"`
	ConcurrencyLevel    int      `json:"concurrency_level"`
	NiceLevel           string   `json:"nice_level"`
	HashAlgorithm       string   `json:"hash_algorithm"`
	HashReadMode        string   `json:"hash_read_mode"`
	MmapMinSize         int64    `json:"mmap_min_size"`
	VerifyContent       bool     `json:"verify_content"`
	SizePrefilter       bool     `json:"size_prefilter"`
	RawExtensions       []string `json:"raw_extensions"`
	JPEGExtensions      []string `json:"jpeg_extensions"`
	SniffTypes          bool     `json:"sniff_types"`
	IncludePatterns     []string `json:"include_patterns"`
	ExcludePatterns     []string `json:"exclude_patterns"`
	SkipHidden          bool     `json:"skip_hidden"`
	MetadataMaxBytes    int64    `json:"metadata_max_bytes"`
	AllowEmptySignature bool     `json:"allow_empty_signature"`
	FolderCensus        bool     `json:"folder_census"`
	LogLevel            string   `json:"log_level"`
	MaxIOPerSecond      int      `json:"max_io_per_second"`
	SkipCount           bool     `json:"skip_count"`
	CollectHostInfo     bool     `json:"collect_host_info"`
	ConfigFile          string   `json:"config_file"`
	ConcurrencySet      bool     `json:"-"`
	OutputSet           bool     `json:"-"`
}

var (
	validModes          = []string{"hash", "exif", "name", "cross"}
	validFormats        = []string{"text", "html", "json"}
	validHashAlgorithms = []string{"md5", "sha1", "sha256", "blake3", "xxhash"}
	validReadModes      = []string{"stream", "mmap", "auto"}
)

// Default returns the configuration used when no flags or file are given.
func Default() *Config {
	return &Config{
		RootPath:         ".",
		Mode:             "hash",
		OutputFormat:     "text",
		ConcurrencyLevel: runtime.NumCPU(),
		NiceLevel:        "medium",
		HashAlgorithm:    "sha256",
		HashReadMode:     "stream",
		MmapMinSize:      128 * 1024,
		SizePrefilter:    true,
		RawExtensions:    []string{".nef", ".nrw", ".cr2", ".cr3", ".arw", ".raf", ".orf", ".rw2", ".dng", ".pef"},
		JPEGExtensions:   []string{".jpg", ".jpeg"},
		SkipHidden:       true,
		MetadataMaxBytes: 0,
		LogLevel:         "info",
		MaxIOPerSecond:   0,
		CollectHostInfo:  true,
	}
}

func LoadConfig() (*Config, error) {
	cfg := Default()

	rootPath := flag.String("path", cfg.RootPath, fmt.Sprintf("Root directory of the photo archive (default: %s).", cfg.RootPath))
	mode := flag.String("mode", cfg.Mode, fmt.Sprintf("Matching mode: hash, exif, name, or cross (default: %s).", cfg.Mode))
	format := flag.String("format", cfg.OutputFormat, fmt.Sprintf("Report format: text, html, or json (default: %s).", cfg.OutputFormat))
	output := flag.String("output", "", "Report file name (default: photodup-<mode>-<timestamp>.<ext>).")
	concurrency := flag.Int("concurrency", cfg.ConcurrencyLevel, fmt.Sprintf("Number of files fingerprinted in parallel (default: %d).", cfg.ConcurrencyLevel))
	nice := flag.String("nice", cfg.NiceLevel, fmt.Sprintf("Nice level: high, medium, or low (default: %s).", cfg.NiceLevel))
	hashAlgorithm := flag.String("hash", cfg.HashAlgorithm, fmt.Sprintf("Hash algorithm for hash mode: %s (default: %s).", strings.Join(validHashAlgorithms, ", "), cfg.HashAlgorithm))
	hashReadMode := flag.String("hash-read-mode", cfg.HashReadMode, fmt.Sprintf("How files are read for hashing: stream, mmap, or auto (default: %s).", cfg.HashReadMode))
	mmapMinSize := flag.Int64("mmap-min-size", cfg.MmapMinSize, fmt.Sprintf("Minimum file size for mmap reads in auto mode (default: %d).", cfg.MmapMinSize))
	verify := flag.Bool("verify", cfg.VerifyContent, fmt.Sprintf("Confirm hash groups byte for byte (default: %t).", cfg.VerifyContent))
	sizePrefilter := flag.Bool("size-prefilter", cfg.SizePrefilter, fmt.Sprintf("Skip hashing files whose size is unique (default: %t).", cfg.SizePrefilter))
	rawExts := flag.String("raw-ext", strings.Join(cfg.RawExtensions, ","), "Comma-separated raw file extensions.")
	jpegExts := flag.String("jpeg-ext", strings.Join(cfg.JPEGExtensions, ","), "Comma-separated JPEG file extensions.")
	sniff := flag.Bool("sniff", cfg.SniffTypes, fmt.Sprintf("Detect the type of files with unknown extensions from their content (default: %t).", cfg.SniffTypes))
	includes := flag.String("include", "", "Comma-separated list of include patterns (default: none).")
	excludes := flag.String("exclude", "", "Comma-separated list of exclude patterns (default: none).")
	skipHidden := flag.Bool("skip-hidden", cfg.SkipHidden, fmt.Sprintf("Skip hidden files and folders (default: %t).", cfg.SkipHidden))
	metadataMaxBytes := flag.Int64("metadata-max-bytes", cfg.MetadataMaxBytes, "Maximum bytes the metadata decoder may read per file (default: 0, unlimited).")
	allowEmpty := flag.Bool("allow-empty-signature", cfg.AllowEmptySignature, fmt.Sprintf("Let files without any signature metadata match each other (default: %t).", cfg.AllowEmptySignature))
	census := flag.Bool("folder-census", cfg.FolderCensus, fmt.Sprintf("Count raw and JPEG files per top-level folder (default: %t).", cfg.FolderCensus))
	logLevel := flag.String("log-level", cfg.LogLevel, fmt.Sprintf("Log level: debug, info, warn, error, fatal, or panic (default: %s).", cfg.LogLevel))
	maxIO := flag.Int("max-io-per-second", cfg.MaxIOPerSecond, "Maximum files opened per second (default: 0, unlimited).")
	skipCount := flag.Bool("skip-count", cfg.SkipCount, "Show a spinner instead of a counted progress bar")
	hostInfo := flag.Bool("host-info", cfg.CollectHostInfo, fmt.Sprintf("Record host information in the report (default: %t).", cfg.CollectHostInfo))
	configFile := flag.String("config", "", "Path to JSON configuration file (default: none).")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = displayHelp
	flag.Parse()

	if *showVersion {
		fmt.Printf("photodup version %s\n", version.Version)
		os.Exit(0)
	}

	if *configFile != "" {
		cfg.ConfigFile = *configFile
		if err := cfg.loadFromFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "path":
			cfg.RootPath = *rootPath
		case "mode":
			cfg.Mode = *mode
		case "format":
			cfg.OutputFormat = *format
		case "output":
			cfg.OutputFileName = *output
		case "concurrency":
			cfg.ConcurrencyLevel = *concurrency
			cfg.ConcurrencySet = true
		case "nice":
			cfg.NiceLevel = *nice
		case "hash":
			cfg.HashAlgorithm = *hashAlgorithm
		case "hash-read-mode":
			cfg.HashReadMode = *hashReadMode
		case "mmap-min-size":
			cfg.MmapMinSize = *mmapMinSize
		case "verify":
			cfg.VerifyContent = *verify
		case "size-prefilter":
			cfg.SizePrefilter = *sizePrefilter
		case "raw-ext":
			cfg.RawExtensions = parseCommaSeparated(*rawExts)
		case "jpeg-ext":
			cfg.JPEGExtensions = parseCommaSeparated(*jpegExts)
		case "sniff":
			cfg.SniffTypes = *sniff
		case "include":
			cfg.IncludePatterns = parseCommaSeparated(*includes)
		case "exclude":
			cfg.ExcludePatterns = parseCommaSeparated(*excludes)
		case "skip-hidden":
			cfg.SkipHidden = *skipHidden
		case "metadata-max-bytes":
			cfg.MetadataMaxBytes = *metadataMaxBytes
		case "allow-empty-signature":
			cfg.AllowEmptySignature = *allowEmpty
		case "folder-census":
			cfg.FolderCensus = *census
		case "log-level":
			cfg.LogLevel = *logLevel
		case "max-io-per-second":
			cfg.MaxIOPerSecond = *maxIO
		case "skip-count":
			cfg.SkipCount = *skipCount
		case "host-info":
			cfg.CollectHostInfo = *hostInfo
		}
	})

	cfg.normalize(time.Now())

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func displayHelp() {
	fmt.Println("photodup - duplicate finder for raw/JPEG photo archives")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  photodup [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  photodup --path /photos --mode hash --verify")
	fmt.Println("  photodup --path /photos --mode cross --format html --output duplicates.html")
	fmt.Println("  photodup --path /photos --mode name --folder-census")
}

func (cfg *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid config file format: %v", err)
	}
	if _, ok := raw["concurrency_level"]; ok {
		cfg.ConcurrencySet = true
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid config file format: %v", err)
	}
	return nil
}

// normalize lower-cases enumerations, fills derived defaults and names the
// report file when none was given.
func (cfg *Config) normalize(now time.Time) {
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	cfg.OutputFormat = strings.ToLower(strings.TrimSpace(cfg.OutputFormat))
	cfg.HashAlgorithm = strings.ToLower(strings.TrimSpace(cfg.HashAlgorithm))
	cfg.HashReadMode = strings.ToLower(strings.TrimSpace(cfg.HashReadMode))
	cfg.NiceLevel = strings.ToLower(strings.TrimSpace(cfg.NiceLevel))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.RawExtensions = normalizeExtensions(cfg.RawExtensions)
	cfg.JPEGExtensions = normalizeExtensions(cfg.JPEGExtensions)
	if cfg.HashReadMode == "" {
		cfg.HashReadMode = "stream"
	}
	if cfg.MmapMinSize <= 0 {
		cfg.MmapMinSize = 128 * 1024
	}
	if strings.TrimSpace(cfg.RootPath) == "" {
		cfg.RootPath = "."
	}
	if abs, err := filepath.Abs(cfg.RootPath); err == nil {
		cfg.RootPath = abs
	}
	if cfg.OutputFileName == "" {
		cfg.OutputFileName = DefaultOutputName(cfg.Mode, cfg.OutputFormat, now)
	} else {
		cfg.OutputSet = true
	}
}

// DefaultOutputName builds photodup-<mode>-<timestamp>.<ext>.
func DefaultOutputName(mode, format string, now time.Time) string {
	ext := format
	if ext == "text" || ext == "" {
		ext = "txt"
	}
	return fmt.Sprintf("photodup-%s-%s.%s", mode, now.UTC().Format("20060102-150405"), ext)
}

func (cfg *Config) validate() error {
	if !containsString(validModes, cfg.Mode) {
		return fmt.Errorf("invalid mode: %s (want %s)", cfg.Mode, strings.Join(validModes, ", "))
	}
	if !containsString(validFormats, cfg.OutputFormat) {
		return fmt.Errorf("invalid output format: %s (want %s)", cfg.OutputFormat, strings.Join(validFormats, ", "))
	}
	if !containsString(validHashAlgorithms, cfg.HashAlgorithm) {
		return fmt.Errorf("invalid hash algorithm: %s", cfg.HashAlgorithm)
	}
	if !containsString(validReadModes, cfg.HashReadMode) {
		return fmt.Errorf("invalid hash-read-mode value: %s", cfg.HashReadMode)
	}
	if cfg.VerifyContent && cfg.Mode != "hash" {
		return fmt.Errorf("--verify only applies to hash mode")
	}
	if len(cfg.RawExtensions) == 0 && cfg.Mode != "hash" {
		return fmt.Errorf("at least one raw extension is required for %s mode", cfg.Mode)
	}
	if len(cfg.JPEGExtensions) == 0 && cfg.Mode == "cross" {
		return fmt.Errorf("at least one JPEG extension is required for cross mode")
	}
	for _, ext := range cfg.RawExtensions {
		if containsString(cfg.JPEGExtensions, ext) {
			return fmt.Errorf("extension %s is listed as both raw and JPEG", ext)
		}
	}
	if cfg.MetadataMaxBytes < 0 {
		return fmt.Errorf("metadata-max-bytes must be zero or positive")
	}
	if cfg.MaxIOPerSecond < 0 {
		return fmt.Errorf("max-io-per-second must be zero or positive")
	}
	if cfg.ConcurrencyLevel <= 0 {
		return fmt.Errorf("concurrency level must be positive")
	}
	if cfg.NiceLevel != "high" && cfg.NiceLevel != "medium" && cfg.NiceLevel != "low" {
		return fmt.Errorf("invalid nice level: %s", cfg.NiceLevel)
	}
	if cfg.LogLevel != "debug" && cfg.LogLevel != "info" && cfg.LogLevel != "warn" &&
		cfg.LogLevel != "error" && cfg.LogLevel != "fatal" && cfg.LogLevel != "panic" {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	return nil
}

func parseCommaSeparated(input string) []string {
	if input == "" {
		return []string{}
	}
	items := strings.Split(input, ",")
	for i, item := range items {
		items[i] = strings.TrimSpace(item)
	}
	return items
}

func normalizeExtensions(items []string) []string {
	normalized := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		if !strings.HasPrefix(item, ".") {
			item = "." + item
		}
		if !containsString(normalized, item) {
			normalized = append(normalized, item)
		}
	}
	return normalized
}

func containsString(items []string, value string) bool {
	for _, item := range items {
		if item == value {
			return true
		}
	}
	return false
}
