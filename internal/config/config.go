package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/tallyfetch/internal/fetch"
	"github.com/nao1215/tallyfetch/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "tallyfetch"

	// DefaultTimeout bounds each network request.
	DefaultTimeout = 60 * time.Second

	// DefaultConcurrency runs the pipelines sequentially: all fetches,
	// then all processing.
	DefaultConcurrency = 1

	// DefaultHTMLStrip is the markup stripping strategy for text sources.
	DefaultHTMLStrip = string(fetch.StripRegex)

	// DefaultMaxBodySize limits the response body size read per source.
	DefaultMaxBodySize = fetch.DefaultMaxBodySize

	// DefaultTopN is the number of most frequent values shown per format
	// in summaries.
	DefaultTopN = 10
)

// DefaultSources returns the four built-in dataset sources in pipeline order.
func DefaultSources() []model.Source {
	return []model.Source{
		{
			Format:         model.FormatText,
			URL:            "https://shakespeare.mit.edu/romeo_juliet/full.html",
			Folder:         "data-txt",
			Filename:       "romeoJuliet.txt",
			ReportFilename: "results_txt.txt",
		},
		{
			Format:         model.FormatCSV,
			URL:            "https://raw.githubusercontent.com/MainakRepositor/Datasets/master/World%20Happiness%20Data/2020.csv",
			Folder:         "data-csv",
			Filename:       "countryLadderScore.csv",
			ReportFilename: "results_csv.txt",
		},
		{
			Format:         model.FormatSpreadsheet,
			URL:            "https://github.com/bharathirajatut/sample-excel-dataset/raw/master/cattle.xls",
			Folder:         "data-excel",
			Filename:       "cattle.xls",
			ReportFilename: "results_xls.txt",
		},
		{
			Format:         model.FormatJSON,
			URL:            "http://api.open-notify.org/astros.json",
			Folder:         "data-json",
			Filename:       "astronauts.json",
			ReportFilename: "results_json.txt",
		},
	}
}

// Config holds all configuration options for tallyfetch.
// It is populated from defaults, the configuration file, the environment
// and CLI flags, in that order, and passed down explicitly.
type Config struct {
	// Sources lists the datasets to fetch and process, in pipeline order.
	// At most one source per format.
	Sources []model.Source

	// Timeout bounds each HTTP request including reading the body.
	Timeout time.Duration

	// Concurrency is the number of format pipelines run at once.
	// 1 runs all fetches first, then all processing, in format order.
	Concurrency int

	// HTMLStrip selects how markup is removed from text sources:
	// "regex" or "tokenizer".
	HTMLStrip string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// Headers are added to every request.
	Headers map[string]string

	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64

	// SummaryFile is the path the run summary is written to.
	// When empty, no summary file is written.
	SummaryFile string

	// SummaryFormat is the summary format: "text", "markdown" or "json".
	// When empty, it is inferred from the SummaryFile extension.
	SummaryFormat string

	// TopN is the number of most frequent values listed per format in
	// summaries.
	TopN int

	// SaveHistory stores every run in the history database.
	SaveHistory bool

	// DBDir is the directory of the history database.
	// Defaults to the XDG data directory (~/.local/share/tallyfetch on Linux).
	DBDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the file is searched for (see FindConfigFile).
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Sources:     DefaultSources(),
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
		HTMLStrip:   DefaultHTMLStrip,
		Headers:     make(map[string]string),
		MaxBodySize: DefaultMaxBodySize,
		TopN:        DefaultTopN,
		SaveHistory: true,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for tallyfetch.
// On Linux: ~/.local/share/tallyfetch
// On macOS: ~/Library/Application Support/tallyfetch
// On Windows: %LOCALAPPDATA%\tallyfetch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for tallyfetch.
// On Linux: ~/.config/tallyfetch
// On macOS: ~/Library/Application Support/tallyfetch
// On Windows: %APPDATA%\tallyfetch
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Source returns the configured source of format f.
func (c *Config) Source(f model.Format) (model.Source, bool) {
	for _, src := range c.Sources {
		if src.Format == f {
			return src, true
		}
	}
	return model.Source{}, false
}

// setSource replaces the source of the same format, or appends src.
func (c *Config) setSource(src model.Source) {
	for i := range c.Sources {
		if c.Sources[i].Format == src.Format {
			c.Sources[i] = src
			return
		}
	}
	c.Sources = append(c.Sources, src)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error (possibly wrapped
// with details), so callers can use errors.Is.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}

	seen := make(map[model.Format]bool, len(c.Sources))
	for _, src := range c.Sources {
		if err := validateSource(src); err != nil {
			return err
		}
		if seen[src.Format] {
			return wrapf(ErrDuplicateFormat, "%s", src.Format)
		}
		seen[src.Format] = true
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if _, err := fetch.ParseStripStrategy(c.HTMLStrip); err != nil {
		return wrapf(ErrInvalidHTMLStrip, "%q", c.HTMLStrip)
	}

	if c.ProxyAddress != "" && !fetch.IsValidProxyAddress(c.ProxyAddress) {
		return wrapf(ErrInvalidProxyAddress, "%q", c.ProxyAddress)
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	if c.TopN < 0 {
		return ErrInvalidTopN
	}

	if c.SummaryFormat != "" {
		if _, err := ParseSummaryFormat(c.SummaryFormat); err != nil {
			return err
		}
	}

	return nil
}

func validateSource(src model.Source) error {
	switch {
	case !src.Format.Valid():
		return wrapf(ErrInvalidSource, "unknown format %q", src.Format)
	case src.URL == "":
		return wrapf(ErrInvalidSource, "%s: url is empty", src.Format)
	case src.Folder == "":
		return wrapf(ErrInvalidSource, "%s: folder is empty", src.Format)
	case src.Filename == "" || filepath.Base(src.Filename) != src.Filename:
		return wrapf(ErrInvalidSource, "%s: filename must be a plain file name", src.Format)
	case src.ReportFilename == "" || filepath.Base(src.ReportFilename) != src.ReportFilename:
		return wrapf(ErrInvalidSource, "%s: report must be a plain file name", src.Format)
	case src.Filename == src.ReportFilename:
		return wrapf(ErrInvalidSource, "%s: report would overwrite the dataset", src.Format)
	}
	return nil
}
