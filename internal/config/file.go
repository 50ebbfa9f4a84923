package config

import (
	"time"

	"github.com/nao1215/tallyfetch/internal/model"
)

// SourceConfig overrides the location of one dataset.
// Empty fields keep the built-in value.
type SourceConfig struct {
	// URL is the remote location of the dataset.
	URL string `yaml:"url,omitempty"`

	// Folder is the local directory the dataset and report are written to.
	Folder string `yaml:"folder,omitempty"`

	// Filename is the name of the persisted dataset inside Folder.
	Filename string `yaml:"filename,omitempty"`

	// Report is the name of the frequency report inside Folder.
	Report string `yaml:"report,omitempty"`
}

// DefaultsConfig holds settings applied to every source.
type DefaultsConfig struct {
	// Timeout bounds each request, e.g. "30s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Concurrency is the number of pipelines run at once.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Headers are custom HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Proxy is a SOCKS5 proxy address in "host:port" format.
	Proxy string `yaml:"proxy,omitempty"`

	// HTMLStrip is "regex" or "tokenizer".
	HTMLStrip string `yaml:"html_strip,omitempty"`

	// MaxBodySize is the largest response body accepted, in bytes.
	MaxBodySize int64 `yaml:"max_body_size,omitempty"`

	// History enables or disables the run history database.
	History *bool `yaml:"history,omitempty"`

	// DBDir overrides the history database directory.
	DBDir string `yaml:"db_dir,omitempty"`
}

// File represents the structure of the .tallyfetch configuration file.
type File struct {
	// Defaults contains settings applied to every source.
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`

	// Sources maps format names (text, csv, spreadsheet, json and their
	// aliases) to source overrides.
	Sources map[string]SourceConfig `yaml:"sources,omitempty"`
}

// Apply merges the file into cfg field by field. Zero values in the file
// keep the current configuration. A source key that names no known format
// returns ErrInvalidSource.
func (cf *File) Apply(cfg *Config) error {
	d := cf.Defaults
	if d.Timeout != 0 {
		cfg.Timeout = d.Timeout
	}
	if d.Concurrency != 0 {
		cfg.Concurrency = d.Concurrency
	}
	if len(d.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		for k, v := range d.Headers {
			cfg.Headers[k] = v
		}
	}
	if d.Proxy != "" {
		cfg.ProxyAddress = d.Proxy
	}
	if d.HTMLStrip != "" {
		cfg.HTMLStrip = d.HTMLStrip
	}
	if d.MaxBodySize != 0 {
		cfg.MaxBodySize = d.MaxBodySize
	}
	if d.History != nil {
		cfg.SaveHistory = *d.History
	}
	if d.DBDir != "" {
		cfg.DBDir = d.DBDir
	}

	// apply in format order so the result does not depend on map order
	overrides := make(map[model.Format]SourceConfig, len(cf.Sources))
	for key, sc := range cf.Sources {
		f, err := model.ParseFormat(key)
		if err != nil {
			return wrapf(ErrInvalidSource, "unknown format %q in config file", key)
		}
		if _, dup := overrides[f]; dup {
			return wrapf(ErrDuplicateFormat, "%s in config file", f)
		}
		overrides[f] = sc
	}

	for _, f := range model.Formats() {
		sc, ok := overrides[f]
		if !ok {
			continue
		}
		src, found := cfg.Source(f)
		if !found {
			src = model.Source{Format: f}
		}
		if sc.URL != "" {
			src.URL = sc.URL
		}
		if sc.Folder != "" {
			src.Folder = sc.Folder
		}
		if sc.Filename != "" {
			src.Filename = sc.Filename
		}
		if sc.Report != "" {
			src.ReportFilename = sc.Report
		}
		cfg.setSource(src)
	}

	return nil
}
