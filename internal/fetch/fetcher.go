package fetch

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/nao1215/tallyfetch/internal/model"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/net/html/charset"
)

// DefaultMaxBodySize is the largest response body read by default (256 MiB).
const DefaultMaxBodySize int64 = 256 << 20

// jsonIndent is the indentation of persisted JSON documents.
const jsonIndent = "    "

// Artifact describes a persisted dataset.
type Artifact struct {
	// Path is the file the dataset was written to.
	Path string

	// Bytes is the size of the written file.
	Bytes int64

	// Digest is the hex-encoded BLAKE2b-256 digest of the written file.
	Digest string
}

// Fetcher downloads sources and writes them to their artifact paths.
type Fetcher struct {
	// client performs the requests.
	client *http.Client

	// headers are added to every request.
	headers map[string]string

	// maxBodySize bounds the response body read.
	maxBodySize int64

	// strip removes markup from text sources.
	strip StripStrategy

	// logger for fetch events.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithMaxBodySize sets the largest response body accepted.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithStripStrategy sets how markup is removed from text sources.
func WithStripStrategy(s StripStrategy) Option {
	return func(f *Fetcher) {
		f.strip = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher using client. A nil client uses
// http.DefaultClient.
func NewFetcher(client *http.Client, opts ...Option) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}

	f := &Fetcher{
		client:      client,
		maxBodySize: DefaultMaxBodySize,
		strip:       StripRegex,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// FetchAndStore downloads src.URL, transforms the body according to mode
// and writes it to src.ArtifactPath(). The destination folder is created if
// missing. On failure no new file is left at the artifact path.
func (f *Fetcher) FetchAndStore(ctx context.Context, src model.Source, mode Mode) (*Artifact, error) {
	path := src.ArtifactPath()

	if err := os.MkdirAll(src.Folder, 0750); err != nil {
		return nil, model.NewFilesystemError("mkdir", src.Folder, err)
	}

	f.logger.Debug("fetching source", "format", src.Format, "url", src.URL, "mode", mode)

	body, contentType, err := f.get(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	data, err := f.transform(body, contentType, mode, src.URL)
	if err != nil {
		return nil, err
	}

	if err := writeFileAtomic(path, data); err != nil {
		return nil, err
	}

	sum := blake2b.Sum256(data)
	artifact := &Artifact{
		Path:   path,
		Bytes:  int64(len(data)),
		Digest: hex.EncodeToString(sum[:]),
	}

	f.logger.Debug("source stored", "format", src.Format, "path", path, "bytes", artifact.Bytes)

	return artifact, nil
}

// get performs the request and returns the body and its content type.
func (f *Fetcher) get(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", model.NewTransportError("request", url, err)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", model.NewTransportError("get", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, "", model.NewTransportError("get", url, &StatusError{Code: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, "", model.NewTransportError("read body", url, err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, "", model.NewTransportError("read body", url, ErrBodyTooLarge)
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// transform converts a response body into the bytes written to disk.
func (f *Fetcher) transform(body []byte, contentType string, mode Mode, url string) ([]byte, error) {
	switch mode {
	case ModeTextStripped:
		r, err := charset.NewReader(bytes.NewReader(body), contentType)
		if err != nil {
			return nil, model.NewFormatError("decode", url, err)
		}
		decoded, err := io.ReadAll(r)
		if err != nil {
			return nil, model.NewFormatError("decode", url, err)
		}
		text, err := f.strip.Strip(string(decoded))
		if err != nil {
			return nil, model.NewFormatError("strip", url, err)
		}
		return []byte(text), nil

	case ModeRawBinaryCSV, ModeRawBinarySpreadsheet:
		return body, nil

	case ModeParsedJSONPretty:
		if !json.Valid(body) {
			return nil, model.NewFormatError("decode", url, ErrInvalidJSON)
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, bytes.TrimSpace(body), "", jsonIndent); err != nil {
			return nil, model.NewFormatError("decode", url, fmt.Errorf("%w: %w", ErrInvalidJSON, err))
		}
		return buf.Bytes(), nil

	default:
		return nil, model.NewFormatError("transform", url, ErrUnknownMode)
	}
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so a failed write never leaves a partial artifact.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return model.NewFilesystemError("create", path, err)
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(tmpName)
		return model.NewFilesystemError("write", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return model.NewFilesystemError("rename", path, err)
	}
	return nil
}
