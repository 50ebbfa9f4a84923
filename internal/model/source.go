package model

import "path/filepath"

// Source describes one dataset: where it is fetched from, where the raw
// artifact is persisted and where the report is written.
type Source struct {
	// Format selects the fetch mode and the reader.
	Format Format

	// URL is the remote location of the dataset.
	URL string

	// Folder is the destination directory, created on demand.
	Folder string

	// Filename is the artifact file name inside Folder.
	Filename string

	// ReportFilename is the report file name inside Folder.
	ReportFilename string
}

// ArtifactPath returns the path of the persisted dataset.
func (s Source) ArtifactPath() string {
	return filepath.Join(s.Folder, s.Filename)
}

// ReportPath returns the path of the frequency report.
func (s Source) ReportPath() string {
	return filepath.Join(s.Folder, s.ReportFilename)
}
