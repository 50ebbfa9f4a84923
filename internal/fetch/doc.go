// Package fetch downloads datasets and persists them to local files.
//
// A Fetcher issues one HTTP GET per source, transforms the body according
// to the source's Mode and writes the result to the source's artifact path.
// Text sources have their markup stripped, CSV and spreadsheet sources are
// written verbatim and JSON sources are validated and re-indented.
//
// Every failure is returned as a *model.StageError: connection problems,
// error statuses and oversized bodies are transport errors, invalid JSON
// or undecodable text are format errors and directory or file problems are
// filesystem errors. No request is ever retried.
package fetch
