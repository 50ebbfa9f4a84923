// Package database provides SQLite-based storage for tallyfetch run history.
//
// Every run of the pipelines is stored with:
//   - the run identifier and its start and finish times
//   - the outcome of every fetch and process operation
//   - the frequency table computed for every format
//
// The history is used to list past runs and to compare the frequency
// tables of two runs. SQLite is accessed through modernc.org/sqlite, a
// cgo-free driver, and the database is a single file in the data directory.
package database
