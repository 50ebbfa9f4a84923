// Package model defines the core data structures shared by the tallyfetch
// pipelines.
//
// This package contains the following main types:
//   - Value: an atomic, countable scalar extracted from a dataset
//   - FrequencyTable: first-seen ordered value counts
//   - Source: where a dataset is fetched from and where it is persisted
//   - Outcome and Run: the result of one pipeline operation and the state
//     of one format's pipeline
//   - StageError: the typed error every pipeline stage returns
//
// Models live in their own package because the readers, the counter, the
// report writers and the history database all exchange them.
package model
