// Package reader extracts the sequence of atomic values from a persisted
// dataset.
//
// There is one Reader per format:
//   - TextReader: every character of the file is one value
//   - DelimitedReader: every cell after the header row, row-major
//   - SpreadsheetReader: every cell of the first sheet, row-major, with no
//     header skip
//   - JSONReader: the leaf values of the flattened document
//
// Every failure (absent file, malformed content, too few rows) is returned
// as a model.StageError of kind ErrorKindFormat, except structural problems
// found by the flattener, which keep ErrorKindStructural.
package reader
