// Package main provides the entry point for the tallyfetch CLI.
//
// tallyfetch downloads a text, a CSV, a spreadsheet and a JSON dataset,
// persists them locally and writes a value frequency report for each.
//
// Usage:
//
//	tallyfetch
//	tallyfetch --concurrency 4 --summary summary.md
//	tallyfetch history --compare --format csv
//
// See --help for all available options.
package main

// main is the entry point for tallyfetch.
func main() {
	Execute()
}
