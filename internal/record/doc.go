// Package record models hierarchical records and flattens them into
// dotted-path records.
//
// A hierarchical record is a tree of Branch nodes (keyed mappings that keep
// their insertion order) whose leaves are atomic values. Arrays are leaves:
// the flattener never descends into them.
package record
