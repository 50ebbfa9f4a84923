// Package pipeline runs the fetch and process operations of every dataset.
//
// Each dataset format has its own pipeline: a fetch step that downloads the
// source and persists it, followed by a process step that reads the
// persisted file, counts its values and writes the frequency report. Steps
// record their result as a model.Outcome on the format's model.Run. A
// failing step never aborts its siblings.
//
// Runner executes the pipelines of a batch. With concurrency 1 the fetches
// of all formats run first, in format order, followed by all processing
// operations. With a higher concurrency each format runs its whole pipeline
// in its own goroutine, bounded by errgroup.SetLimit. In both modes the
// outcomes are reported in format order.
package pipeline
