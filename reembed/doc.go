// Package reembed recomputes the stored vectors of every record, typically
// after switching embedding models.
//
// Records are walked in ID order in batches. Each batch is embedded with one
// call, retried with exponential backoff, normalized to unit length and
// written back. Progress goes to an io.Writer.
package reembed
