// Package ingestion loads content records into storage.
//
// The Pipeline type validates records, tags them against the stored themes
// (see TagByTheme), upserts them by URL and embeds their comparison text in
// batches on a worker pool. Records whose embedding fails stay stored without
// a vector; the failures are joined into the returned error.
package ingestion
