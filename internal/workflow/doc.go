// Package workflow runs classification batches against the metadata store.
//
// A Runner processes one batch for one file kind: it fetches every record of
// that kind without a status entry, classifies each file once, and appends
// the verdict. Paths seen earlier in the same batch are recorded as
// duplicates without invoking the classifier. Only store connectivity
// failures abort a batch; per-file failures are recorded and counted.
//
// The Manager strings batches together the way the scheduler does:
// optional discovery, then the variant batch, then the imaging batch.
package workflow
