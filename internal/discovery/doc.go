// Package discovery finds candidate files and registers them in the metadata
// store as unprocessed records.
//
// Two scanners exist. WalkScanner walks configured directories and emits a
// record per file whose base name matches a search pattern. GPFSScanner hands
// the search to the GPFS policy engine, which calls back into phisweep-exec
// with file lists that IngestFileList parses. Both end in Store.AddRecord
// with the same field set.
package discovery
