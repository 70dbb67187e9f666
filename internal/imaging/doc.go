// Package imaging decides whether a DICOM dataset carries protected health
// information. It walks the dataset's (tag, value) pairs against the rule
// table, partitions every element into one of four counters, and rejects the
// verdict when the counters do not add up to the element total the codec
// reported.
package imaging
