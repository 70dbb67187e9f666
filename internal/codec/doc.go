// Package codec groups the file-format adapters that turn DICOM and VCF files
// into the datasets and streams the classifiers consume.
package codec
