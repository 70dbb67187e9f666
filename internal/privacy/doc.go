// Package privacy defines the shared vocabulary of the classification
// pipeline: the file kinds phisweep understands, the closed set of privacy
// statuses persisted to the metadata store, and the transient Result a
// classifier hands back to the workflow.
//
// Status values are a closed enum. Their store spelling lives in one
// serialization map so that every backend writes the same strings the
// reports read back.
package privacy
