// Package rules loads the DICOM PHI rule table: one immutable rule per tag id
// describing whether the tag may carry protected health information and how
// an anonymizer would treat it.
//
// Tables are read from CSV or YAML, or from the embedded default table. When a
// source lists several variants for one tag the first one wins and the later
// ones are counted as shadowed.
package rules
