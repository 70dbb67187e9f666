// Package variant decides whether a VCF file carries personally identifying
// genotype data by measuring how many sample calls are marked germline in
// the per-sample somatic/germline status field.
package variant
