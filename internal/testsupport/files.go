package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(strings.Repeat("B", int(size))), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteVCF writes a VCF whose FORMAT declares GT and SS with one record per
// row of ss values. Each row lists the SS value of every sample; rows must be
// the same length. When declareSS is false the SS FORMAT header is omitted
// and records carry GT only.
func WriteVCF(t testing.TB, path string, declareSS bool, rows ...[]string) {
	t.Helper()

	samples := 1
	if len(rows) > 0 {
		samples = len(rows[0])
	}
	var b strings.Builder
	b.WriteString("##fileformat=VCFv4.1\n")
	b.WriteString("##FORMAT=<ID=GT,Number=1,Type=String,Description=\"Genotype\">\n")
	if declareSS {
		b.WriteString("##FORMAT=<ID=SS,Number=1,Type=Integer,Description=\"Somatic status\">\n")
	}
	b.WriteString("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT")
	for i := 0; i < samples; i++ {
		fmt.Fprintf(&b, "\tS%d", i+1)
	}
	b.WriteByte('\n')
	for i, row := range rows {
		fmt.Fprintf(&b, "1\t%d\t.\tA\tG\t50\tPASS\t.\t", 100*(i+1))
		if declareSS {
			b.WriteString("GT:SS")
		} else {
			b.WriteString("GT")
		}
		for _, ss := range row {
			if declareSS {
				fmt.Fprintf(&b, "\t0/1:%s", ss)
			} else {
				b.WriteString("\t0/1")
			}
		}
		b.WriteByte('\n')
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
