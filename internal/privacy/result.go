package privacy

// TagCounts are the per-dataset counters the imaging classifier keeps. Total
// is the element count reported by the codec; the other four partition it.
type TagCounts struct {
	Total int
	Blank int
	NoKey int
	IsPHI int
	NoPHI int
}

// Balanced reports whether the counters account for every element.
func (c TagCounts) Balanced() bool {
	return c.Total == c.Blank+c.NoKey+c.IsPHI+c.NoPHI
}

// Result is the transient outcome of classifying one file.
type Result struct {
	Kind          FileKind
	Status        Status
	PHITags       []string
	UndefinedTags []string
	Reason        string
	Counts        TagCounts
	// Err carries the error kind behind a file_not_found or indeterminate
	// status. It is nil for clean verdicts.
	Err error
}
