package weave

// Progress reports how much of an Apply call has completed.
// Done counts complete slices already permuted; Total is the number of
// complete slices in the buffer.
type Progress struct {
	Done  int
	Total int
}

// Ratio returns the completion ratio in [0, 1]. A buffer with no complete
// slice reports 1, since there is nothing left to do.
func (p Progress) Ratio() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Done) / float64(p.Total)
}
