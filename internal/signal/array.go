package signal

// Array is a sequence of samples with a parallel validity mask. A true mask
// entry marks the sample as invalid. A nil Mask means every sample is valid.
type Array struct {
	Data []float64
	Mask []bool
}

// NewArray wraps data as a fully valid array.
func NewArray(data ...float64) *Array {
	return &Array{Data: data}
}

// NewMaskedArray builds an array with an explicit mask. It panics when the
// lengths differ since that can only come from a programming error.
func NewMaskedArray(data []float64, mask []bool) *Array {
	if mask != nil && len(mask) != len(data) {
		panic("signal: mask length does not match data length")
	}
	return &Array{Data: data, Mask: mask}
}

// Masked returns an array of n samples that are all invalid.
func Masked(n int) *Array {
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = true
	}
	return &Array{Data: make([]float64, n), Mask: mask}
}

// Len returns the number of samples.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Data)
}

// Valid reports whether sample i is present and unmasked.
func (a *Array) Valid(i int) bool {
	if a == nil || i < 0 || i >= len(a.Data) {
		return false
	}
	return a.Mask == nil || !a.Mask[i]
}

// At returns sample i and whether it is valid.
func (a *Array) At(i int) (float64, bool) {
	if !a.Valid(i) {
		return 0, false
	}
	return a.Data[i], true
}

// ValidCount returns the number of unmasked samples.
func (a *Array) ValidCount() int {
	n := 0
	for i := range a.Len() {
		if a.Valid(i) {
			n++
		}
	}
	return n
}

// Truncate returns a copy holding the first n samples.
func (a *Array) Truncate(n int) *Array {
	if a == nil {
		return nil
	}
	if n > a.Len() {
		n = a.Len()
	}
	out := &Array{Data: append([]float64(nil), a.Data[:n]...)}
	if a.Mask != nil {
		out.Mask = append([]bool(nil), a.Mask[:n]...)
	}
	return out
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	return a.Truncate(a.Len())
}
