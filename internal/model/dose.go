package model

// DoseSet holds up to MaxDoses cleaned dose values in order. A nil slot is empty.
type DoseSet [MaxDoses]any

// Fields returns the set slots keyed "dose 1".."dose 10".
func (d DoseSet) Fields() Fields {
	f := Fields{}
	for i, v := range d {
		f.Set(DoseField(i+1), v)
	}
	return f
}

// Len returns the number of non-empty slots.
func (d DoseSet) Len() int {
	n := 0
	for _, v := range d {
		if !IsEmpty(v) {
			n++
		}
	}
	return n
}
