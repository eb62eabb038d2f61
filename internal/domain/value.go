package domain

// BadgeValue is the value shown in the right segment of a badge.
// It is either a numeric count, abbreviated at render time, or a
// literal label rendered verbatim.
type BadgeValue struct {
	count   int
	label   string
	isLabel bool
}

// CountValue returns a numeric badge value. Negative counts clamp to zero.
func CountValue(n int) BadgeValue {
	if n < 0 {
		n = 0
	}
	return BadgeValue{count: n}
}

// LabelValue returns a literal badge value.
func LabelValue(s string) BadgeValue {
	return BadgeValue{label: s, isLabel: true}
}

// IsLabel reports whether the value is a literal label.
func (v BadgeValue) IsLabel() bool { return v.isLabel }

// Count returns the numeric count, zero for label values.
func (v BadgeValue) Count() int { return v.count }

// Label returns the literal label, empty for count values.
func (v BadgeValue) Label() string { return v.label }
