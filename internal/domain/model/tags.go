package model

// Tags is a set of case-sensitive labels. Duplicates are ignored by every
// set operation, so callers can pass raw slices straight from storage.
type Tags []string

func (t Tags) set() map[string]struct{} {
	m := make(map[string]struct{}, len(t))
	for _, v := range t {
		m[v] = struct{}{}
	}
	return m
}

// Len returns the number of distinct tags.
func (t Tags) Len() int {
	return len(t.set())
}

// Contains reports whether tag is a member (exact match).
func (t Tags) Contains(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

// IntersectCount returns |t ∩ other|.
func (t Tags) IntersectCount(other Tags) int {
	if len(t) == 0 || len(other) == 0 {
		return 0
	}
	a := t.set()
	n := 0
	for v := range other.set() {
		if _, ok := a[v]; ok {
			n++
		}
	}
	return n
}

// UnionCount returns |t ∪ other|.
func (t Tags) UnionCount(other Tags) int {
	u := t.set()
	for _, v := range other {
		u[v] = struct{}{}
	}
	return len(u)
}

// Schedule maps a day name to the time blocks available on that day.
type Schedule map[string]Tags

// Days returns the days that carry at least one block.
func (s Schedule) Days() Tags {
	days := make(Tags, 0, len(s))
	for day, blocks := range s {
		if len(blocks) > 0 {
			days = append(days, day)
		}
	}
	return days
}
