package domain

import "sort"

// Rank orders emergencies for dispatcher selection: HIGH before MEDIUM before
// LOW, then oldest first. The input slice is left untouched.
func Rank(emergencies []*Emergency) []*Emergency {
	out := make([]*Emergency, len(emergencies))
	copy(out, emergencies)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Priority.Rank(), out[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
