package engine

import "slices"

// nextActive walks the seats cyclically starting after prev and returns the
// first seat that is still a member. An empty prev starts at the first seat.
func nextActive(seats, members []string, prev string) string {
	if len(seats) == 0 {
		return ""
	}
	start := slices.Index(seats, prev) // -1 when prev is empty or unseated
	for k := 1; k <= len(seats); k++ {
		cand := seats[(start+k)%len(seats)]
		if slices.Contains(members, cand) {
			return cand
		}
	}
	return ""
}
