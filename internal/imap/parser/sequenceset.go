package parser

import (
	"sort"
	"strconv"
	"strings"
)

// ParseSequenceSet materialises a sequence-set atom list against a
// known UID vector (for UID FETCH/STORE/etc.) or against 1..count (for
// plain sequence numbers), returning a deduplicated ascending result.
// `*` denotes the last element in the relevant space; ranges where
// start>end are swapped, matching §4.2.
func ParseSequenceSet(set string, universe []uint32) []uint32 {
	if len(universe) == 0 {
		return nil
	}
	last := universe[len(universe)-1]

	seen := make(map[uint32]bool)
	var out []uint32
	add := func(v uint32) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	universeSet := make(map[uint32]bool, len(universe))
	for _, u := range universe {
		universeSet[u] = true
	}

	for _, part := range strings.Split(set, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := strings.Index(part, ":"); idx >= 0 {
			start := parseSeqAtom(part[:idx], last)
			end := parseSeqAtom(part[idx+1:], last)
			if start > end {
				start, end = end, start
			}
			for _, u := range universe {
				if u >= start && u <= end {
					add(u)
				}
			}
		} else {
			v := parseSeqAtom(part, last)
			if universeSet[v] {
				add(v)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseSeqNumSet is the non-UID variant: atoms are 1-based sequence
// numbers into a folder holding count messages, resolved to UIDs via
// universe (which must be ordered the same way).
func ParseSeqNumSet(set string, universe []uint32) []uint32 {
	count := uint32(len(universe))
	if count == 0 {
		return nil
	}

	seen := make(map[uint32]bool)
	var out []uint32
	add := func(seq uint32) {
		if seq < 1 || seq > count {
			return
		}
		uid := universe[seq-1]
		if !seen[uid] {
			seen[uid] = true
			out = append(out, uid)
		}
	}

	for _, part := range strings.Split(set, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := strings.Index(part, ":"); idx >= 0 {
			start := parseSeqAtom(part[:idx], count)
			end := parseSeqAtom(part[idx+1:], count)
			if start > end {
				start, end = end, start
			}
			for s := start; s <= end; s++ {
				add(s)
			}
		} else {
			add(parseSeqAtom(part, count))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func parseSeqAtom(tok string, star uint32) uint32 {
	if tok == "*" {
		return star
	}
	n, err := strconv.ParseUint(tok, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}
