package dedup

// Entry pairs a file with its fingerprint for grouping.
type Entry struct {
	Record      FileRecord
	Fingerprint Fingerprint
}

// Group is the set of files sharing one fingerprint, in first-seen order.
// Raw and JPEG hold the same members partitioned by category.
type Group struct {
	Fingerprint Fingerprint
	Members     []FileRecord
	Raw         []FileRecord
	JPEG        []FileRecord
}

func (g *Group) add(rec FileRecord) {
	g.Members = append(g.Members, rec)
	switch rec.Category {
	case CategoryRaw:
		g.Raw = append(g.Raw, rec)
	case CategoryJPEG:
		g.JPEG = append(g.JPEG, rec)
	}
}

type groupKey struct {
	strategy Strategy
	key      string
}

// GroupBy folds entries into an ordered multimap. Groups appear in the order
// their fingerprint was first seen and members keep input order.
func GroupBy(entries []Entry) []*Group {
	index := make(map[groupKey]*Group, len(entries))
	var groups []*Group
	for _, e := range entries {
		k := groupKey{strategy: e.Fingerprint.Strategy, key: e.Fingerprint.Key}
		g, ok := index[k]
		if !ok {
			g = &Group{Fingerprint: e.Fingerprint}
			index[k] = g
			groups = append(groups, g)
		}
		g.add(e.Record)
	}
	return groups
}

// Retained filters groups by the strategy's retention predicate.
func Retained(s Strategy, groups []*Group) []*Group {
	out := make([]*Group, 0, len(groups))
	for _, g := range groups {
		if s.Retain(g) {
			out = append(out, g)
		}
	}
	return out
}

// SingleCategory counts groups holding files of exactly one of raw or JPEG.
func SingleCategory(groups []*Group) int {
	var n int
	for _, g := range groups {
		if (len(g.Raw) > 0) != (len(g.JPEG) > 0) {
			n++
		}
	}
	return n
}
