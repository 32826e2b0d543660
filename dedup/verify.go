package dedup

import "fmt"

// CompareFunc reports whether two files hold identical bytes.
type CompareFunc func(a, b string) (bool, error)

// Verify confirms content-hash groups byte for byte. Members that differ from
// every existing class start a new group under a suffixed fingerprint.
// Members that fail to compare are dropped and reported once. When the
// failing file is a class's first member it is evicted and the next member
// takes its place. Groups are re-filtered with the strategy's retention
// predicate.
func Verify(s Strategy, groups []*Group, compare CompareFunc) ([]*Group, []Diagnostic) {
	var (
		out   []*Group
		diags []Diagnostic
	)
	for _, g := range groups {
		var classes []*Group
	member:
		for _, rec := range g.Members {
			for _, c := range classes {
				for len(c.Members) > 0 {
					head := c.Members[0]
					same, err := compare(head.Path, rec.Path)
					if err != nil {
						d := DiagnosticFor(rec.Path, err)
						diags = append(diags, d)
						if d.Path == head.Path && head.Path != rec.Path {
							c.evictFirst()
							continue
						}
						continue member
					}
					if same {
						c.add(rec)
						continue member
					}
					break
				}
				if len(c.Members) == 0 {
					c.add(rec)
					continue member
				}
			}
			fp := g.Fingerprint
			if n := len(classes); n > 0 {
				fp.Key = fmt.Sprintf("%s#%d", fp.Key, n+1)
				fp.Label = fmt.Sprintf("%s (collision variant %d)", fp.Label, n+1)
			}
			c := &Group{Fingerprint: fp}
			c.add(rec)
			classes = append(classes, c)
		}
		out = append(out, classes...)
	}
	return Retained(s, out), diags
}

// evictFirst removes the first member and its category entry.
func (g *Group) evictFirst() {
	first := g.Members[0]
	g.Members = g.Members[1:]
	drop := func(recs []FileRecord) []FileRecord {
		for i, r := range recs {
			if r.Path == first.Path {
				return append(recs[:i:i], recs[i+1:]...)
			}
		}
		return recs
	}
	g.Raw = drop(g.Raw)
	g.JPEG = drop(g.JPEG)
}
