package output

import (
	"fmt"
	"io"
	"testing"
	"time"

	"photodup/dedup"
)

func BenchmarkRenderJSON(b *testing.B) {
	groups := make([]*dedup.Group, 0, 200)
	for i := range 200 {
		g := &dedup.Group{Fingerprint: dedup.Fingerprint{Strategy: dedup.StrategyContentHash, Key: fmt.Sprintf("sha256:%064d", i)}}
		for j := range 3 {
			rec := dedup.FileRecord{Path: fmt.Sprintf("/photos/%d/DSC_%04d.NEF", j, i), Size: 25 << 20, ModTime: time.Unix(1700000000, 0), Category: dedup.CategoryRaw}
			g.Members = append(g.Members, rec)
			g.Raw = append(g.Raw, rec)
		}
		groups = append(groups, g)
	}
	rep := Build(Input{Root: "/photos", Strategy: dedup.StrategyContentHash, Groups: groups, Metrics: Metrics{FilesScanned: 600}})

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := renderJSON(io.Discard, rep); err != nil {
			b.Fatal(err)
		}
	}
}
