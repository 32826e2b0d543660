package scanner

import (
	"time"

	"github.com/djherbis/times"
)

// birthTime returns the creation time when the platform records one.
func birthTime(path string) time.Time {
	ts, err := times.Stat(path)
	if err != nil || !ts.HasBirthTime() {
		return time.Time{}
	}
	return ts.BirthTime()
}
