package entities

import (
	"fmt"
	"time"
)

// Signature is the author or committer identity on a commit.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// UnixTime returns the signature timestamp in unix seconds, the shape the
// git engine natively reports.
func (s Signature) UnixTime() int64 {
	if s.When.IsZero() {
		return 0
	}
	return s.When.Unix()
}

// Commit is a normalized commit, the same shape regardless of which vendor
// or engine produced it. Vendor APIs report ISO-8601 timestamps; clients
// convert them to time.Time at the boundary.
type Commit struct {
	SHA       string
	Message   string
	Author    Signature
	Committer Signature
	Parents   []string
}

// ParseVendorTime parses the ISO-8601 timestamps vendor APIs return.
// A zero time is returned for unparseable input so a single odd commit
// does not fail a whole page load.
func ParseVendorTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z0700"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// DirEntry is one entry of a directory listing.
type DirEntry struct {
	Name  string
	Path  string
	IsDir bool
	Size  int64
}

// CommitCount is the result of the unified commit-count operation. Most
// vendor APIs cannot report an exact total without full pagination, so a
// vendor-sourced count is flagged as an estimate.
type CommitCount struct {
	Count      int
	IsEstimate bool
}

func (c CommitCount) String() string {
	if c.IsEstimate {
		return fmt.Sprintf("~%d", c.Count)
	}
	return fmt.Sprintf("%d", c.Count)
}
