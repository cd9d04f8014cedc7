package entities

import (
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"golang.org/x/mod/semver"
)

// RefType distinguishes branch refs from tag refs.
type RefType string

const (
	RefTypeHeads RefType = "heads"
	RefTypeTags  RefType = "tags"
)

// Ref is a normalized reference, the same shape regardless of which vendor
// or engine produced it.
type Ref struct {
	Name     string
	Type     RefType
	FullRef  string
	CommitID string
}

// NewBranchRef builds a heads ref from a short name and target commit.
func NewBranchRef(name, commitID string) Ref {
	short := ShortRefName(name)
	return Ref{
		Name:     short,
		Type:     RefTypeHeads,
		FullRef:  "refs/heads/" + short,
		CommitID: commitID,
	}
}

// NewTagRef builds a tags ref from a short name and target commit.
func NewTagRef(name, commitID string) Ref {
	short := ShortRefName(name)
	return Ref{
		Name:     short,
		Type:     RefTypeTags,
		FullRef:  "refs/tags/" + short,
		CommitID: commitID,
	}
}

// IsTag reports whether the ref is a read-only view point.
func (r Ref) IsTag() bool { return r.Type == RefTypeTags }

// ShortRefName strips any refs/heads/ or refs/tags/ prefix.
func ShortRefName(name string) string {
	return plumbing.ReferenceName(strings.TrimSpace(name)).Short()
}

// SortRefs orders branches before tags, branches alphabetically and tags
// version-descending so the newest release lands first. Non-semver tags
// fall back to reverse lexical order.
func SortRefs(refs []Ref) {
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].Type != refs[j].Type {
			return refs[i].Type == RefTypeHeads
		}
		if refs[i].Type == RefTypeHeads {
			return refs[i].Name < refs[j].Name
		}
		v1 := normalizeVersion(refs[i].Name)
		v2 := normalizeVersion(refs[j].Name)
		if semver.IsValid(v1) && semver.IsValid(v2) {
			return semver.Compare(v1, v2) > 0
		}
		return refs[i].Name > refs[j].Name
	})
}

func normalizeVersion(version string) string {
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}
