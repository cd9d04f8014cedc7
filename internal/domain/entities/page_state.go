package entities

// DefaultPageSize is the commit page size used when a caller does not
// choose one.
const DefaultPageSize = 30

// CommitPageState is the mutable paging state one commit loader keeps per
// repository. TotalCommits is -1 until a total (exact or estimated) is
// known for the current branch session.
type CommitPageState struct {
	Commits         []Commit
	TotalCommits    int
	TotalIsEstimate bool
	CurrentPage     int
	PageSize        int
	HasMore         bool
	CurrentBranch   string
	MainBranch      string
}

// NewCommitPageState returns the initial state for a branch session.
func NewCommitPageState(pageSize int) CommitPageState {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return CommitPageState{
		TotalCommits: -1,
		CurrentPage:  1,
		PageSize:     pageSize,
	}
}

// TotalKnown reports whether a total has been established for the current
// branch session.
func (s *CommitPageState) TotalKnown() bool { return s.TotalCommits >= 0 }

// DeriveHasMore implements the paging invariant: when an exact total is
// known, more pages exist while currentPage*pageSize is below it; when the
// total is unknown or only an estimate, a full last page is the heuristic
// signal that more commits may exist.
func (s *CommitPageState) DeriveHasMore(lastPageLen int) bool {
	if s.TotalKnown() && !s.TotalIsEstimate {
		return s.CurrentPage*s.PageSize < s.TotalCommits
	}
	return lastPageLen == s.PageSize
}

// ResetForBranch clears accumulated commits and totals for a new branch
// session, keeping the page size. The underlying page cache is branch-keyed
// and therefore untouched.
func (s *CommitPageState) ResetForBranch(branch, mainBranch string) {
	s.Commits = nil
	s.TotalCommits = -1
	s.TotalIsEstimate = false
	s.CurrentPage = 1
	s.HasMore = false
	s.CurrentBranch = branch
	s.MainBranch = mainBranch
}
