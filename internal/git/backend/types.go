package backend

import "time"

type Signature struct {
	Name  string
	Email string
	When  time.Time
}

type LocalChanges struct {
	HasWorktree  bool
	HasStaged    bool
	HasConflicts bool
}

// Clean reports whether neither the index nor the work tree differ from HEAD.
// Untracked files are not considered.
func (c LocalChanges) Clean() bool {
	return !c.HasWorktree && !c.HasStaged && !c.HasConflicts
}

type RepoState uint8

const (
	RepoStateClean RepoState = iota
	RepoStateRebase
	RepoStateMerge
	RepoStateCherryPick
)

func (s RepoState) String() string {
	switch s {
	case RepoStateRebase:
		return "rebase"
	case RepoStateMerge:
		return "merge"
	case RepoStateCherryPick:
		return "cherry-pick"
	default:
		return "clean"
	}
}

// Operation is one step of a rebase: the original commit being replayed.
type Operation struct {
	Index  int
	Commit CommitID
}

// Conflict is an unmerged index path. The stage flags tell which sides
// of the merge have a version of the file.
type Conflict struct {
	Path     string
	Ancestor bool
	Ours     bool
	Theirs   bool
}

type BasicAuthCredential struct {
	Username string
	Password string
}

// IsComplete reports whether both parts of the credential are present.
func (c *BasicAuthCredential) IsComplete() bool {
	return c != nil && c.Username != "" && c.Password != ""
}

type PushOptions struct {
	Remote     string
	Branch     string
	Force      bool
	Delete     bool
	Credential *BasicAuthCredential
}

type FetchOptions struct {
	Remote     string
	Branch     string
	Credential *BasicAuthCredential
}
