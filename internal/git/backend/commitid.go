package backend

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// CommitID is the binary object name of a commit.
type CommitID [20]byte

var ZeroCommitID CommitID

func ParseCommitID(s string) (CommitID, error) {
	var id CommitID
	s = strings.TrimSpace(s)
	if len(s) != hex.EncodedLen(len(id)) {
		return id, fmt.Errorf("invalid commit id %q", s)
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("invalid commit id %q: %w", s, err)
	}
	return id, nil
}

func CommitIDFromHash(h plumbing.Hash) CommitID {
	return CommitID(h)
}

func (id CommitID) Hash() plumbing.Hash {
	return plumbing.Hash(id)
}

func (id CommitID) String() string {
	return hex.EncodeToString(id[:])
}

func (id CommitID) Short() string {
	return id.String()[:7]
}

func (id CommitID) IsZero() bool {
	return id == ZeroCommitID
}

// Compare orders ids by their binary representation.
func (id CommitID) Compare(other CommitID) int {
	return bytes.Compare(id[:], other[:])
}
