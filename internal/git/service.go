package git

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	gitbackend "github.com/thiagokokada/asyncgit-go/internal/git/backend"
	"github.com/thiagokokada/asyncgit-go/internal/giterr"
)

// Service runs synchronous repository operations on top of a Backend. All
// methods block and are meant to be called from worker goroutines; the async
// controllers in internal/asyncgit wrap the long-running ones.
type Service struct {
	// mu serializes operations that move HEAD or the work tree.
	mu sync.Mutex

	backend gitbackend.Backend
}

func Open(repoPath string) (*Service, error) {
	b, err := gitbackend.Open(repoPath)
	if err != nil {
		return nil, err
	}
	slog.Debug("repository opened", slog.String("path", b.RepoPath()), slog.String("gitdir", b.GitDir()))
	return NewWithBackend(b), nil
}

func NewWithBackend(b gitbackend.Backend) *Service {
	return &Service{backend: b}
}

func (s *Service) RepoPath() string {
	if s.backend == nil {
		return ""
	}
	return s.backend.RepoPath()
}

func (s *Service) GitDir() string {
	if s.backend == nil {
		return ""
	}
	return s.backend.GitDir()
}

func (s *Service) ready() error {
	if s.backend == nil || s.backend.RepoPath() == "" {
		return fmt.Errorf("repository root not set")
	}
	return nil
}

func (s *Service) RepoState() (RepoState, error) {
	if err := s.ready(); err != nil {
		return RepoStateClean, err
	}
	return s.backend.RepoState()
}

func (s *Service) LocalChanges() (LocalChanges, error) {
	if err := s.ready(); err != nil {
		return LocalChanges{}, err
	}
	return s.backend.LocalChangesStatus()
}

// HeadBranch returns the short name of the checked out branch. A detached or
// unborn HEAD yields giterr.ErrNoHead.
func (s *Service) HeadBranch() (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	_, headName, ok, err := s.backend.HeadState()
	if err != nil {
		return "", giterr.Git(err)
	}
	if !ok || !strings.HasPrefix(headName, "refs/heads/") {
		return "", giterr.ErrNoHead
	}
	return strings.TrimPrefix(headName, "refs/heads/"), nil
}
