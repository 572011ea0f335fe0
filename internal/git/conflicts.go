package git

import (
	"fmt"
	"strings"
)

func (s *Service) Conflicts() ([]Conflict, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.backend.IndexConflicts()
}

func (s *Service) ConflictDiff(path string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("path not specified")
	}
	return s.backend.ConflictDiff(path)
}

// ConflictReport renders the ours/theirs diff of every unmerged path, one
// block per path, and the line each block starts at. An empty report means
// the index has no conflicts.
func (s *Service) ConflictReport() (string, []FileSection, error) {
	conflicts, err := s.Conflicts()
	if err != nil {
		return "", nil, err
	}
	var b strings.Builder
	var sections []FileSection
	line := 1
	for _, c := range conflicts {
		header := conflictHeader(c)
		diffText, err := s.backend.ConflictDiff(c.Path)
		if err != nil {
			return "", nil, err
		}
		sections = append(sections, FileSection{Path: c.Path, Line: line})
		b.WriteString(header)
		b.WriteByte('\n')
		b.WriteString(diffText)
		if diffText != "" && !strings.HasSuffix(diffText, "\n") {
			b.WriteByte('\n')
		}
		line += 1 + strings.Count(diffText, "\n")
		if diffText != "" && !strings.HasSuffix(diffText, "\n") {
			line++
		}
	}
	return b.String(), sections, nil
}

func conflictHeader(c Conflict) string {
	var sides []string
	if c.Ancestor {
		sides = append(sides, "base")
	}
	if c.Ours {
		sides = append(sides, "ours")
	}
	if c.Theirs {
		sides = append(sides, "theirs")
	}
	return fmt.Sprintf("conflict %s (%s)", c.Path, strings.Join(sides, ", "))
}
