// Package render prints conflict reports to a terminal, highlighting the code
// of each side with the lexer matching the conflicted path.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/mattn/go-isatty"

	"github.com/thiagokokada/asyncgit-go/internal/git"
)

type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func ColorModeFromString(raw string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q", raw)
	}
}

type Renderer struct {
	style     *chroma.Style
	formatter chroma.Formatter
}

// New returns a renderer for out. It writes plain text when colors are
// disabled or out is not a terminal in ColorAuto mode.
func New(out io.Writer, theme ThemePreference, mode ColorMode) *Renderer {
	if !useColor(out, mode) {
		return &Renderer{}
	}
	return &Renderer{style: styleFor(theme), formatter: formatters.TTY256}
}

func useColor(out io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ConflictReport writes report, whose per-path blocks start at the lines
// given by sections.
func (r *Renderer) ConflictReport(w io.Writer, report string, sections []git.FileSection) error {
	starts := make(map[int]string, len(sections))
	for _, s := range sections {
		starts[s.Line] = s.Path
	}
	return r.write(w, report, starts, nil)
}

// Diff writes the unified diff of a single path.
func (r *Renderer) Diff(w io.Writer, path, diff string) error {
	return r.write(w, diff, nil, lexerForPath(path))
}

func (r *Renderer) write(w io.Writer, text string, starts map[int]string, lexer chroma.Lexer) error {
	if r.formatter == nil {
		_, err := io.WriteString(w, text)
		return err
	}
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		var tokens []chroma.Token
		if path, ok := starts[i+1]; ok {
			lexer = lexerForPath(path)
			tokens = []chroma.Token{{Type: chroma.GenericHeading, Value: line}}
		} else {
			tokens = diffLineTokens(lexer, line)
		}
		tokens = append(tokens, chroma.Token{Type: chroma.Text, Value: "\n"})
		if err := r.formatter.Format(w, r.style, chroma.Literator(tokens...)); err != nil {
			return fmt.Errorf("format line %d: %w", i+1, err)
		}
	}
	return nil
}

func diffLineTokens(lexer chroma.Lexer, line string) []chroma.Token {
	switch {
	case strings.HasPrefix(line, "--- "), strings.HasPrefix(line, "+++ "):
		return []chroma.Token{{Type: chroma.GenericHeading, Value: line}}
	case strings.HasPrefix(line, "@@"):
		return []chroma.Token{{Type: chroma.GenericSubheading, Value: line}}
	}
	code, ok := diffLineCode(line)
	if !ok {
		return []chroma.Token{{Type: chroma.Text, Value: line}}
	}
	var tokens []chroma.Token
	switch line[0] {
	case '+':
		tokens = append(tokens, chroma.Token{Type: chroma.GenericInserted, Value: "+"})
	case '-':
		tokens = append(tokens, chroma.Token{Type: chroma.GenericDeleted, Value: "-"})
	default:
		tokens = append(tokens, chroma.Token{Type: chroma.Text, Value: " "})
	}
	return append(tokens, codeTokens(lexer, code)...)
}

func codeTokens(lexer chroma.Lexer, code string) []chroma.Token {
	if lexer == nil || code == "" {
		return []chroma.Token{{Type: chroma.Text, Value: code}}
	}
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return []chroma.Token{{Type: chroma.Text, Value: code}}
	}
	var tokens []chroma.Token
	for _, token := range iterator.Tokens() {
		// Some lexers terminate their input with a newline.
		token.Value = strings.ReplaceAll(token.Value, "\n", "")
		if token.Value == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// diffLineCode strips the one column marker of a unified diff body line.
func diffLineCode(line string) (string, bool) {
	if line == "" {
		return "", false
	}
	switch line[0] {
	case '+', '-', ' ':
		return line[1:], true
	default:
		return "", false
	}
}

func lexerForPath(path string) chroma.Lexer {
	if path == "" {
		return nil
	}
	lexer := lexers.Match(path)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}
