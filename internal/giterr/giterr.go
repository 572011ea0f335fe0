// Package giterr defines the closed set of failures surfaced by repository
// operations.
//
// Every error produced by the rebase engine and the async controllers is an
// *Error with one of the Kind values below. Sentinels such as ErrRebaseConflict
// match any error of the same kind through errors.Is, so callers can classify
// failures without string matching.
package giterr

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

type Kind uint8

const (
	KindGeneric Kind = iota
	KindNoHead
	KindRebaseConflict
	KindUnknownRemote
	KindNoDefaultRemoteFound
	KindNoWorkDir
	KindUncommittedChanges
	KindIO
	KindGit
	KindUTF8
	KindIntConversion
)

func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindNoHead:
		return "no head"
	case KindRebaseConflict:
		return "rebase conflict"
	case KindUnknownRemote:
		return "unknown remote"
	case KindNoDefaultRemoteFound:
		return "no default remote"
	case KindNoWorkDir:
		return "no work dir"
	case KindUncommittedChanges:
		return "uncommitted changes"
	case KindIO:
		return "io"
	case KindGit:
		return "git"
	case KindUTF8:
		return "utf8"
	case KindIntConversion:
		return "int conversion"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Message is only used by KindGeneric; Err
// holds the wrapped collaborator error for the wrapping kinds.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

var (
	ErrNoHead               = &Error{Kind: KindNoHead}
	ErrRebaseConflict       = &Error{Kind: KindRebaseConflict}
	ErrUnknownRemote        = &Error{Kind: KindUnknownRemote}
	ErrNoDefaultRemoteFound = &Error{Kind: KindNoDefaultRemoteFound}
	ErrNoWorkDir            = &Error{Kind: KindNoWorkDir}
	ErrUncommittedChanges   = &Error{Kind: KindUncommittedChanges}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindGeneric:
		return fmt.Sprintf("`%s`", e.Message)
	case KindNoHead:
		return "git: no head found"
	case KindRebaseConflict:
		return "git: conflict during rebase"
	case KindUnknownRemote:
		return "git: remote url not found"
	case KindNoDefaultRemoteFound:
		return "git: inconclusive remotes"
	case KindNoWorkDir:
		return "git: work dir error"
	case KindUncommittedChanges:
		return "git: uncommitted changes"
	case KindIO:
		return fmt.Sprintf("io error:%v", e.Err)
	case KindGit:
		return fmt.Sprintf("git error:%v", e.Err)
	case KindUTF8:
		return fmt.Sprintf("utf8 error:%v", e.Err)
	case KindIntConversion:
		return fmt.Sprintf("TryFromInt error:%v", e.Err)
	default:
		return "git: unknown error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a bare sentinel of the same kind. Generic
// errors only match when their messages are equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	if t.Kind == KindGeneric {
		return t.Message == e.Message
	}
	return t.Err == nil
}

func Generic(msg string) error {
	return &Error{Kind: KindGeneric, Message: msg}
}

func Genericf(format string, args ...any) error {
	return Generic(fmt.Sprintf(format, args...))
}

// Wrap classifies err under kind. A nil err stays nil and an already
// classified error is returned unchanged.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

func IO(err error) error {
	return Wrap(KindIO, err)
}

func Git(err error) error {
	return Wrap(KindGit, err)
}

// FromPanic turns a value recovered from a panicking worker into a Generic
// error.
func FromPanic(v any) error {
	if err, ok := v.(error); ok {
		return Generic(fmt.Sprintf("poison error: %v", err))
	}
	return Generic(fmt.Sprintf("poison error: %v", v))
}

// Atoi parses a decimal integer, classifying failures as IntConversion.
func Atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, Wrap(KindIntConversion, err)
	}
	return n, nil
}

// String validates that b is UTF-8 before converting it.
func String(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", Wrap(KindUTF8, fmt.Errorf("invalid utf-8 sequence in %q", b))
	}
	return string(b), nil
}

// Message renders err for the result slot of an async operation.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// KindOf returns the kind of err, or KindGeneric when err is unclassified.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindGeneric
}
