package domain

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrValidation     = errors.New("validation error")
	ErrPackage        = errors.New("package error")
	ErrNotImplemented = errors.New("not implemented")
)

// Validation failure codes reported by the lifecycle validator.
const (
	CodeNoGit         = "ENOGIT"
	CodeNoPackage     = "ENOPKG"
	CodeNoConfig      = "ENOLERNA"
	CodeNoVersion     = "ENOVERSION"
	CodeVersionMode   = "EVERSIONMODE"
	CodeNoWorkspaces  = "ENOWORKSPACES"
	CodeJSONParse     = "EJSONPARSE"
	CodeNoScript      = "ENOSCRIPT"
	CodeUnimplemented = "ENOTIMPLEMENTED"
	CodeUnclassified  = "EUNCLASSIFIED"
)

// Kind is the classification of a failure, which decides how it is reported.
type Kind int

const (
	// KindUnclassified covers every error that is neither a validation nor a
	// package failure. These get a stack trace and a diagnostic log file.
	KindUnclassified Kind = iota
	// KindValidation is a pre-execution contract violation.
	KindValidation
	// KindPackage is a failure attributable to one package's process.
	KindPackage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPackage:
		return "package"
	default:
		return "unclassified"
	}
}

// KindOf classifies err by walking its chain. A package failure wins over a
// validation failure when both are present.
func KindOf(err error) Kind {
	var pkgErr *PackageError
	if errors.As(err, &pkgErr) {
		return KindPackage
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return KindValidation
	}
	return KindUnclassified
}

// ValidationError is a classified pre-execution failure with a short machine
// code. Use errors.Is(err, ErrValidation) for simple checks, or errors.As to
// read the code.
type ValidationError struct {
	Code    string
	Message string
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Code + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// PackageError is a failure of a process run on behalf of one package. It
// carries the captured output so it can be reported without a stack dump.
type PackageError struct {
	Package  string
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *PackageError) Error() string {
	msg := fmt.Sprintf("%s exited %d in '%s'", e.Command, e.ExitCode, e.Package)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PackageError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrPackage so callers can use errors.Is
// without knowing the concrete type.
func (e *PackageError) Is(target error) bool {
	return target == ErrPackage
}

// UnclassifiedError wraps an arbitrary error with a code and the call stack
// captured at construction.
type UnclassifiedError struct {
	Code  string
	Err   error
	stack []uintptr
}

// NewUnclassified wraps err, capturing the caller's stack.
func NewUnclassified(code string, err error) *UnclassifiedError {
	return newUnclassified(code, err, 3)
}

// Unclassifiedf formats a new UnclassifiedError, capturing the caller's stack.
func Unclassifiedf(code, format string, args ...any) *UnclassifiedError {
	return newUnclassified(code, fmt.Errorf(format, args...), 3)
}

func newUnclassified(code string, err error, skip int) *UnclassifiedError {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	return &UnclassifiedError{Code: code, Err: err, stack: pcs[:n]}
}

func (e *UnclassifiedError) Error() string {
	return e.Code + ": " + e.Err.Error()
}

func (e *UnclassifiedError) Unwrap() error {
	return e.Err
}

// StackTrace returns the frames captured when the error was created.
func (e *UnclassifiedError) StackTrace() []runtime.Frame {
	if len(e.stack) == 0 {
		return nil
	}
	frames := runtime.CallersFrames(e.stack)
	var out []runtime.Frame
	for {
		frame, more := frames.Next()
		out = append(out, frame)
		if !more {
			break
		}
	}
	return out
}

// FormatFrames renders frames one per line in "function\n\tfile:line" form,
// skipping every frame whose function name starts with one of the prefixes.
func FormatFrames(frames []runtime.Frame, skipPrefixes ...string) string {
	var b strings.Builder
outer:
	for _, f := range frames {
		for _, p := range skipPrefixes {
			if strings.HasPrefix(f.Function, p) {
				continue outer
			}
		}
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
	}
	return b.String()
}
