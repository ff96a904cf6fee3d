package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for routing and user-visible behavior.
type Kind int

const (
	// Internal is an unexpected condition inside the updater itself.
	Internal Kind = iota
	// NetworkUnavailable recovers to offline mode when the install is bootstrapped.
	NetworkUnavailable
	// RemoteDataMalformed means a manifest or index document could not be understood.
	RemoteDataMalformed
	// ComponentRuntimeMissing is a host prerequisite (Java) the updater cannot install.
	ComponentRuntimeMissing
	// DownloadVerificationFailed means a downloaded artifact failed its integrity check.
	DownloadVerificationFailed
	// Filesystem wraps a local I/O failure with its operation and path.
	Filesystem
	// ExternalProcessFailed wraps a non-zero exit from an external tool.
	ExternalProcessFailed
	// SelfUpdateFailed is always recovered: logged, pipeline continues.
	SelfUpdateFailed
)

// String returns a stable identifier for the kind.
func (k Kind) String() string {
	switch k {
	case NetworkUnavailable:
		return "network_unavailable"
	case RemoteDataMalformed:
		return "remote_data_malformed"
	case ComponentRuntimeMissing:
		return "component_runtime_missing"
	case DownloadVerificationFailed:
		return "download_verification_failed"
	case Filesystem:
		return "filesystem"
	case ExternalProcessFailed:
		return "external_process_failed"
	case SelfUpdateFailed:
		return "self_update_failed"
	default:
		return "internal"
	}
}

// Error is a classified error. Op and Path are optional context that is
// rendered in front of the cause.
type Error struct {
	Kind Kind
	Op   string
	Path string
	// Hint is a best-effort diagnosis shown after the message.
	Hint string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(e.Path)
	}
	if e.Err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	if b.Len() == 0 {
		b.WriteString(e.Kind.String())
	}
	if e.Hint != "" {
		b.WriteString("\nhint: ")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error without a cause.
func New(kind Kind, op string) *Error {
	return &Error{Kind: kind, Op: op}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(err error, kind Kind, op string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// WrapPath classifies err and records the path it concerns.
func WrapPath(err error, kind Kind, op, path string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// Errorf creates a classified error from a format string. %w verbs are honored.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind of the outermost classified error in err's chain,
// or Internal when err carries no classification.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Internal
}

// Is reports whether err's classification equals kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
