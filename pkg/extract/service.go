// Package extract defines the contract with the external extraction
// tool and the typed failure taxonomy reported per archive.
package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/pkgbatch/pkg/kind"
)

// FailureKind classifies why a single extraction failed.
type FailureKind string

const (
	CorruptInput       FailureKind = "corrupt-input"
	UnsupportedVariant FailureKind = "unsupported-variant"
	IOError            FailureKind = "io-error"
	OutputConflict     FailureKind = "output-conflict"
	Cancelled          FailureKind = "cancelled"
)

// Failure is a classified extraction error for one archive.
type Failure struct {
	Kind   FailureKind
	Detail string
}

func (f *Failure) Error() string {
	if f.Detail == "" {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

// NewFailure builds a Failure with a formatted detail message.
func NewFailure(k FailureKind, format string, args ...any) *Failure {
	return &Failure{Kind: k, Detail: fmt.Sprintf(format, args...)}
}

// AsFailure coerces any error into a classified Failure. Typed failures
// pass through; context errors map to Cancelled; everything else is an
// IOError.
func AsFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Kind: Cancelled, Detail: err.Error()}
	}
	return &Failure{Kind: IOError, Detail: err.Error()}
}

// Service unpacks one archive into an output directory. Implementations
// must be safe for concurrent use and idempotent when re-invoked on the
// same output path after it has been cleared.
type Service interface {
	Extract(ctx context.Context, source string, k kind.Kind, output string) error
}
