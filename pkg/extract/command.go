package extract

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkgbatch/pkg/kind"
)

// DefaultBinary is the extractor executable looked up on PATH when no
// explicit path is configured.
const DefaultBinary = "repkg"

// CommandOptions configures the external extractor invocation.
type CommandOptions struct {
	Binary  string // extractor executable (default: DefaultBinary)
	Verbose bool   // tee extractor stderr to os.Stderr in real time
}

// CommandService invokes the extractor binary once per archive, the same
// per-file call shape the batch driver replaces:
//
//	<binary> <routine> <source> -o <output>
type CommandService struct {
	opts CommandOptions
}

// NewCommandService creates a service around the configured binary.
func NewCommandService(opts CommandOptions) *CommandService {
	if opts.Binary == "" {
		opts.Binary = DefaultBinary
	}
	return &CommandService{opts: opts}
}

// Args returns the argument vector (after the binary name) for one
// invocation.
func (s *CommandService) Args(source string, k kind.Kind, output string) []string {
	return []string{k.Routine(), source, "-o", output}
}

// Extract runs the extractor and classifies any failure. Stderr is
// captured for classification; with Verbose it is also streamed through.
func (s *CommandService) Extract(ctx context.Context, source string, k kind.Kind, output string) error {
	cmd := exec.CommandContext(ctx, s.opts.Binary, s.Args(source, k, output)...)

	var stderr bytes.Buffer
	if s.opts.Verbose {
		cmd.Stderr = io.MultiWriter(&stderr, os.Stderr)
	} else {
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return AsFailure(ctxErr)
	}
	return classify(err, stderr.String())
}

// stderr markers emitted by the extractor, checked before falling back
// to the exit status.
var (
	corruptMarkers = []string{
		"unable to decompress",
		"unexpected eof",
		"invalid magic",
		"corrupt",
		"truncated",
	}
	unsupportedMarkers = []string{
		"unsupported",
		"unimplemented",
		"not supported",
		"still incomplete",
	}
	ioMarkers = []string{
		"permission denied",
		"no such file",
		"no space left",
		"read-only file system",
	}
)

// classify maps an extractor failure to the typed taxonomy. Unknown
// failures default to IOError so the batch report never loses a reason.
func classify(err error, stderr string) *Failure {
	lower := strings.ToLower(stderr)
	detail := lastLine(stderr)

	for _, m := range corruptMarkers {
		if strings.Contains(lower, m) {
			return &Failure{Kind: CorruptInput, Detail: detail}
		}
	}
	for _, m := range unsupportedMarkers {
		if strings.Contains(lower, m) {
			return &Failure{Kind: UnsupportedVariant, Detail: detail}
		}
	}
	for _, m := range ioMarkers {
		if strings.Contains(lower, m) {
			return &Failure{Kind: IOError, Detail: detail}
		}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if detail == "" {
			detail = exitErr.Error()
		}
		return &Failure{Kind: IOError, Detail: detail}
	}
	// Binary missing, not executable, etc.
	return &Failure{Kind: IOError, Detail: err.Error()}
}

// lastLine returns the final non-empty stderr line, where the extractor
// reports its actual error.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
