package becomepass

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

type Resolver struct {
	runner Runner
}

func NewResolver(runner Runner) *Resolver {
	if runner == nil {
		runner = NewExecRunner()
	}
	return &Resolver{runner: runner}
}

// Resolve runs command with name as its only argument from workdir. The
// returned bool is false when the command printed nothing but line endings.
func (r *Resolver) Resolve(ctx context.Context, command, name, workdir string) (string, bool, error) {
	path := command
	if workdir != "" && !filepath.IsAbs(path) && strings.ContainsRune(path, os.PathSeparator) {
		path = filepath.Join(workdir, path)
	}
	stdout, err := r.runner.Run(ctx, path, []string{name}, workdir)
	if err != nil {
		return "", false, &ResolutionError{Command: command, Entity: name, Err: err}
	}
	if !utf8.Valid(stdout) {
		return "", false, &ResolutionError{Command: command, Entity: name, Err: ErrInvalidOutput}
	}
	secret := strings.TrimRight(string(stdout), "\r\n")
	return secret, secret != "", nil
}
