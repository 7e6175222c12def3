package processor

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Git adds the branch and commit of the working tree as extra "git".
// The repository is inspected once, on the first record.
type Git struct {
	once   sync.Once
	info   slog.Attr
	path   string
	level  slog.Level
	loaded bool
}

// NewGit creates the processor for records at or above level.
// path is the repository directory; empty means the working directory.
func NewGit(level slog.Level, path string) *Git {
	return &Git{level: level, path: path}
}

func (p *Git) Process(ctx context.Context, rec logger.Record) logger.Record {
	if rec.Level < p.level {
		return rec
	}
	p.once.Do(func() { p.load(ctx) })
	if p.loaded {
		rec.AddExtra(p.info)
	}
	return rec
}

func (p *Git) load(ctx context.Context) {
	branch, err := p.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return
	}
	commit, err := p.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		return
	}
	p.info = slog.Group("git", slog.String("branch", branch), slog.String("commit", commit))
	p.loaded = true
}

func (p *Git) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = p.path
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
