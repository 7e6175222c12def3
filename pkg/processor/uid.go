package processor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// ErrInvalidUIDLength is returned for UID lengths outside 1..32.
var ErrInvalidUIDLength = errors.New("processor: uid length must be between 1 and 32")

// DefaultUIDLength is the length of generated identifiers.
const DefaultUIDLength = 7

// UID adds a unique identifier to every record as extra "uid".
// The identifier stays the same until Reset is called, which makes it
// useful to correlate the records of a single request or job.
type UID struct {
	mu     sync.RWMutex
	uid    string
	length int
}

// NewUID creates a UID processor. Lengths outside 1..32 fall back to DefaultUIDLength.
func NewUID(length int) *UID {
	if err := ValidateUIDLength(length); err != nil {
		length = DefaultUIDLength
	}
	return &UID{uid: generateUID(length), length: length}
}

// ValidateUIDLength reports whether length can be used by NewUID.
func ValidateUIDLength(length int) error {
	if length < 1 || length > 32 {
		return ErrInvalidUIDLength
	}
	return nil
}

// UID returns the current identifier.
func (p *UID) UID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.uid
}

// Reset generates a new identifier.
func (p *UID) Reset() {
	p.mu.Lock()
	p.uid = generateUID(p.length)
	p.mu.Unlock()
}

func (p *UID) Process(_ context.Context, rec logger.Record) logger.Record {
	rec.AddExtra(slog.String("uid", p.UID()))
	return rec
}

func generateUID(length int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:length]
}
