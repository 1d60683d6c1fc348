// Package idgen provides pluggable ID generation for chunk records.
//
// The ingest pipeline accepts a Generator, so the ID strategy is a startup
// decision. Chunk files have always carried random UUIDs, which is the
// Default here.
package idgen

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers. Implementations must be
// safe for concurrent use.
type Generator func() string

// UUIDv4 returns a Generator that produces random RFC 9562 UUID v4 strings.
func UUIDv4() Generator {
	return func() string {
		return uuid.NewString()
	}
}

// UUIDv7 returns a Generator that produces time-sortable UUID v7 strings.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Sequence returns a Generator producing prefix1, prefix2, ... in call order.
// Used by tests and dry runs.
func Sequence(prefix string) Generator {
	var n atomic.Int64
	return func() string {
		return prefix + strconv.FormatInt(n.Add(1), 10)
	}
}

// Default is the generator used when none is configured.
var Default Generator = UUIDv4()

// Parse validates a UUID string and returns its canonical form. The chunk
// inspector uses it to flag ids that did not come from a UUID generator.
func Parse(s string) (string, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid UUID: %w", err)
	}
	return u.String(), nil
}
