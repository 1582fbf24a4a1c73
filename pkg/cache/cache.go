// Package cache provides pluggable byte caches for rendered diagrams.
//
// The render server caches two products per graph: the text diagram for a
// given option set, and exported artifacts (DOT, SVG). Keys derive from the
// graph's content hash plus the options that shaped the output, so any
// change to either invalidates naturally.
//
// Three backends implement [Cache]: [FileCache] for CLI usage, a Redis
// backend for the server, and [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with optional
// expiration. A zero ttl means no expiration. Get reports a miss with
// hit=false and a nil error; errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// RenderKeyOpts are the option fields that change a text rendering. Only
// fields that alter output bytes belong here.
type RenderKeyOpts struct {
	Style            string
	ASCII            bool
	ShowArrows       bool
	NodeSpacing      int
	LayerSpacing     int
	LeftPadding      int
	BinaryTree       bool
	DensityThreshold float64
}

// ArtifactKeyOpts identify an exported artifact derived from a graph.
type ArtifactKeyOpts struct {
	// Format is the artifact type: "dot" or "svg".
	Format string
}

// Keyer builds cache keys. Implementations must be deterministic: the same
// inputs always yield the same key.
type Keyer interface {
	// RenderKey keys a text rendering of the graph with the given content
	// hash under the given options.
	RenderKey(graphHash string, opts RenderKeyOpts) string

	// ArtifactKey keys an exported artifact of the graph with the given
	// content hash.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key scheme: a type prefix followed by a
// SHA-256 over the hash and options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// RenderKey generates a key for a cached text rendering.
func (k *DefaultKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return hashKey("render", graphHash, opts)
}

// ArtifactKey generates a key for a cached artifact.
func (k *DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}

var _ Keyer = (*DefaultKeyer)(nil)
