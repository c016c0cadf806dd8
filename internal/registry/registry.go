// Package registry maintains the in-memory index of a document root: a
// directory tree of JSON files keyed by logical path. Scans build a fresh
// snapshot off to the side and publish it with a single pointer swap, so
// readers always see a complete index.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// DefaultExtension is the document extension indexed when Options.Extension
// is left empty.
const DefaultExtension = ".json"

// ErrNotFound is returned by Resolve for logical paths with no document.
var ErrNotFound = errors.New("document not found")

// ErrInvalidRoot marks configuration errors: the document root is missing,
// unreadable, or not a directory. Fatal at construction time.
var ErrInvalidRoot = errors.New("invalid document root")

// Document is one indexed document. Value holds the decoded JSON body and
// is treated as opaque: the registry never inspects or mutates it after
// the scan that produced it.
type Document struct {
	// Path is the logical path: source path relative to the root with the
	// extension stripped, separators normalized to '/', case preserved.
	Path string `json:"path"`
	// File is the source path relative to the root.
	File string `json:"file"`
	// Value is the decoded JSON document.
	Value any `json:"value"`

	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// SkippedFile records one file a scan refused to admit and why.
type SkippedFile struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// ScanStats summarizes one completed scan for observers.
type ScanStats struct {
	Generation string
	Documents  int
	Skipped    int
	Elapsed    time.Duration
}

// Options configures a Registry.
type Options struct {
	// Extension selects which files are documents. Defaults to ".json".
	Extension string
	// AutoReload makes Resolve and List rescan the root before answering,
	// so every read reflects the live tree.
	AutoReload bool
	// DeferInitialScan skips the scan normally performed at construction.
	DeferInitialScan bool
	// Logger receives scan reports and skip warnings. Defaults to
	// slog.Default().
	Logger *slog.Logger
	// Validate, when set, gates each decoded document. A document that
	// fails the gate is skipped exactly like a malformed one.
	Validate func(doc any) error
	// OnScan, when set, observes every completed scan.
	OnScan func(ScanStats)
}

// Registry owns the scanning configuration and the current index snapshot.
type Registry struct {
	fs         billy.Filesystem
	name       string
	ext        string
	autoReload bool
	validate   func(any) error
	onScan     func(ScanStats)
	log        *slog.Logger

	mu   sync.RWMutex
	snap *snapshot
}

// snapshot is one immutable scan result. Readers obtain the pointer under
// the registry lock and use it lock-free afterwards.
type snapshot struct {
	generation string
	builtAt    time.Time
	docs       map[string]*Document
	paths      []string // sorted logical paths
	skipped    []SkippedFile
}

var emptySnapshot = &snapshot{}

// New builds a registry over a root directory on the host filesystem. The
// root must exist and be a directory; anything else wraps ErrInvalidRoot.
// Unless Options.DeferInitialScan is set, the root is scanned before New
// returns.
func New(root string, opts Options) (*Registry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root %q: %w: %v", root, ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %q is not a directory: %w", root, ErrInvalidRoot)
	}
	return NewWithFS(osfs.New(root), root, opts)
}

// NewWithFS builds a registry over an arbitrary billy filesystem whose
// root is the document root. name only labels logs and errors.
func NewWithFS(fsys billy.Filesystem, name string, opts Options) (*Registry, error) {
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	r := &Registry{
		fs:         fsys,
		name:       name,
		ext:        opts.Extension,
		autoReload: opts.AutoReload,
		validate:   opts.Validate,
		onScan:     opts.OnScan,
		log:        opts.Logger,
	}
	if !opts.DeferInitialScan {
		if err := r.Scan(context.Background()); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Resolve returns the document at a logical path, or ErrNotFound. Leading
// and trailing slashes are ignored. With AutoReload set, the root is
// rescanned first; a failing rescan fails the resolve.
func (r *Registry) Resolve(ctx context.Context, path string) (*Document, error) {
	if r.autoReload {
		if err := r.Scan(ctx); err != nil {
			return nil, err
		}
	}
	doc, ok := r.current().docs[strings.Trim(path, "/")]
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

// List returns every document ordered by logical path. The slice is fresh
// on each call; the documents themselves are shared and must be treated as
// read-only. With AutoReload set, the root is rescanned first.
func (r *Registry) List(ctx context.Context) ([]*Document, error) {
	if r.autoReload {
		if err := r.Scan(ctx); err != nil {
			return nil, err
		}
	}
	snap := r.current()
	docs := make([]*Document, 0, len(snap.paths))
	for _, p := range snap.paths {
		docs = append(docs, snap.docs[p])
	}
	return docs, nil
}

// Len reports the number of indexed documents.
func (r *Registry) Len() int {
	return len(r.current().paths)
}

// Generation returns the ULID tag of the current snapshot, or "" before
// the first scan.
func (r *Registry) Generation() string {
	return r.current().generation
}

// Skipped reports the files the current snapshot's scan refused to admit.
func (r *Registry) Skipped() []SkippedFile {
	snap := r.current()
	out := make([]SkippedFile, len(snap.skipped))
	copy(out, snap.skipped)
	return out
}

func (r *Registry) current() *snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snap == nil {
		return emptySnapshot
	}
	return r.snap
}

func (r *Registry) publish(snap *snapshot) {
	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()
}
