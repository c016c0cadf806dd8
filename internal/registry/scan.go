package registry

import (
	"context"
	"encoding/json"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/util"
	"github.com/oklog/ulid/v2"
)

// Scan walks the whole root and atomically replaces the index with the
// result. Files that fail to decode or fail the validation gate are
// skipped with a warning; they never abort the scan. Directory symlinks
// are not followed. Unreadable subtrees are logged and skipped. Only a
// vanished root or a canceled context fails the scan.
func (r *Registry) Scan(ctx context.Context) error {
	start := time.Now()
	snap := &snapshot{
		generation: ulid.Make().String(),
		builtAt:    start,
		docs:       make(map[string]*Document),
	}

	if _, err := r.fs.Stat("/"); err != nil {
		return fmt.Errorf("scan root %q: %w: %v", r.name, ErrInvalidRoot, err)
	}

	walkErr := util.Walk(r.fs, "/", func(file string, info iofs.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if file == "/" {
				return fmt.Errorf("%w: %v", ErrInvalidRoot, err)
			}
			// Unreadable entry. Keep scanning the rest of the tree.
			r.log.Warn("skipping unreadable path", "root", r.name, "file", file, "err", err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}
		if filepath.Ext(file) != r.ext {
			return nil
		}
		r.admit(snap, file, info)
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("scan root %q: %w", r.name, walkErr)
	}

	snap.paths = make([]string, 0, len(snap.docs))
	for p := range snap.docs {
		snap.paths = append(snap.paths, p)
	}
	sort.Strings(snap.paths)

	r.publish(snap)

	elapsed := time.Since(start)
	r.log.Info("scan complete",
		"root", r.name,
		"generation", snap.generation,
		"documents", len(snap.paths),
		"skipped", len(snap.skipped),
		"elapsed", elapsed,
	)
	if r.onScan != nil {
		r.onScan(ScanStats{
			Generation: snap.generation,
			Documents:  len(snap.paths),
			Skipped:    len(snap.skipped),
			Elapsed:    elapsed,
		})
	}
	return nil
}

// admit decodes one candidate file into the snapshot under construction.
// Decode and validation failures are recorded and skipped.
func (r *Registry) admit(snap *snapshot, file string, info iofs.FileInfo) {
	rel := strings.TrimPrefix(filepath.ToSlash(file), "/")

	data, err := util.ReadFile(r.fs, file)
	if err != nil {
		r.skip(snap, rel, "read", err)
		return
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		r.skip(snap, rel, "decode", err)
		return
	}
	if r.validate != nil {
		if err := r.validate(value); err != nil {
			r.skip(snap, rel, "validate", err)
			return
		}
	}

	logical := logicalPath(rel, r.ext)
	snap.docs[logical] = &Document{
		Path:    logical,
		File:    rel,
		Value:   value,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

func (r *Registry) skip(snap *snapshot, file, stage string, err error) {
	r.log.Warn("skipping document",
		"root", r.name, "file", file, "stage", stage, "err", err)
	snap.skipped = append(snap.skipped, SkippedFile{
		File:   file,
		Reason: fmt.Sprintf("%s: %v", stage, err),
	})
}

// logicalPath maps a root-relative source path to its logical path: the
// extension stripped, separators already '/', no leading or trailing
// slash, character case preserved.
func logicalPath(rel, ext string) string {
	return strings.Trim(strings.TrimSuffix(rel, ext), "/")
}
