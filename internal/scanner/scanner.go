// Package scanner lists input files and feeds them to callers in fixed-size
// chunks, so a directory of any size is loaded one batch at a time.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// ErrStop can be returned from a chunk callback to end iteration early
// without an error.
var ErrStop = errors.New("stop iteration")

// Options configures a scan.
type Options struct {
	// Root is the directory to list.
	Root string

	// ChunkSize is the maximum number of paths handed to the callback at once.
	ChunkSize int

	// Recursive descends into subdirectories.
	Recursive bool

	// Exclude holds glob patterns matched against base names (filepath.Match syntax).
	Exclude []string
}

// ChunkFunc receives successive chunks of paths. The slice is reused after
// the call returns.
type ChunkFunc func(chunk []string) error

// Validate checks the options.
func (o Options) Validate() error {
	if o.Root == "" {
		return fmt.Errorf("root is required")
	}
	if o.ChunkSize < 1 {
		return fmt.Errorf("chunk size must be at least 1, got %d", o.ChunkSize)
	}
	for _, p := range o.Exclude {
		if _, err := filepath.Match(p, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
	}
	return nil
}

// Chunks lists opts.Root in lexical order and calls fn with chunks of at
// most opts.ChunkSize paths, flushing the final partial chunk last.
// Directories, non-regular files and empty files are skipped.
func Chunks(ctx context.Context, opts Options, fn ChunkFunc) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	b := &batcher{size: opts.ChunkSize, fn: fn}
	if err := walk(ctx, opts, b.add); err != nil {
		return stopIsNil(err)
	}
	return stopIsNil(b.flush())
}

// ChunkInputs is Chunks over a mixed list of files and directories. Files
// are passed through as given, so a missing file reaches the caller and
// fails its validation. Directories are listed with opts (Root is ignored).
// Paths keep input order and chunks may span inputs.
func ChunkInputs(ctx context.Context, inputs []string, opts Options, fn ChunkFunc) error {
	if opts.ChunkSize < 1 {
		return fmt.Errorf("chunk size must be at least 1, got %d", opts.ChunkSize)
	}

	b := &batcher{size: opts.ChunkSize, fn: fn}
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil || !info.IsDir() {
			if err := b.add(in); err != nil {
				return stopIsNil(err)
			}
			continue
		}

		dirOpts := opts
		dirOpts.Root = in
		if err := dirOpts.Validate(); err != nil {
			return err
		}
		if err := walk(ctx, dirOpts, b.add); err != nil {
			return stopIsNil(err)
		}
	}
	return stopIsNil(b.flush())
}

// List returns every path Chunks would produce.
func List(ctx context.Context, opts Options) ([]string, error) {
	if opts.ChunkSize == 0 {
		opts.ChunkSize = 1
	}
	var paths []string
	err := Chunks(ctx, opts, func(chunk []string) error {
		paths = append(paths, chunk...)
		return nil
	})
	return paths, err
}

func stopIsNil(err error) error {
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

// batcher accumulates paths and hands full chunks to fn.
type batcher struct {
	size  int
	fn    ChunkFunc
	buf   []string
	count int
}

func (b *batcher) add(path string) error {
	b.buf = append(b.buf, path)
	if len(b.buf) < b.size {
		return nil
	}
	return b.emit()
}

func (b *batcher) flush() error {
	if len(b.buf) == 0 {
		return nil
	}
	return b.emit()
}

func (b *batcher) emit() error {
	b.count++
	slog.Debug("scan_chunk_ready",
		slog.Int("chunk_id", b.count),
		slog.Int("files", len(b.buf)))
	err := b.fn(b.buf)
	b.buf = b.buf[:0]
	return err
}

// walk visits every candidate file under opts.Root in lexical order.
func walk(ctx context.Context, opts Options, visit func(path string) error) error {
	if !opts.Recursive {
		entries, err := os.ReadDir(opts.Root)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", opts.Root, err)
		}
		for _, d := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(opts.Root, d.Name())
			if !include(path, d, opts.Exclude) {
				continue
			}
			if err := visit(path); err != nil {
				return err
			}
		}
		return nil
	}

	err := filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == opts.Root {
				return err
			}
			slog.Warn("scan_entry_skipped",
				slog.String("path", path),
				slog.String("error", err.Error()))
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != opts.Root && excluded(d.Name(), opts.Exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if !include(path, d, opts.Exclude) {
			return nil
		}
		return visit(path)
	})
	if err != nil && !errors.Is(err, ErrStop) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to walk %s: %w", opts.Root, err)
	}
	return err
}

// include reports whether a directory entry is a non-empty regular file
// that no exclude pattern matches.
func include(path string, d fs.DirEntry, exclude []string) bool {
	if !d.Type().IsRegular() {
		return false
	}
	if excluded(d.Name(), exclude) {
		return false
	}
	info, err := d.Info()
	if err != nil {
		slog.Debug("scan_stat_failed", slog.String("path", path), slog.String("error", err.Error()))
		return false
	}
	return info.Size() > 0
}

func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}
