package index

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/Aman-CERP/wordindex/internal/aggregate"
	"github.com/Aman-CERP/wordindex/internal/lines"
	"github.com/Aman-CERP/wordindex/internal/tokenize"
)

// Task reads one file and folds its accepted words into the shared index.
type Task struct {
	ID       int
	FileName string

	index *aggregate.Index
	open  lines.OpenFunc
}

// NewTask creates a task for fileName.
func NewTask(id int, fileName string, idx *aggregate.Index, open lines.OpenFunc) *Task {
	return &Task{
		ID:       id,
		FileName: fileName,
		index:    idx,
		open:     open,
	}
}

// Run processes the file and returns its result. A file that cannot be
// opened is StatusFileNotFound; a read error part way is StatusFailed.
// Neither is returned as an error. Cancellation of ctx is observed
// between lines; words folded before that point stay in the index.
func (t *Task) Run(ctx context.Context) (result TaskResult) {
	start := time.Now()
	result = TaskResult{
		TaskID:   t.ID,
		FileName: t.FileName,
		Status:   StatusOK,
		Message:  StatusOK.Message(),
	}
	defer func() {
		result.Duration = time.Since(start)
	}()

	// Any open failure counts as a missing file; the cause is only logged.
	r, err := t.open(t.FileName)
	if err != nil {
		slog.Error("task_file_not_found",
			slog.Int("task_id", t.ID),
			slog.String("file", t.FileName),
			slog.Bool("not_exist", errors.Is(err, fs.ErrNotExist)),
			slog.String("error", err.Error()))
		result.Status = StatusFileNotFound
		result.Message = StatusFileNotFound.Message()
		return result
	}
	defer func() { _ = r.Close() }()

	for r.Next() {
		if ctx.Err() != nil {
			result.Status = StatusCancelled
			result.Message = StatusCancelled.Message()
			return result
		}

		words, raw := tokenize.Words(r.Text())
		result.Processed += raw
		for _, w := range words {
			t.index.Update(w, t.FileName)
		}
	}

	if err := r.Err(); err != nil {
		return t.fail(result, err)
	}

	slog.Debug("task_finished",
		slog.Int("task_id", t.ID),
		slog.String("file", t.FileName),
		slog.Int("processed", result.Processed))

	return result
}

func (t *Task) fail(result TaskResult, err error) TaskResult {
	slog.Error("task_failed",
		slog.Int("task_id", t.ID),
		slog.String("file", t.FileName),
		slog.Int("processed", result.Processed),
		slog.String("error", err.Error()))
	result.Status = StatusFailed
	result.Message = err.Error()
	return result
}
