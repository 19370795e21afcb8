package remover

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"rmfile/internal/fsops"
	"rmfile/internal/history"
	"rmfile/internal/metrics"
	"rmfile/internal/safety"
)

// Fixed output lines. Failure is deliberately cause-agnostic.
const (
	UsageMessage   = "Usage: rmfile <file>"
	SuccessMessage = "File deleted successfully."
	FailureMessage = "Failed to delete the file."
)

// Logger interface for levelled logging in the remover
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// stdLogger wraps standard log.Logger to implement Logger
type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	parts := []interface{}{fmt.Sprintf("[%s]", level), msg}
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Result describes what a single invocation did
type Result struct {
	InvocationID string
	Outcome      string
	Path         string
	ObjectType   string
	Size         int64
	// Err holds the underlying cause; it is logged and recorded, never printed
	Err error
}

// Remover deletes one file per invocation and reports the outcome
type Remover struct {
	logger    Logger
	deleter   fsops.Deleter
	validator *safety.Validator // nil disables the guard
	db        *history.DB       // nil disables the audit trail
	now       func() time.Time
}

// New creates a Remover backed by the real filesystem
func New(logger *log.Logger, db *history.DB) *Remover {
	metrics.Init()
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Remover{
		logger:  &stdLogger{Logger: logger},
		deleter: fsops.OSDeleter{},
		db:      db,
		now:     time.Now,
	}
}

// SetDeleter replaces the removal primitive
func (r *Remover) SetDeleter(d fsops.Deleter) {
	r.deleter = d
}

// SetValidator enables the safety guard
func (r *Remover) SetValidator(v *safety.Validator) {
	r.validator = v
}

// Run handles one invocation: args are the process arguments without the
// program name. Exactly one line is written to out.
func (r *Remover) Run(args []string, out io.Writer) Result {
	res := Result{
		InvocationID: uuid.NewString(),
		ObjectType:   history.ObjectNone,
	}
	startedAt := r.now()

	if len(args) != 1 {
		res.Outcome = metrics.OutcomeUsage
		res.Err = fmt.Errorf("expected exactly one argument, got %d", len(args))
		r.report(out, UsageMessage, res, startedAt)
		return res
	}

	res.Path = args[0]
	res.ObjectType, res.Size = inspect(res.Path)

	if r.validator != nil {
		if err := r.validator.ValidateDeleteTarget(res.Path); err != nil {
			res.Outcome = metrics.OutcomeBlocked
			res.Err = err
			r.report(out, FailureMessage, res, startedAt)
			return res
		}
	}

	start := time.Now()
	err := r.deleter.Remove(res.Path)
	elapsed := time.Since(start)

	if err != nil {
		res.Outcome = metrics.OutcomeError
		res.Err = err
		metrics.RecordRemoval(elapsed, 0)
		r.report(out, FailureMessage, res, startedAt)
		return res
	}

	res.Outcome = metrics.OutcomeDelete
	metrics.RecordRemoval(elapsed, res.Size)
	r.report(out, SuccessMessage, res, startedAt)
	return res
}

// report prints the outcome line first; logging, metrics and history never
// affect what the caller sees
func (r *Remover) report(out io.Writer, line string, res Result, at time.Time) {
	fmt.Fprintln(out, line)

	metrics.RecordOutcome(res.Outcome)

	switch {
	case res.Outcome == metrics.OutcomeUsage:
		r.logger.Info("Usage error",
			"invocation", res.InvocationID,
			"detail", res.Err,
		)
	case res.Err != nil:
		r.logger.Error("Remove failed",
			"invocation", res.InvocationID,
			"outcome", res.Outcome,
			"path", res.Path,
			"object", res.ObjectType,
			"error", res.Err,
		)
	default:
		r.logger.Info("Removed",
			"invocation", res.InvocationID,
			"path", res.Path,
			"object", res.ObjectType,
			"size", res.Size,
		)
	}

	if r.db == nil {
		return
	}

	rec := &history.Record{
		InvocationID: res.InvocationID,
		Timestamp:    at,
		Outcome:      res.Outcome,
		Path:         res.Path,
		ObjectType:   res.ObjectType,
		Size:         res.Size,
	}
	if res.Err != nil {
		rec.ErrorMessage = res.Err.Error()
	}
	if err := r.db.Record(rec); err != nil {
		r.logger.Error("Failed to record to history", "invocation", res.InvocationID, "error", err)
	}
}

// inspect classifies the target without following a final symlink
func inspect(path string) (string, int64) {
	info, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return history.ObjectMissing, 0
	}
	if err != nil {
		return history.ObjectOther, 0
	}
	mode := info.Mode()
	switch {
	case mode.IsRegular():
		return history.ObjectFile, info.Size()
	case mode.IsDir():
		return history.ObjectDirectory, 0
	case mode&os.ModeSymlink != 0:
		return history.ObjectSymlink, 0
	default:
		return history.ObjectOther, 0
	}
}
