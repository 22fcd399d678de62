// Package journal is the domain log: an append-only, severity-filtered,
// size-bounded record of what the bot and the router did, kept in the same
// database the operator already looks at. The process log (zap) mirrors every
// entry; the journal is the part with retention semantics.
package journal

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/sezam-club/sezam/internal/metrics"
	"github.com/sezam-club/sezam/internal/sezam/store"
)

// Level is the journal severity. Records below the configured minimum are
// dropped before they reach storage.
type Level int

const (
	Debug Level = iota
	Info
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel maps a config string to a Level. Unknown values fall back to
// Info rather than failing startup.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return Debug
	case "info":
		return Info
	case "warning", "warn":
		return Warning
	case "error":
		return Error
	default:
		return Info
	}
}

// Config holds the retention knobs. Ceiling is the maximum row count;
// EvictFraction is the share of the ceiling removed in one maintenance pass.
type Config struct {
	MinLevel      Level
	Ceiling       int
	EvictFraction float64
	LockWait      time.Duration
}

type Journal struct {
	store      store.JournalStore
	zlog       *zap.Logger
	metrics    *metrics.Collector
	minLevel   Level
	ceiling    int
	fraction   float64
	lockWait   time.Duration
	traceColor string
}

// New builds a Journal with a fresh trace color. Every entry written through
// this instance carries the same color, so one process's rows can be picked
// out of the shared table at a glance.
func New(st store.JournalStore, zlog *zap.Logger, cfg Config, mc *metrics.Collector) *Journal {
	if cfg.Ceiling <= 0 {
		cfg.Ceiling = 30000
	}
	if cfg.EvictFraction <= 0 || cfg.EvictFraction >= 1 {
		cfg.EvictFraction = 0.1
	}
	if cfg.LockWait <= 0 {
		cfg.LockWait = 20 * time.Second
	}
	if zlog == nil {
		zlog = zap.NewNop()
	}

	return &Journal{
		store:      st,
		zlog:       zlog,
		metrics:    mc,
		minLevel:   cfg.MinLevel,
		ceiling:    cfg.Ceiling,
		fraction:   cfg.EvictFraction,
		lockWait:   cfg.LockWait,
		traceColor: randomTraceColor(),
	}
}

// TraceColor returns this instance's correlation color, "#RRGGBB".
func (j *Journal) TraceColor() string { return j.traceColor }

// For returns a Logger bound to a source name, the way components receive
// their logging dependency.
func (j *Journal) For(source string) *Logger {
	return &Logger{journal: j, source: source}
}

// Logger is the per-component writing handle.
type Logger struct {
	journal *Journal
	source  string
}

func (l *Logger) Debug(event, details string)   { l.journal.append(l.source, Debug, event, details) }
func (l *Logger) Info(event, details string)    { l.journal.append(l.source, Info, event, details) }
func (l *Logger) Warning(event, details string) { l.journal.append(l.source, Warning, event, details) }
func (l *Logger) Error(event, details string)   { l.journal.append(l.source, Error, event, details) }

// append runs maintenance, applies the severity filter, then stores the
// record. Maintenance runs on every call, stored or not, so a flood of
// below-threshold records still keeps the table bounded. A failed store
// write is surfaced through the process log rather than silently dropped.
func (j *Journal) append(source string, level Level, event, details string) {
	ctx, cancel := context.WithTimeout(context.Background(), j.lockWait)
	defer cancel()

	j.maintain(ctx)

	zl := j.zlog.With(
		zap.String("source", source),
		zap.String("event", event),
		zap.String("trace_color", j.traceColor),
	)
	switch level {
	case Debug:
		zl.Debug(details)
	case Info:
		zl.Info(details)
	case Warning:
		zl.Warn(details)
	case Error:
		zl.Error(details)
	}

	if level < j.minLevel {
		return
	}

	rec := store.JournalRecord{
		LoggedAt:   time.Now().UTC(),
		TraceColor: j.traceColor,
		Source:     source,
		Level:      level.String(),
		Event:      event,
		Details:    details,
	}
	if err := j.store.Append(ctx, rec); err != nil {
		j.zlog.Error("journal append failed",
			zap.String("source", source), zap.String("event", event), zap.Error(err))
	}
}

// maintain evicts the oldest fraction of the ceiling once the row count has
// reached it. One bulk pass amortizes the cost under continuous logging.
func (j *Journal) maintain(ctx context.Context) {
	n, err := j.store.Count(ctx)
	if err != nil {
		j.zlog.Error("journal count failed", zap.Error(err))
		return
	}
	if n < j.ceiling {
		return
	}

	evict := int(math.Ceil(float64(j.ceiling) * j.fraction))
	deleted, err := j.store.EvictOldest(ctx, evict)
	if err != nil {
		j.zlog.Error("journal eviction failed", zap.Error(err))
		return
	}
	j.metrics.RecordJournalEviction(deleted)
	j.zlog.Info("journal evicted", zap.Int64("rows", deleted), zap.Int("ceiling", j.ceiling))
}

func randomTraceColor() string {
	return fmt.Sprintf("#%02X%02X%02X", rand.IntN(256), rand.IntN(256), rand.IntN(256))
}
