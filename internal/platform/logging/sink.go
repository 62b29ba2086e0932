package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// DefaultHistoryLimit caps how many records a Sink keeps for diagnostics.
const DefaultHistoryLimit = 10000

// Sink is the process-wide log destination of a command run. It starts
// paused: every record is held until Resume is called with the final level,
// so records logged before options are resolved are neither lost nor
// emitted at the wrong level. It also keeps the full history of the run,
// regardless of level, for the diagnostic log file.
type Sink struct {
	w io.Writer

	mu        sync.Mutex
	level     slog.LevelVar
	out       slog.Handler
	buffering bool
	resumed   bool
	pending   []entry
	history   []entry // ring of at most limit entries
	oldest    int
	limit     int
}

// entry is a record together with the attrs and groups of the logger that
// produced it, applied lazily to whichever handler finally renders it.
type entry struct {
	wrap   func(slog.Handler) slog.Handler
	record slog.Record
}

// NewSink returns a paused sink that will write to w once resumed.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w, buffering: true, limit: DefaultHistoryLimit}
}

// Logger returns a logger writing to the sink.
func (s *Sink) Logger() *slog.Logger {
	return slog.New(&sinkHandler{sink: s, wrap: identity})
}

// Buffer pauses output. Records are queued until the next Resume.
func (s *Sink) Buffer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffering = true
}

// Resume sets the level and output format, flushes every queued record at
// or above the level, and unpauses the sink. The format and handler are fixed
// by the first call; it reports whether this call was that first one. Later
// calls only flush whatever was queued by an intervening Buffer.
func (s *Sink) Resume(level, format string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := !s.resumed
	if first {
		s.level.Set(ParseLevel(level))
		s.out = newHandler(&s.level, format, s.w)
		s.resumed = true
	}

	for _, e := range s.pending {
		if e.record.Level >= s.level.Level() {
			_ = e.wrap(s.out).Handle(context.Background(), e.record)
		}
	}
	s.pending = nil
	s.buffering = false
	return first
}

// Level returns the active level. Before the first Resume it is info.
func (s *Sink) Level() slog.Level {
	return s.level.Level()
}

// Resumed reports whether Resume has been called.
func (s *Sink) Resumed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumed
}

// WriteDiagnostics writes the full history of the run, every level
// included, as text to path.
func (s *Sink) WriteDiagnostics(path string) error {
	s.mu.Lock()
	history := make([]entry, 0, len(s.history))
	history = append(history, s.history[s.oldest:]...)
	history = append(history, s.history[:s.oldest]...)
	s.mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating diagnostic log: %w", err)
	}

	h := newHandler(LevelSilly, "text", f)
	for _, e := range history {
		if err := e.wrap(h).Handle(context.Background(), e.record); err != nil {
			_ = f.Close()
			return fmt.Errorf("writing diagnostic log: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing diagnostic log: %w", err)
	}
	return nil
}

func (s *Sink) handle(ctx context.Context, wrap func(slog.Handler) slog.Handler, r slog.Record) error {
	e := entry{wrap: wrap, record: r.Clone()}

	s.mu.Lock()
	if len(s.history) < s.limit {
		s.history = append(s.history, e)
	} else {
		s.history[s.oldest] = e
		s.oldest = (s.oldest + 1) % s.limit
	}
	if s.buffering {
		s.pending = append(s.pending, e)
		s.mu.Unlock()
		return nil
	}
	out := s.out
	enabled := r.Level >= s.level.Level()
	s.mu.Unlock()

	if !enabled {
		return nil
	}
	return wrap(out).Handle(ctx, r)
}

func identity(h slog.Handler) slog.Handler { return h }

// sinkHandler accepts every record; filtering happens in the sink so the
// history stays complete.
type sinkHandler struct {
	sink *Sink
	wrap func(slog.Handler) slog.Handler
}

func (h *sinkHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *sinkHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.sink.handle(ctx, h.wrap, r)
}

func (h *sinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prev := h.wrap
	return &sinkHandler{sink: h.sink, wrap: func(out slog.Handler) slog.Handler {
		return prev(out).WithAttrs(attrs)
	}}
}

func (h *sinkHandler) WithGroup(name string) slog.Handler {
	prev := h.wrap
	return &sinkHandler{sink: h.sink, wrap: func(out slog.Handler) slog.Handler {
		return prev(out).WithGroup(name)
	}}
}
