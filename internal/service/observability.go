package service

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/alexanderramin/timeledger/internal/domain"
)

// UseCaseEvent describes one finished service call.
type UseCaseEvent struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
}

// Kind classifies the event's error; KindNone on success.
func (e UseCaseEvent) Kind() domain.ErrorKind {
	return domain.Kind(e.Err)
}

// UseCaseObserver is notified after every observed service call.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

type noopObserver struct{}

func (noopObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type slogObserver struct {
	logger *slog.Logger
}

// NewSlogUseCaseObserver logs each service call through logger. Caller
// mistakes (validation, conflicts, missing rows, denied access) log at
// warn; anything unclassified logs at error.
func NewSlogUseCaseObserver(logger *slog.Logger) UseCaseObserver {
	if logger == nil {
		return noopObserver{}
	}
	return &slogObserver{logger: logger}
}

func (o *slogObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := make([]slog.Attr, 0, 4+len(event.Fields))
	attrs = append(attrs,
		slog.String("use_case", event.Name),
		slog.Int64("duration_ms", event.Duration.Milliseconds()),
	)
	for _, k := range slices.Sorted(maps.Keys(event.Fields)) {
		attrs = append(attrs, slog.Any(k, event.Fields[k]))
	}

	level := slog.LevelInfo
	msg := "use case ok"
	if event.Err != nil {
		kind := event.Kind()
		attrs = append(attrs, slog.String("error_kind", string(kind)), slog.String("error", event.Err.Error()))
		msg = "use case failed"
		level = slog.LevelWarn
		if kind == domain.KindInternal {
			level = slog.LevelError
		}
	}
	o.logger.LogAttrs(ctx, level, msg, attrs...)
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return noopObserver{}
}

// observe is deferred at the top of a use case with a pointer to its named
// error result.
func observe(ctx context.Context, obs UseCaseObserver, name string, startedAt time.Time, fields map[string]any, errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}
