// Package bridge dispatches boundary calls onto engine instances.
//
// Everything here is plain Go: the cgo layer in cmd/libfrontendengine
// converts C inputs to byte slices and strings before calling in, and
// converts the returned buffers back out. Keeping the dispatch free of
// cgo makes the whole boundary contract testable with go test alone.
//
// The two channels never mix. Binary-channel calls (Resolve, ResolveAll)
// collapse every failure to a nil buffer so their consumers only ever
// see schema-encoded success payloads; the error detail is logged and
// counted, not transmitted. The text channel (TakeState) always returns
// a well-formed status envelope, even on failure.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Iandenh/frontendengine/internal/engine"
	"github.com/Iandenh/frontendengine/internal/handle"
	"github.com/Iandenh/frontendengine/internal/metrics"
	"github.com/Iandenh/frontendengine/internal/wire"
)

// Bridge owns the handle registry and the per-process instrumentation.
type Bridge struct {
	registry *handle.Registry
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// New creates a Bridge. m may be nil to disable instrumentation.
func New(log *slog.Logger, m *metrics.Metrics) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{
		registry: handle.NewRegistry(),
		metrics:  m,
		log:      log,
	}
}

// NewEngine allocates an engine in its default empty state and returns
// its handle, owned by the caller until FreeEngine. Never fails.
func (b *Bridge) NewEngine() handle.Handle {
	h := b.registry.Create()
	if b.metrics != nil {
		b.metrics.EnginesActive.Inc()
	}
	return h
}

// FreeEngine releases the caller's owner reference. Handle 0 is a no-op.
func (b *Bridge) FreeEngine(h handle.Handle) {
	if b.registry.Destroy(h) && b.metrics != nil {
		b.metrics.EnginesActive.Dec()
	}
}

// TakeState decodes a toggle-definition document and applies it to the
// engine behind h. The returned buffer is always a well-formed status
// envelope. A malformed document never reaches the engine; a document
// that applies with warnings reports an error while the state change
// stands.
func (b *Bridge) TakeState(h handle.Handle, updateJSON []byte) []byte {
	err := b.takeState(h, updateJSON)
	if err == nil {
		b.countState(metrics.StatusOK)
		return OKEnvelope(nil)
	}

	b.countState(stateStatus(err))
	b.log.Debug("take_state failed", "error", err)
	return ErrorEnvelope(err)
}

func (b *Bridge) takeState(h handle.Handle, updateJSON []byte) error {
	// Decoding through a pointer catches a top-level JSON null, which
	// encoding/json otherwise accepts as a no-op; applying it would wipe
	// every definition while reporting success.
	var update *engine.ClientFeatures
	if err := json.Unmarshal(updateJSON, &update); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if update == nil {
		return fmt.Errorf("%w: document is null", ErrInvalidJSON)
	}

	return b.registry.With(h, func(state *engine.State) error {
		if warnings := state.TakeState(*update); len(warnings) > 0 {
			return &PartialUpdateError{Warnings: warnings}
		}
		return nil
	})
}

// Resolve evaluates one toggle against a binary-encoded context and
// returns the encoded EvaluatedToggle. Any failure returns a nil buffer.
func (b *Bridge) Resolve(h handle.Handle, toggleName string, contextBytes []byte) ([]byte, error) {
	out, err := b.resolve(h, toggleName, contextBytes)
	b.countResolution("resolve", err)
	if err != nil {
		b.log.Debug("resolve failed", "toggle", toggleName, "error", err)
		return nil, err
	}
	return out, nil
}

func (b *Bridge) resolve(h handle.Handle, toggleName string, contextBytes []byte) ([]byte, error) {
	ctx, err := decodeContext(contextBytes)
	if err != nil {
		return nil, err
	}

	var out []byte
	err = b.registry.With(h, func(state *engine.State) error {
		resolved, ok := state.Resolve(toggleName, ctx)
		if !ok {
			return ErrNotResolved
		}
		out = encodeToggle(toggleName, resolved).Marshal()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveAll evaluates every known toggle against a binary-encoded
// context and returns the encoded EvaluatedToggleList. Unless includeAll
// is set, disabled toggles are omitted entirely. Ordering is
// unspecified. Any failure returns a nil buffer.
func (b *Bridge) ResolveAll(h handle.Handle, contextBytes []byte, includeAll bool) ([]byte, error) {
	out, err := b.resolveAll(h, contextBytes, includeAll)
	b.countResolution("resolve_all", err)
	if err != nil {
		b.log.Debug("resolve_all failed", "error", err)
		return nil, err
	}
	return out, nil
}

func (b *Bridge) resolveAll(h handle.Handle, contextBytes []byte, includeAll bool) ([]byte, error) {
	ctx, err := decodeContext(contextBytes)
	if err != nil {
		return nil, err
	}

	var out []byte
	err = b.registry.With(h, func(state *engine.State) error {
		list := &wire.EvaluatedToggleList{}
		for name, resolved := range state.ResolveAll(ctx) {
			if !includeAll && !resolved.Enabled {
				continue
			}
			list.Toggles = append(list.Toggles, encodeToggle(name, resolved))
		}
		out = list.Marshal()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RenderMetrics returns the Prometheus text exposition of the library's
// counters, or an empty string when instrumentation is disabled.
func (b *Bridge) RenderMetrics() (string, error) {
	if b.metrics == nil {
		return "", nil
	}
	return b.metrics.Render()
}

// Handles reports the number of live engine handles.
func (b *Bridge) Handles() int {
	return b.registry.Len()
}

func decodeContext(contextBytes []byte) (engine.Context, error) {
	wireCtx, err := wire.UnmarshalContext(contextBytes)
	if err != nil {
		return engine.Context{}, fmt.Errorf("%w: %v", ErrInvalidProto, err)
	}
	return translateContext(wireCtx), nil
}

func (b *Bridge) countState(status string) {
	if b.metrics != nil {
		b.metrics.StateUpdatesTotal.WithLabelValues(status).Inc()
	}
}

func (b *Bridge) countResolution(call string, err error) {
	if b.metrics == nil {
		return
	}
	b.metrics.ResolutionsTotal.WithLabelValues(call, resolutionStatus(err)).Inc()
}

func stateStatus(err error) string {
	var partial *PartialUpdateError
	switch {
	case errors.As(err, &partial):
		return metrics.StatusPartial
	case errors.Is(err, ErrNullHandle):
		return metrics.StatusNullHandle
	default:
		return metrics.StatusInvalid
	}
}

func resolutionStatus(err error) string {
	switch {
	case err == nil:
		return metrics.StatusOK
	case errors.Is(err, ErrNotResolved):
		return metrics.StatusNotFound
	case errors.Is(err, ErrNullHandle):
		return metrics.StatusNullHandle
	default:
		return metrics.StatusInvalid
	}
}
