//go:build linux || darwin

// Package client is a Go host-side binding for the frontendengine
// c-shared library.
//
// It loads the library with purego (no cgo in the host build) and wraps
// the raw boundary surface in a Go API. Every buffer the library hands
// over is copied into Go memory and immediately reclaimed through the
// matching free export, so the single-owner buffer discipline lives in
// exactly one place.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/Iandenh/frontendengine/internal/wire"
)

// ErrNotFound reports a toggle the engine does not know, or an engine
// call that produced no buffer.
var ErrNotFound = errors.New("toggle not found")

// Library is a loaded frontendengine shared library.
type Library struct {
	newEngine    func() uintptr
	freeEngine   func(uintptr)
	takeState    func(uintptr, string) uintptr
	resolve      func(uintptr, string, uintptr, uintptr, *uintptr) uintptr
	resolveAll   func(uintptr, uintptr, uintptr, bool, *uintptr) uintptr
	getMetrics   func() uintptr
	freeBuffer   func(uintptr, uintptr)
	freeResponse func(uintptr)
}

// Open loads the shared library at path and resolves the full boundary
// surface.
func Open(path string) (*Library, error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	l := &Library{}
	purego.RegisterLibFunc(&l.newEngine, lib, "new_engine")
	purego.RegisterLibFunc(&l.freeEngine, lib, "free_engine")
	purego.RegisterLibFunc(&l.takeState, lib, "take_state")
	purego.RegisterLibFunc(&l.resolve, lib, "resolve")
	purego.RegisterLibFunc(&l.resolveAll, lib, "resolve_all")
	purego.RegisterLibFunc(&l.getMetrics, lib, "get_metrics")
	purego.RegisterLibFunc(&l.freeBuffer, lib, "free_buffer")
	purego.RegisterLibFunc(&l.freeResponse, lib, "free_response")
	return l, nil
}

// Engine is one engine instance. Not safe for use after Close; all
// other methods may be called concurrently, the library serializes
// access per engine.
type Engine struct {
	lib    *Library
	handle uintptr
}

// NewEngine creates an engine in its default empty state.
func (l *Library) NewEngine() *Engine {
	return &Engine{lib: l, handle: l.newEngine()}
}

// Metrics returns the library's Prometheus text exposition.
func (l *Library) Metrics() (string, error) {
	ptr := l.getMetrics()
	if ptr == 0 {
		return "", errors.New("get_metrics returned no buffer")
	}
	defer l.freeResponse(ptr)
	return cString(ptr), nil
}

// Close releases the engine. The caller must ensure no other call on
// this engine is still in flight; calling any method after Close is a
// contract violation.
func (e *Engine) Close() {
	e.lib.freeEngine(e.handle)
	e.handle = 0
}

type statusEnvelope struct {
	StatusCode   int     `json:"status_code"`
	ErrorMessage *string `json:"error_message"`
}

// TakeState feeds a toggle-definition JSON document to the engine. An
// error return does not imply the state is unchanged: a partial update
// applies the document and still reports the engine's warnings.
func (e *Engine) TakeState(updateJSON string) error {
	ptr := e.lib.takeState(e.handle, updateJSON)
	if ptr == 0 {
		return errors.New("take_state returned no envelope")
	}
	raw := cString(ptr)
	e.lib.freeResponse(ptr)

	var envelope statusEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return fmt.Errorf("malformed status envelope %q: %w", raw, err)
	}
	if envelope.StatusCode == 1 {
		return nil
	}
	if envelope.ErrorMessage != nil {
		return errors.New(*envelope.ErrorMessage)
	}
	return fmt.Errorf("take_state failed with status %d", envelope.StatusCode)
}

// Resolve evaluates one toggle. Failures are collapsed by the library
// into "no buffer", reported here as ErrNotFound.
func (e *Engine) Resolve(name string, ctx *wire.Context) (*wire.EvaluatedToggle, error) {
	payload, err := e.callBinary(func(data, length uintptr, outLen *uintptr) uintptr {
		return e.lib.resolve(e.handle, name, data, length, outLen)
	}, ctx)
	if err != nil {
		return nil, err
	}
	return wire.UnmarshalEvaluatedToggle(payload)
}

// ResolveAll evaluates every toggle the engine knows. Unless includeAll
// is set, only enabled toggles are returned. Ordering is unspecified.
func (e *Engine) ResolveAll(ctx *wire.Context, includeAll bool) ([]*wire.EvaluatedToggle, error) {
	payload, err := e.callBinary(func(data, length uintptr, outLen *uintptr) uintptr {
		return e.lib.resolveAll(e.handle, data, length, includeAll, outLen)
	}, ctx)
	if err != nil {
		return nil, err
	}
	list, err := wire.UnmarshalEvaluatedToggleList(payload)
	if err != nil {
		return nil, err
	}
	return list.Toggles, nil
}

// callBinary runs one binary-channel call: encode the context, hand the
// bytes in, copy the result out, free the library's buffer.
func (e *Engine) callBinary(call func(data, length uintptr, outLen *uintptr) uintptr, ctx *wire.Context) ([]byte, error) {
	if ctx == nil {
		ctx = &wire.Context{}
	}
	encoded := ctx.Marshal()

	var data uintptr
	if len(encoded) > 0 {
		data = uintptr(unsafe.Pointer(&encoded[0]))
	}

	var outLen uintptr
	ptr := call(data, uintptr(len(encoded)), &outLen)
	runtime.KeepAlive(encoded)
	if ptr == 0 {
		return nil, ErrNotFound
	}
	defer e.lib.freeBuffer(ptr, outLen)

	if outLen == 0 {
		return nil, nil
	}
	payload := make([]byte, outLen)
	copy(payload, unsafe.Slice((*byte)(unsafe.Pointer(ptr)), outLen))
	return payload, nil
}

func cString(ptr uintptr) string {
	var out []byte
	for {
		c := *(*byte)(unsafe.Pointer(ptr))
		if c == 0 {
			return string(out)
		}
		out = append(out, c)
		ptr++
	}
}
