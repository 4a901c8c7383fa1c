// Package main builds the c-shared boundary library for the evaluation
// engine.
//
// Build it with:
//
//	go build -buildmode=c-shared -o libfrontendengine.so ./cmd/libfrontendengine
//
// The exported surface is the whole contract with the host:
//
//	new_engine() -> handle            owner reference, release with free_engine
//	free_engine(handle)               0 is a no-op; double-free is caller UB
//	take_state(handle, json) -> char* status envelope, free with free_response
//	resolve(...) / resolve_all(...)   protobuf buffer, free with free_buffer
//	get_metrics() -> char*            Prometheus text, free with free_response
//
// Every buffer handed to the host is allocated with C.malloc and must be
// reclaimed through exactly one call to the matching free_* export; the
// library never frees a handed-off buffer itself and Go's collector
// never sees one. Binary-channel calls report failure as a null pointer
// with *out_len == 0 and nothing else; diagnostics stay on the text
// channel and in the library's own log. A panic inside any export is
// recovered and logged, surfacing to the host as a failed call rather
// than a crashed process.
package main

/*
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"log/slog"
	"math"
	"runtime/debug"
	"unsafe"

	"github.com/Iandenh/frontendengine/internal/bridge"
	"github.com/Iandenh/frontendengine/internal/config"
	"github.com/Iandenh/frontendengine/internal/handle"
	"github.com/Iandenh/frontendengine/internal/logging"
	"github.com/Iandenh/frontendengine/internal/metrics"
)

var (
	logger *slog.Logger
	br     *bridge.Bridge
)

func init() {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Config{LogLevel: "error", Metrics: true}
	}
	logger = logging.New(cfg.LogLevel)
	if err != nil {
		logger.Warn("falling back to default configuration", "error", err)
	}

	var m *metrics.Metrics
	if cfg.Metrics {
		m = metrics.New()
	}
	br = bridge.New(logger, m)
}

//export new_engine
func new_engine() (h C.uintptr_t) {
	defer recoverBoundary("new_engine")
	return C.uintptr_t(br.NewEngine())
}

//export free_engine
func free_engine(engineHandle C.uintptr_t) {
	defer recoverBoundary("free_engine")
	br.FreeEngine(handle.Handle(engineHandle))
}

//export take_state
func take_state(engineHandle C.uintptr_t, updateJSON *C.char) (response *C.char) {
	defer recoverBoundary("take_state")
	if updateJSON == nil {
		return C.CString(string(bridge.ErrorEnvelope(bridge.ErrNullHandle)))
	}

	envelope := br.TakeState(handle.Handle(engineHandle), []byte(C.GoString(updateJSON)))
	return C.CString(string(envelope))
}

//export resolve
func resolve(engineHandle C.uintptr_t, toggleName *C.char, contextBytes *C.uint8_t, contextLen C.size_t, outLen *C.size_t) (buf *C.uint8_t) {
	defer recoverBoundary("resolve")
	if outLen == nil {
		return nil
	}
	*outLen = 0

	if toggleName == nil {
		return nil
	}
	contextBuf, ok := goBytes(contextBytes, contextLen)
	if !ok {
		return nil
	}

	out, err := br.Resolve(handle.Handle(engineHandle), C.GoString(toggleName), contextBuf)
	if err != nil {
		return nil
	}
	return handOffBytes(out, outLen)
}

//export resolve_all
func resolve_all(engineHandle C.uintptr_t, contextBytes *C.uint8_t, contextLen C.size_t, includeAll C.bool, outLen *C.size_t) (buf *C.uint8_t) {
	defer recoverBoundary("resolve_all")
	if outLen == nil {
		return nil
	}
	*outLen = 0

	contextBuf, ok := goBytes(contextBytes, contextLen)
	if !ok {
		return nil
	}

	out, err := br.ResolveAll(handle.Handle(engineHandle), contextBuf, bool(includeAll))
	if err != nil {
		return nil
	}
	return handOffBytes(out, outLen)
}

//export get_metrics
func get_metrics() (response *C.char) {
	defer recoverBoundary("get_metrics")
	text, err := br.RenderMetrics()
	if err != nil {
		logger.Error("render metrics failed", "error", err)
		return nil
	}
	return C.CString(text)
}

//export free_buffer
func free_buffer(buf *C.uint8_t, length C.size_t) {
	if buf == nil {
		return
	}
	// The length is part of the handoff contract for allocators that
	// need it; C.malloc tracks its own sizes.
	_ = length
	C.free(unsafe.Pointer(buf))
}

//export free_response
func free_response(response *C.char) {
	if response == nil {
		return
	}
	C.free(unsafe.Pointer(response))
}

// maxBufferLen bounds host-supplied buffer lengths. C.GoBytes takes an
// int length; a size_t beyond this is never a legitimate context and
// must fail the call instead of truncating.
const maxBufferLen = math.MaxInt32

func lengthInBounds(length uint64) bool {
	return length <= maxBufferLen
}

// goBytes copies a host buffer into Go memory. A null pointer with a
// zero length is a valid empty buffer; a null pointer claiming a
// non-zero length is rejected, as is a length beyond maxBufferLen.
func goBytes(data *C.uint8_t, length C.size_t) ([]byte, bool) {
	if data == nil {
		return nil, length == 0
	}
	if !lengthInBounds(uint64(length)) {
		return nil, false
	}
	return C.GoBytes(unsafe.Pointer(data), C.int(length)), true
}

// handOffBytes copies out into a C.malloc'd buffer the host now owns. A
// successful call with an empty payload still hands off a (1-byte)
// allocation with *outLen == 0, so the host can tell "empty result"
// from the null-pointer failure signal.
func handOffBytes(out []byte, outLen *C.size_t) *C.uint8_t {
	if len(out) == 0 {
		*outLen = 0
		return (*C.uint8_t)(C.malloc(1))
	}
	*outLen = C.size_t(len(out))
	return (*C.uint8_t)(C.CBytes(out))
}

func recoverBoundary(call string) {
	if r := recover(); r != nil {
		logger.Error("panic recovered at boundary",
			"call", call,
			"panic", r,
			"stack", string(debug.Stack()),
		)
	}
}

func main() {}
