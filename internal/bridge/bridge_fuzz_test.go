package bridge

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/Iandenh/frontendengine/internal/logging"
	"github.com/Iandenh/frontendengine/internal/metrics"
	"github.com/Iandenh/frontendengine/internal/wire"
)

// Every update, however malformed, must come back as a well-formed
// envelope with one of the documented status codes.
func FuzzTakeState(f *testing.F) {
	f.Add([]byte(updateEnableA))
	f.Add([]byte(updateWithWarnings))
	f.Add([]byte(`{"version": 2, "features": [`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`null`))
	f.Add([]byte{})

	b := New(logging.NewWithWriter("error", io.Discard), metrics.New())
	h := b.NewEngine()
	defer b.FreeEngine(h)

	f.Fuzz(func(t *testing.T, update []byte) {
		var envelope Envelope
		raw := b.TakeState(h, update)
		if err := json.Unmarshal(raw, &envelope); err != nil {
			t.Fatalf("TakeState() envelope %q is not valid JSON: %v", raw, err)
		}
		if envelope.StatusCode != StatusOK && envelope.StatusCode != StatusError {
			t.Fatalf("TakeState() status = %d, want %d or %d", envelope.StatusCode, StatusOK, StatusError)
		}
		if envelope.StatusCode == StatusError && envelope.ErrorMessage == nil {
			t.Fatal("error envelope carries no error_message")
		}
		// A document with no top-level object never succeeds; a success
		// status here would mean the definitions were wiped.
		if string(update) == "null" && envelope.StatusCode != StatusError {
			t.Fatalf("TakeState(null) status = %d, want %d", envelope.StatusCode, StatusError)
		}
	})
}

// Arbitrary context bytes either fail cleanly or produce a decodable
// result buffer.
func FuzzResolveContext(f *testing.F) {
	f.Add((&wire.Context{}).Marshal())
	f.Add([]byte{0x80})
	f.Add([]byte{0x0a, 0x03, 'a', 'b', 'c'})
	f.Add([]byte{})

	b := New(logging.NewWithWriter("error", io.Discard), metrics.New())
	h := b.NewEngine()
	defer b.FreeEngine(h)
	b.TakeState(h, []byte(updateEnableA))

	f.Fuzz(func(t *testing.T, context []byte) {
		out, err := b.Resolve(h, "A", context)
		if err != nil {
			if out != nil {
				t.Fatalf("Resolve() returned a buffer alongside error %v", err)
			}
			return
		}
		if _, err := wire.UnmarshalEvaluatedToggle(out); err != nil {
			t.Fatalf("Resolve() produced undecodable buffer %x: %v", out, err)
		}
	})
}
