package bridge

import (
	"github.com/Iandenh/frontendengine/internal/engine"
	"github.com/Iandenh/frontendengine/internal/wire"
)

// translateContext maps the wire context into the engine's native one,
// field for field. An absent property map stays absent; it is never
// collapsed into an empty one.
func translateContext(c *wire.Context) engine.Context {
	return engine.Context{
		UserID:        deref(c.UserID),
		SessionID:     deref(c.SessionID),
		Environment:   deref(c.Environment),
		AppName:       deref(c.AppName),
		CurrentTime:   deref(c.CurrentTime),
		RemoteAddress: deref(c.RemoteAddress),
		Properties:    c.Properties,
	}
}

// encodeToggle maps a resolution result onto the wire shape. The
// feature-enabled flag is duplicated into the legacy field so older
// hosts keep working.
func encodeToggle(name string, resolved engine.ResolvedToggle) *wire.EvaluatedToggle {
	variant := &wire.EvaluatedVariant{
		Name:              resolved.Variant.Name,
		Enabled:           resolved.Variant.Enabled,
		FeatureEnabled:    resolved.Variant.FeatureEnabled,
		OldFeatureEnabled: resolved.Variant.FeatureEnabled,
	}
	if payload := resolved.Variant.Payload; payload != nil {
		variant.Payload = &wire.VariantPayload{
			Type:  payload.Type,
			Value: payload.Value,
		}
	}

	return &wire.EvaluatedToggle{
		Name:           name,
		Enabled:        resolved.Enabled,
		Variant:        variant,
		ImpressionData: resolved.ImpressionData,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
