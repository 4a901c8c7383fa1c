package wire

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Marshal encodes the context. Nil optional fields and a nil property
// map are omitted entirely so presence survives the round trip.
func (c *Context) Marshal() []byte {
	var b []byte
	b = appendOptionalString(b, ctxFieldUserID, c.UserID)
	b = appendOptionalString(b, ctxFieldSessionID, c.SessionID)
	b = appendOptionalString(b, ctxFieldEnvironment, c.Environment)
	b = appendOptionalString(b, ctxFieldAppName, c.AppName)
	b = appendOptionalString(b, ctxFieldCurrentTime, c.CurrentTime)
	b = appendOptionalString(b, ctxFieldRemoteAddress, c.RemoteAddress)
	for key, value := range c.Properties {
		var entry []byte
		entry = protowire.AppendTag(entry, mapEntryFieldKey, protowire.BytesType)
		entry = protowire.AppendString(entry, key)
		entry = protowire.AppendTag(entry, mapEntryFieldValue, protowire.BytesType)
		entry = protowire.AppendString(entry, value)
		b = protowire.AppendTag(b, ctxFieldProperties, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

// Marshal encodes the payload with proto3 implicit presence: zero-valued
// fields are omitted.
func (p *VariantPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, payloadFieldType, p.Type)
	b = appendString(b, payloadFieldValue, p.Value)
	return b
}

func (v *EvaluatedVariant) Marshal() []byte {
	var b []byte
	b = appendString(b, variantFieldName, v.Name)
	b = appendBool(b, variantFieldEnabled, v.Enabled)
	b = appendBool(b, variantFieldFeatureEnabled, v.FeatureEnabled)
	if v.Payload != nil {
		b = protowire.AppendTag(b, variantFieldPayload, protowire.BytesType)
		b = protowire.AppendBytes(b, v.Payload.Marshal())
	}
	b = appendBool(b, variantFieldOldFeatureEnabled, v.OldFeatureEnabled)
	return b
}

func (t *EvaluatedToggle) Marshal() []byte {
	var b []byte
	b = appendString(b, toggleFieldName, t.Name)
	b = appendBool(b, toggleFieldEnabled, t.Enabled)
	if t.Variant != nil {
		b = protowire.AppendTag(b, toggleFieldVariant, protowire.BytesType)
		b = protowire.AppendBytes(b, t.Variant.Marshal())
	}
	b = appendBool(b, toggleFieldImpressionData, t.ImpressionData)
	return b
}

// Marshal encodes the list. An empty list encodes to zero bytes, which
// is a valid message.
func (l *EvaluatedToggleList) Marshal() []byte {
	var b []byte
	for _, toggle := range l.Toggles {
		b = protowire.AppendTag(b, listFieldToggles, protowire.BytesType)
		b = protowire.AppendBytes(b, toggle.Marshal())
	}
	return b
}

// appendOptionalString emits the field whenever the pointer is non-nil,
// including for the empty string (explicit presence).
func appendOptionalString(b []byte, num protowire.Number, s *string) []byte {
	if s == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, *s)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}
