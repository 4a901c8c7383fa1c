package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// UnmarshalContext decodes a context buffer. Decoding is atomic: any
// malformed tag or truncated value fails the whole call and nothing is
// partially applied. Fields with an unexpected wire type are skipped
// like any other unknown field.
func UnmarshalContext(b []byte) (*Context, error) {
	c := &Context{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("context tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("context field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}

		value, n := protowire.ConsumeString(b)
		if n < 0 {
			return nil, fmt.Errorf("context field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case ctxFieldUserID:
			c.UserID = &value
		case ctxFieldSessionID:
			c.SessionID = &value
		case ctxFieldEnvironment:
			c.Environment = &value
		case ctxFieldAppName:
			c.AppName = &value
		case ctxFieldCurrentTime:
			c.CurrentTime = &value
		case ctxFieldRemoteAddress:
			c.RemoteAddress = &value
		case ctxFieldProperties:
			key, propValue, err := consumeProperty([]byte(value))
			if err != nil {
				return nil, err
			}
			if c.Properties == nil {
				c.Properties = make(map[string]string)
			}
			c.Properties[key] = propValue
		}
	}
	return c, nil
}

// UnmarshalEvaluatedToggle decodes a single toggle result.
func UnmarshalEvaluatedToggle(b []byte) (*EvaluatedToggle, error) {
	t := &EvaluatedToggle{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("toggle tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case typ == protowire.BytesType && num == toggleFieldName:
			value, m := protowire.ConsumeString(b)
			if m < 0 {
				return nil, fmt.Errorf("toggle name: %w", protowire.ParseError(m))
			}
			t.Name = value
			b = b[m:]
		case typ == protowire.VarintType && num == toggleFieldEnabled:
			value, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("toggle enabled: %w", protowire.ParseError(m))
			}
			t.Enabled = value != 0
			b = b[m:]
		case typ == protowire.BytesType && num == toggleFieldVariant:
			raw, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil, fmt.Errorf("toggle variant: %w", protowire.ParseError(m))
			}
			variant, err := unmarshalVariant(raw)
			if err != nil {
				return nil, err
			}
			t.Variant = variant
			b = b[m:]
		case typ == protowire.VarintType && num == toggleFieldImpressionData:
			value, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("toggle impression_data: %w", protowire.ParseError(m))
			}
			t.ImpressionData = value != 0
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return nil, fmt.Errorf("toggle field %d: %w", num, protowire.ParseError(m))
			}
			b = b[m:]
		}
	}
	return t, nil
}

// UnmarshalEvaluatedToggleList decodes a resolve_all result buffer.
func UnmarshalEvaluatedToggleList(b []byte) (*EvaluatedToggleList, error) {
	l := &EvaluatedToggleList{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("toggle list tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		if typ == protowire.BytesType && num == listFieldToggles {
			raw, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil, fmt.Errorf("toggle list entry: %w", protowire.ParseError(m))
			}
			toggle, err := UnmarshalEvaluatedToggle(raw)
			if err != nil {
				return nil, err
			}
			l.Toggles = append(l.Toggles, toggle)
			b = b[m:]
			continue
		}

		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return nil, fmt.Errorf("toggle list field %d: %w", num, protowire.ParseError(m))
		}
		b = b[m:]
	}
	return l, nil
}

func unmarshalVariant(b []byte) (*EvaluatedVariant, error) {
	v := &EvaluatedVariant{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("variant tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case typ == protowire.BytesType && num == variantFieldName:
			value, m := protowire.ConsumeString(b)
			if m < 0 {
				return nil, fmt.Errorf("variant name: %w", protowire.ParseError(m))
			}
			v.Name = value
			b = b[m:]
		case typ == protowire.VarintType && num == variantFieldEnabled:
			value, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("variant enabled: %w", protowire.ParseError(m))
			}
			v.Enabled = value != 0
			b = b[m:]
		case typ == protowire.VarintType && num == variantFieldFeatureEnabled:
			value, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("variant feature_enabled: %w", protowire.ParseError(m))
			}
			v.FeatureEnabled = value != 0
			b = b[m:]
		case typ == protowire.BytesType && num == variantFieldPayload:
			raw, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil, fmt.Errorf("variant payload: %w", protowire.ParseError(m))
			}
			payload, err := unmarshalPayload(raw)
			if err != nil {
				return nil, err
			}
			v.Payload = payload
			b = b[m:]
		case typ == protowire.VarintType && num == variantFieldOldFeatureEnabled:
			value, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("variant old_feature_enabled: %w", protowire.ParseError(m))
			}
			v.OldFeatureEnabled = value != 0
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return nil, fmt.Errorf("variant field %d: %w", num, protowire.ParseError(m))
			}
			b = b[m:]
		}
	}
	return v, nil
}

func unmarshalPayload(b []byte) (*VariantPayload, error) {
	p := &VariantPayload{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("payload tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		if typ != protowire.BytesType {
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return nil, fmt.Errorf("payload field %d: %w", num, protowire.ParseError(m))
			}
			b = b[m:]
			continue
		}

		value, m := protowire.ConsumeString(b)
		if m < 0 {
			return nil, fmt.Errorf("payload field %d: %w", num, protowire.ParseError(m))
		}
		b = b[m:]

		switch num {
		case payloadFieldType:
			p.Type = value
		case payloadFieldValue:
			p.Value = value
		}
	}
	return p, nil
}

func consumeProperty(b []byte) (key, value string, err error) {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", "", fmt.Errorf("property tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		if typ != protowire.BytesType {
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return "", "", fmt.Errorf("property field %d: %w", num, protowire.ParseError(m))
			}
			b = b[m:]
			continue
		}

		entry, m := protowire.ConsumeString(b)
		if m < 0 {
			return "", "", fmt.Errorf("property field %d: %w", num, protowire.ParseError(m))
		}
		b = b[m:]

		switch num {
		case mapEntryFieldKey:
			key = entry
		case mapEntryFieldValue:
			value = entry
		}
	}
	return key, value, nil
}
