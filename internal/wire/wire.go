// Package wire implements the binary boundary encoding for evaluation
// contexts and evaluated toggles.
//
// The message shapes mirror proto/context.proto and proto/toggles.proto.
// They are marshalled by hand on top of [protowire] so the build needs no
// protoc step; the .proto files remain the source of truth for hosts in
// other languages. Unknown fields are skipped on decode, keeping the
// codec forward compatible with hosts generated from a newer schema
// revision.
//
// [protowire]: google.golang.org/protobuf/encoding/protowire
package wire

// Context carries the evaluation subject across the boundary. Scalar
// fields use pointers because the schema declares explicit presence: a
// nil field was never supplied, which is not the same as supplied empty.
type Context struct {
	UserID        *string
	SessionID     *string
	Environment   *string
	AppName       *string
	CurrentTime   *string
	RemoteAddress *string
	Properties    map[string]string
}

// VariantPayload is the optional (type, value) payload attached to an
// evaluated variant.
type VariantPayload struct {
	Type  string
	Value string
}

// EvaluatedVariant is the variant selected for a single toggle
// evaluation. OldFeatureEnabled duplicates FeatureEnabled for hosts
// built against the pre-rename schema.
type EvaluatedVariant struct {
	Name              string
	Enabled           bool
	FeatureEnabled    bool
	Payload           *VariantPayload
	OldFeatureEnabled bool
}

// EvaluatedToggle is the result of resolving one named toggle.
type EvaluatedToggle struct {
	Name           string
	Enabled        bool
	Variant        *EvaluatedVariant
	ImpressionData bool
}

// EvaluatedToggleList is the resolve_all result set. Ordering carries no
// meaning and is not stable across calls.
type EvaluatedToggleList struct {
	Toggles []*EvaluatedToggle
}

// Field numbers, kept in sync with the proto/ schema files.
const (
	ctxFieldUserID        = 1
	ctxFieldSessionID     = 2
	ctxFieldEnvironment   = 3
	ctxFieldAppName       = 4
	ctxFieldCurrentTime   = 5
	ctxFieldRemoteAddress = 6
	ctxFieldProperties    = 7

	payloadFieldType  = 1
	payloadFieldValue = 2

	variantFieldName              = 1
	variantFieldEnabled           = 2
	variantFieldFeatureEnabled    = 3
	variantFieldPayload           = 4
	variantFieldOldFeatureEnabled = 5

	toggleFieldName           = 1
	toggleFieldEnabled        = 2
	toggleFieldVariant        = 3
	toggleFieldImpressionData = 4

	listFieldToggles = 1

	mapEntryFieldKey   = 1
	mapEntryFieldValue = 2
)
