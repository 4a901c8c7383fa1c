package engine

// ClientFeatures is the toggle-definition document accepted by
// [State.TakeState]. The shape follows the client API payload served to
// SDKs, so a host can feed the engine straight from a poll response.
type ClientFeatures struct {
	Version  int       `json:"version"`
	Features []Feature `json:"features"`
	Segments []Segment `json:"segments,omitempty"`
}

// Feature is one toggle definition.
type Feature struct {
	Name           string       `json:"name"`
	Type           string       `json:"type,omitempty"`
	Project        string       `json:"project,omitempty"`
	Enabled        bool         `json:"enabled"`
	ImpressionData bool         `json:"impressionData,omitempty"`
	Strategies     []Strategy   `json:"strategies,omitempty"`
	Variants       []VariantDef `json:"variants,omitempty"`
}

// Strategy is an activation strategy attached to a feature. Unknown
// strategy names survive ingestion (with a warning) and never match.
type Strategy struct {
	Name        string            `json:"name"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	Constraints []Constraint      `json:"constraints,omitempty"`
	Segments    []int             `json:"segments,omitempty"`
}

// Operator names a constraint comparison.
type Operator string

const (
	OperatorIn            Operator = "IN"
	OperatorNotIn         Operator = "NOT_IN"
	OperatorStrStartsWith Operator = "STR_STARTS_WITH"
	OperatorStrEndsWith   Operator = "STR_ENDS_WITH"
	OperatorStrContains   Operator = "STR_CONTAINS"
	OperatorNumEq         Operator = "NUM_EQ"
	OperatorNumGt         Operator = "NUM_GT"
	OperatorNumGte        Operator = "NUM_GTE"
	OperatorNumLt         Operator = "NUM_LT"
	OperatorNumLte        Operator = "NUM_LTE"
	OperatorDateAfter     Operator = "DATE_AFTER"
	OperatorDateBefore    Operator = "DATE_BEFORE"
	OperatorSemverEq      Operator = "SEMVER_EQ"
	OperatorSemverGt      Operator = "SEMVER_GT"
	OperatorSemverLt      Operator = "SEMVER_LT"
)

// Constraint restricts a strategy to contexts whose named field passes
// the operator check.
type Constraint struct {
	ContextName     string   `json:"contextName"`
	Operator        Operator `json:"operator"`
	Values          []string `json:"values,omitempty"`
	Value           string   `json:"value,omitempty"`
	Inverted        bool     `json:"inverted,omitempty"`
	CaseInsensitive bool     `json:"caseInsensitive,omitempty"`
}

// Segment is a reusable constraint set referenced from strategies by id.
type Segment struct {
	ID          int          `json:"id"`
	Constraints []Constraint `json:"constraints"`
}

// VariantDef is a variant definition on a feature.
type VariantDef struct {
	Name       string     `json:"name"`
	Weight     int        `json:"weight"`
	Stickiness string     `json:"stickiness,omitempty"`
	Payload    *Payload   `json:"payload,omitempty"`
	Overrides  []Override `json:"overrides,omitempty"`
}

// Payload is the optional typed value carried by a variant.
type Payload struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Override pins a variant for contexts whose named field matches one of
// the listed values, bypassing weighted selection.
type Override struct {
	ContextName string   `json:"contextName"`
	Values      []string `json:"values"`
}

// Warning is a non-fatal problem found while ingesting a definition
// update. The update is applied regardless.
type Warning struct {
	Toggle  string `json:"toggle"`
	Message string `json:"message"`
}

// Context is the engine-native evaluation context.
type Context struct {
	UserID        string
	SessionID     string
	Environment   string
	AppName       string
	CurrentTime   string
	RemoteAddress string
	Properties    map[string]string
}

// Field looks up a context field by its canonical name, falling back to
// the custom properties. The boolean reports whether the field carries a
// non-empty value.
func (c Context) Field(name string) (string, bool) {
	var value string
	switch name {
	case "userId":
		value = c.UserID
	case "sessionId":
		value = c.SessionID
	case "environment":
		value = c.Environment
	case "appName":
		value = c.AppName
	case "currentTime":
		value = c.CurrentTime
	case "remoteAddress":
		value = c.RemoteAddress
	default:
		value = c.Properties[name]
	}
	return value, value != ""
}

// VariantState is the variant part of a resolution result.
type VariantState struct {
	Name           string
	Enabled        bool
	FeatureEnabled bool
	Payload        *Payload
}

// ResolvedToggle is the result of evaluating one feature against a
// context.
type ResolvedToggle struct {
	Enabled        bool
	Project        string
	ImpressionData bool
	Variant        VariantState
}
