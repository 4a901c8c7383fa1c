// Package engine evaluates feature toggles against evaluation contexts.
//
// A [State] holds the most recently ingested toggle-definition document.
// It performs no locking of its own: callers that share a State across
// goroutines must serialize access, which the boundary layer does
// through its handle registry.
package engine

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Masterminds/semver/v3"
)

// State is a mutable toggle-definition store plus evaluator. The zero
// value is not usable; call [NewState].
type State struct {
	features map[string]Feature
	segments map[int][]Constraint
}

// NewState returns an empty engine state. Every resolution against it
// reports unknown until a definition update arrives.
func NewState() *State {
	return &State{
		features: make(map[string]Feature),
		segments: make(map[int][]Constraint),
	}
}

// TakeState replaces the held definitions wholesale with the update;
// nothing is merged from the previous document. The returned warnings
// flag definitions that will not evaluate the way their author intended
// (unknown strategies, malformed parameters, dangling segment
// references). A warned update is still applied.
func (s *State) TakeState(update ClientFeatures) []Warning {
	segments := make(map[int][]Constraint, len(update.Segments))
	for _, segment := range update.Segments {
		segments[segment.ID] = segment.Constraints
	}

	var warnings []Warning
	features := make(map[string]Feature, len(update.Features))
	for _, feature := range update.Features {
		warnings = append(warnings, vetFeature(feature, segments)...)
		features[feature.Name] = feature
	}

	s.features = features
	s.segments = segments
	return warnings
}

// Resolve evaluates a single named toggle. ok is false when the toggle
// is not part of the current definitions.
func (s *State) Resolve(name string, ctx Context) (ResolvedToggle, bool) {
	feature, ok := s.features[name]
	if !ok {
		return ResolvedToggle{}, false
	}
	return s.resolveFeature(feature, ctx), true
}

// ResolveAll evaluates every known toggle against the context. Map
// iteration order carries no meaning.
func (s *State) ResolveAll(ctx Context) map[string]ResolvedToggle {
	resolved := make(map[string]ResolvedToggle, len(s.features))
	for name, feature := range s.features {
		resolved[name] = s.resolveFeature(feature, ctx)
	}
	return resolved
}

func (s *State) resolveFeature(feature Feature, ctx Context) ResolvedToggle {
	enabled := feature.Enabled && s.anyStrategyMatches(feature, ctx)
	return ResolvedToggle{
		Enabled:        enabled,
		Project:        feature.Project,
		ImpressionData: feature.ImpressionData,
		Variant:        selectVariant(feature, enabled, ctx),
	}
}

// A feature without strategies is enabled for everyone; otherwise any
// single matching strategy enables it.
func (s *State) anyStrategyMatches(feature Feature, ctx Context) bool {
	if len(feature.Strategies) == 0 {
		return true
	}
	for _, strategy := range feature.Strategies {
		if s.strategyMatches(strategy, feature.Name, ctx) {
			return true
		}
	}
	return false
}

// vetFeature reports ingestion warnings for one feature definition.
func vetFeature(feature Feature, segments map[int][]Constraint) []Warning {
	var warnings []Warning
	warn := func(format string, args ...any) {
		warnings = append(warnings, Warning{
			Toggle:  feature.Name,
			Message: fmt.Sprintf(format, args...),
		})
	}

	for _, strategy := range feature.Strategies {
		if !knownStrategy(strategy.Name) {
			warn("strategy %q is not supported and will never match", strategy.Name)
		}
		if param, ok := rolloutParameter(strategy); ok {
			if _, err := strconv.Atoi(param); err != nil {
				warn("strategy %q has a non-numeric rollout parameter %q", strategy.Name, param)
			}
		}
		for _, id := range strategy.Segments {
			if _, ok := segments[id]; !ok {
				warn("strategy %q references missing segment %d", strategy.Name, id)
			}
		}
		for _, constraint := range strategy.Constraints {
			warnings = append(warnings, vetConstraint(feature.Name, constraint)...)
		}
	}
	return warnings
}

func vetConstraint(toggle string, constraint Constraint) []Warning {
	var warnings []Warning
	warn := func(format string, args ...any) {
		warnings = append(warnings, Warning{
			Toggle:  toggle,
			Message: fmt.Sprintf(format, args...),
		})
	}

	switch constraint.Operator {
	case OperatorIn, OperatorNotIn,
		OperatorStrStartsWith, OperatorStrEndsWith, OperatorStrContains:
	case OperatorNumEq, OperatorNumGt, OperatorNumGte, OperatorNumLt, OperatorNumLte:
		if _, err := strconv.ParseFloat(constraint.Value, 64); err != nil {
			warn("constraint on %q has non-numeric value %q", constraint.ContextName, constraint.Value)
		}
	case OperatorDateAfter, OperatorDateBefore:
		if _, err := time.Parse(time.RFC3339, constraint.Value); err != nil {
			warn("constraint on %q has non-RFC3339 date %q", constraint.ContextName, constraint.Value)
		}
	case OperatorSemverEq, OperatorSemverGt, OperatorSemverLt:
		if _, err := semver.NewVersion(constraint.Value); err != nil {
			warn("constraint on %q has invalid semver %q", constraint.ContextName, constraint.Value)
		}
	default:
		warn("constraint operator %q is not supported and will never match", constraint.Operator)
	}
	return warnings
}
