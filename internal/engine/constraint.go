package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// constraintSatisfied evaluates one constraint against the context.
// Inversion applies after the operator check, so an inverted operator on
// a missing field matches.
func constraintSatisfied(constraint Constraint, ctx Context) bool {
	result := operatorSatisfied(constraint, ctx)
	if constraint.Inverted {
		return !result
	}
	return result
}

func operatorSatisfied(constraint Constraint, ctx Context) bool {
	value, present := ctx.Field(constraint.ContextName)

	switch constraint.Operator {
	case OperatorIn:
		return present && valueInList(constraint, value)
	case OperatorNotIn:
		// A field that is absent cannot be in the list.
		return !present || !valueInList(constraint, value)
	case OperatorStrStartsWith:
		return present && anyString(constraint, value, strings.HasPrefix)
	case OperatorStrEndsWith:
		return present && anyString(constraint, value, strings.HasSuffix)
	case OperatorStrContains:
		return present && anyString(constraint, value, strings.Contains)
	case OperatorNumEq, OperatorNumGt, OperatorNumGte, OperatorNumLt, OperatorNumLte:
		return present && numberSatisfied(constraint.Operator, value, constraint.Value)
	case OperatorDateAfter, OperatorDateBefore:
		return dateSatisfied(constraint.Operator, value, present, constraint.Value)
	case OperatorSemverEq, OperatorSemverGt, OperatorSemverLt:
		return present && semverSatisfied(constraint.Operator, value, constraint.Value)
	}
	// Unknown operators were warned about at ingestion.
	return false
}

func valueInList(constraint Constraint, value string) bool {
	if constraint.CaseInsensitive {
		return listContainsFold(constraint.Values, value)
	}
	return listContains(constraint.Values, value)
}

func anyString(constraint Constraint, value string, match func(s, substr string) bool) bool {
	if constraint.CaseInsensitive {
		value = strings.ToLower(value)
	}
	for _, candidate := range constraint.Values {
		if constraint.CaseInsensitive {
			candidate = strings.ToLower(candidate)
		}
		if match(value, candidate) {
			return true
		}
	}
	return false
}

func numberSatisfied(op Operator, contextValue, constraintValue string) bool {
	left, err := strconv.ParseFloat(strings.TrimSpace(contextValue), 64)
	if err != nil {
		return false
	}
	right, err := strconv.ParseFloat(strings.TrimSpace(constraintValue), 64)
	if err != nil {
		return false
	}

	switch op {
	case OperatorNumEq:
		return left == right
	case OperatorNumGt:
		return left > right
	case OperatorNumGte:
		return left >= right
	case OperatorNumLt:
		return left < right
	case OperatorNumLte:
		return left <= right
	}
	return false
}

// dateSatisfied compares against the context's currentTime when present,
// otherwise against the wall clock.
func dateSatisfied(op Operator, contextValue string, present bool, constraintValue string) bool {
	right, err := time.Parse(time.RFC3339, constraintValue)
	if err != nil {
		return false
	}

	left := time.Now().UTC()
	if present {
		left, err = time.Parse(time.RFC3339, contextValue)
		if err != nil {
			return false
		}
	}

	switch op {
	case OperatorDateAfter:
		return left.After(right)
	case OperatorDateBefore:
		return left.Before(right)
	}
	return false
}

func semverSatisfied(op Operator, contextValue, constraintValue string) bool {
	left, err := semver.NewVersion(contextValue)
	if err != nil {
		return false
	}
	right, err := semver.NewVersion(constraintValue)
	if err != nil {
		return false
	}

	switch op {
	case OperatorSemverEq:
		return left.Equal(right)
	case OperatorSemverGt:
		return left.GreaterThan(right)
	case OperatorSemverLt:
		return left.LessThan(right)
	}
	return false
}
