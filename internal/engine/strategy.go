package engine

import (
	"math/rand"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/twmb/murmur3"
)

const (
	strategyDefault               = "default"
	strategyUserWithID            = "userWithId"
	strategyGradualRolloutUserID  = "gradualRolloutUserId"
	strategyGradualRolloutSession = "gradualRolloutSessionId"
	strategyGradualRolloutRandom  = "gradualRolloutRandom"
	strategyRemoteAddress         = "remoteAddress"
	strategyApplicationHostname   = "applicationHostname"
	strategyFlexibleRollout       = "flexibleRollout"
)

func knownStrategy(name string) bool {
	switch name {
	case "", strategyDefault, strategyUserWithID,
		strategyGradualRolloutUserID, strategyGradualRolloutSession,
		strategyGradualRolloutRandom, strategyRemoteAddress,
		strategyApplicationHostname, strategyFlexibleRollout:
		return true
	}
	return false
}

// rolloutParameter extracts the percentage-style parameter for
// strategies that have one, so ingestion can vet it.
func rolloutParameter(strategy Strategy) (string, bool) {
	switch strategy.Name {
	case strategyGradualRolloutUserID, strategyGradualRolloutSession, strategyGradualRolloutRandom:
		param, ok := strategy.Parameters["percentage"]
		return param, ok
	case strategyFlexibleRollout:
		param, ok := strategy.Parameters["rollout"]
		return param, ok
	}
	return "", false
}

// strategyMatches evaluates one strategy. Segment references and inline
// constraints gate the strategy-specific check; a missing segment makes
// the strategy fail closed.
func (s *State) strategyMatches(strategy Strategy, featureName string, ctx Context) bool {
	for _, id := range strategy.Segments {
		constraints, ok := s.segments[id]
		if !ok {
			return false
		}
		for _, constraint := range constraints {
			if !constraintSatisfied(constraint, ctx) {
				return false
			}
		}
	}
	for _, constraint := range strategy.Constraints {
		if !constraintSatisfied(constraint, ctx) {
			return false
		}
	}

	switch strategy.Name {
	case "", strategyDefault:
		return true
	case strategyUserWithID:
		return ctx.UserID != "" && listContains(splitParameterList(strategy.Parameters["userIds"]), ctx.UserID)
	case strategyGradualRolloutUserID:
		if ctx.UserID == "" {
			return false
		}
		return normalizedHash(groupID(strategy, featureName), ctx.UserID) <= percentage(strategy.Parameters["percentage"])
	case strategyGradualRolloutSession:
		if ctx.SessionID == "" {
			return false
		}
		return normalizedHash(groupID(strategy, featureName), ctx.SessionID) <= percentage(strategy.Parameters["percentage"])
	case strategyGradualRolloutRandom:
		return rand.Intn(100)+1 <= percentage(strategy.Parameters["percentage"])
	case strategyRemoteAddress:
		return remoteAddressMatches(strategy.Parameters["IPs"], ctx.RemoteAddress)
	case strategyApplicationHostname:
		return listContainsFold(splitParameterList(strategy.Parameters["hostNames"]), localHostname())
	case strategyFlexibleRollout:
		return flexibleRolloutMatches(strategy, featureName, ctx)
	}
	// Unknown strategy names were warned about at ingestion.
	return false
}

func flexibleRolloutMatches(strategy Strategy, featureName string, ctx Context) bool {
	rollout := percentage(strategy.Parameters["rollout"])
	group := groupID(strategy, featureName)

	var identifier string
	switch strategy.Parameters["stickiness"] {
	case "", "default":
		switch {
		case ctx.UserID != "":
			identifier = ctx.UserID
		case ctx.SessionID != "":
			identifier = ctx.SessionID
		default:
			return rand.Intn(100)+1 <= rollout
		}
	case "userId":
		if ctx.UserID == "" {
			return false
		}
		identifier = ctx.UserID
	case "sessionId":
		if ctx.SessionID == "" {
			return false
		}
		identifier = ctx.SessionID
	case "random":
		return rand.Intn(100)+1 <= rollout
	default:
		// Custom stickiness resolves through the context fields.
		value, ok := ctx.Field(strategy.Parameters["stickiness"])
		if !ok {
			return false
		}
		identifier = value
	}

	return normalizedHash(group, identifier) <= rollout
}

// normalizedHash buckets an identifier into 1..100 for a rollout group.
// The murmur3 seed and "group:identifier" layout match what SDKs use, so
// a user lands in the same bucket regardless of which side evaluates.
func normalizedHash(group, identifier string) int {
	sum := murmur3.Sum32([]byte(group + ":" + identifier))
	return int(sum%100) + 1
}

func groupID(strategy Strategy, featureName string) string {
	if group := strategy.Parameters["groupId"]; group != "" {
		return group
	}
	return featureName
}

func percentage(raw string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

// remoteAddressMatches accepts both bare addresses and CIDR prefixes in
// the parameter list. Unparseable entries and an unparseable context
// address never match.
func remoteAddressMatches(parameter, remoteAddress string) bool {
	addr, err := netip.ParseAddr(remoteAddress)
	if err != nil {
		return false
	}
	for _, entry := range splitParameterList(parameter) {
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			if prefix.Contains(addr) {
				return true
			}
			continue
		}
		if candidate, err := netip.ParseAddr(entry); err == nil && candidate == addr {
			return true
		}
	}
	return false
}

var localHostname = sync.OnceValue(func() string {
	if override := os.Getenv("HOSTNAME"); override != "" {
		return override
	}
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}
	return hostname
})

func splitParameterList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func listContains(list []string, value string) bool {
	for _, entry := range list {
		if entry == value {
			return true
		}
	}
	return false
}

func listContainsFold(list []string, value string) bool {
	for _, entry := range list {
		if strings.EqualFold(entry, value) {
			return true
		}
	}
	return false
}
