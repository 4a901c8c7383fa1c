package engine

import (
	"math/rand"

	"github.com/twmb/murmur3"
)

// disabledVariantName is returned whenever no variant applies, mirroring
// what feature SDKs report for variant-free or disabled features.
const disabledVariantName = "disabled"

// selectVariant picks the variant for a resolved feature. Overrides win
// outright; otherwise the variant is chosen by a sticky hash over the
// cumulative weights, so the same context keeps seeing the same variant.
func selectVariant(feature Feature, enabled bool, ctx Context) VariantState {
	disabled := VariantState{
		Name:           disabledVariantName,
		Enabled:        false,
		FeatureEnabled: enabled,
	}
	if !enabled || len(feature.Variants) == 0 {
		return disabled
	}

	for _, variant := range feature.Variants {
		if overrideMatches(variant, ctx) {
			return chosen(variant)
		}
	}

	total := 0
	for _, variant := range feature.Variants {
		if variant.Weight > 0 {
			total += variant.Weight
		}
	}
	if total == 0 {
		return disabled
	}

	bucket := variantBucket(feature, ctx, total)
	cumulative := 0
	for _, variant := range feature.Variants {
		if variant.Weight <= 0 {
			continue
		}
		cumulative += variant.Weight
		if bucket <= cumulative {
			return chosen(variant)
		}
	}
	return disabled
}

func chosen(variant VariantDef) VariantState {
	return VariantState{
		Name:           variant.Name,
		Enabled:        true,
		FeatureEnabled: true,
		Payload:        variant.Payload,
	}
}

func overrideMatches(variant VariantDef, ctx Context) bool {
	for _, override := range variant.Overrides {
		value, ok := ctx.Field(override.ContextName)
		if ok && listContains(override.Values, value) {
			return true
		}
	}
	return false
}

// variantBucket maps the context's stickiness identifier into
// 1..total. A custom stickiness field is honoured when the first variant
// declares one; without any usable identifier the pick is random.
func variantBucket(feature Feature, ctx Context, total int) int {
	identifier := stickinessIdentifier(feature, ctx)
	if identifier == "" {
		return rand.Intn(total) + 1
	}
	sum := murmur3.Sum32([]byte(feature.Name + ":" + identifier))
	return int(sum%uint32(total)) + 1
}

func stickinessIdentifier(feature Feature, ctx Context) string {
	stickiness := ""
	if len(feature.Variants) > 0 {
		stickiness = feature.Variants[0].Stickiness
	}

	switch stickiness {
	case "", "default":
		if ctx.UserID != "" {
			return ctx.UserID
		}
		if ctx.SessionID != "" {
			return ctx.SessionID
		}
		if ctx.RemoteAddress != "" {
			return ctx.RemoteAddress
		}
		return ""
	case "random":
		return ""
	default:
		value, _ := ctx.Field(stickiness)
		return value
	}
}
