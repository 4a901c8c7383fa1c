package engine

import (
	"strings"
	"testing"
)

func TestResolveUnknownToggle(t *testing.T) {
	state := NewState()
	if _, ok := state.Resolve("missing", Context{}); ok {
		t.Fatal("Resolve() on empty state = ok, want not found")
	}
}

func TestTakeStateReplacesWholesale(t *testing.T) {
	state := NewState()

	warnings := state.TakeState(ClientFeatures{
		Version: 2,
		Features: []Feature{
			{Name: "a", Enabled: true},
			{Name: "b", Enabled: true},
		},
	})
	if len(warnings) != 0 {
		t.Fatalf("TakeState() warnings = %v, want none", warnings)
	}

	if resolved, ok := state.Resolve("a", Context{}); !ok || !resolved.Enabled {
		t.Fatalf("Resolve(a) = (%v, %t), want enabled", resolved, ok)
	}

	// The second update does not mention "b"; it must disappear rather
	// than merge.
	state.TakeState(ClientFeatures{
		Version:  2,
		Features: []Feature{{Name: "a", Enabled: false}},
	})

	if resolved, ok := state.Resolve("a", Context{}); !ok || resolved.Enabled {
		t.Fatalf("Resolve(a) after update = (%v, %t), want known but disabled", resolved, ok)
	}
	if _, ok := state.Resolve("b", Context{}); ok {
		t.Fatal("Resolve(b) after update = ok, want not found")
	}
}

func TestResolveAllCoversEveryFeature(t *testing.T) {
	state := NewState()
	state.TakeState(ClientFeatures{
		Version: 2,
		Features: []Feature{
			{Name: "on", Enabled: true},
			{Name: "off", Enabled: false},
		},
	})

	resolved := state.ResolveAll(Context{})
	if len(resolved) != 2 {
		t.Fatalf("ResolveAll() returned %d entries, want 2", len(resolved))
	}
	if !resolved["on"].Enabled {
		t.Fatal(`ResolveAll()["on"].Enabled = false, want true`)
	}
	if resolved["off"].Enabled {
		t.Fatal(`ResolveAll()["off"].Enabled = true, want false`)
	}
}

func TestResolveCarriesMetadata(t *testing.T) {
	state := NewState()
	state.TakeState(ClientFeatures{
		Version: 2,
		Features: []Feature{{
			Name:           "tracked",
			Project:        "web",
			Enabled:        true,
			ImpressionData: true,
		}},
	})

	resolved, ok := state.Resolve("tracked", Context{})
	if !ok {
		t.Fatal("Resolve() = not found, want found")
	}
	if resolved.Project != "web" || !resolved.ImpressionData {
		t.Fatalf("Resolve() = %+v, want project web with impression data", resolved)
	}
}

func TestTakeStateWarnings(t *testing.T) {
	tests := []struct {
		name    string
		feature Feature
		want    string
	}{
		{
			name: "unknown strategy",
			feature: Feature{
				Name:       "f",
				Enabled:    true,
				Strategies: []Strategy{{Name: "customMagic"}},
			},
			want: "not supported",
		},
		{
			name: "non-numeric rollout",
			feature: Feature{
				Name:    "f",
				Enabled: true,
				Strategies: []Strategy{{
					Name:       "flexibleRollout",
					Parameters: map[string]string{"rollout": "lots"},
				}},
			},
			want: "non-numeric rollout",
		},
		{
			name: "missing segment",
			feature: Feature{
				Name:       "f",
				Enabled:    true,
				Strategies: []Strategy{{Name: "default", Segments: []int{42}}},
			},
			want: "missing segment 42",
		},
		{
			name: "unknown constraint operator",
			feature: Feature{
				Name:    "f",
				Enabled: true,
				Strategies: []Strategy{{
					Name:        "default",
					Constraints: []Constraint{{ContextName: "userId", Operator: "GLOB"}},
				}},
			},
			want: "operator",
		},
		{
			name: "bad semver constraint",
			feature: Feature{
				Name:    "f",
				Enabled: true,
				Strategies: []Strategy{{
					Name:        "default",
					Constraints: []Constraint{{ContextName: "appVersion", Operator: OperatorSemverGt, Value: "not-a-version"}},
				}},
			},
			want: "invalid semver",
		},
		{
			name: "bad date constraint",
			feature: Feature{
				Name:    "f",
				Enabled: true,
				Strategies: []Strategy{{
					Name:        "default",
					Constraints: []Constraint{{ContextName: "currentTime", Operator: OperatorDateAfter, Value: "yesterday"}},
				}},
			},
			want: "non-RFC3339",
		},
		{
			name: "bad numeric constraint",
			feature: Feature{
				Name:    "f",
				Enabled: true,
				Strategies: []Strategy{{
					Name:        "default",
					Constraints: []Constraint{{ContextName: "age", Operator: OperatorNumGte, Value: "plenty"}},
				}},
			},
			want: "non-numeric value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewState()
			warnings := state.TakeState(ClientFeatures{Version: 2, Features: []Feature{tt.feature}})
			if len(warnings) == 0 {
				t.Fatal("TakeState() warnings = none, want at least one")
			}
			found := false
			for _, warning := range warnings {
				if warning.Toggle != "f" {
					t.Fatalf("warning toggle = %q, want \"f\"", warning.Toggle)
				}
				if strings.Contains(warning.Message, tt.want) {
					found = true
				}
			}
			if !found {
				t.Fatalf("warnings %v missing %q", warnings, tt.want)
			}

			// A warned update still applies.
			if _, ok := state.Resolve("f", Context{}); !ok {
				t.Fatal("Resolve() after warned update = not found, want found")
			}
		})
	}
}

func TestContextField(t *testing.T) {
	ctx := Context{
		UserID:     "u1",
		Properties: map[string]string{"plan": "pro", "empty": ""},
	}

	tests := []struct {
		name        string
		field       string
		wantValue   string
		wantPresent bool
	}{
		{"canonical field", "userId", "u1", true},
		{"unset canonical field", "sessionId", "", false},
		{"custom property", "plan", "pro", true},
		{"empty property", "empty", "", false},
		{"unknown property", "nope", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, present := ctx.Field(tt.field)
			if value != tt.wantValue || present != tt.wantPresent {
				t.Fatalf("Field(%q) = (%q, %t), want (%q, %t)",
					tt.field, value, present, tt.wantValue, tt.wantPresent)
			}
		})
	}
}
