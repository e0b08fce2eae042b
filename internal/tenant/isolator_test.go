package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerive_ReplacesDisallowedCharacters(t *testing.T) {
	got := Derive(`alice/bob.smith "x"`)
	assert.Equal(t, "alice_bob_smith__x__kato", got)
}

// Characters outside the normative blacklist (spec.md §6) but outside a
// plain [A-Za-z0-9_] allowlist too, such as '@', must pass through
// unchanged rather than being replaced.
func TestDerive_PassesThroughNonBlacklistedPunctuation(t *testing.T) {
	assert.Equal(t, "alice@example_kato", Derive("alice@example"))
}

func TestDerive_Lowercases(t *testing.T) {
	assert.Equal(t, "alice_kato", Derive("ALICE"))
}

func TestDerive_Deterministic(t *testing.T) {
	assert.Equal(t, Derive("alice"), Derive("alice"))
}

func TestDerive_DistinctTenants(t *testing.T) {
	assert.NotEqual(t, Derive("alice"), Derive("bob"))
}

func TestResolver_CustomSuffix(t *testing.T) {
	r := Resolver{Suffix: "_svc"}
	assert.Equal(t, "alice_svc", r.Derive("alice"))
}
