package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_Deterministic(t *testing.T) {
	a := Derive("10.0.0.1", "7", "alice")
	b := Derive("10.0.0.1", "7", "alice")
	assert.Equal(t, a, b)
}

func TestDerive_SensitiveToEveryInput(t *testing.T) {
	base := Derive("10.0.0.1", "7", "alice")

	cases := map[string]string{
		"ip":       Derive("10.0.0.2", "7", "alice"),
		"userId":   Derive("10.0.0.1", "8", "alice"),
		"username": Derive("10.0.0.1", "7", "bob"),
	}
	for input, derived := range cases {
		assert.NotEqual(t, base, derived, "changing %s must change the token", input)
	}
}

func TestDerive_InterleavesEqualLengthDigests(t *testing.T) {
	tok := Derive("10.0.0.1", "7", "alice")

	// Three 32-char hex digests interleaved position by position.
	require.Len(t, tok, 96)
	var a, b, c []byte
	for i := 0; i < len(tok); i += 3 {
		a = append(a, tok[i])
		b = append(b, tok[i+1])
		c = append(c, tok[i+2])
	}
	assert.Equal(t, digest("10.0.0.1"), string(a))
	assert.Equal(t, digest("7"), string(b))
	assert.Equal(t, digest("alice"), string(c))
}

func TestVerify(t *testing.T) {
	tok := Derive("10.0.0.1", "7", "alice")

	assert.True(t, Verify(tok, tok))
	assert.False(t, Verify(tok, Derive("10.0.0.2", "7", "alice")))
	assert.False(t, Verify(tok, ""))
	assert.False(t, Verify("", tok))
}
