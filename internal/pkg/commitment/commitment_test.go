package commitment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialSecret() Secret {
	var s Secret
	for i := range s {
		s[i] = byte(i)
	}
	return s
}

func TestComputeKnownVector(t *testing.T) {
	h, err := Compute(SchemeSHA256, 3, 5, sequentialSecret())
	require.NoError(t, err)
	assert.Equal(t, "6e0b82439746e12605c41acf059a81b039061a9f2ff6f105a5d3e0e84b6b6088", h.String())
}

func TestRoundTripAllMoves(t *testing.T) {
	for _, scheme := range []Scheme{SchemeSHA256, SchemeKeccak256} {
		t.Run(string(scheme), func(t *testing.T) {
			secret, err := NewSecret()
			require.NoError(t, err)

			for card := uint8(1); card <= 5; card++ {
				for prediction := uint8(2); prediction <= 10; prediction++ {
					h, err := Compute(scheme, card, prediction, secret)
					require.NoError(t, err)

					ok, err := Verify(scheme, h, card, prediction, secret)
					require.NoError(t, err)
					assert.True(t, ok, "card=%d prediction=%d", card, prediction)
				}
			}
		})
	}
}

func TestVerifyRejectsAnySingleByteChange(t *testing.T) {
	secret := sequentialSecret()
	h, err := Compute(SchemeSHA256, 4, 7, secret)
	require.NoError(t, err)

	t.Run("card", func(t *testing.T) {
		ok, err := Verify(SchemeSHA256, h, 5, 7, secret)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("prediction", func(t *testing.T) {
		ok, err := Verify(SchemeSHA256, h, 4, 8, secret)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("secret", func(t *testing.T) {
		for i := 0; i < SecretLength; i++ {
			tampered := secret
			tampered[i] ^= 0x01
			ok, err := Verify(SchemeSHA256, h, 4, 7, tampered)
			require.NoError(t, err)
			assert.False(t, ok, "byte %d", i)
		}
	})

	t.Run("hash", func(t *testing.T) {
		tampered := h
		tampered[HashLength-1] ^= 0x80
		ok, err := Verify(SchemeSHA256, tampered, 4, 7, secret)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestSchemesProduceDifferentHashes(t *testing.T) {
	secret := sequentialSecret()
	a, err := Compute(SchemeSHA256, 2, 6, secret)
	require.NoError(t, err)
	b, err := Compute(SchemeKeccak256, 2, 6, secret)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	ok, err := Verify(SchemeKeccak256, a, 2, 6, secret)
	require.NoError(t, err)
	assert.False(t, ok)
}

// Without the secret an observer can only enumerate the 45 legal moves.
// None of them may match when guessed under any other secret.
func TestMoveSpaceEnumerationWithoutSecretFails(t *testing.T) {
	secret, err := NewSecret()
	require.NoError(t, err)
	h, err := Compute(SchemeSHA256, 3, 8, secret)
	require.NoError(t, err)

	var guess Secret
	for card := uint8(1); card <= 5; card++ {
		for prediction := uint8(2); prediction <= 10; prediction++ {
			ok, err := Verify(SchemeSHA256, h, card, prediction, guess)
			require.NoError(t, err)
			assert.False(t, ok)
		}
	}
}

func TestNewSecretIsRandom(t *testing.T) {
	a, err := NewSecret()
	require.NoError(t, err)
	b, err := NewSecret()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, Secret{}, a)
}

func TestParse(t *testing.T) {
	secret := sequentialSecret()
	h, err := Compute(SchemeSHA256, 1, 2, secret)
	require.NoError(t, err)

	parsed, err := ParseHash("0x" + h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	parsedSecret, err := ParseSecret(secret.String())
	require.NoError(t, err)
	assert.Equal(t, secret, parsedSecret)

	_, err = ParseHash("abcd")
	assert.ErrorIs(t, err, ErrHashLength)

	_, err = ParseSecret("00ff")
	assert.ErrorIs(t, err, ErrSecretLength)

	_, err = ParseHash("zz")
	assert.Error(t, err)
}

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme("")
	require.NoError(t, err)
	assert.Equal(t, SchemeSHA256, s)

	s, err = ParseScheme("Keccak256")
	require.NoError(t, err)
	assert.Equal(t, SchemeKeccak256, s)

	_, err = ParseScheme("md5")
	assert.ErrorIs(t, err, ErrUnknownScheme)

	_, err = Compute(Scheme("md5"), 1, 2, Secret{})
	assert.ErrorIs(t, err, ErrUnknownScheme)
}
