package commitment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSalt(t *testing.T) {
	a, err := GenerateSalt()
	require.NoError(t, err)
	b, err := GenerateSalt()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestNormalizeDocumentNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "dashes stripped", in: "001-1391820-5", want: "00113918205"},
		{name: "spaces stripped", in: "001 1391820 5", want: "00113918205"},
		{name: "uppercased", in: "ab1234567", want: "AB1234567"},
		{name: "already clean", in: "00113918205", want: "00113918205"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDocumentNumber(tt.in))
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "accents removed", in: "Juan Pérez", want: "JUAN PEREZ"},
		{name: "whitespace collapsed", in: "  Juan   Carlos \t Pérez ", want: "JUAN CARLOS PEREZ"},
		{name: "already normal", in: "JUAN PEREZ", want: "JUAN PEREZ"},
		{name: "enye folds to n", in: "Muñoz", want: "MUNOZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestCommit_EquivalentInputsMatch(t *testing.T) {
	salt := "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

	assert.Equal(t,
		Commit(NormalizeDocumentNumber("001-1391820-5"), salt),
		Commit(NormalizeDocumentNumber("00113918205"), salt),
	)
	assert.Equal(t,
		Commit(NormalizeName("Juan Pérez"), salt),
		Commit(NormalizeName("JUAN  PEREZ"), salt),
	)
}

func TestCommit_SaltChangesHash(t *testing.T) {
	a := Commit("VALUE", "salt-one")
	b := Commit("VALUE", "salt-two")

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 64)
}

func TestNewIdentity_VerifyRoundTrip(t *testing.T) {
	id, err := NewIdentity("001-1391820-5", "Juan Pérez", "DOM")
	require.NoError(t, err)

	assert.True(t, id.VerifyDocumentNumber("00113918205"))
	assert.True(t, id.VerifyFullName("JUAN PEREZ"))
	assert.False(t, id.VerifyDocumentNumber("001-1391820-9"))
	assert.False(t, id.VerifyFullName("Pedro Gomez"))
}

func TestNewIdentity_EmptyFieldsProduceNoHash(t *testing.T) {
	id, err := NewIdentity("", "Juan Pérez", "")
	require.NoError(t, err)

	assert.Empty(t, id.DocumentNumberHash)
	assert.Empty(t, id.IssuingCountryHash)
	assert.NotEmpty(t, id.FullNameHash)
	assert.False(t, id.VerifyDocumentNumber("anything"))
}

func TestIdentity_SaltNeverSerialized(t *testing.T) {
	id, err := NewIdentity("001-1391820-5", "Juan Pérez", "DOM")
	require.NoError(t, err)

	raw, err := json.Marshal(id)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), id.Salt)
	assert.NotContains(t, string(raw), "salt")
}

func TestDocumentHash_Deterministic(t *testing.T) {
	a := DocumentHash("001-1391820-5")
	b := DocumentHash("00113918205")
	c := DocumentHash("001-1391820-9")

	assert.Equal(t, a, b, "formatting must not change the hash")
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
