// Package commitment derives salted SHA-256 commitments over identity
// fields. Commitments let a relying party prove a document matches a
// registered identity without ever holding the raw field values.
package commitment

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const saltBytes = 32

// stripAccents removes combining marks after NFD decomposition, so
// "Pérez" and "PEREZ" commit to the same value.
var stripAccents = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// GenerateSalt returns a fresh 32-byte salt, hex encoded.
func GenerateSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// NormalizeDocumentNumber strips every non-alphanumeric rune and
// uppercases, so "001-1391820-5" and "00113918205" commit equally.
func NormalizeDocumentNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// NormalizeName removes accents, collapses whitespace runs and
// uppercases.
func NormalizeName(name string) string {
	cleaned, _, err := transform.String(stripAccents, name)
	if err != nil {
		cleaned = name
	}
	return strings.ToUpper(strings.Join(strings.Fields(cleaned), " "))
}

// NormalizeCountry uppercases a trimmed country code.
func NormalizeCountry(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DocumentHash is the deterministic, unsalted hash of a document
// number. Unlike the salted commitments it is stable across
// registrations, which is what makes duplicate-document detection
// possible without storing the number itself.
func DocumentHash(number string) string {
	sum := sha256.Sum256([]byte(NormalizeDocumentNumber(number)))
	return hex.EncodeToString(sum[:])
}

// Commit hashes an already-normalized value with the salt. The salt is
// appended after a separator so distinct values cannot collide through
// concatenation.
func Commit(normalized, salt string) string {
	sum := sha256.Sum256([]byte(normalized + ":" + salt))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether a candidate raw value matches a commitment.
// The comparison is constant time; normalize must be the same function
// used when the commitment was created.
func Verify(commitmentHex, raw, salt string, normalize func(string) string) bool {
	expected := Commit(normalize(raw), salt)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(commitmentHex)) == 1
}

// Identity is the full commitment set for one verified document. The
// salt is never persisted or serialized: registration hands it to the
// user exactly once and claim verification takes it back from them.
type Identity struct {
	DocumentNumberHash string `json:"document_number_hash,omitempty"`
	FullNameHash       string `json:"full_name_hash,omitempty"`
	IssuingCountryHash string `json:"issuing_country_hash,omitempty"`
	Salt               string `json:"-"`
}

// NewIdentity derives commitments for the fields that are present.
// Empty fields produce no hash rather than a hash of the empty string.
func NewIdentity(documentNumber, fullName, issuingCountry string) (*Identity, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return nil, err
	}

	id := &Identity{Salt: salt}
	if documentNumber != "" {
		id.DocumentNumberHash = Commit(NormalizeDocumentNumber(documentNumber), salt)
	}
	if fullName != "" {
		id.FullNameHash = Commit(NormalizeName(fullName), salt)
	}
	if issuingCountry != "" {
		id.IssuingCountryHash = Commit(NormalizeCountry(issuingCountry), salt)
	}
	return id, nil
}

// VerifyDocumentNumber checks a raw document number against this
// identity's commitment.
func (id *Identity) VerifyDocumentNumber(raw string) bool {
	if id.DocumentNumberHash == "" {
		return false
	}
	return Verify(id.DocumentNumberHash, raw, id.Salt, NormalizeDocumentNumber)
}

// VerifyFullName checks a raw name against this identity's commitment.
func (id *Identity) VerifyFullName(raw string) bool {
	if id.FullNameHash == "" {
		return false
	}
	return Verify(id.FullNameHash, raw, id.Salt, NormalizeName)
}
