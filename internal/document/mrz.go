package document

import (
	"regexp"
	"strings"

	"github.com/biter777/countries"

	"github.com/verid-labs/verid/internal/domain"
)

// mrzPattern finds a TD3 machine-readable zone: the name line followed
// by the 44-character data line.
var mrzPattern = regexp.MustCompile(`P<[A-Z]{3}[A-Z<]+<<[A-Z<]+<*\s*[A-Z0-9<]{44}`)

// ocrSubstitutions are digit/letter pairs OCR engines commonly confuse.
// Applied in both directions when a country code fails lookup.
var ocrSubstitutions = [][2]byte{
	{'0', 'O'},
	{'1', 'I'},
	{'5', 'S'},
	{'8', 'B'},
	{'2', 'Z'},
}

// mrzCheckDigit computes the ICAO 7-3-1 weighted check digit over a
// field. Letters map to 10-35, filler counts as zero.
func mrzCheckDigit(field string) int {
	weights := []int{7, 3, 1}
	sum := 0
	for i := 0; i < len(field); i++ {
		c := field[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c >= 'A' && c <= 'Z':
			v = int(c-'A') + 10
		default: // '<'
			v = 0
		}
		sum += v * weights[i%3]
	}
	return sum % 10
}

func mrzChecksumOK(field string, check byte) bool {
	if check < '0' || check > '9' {
		return false
	}
	return mrzCheckDigit(field) == int(check-'0')
}

// correctCountryCode tries OCR confusion substitutions until the code
// resolves to a known ISO 3166-1 alpha-3 country.
func correctCountryCode(code string) string {
	if countries.ByName(code) != countries.Unknown {
		return code
	}
	for _, sub := range ocrSubstitutions {
		for _, pair := range [][2]byte{sub, {sub[1], sub[0]}} {
			fixed := strings.ReplaceAll(code, string(pair[0]), string(pair[1]))
			if fixed != code && countries.ByName(fixed) != countries.Unknown {
				return fixed
			}
		}
	}
	return code
}

// ParseMRZ decodes a TD3 passport MRZ. The bool reports whether the
// document number, birth date and expiry check digits all verified.
// Fields with failed checksums are still returned; the caller decides
// how hard to fail.
func ParseMRZ(mrz string) (*domain.ExtractedData, bool) {
	data := &domain.ExtractedData{}

	compact := strings.ToUpper(mrz)

	// Line 1: P<ISSUERSURNAME<<GIVEN<NAMES<<<...
	line1 := compact
	var line2 string
	if idx := strings.IndexAny(compact, " \n"); idx >= 0 {
		line1 = compact[:idx]
		line2 = strings.TrimSpace(compact[idx:])
	} else if len(compact) > 44 {
		line1 = compact[:len(compact)-44]
		line2 = compact[len(compact)-44:]
	}

	if len(line1) >= 5 && strings.HasPrefix(line1, "P<") {
		issuer := correctCountryCode(line1[2:5])
		data.IssuingCountryCode = issuer
		if c := countries.ByName(issuer); c != countries.Unknown {
			data.IssuingCountry = c.String()
		}

		namePart := line1[5:]
		if sep := strings.Index(namePart, "<<"); sep >= 0 {
			surname := strings.ReplaceAll(namePart[:sep], "<", " ")
			given := strings.ReplaceAll(namePart[sep+2:], "<", " ")
			data.LastName = titleCaser.String(strings.ToLower(strings.TrimSpace(surname)))
			data.FirstName = titleCaser.String(strings.ToLower(strings.TrimSpace(given)))
			data.FullName = joinName(data.FirstName, data.LastName)
		}
	}

	if len(line2) < 28 {
		return data, false
	}

	// Line 2 layout: number(9) check(1) nationality(3) dob(6) check(1)
	// sex(1) expiry(6) check(1) personal(14) check(1) composite(1)
	number := line2[0:9]
	numberCheck := line2[9]
	nationality := line2[10:13]
	dob := line2[13:19]
	dobCheck := line2[19]
	sex := line2[20]

	data.DocumentNumber = strings.TrimRight(number, "<")

	nat := correctCountryCode(nationality)
	data.NationalityCode = nat
	if c := countries.ByName(nat); c != countries.Unknown {
		data.Nationality = c.String()
	}

	data.DateOfBirth = ParseDateToISO(dob)
	if sex == 'M' || sex == 'F' {
		data.Gender = string(sex)
	}

	checksumOK := mrzChecksumOK(number, numberCheck) && mrzChecksumOK(dob, dobCheck)

	if len(line2) >= 28 {
		expiry := line2[21:27]
		expiryCheck := line2[27]
		data.ExpirationDate = ParseDateToISO(expiry)
		checksumOK = checksumOK && mrzChecksumOK(expiry, expiryCheck)
	}

	return data, checksumOK
}
