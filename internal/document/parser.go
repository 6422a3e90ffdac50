package document

import (
	"regexp"
	"strings"

	"github.com/biter777/countries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/verid-labs/verid/internal/domain"
)

var titleCaser = cases.Title(language.Und)

// Field extraction patterns. Labels are matched in Spanish and English
// since most supported documents carry one or both.
var (
	// XXX-XXXXXXX-X, 11 digits with optional dashes or spaces
	cedulaNumberPattern = regexp.MustCompile(`\b(\d{3}[-\s]?\d{7}[-\s]?\d{1})\b`)

	firstNamePattern = regexp.MustCompile(`NOMBRE[S]?\s*[:.]?\s*([A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑ\s]+)`)
	lastNamePattern  = regexp.MustCompile(`APELLIDO[S]?\s*[:.]?\s*([A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑ\s]+)`)

	dobPattern    = regexp.MustCompile(`FECHA\s*(?:DE\s*)?NAC(?:IMIENTO)?\s*[:.]?\s*(\d{2}[/-]\d{2}[/-]\d{4})`)
	expiryPattern = regexp.MustCompile(`(?:VENCE|EXPIRA(?:CION)?|VALIDO?\s*HASTA)\s*[:.]?\s*(\d{2}[/-]\d{2}[/-]\d{4})`)
	anyDate       = regexp.MustCompile(`\b(\d{2}[/-]\d{2}[/-]\d{4})\b`)

	genderPattern = regexp.MustCompile(`SEXO\s*[:.]?\s*([MF])\b`)

	// Stop words that end a captured name run.
	nameStopAfterFirst = regexp.MustCompile(`\s+(?:APELLIDO|FECHA|SEXO|NACIMIENTO|VENCE)`)
	nameStopAfterLast  = regexp.MustCompile(`\s+(?:NOMBRE|FECHA|SEXO|NACIMIENTO|VENCE)`)

	// Unlabeled fallback: at least two uppercase words of 3+/2+ chars.
	unlabeledName = regexp.MustCompile(`\b([A-ZÁÉÍÓÚÑ]{3,}(?:\s+[A-ZÁÉÍÓÚÑ]{2,}){1,5})\b`)

	dominicanMarkers = regexp.MustCompile(`REPUBLICA\s+DOMINICANA|REP\.?\s*DOM|DOMINICAN`)
	spanishDNI       = regexp.MustCompile(`\b\d{8}[A-Z]\b`)

	licenseNumberPattern  = regexp.MustCompile(`(?:LICENCIA|LIC)[.\s]*(?:NO|NUM)?[.\s]*:?\s*([A-Z]{0,3}\d[A-Z0-9-]{3,})`)
	passportNumberPattern = regexp.MustCompile(`\b([A-Z]{2}\d{7})\b`)
	genericNamePattern    = regexp.MustCompile(`(?:NOMBRE|NAME|TITULAR)\s*[:.]?\s*([A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑ ]+)`)
)

// phrases that disqualify an unlabeled name candidate
var nameBlocklist = []string{
	"REPUBLICA DOMINICANA",
	"JUNTA CENTRAL",
	"ELECTORAL",
	"CEDULA",
	"DOCUMENTO NACIONAL",
	"ESPAÑA",
}

// NormalizeCedulaNumber formats an 11-digit cedula as XXX-XXXXXXX-X.
// Inputs that are not 11 digits come back unchanged.
func NormalizeCedulaNumber(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	if len(digits) == 11 {
		return digits[:3] + "-" + digits[3:10] + "-" + digits[10:]
	}
	return raw
}

// ParseDateToISO converts DD/MM/YYYY, DD-MM-YYYY or MRZ YYMMDD dates to
// ISO 8601. Two-digit years below 50 are read as 20xx, the rest as 19xx.
// Returns "" when the input matches neither shape.
func ParseDateToISO(dateStr string) string {
	if dateStr == "" {
		return ""
	}

	if m := regexp.MustCompile(`^(\d{2})[/-](\d{2})[/-](\d{4})`).FindStringSubmatch(dateStr); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1]
	}

	if m := regexp.MustCompile(`^(\d{2})(\d{2})(\d{2})$`).FindStringSubmatch(dateStr); m != nil {
		century := "19"
		if m[1] < "50" {
			century = "20"
		}
		return century + m[1] + "-" + m[2] + "-" + m[3]
	}

	return ""
}

// ExtractNationalIDFields parses national ID card text (cedula, DNI and
// similar formats).
func ExtractNationalIDFields(text string) *domain.ExtractedData {
	data := &domain.ExtractedData{}
	upper := strings.ToUpper(text)

	if m := cedulaNumberPattern.FindStringSubmatch(upper); m != nil {
		data.DocumentNumber = NormalizeCedulaNumber(m[1])
	} else if m := spanishDNI.FindString(upper); m != "" {
		data.DocumentNumber = m
	}

	if m := firstNamePattern.FindStringSubmatch(upper); m != nil {
		raw := strings.TrimSpace(m[1])
		if loc := nameStopAfterFirst.FindStringIndex(raw); loc != nil {
			raw = raw[:loc[0]]
		}
		data.FirstName = titleCaser.String(strings.ToLower(strings.TrimSpace(raw)))
	}

	if m := lastNamePattern.FindStringSubmatch(upper); m != nil {
		raw := strings.TrimSpace(m[1])
		if loc := nameStopAfterLast.FindStringIndex(raw); loc != nil {
			raw = raw[:loc[0]]
		}
		data.LastName = titleCaser.String(strings.ToLower(strings.TrimSpace(raw)))
	}

	data.FullName = joinName(data.FirstName, data.LastName)

	// Unlabeled fallback: the first line holding a run of uppercase
	// words that is not a known header phrase. Scanned per line so a
	// blocked header does not swallow the line below it.
	if data.FullName == "" {
		for _, line := range strings.Split(upper, "\n") {
			m := unlabeledName.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if nameBlocked(m[1]) {
				continue
			}
			data.FullName = titleCaser.String(strings.ToLower(m[1]))
			break
		}
	}

	if m := dobPattern.FindStringSubmatch(upper); m != nil {
		data.DateOfBirth = ParseDateToISO(m[1])
	}
	if data.DateOfBirth == "" {
		if m := anyDate.FindStringSubmatch(upper); m != nil {
			data.DateOfBirth = ParseDateToISO(m[1])
		}
	}

	if m := expiryPattern.FindStringSubmatch(upper); m != nil {
		data.ExpirationDate = ParseDateToISO(m[1])
	}

	if m := genderPattern.FindStringSubmatch(upper); m != nil {
		data.Gender = m[1]
	}

	// Nationality from country markers on the card face.
	switch {
	case dominicanMarkers.MatchString(upper):
		setNationality(data, "DOM")
	case spanishDNI.MatchString(upper) && strings.Contains(upper, "ESPAÑA"):
		setNationality(data, "ESP")
	}

	return data
}

// ExtractDriversLicenseFields parses driver's license text.
func ExtractDriversLicenseFields(text string) *domain.ExtractedData {
	data := &domain.ExtractedData{}
	upper := strings.ToUpper(text)

	if m := licenseNumberPattern.FindStringSubmatch(upper); m != nil {
		data.DocumentNumber = m[1]
	}
	if data.DocumentNumber == "" {
		if m := cedulaNumberPattern.FindStringSubmatch(upper); m != nil {
			data.DocumentNumber = NormalizeCedulaNumber(m[1])
		}
	}

	if m := genericNamePattern.FindStringSubmatch(upper); m != nil {
		data.FullName = strings.TrimSpace(m[1])
	}

	if m := dobPattern.FindStringSubmatch(upper); m != nil {
		data.DateOfBirth = ParseDateToISO(m[1])
	}
	if m := expiryPattern.FindStringSubmatch(upper); m != nil {
		data.ExpirationDate = ParseDateToISO(m[1])
	}

	// Licenses carry no MRZ, so nationality relies on country markers.
	if dominicanMarkers.MatchString(upper) {
		setNationality(data, "DOM")
	}

	return data
}

// ExtractPassportFields parses passport text. The MRZ is authoritative
// when present; otherwise a label-based fallback runs without checksum
// validation. The bool reports whether MRZ checksums passed.
func ExtractPassportFields(text string) (*domain.ExtractedData, bool) {
	if m := mrzPattern.FindString(text); m != "" {
		return ParseMRZ(m)
	}

	data := &domain.ExtractedData{}
	upper := strings.ToUpper(text)

	if m := passportNumberPattern.FindStringSubmatch(upper); m != nil {
		data.DocumentNumber = m[1]
	}

	if m := genericNamePattern.FindStringSubmatch(upper); m != nil {
		data.FullName = strings.TrimSpace(m[1])
	}

	return data, false
}

func nameBlocked(candidate string) bool {
	for _, phrase := range nameBlocklist {
		if strings.Contains(candidate, phrase) {
			return true
		}
	}
	return false
}

func joinName(first, last string) string {
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return last
	}
}

// setNationality fills nationality code and display name from an
// alpha-3 code.
func setNationality(data *domain.ExtractedData, alpha3 string) {
	data.NationalityCode = alpha3
	if c := countries.ByName(alpha3); c != countries.Unknown {
		data.Nationality = c.String()
	} else {
		data.Nationality = alpha3
	}
}
