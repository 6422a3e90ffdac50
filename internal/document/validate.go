package document

import (
	"regexp"
	"strings"
	"time"

	"github.com/biter777/countries"

	"github.com/verid-labs/verid/internal/domain"
)

// Validation issue codes surfaced to callers.
const (
	CodeMissingDocumentNumber   = "missing_document_number"
	CodeValidationUnavailable   = "validation_unavailable_for_country"
	CodeInvalidDocumentNumber   = "invalid_document_number"
	CodeInvalidLength           = "invalid_document_length"
	CodeInvalidChecksum         = "invalid_document_checksum"
	CodeInvalidFormat           = "invalid_document_format"
	CodeInvalidComponent        = "invalid_document_component"
	CodeInvalidPassportFormat   = "invalid_passport_format"
	CodeDocumentExpired         = "document_expired"
	CodeInvalidExpirationFormat = "invalid_expiration_format"
	CodeInvalidDOB              = "invalid_date_of_birth"
	CodeInvalidDOBFormat        = "invalid_dob_format"
	CodeMinorAge                = "minor_age_detected"
)

var passportNumberFormat = regexp.MustCompile(`^[A-Z0-9]{6,12}$`)

// numberError classifies why a country validator rejected a number.
type numberError struct {
	code string
}

var (
	errLength    = &numberError{CodeInvalidLength}
	errChecksum  = &numberError{CodeInvalidChecksum}
	errFormat    = &numberError{CodeInvalidFormat}
	errComponent = &numberError{CodeInvalidComponent}
)

// numberValidator checks one national document-number format.
type numberValidator struct {
	name   string
	format string
	check  func(number string) *numberError
}

// countryValidators maps ISO 3166-1 alpha-2 codes to their validators,
// most specific first. The first validator that accepts wins; when all
// reject, the first one's error is reported.
var countryValidators = map[string][]numberValidator{
	"DO": {{name: "cedula", format: "cedula", check: checkDominicanCedula}},
	"ES": {
		{name: "dni", format: "DNI", check: checkSpanishDNI},
		{name: "nie", format: "NIE", check: checkSpanishNIE},
	},
	"BR": {{name: "cpf", format: "CPF", check: checkBrazilianCPF}},
	"MX": {{name: "curp", format: "CURP", check: checkMexicanCURP}},
	"CL": {{name: "rut", format: "RUT", check: checkChileanRUT}},
	"PL": {{name: "pesel", format: "PESEL", check: checkPolishPESEL}},
	"NL": {{name: "bsn", format: "BSN", check: checkDutchBSN}},
	"AR": {{name: "cuit", format: "CUIT", check: checkArgentineCUIT}},
	"CO": {{name: "nit", format: "NIT", check: checkColombianNIT}},
}

var errorMessages = map[string]string{
	CodeInvalidLength:    "Document number has invalid length for %s %s",
	CodeInvalidChecksum:  "Document number failed checksum validation for %s %s",
	CodeInvalidFormat:    "Document number format is invalid for %s %s",
	CodeInvalidComponent: "Document number has an invalid component for %s %s",
}

// ValidateDocumentNumber checks a document number against the issuing
// country's national ID format. Countries without a registered
// validator pass with a marker code rather than fail.
func ValidateDocumentNumber(number, countryAlpha3 string) domain.ValidationResult {
	if strings.TrimSpace(number) == "" {
		return domain.ValidationResult{
			IsValid:      false,
			ErrorCode:    CodeMissingDocumentNumber,
			ErrorMessage: "No document number was extracted",
		}
	}
	if countryAlpha3 == "" {
		return domain.ValidationResult{IsValid: true}
	}

	country := countries.ByName(countryAlpha3)
	if country == countries.Unknown {
		return domain.ValidationResult{
			IsValid:   true,
			ErrorCode: CodeValidationUnavailable,
		}
	}

	validators, ok := countryValidators[country.Alpha2()]
	if !ok {
		return domain.ValidationResult{
			IsValid:   true,
			ErrorCode: CodeValidationUnavailable,
		}
	}

	var firstErr *numberError
	first := validators[0]
	for _, v := range validators {
		if err := v.check(number); err == nil {
			return domain.ValidationResult{
				IsValid:       true,
				ValidatorUsed: v.name,
				FormatName:    v.format,
			}
		} else if firstErr == nil {
			firstErr = err
		}
	}

	result := domain.ValidationResult{
		IsValid:       false,
		ValidatorUsed: first.name,
		FormatName:    first.format,
	}
	if msg, ok := errorMessages[firstErr.code]; ok {
		result.ErrorCode = firstErr.code
		result.ErrorMessage = sprintf2(msg, country.String(), first.format)
	} else {
		result.ErrorCode = CodeInvalidDocumentNumber
		result.ErrorMessage = "Document number is not valid for " + country.String()
	}
	return result
}

// ValidatePassportNumber applies the generic ICAO shape check; passport
// numbering schemes vary too much per issuer for anything stricter.
func ValidatePassportNumber(number string) domain.ValidationResult {
	cleaned := strings.ToUpper(strings.TrimSpace(number))
	if cleaned == "" {
		return domain.ValidationResult{
			IsValid:      false,
			ErrorCode:    CodeMissingDocumentNumber,
			ErrorMessage: "No document number was extracted",
		}
	}
	if !passportNumberFormat.MatchString(cleaned) {
		return domain.ValidationResult{
			IsValid:      false,
			ErrorCode:    CodeInvalidPassportFormat,
			ErrorMessage: "Passport number must be 6 to 12 alphanumeric characters",
		}
	}
	return domain.ValidationResult{IsValid: true}
}

// ValidateExpirationDate reports whether an ISO date is in the future.
// An empty date passes: absence is not expiry.
func ValidateExpirationDate(isoDate string) domain.ValidationResult {
	if isoDate == "" {
		return domain.ValidationResult{IsValid: true}
	}

	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return domain.ValidationResult{
			IsValid:      false,
			ErrorCode:    CodeInvalidExpirationFormat,
			ErrorMessage: "Expiration date could not be parsed",
		}
	}
	if t.Before(time.Now().Truncate(24 * time.Hour)) {
		return domain.ValidationResult{
			IsValid:      false,
			ErrorCode:    CodeDocumentExpired,
			ErrorMessage: "Document expired on " + isoDate,
		}
	}
	return domain.ValidationResult{IsValid: true}
}

// ValidateDateOfBirth checks an ISO birth date for plausibility and
// adulthood. An empty date passes.
func ValidateDateOfBirth(isoDate string) domain.ValidationResult {
	if isoDate == "" {
		return domain.ValidationResult{IsValid: true}
	}

	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return domain.ValidationResult{
			IsValid:      false,
			ErrorCode:    CodeInvalidDOBFormat,
			ErrorMessage: "Date of birth could not be parsed",
		}
	}

	ageYears := int(time.Since(t).Hours() / 24 / 365)
	switch {
	case ageYears < 0 || ageYears > 150:
		return domain.ValidationResult{
			IsValid:      false,
			ErrorCode:    CodeInvalidDOB,
			ErrorMessage: "Date of birth is implausible",
		}
	case ageYears < 18:
		return domain.ValidationResult{
			IsValid:      false,
			ErrorCode:    CodeMinorAge,
			ErrorMessage: "Document holder is under 18",
		}
	}
	return domain.ValidationResult{IsValid: true}
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// sprintf2 fills two %s slots; kept local so validators stay free of fmt.
func sprintf2(format, a, b string) string {
	out := strings.Replace(format, "%s", a, 1)
	return strings.Replace(out, "%s", b, 1)
}

// checkDominicanCedula validates the 11-digit cedula with its Luhn
// check digit.
func checkDominicanCedula(number string) *numberError {
	digits := digitsOnly(number)
	if len(digits) != 11 {
		return errLength
	}
	sum := 0
	for i := 0; i < 10; i++ {
		d := int(digits[i] - '0')
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	if check != int(digits[10]-'0') {
		return errChecksum
	}
	return nil
}

const dniLetters = "TRWAGMYFPDXBNJZSQVHLCKE"

// checkSpanishDNI validates 8 digits plus control letter.
func checkSpanishDNI(number string) *numberError {
	cleaned := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(number), "-", ""))
	if len(cleaned) != 9 {
		return errLength
	}
	body := cleaned[:8]
	if digitsOnly(body) != body {
		return errFormat
	}
	n := 0
	for i := 0; i < 8; i++ {
		n = n*10 + int(body[i]-'0')
	}
	if dniLetters[n%23] != cleaned[8] {
		return errChecksum
	}
	return nil
}

// checkSpanishNIE validates foreigner IDs: X/Y/Z prefix, 7 digits,
// control letter. The prefix maps to a digit and then follows DNI rules.
func checkSpanishNIE(number string) *numberError {
	cleaned := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(number), "-", ""))
	if len(cleaned) != 9 {
		return errLength
	}
	var prefix byte
	switch cleaned[0] {
	case 'X':
		prefix = '0'
	case 'Y':
		prefix = '1'
	case 'Z':
		prefix = '2'
	default:
		return errComponent
	}
	return checkSpanishDNI(string(prefix) + cleaned[1:])
}

// checkBrazilianCPF validates the 11-digit CPF with its two check
// digits. Sequences of a single repeated digit are rejected outright.
func checkBrazilianCPF(number string) *numberError {
	digits := digitsOnly(number)
	if len(digits) != 11 {
		return errLength
	}
	allSame := true
	for i := 1; i < 11; i++ {
		if digits[i] != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return errFormat
	}

	cpfDigit := func(upTo int) int {
		sum := 0
		for i := 0; i < upTo; i++ {
			sum += int(digits[i]-'0') * (upTo + 1 - i)
		}
		d := sum * 10 % 11
		if d == 10 {
			d = 0
		}
		return d
	}
	if cpfDigit(9) != int(digits[9]-'0') || cpfDigit(10) != int(digits[10]-'0') {
		return errChecksum
	}
	return nil
}

var curpFormat = regexp.MustCompile(`^[A-Z]{4}\d{6}[HM][A-Z]{5}[A-Z0-9]\d$`)

const curpAlphabet = "0123456789ABCDEFGHIJKLMNÑOPQRSTUVWXYZ"

// checkMexicanCURP validates the 18-character CURP format and check
// digit.
func checkMexicanCURP(number string) *numberError {
	cleaned := strings.ToUpper(strings.TrimSpace(number))
	if len([]rune(cleaned)) != 18 {
		return errLength
	}
	if !curpFormat.MatchString(cleaned) {
		return errFormat
	}
	runes := []rune(cleaned)
	sum := 0
	for i := 0; i < 17; i++ {
		v := strings.IndexRune(curpAlphabet, runes[i])
		if v < 0 {
			return errComponent
		}
		sum += v * (18 - i)
	}
	check := (10 - sum%10) % 10
	if check != int(runes[17]-'0') {
		return errChecksum
	}
	return nil
}

// checkChileanRUT validates a RUT with its mod-11 verifier (K allowed).
func checkChileanRUT(number string) *numberError {
	cleaned := strings.ToUpper(strings.NewReplacer(".", "", "-", "", " ", "").Replace(number))
	if len(cleaned) < 2 {
		return errLength
	}
	body := cleaned[:len(cleaned)-1]
	dv := cleaned[len(cleaned)-1]
	if digitsOnly(body) != body {
		return errFormat
	}

	sum := 0
	weight := 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	var expected byte
	switch r := 11 - sum%11; r {
	case 11:
		expected = '0'
	case 10:
		expected = 'K'
	default:
		expected = byte('0' + r)
	}
	if dv != expected {
		return errChecksum
	}
	return nil
}

// checkPolishPESEL validates the 11-digit PESEL checksum.
func checkPolishPESEL(number string) *numberError {
	digits := digitsOnly(number)
	if len(digits) != 11 {
		return errLength
	}
	weights := []int{1, 3, 7, 9, 1, 3, 7, 9, 1, 3}
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	check := (10 - sum%10) % 10
	if check != int(digits[10]-'0') {
		return errChecksum
	}
	return nil
}

// checkDutchBSN validates the 9-digit BSN with the 11-test.
func checkDutchBSN(number string) *numberError {
	digits := digitsOnly(number)
	if len(digits) != 9 {
		return errLength
	}
	sum := 0
	for i := 0; i < 8; i++ {
		sum += int(digits[i]-'0') * (9 - i)
	}
	sum -= int(digits[8] - '0')
	if sum%11 != 0 {
		return errChecksum
	}
	return nil
}

// checkArgentineCUIT validates the 11-digit CUIT/CUIL.
func checkArgentineCUIT(number string) *numberError {
	digits := digitsOnly(number)
	if len(digits) != 11 {
		return errLength
	}
	weights := []int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	check := 11 - sum%11
	switch check {
	case 11:
		check = 0
	case 10:
		return errChecksum
	}
	if check != int(digits[10]-'0') {
		return errChecksum
	}
	return nil
}

// checkColombianNIT validates a NIT with its prime-weighted verifier.
func checkColombianNIT(number string) *numberError {
	digits := digitsOnly(number)
	if len(digits) < 2 {
		return errLength
	}
	body := digits[:len(digits)-1]
	dv := int(digits[len(digits)-1] - '0')

	weights := []int{3, 7, 13, 17, 19, 23, 29, 37, 41, 43, 47, 53, 59, 67, 71}
	if len(body) > len(weights) {
		return errLength
	}
	sum := 0
	for i := 0; i < len(body); i++ {
		// weights apply right to left
		sum += int(body[len(body)-1-i]-'0') * weights[i]
	}
	r := sum % 11
	check := r
	if r >= 2 {
		check = 11 - r
	}
	if check != dv {
		return errChecksum
	}
	return nil
}
