package geocoding

import (
	"regexp"
	"route-planner-service/internal/normalizer"
	"strings"
)

// Town names the working area. They are appended to outbound queries and
// used to split street from locality.
type Town struct {
	City    string
	Region  string
	Country string
	// StreetType prefixes short-street queries.
	StreetType string
}

type replacement struct {
	re   *regexp.Regexp
	with string
}

type literalFix struct {
	old, new string
}

var (
	reControl     = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	reStrayQMark  = regexp.MustCompile(`\s*\?\s*`)
	reParenClosed = regexp.MustCompile(`\([^)]*\)`)
	reParenOpen   = regexp.MustCompile(`\([^)]*$`)

	reDupStreetType = regexp.MustCompile(`(?i)\b(calle|avenida|plaza|carretera)\s+(calle|avenida|plaza|carretera)\b`)
	reDupNumber     = regexp.MustCompile(`\bn?(\d+)\s+n?(\d+)\b`)
	reLetterDigit   = regexp.MustCompile(`([a-zA-ZáéíóúüñÁÉÍÓÚÜÑ])(\d)`)
	reDoubleComma   = regexp.MustCompile(`\s*,\s*,+`)
	reMultiSpace    = regexp.MustCompile(`\s{2,}`)
	reSupplyPrefix  = regexp.MustCompile(`(?i)^suministros\s+\w+\s*/`)
	reLeadingPunct  = regexp.MustCompile(`^[-,.\s]+`)

	reTrailingNumber = regexp.MustCompile(`\s+(\d+[-/]?\d*)\s*[A-Za-z]?\s*$`)
	reTrailingNoNum  = regexp.MustCompile(`(?i)\s+s/n\s*$`)
)

// Known encoding corruptions seen in exported delivery sheets. Order matters:
// longer patterns go before their prefixes.
var encodingFixes = []literalFix{
	{"\u00a0", " "},
	{"FernÁndez", "Fernández"},
	{"M?SICO", "MÚSICO"},
	{"M?sico", "Músico"},
	{"Le?n", "León"},
	{"LE?N", "LEÓN"},
	{"Garc?a", "García"},
	{"GARC?A", "GARCÍA"},
	{"N?2", "Nº 2"},
	{"N?", "Nº "},
	{"n°", "nº"},
}

var accentFixes = []literalFix{
	{"Mari´a", "María"},
	{"mari´a", "maría"},
	{"Garci´a", "García"},
	{"garci´a", "garcía"},
	{"Jose´", "José"},
	{"jose´", "josé"},
	{"a´", "á"}, {"e´", "é"}, {"i´", "í"}, {"o´", "ó"}, {"u´", "ú"},
	{"A´", "Á"}, {"E´", "É"}, {"I´", "Í"}, {"O´", "Ó"}, {"U´", "Ú"},
}

var typoFixes = []literalFix{
	{"adofo", "Adolfo"},
	{"ADOFO", "ADOLFO"},
}

// Everything after these markers is delivery noise (floor, door, notes).
var noiseMarkers = []replacement{
	{regexp.MustCompile(`(?i)\bSi Ausente\b.*`), ""},
	{regexp.MustCompile(`(?i)\bseguros\b.*`), ""},
	{regexp.MustCompile(`(?i)\bOFICINA DE\b.*`), ""},
	{regexp.MustCompile(`(?i)\bESCALERA:?\s*\w+`), ""},
	{regexp.MustCompile(`(?i)\bLOCAL\b`), ""},
	{regexp.MustCompile(`(?i)\bCasa\s*$`), ""},
	{regexp.MustCompile(`(?i)\bP\.\d+\b.*`), ""},
	{regexp.MustCompile(`(?i)\bPt\.\w+\b.*`), ""},
	{regexp.MustCompile(`(?i)\bPTA\b\.?\s*(IZQ|DER|DCHA|IZDA)?\b`), ""},
	{regexp.MustCompile(`(?i)\bPUERTA\b.*`), ""},
}

var streetTypes = []replacement{
	{regexp.MustCompile(`\bGALLE\b`), "CALLE"},
	{regexp.MustCompile(`\bCALLE:\s*`), "CALLE "},
	{regexp.MustCompile(`\bCL\b\.?\s*`), "Calle "},
	{regexp.MustCompile(`\bC/\s*`), "Calle "},
	{regexp.MustCompile(`\bC\.\s+`), "Calle "},
	{regexp.MustCompile(`\bC\s+([A-ZÁÉÍÓÚÑ])`), "Calle $1"},
	{regexp.MustCompile(`\bCalleDona\b`), "Calle Doña"},
	{regexp.MustCompile(`\bAVDA\b\.?`), "Avenida"},
	{regexp.MustCompile(`\bAV\b\.?`), "Avenida"},
	{regexp.MustCompile(`\bAvda\b\.?`), "Avenida"},
	{regexp.MustCompile(`\bAv\.\s`), "Avenida "},
	{regexp.MustCompile(`\bPZA\b\.?`), "Plaza"},
	{regexp.MustCompile(`\bPza\b\.?`), "Plaza"},
	{regexp.MustCompile(`\bCRTA\b\.?`), "Carretera"},
	{regexp.MustCompile(`\bCtra\b\.?`), "Carretera"},
	{regexp.MustCompile(`\bPSJ\b\.?`), "Pasaje"},
}

// House-number markers are dropped, the digits stay.
var numberMarkers = []replacement{
	{regexp.MustCompile(`(?i)\bnúmero\b`), ""},
	{regexp.MustCompile(`(?i)\bNº\.?\s*`), ""},
	{regexp.MustCompile(`\bn\s*°\s*`), ""},
	{regexp.MustCompile(`(?i)\bnum\b\.?\s*`), ""},
	{regexp.MustCompile(`\bn\.?\s*(\d)`), "$1"},
}

var noNumberMarkers = []replacement{
	{regexp.MustCompile(`(?i)\bs/?n\b`), "s/n"},
	{regexp.MustCompile(`\bS,N\b`), "s/n"},
	{regexp.MustCompile(`\bSN\b`), "s/n"},
}

var floorDoorSuffixes = []replacement{
	{regexp.MustCompile(`\s+\d+[ºª](?:\s*[A-Za-z]\b)?`), ""},
	{regexp.MustCompile(`\s+[Bb][Aa][Jj][Oo]\.?\s*\d*`), ""},
	{regexp.MustCompile(`\s+[Bb][Jj]\b\.?`), ""},
	{regexp.MustCompile(`\s+\d+\s*[º°]\s*\d*\s*$`), ""},
}

// Cleaner turns raw delivery-sheet address text into a geocoder-friendly query.
// It is a pure function of its input and the configured Town.
type Cleaner struct {
	town         Town
	reCitySuffix *regexp.Regexp
}

func NewCleaner(town Town) *Cleaner {
	if town.StreetType == "" {
		town.StreetType = "Calle"
	}
	return &Cleaner{
		town:         town,
		reCitySuffix: regexp.MustCompile(`(?i),\s*` + regexp.QuoteMeta(town.City) + `.*$`),
	}
}

// Clean runs the full cleaning pipeline.
func (c *Cleaner) Clean(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}

	s = applyLiteral(s, encodingFixes)
	s = reControl.ReplaceAllString(s, "")
	s = reStrayQMark.ReplaceAllString(s, " ")
	s = applyLiteral(s, accentFixes)

	s = reParenClosed.ReplaceAllString(s, "")
	s = reParenOpen.ReplaceAllString(s, "")

	s = apply(s, noiseMarkers)
	s = applyLiteral(s, typoFixes)

	s = apply(s, streetTypes)
	s = collapseDuplicates(s, reDupStreetType)

	s = apply(s, numberMarkers)
	s = apply(s, noNumberMarkers)
	s = collapseDuplicates(s, reDupNumber)

	s = reLetterDigit.ReplaceAllString(s, "$1 $2")
	s = apply(s, floorDoorSuffixes)

	s = strings.TrimRight(s, ".,;: -")
	s = reDoubleComma.ReplaceAllString(s, ",")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	s = reSupplyPrefix.ReplaceAllString(s, "")
	s = reLeadingPunct.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	return c.appendLocality(s)
}

// Street extracts the street name without number or locality from a cleaned
// address.
func (c *Cleaner) Street(cleaned string) string {
	s := c.reCitySuffix.ReplaceAllString(cleaned, "")
	s = reTrailingNumber.ReplaceAllString(s, "")
	s = reTrailingNoNum.ReplaceAllString(s, "")
	return strings.TrimRight(strings.TrimSpace(s), ", ")
}

// StreetWithNumber is Street plus the trailing house number, when present.
func (c *Cleaner) StreetWithNumber(cleaned string) string {
	street := c.Street(cleaned)
	m := reTrailingNumber.FindStringSubmatch(c.reCitySuffix.ReplaceAllString(cleaned, ""))
	if len(m) > 1 && street != "" {
		return street + " " + m[1]
	}
	return street
}

// Locality appends the configured city, region and country to s.
func (c *Cleaner) Locality(s string) string {
	parts := []string{s}
	for _, p := range []string{c.town.City, c.town.Region, c.town.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func (c *Cleaner) appendLocality(s string) string {
	for _, p := range []string{c.town.City, c.town.Region, c.town.Country} {
		if p == "" || normalizer.ContainsFold(s, p) {
			continue
		}
		if s == "" {
			s = p
			continue
		}
		s += ", " + p
	}
	return s
}

func apply(s string, table []replacement) string {
	for _, r := range table {
		s = r.re.ReplaceAllString(s, r.with)
	}
	return s
}

func applyLiteral(s string, table []literalFix) string {
	for _, f := range table {
		s = strings.ReplaceAll(s, f.old, f.new)
	}
	return s
}

// collapseDuplicates replaces "X X" matches of re (two capture groups) with
// the first group when both groups are equal ignoring case. After an unequal
// pair the scan resumes at the second group, so overlapping pairs such as
// "3 4 4" are still seen.
func collapseDuplicates(s string, re *regexp.Regexp) string {
	var b strings.Builder
	for {
		m := re.FindStringSubmatchIndex(s)
		if m == nil || m[2] < 0 || m[4] < 0 {
			b.WriteString(s)
			return b.String()
		}

		first, second := s[m[2]:m[3]], s[m[4]:m[5]]
		if strings.EqualFold(first, second) {
			b.WriteString(s[:m[0]])
			s = first + s[m[1]:]
			continue
		}

		b.WriteString(s[:m[4]])
		s = s[m[4]:]
	}
}
