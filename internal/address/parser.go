// Package address extracts block, road, building and flat numbers from
// human-entered address text.
//
// The courier network addresses deliveries by a block > road > building
// hierarchy. Customers type these in free form ("Blk 321, Rd 15",
// "Building: 2733, Road: 3953"), so extraction runs an ordered list of
// labelled patterns per component and stops at the first match. Parsing
// fails closed: when no block number can be found the parse returns nil
// rather than guessing.
package address

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/dukerupert/tawseel/internal/domain"
)

// Fields is the raw address input to the parser.
type Fields struct {
	Line1      string
	Line2      string
	City       string
	PostalCode string
}

// Patterns are tried in order; the first match wins. Labels may be
// abbreviated and optionally followed by "no"/"number" and a colon.
var (
	blockPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bblock\s*(?:no\.?|number)?\s*:?\s*(\d+)\b`),
		regexp.MustCompile(`\bblk\.?\s*:?\s*(\d+)\b`),
	}

	roadPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\broad\s*(?:no\.?|number)?\s*:?\s*(\d+)\b`),
		regexp.MustCompile(`\brd\.?\s*:?\s*(\d+)\b`),
	}

	buildingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bbuilding\s*(?:no\.?|number)?\s*:?\s*(\d+)\b`),
		regexp.MustCompile(`\bbldg\.?\s*:?\s*(\d+)\b`),
	}

	flatPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bflat\s*(?:no\.?|number)?\s*:?\s*([a-z0-9]+)\b`),
		regexp.MustCompile(`\bapt\.?\s*:?\s*([a-z0-9]+)\b`),
		regexp.MustCompile(`\bunit\s*:?\s*([a-z0-9]+)\b`),
		regexp.MustCompile(`#\s*([a-z0-9]+)\b`),
	}

	numericOnly = regexp.MustCompile(`^\d+$`)

	// labelToken matches tokens that are address labels or bare numbers,
	// used to filter the secondary address line down to an area name.
	labelToken = regexp.MustCompile(`^(?:block|blk|road|rd|building|bldg|flat|apt|unit|no\.?|number|\d+)[.:,]*$`)
)

// Parser extracts AddressNumbers from free-form address fields.
// It is stateless and safe for concurrent use.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new address parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse extracts block, road, building and flat numbers from the address.
// Returns nil when no block number can be determined - block is mandatory
// and never synthesized.
//
// Block recovery order when the address lines carry no block label:
//  1. the city field, searched with the same block patterns
//  2. a purely numeric postal code in (0, 10000), used as the block
//     number directly - in the courier's region the postal code IS the
//     block number, so this is a documented convention, not a guess
func (p *Parser) Parse(f Fields) *domain.AddressNumbers {
	buffer := strings.ToLower(strings.TrimSpace(f.Line1 + " " + f.Line2))

	numbers := domain.AddressNumbers{
		Block:    matchNumber(blockPatterns, buffer),
		Road:     matchNumber(roadPatterns, buffer),
		Building: matchNumber(buildingPatterns, buffer),
		Flat:     matchToken(flatPatterns, buffer),
	}

	if numbers.Block == 0 {
		numbers.Block = matchNumber(blockPatterns, strings.ToLower(f.City))
		if numbers.Block > 0 {
			p.logger.Debug("block number recovered from city field",
				"city", f.City,
				"block", numbers.Block,
			)
		}
	}

	if numbers.Block == 0 {
		if block := blockFromPostalCode(f.PostalCode); block > 0 {
			numbers.Block = block
			p.logger.Info("using postal code as block number",
				"postal_code", f.PostalCode,
				"block", block,
			)
		}
	}

	if numbers.Block == 0 {
		p.logger.Warn("no block number found in address",
			"line1", f.Line1,
			"city", f.City,
			"postal_code", f.PostalCode,
		)
		return nil
	}

	return &numbers
}

// AreaHint derives an area-name hint for master-data matching. It takes
// the secondary address line stripped of block/road/number label tokens,
// falling back to the city field when nothing usable remains.
func AreaHint(line2, city string) string {
	var kept []string
	for _, token := range strings.Fields(strings.ToLower(line2)) {
		if labelToken.MatchString(token) {
			continue
		}
		kept = append(kept, strings.Trim(token, ".,:"))
	}
	if hint := strings.Join(kept, " "); hint != "" {
		return hint
	}
	return strings.ToLower(strings.TrimSpace(city))
}

// matchNumber runs patterns in priority order and returns the first
// captured number, or 0 when nothing matches.
func matchNumber(patterns []*regexp.Regexp, text string) int {
	if text == "" {
		return 0
	}
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		return n
	}
	return 0
}

// matchToken runs patterns in priority order and returns the first
// captured alphanumeric token, or the not-available sentinel.
func matchToken(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return domain.FlatNotAvailable
}

// blockFromPostalCode returns the postal code as a block number when it
// is purely numeric and within the region's block range (0, 10000).
func blockFromPostalCode(postal string) int {
	postal = strings.TrimSpace(postal)
	if postal == "" || !numericOnly.MatchString(postal) {
		return 0
	}
	n, err := strconv.Atoi(postal)
	if err != nil || n <= 0 || n >= 10000 {
		return 0
	}
	return n
}
