package diagnostic

import (
	"regexp"
	"strconv"
	"strings"
)

// The checker prints three kinds of lines, tried in this order:
//
//	unit:LINE:COL:CODE:NEAR:MESSAGE          coded finding
//	unit:LINE:[COL:] MESSAGE                 syntax error, optionally followed
//	                                         by the source line and a caret
//	unit: MESSAGE                            checker failure
const (
	findingShape = `(?P<unit>[^\r\n]+?):(?P<line>\d+):(?P<col>\d+):` +
		`(?P<code>[EIW]\d{3}):(?P<near>[^:\r\n]*):(?P<message>[^\r\n]*)`
	syntaxShape = `(?P<sunit>[^\r\n]+?):(?P<sline>\d+):(?:(?P<scol>\d+):)? ` +
		`(?P<smessage>[^\r\n]*)`
	syntaxContext    = `(?:\r?\n[^\r\n]*\r?\n[ \t]*\^[ \t]*)?`
	unexpectedShape  = `(?P<uunit>[^\r\n]+?): (?P<umessage>[^\r\n]*)`
	lineEnd          = `\r?$`
	multilineFlagSet = `(?m)`
)

var (
	blockGrammar = newGrammar(multilineFlagSet + `^(?:` + findingShape + `|` +
		syntaxShape + syntaxContext + `|` + unexpectedShape + `)` + lineEnd)
	lineGrammar = newGrammar(`^(?:` + findingShape + `|` + syntaxShape + `|` +
		unexpectedShape + `)` + lineEnd)
)

// grammar is a compiled pattern plus the indexes of its named groups.
type grammar struct {
	re *regexp.Regexp

	line, col, code, near, message int
	sline, scol, smessage           int
	umessage                        int
}

func newGrammar(pattern string) *grammar {
	re := regexp.MustCompile(pattern)
	return &grammar{
		re:       re,
		line:     re.SubexpIndex("line"),
		col:      re.SubexpIndex("col"),
		code:     re.SubexpIndex("code"),
		near:     re.SubexpIndex("near"),
		message:  re.SubexpIndex("message"),
		sline:    re.SubexpIndex("sline"),
		scol:     re.SubexpIndex("scol"),
		smessage: re.SubexpIndex("smessage"),
		umessage: re.SubexpIndex("umessage"),
	}
}

// Parser extracts records from checker output. A Parser holds no mutable
// state and may be shared between goroutines.
type Parser struct {
	policy  Policy
	grammar *grammar
}

// NewParser creates a parser for the given policy.
func NewParser(policy Policy) *Parser {
	g := lineGrammar
	if policy.Multiline {
		g = blockGrammar
	}
	return &Parser{policy: policy, grammar: g}
}

// Parse extracts records from raw using the default dialect.
func Parse(raw string, lineBase, columnBase int) []Record {
	return NewParser(DefaultPolicy()).Parse(raw, lineBase, columnBase)
}

// Policy returns the parser's policy.
func (p *Parser) Policy() Policy {
	return p.policy
}

// Parse extracts records from raw in the order they appear. lineBase and
// columnBase are the numbering bases of the checker's output and are
// subtracted during normalization. Text matching none of the shapes is
// skipped.
func (p *Parser) Parse(raw string, lineBase, columnBase int) []Record {
	var records []Record
	for _, loc := range p.matches(raw) {
		if r, ok := p.record(raw, loc, lineBase, columnBase); ok {
			records = append(records, r)
		}
	}
	return records
}

// Coverage counts the non-blank lines of raw consumed by recognized matches
// against the total number of non-blank lines.
func (p *Parser) Coverage(raw string) (matched, total int) {
	total = countLines(raw)
	for _, loc := range p.matches(raw) {
		matched += countLines(raw[loc[0]:loc[1]])
	}
	return matched, total
}

// matches returns submatch index slices relative to raw.
func (p *Parser) matches(raw string) [][]int {
	if p.policy.Multiline {
		return p.grammar.re.FindAllStringSubmatchIndex(raw, -1)
	}

	var locs [][]int
	for start := 0; start < len(raw); {
		end := strings.IndexByte(raw[start:], '\n')
		if end < 0 {
			end = len(raw)
		} else {
			end += start
		}
		if loc := p.grammar.re.FindStringSubmatchIndex(raw[start:end]); loc != nil {
			for i := range loc {
				if loc[i] >= 0 {
					loc[i] += start
				}
			}
			locs = append(locs, loc)
		}
		start = end + 1
	}
	return locs
}

func (p *Parser) record(raw string, loc []int, lineBase, columnBase int) (Record, bool) {
	g := p.grammar

	if lineStr, ok := group(raw, loc, g.line); ok {
		line, err := strconv.Atoi(lineStr)
		if err != nil {
			return Record{}, false
		}
		col, err := strconv.Atoi(mustGroup(raw, loc, g.col))
		if err != nil {
			return Record{}, false
		}
		code := mustGroup(raw, loc, g.code)
		r := Record{
			Line:     normalize(line, lineBase),
			Column:   intPtr(normalize(col, columnBase)),
			Severity: severityForCode(code),
			Code:     code,
			Near:     mustGroup(raw, loc, g.near),
			Message:  strings.TrimSpace(mustGroup(raw, loc, g.message)),
			Kind:     KindFinding,
		}
		if p.policy.Overrides[code].ClearNear {
			r.Near = ""
		}
		if r.Near != "" {
			r.Column = nil
		}
		return r, true
	}

	if lineStr, ok := group(raw, loc, g.sline); ok {
		line, err := strconv.Atoi(lineStr)
		if err != nil {
			return Record{}, false
		}
		r := Record{
			Line:     normalize(line, lineBase),
			Severity: Error,
			Message:  strings.TrimSpace(mustGroup(raw, loc, g.smessage)),
			Kind:     KindSyntaxError,
		}
		if colStr, ok := group(raw, loc, g.scol); ok {
			col, err := strconv.Atoi(colStr)
			if err != nil {
				return Record{}, false
			}
			r.Column = intPtr(normalize(col, columnBase))
		} else if p.policy.SyntaxColumn == ColumnZero {
			r.Column = intPtr(0)
		}
		return r, true
	}

	if msg, ok := group(raw, loc, g.umessage); ok {
		return Record{
			Line:     0,
			Severity: Error,
			Message:  strings.TrimSpace(msg),
			Kind:     KindUnexpected,
		}, true
	}

	return Record{}, false
}

// normalize converts a checker position to 0-based, never going negative.
func normalize(v, base int) int {
	if v -= base; v < 0 {
		return 0
	}
	return v
}

func group(raw string, loc []int, idx int) (string, bool) {
	if idx < 0 || 2*idx+1 >= len(loc) || loc[2*idx] < 0 {
		return "", false
	}
	return raw[loc[2*idx]:loc[2*idx+1]], true
}

func mustGroup(raw string, loc []int, idx int) string {
	s, _ := group(raw, loc, idx)
	return s
}

func countLines(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
