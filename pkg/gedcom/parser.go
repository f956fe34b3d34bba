// Package gedcom parses GEDCOM genealogy interchange files into typed
// individual and family records keyed by their cross-reference IDs. The
// parser knows nothing about the target data store.
package gedcom

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/jwoglom/djtree/pkg/tracing"
)

// listTags accumulate repeated values in file order.
var listTags = map[string]bool{
	"CHIL": true,
	"HUSB": true,
	"WIFE": true,
}

// subTags open a sub-mapping filled by the level 2/3 lines that follow.
var subTags = map[string]bool{
	"BIRT": true,
	"DEAT": true,
	"MARR": true,
	"DIV":  true,
	"EMIG": true,
	"IMMI": true,
	"NATU": true,
}

// Result holds the records of one parsed input in file order. Import order
// matters downstream: individuals are matched against the ones before them.
type Result struct {
	Individuals []*Record
	Families    []*Record
}

// Individual returns the individual with the given xref, or nil.
func (r *Result) Individual(xref string) *Record {
	return findRecord(r.Individuals, xref)
}

// Family returns the family with the given xref, or nil.
func (r *Result) Family(xref string) *Record {
	return findRecord(r.Families, xref)
}

func findRecord(records []*Record, xref string) *Record {
	for _, rec := range records {
		if rec.Xref == xref {
			return rec
		}
	}
	return nil
}

// Parser reads GEDCOM lines into Records. A malformed line is logged and
// skipped, never fatal; only an unreadable input aborts the parse.
//
// Level 2/3 lines attach to the most recently opened event tag of the
// current record. A file that interleaves events out of nesting order will
// have details attributed to the later event; exporters nest correctly in
// practice, so this is a documented limitation rather than an error.
type Parser struct {
	logger ectologger.Logger
}

func NewParser(logger ectologger.Logger) *Parser {
	return &Parser{logger: logger}
}

type parseState struct {
	result    *Result
	indiIndex map[string]int
	famIndex  map[string]int

	// current is the open level-0 record, nil between tracked records.
	// openSub names current's most recently opened event sub-mapping.
	current *Record
	openSub string
}

// ParseFile opens and parses a GEDCOM file. An open failure is returned to
// the caller; it is the only fatal error class.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "gedcom.Parser.ParseFile")
	defer span.End()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening GEDCOM file: %w", err)
	}
	defer f.Close()

	return p.Parse(ctx, f)
}

// Parse consumes the reader line by line and returns the individual and
// family records found, in file order.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "gedcom.Parser.Parse")
	defer span.End()

	st := &parseState{
		result:    &Result{},
		indiIndex: make(map[string]int),
		famIndex:  make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		// Invalid byte sequences are dropped rather than failing the run
		line := strings.TrimSpace(strings.ToValidUTF8(scanner.Text(), ""))
		if line == "" {
			continue
		}

		if err := p.parseLine(st, line); err != nil {
			p.logger.WithContext(ctx).Warnf("Error parsing line %d: %v", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading GEDCOM input: %w", err)
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"individuals": len(st.result.Individuals),
		"families":    len(st.result.Families),
	}).Debug("Parsed GEDCOM input")

	return st.result, nil
}

// parseLine handles a single "LEVEL [XREF] TAG [VALUE]" line.
func (p *Parser) parseLine(st *parseState, line string) error {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		// Too short to carry a tag, nothing to record
		return nil
	}

	level, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("invalid level %q", parts[0])
	}

	var xref, tag, value string
	if strings.HasPrefix(parts[1], "@") && strings.HasSuffix(parts[1], "@") {
		xref = parts[1]
		if len(parts) > 2 {
			rest := strings.SplitN(parts[2], " ", 2)
			tag = rest[0]
			if len(rest) > 1 {
				value = rest[1]
			}
		}
	} else {
		tag = parts[1]
		if len(parts) > 2 {
			value = parts[2]
		}
	}

	switch {
	case level == 0:
		switch tag {
		case "INDI":
			st.current = newRecord(xref, KindIndividual)
			// A re-declared xref replaces the earlier record in place
			if idx, seen := st.indiIndex[xref]; seen {
				st.result.Individuals[idx] = st.current
			} else {
				st.indiIndex[xref] = len(st.result.Individuals)
				st.result.Individuals = append(st.result.Individuals, st.current)
			}
		case "FAM":
			st.current = newRecord(xref, KindFamily)
			if idx, seen := st.famIndex[xref]; seen {
				st.result.Families[idx] = st.current
			} else {
				st.famIndex[xref] = len(st.result.Families)
				st.result.Families = append(st.result.Families, st.current)
			}
		default:
			// HEAD, TRLR, SOUR and the like close record tracking
			st.current = nil
		}
		st.openSub = ""

	case st.current == nil:
		// Between tracked records, line is dropped

	case level == 1:
		switch {
		case listTags[tag]:
			st.current.Lists[tag] = append(st.current.Lists[tag], value)
		case subTags[tag]:
			// Reopening an event tag discards what was gathered before
			st.current.Subs[tag] = make(map[string]string)
			st.openSub = tag
		default:
			st.current.Fields[tag] = value
		}

	case level == 2 || level == 3:
		if st.openSub == "" {
			return nil
		}
		sub := st.current.Subs[st.openSub]
		if _, exists := sub[tag]; !exists {
			sub[tag] = value
		}
	}

	// Levels 4 and deeper carry detail this importer does not use
	return nil
}
