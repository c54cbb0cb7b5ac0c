package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/coregx/ahocorasick"
	"github.com/coregx/rpr/pattern"
)

// Row is one CSV record resolved to the trueVars set nfaexec.Executor.
// ProcessRow expects, plus the raw fields for a driver that wants to
// print them back out alongside an emission.
type Row struct {
	Index  int
	Fields []string
	Vars   map[int]bool
}

// CSVRowSource reads CSV records and resolves each one to a trueVars set.
// A row is resolved one of two ways, chosen once at construction time by
// which column the header names:
//
//   - a "vars" column: split on commas, each name resolved directly
//     against the pattern's variable alphabet.
//   - a "text" column: scanned with an ahocorasick.Automaton built over
//     the pattern's variable names (BuildVariableAutomaton), collecting
//     every variable name that occurs anywhere in the field.
//
// At least one of the two columns must be present; if both are, the
// "vars" column is used.
type CSVRowSource struct {
	r         *csv.Reader
	p         *pattern.Pattern
	automaton *ahocorasick.Automaton
	varsCol   int
	textCol   int
	nextIndex int
}

const noColumn = -1

// NewCSVRowSource reads the header line from r and prepares a row source
// for pattern p. Remaining lines are read lazily by Next.
func NewCSVRowSource(r io.Reader, p *pattern.Pattern) (*CSVRowSource, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: reading CSV header: %w", err)
	}

	varsCol, textCol := noColumn, noColumn
	for i, name := range header {
		switch name {
		case "vars":
			varsCol = i
		case "text":
			textCol = i
		}
	}
	if varsCol == noColumn && textCol == noColumn {
		return nil, fmt.Errorf("ingest: CSV header must include a %q or %q column", "vars", "text")
	}

	src := &CSVRowSource{r: cr, p: p, varsCol: varsCol, textCol: textCol}
	if textCol != noColumn {
		auto, err := BuildVariableAutomaton(p)
		if err != nil {
			return nil, fmt.Errorf("ingest: building variable automaton: %w", err)
		}
		src.automaton = auto
	}
	return src, nil
}

// Next reads and resolves the next CSV record. ok is false once the
// input is exhausted; err is non-nil only on a genuine read/format
// failure, never on ordinary EOF.
func (s *CSVRowSource) Next() (row Row, ok bool, err error) {
	fields, err := s.r.Read()
	if err == io.EOF {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, fmt.Errorf("ingest: reading CSV row %d: %w", s.nextIndex, err)
	}

	row = Row{Index: s.nextIndex, Fields: fields}
	s.nextIndex++

	var names []string
	switch {
	case s.varsCol != noColumn:
		names = splitVars(fields[s.varsCol])
	case s.textCol != noColumn:
		names = VarsFromText(s.automaton, []byte(fields[s.textCol]))
	}
	row.Vars = TrueVarSet(s.p, names)
	return row, true, nil
}

func splitVars(field string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(field); i++ {
		if i == len(field) || field[i] == ',' {
			if name := trimSpace(field[start:i]); name != "" {
				out = append(out, name)
			}
			start = i + 1
		}
	}
	return out
}

func trimSpace(s string) string {
	i, j := 0, len(s)
	for i < j && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	for j > i && (s[j-1] == ' ' || s[j-1] == '\t') {
		j--
	}
	return s[i:j]
}
