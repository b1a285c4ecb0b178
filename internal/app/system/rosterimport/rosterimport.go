// internal/app/system/rosterimport/rosterimport.go
//
// Package rosterimport parses the enrollment files the registrar hands
// out: a fixed-text listing per section, or a plain CSV. Parsing never
// touches the database; the roster feature pre-scans the file, shows a
// preview, and only writes rows on confirm.
package rosterimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/temahub/internal/app/system/normalize"
	"golang.org/x/text/encoding/charmap"
)

// Upload size and row limits for roster processing.
const (
	MaxUploadSize = 5 << 20 // 5 MB
	MaxRows       = 5000
)

// Row is one normalized roster entry.
type Row struct {
	RA       string
	FullName string
	Email    string
	Section  string
}

// Result carries parsed rows plus per-line problems. Problems do not
// abort the parse; the preview page shows them next to the good rows.
type Result struct {
	Rows     []Row
	Section  string // section detected from the file header, if any
	Problems []string
}

func (r *Result) HasProblems() bool { return len(r.Problems) > 0 }

// raLine matches the registrar's text listing: a registration number
// followed by the student's name, e.g. "RA00312345  Maria da Silva".
var raLine = regexp.MustCompile(`\b(RA\d{8})\b[\s\t]+(.+)$`)

// sectionHeader matches course header lines such as "ECO-MA6" or
// "Turma: NA6".
var sectionHeader = regexp.MustCompile(`\b(?:ECO-|Turma:?\s*)([A-Z]{2}\d)\b`)

// raOnly matches a bare registration number, for CSV header detection.
var raOnly = regexp.MustCompile(`^RA\d{8}$`)

// ParseText scans the registrar's fixed-text listing. fallbackSection is
// used for rows when the file carries no section header.
//
// Registrar exports are frequently Windows-1252 or Latin-1 rather than
// UTF-8; bytes that do not decode as UTF-8 are re-decoded through cp1252
// so accented names survive.
func ParseText(r io.Reader, fallbackSection string) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize))
	if err != nil {
		return nil, err
	}
	data = decodeLegacy(data)

	res := &Result{Section: normalize.Section(fallbackSection)}
	seen := make(map[string]int)

	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line == "" {
			continue
		}

		if m := sectionHeader.FindStringSubmatch(line); m != nil {
			res.Section = normalize.Section(m[1])
			continue
		}

		m := raLine.FindStringSubmatch(line)
		if m == nil {
			continue // column headers, page footers, separators
		}
		if len(res.Rows) >= MaxRows {
			res.Problems = append(res.Problems, fmt.Sprintf("line %d: row limit of %d reached, rest ignored", lineNo, MaxRows))
			break
		}

		ra := normalize.RA(m[1])
		name := normalize.Name(m[2])
		if name == "" {
			res.Problems = append(res.Problems, fmt.Sprintf("line %d: %s has no name", lineNo, ra))
			continue
		}
		if prev, dup := seen[ra]; dup {
			res.Problems = append(res.Problems, fmt.Sprintf("line %d: %s already appeared on line %d", lineNo, ra, prev))
			continue
		}
		seen[ra] = lineNo

		res.Rows = append(res.Rows, Row{
			RA:       ra,
			FullName: name,
			Section:  res.Section,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	// Header found mid-file applies to earlier rows too; the registrar
	// puts it on the first page but page reordering happens.
	for i := range res.Rows {
		if res.Rows[i].Section == "" {
			res.Rows[i].Section = res.Section
		}
	}
	return res, nil
}

// ParseCSV scans a comma-separated roster: RA, Full Name, then optional
// Email and Section columns. A header row is skipped when detected.
func ParseCSV(r io.Reader, fallbackSection string) (*Result, error) {
	res := &Result{Section: normalize.Section(fallbackSection)}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize))
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(decodeLegacy(data), []byte("\ufeff"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	seen := make(map[string]int)
	lineNo := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			lineNo++
			res.Problems = append(res.Problems, fmt.Sprintf("line %d: %v", lineNo, err))
			continue
		}
		lineNo++
		if len(rec) == 0 {
			continue
		}

		ra := normalize.RA(field(rec, 0))
		if !raOnly.MatchString(ra) {
			if lineNo == 1 {
				continue // header row
			}
			res.Problems = append(res.Problems, fmt.Sprintf("line %d: %q is not a valid RA", lineNo, field(rec, 0)))
			continue
		}
		if len(res.Rows) >= MaxRows {
			res.Problems = append(res.Problems, fmt.Sprintf("line %d: row limit of %d reached, rest ignored", lineNo, MaxRows))
			break
		}

		name := normalize.Name(field(rec, 1))
		if name == "" {
			res.Problems = append(res.Problems, fmt.Sprintf("line %d: %s has no name", lineNo, ra))
			continue
		}
		if prev, dup := seen[ra]; dup {
			res.Problems = append(res.Problems, fmt.Sprintf("line %d: %s already appeared on line %d", lineNo, ra, prev))
			continue
		}
		seen[ra] = lineNo

		section := normalize.Section(field(rec, 3))
		if section == "" {
			section = res.Section
		}
		res.Rows = append(res.Rows, Row{
			RA:       ra,
			FullName: name,
			Email:    normalize.Email(field(rec, 2)),
			Section:  section,
		})
	}
	return res, nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

// decodeLegacy returns data as valid UTF-8, re-decoding through
// Windows-1252 when it is not. cp1252 is a superset of Latin-1 for
// every byte the registrar actually emits, so one fallback covers both.
func decodeLegacy(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return out
}
