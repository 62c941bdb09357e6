// =============================================================================
// Forest Inventory Processor - Input Schema Resolution
// =============================================================================
//
// This module maps the loosely named columns of a field spreadsheet onto the
// canonical inventory fields. Field crews name columns inconsistently
// ("Nivel" vs "Nível", "CAP" vs "Circunferência", "Nº de Ind." vs "Qtde"),
// so every canonical field carries a list of accepted aliases and headers are
// matched case-, whitespace- and diacritic-insensitively.
//
// Resolution happens exactly once, at input-validation time, and produces a
// strict ColumnMap. A mandatory measurement that cannot be located is a
// MissingColumnError: fatal, reported before any row is processed.
//
// REQUIRED FIELDS:
//   - diameter OR circumference
//   - total height OR commercial height
// Everything else (level, plot, species, individual count) is optional.
//
// =============================================================================

package schema

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// CANONICAL FIELDS
// =============================================================================

// Field identifies one canonical inventory column.
type Field string

const (
	FieldLevel            Field = "level"
	FieldCircumference    Field = "circumference"
	FieldDiameter         Field = "diameter"
	FieldCommercialHeight Field = "commercial_height"
	FieldTotalHeight      Field = "total_height"
	FieldPlot             Field = "plot"
	FieldSpecies          Field = "species"
	FieldCount            Field = "count"
)

// DefaultAliases returns the accepted header spellings per canonical field.
// Matching is normalized, so an alias covers every casing/accent variant.
func DefaultAliases() map[Field][]string {
	return map[Field][]string{
		FieldLevel:            {"nivel", "nível", "estrato", "level"},
		FieldCircumference:    {"cap", "cap (cm)", "circunferencia", "circumference"},
		FieldDiameter:         {"dap", "dap (cm)", "diametro", "diameter"},
		FieldCommercialHeight: {"hc", "hc (m)", "altura comercial", "commercial height"},
		FieldTotalHeight:      {"ht", "ht (m)", "altura total", "total height"},
		FieldPlot:             {"pf", "parcela", "plot"},
		FieldSpecies:          {"especie", "espécie", "species"},
		FieldCount:            {"nº de ind.", "n de ind", "num_ind", "qtde", "quantidade", "count"},
	}
}

// =============================================================================
// COLUMN MAP
// =============================================================================

// ColumnMap is the result of resolution: canonical field -> the actual
// header spelling found in the input file.
type ColumnMap map[Field]string

// Has reports whether the field was located in the input.
func (m ColumnMap) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// =============================================================================
// MISSING COLUMN ERROR
// =============================================================================

// MissingColumnError is the fatal error raised when a mandatory measurement
// column cannot be located in the input headers.
type MissingColumnError struct {
	// Requirement is a human-readable name of what was expected.
	Requirement string

	// Accepted lists the header spellings that would have satisfied it.
	Accepted []string
}

// Error implements the error interface.
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column not found: %s (accepted headers: %s)",
		e.Requirement, strings.Join(e.Accepted, ", "))
}

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver matches input headers against the alias table.
type Resolver struct {
	aliases map[Field][]string
}

// NewResolver builds a resolver from the default alias table, merged with
// any extra aliases from the configuration (keyed by canonical field name).
func NewResolver(extra map[string][]string) *Resolver {
	aliases := DefaultAliases()
	for field, names := range extra {
		f := Field(field)
		aliases[f] = append(aliases[f], names...)
	}
	return &Resolver{aliases: aliases}
}

// Resolve maps the input headers onto canonical fields and enforces the
// mandatory measurement requirements. The first header matching any alias of
// a field wins; later duplicates are ignored.
func (r *Resolver) Resolve(headers []string) (ColumnMap, error) {
	normalized := make(map[Field]map[string]bool, len(r.aliases))
	for field, names := range r.aliases {
		set := make(map[string]bool, len(names))
		for _, name := range names {
			set[normalizeHeader(name)] = true
		}
		normalized[field] = set
	}

	columns := make(ColumnMap)
	for _, header := range headers {
		key := normalizeHeader(header)
		if key == "" {
			continue
		}
		for field, set := range normalized {
			if set[key] && !columns.Has(field) {
				columns[field] = header
			}
		}
	}

	if !columns.Has(FieldDiameter) && !columns.Has(FieldCircumference) {
		return nil, &MissingColumnError{
			Requirement: "diameter or circumference",
			Accepted:    acceptedFor(r.aliases, FieldDiameter, FieldCircumference),
		}
	}
	if !columns.Has(FieldTotalHeight) && !columns.Has(FieldCommercialHeight) {
		return nil, &MissingColumnError{
			Requirement: "total or commercial height",
			Accepted:    acceptedFor(r.aliases, FieldTotalHeight, FieldCommercialHeight),
		}
	}

	return columns, nil
}

// acceptedFor flattens the alias lists of the given fields for error output.
func acceptedFor(aliases map[Field][]string, fields ...Field) []string {
	var names []string
	for _, f := range fields {
		names = append(names, aliases[f]...)
	}
	return names
}

// =============================================================================
// HEADER NORMALIZATION
// =============================================================================

// foldDiacritics strips combining marks: NFD decomposition, removal of the
// nonspacing-mark class, NFC recomposition.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeHeader canonicalizes a header for matching: diacritics folded,
// lower-cased, and everything except letters and digits dropped.
func normalizeHeader(header string) string {
	folded, _, err := transform.String(foldDiacritics, header)
	if err != nil {
		folded = header
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
