package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/evoluciona-hipotecaria/apiserver/config"
)

// CSV column names of the two schema versions.
const (
	columnSolicitud    = "Solicitud"
	columnEstadoMutuo  = "Estado Mutuo"
	columnRutVendedor  = "Rut Vendedor"
	columnRutEjecutivo = "RUT Ejecutivo"
)

// Row is one CSV record keyed by header name. Values are kept as raw strings;
// all typing happens in the transformer.
type Row map[string]string

// ParseResult carries the filter outcome. TotalRows counts every parsed row,
// including the ones the vigency predicate rejected; order of Rows matches
// the file.
type ParseResult struct {
	TotalRows int
	Rows      []Row
}

// Parser reads the semicolon-delimited export and applies the vigency filter.
type Parser struct {
	policy string
}

func NewParser(policy string) *Parser {
	return &Parser{policy: policy}
}

// SellerColumn returns the CSV column holding the seller RUT under the active
// policy. The two schema versions disagree on its name.
func (p *Parser) SellerColumn() string {
	if p.policy == config.FilterPolicyVigente {
		return columnRutEjecutivo
	}
	return columnRutVendedor
}

// ParseAndFilter parses the whole buffer and returns the vigent subsequence.
// A structurally malformed CSV fails the import; rows are never dropped
// without being counted in the total.
func (p *Parser) ParseAndFilter(data []byte) (ParseResult, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = ';'
	// The external system pads or truncates trailing columns between
	// exports; ragged rows are tolerated and missing cells read as empty.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return ParseResult{}, newValidationError("el archivo CSV está vacío")
		}
		return ParseResult{}, newValidationError(fmt.Sprintf("error al parsear CSV: %v", err))
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	if err := p.checkRequiredHeaders(header); err != nil {
		return ParseResult{}, err
	}

	result := ParseResult{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ParseResult{}, newValidationError(fmt.Sprintf("error al parsear CSV: %v", err))
		}

		result.TotalRows++

		row := make(Row, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		if p.isVigent(row) {
			result.Rows = append(result.Rows, row)
		}
	}

	return result, nil
}

// checkRequiredHeaders fails fast when the columns the active policy depends
// on are missing, instead of silently importing nulls.
func (p *Parser) checkRequiredHeaders(header []string) error {
	required := []string{columnSolicitud, columnRutVendedor}
	if p.policy == config.FilterPolicyVigente {
		required = []string{columnEstadoMutuo, columnRutEjecutivo}
	}

	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[name] = true
	}
	for _, name := range required {
		if !present[name] {
			return newValidationError(fmt.Sprintf("el CSV no contiene la columna requerida %q", name))
		}
	}
	return nil
}

func (p *Parser) isVigent(row Row) bool {
	if p.policy == config.FilterPolicyVigente {
		estado := strings.ToLower(strings.TrimSpace(row[columnEstadoMutuo]))
		return estado == "vigente" || estado == "vigentes"
	}
	return strings.TrimSpace(row[columnSolicitud]) != ""
}
