package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/evoluciona-hipotecaria/apiserver/internal/rut"
	"github.com/evoluciona-hipotecaria/apiserver/types"
	"github.com/shopspring/decimal"
)

// Transformer maps filtered CSV rows onto typed staging records. Every parse
// helper degrades to null on bad input; a row only ever fails as a whole when
// its seller RUT cannot be resolved, and then it is skipped, not fatal.
type Transformer struct {
	sellerColumn string
}

func NewTransformer(sellerColumn string) *Transformer {
	return &Transformer{sellerColumn: sellerColumn}
}

// TransformResult carries the typed records plus the rows that had to be
// skipped because their seller could not be resolved to an account.
type TransformResult struct {
	Records []types.Operation
	Skipped int
	Errors  []RowError
}

// Transform converts each row into an Operation, resolving the owning user
// through the RUT map built by the synchronizer. Row-scoped problems are
// collected, never raised.
func (t *Transformer) Transform(rows []Row, userMap map[string]string) TransformResult {
	result := TransformResult{Records: make([]types.Operation, 0, len(rows))}

	for i, row := range rows {
		sellerRut := rut.Normalize(strings.TrimSpace(row[t.sellerColumn]))
		userID, ok := userMap[sellerRut]
		if !ok {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{
				Row:     i + 1,
				Message: fmt.Sprintf("vendedor con RUT %q no encontrado", sellerRut),
			})
			continue
		}

		result.Records = append(result.Records, t.transformRow(row, userID, sellerRut))
	}

	return result
}

func (t *Transformer) transformRow(row Row, userID, sellerRut string) types.Operation {
	get := func(column string) string {
		return strings.TrimSpace(row[column])
	}

	return types.Operation{
		UserID: userID,

		FechaCreacion:           parseDate(get("Fecha creacion")),
		DiasTasa:                parseInt(get("Dias tasa")),
		Tipo:                    textOrNil(get("Tipo")),
		Solicitud:               parseInt(get("Solicitud")),
		EstadoSolicitud:         textOrNil(get("Estado Solicitud")),
		FechaResolucion:         parseDate(get("Fecha resolucion")),
		FechaAprobacionManual90: parseDate(get("Fecha aprobacion manual (90)")),
		FechaEscritura:          parseDate(get("Fecha de escritura")),
		EstadoMutuo:             textOrNil(get("Estado Mutuo")),
		Mutuo:                   textOrNil(get("Mutuo")),

		Rut:             textOrNil(rut.Normalize(get("Rut"))),
		Nombre:          textOrNil(get("Nombre")),
		ApellidoPaterno: textOrNil(get("Apellido Paterno")),
		ApellidoMaterno: textOrNil(get("Apellido Materno")),

		Ejecutivo:            textOrNil(get("Ejecutivo")),
		EjecutivoOperaciones: textOrNil(get("Ejecutivo Operaciones")),
		TipoOperacion:        textOrNil(get("Tipo Operacion")),

		ValorVenta:          parseMoney(get("Valor Venta")),
		ValorAsegurable:     parseMoney(get("Valor Asegurable")),
		MontoPie:            parseMoney(get("Monto Pie")),
		MontoSubsidio:       parseMoney(get("Monto Subsidio")),
		CreditoTotal:        parseMoney(get("Credito Total")),
		MontoHipoteca:       parseMoney(get("Monto Hipoteca")),
		FinesGenerales:      parseMoney(get("Fines Generales")),
		GastosOperacionales: parseMoney(get("Gastos Operacionales")),
		NoFinanciado:        parseMoney(get("No Financiado")),
		ValorTasacion:       parseMoney(get("Valor Tasacion")),

		Plazo:         parseInt(get("Plazo")),
		PeriodoGracia: parseInt(get("Periodo Gracia")),
		TasaEmision:   parseMoney(get("Tasa emision")),

		BancoAlzante:  textOrNil(get("Banco Alzante")),
		Repertorio:    textOrNil(get("Repertorio")),
		Notaria:       textOrNil(get("Notaria")),
		AgenciaBroker: textOrNil(get("Agencia/Broker")),
		Abogado:       textOrNil(get("Abogado")),

		ProntoPago:     parseBool(get("Pronto Pago")),
		Rol:            textOrNil(get("Rol")),
		Caratula:       textOrNil(get("Caratula")),
		CaratulaEndoso: textOrNil(get("Caratula Endoso")),
		FechaF24:       parseDate(get("Fecha F.24")),
		Inversionista:  textOrNil(get("Inversionista")),
		TasaEndoso:     parseMoney(get("Tasa Endoso")),
		ComunaBienRaiz: textOrNil(get("Comuna Bien Raiz")),
		EstadoActual:   textOrNil(get("Estado actual")),

		OeVisadoInicio:                    parseDate(get("OE Visado Inicio")),
		OeVisadoTermino:                   parseDate(get("OE Visado Termino")),
		BorradorInicio:                    parseDate(get("Borrador Inicio")),
		BorradorTermino:                   parseDate(get("Borrador Termino")),
		PreFirmaInicio:                    parseDate(get("Pre firma Inicio")),
		PreFirmaTermino:                   parseDate(get("Pre firma Termino")),
		FirmaClienteInicio:                parseDate(get("Firma Cliente Inicio")),
		FirmaClienteTermino:               parseDate(get("Firma Cliente Termino")),
		FirmaCodeudoresInicio:             parseDate(get("Firma Codeudores Inicio")),
		FirmaCodeudoresTermino:            parseDate(get("Firma Codeudores Termino")),
		FirmaMandatarioInicio:             parseDate(get("Firma Mandatario Inicio")),
		FirmaMandatarioTermino:            parseDate(get("Firma Mandatario Termino")),
		FirmaVendedorInicio:               parseDate(get("Firma Vendedor Inicio")),
		FirmaVendedorTermino:              parseDate(get("Firma Vendedor Termino")),
		FirmaAlzanteInicio:                parseDate(get("Firma Alzante Inicio")),
		RechazoAlzanteInicio:              parseDate(get("Rechazo Alzante Inicio")),
		RechazoAlzanteTermino:             parseDate(get("Rechazo Alzante Termino")),
		FirmaAlzanteTermino:               parseDate(get("Firma Alzante Termino")),
		FirmaHipotecariaEvolucionaInicio:  parseDate(get("Firma Hipotecaria Evoluciona Inicio")),
		FirmaHipotecariaEvolucionaTermino: parseDate(get("Firma Hipotecaria Evoluciona Termino")),
		VbAbogadosInicio:                  parseDate(get("VB Abogados Inicio")),
		VbAbogadosTermino:                 parseDate(get("VB Abogados Termino")),
		CierreCopiasInicio:                parseDate(get("Cierre copias Inicio")),
		CierreCopiasTermino:               parseDate(get("Cierre copias Termino")),
		CbrInicio:                         parseDate(get("CBR Inicio")),
		RechazoCbrInicio:                  parseDate(get("Rechazo CBR Inicio")),
		RechazoCbrTermino:                 parseDate(get("Rechazo CBR Termino")),
		CbrTermino:                        parseDate(get("CBR Termino")),
		InformeFinalInicio:                parseDate(get("Informe Final Inicio")),
		InformeFinalTermino:               parseDate(get("Informe Final Termino")),

		FechaEndoso:              parseDate(get("Fecha de endoso")),
		SaldoPendienteDesembolso: parseMoney(get("Saldo pendiente desembolso")),
		FechaDesembolsoPago:      parseDate(get("Fecha de Desembolso PAGO")),
		FechaPrepagoTotal:        parseDate(get("Fecha Prepago Total")),
		EndosoCbrInicio:          parseDate(get("Endoso CBR Inicio")),
		EndosoCbrTermino:         parseDate(get("Endoso CBR Termino")),
		EntregaEscInicio:         parseDate(get("Entrega Esc. Inicio")),
		EntregaEscTermino:        parseDate(get("Entrega Esc. Termino")),

		RutVendedor:    sellerRut,
		NombreVendedor: textOrNil(get("Nombre Vendedor")),
	}
}

// spreadsheetEpoch anchors serial dates. The engine that produced the export
// counts days from 1900 with an off-by-two caused by its historical
// leap-year bug, hence the -2 correction in parseDate.
var spreadsheetEpoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

var dateSeparators = regexp.MustCompile(`[/-]`)

// parseDate attempts, in order: DD/MM/YYYY (also with '-' and 2-digit
// years), a spreadsheet serial number, and a few generic layouts. Anything
// unparseable yields nil, never an error.
func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}

	if parts := dateSeparators.Split(value, -1); len(parts) == 3 {
		day, errD := strconv.Atoi(strings.TrimSpace(parts[0]))
		month, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
		year, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
		if errD == nil && errM == nil && errY == nil && day >= 1 && day <= 31 && month >= 1 && month <= 12 {
			if year < 100 {
				// Two-digit years: 00-30 land in 2000-2030, the rest in 1900s.
				if year <= 30 {
					year += 2000
				} else {
					year += 1900
				}
			}
			t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			return &t
		}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		t := spreadsheetEpoch.Add(time.Duration((serial - 2) * 24 * float64(time.Hour)))
		return &t
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// parseMoney parses locale-formatted amounts: periods are thousands
// separators, the comma is the decimal mark. "1.234.567,89" -> 1234567.89.
func parseMoney(value string) decimal.NullDecimal {
	if value == "" {
		return decimal.NullDecimal{}
	}

	cleaned := strings.ReplaceAll(value, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func parseInt(value string) *int64 {
	if value == "" {
		return nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// parseBool reads the sí/no vocabulary, tri-state: unknown words stay null
// rather than collapsing to false.
func parseBool(value string) *bool {
	switch strings.ToLower(value) {
	case "si", "sí", "yes":
		v := true
		return &v
	case "no":
		v := false
		return &v
	default:
		return nil
	}
}

func textOrNil(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
