package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation represents one mortgage operation imported from the external
// system's CSV export. Staging and production rows share this exact shape;
// the staging table is a transient holding area that gets swapped into
// production atomically on each import.
//
// Almost every column is optional in the source spreadsheet, so nullable
// fields are pointers (or decimal.NullDecimal for monetary values) and map
// to NULL in the database.
type Operation struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"userId" db:"user_id"`

	// Identification of the request.
	FechaCreacion           *time.Time `json:"fechaCreacion" db:"fecha_creacion"`
	DiasTasa                *int64     `json:"diasTasa" db:"dias_tasa"`
	Tipo                    *string    `json:"tipo" db:"tipo"`
	Solicitud               *int64     `json:"solicitud" db:"solicitud"`
	EstadoSolicitud         *string    `json:"estadoSolicitud" db:"estado_solicitud"`
	FechaResolucion         *time.Time `json:"fechaResolucion" db:"fecha_resolucion"`
	FechaAprobacionManual90 *time.Time `json:"fechaAprobacionManual90" db:"fecha_aprobacion_manual_90"`
	FechaEscritura          *time.Time `json:"fechaEscritura" db:"fecha_escritura"`
	EstadoMutuo             *string    `json:"estadoMutuo" db:"estado_mutuo"`
	Mutuo                   *string    `json:"mutuo" db:"mutuo"`

	// Client identity.
	Rut             *string `json:"rut" db:"rut"`
	Nombre          *string `json:"nombre" db:"nombre"`
	ApellidoPaterno *string `json:"apellidoPaterno" db:"apellido_paterno"`
	ApellidoMaterno *string `json:"apellidoMaterno" db:"apellido_materno"`

	// Executives handling the operation.
	Ejecutivo            *string `json:"ejecutivo" db:"ejecutivo"`
	EjecutivoOperaciones *string `json:"ejecutivoOperaciones" db:"ejecutivo_operaciones"`

	TipoOperacion *string `json:"tipoOperacion" db:"tipo_operacion"`

	// Financial amounts.
	ValorVenta          decimal.NullDecimal `json:"valorVenta" db:"valor_venta"`
	ValorAsegurable     decimal.NullDecimal `json:"valorAsegurable" db:"valor_asegurable"`
	MontoPie            decimal.NullDecimal `json:"montoPie" db:"monto_pie"`
	MontoSubsidio       decimal.NullDecimal `json:"montoSubsidio" db:"monto_subsidio"`
	CreditoTotal        decimal.NullDecimal `json:"creditoTotal" db:"credito_total"`
	MontoHipoteca       decimal.NullDecimal `json:"montoHipoteca" db:"monto_hipoteca"`
	FinesGenerales      decimal.NullDecimal `json:"finesGenerales" db:"fines_generales"`
	GastosOperacionales decimal.NullDecimal `json:"gastosOperacionales" db:"gastos_operacionales"`
	NoFinanciado        decimal.NullDecimal `json:"noFinanciado" db:"no_financiado"`
	ValorTasacion       decimal.NullDecimal `json:"valorTasacion" db:"valor_tasacion"`

	// Credit terms.
	Plazo         *int64              `json:"plazo" db:"plazo"`
	PeriodoGracia *int64              `json:"periodoGracia" db:"periodo_gracia"`
	TasaEmision   decimal.NullDecimal `json:"tasaEmision" db:"tasa_emision"`

	// Related entities.
	BancoAlzante  *string `json:"bancoAlzante" db:"banco_alzante"`
	Repertorio    *string `json:"repertorio" db:"repertorio"`
	Notaria       *string `json:"notaria" db:"notaria"`
	AgenciaBroker *string `json:"agenciaBroker" db:"agencia_broker"`
	Abogado       *string `json:"abogado" db:"abogado"`

	// Documentation fields.
	ProntoPago     *bool               `json:"prontoPago" db:"pronto_pago"`
	Rol            *string             `json:"rol" db:"rol"`
	Caratula       *string             `json:"caratula" db:"caratula"`
	CaratulaEndoso *string             `json:"caratulaEndoso" db:"caratula_endoso"`
	FechaF24       *time.Time          `json:"fechaF24" db:"fecha_f24"`
	Inversionista  *string             `json:"inversionista" db:"inversionista"`
	TasaEndoso     decimal.NullDecimal `json:"tasaEndoso" db:"tasa_endoso"`
	ComunaBienRaiz *string             `json:"comunaBienRaiz" db:"comuna_bien_raiz"`
	EstadoActual   *string             `json:"estadoActual" db:"estado_actual"`

	// Process milestones (start/end timestamps per stage).
	OeVisadoInicio                    *time.Time `json:"oeVisadoInicio" db:"oe_visado_inicio"`
	OeVisadoTermino                   *time.Time `json:"oeVisadoTermino" db:"oe_visado_termino"`
	BorradorInicio                    *time.Time `json:"borradorInicio" db:"borrador_inicio"`
	BorradorTermino                   *time.Time `json:"borradorTermino" db:"borrador_termino"`
	PreFirmaInicio                    *time.Time `json:"preFirmaInicio" db:"pre_firma_inicio"`
	PreFirmaTermino                   *time.Time `json:"preFirmaTermino" db:"pre_firma_termino"`
	FirmaClienteInicio                *time.Time `json:"firmaClienteInicio" db:"firma_cliente_inicio"`
	FirmaClienteTermino               *time.Time `json:"firmaClienteTermino" db:"firma_cliente_termino"`
	FirmaCodeudoresInicio             *time.Time `json:"firmaCodeudoresInicio" db:"firma_codeudores_inicio"`
	FirmaCodeudoresTermino            *time.Time `json:"firmaCodeudoresTermino" db:"firma_codeudores_termino"`
	FirmaMandatarioInicio             *time.Time `json:"firmaMandatarioInicio" db:"firma_mandatario_inicio"`
	FirmaMandatarioTermino            *time.Time `json:"firmaMandatarioTermino" db:"firma_mandatario_termino"`
	FirmaVendedorInicio               *time.Time `json:"firmaVendedorInicio" db:"firma_vendedor_inicio"`
	FirmaVendedorTermino              *time.Time `json:"firmaVendedorTermino" db:"firma_vendedor_termino"`
	FirmaAlzanteInicio                *time.Time `json:"firmaAlzanteInicio" db:"firma_alzante_inicio"`
	RechazoAlzanteInicio              *time.Time `json:"rechazoAlzanteInicio" db:"rechazo_alzante_inicio"`
	RechazoAlzanteTermino             *time.Time `json:"rechazoAlzanteTermino" db:"rechazo_alzante_termino"`
	FirmaAlzanteTermino               *time.Time `json:"firmaAlzanteTermino" db:"firma_alzante_termino"`
	FirmaHipotecariaEvolucionaInicio  *time.Time `json:"firmaHipotecariaEvolucionaInicio" db:"firma_hipotecaria_evoluciona_inicio"`
	FirmaHipotecariaEvolucionaTermino *time.Time `json:"firmaHipotecariaEvolucionaTermino" db:"firma_hipotecaria_evoluciona_termino"`
	VbAbogadosInicio                  *time.Time `json:"vbAbogadosInicio" db:"vb_abogados_inicio"`
	VbAbogadosTermino                 *time.Time `json:"vbAbogadosTermino" db:"vb_abogados_termino"`
	CierreCopiasInicio                *time.Time `json:"cierreCopiasInicio" db:"cierre_copias_inicio"`
	CierreCopiasTermino               *time.Time `json:"cierreCopiasTermino" db:"cierre_copias_termino"`
	CbrInicio                         *time.Time `json:"cbrInicio" db:"cbr_inicio"`
	RechazoCbrInicio                  *time.Time `json:"rechazoCbrInicio" db:"rechazo_cbr_inicio"`
	RechazoCbrTermino                 *time.Time `json:"rechazoCbrTermino" db:"rechazo_cbr_termino"`
	CbrTermino                        *time.Time `json:"cbrTermino" db:"cbr_termino"`
	InformeFinalInicio                *time.Time `json:"informeFinalInicio" db:"informe_final_inicio"`
	InformeFinalTermino               *time.Time `json:"informeFinalTermino" db:"informe_final_termino"`

	// Disbursement and endorsement.
	FechaEndoso              *time.Time          `json:"fechaEndoso" db:"fecha_endoso"`
	SaldoPendienteDesembolso decimal.NullDecimal `json:"saldoPendienteDesembolso" db:"saldo_pendiente_desembolso"`
	FechaDesembolsoPago      *time.Time          `json:"fechaDesembolsoPago" db:"fecha_desembolso_pago"`
	FechaPrepagoTotal        *time.Time          `json:"fechaPrepagoTotal" db:"fecha_prepago_total"`
	EndosoCbrInicio          *time.Time          `json:"endosoCbrInicio" db:"endoso_cbr_inicio"`
	EndosoCbrTermino         *time.Time          `json:"endosoCbrTermino" db:"endoso_cbr_termino"`
	EntregaEscInicio         *time.Time          `json:"entregaEscInicio" db:"entrega_esc_inicio"`
	EntregaEscTermino        *time.Time          `json:"entregaEscTermino" db:"entrega_esc_termino"`

	// Seller identity, denormalized so operations survive seller-record
	// changes. RutVendedor is always the canonical normalized RUT that was
	// resolved against a user account.
	RutVendedor    string  `json:"rutVendedor" db:"rut_vendedor"`
	NombreVendedor *string `json:"nombreVendedor" db:"nombre_vendedor"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
