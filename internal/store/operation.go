package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/evoluciona-hipotecaria/apiserver/types"
)

// OperationRepository handles persistence for operations and their staging
// table. Staging is a transient holding area: it is fully replaced on each
// import and swapped into production in a single transaction.
type OperationRepository struct {
	db *sql.DB
}

func NewOperationRepository(db *sql.DB) *OperationRepository {
	return &OperationRepository{db: db}
}

// operationDataColumns lists every importable column, in the order the args
// builder below emits values. id, created_at and updated_at are generated by
// the database on staging insert and copied verbatim during the swap.
var operationDataColumns = []string{
	"user_id",
	"fecha_creacion", "dias_tasa", "tipo", "solicitud", "estado_solicitud",
	"fecha_resolucion", "fecha_aprobacion_manual_90", "fecha_escritura",
	"estado_mutuo", "mutuo",
	"rut", "nombre", "apellido_paterno", "apellido_materno",
	"ejecutivo", "ejecutivo_operaciones", "tipo_operacion",
	"valor_venta", "valor_asegurable", "monto_pie", "monto_subsidio",
	"credito_total", "monto_hipoteca", "fines_generales",
	"gastos_operacionales", "no_financiado", "valor_tasacion",
	"plazo", "periodo_gracia", "tasa_emision",
	"banco_alzante", "repertorio", "notaria", "agencia_broker", "abogado",
	"pronto_pago", "rol", "caratula", "caratula_endoso", "fecha_f24",
	"inversionista", "tasa_endoso", "comuna_bien_raiz", "estado_actual",
	"oe_visado_inicio", "oe_visado_termino",
	"borrador_inicio", "borrador_termino",
	"pre_firma_inicio", "pre_firma_termino",
	"firma_cliente_inicio", "firma_cliente_termino",
	"firma_codeudores_inicio", "firma_codeudores_termino",
	"firma_mandatario_inicio", "firma_mandatario_termino",
	"firma_vendedor_inicio", "firma_vendedor_termino",
	"firma_alzante_inicio", "rechazo_alzante_inicio",
	"rechazo_alzante_termino", "firma_alzante_termino",
	"firma_hipotecaria_evoluciona_inicio", "firma_hipotecaria_evoluciona_termino",
	"vb_abogados_inicio", "vb_abogados_termino",
	"cierre_copias_inicio", "cierre_copias_termino",
	"cbr_inicio", "rechazo_cbr_inicio", "rechazo_cbr_termino", "cbr_termino",
	"informe_final_inicio", "informe_final_termino",
	"fecha_endoso", "saldo_pendiente_desembolso",
	"fecha_desembolso_pago", "fecha_prepago_total",
	"endoso_cbr_inicio", "endoso_cbr_termino",
	"entrega_esc_inicio", "entrega_esc_termino",
	"rut_vendedor", "nombre_vendedor",
}

// operationAllColumns is the full column set, used by the swap copy and by
// reads. No wildcard selects: column order must stay under our control.
var operationAllColumns = append(append([]string{"id"}, operationDataColumns...), "created_at", "updated_at")

func operationDataArgs(op types.Operation) []any {
	return []any{
		op.UserID,
		op.FechaCreacion, op.DiasTasa, op.Tipo, op.Solicitud, op.EstadoSolicitud,
		op.FechaResolucion, op.FechaAprobacionManual90, op.FechaEscritura,
		op.EstadoMutuo, op.Mutuo,
		op.Rut, op.Nombre, op.ApellidoPaterno, op.ApellidoMaterno,
		op.Ejecutivo, op.EjecutivoOperaciones, op.TipoOperacion,
		op.ValorVenta, op.ValorAsegurable, op.MontoPie, op.MontoSubsidio,
		op.CreditoTotal, op.MontoHipoteca, op.FinesGenerales,
		op.GastosOperacionales, op.NoFinanciado, op.ValorTasacion,
		op.Plazo, op.PeriodoGracia, op.TasaEmision,
		op.BancoAlzante, op.Repertorio, op.Notaria, op.AgenciaBroker, op.Abogado,
		op.ProntoPago, op.Rol, op.Caratula, op.CaratulaEndoso, op.FechaF24,
		op.Inversionista, op.TasaEndoso, op.ComunaBienRaiz, op.EstadoActual,
		op.OeVisadoInicio, op.OeVisadoTermino,
		op.BorradorInicio, op.BorradorTermino,
		op.PreFirmaInicio, op.PreFirmaTermino,
		op.FirmaClienteInicio, op.FirmaClienteTermino,
		op.FirmaCodeudoresInicio, op.FirmaCodeudoresTermino,
		op.FirmaMandatarioInicio, op.FirmaMandatarioTermino,
		op.FirmaVendedorInicio, op.FirmaVendedorTermino,
		op.FirmaAlzanteInicio, op.RechazoAlzanteInicio,
		op.RechazoAlzanteTermino, op.FirmaAlzanteTermino,
		op.FirmaHipotecariaEvolucionaInicio, op.FirmaHipotecariaEvolucionaTermino,
		op.VbAbogadosInicio, op.VbAbogadosTermino,
		op.CierreCopiasInicio, op.CierreCopiasTermino,
		op.CbrInicio, op.RechazoCbrInicio, op.RechazoCbrTermino, op.CbrTermino,
		op.InformeFinalInicio, op.InformeFinalTermino,
		op.FechaEndoso, op.SaldoPendienteDesembolso,
		op.FechaDesembolsoPago, op.FechaPrepagoTotal,
		op.EndosoCbrInicio, op.EndosoCbrTermino,
		op.EntregaEscInicio, op.EntregaEscTermino,
		op.RutVendedor, op.NombreVendedor,
	}
}

func scanOperation(rows *sql.Rows) (types.Operation, error) {
	var op types.Operation
	err := rows.Scan(
		&op.ID,
		&op.UserID,
		&op.FechaCreacion, &op.DiasTasa, &op.Tipo, &op.Solicitud, &op.EstadoSolicitud,
		&op.FechaResolucion, &op.FechaAprobacionManual90, &op.FechaEscritura,
		&op.EstadoMutuo, &op.Mutuo,
		&op.Rut, &op.Nombre, &op.ApellidoPaterno, &op.ApellidoMaterno,
		&op.Ejecutivo, &op.EjecutivoOperaciones, &op.TipoOperacion,
		&op.ValorVenta, &op.ValorAsegurable, &op.MontoPie, &op.MontoSubsidio,
		&op.CreditoTotal, &op.MontoHipoteca, &op.FinesGenerales,
		&op.GastosOperacionales, &op.NoFinanciado, &op.ValorTasacion,
		&op.Plazo, &op.PeriodoGracia, &op.TasaEmision,
		&op.BancoAlzante, &op.Repertorio, &op.Notaria, &op.AgenciaBroker, &op.Abogado,
		&op.ProntoPago, &op.Rol, &op.Caratula, &op.CaratulaEndoso, &op.FechaF24,
		&op.Inversionista, &op.TasaEndoso, &op.ComunaBienRaiz, &op.EstadoActual,
		&op.OeVisadoInicio, &op.OeVisadoTermino,
		&op.BorradorInicio, &op.BorradorTermino,
		&op.PreFirmaInicio, &op.PreFirmaTermino,
		&op.FirmaClienteInicio, &op.FirmaClienteTermino,
		&op.FirmaCodeudoresInicio, &op.FirmaCodeudoresTermino,
		&op.FirmaMandatarioInicio, &op.FirmaMandatarioTermino,
		&op.FirmaVendedorInicio, &op.FirmaVendedorTermino,
		&op.FirmaAlzanteInicio, &op.RechazoAlzanteInicio,
		&op.RechazoAlzanteTermino, &op.FirmaAlzanteTermino,
		&op.FirmaHipotecariaEvolucionaInicio, &op.FirmaHipotecariaEvolucionaTermino,
		&op.VbAbogadosInicio, &op.VbAbogadosTermino,
		&op.CierreCopiasInicio, &op.CierreCopiasTermino,
		&op.CbrInicio, &op.RechazoCbrInicio, &op.RechazoCbrTermino, &op.CbrTermino,
		&op.InformeFinalInicio, &op.InformeFinalTermino,
		&op.FechaEndoso, &op.SaldoPendienteDesembolso,
		&op.FechaDesembolsoPago, &op.FechaPrepagoTotal,
		&op.EndosoCbrInicio, &op.EndosoCbrTermino,
		&op.EntregaEscInicio, &op.EntregaEscTermino,
		&op.RutVendedor, &op.NombreVendedor,
		&op.CreatedAt, &op.UpdatedAt,
	)
	return op, err
}

// ClearStaging empties the staging table. Staging is always fully replaced,
// never appended to.
func (r *OperationRepository) ClearStaging(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `TRUNCATE TABLE operations_staging`)
	return err
}

// InsertStagingBatch bulk-inserts one batch of records into staging. A
// failure here is fatal to the import: inconsistent staging must never be
// swapped into production.
func (r *OperationRepository) InsertStagingBatch(ctx context.Context, ops []types.Operation) error {
	if len(ops) == 0 {
		return nil
	}

	cols := len(operationDataColumns)
	var b strings.Builder
	b.WriteString("INSERT INTO operations_staging (")
	b.WriteString(strings.Join(operationDataColumns, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(ops)*cols)
	for i, op := range ops {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(placeholders(i*cols, cols))
		args = append(args, operationDataArgs(op)...)
	}

	_, err := r.db.ExecContext(ctx, b.String(), args...)
	return err
}

// CountStaging returns the number of rows currently held in staging.
func (r *OperationRepository) CountStaging(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM operations_staging`).Scan(&count)
	return count, err
}

// SwapStagingToProduction replaces the production table with the staging
// content inside one transaction: truncate production, copy staging rows
// with an explicit column list, truncate staging. Any failure rolls the
// whole transaction back, so production is never left partially truncated.
func (r *OperationRepository) SwapStagingToProduction(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("swap begin: %w", err)
	}

	columnList := strings.Join(operationAllColumns, ", ")
	copyQuery := fmt.Sprintf(
		"INSERT INTO operations (%s) SELECT %s FROM operations_staging",
		columnList, columnList,
	)

	steps := []struct {
		phase string
		query string
	}{
		{"truncate production", `TRUNCATE TABLE operations`},
		{"copy staging to production", copyQuery},
		{"truncate staging", `TRUNCATE TABLE operations_staging`},
	}

	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("swap %s: %w", step.phase, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("swap commit: %w", err)
	}
	return nil
}

// ListByUserID returns the operations owned by a user, most recent escritura
// first.
func (r *OperationRepository) ListByUserID(ctx context.Context, userID string) ([]types.Operation, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM operations
		WHERE user_id = $1
		ORDER BY fecha_escritura DESC NULLS LAST`,
		strings.Join(operationAllColumns, ", "),
	)
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []types.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}

// CountByUserID returns the number of operations owned by a user.
func (r *OperationRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM operations WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}
