package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/evoluciona-hipotecaria/apiserver/types"
	"github.com/google/uuid"
)

// ImportLogRepository handles persistence for import audit records.
type ImportLogRepository struct {
	db *sql.DB
}

func NewImportLogRepository(db *sql.DB) *ImportLogRepository {
	return &ImportLogRepository{db: db}
}

// defaultLogPageSize bounds how many audit records a listing returns.
const defaultLogPageSize = 50

func (r *ImportLogRepository) Create(ctx context.Context, log types.ImportLog) (types.ImportLog, error) {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	log.CreatedAt = time.Now()

	var errores any
	if len(log.Errores) > 0 {
		errores = []byte(log.Errores)
	}

	const query = `
		INSERT INTO import_logs (id, admin_id, filas_totales, filas_insertadas, errores, archivo_nombre, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		log.ID,
		log.AdminID,
		log.FilasTotales,
		log.FilasInsertadas,
		errores,
		log.ArchivoNombre,
		log.CreatedAt,
	); err != nil {
		return types.ImportLog{}, err
	}
	return log, nil
}

// List returns import logs most recent first, optionally filtered by the
// admin who triggered them. The page size is fixed.
func (r *ImportLogRepository) List(ctx context.Context, adminID string) ([]types.ImportLog, error) {
	const baseQuery = `
		SELECT id, admin_id, filas_totales, filas_insertadas, errores, archivo_nombre, created_at
		FROM import_logs`

	var (
		rows *sql.Rows
		err  error
	)
	if adminID != "" {
		rows, err = r.db.QueryContext(ctx, baseQuery+`
		WHERE admin_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, adminID, defaultLogPageSize)
	} else {
		rows, err = r.db.QueryContext(ctx, baseQuery+`
		ORDER BY created_at DESC
		LIMIT $1`, defaultLogPageSize)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []types.ImportLog
	for rows.Next() {
		var (
			log     types.ImportLog
			errores []byte
		)
		if err := rows.Scan(
			&log.ID,
			&log.AdminID,
			&log.FilasTotales,
			&log.FilasInsertadas,
			&errores,
			&log.ArchivoNombre,
			&log.CreatedAt,
		); err != nil {
			return nil, err
		}
		log.Errores = errores
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
