package types

import (
	"encoding/json"
	"time"
)

// ImportLog is the audit record written once per import attempt, on both the
// success and the failure path. Immutable once written.
type ImportLog struct {
	ID string `json:"id" db:"id"`

	// AdminID identifies the admin who triggered the import.
	AdminID string `json:"adminId" db:"admin_id"`

	// FilasTotales is the number of rows parsed from the CSV, including rows
	// later filtered out or skipped.
	FilasTotales int `json:"filasTotales" db:"filas_totales"`

	// FilasInsertadas is the number of rows that made it into production.
	// Zero on a failed import.
	FilasInsertadas int `json:"filasInsertadas" db:"filas_insertadas"`

	// Errores holds the structured error payload of a failed import, or the
	// accumulated row/account level errors of a partially clean run. Null on
	// a clean success.
	Errores json.RawMessage `json:"errores" db:"errores"`

	// ArchivoNombre is the original name of the uploaded file.
	ArchivoNombre string `json:"archivoNombre" db:"archivo_nombre"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ImportResult is the summary returned to the caller after a successful import.
type ImportResult struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	FilasTotales    int    `json:"filasTotales"`
	FilasVigentes   int    `json:"filasVigentes"`
	FilasInsertadas int    `json:"filasInsertadas"`
	UsuariosCreados int    `json:"usuariosCreados"`
	LogID           string `json:"logId,omitempty"`
}
