package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/evoluciona-hipotecaria/apiserver/config"
	"github.com/evoluciona-hipotecaria/apiserver/types"
	"github.com/sirupsen/logrus"
)

// stagingBatchSize bounds per-statement payload size and lock duration when
// loading staging.
const stagingBatchSize = 500

// eventChannel is the broker channel import-completed events are published on.
const eventChannel = "imports"

// OperationImportRepository is the slice of operation persistence the
// pipeline drives: staging load plus the transactional swap.
type OperationImportRepository interface {
	ClearStaging(ctx context.Context) error
	InsertStagingBatch(ctx context.Context, ops []types.Operation) error
	SwapStagingToProduction(ctx context.Context) error
}

// ImportLogRecorder persists one audit record per import attempt.
type ImportLogRecorder interface {
	Create(ctx context.Context, log types.ImportLog) (types.ImportLog, error)
}

// Locker serializes imports system-wide.
type Locker interface {
	Acquire(ctx context.Context) (func(), error)
}

// FileArchiver stores a copy of the uploaded file for audit replay.
// Optional: archive failures are logged, never fatal.
type FileArchiver interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// EventPublisher announces completed imports to downstream consumers.
// Optional: publish failures are logged, never fatal.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// Importer orchestrates the CSV import pipeline: parse and filter, user
// synchronization, row transformation, staging load, transactional swap, and
// the audit record. An audit record is written on both the success and the
// failure path.
type Importer struct {
	parser      *Parser
	sync        *Synchronizer
	ops         OperationImportRepository
	logs        ImportLogRecorder
	lock        Locker
	archiver    FileArchiver
	publisher   EventPublisher
	log         *logrus.Logger
	maxFileSize int64
}

func New(
	cfg config.ImportConfig,
	users UserSyncRepository,
	ops OperationImportRepository,
	logs ImportLogRecorder,
	lock Locker,
	log *logrus.Logger,
) *Importer {
	return &Importer{
		parser:      NewParser(cfg.FilterPolicy),
		sync:        NewSynchronizer(users, cfg.BcryptCost, log),
		ops:         ops,
		logs:        logs,
		lock:        lock,
		log:         log,
		maxFileSize: cfg.MaxFileSize,
	}
}

// WithArchiver attaches an optional object-storage backend that keeps a copy
// of every uploaded file.
func (im *Importer) WithArchiver(archiver FileArchiver) *Importer {
	im.archiver = archiver
	return im
}

// WithPublisher attaches an optional broker that receives import-completed
// events.
func (im *Importer) WithPublisher(publisher EventPublisher) *Importer {
	im.publisher = publisher
	return im
}

// Process runs one import end to end. On any failure it still writes the
// audit record before returning the error. Newly created seller accounts are
// deliberately kept on failure: provisioning is idempotent and re-runnable,
// while the operations swap is all-or-nothing on its own.
func (im *Importer) Process(ctx context.Context, file []byte, fileName, adminID string) (types.ImportResult, error) {
	started := time.Now()

	var (
		totalRows    int
		vigentRows   int
		insertedRows int
		usersCreated int
		rowErrors    []RowError
		accErrors    []AccountError
	)

	fail := func(err error) (types.ImportResult, error) {
		im.log.WithError(err).Error("importación fallida")
		im.writeLog(ctx, adminID, fileName, totalRows, 0, rowErrors, accErrors, err)
		return types.ImportResult{}, err
	}

	if err := im.validateFile(file, fileName); err != nil {
		return fail(err)
	}

	release, err := im.lock.Acquire(ctx)
	if err != nil {
		return fail(err)
	}
	defer release()

	im.log.WithField("archivo", fileName).Info("paso 1: parsing del CSV")
	parsed, err := im.parser.ParseAndFilter(file)
	if err != nil {
		return fail(err)
	}
	totalRows = parsed.TotalRows
	vigentRows = len(parsed.Rows)
	if vigentRows == 0 {
		return fail(newValidationError("no se encontraron registros válidos en el archivo CSV"))
	}

	im.log.WithField("filas_vigentes", vigentRows).Info("paso 2: sincronización de usuarios")
	syncResult, err := im.sync.Sync(ctx, parsed.Rows, im.parser.SellerColumn())
	if err != nil {
		return fail(fmt.Errorf("sincronización de usuarios: %w", err))
	}
	usersCreated = syncResult.CreatedCount
	accErrors = syncResult.Errors

	im.log.WithField("usuarios_creados", usersCreated).Info("paso 3: transformación y carga a staging")
	transformed := NewTransformer(im.parser.SellerColumn()).Transform(parsed.Rows, syncResult.UserMap)
	rowErrors = transformed.Errors

	if err := im.loadStaging(ctx, transformed.Records); err != nil {
		return fail(err)
	}
	insertedRows = len(transformed.Records)

	im.log.Info("paso 4: swap transaccional")
	if err := im.ops.SwapStagingToProduction(ctx); err != nil {
		return fail(err)
	}

	im.archiveFile(ctx, file, fileName)

	im.log.Info("paso 5: guardando log")
	logEntry := im.writeLog(ctx, adminID, fileName, totalRows, insertedRows, rowErrors, accErrors, nil)

	result := types.ImportResult{
		Success:         true,
		Message:         "Importación completada exitosamente",
		FilasTotales:    totalRows,
		FilasVigentes:   vigentRows,
		FilasInsertadas: insertedRows,
		UsuariosCreados: usersCreated,
		LogID:           logEntry.ID,
	}

	im.publishEvent(ctx, result)

	im.log.WithFields(logrus.Fields{
		"filas_totales":    totalRows,
		"filas_insertadas": insertedRows,
		"usuarios_creados": usersCreated,
		"duracion":         time.Since(started).Round(time.Millisecond).String(),
	}).Info("importación completada")

	return result, nil
}

func (im *Importer) validateFile(file []byte, fileName string) error {
	if len(file) == 0 {
		return newValidationError("no se ha proporcionado ningún archivo")
	}
	if im.maxFileSize > 0 && int64(len(file)) > im.maxFileSize {
		return newValidationError(fmt.Sprintf("el archivo excede el tamaño máximo de %d bytes", im.maxFileSize))
	}
	if !strings.EqualFold(filepath.Ext(fileName), ".csv") {
		return newValidationError("solo se permiten archivos CSV")
	}
	return nil
}

// loadStaging clears staging and bulk-inserts the transformed records in
// fixed-size batches. A batch failure here is fatal: staging is not a
// best-effort store.
func (im *Importer) loadStaging(ctx context.Context, records []types.Operation) error {
	if err := im.ops.ClearStaging(ctx); err != nil {
		return fmt.Errorf("limpiando staging: %w", err)
	}
	for start := 0; start < len(records); start += stagingBatchSize {
		end := start + stagingBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := im.ops.InsertStagingBatch(ctx, records[start:end]); err != nil {
			return fmt.Errorf("cargando staging: %w", err)
		}
	}
	return nil
}

// writeLog persists the audit record; it swallows its own failure (logging
// it) so a broken audit table never masks the import's real outcome.
func (im *Importer) writeLog(
	ctx context.Context,
	adminID, fileName string,
	totalRows, insertedRows int,
	rowErrors []RowError,
	accErrors []AccountError,
	cause error,
) types.ImportLog {
	payload := erroresPayload(rowErrors, accErrors, cause)

	entry, err := im.logs.Create(ctx, types.ImportLog{
		AdminID:         adminID,
		FilasTotales:    totalRows,
		FilasInsertadas: insertedRows,
		Errores:         payload,
		ArchivoNombre:   fileName,
	})
	if err != nil {
		im.log.WithError(err).Error("no se pudo guardar el log de importación")
	}
	return entry
}

func erroresPayload(rowErrors []RowError, accErrors []AccountError, cause error) json.RawMessage {
	if cause == nil && len(rowErrors) == 0 && len(accErrors) == 0 {
		return nil
	}

	var entries []map[string]any
	if cause != nil {
		entries = append(entries, map[string]any{"message": cause.Error()})
	}
	for _, re := range rowErrors {
		entries = append(entries, map[string]any{"fila": re.Row, "message": re.Message})
	}
	for _, ae := range accErrors {
		entries = append(entries, map[string]any{"rut": ae.Rut, "message": ae.Message})
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return nil
	}
	return payload
}

// archiveFile keeps a copy of the upload in object storage. Best effort.
func (im *Importer) archiveFile(ctx context.Context, file []byte, fileName string) {
	if im.archiver == nil {
		return
	}
	key := fmt.Sprintf("imports/%s_%s", time.Now().Format("20060102T150405"), filepath.Base(fileName))
	if err := im.archiver.Put(ctx, key, bytes.NewReader(file), int64(len(file)), "text/csv"); err != nil {
		im.log.WithError(err).Warn("no se pudo archivar el CSV importado")
		return
	}
	im.log.WithField("key", key).Info("CSV archivado")
}

// publishEvent announces the finished import to downstream consumers. Best
// effort.
func (im *Importer) publishEvent(ctx context.Context, result types.ImportResult) {
	if im.publisher == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if _, err := im.publisher.Publish(ctx, eventChannel, data, map[string]string{"logId": result.LogID}); err != nil {
		im.log.WithError(err).Warn("no se pudo publicar el evento de importación")
	}
}
