package telemetry

import "codeberg.org/mutker/energictl/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrorCode("telemetry_invalid_config")
	ErrInvalidDBPath = errors.ErrorCode("telemetry_invalid_db_path")

	// Schema Errors
	ErrSchemaInitFailed  = errors.ErrorCode("telemetry_schema_init_failed")
	ErrTransactionFailed = errors.ErrorCode("telemetry_transaction_failed")

	// Storage Errors
	ErrStorageInit  = errors.ErrorCode("telemetry_storage_init_failed")
	ErrStorageClose = errors.ErrorCode("telemetry_storage_close_failed")

	// Collection Errors
	ErrRecordFailed  = errors.ErrorCode("telemetry_record_failed")
	ErrInvalidRecord = errors.ErrorCode("telemetry_invalid_record")

	// Operation Errors
	ErrOperationTimeout = errors.ErrorCode("telemetry_operation_timeout")
	ErrServiceShutdown  = errors.ErrorCode("telemetry_service_shutdown_failed")
)
