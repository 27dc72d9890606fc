package apierr

// Code is a machine-readable error code returned in API responses.
type Code string

// Common errors.
const (
	CodeInvalidRequestBody Code = "INVALID_REQUEST_BODY"
	CodeQuestionRequired   Code = "QUESTION_REQUIRED"
	CodeInvalidDialect     Code = "INVALID_DIALECT"
	CodeInternalError      Code = "INTERNAL_ERROR"
)

// Pipeline errors. These mirror the pipeline's terminal error taxonomy when
// a run result has to be refused at the transport layer.
const (
	CodeQueryFailed Code = "QUERY_FAILED"
)

// Session errors.
const (
	CodeSessionIDRequired Code = "SESSION_ID_REQUIRED"
	CodeHistoryLoadFailed Code = "HISTORY_LOAD_FAILED"
)

// Health errors.
const (
	CodeDatabaseNotReady Code = "DATABASE_NOT_READY"
)
