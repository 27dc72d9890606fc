package apierr

import "net/http"

// --- Common ---

func InvalidRequestBody() *Error {
	return New(CodeInvalidRequestBody, http.StatusBadRequest, "Invalid request body")
}

func QuestionRequired() *Error {
	return New(CodeQuestionRequired, http.StatusBadRequest, "Question is required")
}

func InternalError(cause error) *Error {
	return Wrap(CodeInternalError, http.StatusInternalServerError, "Internal server error", cause)
}

// --- Pipeline ---

func QueryFailed(cause error) *Error {
	return Wrap(CodeQueryFailed, http.StatusInternalServerError, "Query pipeline failed", cause)
}

// --- Session ---

func SessionIDRequired() *Error {
	return New(CodeSessionIDRequired, http.StatusBadRequest, "Session ID is required")
}

func HistoryLoadFailed(cause error) *Error {
	return Wrap(CodeHistoryLoadFailed, http.StatusInternalServerError, "Failed to load session history", cause)
}

// --- Health ---

func DatabaseNotReady() *Error {
	return New(CodeDatabaseNotReady, http.StatusServiceUnavailable, "Database not ready")
}
