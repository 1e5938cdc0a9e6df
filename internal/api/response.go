package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"transvalia/dispatch/internal/models/dtos/responses"
	"transvalia/dispatch/internal/store"
)

func respondWithSuccess[T any](w http.ResponseWriter, statusCode int, data *T) {
	resp := responses.APIResponse[T]{
		Status:    "success",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	resp := responses.APIResponse[any]{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// respondStoreError maps the store error taxonomy to HTTP statuses. Duplicate
// rejections carry the business message verbatim; infrastructure failures are
// not leaked to clients.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrDuplicateRecord):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDatabaseURLNotSet):
		respondWithError(w, http.StatusInternalServerError, "storage backend is not configured")
	default:
		respondWithError(w, http.StatusInternalServerError, "storage operation failed")
	}
}
