package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"funcdata-hub/internal/application/usecases"
	domainerrors "funcdata-hub/internal/domain/errors"

	"github.com/gorilla/mux"
)

// Response is the common API response envelope
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError carries a machine-readable code plus message
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var useCase *usecases.FuncDataUseCase

// RegisterRoutes wires the functional data API onto the router.
func RegisterRoutes(router *mux.Router, uc *usecases.FuncDataUseCase) {
	useCase = uc

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api.HandleFunc("/funcdata", uploadFuncDataHandler).Methods("POST")
	api.HandleFunc("/funcdata", listFuncDataHandler).Methods("GET")
	api.HandleFunc("/funcdata/{objectId}", getFuncDataHandler).Methods("GET")
	api.HandleFunc("/funcdata/{objectId}/download", downloadFuncDataHandler).Methods("GET")
	api.HandleFunc("/funcdata/{objectId}", deleteFuncDataHandler).Methods("DELETE")
}

func writeJSONResponse(w http.ResponseWriter, status int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Warning: Failed to encode API response: %v", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSONResponse(w, status, Response{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
	})
}

// writeDomainError maps domain error codes to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var de domainerrors.DomainError
	if !errors.As(err, &de) {
		writeErrorResponse(w, http.StatusInternalServerError, domainerrors.CodeInternal, err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch de.Code {
	case domainerrors.CodeUnsupportedFileType:
		status = http.StatusBadRequest
	case domainerrors.CodeObjectNotFound:
		status = http.StatusNotFound
	case domainerrors.CodeDuplicateObject:
		status = http.StatusConflict
	case domainerrors.CodeMalformedDocument:
		status = http.StatusInternalServerError
	}
	writeErrorResponse(w, status, de.Code, de.Message)
}
