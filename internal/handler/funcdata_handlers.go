package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"funcdata-hub/internal/application/usecases"
	"funcdata-hub/internal/logger"

	"github.com/gorilla/mux"
)

// uploadFuncDataHandler accepts a multipart upload and creates a functional
// data object from it. The uploaded file is staged in a scratch directory
// under its original name so the manager sees the real base name.
func uploadFuncDataHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32MB
		writeErrorResponse(w, http.StatusBadRequest, "FORM_PARSE_ERROR", "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "FILE_REQUIRED", "File is required")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeErrorResponse(w, http.StatusBadRequest, "FILE_REQUIRED", "File name is required")
		return
	}

	readOnly := r.FormValue("read_only") == "true"

	scratchDir, err := os.MkdirTemp("", "funcdata-upload-")
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "UPLOAD_ERROR", "Failed to stage upload")
		return
	}
	defer os.RemoveAll(scratchDir)

	scratchFile := filepath.Join(scratchDir, filepath.Base(header.Filename))
	dst, err := os.Create(scratchFile)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "UPLOAD_ERROR", "Failed to stage upload")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		writeErrorResponse(w, http.StatusInternalServerError, "UPLOAD_ERROR", "Failed to stage upload")
		return
	}
	dst.Close()

	obj, err := useCase.Upload(scratchFile, readOnly)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if l := logger.GetLogger(); l != nil {
		l.LogObjectCreate(obj.Identifier, obj.Filename(), obj.Filesize(), map[string]interface{}{
			"mime_type": obj.MimeType(),
			"read_only": readOnly,
		})
	}

	writeJSONResponse(w, http.StatusCreated, Response{
		Success: true,
		Data:    usecases.ToInfo(obj),
	})
}

// listFuncDataHandler returns active objects with pagination.
func listFuncDataHandler(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, total, err := useCase.ListWithPagination(page, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"items": items,
			"total": total,
		},
	})
}

func getFuncDataHandler(w http.ResponseWriter, r *http.Request) {
	objectID := mux.Vars(r)["objectId"]

	obj, err := useCase.Get(objectID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, Response{
		Success: true,
		Data:    usecases.ToInfo(obj),
	})
}

// downloadFuncDataHandler streams the stored data file with its recorded
// MIME type and original file name.
func downloadFuncDataHandler(w http.ResponseWriter, r *http.Request) {
	objectID := mux.Vars(r)["objectId"]

	obj, err := useCase.Get(objectID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	file, err := os.Open(obj.DataFile)
	if err != nil {
		if os.IsNotExist(err) {
			writeErrorResponse(w, http.StatusNotFound, "FILE_UNAVAILABLE", "Data file is no longer available")
			return
		}
		writeErrorResponse(w, http.StatusInternalServerError, "FILE_ERROR", "Failed to open data file")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "FILE_ERROR", "Failed to stat data file")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", obj.Filename()))
	w.Header().Set("Content-Type", obj.MimeType())
	w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := io.Copy(w, file); err != nil {
		return
	}

	if l := logger.GetLogger(); l != nil {
		l.LogFileDownload(obj.Identifier, obj.DataFile, r.RemoteAddr, info.Size())
	}
}

func deleteFuncDataHandler(w http.ResponseWriter, r *http.Request) {
	objectID := mux.Vars(r)["objectId"]

	if err := useCase.Delete(objectID); err != nil {
		writeDomainError(w, err)
		return
	}

	if l := logger.GetLogger(); l != nil {
		l.LogObjectDelete(objectID)
	}

	writeJSONResponse(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"id":      objectID,
			"deleted": true,
		},
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		},
	})
}
