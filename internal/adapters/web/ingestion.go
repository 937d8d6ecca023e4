package web

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// uploadSales handles POST /api/ingestion/sales (multipart, field "file").
func (h *Handler) uploadSales(w http.ResponseWriter, r *http.Request) {
	path, fileName, uploadedBy, ok := h.receiveUpload(w, r)
	if !ok {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		writeError(w, r, "failed to read stored upload", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	summary, err := h.svc.IngestSalesCSV(r.Context(), f, fileName, uploadedBy)
	if err != nil {
		writeError(w, r, err.Error(), "INGESTION_FAILED", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"status":       "success",
		"file_name":    summary.FileName,
		"uploaded_by":  summary.UploadedBy,
		"total_rows":   summary.TotalRows,
		"valid_rows":   summary.ValidRows,
		"invalid_rows": summary.InvalidRows,
		"message":      fmt.Sprintf("%d of %d rows ingested", summary.ValidRows, summary.TotalRows),
	})
}

// uploadRules handles POST /api/ingestion/rules (multipart, field "file").
func (h *Handler) uploadRules(w http.ResponseWriter, r *http.Request) {
	path, fileName, uploadedBy, ok := h.receiveUpload(w, r)
	if !ok {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		writeError(w, r, "failed to read stored upload", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	summary, err := h.svc.IngestRulesCSV(r.Context(), f, fileName, uploadedBy)
	if err != nil {
		writeError(w, r, err.Error(), "INGESTION_FAILED", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"status":       "success",
		"file_name":    summary.FileName,
		"uploaded_by":  summary.UploadedBy,
		"upload_id":    summary.UploadID,
		"total_rows":   summary.TotalRows,
		"valid_rows":   summary.ValidRows,
		"invalid_rows": summary.InvalidRows,
		"message":      fmt.Sprintf("%d of %d rules ingested (upload %d)", summary.ValidRows, summary.TotalRows, summary.UploadID),
	})
}

// receiveUpload extracts the multipart file, keeps a raw copy under the
// upload directory for audit, and resolves who uploaded it (the
// authenticated user, or an explicit uploaded_by form field).
func (h *Handler) receiveUpload(w http.ResponseWriter, r *http.Request) (path, fileName, uploadedBy string, ok bool) {
	if err := r.ParseMultipartForm(uploadBodyLimit); err != nil {
		writeError(w, r, "malformed multipart request", "BAD_REQUEST", http.StatusBadRequest)
		return "", "", "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, "missing file field", "BAD_REQUEST", http.StatusBadRequest)
		return "", "", "", false
	}
	defer file.Close()

	uploadedBy = r.FormValue("uploaded_by")
	if claims := authFromContext(r.Context()); uploadedBy == "" && claims != nil {
		uploadedBy = claims.Username
	}

	// filepath.Base strips any client-supplied directory components.
	fileName = filepath.Base(header.Filename)
	path = filepath.Join(h.uploadDir, uuid.NewString()+"_"+fileName)
	dst, err := os.Create(path)
	if err != nil {
		writeError(w, r, "failed to store upload", "INTERNAL_ERROR", http.StatusInternalServerError)
		return "", "", "", false
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		writeError(w, r, "failed to store upload", "INTERNAL_ERROR", http.StatusInternalServerError)
		return "", "", "", false
	}
	return path, fileName, uploadedBy, true
}
