package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"casefile/internal/database"
	"casefile/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
)

type UploadAttachmentResponse struct {
	Attachment *models.Attachment `json:"attachment"`
}

// @Summary      Upload an attachment
// @Description  Stores one uploaded file and returns the attachment reference to include in a document save.
// @Tags         attachments
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "File to upload"
// @Success      201   {object}  UploadAttachmentResponse
// @Failure      401   {string}  string "Unauthorized"
// @Router       /attachments/save [post]
func (s *Server) UploadAttachmentHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Upload.MaxBytes)

	if err := r.ParseMultipartForm(s.config.Upload.MaxBytes); err != nil {
		respondFailure(w, "The uploaded file exceeds the allowed size")
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		respondFailure(w, "No file was provided")
		return
	}
	defer file.Close()

	generateKey, err := nanoid.Standard(21)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	diskKey := generateKey()

	if err := s.storage.Save(diskKey, file); err != nil {
		http.Error(w, "Failed to store file", http.StatusInternalServerError)
		return
	}

	extension := strings.TrimPrefix(filepath.Ext(handler.Filename), ".")

	att, err := s.store.CreateAttachment(r.Context(), database.CreateAttachmentParams{
		DiskKey:      diskKey,
		OriginalName: handler.Filename,
		Extension:    extension,
		SizeBytes:    handler.Size,
	})
	if err != nil {
		// The record failed after the bytes landed on disk; drop the orphan.
		_ = s.storage.Delete(diskKey)
		http.Error(w, "Failed to create attachment record", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(UploadAttachmentResponse{Attachment: att})
}

// @Summary      Download an attachment
// @Tags         attachments
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        attachmentId  path      int  true  "Attachment ID"
// @Success      200  {file}    file
// @Failure      401  {string}  string "Unauthorized"
// @Failure      404  {string}  string "Not Found"
// @Router       /attachments/{attachmentId}/download [get]
func (s *Server) DownloadAttachmentHandler(w http.ResponseWriter, r *http.Request) {
	attachmentID, err := strconv.ParseInt(chi.URLParam(r, "attachmentId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid attachment ID", http.StatusBadRequest)
		return
	}

	att, err := s.store.GetAttachmentByID(r.Context(), attachmentID)
	if err != nil {
		http.Error(w, "Failed to retrieve attachment metadata", http.StatusInternalServerError)
		return
	}
	if att == nil {
		http.Error(w, "Attachment not found", http.StatusNotFound)
		return
	}

	fileStream, err := s.storage.Get(att.DiskKey)
	if err != nil {
		http.Error(w, "File not found on storage", http.StatusInternalServerError)
		return
	}
	defer fileStream.Close()

	w.Header().Set("Content-Disposition", "attachment; filename=\""+att.OriginalName+"\"")
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", att.SizeBytes))

	io.Copy(w, fileStream)
}
