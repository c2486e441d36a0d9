package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"casefile/internal/database"
	"casefile/internal/models"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const dateLayout = "2006-01-02"

type DocumentRequest struct {
	FolderID        int64   `json:"folder_id"`
	Title           string  `json:"title"`
	AttachmentID    *int64  `json:"attachment_id"`
	DocReceivedDate *string `json:"doc_received_date"`
	DocDeadlineDate *string `json:"doc_deadline_date"`
	Memo            *string `json:"memo"`
}

func (r DocumentRequest) Validate(requireFolder bool) error {
	fields := []*validation.FieldRules{
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.DocReceivedDate, validation.Date(dateLayout)),
		validation.Field(&r.DocDeadlineDate, validation.Date(dateLayout)),
	}
	if requireFolder {
		fields = append(fields, validation.Field(&r.FolderID, validation.Required))
	}
	return validation.ValidateStruct(&r, fields...)
}

func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}

// @Summary      File a new document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        slug             path      string           true  "Case slug"
// @Param        documentRequest  body      DocumentRequest  true  "Document"
// @Success      201  {object}  Envelope
// @Failure      401  {string}  string "Unauthorized"
// @Router       /documents/save/{slug} [post]
func (s *Server) SaveDocumentHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := req.Validate(true); err != nil {
		respondFailure(w, err.Error())
		return
	}

	c, err := s.store.GetCaseBySlug(r.Context(), slug)
	if err != nil {
		http.Error(w, "Failed to look up case", http.StatusInternalServerError)
		return
	}
	if c == nil {
		respondFailure(w, "Case not found")
		return
	}

	folder, err := s.store.GetFolderByID(r.Context(), req.FolderID)
	if err != nil {
		http.Error(w, "Failed to look up folder", http.StatusInternalServerError)
		return
	}
	if folder == nil || folder.CaseID != c.ID {
		respondFailure(w, "Folder does not exist in this case")
		return
	}

	doc, err := s.store.CreateDocument(r.Context(), database.CreateDocumentParams{
		FolderID:        req.FolderID,
		Title:           req.Title,
		AttachmentID:    req.AttachmentID,
		DocReceivedDate: parseDate(req.DocReceivedDate),
		DocDeadlineDate: parseDate(req.DocDeadlineDate),
		Memo:            req.Memo,
	})
	if err != nil {
		if errors.Is(err, database.ErrAttachmentNotFound) {
			respondFailure(w, "Attachment does not exist")
			return
		}
		if errors.Is(err, database.ErrFolderNotFound) {
			respondFailure(w, "Folder does not exist")
			return
		}
		http.Error(w, "Failed to save document", http.StatusInternalServerError)
		return
	}

	respondData(w, http.StatusCreated, doc)
}

// @Summary      Update a document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        documentId       path      int              true  "Document ID"
// @Param        documentRequest  body      DocumentRequest  true  "Document fields"
// @Success      200  {object}  Envelope
// @Failure      401  {string}  string "Unauthorized"
// @Router       /documents/{documentId} [post]
func (s *Server) UpdateDocumentHandler(w http.ResponseWriter, r *http.Request) {
	documentID, err := strconv.ParseInt(chi.URLParam(r, "documentId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := req.Validate(false); err != nil {
		respondFailure(w, err.Error())
		return
	}

	doc, err := s.store.UpdateDocument(r.Context(), database.UpdateDocumentParams{
		ID:              documentID,
		Title:           req.Title,
		AttachmentID:    req.AttachmentID,
		DocReceivedDate: parseDate(req.DocReceivedDate),
		DocDeadlineDate: parseDate(req.DocDeadlineDate),
		Memo:            req.Memo,
	})
	if err != nil {
		if errors.Is(err, database.ErrAttachmentNotFound) {
			respondFailure(w, "Attachment does not exist")
			return
		}
		http.Error(w, "Failed to update document", http.StatusInternalServerError)
		return
	}
	if doc == nil {
		respondFailure(w, "Document not found")
		return
	}

	respondData(w, http.StatusOK, doc)
}

// @Summary      Delete a document
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        documentId  path      int  true  "Document ID"
// @Success      200  {object}  Envelope
// @Failure      401  {string}  string "Unauthorized"
// @Router       /documents/{documentId} [delete]
func (s *Server) DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	documentID, err := strconv.ParseInt(chi.URLParam(r, "documentId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	deleted, err := s.store.DeleteDocument(r.Context(), documentID)
	if err != nil {
		http.Error(w, "Failed to delete document", http.StatusInternalServerError)
		return
	}
	if !deleted {
		respondFailure(w, "Document not found")
		return
	}

	respondData(w, http.StatusOK, nil)
}

type SortDocumentsRequest struct {
	Documents []models.DocumentSortItem `json:"documents"`
}

// @Summary      Reorder documents
// @Description  Persists one folder's document order in one transaction.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        sortDocumentsRequest  body      SortDocumentsRequest  true  "Sort payload"
// @Success      200  {object}  Envelope
// @Failure      401  {string}  string "Unauthorized"
// @Router       /documents/sort [post]
func (s *Server) SortDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	var req SortDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Documents) == 0 {
		respondFailure(w, "Sort payload cannot be empty")
		return
	}

	var errMissing = errors.New("missing")

	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		for _, item := range req.Documents {
			updated, err := q.UpdateDocumentPosition(r.Context(), item.ID, item.Sort)
			if err != nil {
				return err
			}
			if !updated {
				return errMissing
			}
		}
		return nil
	})

	if txErr != nil {
		if errors.Is(txErr, errMissing) {
			respondFailure(w, "One of the documents in the sort payload does not exist")
			return
		}
		http.Error(w, "Failed to save document order", http.StatusInternalServerError)
		return
	}

	respondData(w, http.StatusOK, nil)
}
