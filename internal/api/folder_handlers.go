package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"casefile/internal/database"
	"casefile/internal/models"

	"github.com/go-chi/chi/v5"
)

const defaultPerPage = 15

// @Summary      Get the case's folder tree
// @Description  Returns the nested folder/document tree for one case, optionally filtered by a search term. Root folders are paginated.
// @Tags         folders
// @Produce      json
// @Security     BearerAuth
// @Param        slug    path      string  true   "Case slug"
// @Param        search  query     string  false  "Filter folders and document titles"
// @Param        page    query     int     false  "Page of root folders (default 1)"
// @Success      200     {object}  Envelope
// @Failure      401     {string}  string "Unauthorized"
// @Failure      500     {string}  string "Internal Server Error"
// @Router       /folders/list/{slug} [get]
func (s *Server) FolderListHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	c, err := s.store.GetCaseBySlug(r.Context(), slug)
	if err != nil {
		http.Error(w, "Failed to look up case", http.StatusInternalServerError)
		return
	}
	if c == nil {
		respondFailure(w, "Case not found")
		return
	}

	search := r.URL.Query().Get("search")
	tree, err := s.store.BuildCaseTree(r.Context(), c.ID, search)
	if err != nil {
		http.Error(w, "Failed to build folder tree", http.StatusInternalServerError)
		return
	}

	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	total := len(tree)
	lastPage := (total + defaultPerPage - 1) / defaultPerPage
	if lastPage == 0 {
		lastPage = 1
	}
	start := (page - 1) * defaultPerPage
	if start > total {
		start = total
	}
	end := start + defaultPerPage
	if end > total {
		end = total
	}

	respondList(w, tree[start:end], &models.Pagination{
		Total:       total,
		PerPage:     defaultPerPage,
		CurrentPage: page,
		LastPage:    lastPage,
	})
}

// @Summary      Get flat folder options
// @Description  Returns root folders with one level of sub_folders, the shape used by filing dropdowns.
// @Tags         folders
// @Produce      json
// @Security     BearerAuth
// @Param        slug  path      string  true  "Case slug"
// @Success      200   {object}  Envelope
// @Failure      401   {string}  string "Unauthorized"
// @Failure      500   {string}  string "Internal Server Error"
// @Router       /folders/{slug} [get]
func (s *Server) GetFoldersHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	c, err := s.store.GetCaseBySlug(r.Context(), slug)
	if err != nil {
		http.Error(w, "Failed to look up case", http.StatusInternalServerError)
		return
	}
	if c == nil {
		respondFailure(w, "Case not found")
		return
	}

	options, err := s.store.BuildFolderOptions(r.Context(), c.ID)
	if err != nil {
		http.Error(w, "Failed to list folders", http.StatusInternalServerError)
		return
	}

	respondData(w, http.StatusOK, options)
}

type CreateFolderRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

// @Summary      Create a folder
// @Tags         folders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        slug                 path      string               true  "Case slug"
// @Param        createFolderRequest  body      CreateFolderRequest  true  "Folder"
// @Success      201  {object}  Envelope
// @Failure      401  {string}  string "Unauthorized"
// @Router       /folders/{slug} [post]
func (s *Server) CreateFolderHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		respondFailure(w, "Folder name cannot be empty")
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

	if req.ParentID != nil {
		parent, err := s.store.GetFolderByID(r.Context(), *req.ParentID)
		if err != nil {
			http.Error(w, "Failed to look up parent folder", http.StatusInternalServerError)
			return
		}
		if parent == nil || parent.CaseID != c.ID {
			respondFailure(w, "Parent folder does not exist")
			return
		}
	}

	folder, err := s.store.CreateFolder(r.Context(), database.CreateFolderParams{
		CaseID:   c.ID,
		ParentID: req.ParentID,
		Name:     strings.TrimSpace(req.Name),
	})
	if err != nil {
		if errors.Is(err, database.ErrParentFolderNotFound) {
			respondFailure(w, "Parent folder does not exist")
			return
		}
		http.Error(w, "Failed to create folder", http.StatusInternalServerError)
		return
	}

	respondData(w, http.StatusCreated, folder)
}

type RenameFolderRequest struct {
	Name string `json:"name"`
}

// @Summary      Rename a folder
// @Tags         folders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        folderId             path      int                  true  "Folder ID"
// @Param        renameFolderRequest  body      RenameFolderRequest  true  "New name"
// @Success      200  {object}  Envelope
// @Failure      401  {string}  string "Unauthorized"
// @Router       /folders/rename/{folderId} [post]
func (s *Server) RenameFolderHandler(w http.ResponseWriter, r *http.Request) {
	folderID, err := strconv.ParseInt(chi.URLParam(r, "folderId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}

	var req RenameFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	newName := strings.TrimSpace(req.Name)
	if newName == "" {
		respondFailure(w, "Folder name cannot be empty")
		return
	}

	renamed, err := s.store.RenameFolder(r.Context(), folderID, newName)
	if err != nil {
		http.Error(w, "Failed to rename folder", http.StatusInternalServerError)
		return
	}
	if !renamed {
		respondFailure(w, "Folder not found")
		return
	}

	folder, err := s.store.GetFolderByID(r.Context(), folderID)
	if err != nil {
		http.Error(w, "Failed to load renamed folder", http.StatusInternalServerError)
		return
	}

	respondData(w, http.StatusOK, folder)
}

// @Summary      Delete a folder
// @Description  Deletes the folder together with its subfolders and documents.
// @Tags         folders
// @Produce      json
// @Security     BearerAuth
// @Param        folderId  path      int  true  "Folder ID"
// @Success      200  {object}  Envelope
// @Failure      401  {string}  string "Unauthorized"
// @Router       /folders/delete/{folderId} [delete]
func (s *Server) DeleteFolderHandler(w http.ResponseWriter, r *http.Request) {
	folderID, err := strconv.ParseInt(chi.URLParam(r, "folderId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}

	deleted, err := s.store.DeleteFolder(r.Context(), folderID)
	if err != nil {
		http.Error(w, "Failed to delete folder", http.StatusInternalServerError)
		return
	}
	if !deleted {
		respondFailure(w, "Folder not found")
		return
	}

	respondData(w, http.StatusOK, nil)
}

type SortFoldersRequest struct {
	Items []models.FolderSortItem `json:"items"`
}

// @Summary      Reorder folders
// @Description  Persists a whole sibling group's order in one transaction. Re-parenting a folder under its own subtree is rejected.
// @Tags         folders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        sortFoldersRequest  body      SortFoldersRequest  true  "Sort payload"
// @Success      200  {object}  Envelope
// @Failure      401  {string}  string "Unauthorized"
// @Router       /folders/sort [post]
func (s *Server) SortFoldersHandler(w http.ResponseWriter, r *http.Request) {
	var req SortFoldersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		respondFailure(w, "Sort payload cannot be empty")
		return
	}

	var errCycle = errors.New("cycle")
	var errMissing = errors.New("missing")

	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		for _, item := range req.Items {
			if item.ParentID != nil {
				isDescendant, err := q.IsDescendantOf(r.Context(), item.ID, *item.ParentID)
				if err != nil {
					return err
				}
				if isDescendant {
					return errCycle
				}
			}

			updated, err := q.UpdateFolderPosition(r.Context(), item.ID, item.Sort, item.ParentID)
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
		switch {
		case errors.Is(txErr, errCycle):
			respondFailure(w, "Cannot move a folder into its own subtree")
		case errors.Is(txErr, errMissing), errors.Is(txErr, database.ErrParentFolderNotFound):
			respondFailure(w, "One of the folders in the sort payload does not exist")
		default:
			http.Error(w, "Failed to save folder order", http.StatusInternalServerError)
		}
		return
	}

	respondData(w, http.StatusOK, nil)
}
