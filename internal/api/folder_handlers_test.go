package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"casefile/internal/database"
	"casefile/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Test helpers: requests carry the authenticated claims directly in the
// context, and chi URL params are injected the way the router would.
func authRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(context.WithValue(req.Context(), userContextKey, testUserClaims))
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func createTestCaseAPI(t *testing.T) *models.Case {
	t.Helper()
	c, err := testServer.store.CreateCase(context.Background(), "case-"+uuid.NewString(), "API Test Case")
	require.NoError(t, err)
	return c
}

func createTestFolderAPI(t *testing.T, caseID int64, parentID *int64, name string) *models.Folder {
	t.Helper()
	folder, err := testServer.store.CreateFolder(context.Background(), database.CreateFolderParams{
		CaseID:   caseID,
		ParentID: parentID,
		Name:     name,
	})
	require.NoError(t, err)
	return folder
}

func TestAPI_FolderList_Success(t *testing.T) {
	// Arrange
	c := createTestCaseAPI(t)
	createTestFolderAPI(t, c.ID, nil, "Pleadings")

	req := authRequest("GET", "/api/v1/folders/list/"+c.Slug, nil)
	req = withURLParams(req, map[string]string{"slug": c.Slug})
	rr := httptest.NewRecorder()

	// Act
	http.HandlerFunc(testServer.FolderListHandler).ServeHTTP(rr, req)

	// Assert
	require.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	require.True(t, env.ApiStatus)
	require.NotNil(t, env.Response)
	require.NotNil(t, env.Response.Pagination)
	require.Equal(t, 1, env.Response.Pagination.Total)
}

func TestAPI_FolderList_UnknownCaseIsLogicalFailure(t *testing.T) {
	req := authRequest("GET", "/api/v1/folders/list/no-such-case", nil)
	req = withURLParams(req, map[string]string{"slug": "no-such-case"})
	rr := httptest.NewRecorder()

	http.HandlerFunc(testServer.FolderListHandler).ServeHTTP(rr, req)

	// Logical failures ride on HTTP 200 with ApiStatus:false.
	require.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	require.False(t, env.ApiStatus)
	require.Equal(t, "Case not found", env.Message)
}

func TestAPI_FolderList_PaginatesRoots(t *testing.T) {
	c := createTestCaseAPI(t)
	for i := 0; i < defaultPerPage+2; i++ {
		createTestFolderAPI(t, c.ID, nil, fmt.Sprintf("Folder %02d", i))
	}

	req := authRequest("GET", "/api/v1/folders/list/"+c.Slug+"?page=2", nil)
	req = withURLParams(req, map[string]string{"slug": c.Slug})
	rr := httptest.NewRecorder()

	http.HandlerFunc(testServer.FolderListHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	require.True(t, env.ApiStatus)
	require.Equal(t, defaultPerPage+2, env.Response.Pagination.Total)
	require.Equal(t, 2, env.Response.Pagination.CurrentPage)
	require.Equal(t, 2, env.Response.Pagination.LastPage)

	var page []models.Folder
	raw, err := json.Marshal(env.Response.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &page))
	require.Len(t, page, 2)
}

func TestAPI_CreateFolder_Success(t *testing.T) {
	c := createTestCaseAPI(t)
	body, _ := json.Marshal(CreateFolderRequest{Name: "  Evidence  "})

	req := authRequest("POST", "/api/v1/folders/"+c.Slug, body)
	req = withURLParams(req, map[string]string{"slug": c.Slug})
	rr := httptest.NewRecorder()

	http.HandlerFunc(testServer.CreateFolderHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	env := decodeEnvelope(t, rr)
	require.True(t, env.ApiStatus)

	var folder models.Folder
	raw, _ := json.Marshal(env.Response.Data)
	require.NoError(t, json.Unmarshal(raw, &folder))
	require.Equal(t, "Evidence", folder.Name, "name is stored trimmed")
	require.Equal(t, 1, folder.Sort)
}

func TestAPI_CreateFolder_EmptyName(t *testing.T) {
	c := createTestCaseAPI(t)
	body, _ := json.Marshal(CreateFolderRequest{Name: "   "})

	req := authRequest("POST", "/api/v1/folders/"+c.Slug, body)
	req = withURLParams(req, map[string]string{"slug": c.Slug})
	rr := httptest.NewRecorder()

	http.HandlerFunc(testServer.CreateFolderHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	require.False(t, env.ApiStatus)
}

func TestAPI_CreateFolder_ParentFromAnotherCase(t *testing.T) {
	c1 := createTestCaseAPI(t)
	c2 := createTestCaseAPI(t)
	foreign := createTestFolderAPI(t, c2.ID, nil, "Foreign")
	body, _ := json.Marshal(CreateFolderRequest{Name: "Child", ParentID: &foreign.ID})

	req := authRequest("POST", "/api/v1/folders/"+c1.Slug, body)
	req = withURLParams(req, map[string]string{"slug": c1.Slug})
	rr := httptest.NewRecorder()

	http.HandlerFunc(testServer.CreateFolderHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	require.False(t, env.ApiStatus)
	require.Equal(t, "Parent folder does not exist", env.Message)
}

func TestAPI_RenameFolder_Success(t *testing.T) {
	c := createTestCaseAPI(t)
	folder := createTestFolderAPI(t, c.ID, nil, "Old")
	body, _ := json.Marshal(RenameFolderRequest{Name: "New"})

	req := authRequest("POST", fmt.Sprintf("/api/v1/folders/rename/%d", folder.ID), body)
	req = withURLParams(req, map[string]string{"folderId": fmt.Sprint(folder.ID)})
	rr := httptest.NewRecorder()

	http.HandlerFunc(testServer.RenameFolderHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	require.True(t, env.ApiStatus)

	var renamed models.Folder
	raw, _ := json.Marshal(env.Response.Data)
	require.NoError(t, json.Unmarshal(raw, &renamed))
	require.Equal(t, "New", renamed.Name)
}

func TestAPI_RenameFolder_NotFound(t *testing.T) {
	body, _ := json.Marshal(RenameFolderRequest{Name: "New"})

	req := authRequest("POST", "/api/v1/folders/rename/999999999", body)
	req = withURLParams(req, map[string]string{"folderId": "999999999"})
	rr := httptest.NewRecorder()

	http.HandlerFunc(testServer.RenameFolderHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	require.False(t, env.ApiStatus)
	require.Equal(t, "Folder not found", env.Message)
}

func TestAPI_DeleteFolder_Success(t *testing.T) {
	c := createTestCaseAPI(t)
	folder := createTestFolderAPI(t, c.ID, nil, "Doomed")

	req := authRequest("DELETE", fmt.Sprintf("/api/v1/folders/delete/%d", folder.ID), nil)
	req = withURLParams(req, map[string]string{"folderId": fmt.Sprint(folder.ID)})
	rr := httptest.NewRecorder()

	http.HandlerFunc(testServer.DeleteFolderHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	require.True(t, env.ApiStatus)

	gone, err := testServer.store.GetFolderByID(context.Background(), folder.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestAPI_SortFolders_Reorders(t *testing.T) {
	c := createTestCaseAPI(t)
	a := createTestFolderAPI(t, c.ID, nil, "A")
	b := createTestFolderAPI(t, c.ID, nil, "B")

	body, _ := json.Marshal(SortFoldersRequest{Items: []models.FolderSortItem{
		{ID: b.ID, Sort: 1, ParentID: nil},
		{ID: a.ID, Sort: 2, ParentID: nil},
	}})
	req := authRequest("POST", "/api/v1/folders/sort", body)
	rr := httptest.NewRecorder()

	http.HandlerFunc(testServer.SortFoldersHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	require.True(t, env.ApiStatus)

	tree, err := testServer.store.BuildCaseTree(context.Background(), c.ID, "")
	require.NoError(t, err)
	require.Equal(t, b.ID, tree[0].ID)
	require.Equal(t, a.ID, tree[1].ID)
}

func TestAPI_SortFolders_RejectsCycle(t *testing.T) {
	c := createTestCaseAPI(t)
	root := createTestFolderAPI(t, c.ID, nil, "Root")
	child := createTestFolderAPI(t, c.ID, &root.ID, "Child")

	// Re-parenting the root under its own child must be rejected and the tree
	// left untouched.
	body, _ := json.Marshal(SortFoldersRequest{Items: []models.FolderSortItem{
		{ID: root.ID, Sort: 1, ParentID: &child.ID},
	}})
	req := authRequest("POST", "/api/v1/folders/sort", body)
	rr := httptest.NewRecorder()

	http.HandlerFunc(testServer.SortFoldersHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	require.False(t, env.ApiStatus)
	require.Equal(t, "Cannot move a folder into its own subtree", env.Message)

	got, err := testServer.store.GetFolderByID(context.Background(), root.ID)
	require.NoError(t, err)
	require.Nil(t, got.ParentID)
}

func TestAPI_SortFolders_MissingFolderRollsBack(t *testing.T) {
	c := createTestCaseAPI(t)
	a := createTestFolderAPI(t, c.ID, nil, "A")

	body, _ := json.Marshal(SortFoldersRequest{Items: []models.FolderSortItem{
		{ID: a.ID, Sort: 2, ParentID: nil},
		{ID: 999999999, Sort: 1, ParentID: nil},
	}})
	req := authRequest("POST", "/api/v1/folders/sort", body)
	rr := httptest.NewRecorder()

	http.HandlerFunc(testServer.SortFoldersHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	require.False(t, env.ApiStatus)

	// The whole payload applies in one transaction; a's update rolled back.
	got, err := testServer.store.GetFolderByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Sort)
}

func TestAPI_SortFolders_EmptyPayload(t *testing.T) {
	body, _ := json.Marshal(SortFoldersRequest{})
	req := authRequest("POST", "/api/v1/folders/sort", body)
	rr := httptest.NewRecorder()

	http.HandlerFunc(testServer.SortFoldersHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.False(t, decodeEnvelope(t, rr).ApiStatus)
}

func TestAPI_GetFolders_OptionsShape(t *testing.T) {
	c := createTestCaseAPI(t)
	root := createTestFolderAPI(t, c.ID, nil, "Root")
	createTestFolderAPI(t, c.ID, &root.ID, "Child")

	req := authRequest("GET", "/api/v1/folders/"+c.Slug, nil)
	req = withURLParams(req, map[string]string{"slug": c.Slug})
	rr := httptest.NewRecorder()

	http.HandlerFunc(testServer.GetFoldersHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	require.True(t, env.ApiStatus)

	var options []models.FolderOption
	raw, _ := json.Marshal(env.Response.Data)
	require.NoError(t, json.Unmarshal(raw, &options))
	require.Len(t, options, 1)
	require.Len(t, options[0].SubFolders, 1)
}
