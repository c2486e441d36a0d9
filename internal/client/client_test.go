package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"casefile/internal/models"

	"github.com/stretchr/testify/require"
)

func envelopeBody(data interface{}) string {
	payload, _ := json.Marshal(map[string]interface{}{
		"ApiStatus": true,
		"message":   "",
		"response":  map[string]interface{}{"data": data},
	})
	return string(payload)
}

func failureBody(message string) string {
	payload, _ := json.Marshal(map[string]interface{}{
		"ApiStatus": false,
		"message":   message,
	})
	return string(payload)
}

func TestFolderList_Success(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/folders/list/case-123", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		fmt.Fprint(w, envelopeBody([]models.Folder{
			{ID: 1, Name: "Pleadings", Sort: 1},
			{ID: 2, Name: "Evidence", Sort: 2},
		}))
	}))
	defer srv.Close()
	c := New(srv.URL, WithToken("tok"))

	// Act
	folders, _, err := c.FolderList(context.Background(), "case-123", "")

	// Assert
	require.NoError(t, err)
	require.Len(t, folders, 2)
	require.Equal(t, "Pleadings", folders[0].Name)
}

func TestFolderList_SearchParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "motion brief", r.URL.Query().Get("search"))
		fmt.Fprint(w, envelopeBody([]models.Folder{}))
	}))
	defer srv.Close()
	c := New(srv.URL)

	_, _, err := c.FolderList(context.Background(), "case-123", "motion brief")
	require.NoError(t, err)
}

func TestDo_LogicalFailureOnHTTP200(t *testing.T) {
	// The server reports failures as ApiStatus:false with a 200 status, so the
	// status code alone must never be trusted.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, failureBody("Case not found"))
	}))
	defer srv.Close()
	c := New(srv.URL)

	_, _, err := c.FolderList(context.Background(), "missing", "")

	require.Error(t, err)
	require.True(t, IsAPIError(err))
	require.Equal(t, "Case not found", err.Error())
}

func TestDo_HTTPErrorWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := New(srv.URL, WithReadRetries(0))

	_, _, err := c.FolderList(context.Background(), "case-123", "")

	require.Error(t, err)
	require.True(t, IsTransportError(err))
	require.False(t, IsAPIError(err))
}

func TestDoRead_RetriesTransportFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, envelopeBody([]models.FolderOption{{ID: 1, Name: "Root"}}))
	}))
	defer srv.Close()
	c := New(srv.URL, WithReadRetries(2))

	options, err := c.GetFolders(context.Background(), "case-123")

	require.NoError(t, err)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
	require.Len(t, options, 1)
}

func TestDoRead_LogicalFailureIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, failureBody("Case not found"))
	}))
	defer srv.Close()
	c := New(srv.URL, WithReadRetries(3))

	_, err := c.GetFolders(context.Background(), "missing")

	require.Error(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSortFolders_Payload(t *testing.T) {
	var got struct {
		Items []models.FolderSortItem `json:"items"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/folders/sort", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, envelopeBody(nil))
	}))
	defer srv.Close()
	c := New(srv.URL)

	parent := int64(1)
	err := c.SortFolders(context.Background(), []models.FolderSortItem{
		{ID: 4, Sort: 1, ParentID: &parent},
		{ID: 3, Sort: 2, ParentID: &parent},
	})

	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	require.Equal(t, int64(4), got.Items[0].ID)
	require.Equal(t, 1, got.Items[0].Sort)
}

func TestSortDocuments_Payload(t *testing.T) {
	var got struct {
		Documents []models.DocumentSortItem `json:"documents"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/documents/sort", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, envelopeBody(nil))
	}))
	defer srv.Close()
	c := New(srv.URL)

	err := c.SortDocuments(context.Background(), []models.DocumentSortItem{
		{ID: 11, Sort: 1},
		{ID: 10, Sort: 2},
	})

	require.NoError(t, err)
	require.Len(t, got.Documents, 2)
}

func TestSaveDocument_DecodesDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/documents/save/case-123", r.URL.Path)
		fmt.Fprint(w, envelopeBody(models.Document{ID: 5, Title: "Filed"}))
	}))
	defer srv.Close()
	c := New(srv.URL)

	doc, err := c.SaveDocument(context.Background(), "case-123", DocumentParams{FolderID: 1, Title: "Filed"})

	require.NoError(t, err)
	require.Equal(t, int64(5), doc.ID)
}

func TestDeleteFolder_Path(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/v1/folders/delete/7", r.URL.Path)
		fmt.Fprint(w, envelopeBody(nil))
	}))
	defer srv.Close()
	c := New(srv.URL)

	require.NoError(t, c.DeleteFolder(context.Background(), 7))
}

func TestRenameFolder_Body(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/folders/rename/7", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, envelopeBody(nil))
	}))
	defer srv.Close()
	c := New(srv.URL)

	require.NoError(t, c.RenameFolder(context.Background(), 7, "Briefs"))
	require.Equal(t, "Briefs", got["name"])
}

func TestUploadAttachment_TooLargeNeverHitsNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()
	c := New(srv.URL, WithMaxUploadBytes(10))

	_, err := c.UploadAttachment(context.Background(), "big.bin", strings.NewReader("0123456789A"), 11)

	require.ErrorIs(t, err, ErrFileTooLarge)
	require.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestUploadAttachment_MultipartRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "scan.pdf", header.Filename)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"attachment": models.Attachment{ID: 42, OriginalName: "scan.pdf"},
		})
	}))
	defer srv.Close()
	c := New(srv.URL)

	att, err := c.UploadAttachment(context.Background(), "scan.pdf", strings.NewReader("content"), 7)

	require.NoError(t, err)
	require.Equal(t, int64(42), att.ID)
}

func TestUploadAttachment_ResponseShapes(t *testing.T) {
	// Upload responses come in more than one wrapper; each must decode to the
	// same attachment.
	cases := []struct {
		name string
		body string
	}{
		{"wrapped", `{"attachment": {"id": 42, "original_name": "a.pdf"}}`},
		{"enveloped", `{"ApiStatus": true, "response": {"data": {"attachment": {"id": 42, "original_name": "a.pdf"}}}}`},
		{"bare", `{"id": 42, "original_name": "a.pdf"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()
			c := New(srv.URL)

			att, err := c.UploadAttachment(context.Background(), "a.pdf", strings.NewReader("x"), 1)

			require.NoError(t, err)
			require.Equal(t, int64(42), att.ID)
		})
	}
}

func TestUploadAttachment_LogicalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, failureBody("Upload rejected"))
	}))
	defer srv.Close()
	c := New(srv.URL)

	_, err := c.UploadAttachment(context.Background(), "a.pdf", strings.NewReader("x"), 1)

	require.Error(t, err)
	require.True(t, IsAPIError(err))
	require.Equal(t, "Upload rejected", err.Error())
}

func TestAPIError_DefaultMessage(t *testing.T) {
	err := &APIError{}
	require.Equal(t, GenericFailureMessage, err.Error())
}
