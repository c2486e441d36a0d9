// Package client wraps the casefile REST API. Every response envelope may
// report a logical failure via ApiStatus:false even on HTTP 200, so all
// callers go through the envelope check here instead of trusting status codes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"casefile/internal/models"

	"github.com/sethvargo/go-retry"
)

const DefaultMaxUploadBytes = 10 << 20

type Client struct {
	baseURL        string
	httpClient     *http.Client
	token          string
	maxUploadBytes int64
	readRetries    uint64
	retryBackoff   time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithMaxUploadBytes(n int64) Option {
	return func(c *Client) { c.maxUploadBytes = n }
}

// WithReadRetries sets how many times read requests are retried. Mutations
// are never retried.
func WithReadRetries(n uint64) Option {
	return func(c *Client) { c.readRetries = n }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        baseURL,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		maxUploadBytes: DefaultMaxUploadBytes,
		readRetries:    2,
		retryBackoff:   200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	ApiStatus *bool           `json:"ApiStatus"`
	Message   string          `json:"message"`
	Response  *responseBody   `json:"response"`
	Raw       json.RawMessage `json:"-"`
}

type responseBody struct {
	Data       json.RawMessage    `json:"data"`
	Pagination *models.Pagination `json:"pagination"`
}

// do runs one request and peels the envelope. A decoded ApiStatus:false is a
// logical failure regardless of the HTTP status.
func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*envelope, error) {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= 400 {
				return nil, &TransportError{Err: fmt.Errorf("server returned %s", resp.Status)}
			}
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		env.Raw = raw
	}

	if env.ApiStatus != nil && !*env.ApiStatus {
		return nil, &APIError{Message: env.Message}
	}
	if resp.StatusCode >= 400 {
		return nil, &TransportError{Err: fmt.Errorf("server returned %s", resp.Status)}
	}

	return &env, nil
}

// doRead is do with a fixed small retry for transport failures. Logical
// failures are terminal: the server answered, it just said no.
func (c *Client) doRead(ctx context.Context, path string) (*envelope, error) {
	var env *envelope
	err := retry.Do(ctx, retry.WithMaxRetries(c.readRetries, retry.NewConstant(c.retryBackoff)), func(ctx context.Context) error {
		var doErr error
		env, doErr = c.do(ctx, http.MethodGet, path, nil)
		if doErr != nil {
			if IsTransportError(doErr) {
				return retry.RetryableError(doErr)
			}
			return doErr
		}
		return nil
	})
	return env, err
}

func decodeData(env *envelope, out interface{}) error {
	if env == nil || env.Response == nil || env.Response.Data == nil {
		return fmt.Errorf("response carried no data")
	}
	return json.Unmarshal(env.Response.Data, out)
}

// FolderList fetches the nested folder/document tree for a case, optionally
// filtered by a search term.
func (c *Client) FolderList(ctx context.Context, slug string, search string) ([]models.Folder, *models.Pagination, error) {
	path := "/api/v1/folders/list/" + url.PathEscape(slug)
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}

	env, err := c.doRead(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	var folders []models.Folder
	if err := decodeData(env, &folders); err != nil {
		return nil, nil, err
	}
	return folders, env.Response.Pagination, nil
}

// GetFolders fetches the flat folder list used to populate filing dropdowns.
func (c *Client) GetFolders(ctx context.Context, slug string) ([]models.FolderOption, error) {
	env, err := c.doRead(ctx, "/api/v1/folders/"+url.PathEscape(slug))
	if err != nil {
		return nil, err
	}

	var options []models.FolderOption
	if err := decodeData(env, &options); err != nil {
		return nil, err
	}
	return options, nil
}

// DocumentParams is the document payload for save and update calls. Dates are
// sent as yyyy-mm-dd strings.
type DocumentParams struct {
	FolderID        int64   `json:"folder_id,omitempty"`
	Title           string  `json:"title"`
	AttachmentID    *int64  `json:"attachment_id"`
	DocReceivedDate *string `json:"doc_received_date"`
	DocDeadlineDate *string `json:"doc_deadline_date"`
	Memo            *string `json:"memo"`
}

func (c *Client) SaveDocument(ctx context.Context, slug string, params DocumentParams) (*models.Document, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/v1/documents/save/"+url.PathEscape(slug), params)
	if err != nil {
		return nil, err
	}

	var doc models.Document
	if err := decodeData(env, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) UpdateDocument(ctx context.Context, documentID int64, params DocumentParams) (*models.Document, error) {
	env, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/documents/%d", documentID), params)
	if err != nil {
		return nil, err
	}

	var doc models.Document
	if err := decodeData(env, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) DeleteDocument(ctx context.Context, documentID int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/documents/%d", documentID), nil)
	return err
}

func (c *Client) DeleteFolder(ctx context.Context, folderID int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/folders/delete/%d", folderID), nil)
	return err
}

func (c *Client) RenameFolder(ctx context.Context, folderID int64, name string) error {
	body := map[string]string{"name": name}
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/folders/rename/%d", folderID), body)
	return err
}

// SortFolders submits a whole sibling group's new order in one call.
func (c *Client) SortFolders(ctx context.Context, items []models.FolderSortItem) error {
	body := map[string]interface{}{"items": items}
	_, err := c.do(ctx, http.MethodPost, "/api/v1/folders/sort", body)
	return err
}

// SortDocuments submits one folder's new document order in one call.
func (c *Client) SortDocuments(ctx context.Context, items []models.DocumentSortItem) error {
	body := map[string]interface{}{"documents": items}
	_, err := c.do(ctx, http.MethodPost, "/api/v1/documents/sort", body)
	return err
}
