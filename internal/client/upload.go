package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"casefile/internal/models"
)

// UploadAttachment uploads one file as multipart form data. The size cap is
// enforced locally first, so an oversized file never reaches the wire.
//
// Upload endpoints have not all agreed on a response shape, so the decoder
// probes the known variants: {"attachment": {...}}, {"response": {"data":
// {"attachment": {...}}}}, and a bare attachment object.
func (c *Client) UploadAttachment(ctx context.Context, filename string, data io.Reader, size int64) (*models.Attachment, error) {
	if size > c.maxUploadBytes {
		return nil, ErrFileTooLarge
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/attachments/save", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
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
		if err := json.Unmarshal(raw, &env); err == nil {
			if env.ApiStatus != nil && !*env.ApiStatus {
				return nil, &APIError{Message: env.Message}
			}
		}
	}
	if resp.StatusCode >= 400 {
		return nil, &TransportError{Err: fmt.Errorf("server returned %s", resp.Status)}
	}

	att, err := decodeAttachment(raw)
	if err != nil {
		return nil, err
	}
	return att, nil
}

func decodeAttachment(raw []byte) (*models.Attachment, error) {
	var wrapped struct {
		Attachment *models.Attachment `json:"attachment"`
		Response   *struct {
			Data struct {
				Attachment *models.Attachment `json:"attachment"`
			} `json:"data"`
		} `json:"response"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if wrapped.Attachment != nil && wrapped.Attachment.ID != 0 {
			return wrapped.Attachment, nil
		}
		if wrapped.Response != nil && wrapped.Response.Data.Attachment != nil && wrapped.Response.Data.Attachment.ID != 0 {
			return wrapped.Response.Data.Attachment, nil
		}
	}

	var bare models.Attachment
	if err := json.Unmarshal(raw, &bare); err == nil && bare.ID != 0 {
		return &bare, nil
	}

	return nil, fmt.Errorf("upload response did not contain an attachment")
}
