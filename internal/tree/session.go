package tree

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"casefile/internal/client"
	"casefile/internal/models"
	"casefile/internal/notify"
	"casefile/internal/query"
)

// ErrUploadInFlight rejects a document save while its attachment is still
// uploading. One attachment in flight per document at a time.
var ErrUploadInFlight = errors.New("attachment upload still in progress")

// API is the slice of the casefile client the session drives.
type API interface {
	SortFolders(ctx context.Context, items []models.FolderSortItem) error
	SortDocuments(ctx context.Context, items []models.DocumentSortItem) error
	RenameFolder(ctx context.Context, folderID int64, name string) error
	DeleteFolder(ctx context.Context, folderID int64) error
	DeleteDocument(ctx context.Context, documentID int64) error
	SaveDocument(ctx context.Context, slug string, params client.DocumentParams) (*models.Document, error)
	UpdateDocument(ctx context.Context, documentID int64, params client.DocumentParams) (*models.Document, error)
	UploadAttachment(ctx context.Context, filename string, data io.Reader, size int64) (*models.Attachment, error)
}

// Invalidator is the slice of the query cache the session needs.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...query.Key)
}

// Session orchestrates one case's folder tree: it owns the optimistic mirror
// and turns user gestures into API calls and cache invalidations.
//
// Mutations follow the same two-phase pattern throughout: the mirror changes
// first (or not at all for deletes), then the server is told. On success the
// folder queries are invalidated so a refetch restores authoritative state;
// on failure the user is notified and the mirror is left as-is. The next
// successful mutation's refetch corrects any divergence.
type Session struct {
	slug     string
	mirror   *Mirror
	api      API
	cache    Invalidator
	notifier notify.Notifier

	mu        sync.Mutex
	uploading map[int64]bool
	staged    map[int64]*int64
}

func NewSession(slug string, api API, cache Invalidator, notifier notify.Notifier) *Session {
	return &Session{
		slug:      slug,
		mirror:    NewMirror(nil),
		api:       api,
		cache:     cache,
		notifier:  notifier,
		uploading: make(map[int64]bool),
		staged:    make(map[int64]*int64),
	}
}

// FolderListKey and FolderOptionsKey are the two cache keys every mutation
// invalidates: the tree itself and its companion dropdown list.
func (s *Session) FolderListKey() query.Key {
	return query.Key("folder-list:" + s.slug)
}

func (s *Session) FolderOptionsKey() query.Key {
	return query.Key("folder-options:" + s.slug)
}

// SyncFromServer replaces the mirror with a freshly fetched tree.
func (s *Session) SyncFromServer(folders []models.Folder) {
	s.mirror.Reset(folders)
}

func (s *Session) Tree() []models.Folder {
	return s.mirror.Items()
}

// DragEnd applies a completed drag to the mirror and submits the resulting
// sort payload. The mirror keeps the new order whether or not the submission
// succeeds; only a refetch reverts it.
func (s *Session) DragEnd(ctx context.Context, active, over DragRef) error {
	result := s.mirror.ApplyDragEnd(active, over)
	if result == nil {
		return nil
	}

	var err error
	if result.Kind == KindDocument {
		err = s.api.SortDocuments(ctx, result.Documents)
	} else {
		err = s.api.SortFolders(ctx, result.Folders)
	}

	if err != nil {
		s.notifier.Notify(notify.KindError, failureMessage(err))
		return err
	}

	s.cache.Invalidate(ctx, s.FolderListKey(), s.FolderOptionsKey())
	return nil
}

// RenameFolder renames a folder. Renaming to the current name (after
// trimming) closes the editor without a network call; the first return
// reports whether a rename was actually submitted.
func (s *Session) RenameFolder(ctx context.Context, folderID int64, currentName, newName string) (bool, error) {
	trimmed := strings.TrimSpace(newName)
	if trimmed == "" || trimmed == strings.TrimSpace(currentName) {
		return false, nil
	}

	if err := s.api.RenameFolder(ctx, folderID, trimmed); err != nil {
		s.notifier.Notify(notify.KindError, failureMessage(err))
		return false, err
	}

	s.cache.Invalidate(ctx, s.FolderListKey(), s.FolderOptionsKey())
	return true, nil
}

// DeleteFolder removes a folder server-side. The mirror is not touched here:
// the deletion shows up through the invalidation refetch, never optimistically.
func (s *Session) DeleteFolder(ctx context.Context, folderID int64) error {
	if err := s.api.DeleteFolder(ctx, folderID); err != nil {
		s.notifier.Notify(notify.KindError, failureMessage(err))
		return err
	}

	s.cache.Invalidate(ctx, s.FolderListKey(), s.FolderOptionsKey())
	return nil
}

func (s *Session) DeleteDocument(ctx context.Context, documentID int64) error {
	if err := s.api.DeleteDocument(ctx, documentID); err != nil {
		s.notifier.Notify(notify.KindError, failureMessage(err))
		return err
	}

	s.cache.Invalidate(ctx, s.FolderListKey(), s.FolderOptionsKey())
	return nil
}

// StageAttachment uploads a replacement file for a document immediately and
// remembers the resulting attachment id for the next SubmitDocumentEdit.
func (s *Session) StageAttachment(ctx context.Context, documentID int64, filename string, data io.Reader, size int64) (*models.Attachment, error) {
	s.mu.Lock()
	if s.uploading[documentID] {
		s.mu.Unlock()
		return nil, ErrUploadInFlight
	}
	s.uploading[documentID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.uploading, documentID)
		s.mu.Unlock()
	}()

	att, err := s.api.UploadAttachment(ctx, filename, data, size)
	if err != nil {
		s.notifier.Notify(notify.KindError, failureMessage(err))
		return nil, err
	}

	s.mu.Lock()
	s.staged[documentID] = &att.ID
	s.mu.Unlock()

	return att, nil
}

// ClearStagedAttachment drops a staged-but-unsubmitted replacement so the
// next submit falls back to the document's original attachment.
func (s *Session) ClearStagedAttachment(documentID int64) {
	s.mu.Lock()
	delete(s.staged, documentID)
	s.mu.Unlock()
}

// DocumentEdit carries the editable document fields. OriginalAttachmentID is
// used when no replacement upload was staged.
type DocumentEdit struct {
	Title                string
	DocReceivedDate      *string
	DocDeadlineDate      *string
	Memo                 *string
	OriginalAttachmentID *int64
}

// SubmitDocumentEdit saves an edit dialog. A staged attachment takes
// precedence over the original; a save while an upload is still in flight is
// refused rather than racing the upload.
func (s *Session) SubmitDocumentEdit(ctx context.Context, documentID int64, edit DocumentEdit) (*models.Document, error) {
	s.mu.Lock()
	if s.uploading[documentID] {
		s.mu.Unlock()
		return nil, ErrUploadInFlight
	}
	attachmentID := edit.OriginalAttachmentID
	if staged, ok := s.staged[documentID]; ok {
		attachmentID = staged
	}
	s.mu.Unlock()

	params := client.DocumentParams{
		Title:           edit.Title,
		AttachmentID:    attachmentID,
		DocReceivedDate: edit.DocReceivedDate,
		DocDeadlineDate: edit.DocDeadlineDate,
		Memo:            edit.Memo,
	}

	doc, err := s.api.UpdateDocument(ctx, documentID, params)
	if err != nil {
		s.notifier.Notify(notify.KindError, failureMessage(err))
		return nil, err
	}

	s.mu.Lock()
	delete(s.staged, documentID)
	s.mu.Unlock()

	s.cache.Invalidate(ctx, s.FolderListKey(), s.FolderOptionsKey())
	return doc, nil
}

// SaveDocument files a new document in the case.
func (s *Session) SaveDocument(ctx context.Context, params client.DocumentParams) (*models.Document, error) {
	doc, err := s.api.SaveDocument(ctx, s.slug, params)
	if err != nil {
		s.notifier.Notify(notify.KindError, failureMessage(err))
		return nil, err
	}

	s.cache.Invalidate(ctx, s.FolderListKey(), s.FolderOptionsKey())
	return doc, nil
}

// failureMessage prefers the server-provided message for logical failures and
// falls back to a generic string for everything else.
func failureMessage(err error) string {
	if client.IsAPIError(err) {
		return err.Error()
	}
	return client.GenericFailureMessage
}
