// Package tree holds the client-side working copy of a case's folder tree and
// the reordering logic behind drag-and-drop. The mirror exists so a completed
// drag can show its result immediately; the server stays authoritative and
// replaces the mirror on the next refetch.
package tree

import (
	"fmt"
	"strconv"
	"strings"

	"casefile/internal/models"
)

type Kind string

const (
	KindFolder   Kind = "folder"
	KindDocument Kind = "document"
)

// DragRef identifies one draggable item. On the wire drag ids are tagged
// strings like "document-12" so folder and document ids cannot collide.
type DragRef struct {
	Kind Kind
	ID   int64
}

func (r DragRef) String() string {
	return fmt.Sprintf("%s-%d", r.Kind, r.ID)
}

// ParseDragRef parses a tagged drag id. The second return is false for
// unknown tags or non-numeric ids.
func ParseDragRef(s string) (DragRef, bool) {
	kind, idStr, found := strings.Cut(s, "-")
	if !found {
		return DragRef{}, false
	}
	if Kind(kind) != KindFolder && Kind(kind) != KindDocument {
		return DragRef{}, false
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return DragRef{}, false
	}
	return DragRef{Kind: Kind(kind), ID: id}, true
}

// Result is the sort payload produced by a completed drag. Exactly one of
// Documents or Folders is populated, matching the kind of the dragged item.
type Result struct {
	Kind      Kind
	Documents []models.DocumentSortItem
	Folders   []models.FolderSortItem
}

// Mirror is a deep local copy of the server's nested folder list.
type Mirror struct {
	items []models.Folder
}

func NewMirror(folders []models.Folder) *Mirror {
	return &Mirror{items: copyFolders(folders)}
}

// Reset replaces the mirror with a fresh server tree, discarding any
// optimistic local state.
func (m *Mirror) Reset(folders []models.Folder) {
	m.items = copyFolders(folders)
}

// Items returns the current local tree. Callers must treat it as read-only;
// all mutation goes through ApplyDragEnd or Reset.
func (m *Mirror) Items() []models.Folder {
	return m.items
}

// ApplyDragEnd applies one completed drag gesture to the mirror and returns
// the sort payload to submit. A nil result means the gesture was a no-op
// (dropped on itself, item not found, or an unsupported cross-container move)
// and nothing changed.
func (m *Mirror) ApplyDragEnd(active, over DragRef) *Result {
	if active == over {
		return nil
	}

	if active.Kind == KindDocument {
		if over.Kind != KindDocument {
			return nil
		}
		return m.moveDocument(active.ID, over.ID)
	}
	if over.Kind != KindFolder {
		return nil
	}
	return m.moveFolder(active.ID, over.ID)
}

// moveDocument reorders a document within its folder. The owning folder is
// searched among root folders and exactly one level of subfolders; the search
// accepts a folder containing either end of the drag.
func (m *Mirror) moveDocument(activeID, overID int64) *Result {
	folder := m.findDocumentFolder(activeID, overID)
	if folder == nil {
		return nil
	}

	oldIndex := documentIndex(folder.Documents, activeID)
	newIndex := documentIndex(folder.Documents, overID)
	if oldIndex < 0 || newIndex < 0 || oldIndex == newIndex {
		return nil
	}

	folder.Documents = MoveWithinSiblings(folder.Documents, oldIndex, newIndex)

	payload := make([]models.DocumentSortItem, 0, len(folder.Documents))
	for i := range folder.Documents {
		payload = append(payload, models.DocumentSortItem{
			ID:   folder.Documents[i].ID,
			Sort: i + 1,
		})
	}

	return &Result{Kind: KindDocument, Documents: payload}
}

// moveFolder reorders a folder within its sibling container: the root list or
// the subfolder list of one root folder. Drags across containers are not
// supported and leave the mirror untouched.
func (m *Mirror) moveFolder(activeID, overID int64) *Result {
	container, parentID := m.findFolderContainer(activeID, overID)
	if container == nil {
		return nil
	}

	oldIndex := folderIndex(*container, activeID)
	newIndex := folderIndex(*container, overID)
	if oldIndex < 0 || newIndex < 0 || oldIndex == newIndex {
		return nil
	}

	*container = MoveWithinSiblings(*container, oldIndex, newIndex)

	payload := make([]models.FolderSortItem, 0, len(*container))
	for i := range *container {
		payload = append(payload, models.FolderSortItem{
			ID:       (*container)[i].ID,
			Sort:     i + 1,
			ParentID: parentID,
		})
	}

	return &Result{Kind: KindFolder, Folders: payload}
}

// findDocumentFolder returns the folder holding either document id, looking
// at root folders and one level of subfolders only.
func (m *Mirror) findDocumentFolder(activeID, overID int64) *models.Folder {
	for i := range m.items {
		root := &m.items[i]
		if documentIndex(root.Documents, activeID) >= 0 || documentIndex(root.Documents, overID) >= 0 {
			return root
		}
		for j := range root.SubFolders {
			sub := &root.SubFolders[j]
			if documentIndex(sub.Documents, activeID) >= 0 || documentIndex(sub.Documents, overID) >= 0 {
				return sub
			}
		}
	}
	return nil
}

// findFolderContainer returns the sibling slice holding both folder ids, and
// the parent id shared by that sibling group (nil for the root list).
func (m *Mirror) findFolderContainer(activeID, overID int64) (*[]models.Folder, *int64) {
	if folderIndex(m.items, activeID) >= 0 && folderIndex(m.items, overID) >= 0 {
		return &m.items, nil
	}
	for i := range m.items {
		root := &m.items[i]
		if folderIndex(root.SubFolders, activeID) >= 0 && folderIndex(root.SubFolders, overID) >= 0 {
			parentID := root.ID
			return &root.SubFolders, &parentID
		}
	}
	return nil, nil
}

// MoveWithinSiblings removes the element at from and re-inserts it at to,
// preserving the relative order of every other element. The input slice is
// not modified.
func MoveWithinSiblings[T any](siblings []T, from, to int) []T {
	if from < 0 || from >= len(siblings) || to < 0 || to >= len(siblings) {
		return siblings
	}

	out := make([]T, 0, len(siblings))
	out = append(out, siblings[:from]...)
	out = append(out, siblings[from+1:]...)

	moved := siblings[from]
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out
}

func documentIndex(docs []models.Document, id int64) int {
	for i := range docs {
		if docs[i].ID == id {
			return i
		}
	}
	return -1
}

func folderIndex(folders []models.Folder, id int64) int {
	for i := range folders {
		if folders[i].ID == id {
			return i
		}
	}
	return -1
}

func copyFolders(folders []models.Folder) []models.Folder {
	out := make([]models.Folder, len(folders))
	for i, folder := range folders {
		folder.SubFolders = copyFolders(folder.SubFolders)
		folder.Documents = append([]models.Document(nil), folder.Documents...)
		out[i] = folder
	}
	return out
}
