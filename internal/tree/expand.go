package tree

import (
	"strconv"

	"casefile/internal/models"
)

// ContainsDocument reports whether the folder holds the document anywhere in
// its subtree. Unlike the drag containment search this one goes arbitrarily
// deep, so deep links expand the full ancestor chain.
func ContainsDocument(folder models.Folder, documentID int64) bool {
	for _, doc := range folder.Documents {
		if doc.ID == documentID {
			return true
		}
	}
	for _, sub := range folder.SubFolders {
		if ContainsDocument(sub, documentID) {
			return true
		}
	}
	return false
}

// ExpandedFolders seeds the open/closed state for every folder in the tree:
// a folder starts expanded when its subtree contains the selected document.
func ExpandedFolders(folders []models.Folder, selectedDocumentID int64) map[int64]bool {
	expanded := make(map[int64]bool)
	var walk func(fs []models.Folder)
	walk = func(fs []models.Folder) {
		for _, folder := range fs {
			expanded[folder.ID] = ContainsDocument(folder, selectedDocumentID)
			walk(folder.SubFolders)
		}
	}
	walk(folders)
	return expanded
}

// IsSelected matches a document against an externally supplied selection id.
// Deep links deliver the id as text, so both the exact text and the parsed
// numeric value are accepted.
func IsSelected(doc models.Document, selected string) bool {
	if selected == "" {
		return false
	}
	if selected == strconv.FormatInt(doc.ID, 10) {
		return true
	}
	id, err := strconv.ParseInt(selected, 10, 64)
	return err == nil && id == doc.ID
}
