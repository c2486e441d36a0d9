package database

import (
	"context"
	"strings"

	"casefile/internal/models"
)

// BuildCaseTree assembles the nested folder/document tree for one case. The
// flat folder and document lists come back ordered by sort, so appending in
// scan order keeps every sibling group ordered.
//
// A non-empty search keeps only folders whose name matches, folders containing
// a matching document, and the ancestors of either.
func (q *Queries) BuildCaseTree(ctx context.Context, caseID int64, search string) ([]models.Folder, error) {
	allFolders, err := q.GetFoldersByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	allDocuments, err := q.GetDocumentsByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	folderMap := make(map[int64]*models.Folder, len(allFolders))
	var rootIDs []int64

	for i := range allFolders {
		folder := allFolders[i]
		folder.SubFolders = []models.Folder{}
		folder.Documents = []models.Document{}
		folderMap[folder.ID] = &folder
	}

	for _, doc := range allDocuments {
		if parent, ok := folderMap[doc.FolderID]; ok {
			parent.Documents = append(parent.Documents, doc)
		}
	}

	// Children are attached bottom-up: allFolders is ordered by sort, and a
	// child's sort ordering is independent of its parent's, so a second pass
	// over the original order is enough.
	for _, folder := range allFolders {
		if folder.ParentID == nil {
			rootIDs = append(rootIDs, folder.ID)
		}
	}

	var attach func(parent *models.Folder)
	attach = func(parent *models.Folder) {
		for _, folder := range allFolders {
			if folder.ParentID != nil && *folder.ParentID == parent.ID {
				child := folderMap[folder.ID]
				attach(child)
				parent.SubFolders = append(parent.SubFolders, *child)
			}
		}
	}

	tree := []models.Folder{}
	for _, id := range rootIDs {
		root := folderMap[id]
		attach(root)
		tree = append(tree, *root)
	}

	if search = strings.TrimSpace(search); search != "" {
		tree = filterTree(tree, strings.ToLower(search))
	}

	return tree, nil
}

// filterTree prunes folders that neither match the search term nor contain a
// matching document or subfolder anywhere below them.
func filterTree(folders []models.Folder, term string) []models.Folder {
	kept := []models.Folder{}
	for _, folder := range folders {
		sub := filterTree(folder.SubFolders, term)
		if strings.Contains(strings.ToLower(folder.Name), term) {
			// A folder matched by name keeps its full contents.
			kept = append(kept, folder)
			continue
		}

		docs := []models.Document{}
		for _, doc := range folder.Documents {
			if strings.Contains(strings.ToLower(doc.Title), term) {
				docs = append(docs, doc)
			}
		}

		if len(sub) > 0 || len(docs) > 0 {
			folder.SubFolders = sub
			folder.Documents = docs
			kept = append(kept, folder)
		}
	}
	return kept
}

// BuildFolderOptions returns the flat dropdown shape: root folders each
// carrying one level of sub_folders, mirroring how the add-document dialog
// presents filing targets.
func (q *Queries) BuildFolderOptions(ctx context.Context, caseID int64) ([]models.FolderOption, error) {
	allFolders, err := q.GetFoldersByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	options := []models.FolderOption{}
	for _, folder := range allFolders {
		if folder.ParentID != nil {
			continue
		}
		opt := models.FolderOption{
			ID:         folder.ID,
			Name:       folder.Name,
			ParentID:   nil,
			SubFolders: []models.FolderOption{},
		}
		for _, child := range allFolders {
			if child.ParentID != nil && *child.ParentID == folder.ID {
				opt.SubFolders = append(opt.SubFolders, models.FolderOption{
					ID:         child.ID,
					Name:       child.Name,
					ParentID:   child.ParentID,
					SubFolders: []models.FolderOption{},
				})
			}
		}
		options = append(options, opt)
	}

	return options, nil
}
