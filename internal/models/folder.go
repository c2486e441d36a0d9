package models

import "time"

// Folder is one node of a case's document tree. SubFolders and Documents are
// populated only by the tree-building queries; flat queries leave them nil.
type Folder struct {
	ID         int64      `json:"id"`
	CaseID     int64      `json:"-"`
	ParentID   *int64     `json:"parent_id"`
	Name       string     `json:"name"`
	Sort       int        `json:"sort"`
	SubFolders []Folder   `json:"subFolders"`
	Documents  []Document `json:"documents"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
}

// FolderOption is the flat dropdown shape returned by the folder listing used
// in add-document dialogs.
type FolderOption struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	ParentID   *int64         `json:"parent_id"`
	SubFolders []FolderOption `json:"sub_folders"`
}

// FolderSortItem is one entry of a folder reorder submission. ParentID is nil
// for root-level folders.
type FolderSortItem struct {
	ID       int64  `json:"id"`
	Sort     int    `json:"sort"`
	ParentID *int64 `json:"parent_id"`
}
