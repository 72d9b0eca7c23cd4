package models

import "encoding/json"

// Recipe is the backend recipe row. Doc carries the full recipe document as
// JSONB; AuthorID and UpdatedAt are lifted out into columns so listing and
// incremental sync can filter without unpacking the document.
type Recipe struct {
	ID        string
	AuthorID  string
	Doc       json.RawMessage
	UpdatedAt int64
}
