package models

// Chunk is a bounded segment of document text with retrieval metadata
type Chunk struct {
	Content string
	Source  string
	FileID  string
}

// Finding is a single detected inconsistency in a banking document.
// All three fields are mandatory; the detector rejects responses where
// any of them is missing.
type Finding struct {
	Term     string `json:"term"`
	Error    string `json:"error"`
	Location string `json:"location"`
}
