package storage

import "context"

// UploadResult describes an object written to the snapshot bucket. Location
// is empty when the bucket has no public base URL.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
	Size     int64
}

// FileUploader writes objects under caller chosen keys. Snapshot bodies are
// small JSON documents already held in memory, so they are passed as bytes
// and their length is known up front.
type FileUploader interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}
