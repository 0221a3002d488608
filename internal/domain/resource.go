package domain

import "time"

type ResourceID string

type ResourceStatus string

const (
	ResourcePending    ResourceStatus = "PENDING"
	ResourceProcessing ResourceStatus = "PROCESSING"
	ResourceProcessed  ResourceStatus = "PROCESSED"
	ResourceFailed     ResourceStatus = "FAILED"
)

// Terminal reports whether no further transition is expected without an
// explicit retry.
func (s ResourceStatus) Terminal() bool {
	return s == ResourceProcessed || s == ResourceFailed
}

// TrackedResource is the polling view of a server-side ingestion job.
type TrackedResource struct {
	ID           ResourceID
	Status       ResourceStatus
	ErrorMessage string
}

type Document struct {
	ID              ResourceID
	Title           string
	FileType        string
	SizeBytes       int64
	Status          ResourceStatus
	ErrorMessage    string
	KnowledgeBaseID KnowledgeBaseID
	ProcessedChunks int
	Summary         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (d Document) Tracked() TrackedResource {
	return TrackedResource{ID: d.ID, Status: d.Status, ErrorMessage: d.ErrorMessage}
}

// Question is a curated question/answer pair ingested like a document.
type Question struct {
	ID              ResourceID
	Question        string
	Answer          string
	Status          ResourceStatus
	ErrorMessage    string
	KnowledgeBaseID KnowledgeBaseID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (q Question) Tracked() TrackedResource {
	return TrackedResource{ID: q.ID, Status: q.Status, ErrorMessage: q.ErrorMessage}
}

// BulkUploadReport summarizes a curated-question batch submission.
type BulkUploadReport struct {
	Submitted int
	Failed    int
}
