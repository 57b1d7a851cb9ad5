package intake

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// DocumentType is a kind of identity or address proof
type DocumentType string

const (
	DocumentAadhaarCard     DocumentType = "aadhaar-card"
	DocumentElectricityBill DocumentType = "electricity-bill"
	DocumentPANCard         DocumentType = "pan-card"
)

// IsValid checks if the document type is supported
func (d DocumentType) IsValid() bool {
	switch d {
	case DocumentAadhaarCard, DocumentElectricityBill, DocumentPANCard:
		return true
	}
	return false
}

// acceptedDocumentMIME lists the file formats taken as proof
var acceptedDocumentMIME = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// IsAcceptedDocumentMIME reports whether a sniffed media type may be stored
// as a proof document
func IsAcceptedDocumentMIME(mime string) bool {
	return acceptedDocumentMIME[mime]
}

// DocumentUpload is one proof document handed to a DocumentStore
type DocumentUpload struct {
	SessionID   uuid.UUID
	Type        DocumentType
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// StoredDocument describes where an uploaded document ended up
type StoredDocument struct {
	Type        DocumentType `json:"type"`
	Key         string       `json:"key"`
	FileName    string       `json:"file_name"`
	ContentType string       `json:"content_type"`
	Size        int64        `json:"size"`
	UploadedAt  time.Time    `json:"uploaded_at"`
}

// DocumentStore accepts proof documents. It is the upload collaborator of
// the proof step; the wizard only records the resulting file name.
type DocumentStore interface {
	Store(ctx context.Context, upload DocumentUpload) (StoredDocument, error)
	Delete(ctx context.Context, key string) error
}
