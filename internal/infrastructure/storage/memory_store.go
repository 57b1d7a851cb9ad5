package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/agricred/intake/internal/domain/intake"
)

// Ensure MemoryDocumentStore implements DocumentStore
var _ intake.DocumentStore = (*MemoryDocumentStore)(nil)

// MemoryDocumentStore keeps documents in process memory. It backs local
// development when no bucket is configured.
type MemoryDocumentStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	prefix  string
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryDocumentStore creates an empty in-memory store
func NewMemoryDocumentStore(prefix string) *MemoryDocumentStore {
	return &MemoryDocumentStore{
		objects: make(map[string]memoryObject),
		prefix:  prefix,
	}
}

// Store implements intake.DocumentStore
func (m *MemoryDocumentStore) Store(_ context.Context, upload intake.DocumentUpload) (intake.StoredDocument, error) {
	if upload.Body == nil {
		return intake.StoredDocument{}, intake.ErrEmptyDocument
	}
	data, err := io.ReadAll(upload.Body)
	if err != nil {
		return intake.StoredDocument{}, fmt.Errorf("failed to read document: %w", err)
	}

	key := DocumentKey(m.prefix, upload.SessionID, upload.Type, upload.FileName)
	m.mu.Lock()
	m.objects[key] = memoryObject{data: data, contentType: upload.ContentType}
	m.mu.Unlock()

	return intake.StoredDocument{
		Type:        upload.Type,
		Key:         key,
		FileName:    cleanFileName(upload.FileName),
		ContentType: upload.ContentType,
		Size:        int64(len(data)),
		UploadedAt:  time.Now(),
	}, nil
}

// Delete implements intake.DocumentStore
func (m *MemoryDocumentStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Get returns a stored document's content and media type
func (m *MemoryDocumentStore) Get(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.data, obj.contentType, ok
}

// Len returns the number of stored documents
func (m *MemoryDocumentStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
