package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/caffeinepub/saree-catalogue-portal/internal/storage"
)

type object struct {
	contentType string
	data        []byte
}

// Storage implements storage.Storage in process memory. Contents are lost
// on restart; it is meant for development and tests.
type Storage struct {
	mu      sync.RWMutex
	objects map[string]object
	baseURL string
}

// New creates an in-memory storage whose URLs start with baseURL.
func New(baseURL string) *Storage {
	return &Storage{
		objects: make(map[string]object),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Upload reads the whole body and keeps it under input.Key.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	data, err := io.ReadAll(io.LimitReader(input.Data, storage.MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > storage.MaxUploadSize {
		return nil, fmt.Errorf("upload %s exceeds %d bytes", input.Key, storage.MaxUploadSize)
	}

	s.mu.Lock()
	s.objects[input.Key] = object{contentType: input.ContentType, data: data}
	s.mu.Unlock()

	return &storage.UploadResult{Key: input.Key, URL: s.baseURL + "/media/" + input.Key}, nil
}

// Delete removes the object at key.
func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; !ok {
		return fmt.Errorf("file not found: %s", key)
	}
	delete(s.objects, key)
	return nil
}

// Open returns the stored bytes and content type of key.
func (s *Storage) Open(key string) (io.Reader, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, "", false
	}
	return bytes.NewReader(obj.data), obj.contentType, true
}
