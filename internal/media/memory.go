package media

import (
	"context"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
)

// MemoryStore is an in-process Store used in development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Upload
	folders map[string]struct{}
}

// NewMemoryStore builds an empty in-memory image store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]Upload),
		folders: make(map[string]struct{}),
	}
}

func (s *MemoryStore) Upload(_ context.Context, upload Upload, folder string) (ImageRef, error) {
	if len(upload.Data) == 0 {
		return ImageRef{}, ErrEmptyUpload
	}
	ct := contentType(upload)
	key := folderPrefix(folder) + ulid.Make().String() + extension(upload, ct)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = upload
	s.folders[folderPrefix(folder)] = struct{}{}
	return ImageRef{
		PublicID:    key,
		Folder:      folder,
		URL:         "memory://" + key,
		ContentType: ct,
		Bytes:       len(upload.Data),
	}, nil
}

func (s *MemoryStore) DeleteByPrefix(_ context.Context, prefix string) error {
	p := folderPrefix(prefix)
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.objects {
		if strings.HasPrefix(key, p) {
			delete(s.objects, key)
		}
	}
	return nil
}

func (s *MemoryStore) DeleteFolder(_ context.Context, folder string) error {
	p := folderPrefix(folder)
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.objects {
		if strings.HasPrefix(key, p) {
			return ErrFolderNotEmpty
		}
	}
	delete(s.folders, p)
	return nil
}

// Objects returns the keys stored under folder.
func (s *MemoryStore) Objects(folder string) []string {
	p := folderPrefix(folder)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, p) {
			keys = append(keys, key)
		}
	}
	return keys
}

// HasFolder reports whether folder still exists.
func (s *MemoryStore) HasFolder(folder string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.folders[folderPrefix(folder)]
	return ok
}
