// Package media stores listing pictures and avatars in an external object
// store. Objects are grouped under per-record folders so that a record's
// assets can be removed together.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyUpload is returned when an upload carries no bytes.
	ErrEmptyUpload = errors.New("empty upload")
	// ErrFolderNotEmpty is returned by DeleteFolder while assets remain under it.
	ErrFolderNotEmpty = errors.New("folder is not empty")
)

// ImageRef is the handle returned by the store after an upload.
type ImageRef struct {
	PublicID    string `json:"public_id"`
	Folder      string `json:"folder"`
	URL         string `json:"secure_url"`
	ContentType string `json:"content_type,omitempty"`
	Bytes       int    `json:"bytes"`
}

// Upload is a decoded file field.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Store is the image store consumed by the account and offer services.
type Store interface {
	Upload(ctx context.Context, upload Upload, folder string) (ImageRef, error)
	DeleteByPrefix(ctx context.Context, prefix string) error
	DeleteFolder(ctx context.Context, folder string) error
}

// Folders builds the id-scoped folder paths used for uploads.
type Folders struct {
	Root string
}

// Offer returns the folder holding an offer's pictures.
func (f Folders) Offer(id string) string {
	return path.Join(f.Root, "offers", id)
}

// User returns the folder holding an account's avatar.
func (f Folders) User(id string) string {
	return path.Join(f.Root, "user", id)
}

func contentType(u Upload) string {
	if u.ContentType != "" && u.ContentType != "application/octet-stream" {
		return u.ContentType
	}
	return http.DetectContentType(u.Data)
}

func extension(u Upload, ct string) string {
	if ext := strings.ToLower(filepath.Ext(u.Filename)); ext != "" {
		return ext
	}
	switch ct {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

func folderPrefix(folder string) string {
	return strings.TrimSuffix(folder, "/") + "/"
}

// FromFileHeader reads a multipart file field into an Upload.
func FromFileHeader(fh *multipart.FileHeader) (*Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}
	return &Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
