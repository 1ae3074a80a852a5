// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package course

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/taibuivan/coursio/internal/platform/apperr"
	"github.com/taibuivan/coursio/internal/platform/constants"
	"github.com/taibuivan/coursio/pkg/uuid"
)

// # Cover Image Storage

// allowedImageExtensions is the upload whitelist for course cover images.
var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// ImageStore persists uploaded course cover images on local disk.
// Files are renamed to a UUID to prevent path traversal and collisions.
type ImageStore struct {
	dir string
}

// NewImageStore constructs an [ImageStore] rooted at dir, creating it if needed.
func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("course: failed to create upload dir: %w", err)
	}
	return &ImageStore{dir: dir}, nil
}

/*
Save validates and persists an uploaded cover image.

Description: Rejects files over the global upload cap or with an extension
outside the image whitelist, then streams the content to disk under a fresh
UUID filename.

Parameters:
  - header: *multipart.FileHeader (The uploaded file part)

Returns:
  - string: The public link to serve the stored image under /uploads
  - error: Validation or filesystem failures
*/
func (store *ImageStore) Save(header *multipart.FileHeader) (string, error) {

	// Size cap
	if header.Size > constants.MaxUploadSize {
		return "", apperr.ValidationError("Image exceeds the maximum upload size")
	}

	// Extension whitelist
	extension := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExtensions[extension] {
		return "", apperr.ValidationError("Image must be a jpg, jpeg, png, or gif file")
	}

	source, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("course: failed to open upload: %w", err)
	}
	defer source.Close()

	filename := uuid.New() + extension
	destination, err := os.Create(filepath.Join(store.dir, filename))
	if err != nil {
		return "", fmt.Errorf("course: failed to create image file: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return "", fmt.Errorf("course: failed to write image file: %w", err)
	}

	return "/uploads/" + filename, nil
}
