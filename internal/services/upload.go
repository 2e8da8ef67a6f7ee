package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"

	"github.com/google/uuid"

	"github.com/luneclub/lune/backend/internal/storage"
	"github.com/luneclub/lune/backend/pkg/response"
)

// FileKind selects which content types an upload may have.
type FileKind int

const (
	// KindPhoto accepts JPEG, PNG, WebP and GIF.
	KindPhoto FileKind = iota
	// KindDocument additionally accepts PDF (ID scans, income proof).
	KindDocument
)

var photoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

func (k FileKind) allows(contentType string) bool {
	if photoTypes[contentType] {
		return true
	}
	return k == KindDocument && contentType == "application/pdf"
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeFilename keeps letters, digits, dots and dashes.
func SanitizeFilename(name string) string {
	name = path.Base(name)
	if name == "." || name == "/" {
		name = "file"
	}
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

type UploadService struct {
	store    storage.Storage
	maxBytes int64
}

func NewUploadService(store storage.Storage, maxBytes int64) *UploadService {
	return &UploadService{store: store, maxBytes: maxBytes}
}

type StoredFile struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Save checks size and sniffed content type, then writes the file under
// prefix as "<prefix>/<uuid>-<sanitized name>".
func (s *UploadService) Save(ctx context.Context, prefix, filename string, size int64, r io.Reader, kind FileKind) (*StoredFile, error) {
	if size > s.maxBytes {
		return nil, response.NewValidation(fmt.Sprintf("file too large (max %dMB)", s.maxBytes>>20))
	}

	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}
	if len(head) == 0 {
		return nil, response.NewValidation("file is empty")
	}

	contentType := http.DetectContentType(head)
	if !kind.allows(contentType) {
		return nil, response.NewValidation("unsupported file type: " + contentType)
	}

	key := fmt.Sprintf("%s/%s-%s", prefix, uuid.NewString(), SanitizeFilename(filename))
	counter := &countingReader{r: io.LimitReader(br, s.maxBytes+1)}
	url, err := s.store.Put(ctx, key, counter, contentType)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if counter.n > s.maxBytes {
		_ = s.store.Delete(ctx, key)
		return nil, response.NewValidation(fmt.Sprintf("file too large (max %dMB)", s.maxBytes>>20))
	}

	return &StoredFile{Key: key, URL: url, ContentType: contentType, Size: counter.n}, nil
}

// Delete removes a stored object right away.
func (s *UploadService) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, key)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
