// Package staging holds media files selected in the post editor before
// they are uploaded. Each staged file is spooled to a temp file that acts
// as its preview handle; the handle owns disk space and must be released
// on removal, after upload, and on editor teardown.
package staging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"lookbook-service/internal/models"
)

// LimitError rejects a selection that would push a post over the media
// count cap.
type LimitError struct {
	Max int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("a post can hold at most %d media files", e.Max)
}

// Limits bound a single staging area
type Limits struct {
	MaxPerPost   int
	MaxImageSize int64
	MaxVideoSize int64
}

// DefaultLimits mirrors what the backend enforces on upload
func DefaultLimits() Limits {
	return Limits{
		MaxPerPost:   models.MediaLimits.MaxPerPost,
		MaxImageSize: models.MediaLimits.MaxImageSize,
		MaxVideoSize: models.MediaLimits.MaxVideoSize,
	}
}

// File is one staged media file. It is not safe to use after Release.
type File struct {
	ID          string
	Filename    string
	ContentType string
	Type        models.MediaType
	Size        int64

	mu       sync.Mutex
	path     string
	released bool
}

// Open returns a reader over the staged bytes for preview or upload
func (f *File) Open() (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.released {
		return nil, fmt.Errorf("staged file %s already released", f.ID)
	}
	return os.Open(f.path)
}

// Release deletes the temp file backing this handle. Safe to call twice.
func (f *File) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.released {
		return
	}
	f.released = true
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		log.WithError(err).WithField("file", f.Filename).Warn("failed to remove staged file")
	}
}

// Incoming is a file arriving from a selection, not yet validated
type Incoming struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Stager validates selections and spools accepted files to disk
type Stager struct {
	dir    string
	limits Limits
}

// NewStager creates a stager writing temp files under dir
func NewStager(dir string, limits Limits) *Stager {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Stager{dir: dir, limits: limits}
}

// Limits returns the stager's configured bounds
func (s *Stager) Limits() Limits {
	return s.limits
}

// Stage validates a selection against the staging area and spools the
// accepted files. activeCount counts the post's surviving remote media,
// stagedCount the files already staged.
//
// The count cap rejects the whole selection so the caller's prior staged
// files are untouched. Type and size violations reject per file: valid
// files in the same selection are still staged.
func (s *Stager) Stage(activeCount, stagedCount int, incoming []Incoming) ([]*File, []models.MediaFileError, error) {
	if len(incoming) == 0 {
		return nil, nil, nil
	}
	if activeCount+stagedCount+len(incoming) > s.limits.MaxPerPost {
		return nil, nil, &LimitError{Max: s.limits.MaxPerPost}
	}

	var staged []*File
	var rejected []models.MediaFileError

	for _, in := range incoming {
		mediaType, err := s.validate(in)
		if err != nil {
			rejected = append(rejected, models.MediaFileError{Filename: in.Filename, Error: err.Error()})
			continue
		}

		f, err := s.spool(in, mediaType)
		if err != nil {
			log.WithError(err).WithField("file", in.Filename).Error("failed to spool staged file")
			rejected = append(rejected, models.MediaFileError{Filename: in.Filename, Error: "could not store file"})
			continue
		}
		staged = append(staged, f)
	}

	return staged, rejected, nil
}

func (s *Stager) validate(in Incoming) (models.MediaType, error) {
	var mediaType models.MediaType
	switch {
	case strings.HasPrefix(in.ContentType, "image/"):
		mediaType = models.MediaTypeImage
	case strings.HasPrefix(in.ContentType, "video/"):
		mediaType = models.MediaTypeVideo
	default:
		return "", fmt.Errorf("unsupported file type %q", in.ContentType)
	}

	limit := s.limits.MaxImageSize
	if mediaType == models.MediaTypeVideo {
		limit = s.limits.MaxVideoSize
	}
	if in.Size > limit {
		return "", fmt.Errorf("%s exceeds the %dMB limit", in.Filename, limit/(1024*1024))
	}
	return mediaType, nil
}

func (s *Stager) spool(in Incoming, mediaType models.MediaType) (*File, error) {
	id := uuid.New().String()

	tmp, err := os.CreateTemp(s.dir, "staged-"+id+"-*"+safeExt(in.Filename))
	if err != nil {
		return nil, err
	}

	written, err := io.Copy(tmp, in.Reader)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}

	return &File{
		ID:          id,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		Type:        mediaType,
		Size:        written,
		path:        tmp.Name(),
	}, nil
}

// ReleaseAll releases every handle in the slice
func ReleaseAll(files []*File) {
	for _, f := range files {
		f.Release()
	}
}

// safeExt keeps only a plain extension so user filenames cannot steer the
// temp path.
func safeExt(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
