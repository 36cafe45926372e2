package upload

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/frahmantamala/staff-portal/internal"
	"github.com/google/uuid"
)

// MaxImageSize caps uploaded profile pictures at 5MB.
const MaxImageSize = 5 << 20

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Store writes uploaded profile images to a local directory and hands back
// the public reference under /uploads/.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save stores the image from the named multipart field and returns its
// reference. A missing file is not an error: the caller falls back to the
// placeholder image.
func (s *Store) Save(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", internal.NewValidationError("invalid image upload", internal.ErrCodeInvalidImage)
	}
	defer file.Close()

	if header.Size > MaxImageSize {
		return "", internal.NewValidationError("image must not exceed 5MB", internal.ErrCodeInvalidImage)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return "", internal.NewValidationError("only jpg, jpeg, and png files are supported", internal.ErrCodeInvalidImage)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", internal.NewInternalError("failed to store image", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(file, MaxImageSize)); err != nil {
		return "", internal.NewInternalError("failed to store image", err)
	}

	return "/uploads/" + name, nil
}
