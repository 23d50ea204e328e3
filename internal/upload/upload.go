package upload

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Store saves expense proof files under a local directory and hands back an
// opaque path string. The rest of the system never looks inside it.
type Store struct {
	Dir string
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// Save writes the uploaded file under a random name, keeping the original
// extension, and returns the stored path.
func (s *Store) Save(c *gin.Context, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := uuid.New().String() + ext
	dst := filepath.Join(s.Dir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return dst, nil
}
