package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PostsPrefix is the storage path every post image lives under.
const PostsPrefix = "posts"

// ErrImageNotFound is returned by Open for unknown names.
var ErrImageNotFound = errors.New("image not found")

// ImageStore keeps uploaded post images. Save returns the path recorded on the post ("posts/<name>").
type ImageStore interface {
	Save(ctx context.Context, ext string, r io.Reader) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// newImageName builds "<yyyymmdd>-<uuid><ext>".
func newImageName(ext string) string {
	return fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
}

// cleanName rejects anything that is not a bare file name.
func cleanName(name string) (string, error) {
	name = strings.TrimPrefix(name, PostsPrefix+"/")
	if name == "" || name != path.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", ErrImageNotFound
	}
	return name, nil
}
