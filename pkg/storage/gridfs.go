package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSImageStore keeps images in the "posts" GridFS bucket of a MongoDB database.
type GridFSImageStore struct {
	bucket *gridfs.Bucket
}

// NewGridFSImageStore opens the posts bucket on db.
func NewGridFSImageStore(db *mongo.Database) (*GridFSImageStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(PostsPrefix))
	if err != nil {
		return nil, fmt.Errorf("error opening gridfs bucket: %w", err)
	}
	return &GridFSImageStore{bucket: bucket}, nil
}

func (s *GridFSImageStore) Save(ctx context.Context, ext string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := newImageName(ext)
	if _, err := s.bucket.UploadFromStream(name, r); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return path.Join(PostsPrefix, name), nil
}

func (s *GridFSImageStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	stream, err := s.bucket.OpenDownloadStreamByName(name)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, err
	}
	return stream, nil
}
