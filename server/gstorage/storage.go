package gstorage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

var ErrObjectNotExist = storage.ErrObjectNotExist

// Object is a stable reference to an uploaded blob. Name is the
// internal identifier used for deletes, URL is the public address.
type Object struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Storage is the blob store used for contact profile pictures
type Storage interface {
	UploadImage(ctx context.Context, r io.Reader, folder string) (*Object, error)
	DeleteImage(ctx context.Context, objectName string) error
}

type GStorage struct {
	storageClient *storage.Client
	bucket        string
}

func NewGStorage(credentialsFilePath, bucket string) (*GStorage, error) {
	var client *storage.Client
	var err error

	if credentialsFilePath != "" {
		client, err = storage.NewClient(context.Background(), option.WithCredentialsFile(credentialsFilePath))
	} else {
		client, err = storage.NewClient(context.Background())
	}

	if err != nil {
		return nil, errors.Wrap(err, "NewGStorage")
	}

	return &GStorage{storageClient: client, bucket: bucket}, nil
}

// UploadImage streams the given reader into a new object under 'folder'
// in the configured bucket & returns a reference to it. It never
// returns a nil Object without an error.
func (gs *GStorage) UploadImage(ctx context.Context, r io.Reader, folder string) (*Object, error) {
	objectName, err := randomObjectName(folder)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*50)
	defer cancel()

	wc := gs.storageClient.Bucket(gs.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(wc, r); err != nil {
		return nil, errors.Wrap(err, "io.Copy")
	}
	if err := wc.Close(); err != nil {
		return nil, errors.Wrap(err, "Writer.Close")
	}

	return &Object{Name: objectName, URL: gs.objectURL(objectName)}, nil
}

// DeleteImage removes a previously uploaded object by its name
func (gs *GStorage) DeleteImage(ctx context.Context, objectName string) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*50)
	defer cancel()

	if err := gs.storageClient.Bucket(gs.bucket).Object(objectName).Delete(ctx); err != nil {
		return errors.Wrapf(err, "Object(%q).Delete", objectName)
	}

	return nil
}

// UploadFile uploads a local file(e.g. the sqlite backup) under 'destFolder',
// keeping the file's base name as the object name.
func (gs *GStorage) UploadFile(filePath, destFolder string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return errors.Wrap(err, "os.Open")
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*50)
	defer cancel()

	objectName := filepath.Base(filePath)
	if destFolder != "" {
		objectName = fmt.Sprintf("%v/%v", destFolder, objectName)
	}

	wc := gs.storageClient.Bucket(gs.bucket).Object(objectName).NewWriter(ctx)
	if _, err = io.Copy(wc, f); err != nil {
		return errors.Wrap(err, "io.Copy")
	}
	if err := wc.Close(); err != nil {
		return errors.Wrap(err, "Writer.Close")
	}

	return nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func (gs *GStorage) objectURL(objectName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%v/%v", gs.bucket, objectName)
}

func randomObjectName(folder string) (string, error) {
	suffix := make([]byte, 16)
	if _, err := rand.Read(suffix); err != nil {
		return "", errors.Wrap(err, "rand.Read")
	}

	objectName := hex.EncodeToString(suffix)
	if folder != "" {
		objectName = fmt.Sprintf("%v/%v", folder, objectName)
	}

	return objectName, nil
}
