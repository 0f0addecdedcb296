package gstorage

import (
	"context"
	"fmt"
	"io"
)

// StorageStub records image uploads/deletes in memory, so tests can
// assert on blob store interactions without talking to google cloud.
type StorageStub struct {
	Uploaded []string
	Deleted  []string

	UploadError error
	DeleteError error
}

func (stub *StorageStub) UploadImage(ctx context.Context, r io.Reader, folder string) (*Object, error) {
	if stub.UploadError != nil {
		return nil, stub.UploadError
	}

	objectName := fmt.Sprintf("stub-image-%v", len(stub.Uploaded)+1)
	if folder != "" {
		objectName = fmt.Sprintf("%v/%v", folder, objectName)
	}
	stub.Uploaded = append(stub.Uploaded, objectName)

	return &Object{
		Name: objectName,
		URL:  fmt.Sprintf("https://storage.googleapis.com/stub-bucket/%v", objectName),
	}, nil
}

func (stub *StorageStub) DeleteImage(ctx context.Context, objectName string) error {
	if stub.DeleteError != nil {
		return stub.DeleteError
	}

	stub.Deleted = append(stub.Deleted, objectName)
	return nil
}
