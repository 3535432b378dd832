package contracts

import "context"

type Storage interface {
	PutObject(ctx context.Context, bucketName, objectName string, data []byte, contentType string) (string, error)
}
