package ports

import "context"

// MediaStorage uploads a local file to durable hosting and returns its public
// URL. It never deletes the local file; cleanup is owned by the caller.
type MediaStorage interface {
	Upload(ctx context.Context, localPath string) (string, error)
}
