package config

import "context"

// PayloadBuilder produces one publish payload for a ResolvedStream. A fresh
// byte slice is produced on every call; implementations that read files do
// so on every call rather than caching the contents.
type PayloadBuilder interface {
	Build(ctx context.Context) ([]byte, error)
}
