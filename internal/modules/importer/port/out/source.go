package out

import "context"

// Source reads the raw export text.
type Source interface {
	Read(ctx context.Context, path string) (string, error)
}
