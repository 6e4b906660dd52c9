package out

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	importerout "pokerlog/internal/modules/importer/port/out"
	apperrors "pokerlog/internal/platform/errors"
)

type FileSource struct{}

func NewFileSource() importerout.Source {
	return FileSource{}
}

func (FileSource) Read(_ context.Context, path string) (string, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: import file %s", apperrors.ErrNotFound, path)
		}
		return "", fmt.Errorf("read import file: %w", err)
	}
	if !utf8.Valid(payload) {
		return "", fmt.Errorf("%w: %s is not UTF-8 text", apperrors.ErrInvalidInput, path)
	}
	return string(payload), nil
}
