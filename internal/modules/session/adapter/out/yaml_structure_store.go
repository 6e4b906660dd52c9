package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"pokerlog/internal/modules/session/domain"
	sessionout "pokerlog/internal/modules/session/port/out"
	apperrors "pokerlog/internal/platform/errors"
)

// YAMLStructureStore reads named blind structures from a YAML file:
//
//	turbo:
//	  - {level: 1, sb: 100, bb: 200, ante: 0, minutes: 10}
//	  - {level: 2, break: true, label: "Color up", minutes: 5}
//
// A missing file yields no structures.
type YAMLStructureStore struct {
	path string
}

func NewYAMLStructureStore(path string) sessionout.StructureStore {
	return &YAMLStructureStore{path: path}
}

func (s *YAMLStructureStore) Find(_ context.Context, name string) ([]domain.BlindLevel, error) {
	all, err := s.read()
	if err != nil {
		return nil, err
	}
	for key, levels := range all {
		if strings.EqualFold(key, strings.TrimSpace(name)) {
			for _, l := range levels {
				if err := l.Validate(); err != nil {
					return nil, fmt.Errorf("structure %s: %w", key, err)
				}
			}
			return levels, nil
		}
	}
	return nil, fmt.Errorf("%w: blind structure %q", apperrors.ErrNotFound, name)
}

func (s *YAMLStructureStore) Names(context.Context) ([]string, error) {
	all, err := s.read()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *YAMLStructureStore) read() (map[string][]domain.BlindLevel, error) {
	payload, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string][]domain.BlindLevel{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read structures: %w", err)
	}
	out := map[string][]domain.BlindLevel{}
	if err := yaml.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode structures %s: %w", s.path, err)
	}
	return out, nil
}
