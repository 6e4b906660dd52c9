package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pokerlog/internal/modules/session/domain"
	sessionout "pokerlog/internal/modules/session/port/out"
	apperrors "pokerlog/internal/platform/errors"
)

type FileActiveSlotStore struct {
	path string
}

func NewFileActiveSlotStore(dataDir string) sessionout.ActiveSlotStore {
	return &FileActiveSlotStore{path: filepath.Join(dataDir, ".pokerlog", "active-session.json")}
}

func (s *FileActiveSlotStore) SaveActive(_ context.Context, slot domain.ActiveSlot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create active slot dir: %w", err)
	}
	payload, err := json.MarshalIndent(slot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal active slot: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write active slot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace active slot: %w", err)
	}
	return nil
}

func (s *FileActiveSlotStore) LoadActive(_ context.Context) (domain.ActiveSlot, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ActiveSlot{}, apperrors.ErrNoActiveSession
		}
		return domain.ActiveSlot{}, fmt.Errorf("read active slot: %w", err)
	}
	slot := domain.ActiveSlot{}
	if err := json.Unmarshal(payload, &slot); err != nil {
		return domain.ActiveSlot{}, fmt.Errorf("decode active slot: %w", err)
	}
	if slot.SessionID == "" {
		return domain.ActiveSlot{}, apperrors.ErrNoActiveSession
	}
	return slot, nil
}

func (s *FileActiveSlotStore) ClearActive(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear active slot: %w", err)
	}
	return nil
}
