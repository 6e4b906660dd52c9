package service

import (
	"context"
	"fmt"

	"pokerlog/internal/modules/importer/domain"
	sessionout "pokerlog/internal/modules/session/port/out"
	"pokerlog/internal/platform/clock"
	"pokerlog/internal/platform/id"
)

// ImportService parses an export and hands every record straight to the session
// repository, bypassing the lifecycle manager.
type ImportService struct {
	clock  clock.Clock
	idGen  id.Generator
	repo   sessionout.Repository
	parser domain.Parser
}

func NewImportService(clock clock.Clock, idGen id.Generator, repo sessionout.Repository) *ImportService {
	return &ImportService{clock: clock, idGen: idGen, repo: repo, parser: domain.NewParser()}
}

// Import inserts each parsed record and saves once. On cancellation the rows
// parsed so far are still inserted and saved.
func (s *ImportService) Import(ctx context.Context, text string) (domain.Result, error) {
	result, parseErr := s.parser.Parse(ctx, text)
	if len(result.Sessions) == 0 {
		return result, parseErr
	}
	now := s.clock.Now()
	for _, session := range result.Sessions {
		session.ID = s.idGen.New()
		session.CreatedAt = now
		if err := session.Validate(); err != nil {
			return result, fmt.Errorf("imported session: %w", err)
		}
		if err := s.repo.Insert(ctx, session); err != nil {
			return result, fmt.Errorf("insert imported session: %w", err)
		}
	}
	saveCtx := ctx
	if parseErr != nil {
		saveCtx = context.WithoutCancel(ctx)
	}
	if err := s.repo.Save(saveCtx); err != nil {
		return result, fmt.Errorf("save imported sessions: %w", err)
	}
	return result, parseErr
}
