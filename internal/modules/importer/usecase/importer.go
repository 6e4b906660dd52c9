package usecase

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"pokerlog/internal/modules/importer/domain"
	importerdto "pokerlog/internal/modules/importer/dto"
	importerin "pokerlog/internal/modules/importer/port/in"
	importerout "pokerlog/internal/modules/importer/port/out"
	"pokerlog/internal/modules/importer/service"
	sessiondomain "pokerlog/internal/modules/session/domain"
	apperrors "pokerlog/internal/platform/errors"
	"pokerlog/internal/platform/logging"
)

type Interactor struct {
	svc      *service.ImportService
	source   importerout.Source
	validate *validator.Validate
	logger   *zap.Logger
}

func NewInteractor(svc *service.ImportService, source importerout.Source, logger *zap.Logger) importerin.Usecase {
	return &Interactor{
		svc:      svc,
		source:   source,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logging.OrNop(logger).Named("import"),
	}
}

func (i *Interactor) ImportFile(ctx context.Context, input importerdto.ImportFileInput) (importerdto.ReportOutput, error) {
	if err := i.validate.Struct(input); err != nil {
		return importerdto.ReportOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	text, err := i.source.Read(ctx, input.Path)
	if err != nil {
		return importerdto.ReportOutput{}, err
	}
	i.logger.Debug("import file read", zap.String("path", input.Path), zap.Int("bytes", len(text)))
	return i.run(ctx, text)
}

func (i *Interactor) ImportText(ctx context.Context, input importerdto.ImportTextInput) (importerdto.ReportOutput, error) {
	if err := i.validate.Struct(input); err != nil {
		return importerdto.ReportOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return i.run(ctx, input.Text)
}

func (i *Interactor) run(ctx context.Context, text string) (importerdto.ReportOutput, error) {
	result, err := i.svc.Import(ctx, text)
	out := reportOutput(result)
	for _, w := range result.Report.Warnings {
		i.logger.Debug("import row warning", zap.Int("row", w.Row), zap.String("reason", w.Reason), zap.Bool("skipped", w.Skipped))
	}
	if err != nil {
		i.logger.Warn("import interrupted", zap.Int("created", result.Report.Created()), zap.Error(err))
		return out, err
	}
	i.logger.Info("import finished",
		zap.Int("cash_sessions", result.Report.CashSessionsCreated),
		zap.Int("tournaments", result.Report.TournamentsCreated),
		zap.Int("rows_skipped", result.Report.RowsSkipped),
	)
	return out, nil
}

func reportOutput(result domain.Result) importerdto.ReportOutput {
	return importerdto.ReportOutput{
		CashSessionsCreated: result.Report.CashSessionsCreated,
		TournamentsCreated:  result.Report.TournamentsCreated,
		RowsSkipped:         result.Report.RowsSkipped,
		Warnings: lo.Map(result.Report.Warnings, func(w domain.Warning, _ int) importerdto.WarningOutput {
			return importerdto.WarningOutput{Row: w.Row, Reason: w.Reason, Skipped: w.Skipped}
		}),
		SessionIDs: lo.FilterMap(result.Sessions, func(s *sessiondomain.Session, _ int) (string, bool) {
			return s.ID, s.ID != ""
		}),
	}
}
