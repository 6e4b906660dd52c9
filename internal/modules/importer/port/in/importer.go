package in

import (
	"context"

	"pokerlog/internal/modules/importer/dto"
)

type Usecase interface {
	ImportFile(ctx context.Context, input dto.ImportFileInput) (dto.ReportOutput, error)
	ImportText(ctx context.Context, input dto.ImportTextInput) (dto.ReportOutput, error)
}
