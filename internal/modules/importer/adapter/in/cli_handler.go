package in

import (
	"context"

	importerdto "pokerlog/internal/modules/importer/dto"
	importerin "pokerlog/internal/modules/importer/port/in"
)

type CLIHandler struct {
	usecase importerin.Usecase
}

func NewCLIHandler(usecase importerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) ImportFile(ctx context.Context, path string) (importerdto.ReportOutput, error) {
	return h.usecase.ImportFile(ctx, importerdto.ImportFileInput{Path: path})
}
