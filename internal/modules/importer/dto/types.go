package dto

type ImportFileInput struct {
	Path string `validate:"required"`
}

type ImportTextInput struct {
	Text string `validate:"required"`
}

type WarningOutput struct {
	Row     int
	Reason  string
	Skipped bool
}

type ReportOutput struct {
	CashSessionsCreated int
	TournamentsCreated  int
	RowsSkipped         int
	Warnings            []WarningOutput
	SessionIDs          []string
}
