package domain

// Warning explains why a row was skipped, or what was adjusted in a row that was
// kept. Row counts records from 1 with the header as row 1.
type Warning struct {
	Row     int
	Reason  string
	Skipped bool
}

type Report struct {
	CashSessionsCreated int
	TournamentsCreated  int
	RowsSkipped         int
	Warnings            []Warning
}

func (r *Report) skip(row int, reason string) {
	r.RowsSkipped++
	r.Warnings = append(r.Warnings, Warning{Row: row, Reason: reason, Skipped: true})
}

func (r *Report) note(row int, reason string) {
	r.Warnings = append(r.Warnings, Warning{Row: row, Reason: reason})
}

func (r Report) Created() int {
	return r.CashSessionsCreated + r.TournamentsCreated
}
