package domain

import (
	"context"
	"fmt"
	"strings"

	sessiondomain "pokerlog/internal/modules/session/domain"
)

// Column positions of the fixed export layout.
const (
	colDate = iota
	colFormat
	colVariant
	colStakes
	colLocation
	colBuyIn
	colCashOut
	colProfit
	colDuration
	colHourly
	colNotes
)

const MinColumns = 9

type Result struct {
	Sessions []*sessiondomain.Session
	Report   Report
}

// Parser turns an exported table into completed, imported sessions. A bad row is
// skipped with a warning and never stops the batch.
type Parser struct {
	Delimiter rune
}

func NewParser() Parser {
	return Parser{Delimiter: ','}
}

// Parse checks ctx between rows and returns what was parsed so far when it is done.
func (p Parser) Parse(ctx context.Context, text string) (Result, error) {
	delim := p.Delimiter
	if delim == 0 {
		delim = ','
	}
	result := Result{}
	lines := Lines(text)
	for i := 1; i < len(lines); i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		row := i + 1
		session, adjusted, reason := parseRow(SplitRow(lines[i], delim))
		if session == nil {
			result.Report.skip(row, reason)
			continue
		}
		for _, note := range adjusted {
			result.Report.note(row, note)
		}
		result.Sessions = append(result.Sessions, session)
		if session.IsTournament() {
			result.Report.TournamentsCreated++
		} else {
			result.Report.CashSessionsCreated++
		}
	}
	return result, nil
}

// parseRow returns the session, notes on amounts it had to round, and the skip
// reason when the row is unusable.
func parseRow(fields []string) (*sessiondomain.Session, []string, string) {
	if len(fields) < MinColumns {
		return nil, nil, fmt.Sprintf("not enough columns (%d)", len(fields))
	}
	start, ok := ParseDate(fields[colDate])
	if !ok {
		return nil, nil, fmt.Sprintf("invalid date %q", fields[colDate])
	}
	amount, err := ParseDecimal(fields[colBuyIn])
	if err != nil || !amount.IsPositive() {
		return nil, nil, "invalid buy-in"
	}
	var adjusted []string
	buyIn, exact := RoundMoney(amount)
	if !exact {
		adjusted = append(adjusted, fmt.Sprintf("buy-in %s rounded to %d", amount, buyIn))
	}

	s := &sessiondomain.Session{
		Kind:       ClassifyFormat(fields[colFormat]),
		Status:     sessiondomain.StatusCompleted,
		GameType:   ClassifyVariant(fields[colVariant]),
		Stakes:     fields[colStakes],
		Location:   fields[colLocation],
		IsImported: true,
		StartTime:  start,
	}
	var final *int64
	if d, err := ParseDecimal(fields[colCashOut]); err == nil && !d.IsNegative() {
		v, exact := RoundMoney(d)
		if !exact {
			adjusted = append(adjusted, fmt.Sprintf("cash-out %s rounded to %d", d, v))
		}
		final = &v
	}
	if s.IsTournament() {
		s.BuyIn = buyIn
		s.Payout = final
	} else {
		s.BuyInTotal = buyIn
		s.CashOut = final
	}
	if d, ok := ParseHours(fields[colDuration]); ok {
		end := start.Add(d)
		s.EndTime = &end
	}
	if len(fields) > colNotes {
		// Unquoted commas in the trailing notes column split it; stitch it back.
		s.Notes = strings.Join(fields[colNotes:], ", ")
	}
	return s, adjusted, ""
}
