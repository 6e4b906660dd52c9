package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokerlog/internal/modules/importer/domain"
	sessiondomain "pokerlog/internal/modules/session/domain"
)

const header = "Date,Format,Variant,Stakes,Location,Buy-in ($),Cash-out ($),Profit/Loss,Duration (h),Hourly,Notes"

func TestParseSkipsBadBuyInAndReportsRow(t *testing.T) {
	t.Parallel()
	text := header + "\n" +
		"3/1/2026,Cash,NLH,1/2,Bellagio,200,150,-50,4,-12.5,\n" +
		"3/2/2026,Cash,NLH,1/2,Bellagio,N/A,100,,3,,\n" +
		"3/3/2026,Cash Game,NLH,2/5,Aria,300,450,150,5,30,good night\n"

	result, err := domain.NewParser().Parse(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Report.CashSessionsCreated)
	assert.Equal(t, 0, result.Report.TournamentsCreated)
	assert.Equal(t, 1, result.Report.RowsSkipped)
	require.Len(t, result.Report.Warnings, 1)
	assert.Equal(t, 3, result.Report.Warnings[0].Row)
	assert.Equal(t, "invalid buy-in", result.Report.Warnings[0].Reason)

	require.Len(t, result.Sessions, 2)
	first := result.Sessions[0]
	assert.Equal(t, sessiondomain.StatusCompleted, first.Status)
	assert.True(t, first.IsImported)
	assert.Equal(t, int64(200), first.BuyInTotal)
	require.NotNil(t, first.CashOut)
	assert.Equal(t, int64(150), *first.CashOut)
	require.NotNil(t, first.EndTime)
	assert.Equal(t, 4*time.Hour, first.EndTime.Sub(first.StartTime))
	profit := sessiondomain.Profit(result.Sessions[1])
	require.NotNil(t, profit)
	assert.Equal(t, int64(150), *profit)
	assert.Equal(t, "good night", result.Sessions[1].Notes)
}

func TestParseTournamentPLO(t *testing.T) {
	t.Parallel()
	text := header + "\n" + `"Jan 5, 2026",Tournament,PLO,,"Wynn, Las Vegas",$100,,,,,`

	result, err := domain.NewParser().Parse(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Report.TournamentsCreated)
	require.Len(t, result.Sessions, 1)
	s := result.Sessions[0]
	assert.Equal(t, sessiondomain.KindTournament, s.Kind)
	assert.Equal(t, int64(100), s.BuyIn)
	assert.Equal(t, "PLO", s.GameType.RawValue())
	assert.Equal(t, "Wynn, Las Vegas", s.Location)
	assert.Nil(t, s.Payout)
	assert.Nil(t, s.EndTime)
	assert.Nil(t, sessiondomain.Profit(s))
}

func TestParseRowFailures(t *testing.T) {
	t.Parallel()
	text := header + "\n" +
		"3/1/2026,Cash,NLH\n" +
		"\n" +
		"someday,Cash,NLH,1/2,Home,100,100,0,1,0,\n" +
		"3/1/2026,Cash,NLH,1/2,Home,(100),100,0,1,0,\n" +
		"2026-03-04,Cash,Omaha Hi-Lo,1/2,Home,100,,,,,\n"

	result, err := domain.NewParser().Parse(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Report.CashSessionsCreated)
	assert.Equal(t, 3, result.Report.RowsSkipped)
	rows := []int{}
	for _, w := range result.Report.Warnings {
		rows = append(rows, w.Row)
	}
	assert.Equal(t, []int{2, 4, 5}, rows)
	assert.Contains(t, result.Report.Warnings[0].Reason, "not enough columns")
	assert.Contains(t, result.Report.Warnings[1].Reason, "invalid date")
	assert.Equal(t, "PLO", result.Sessions[0].GameType.RawValue())
	assert.Nil(t, result.Sessions[0].CashOut)
}

func TestParseStopsOnCancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := domain.NewParser().Parse(ctx, header+"\n3/1/2026,Cash,NLH,1/2,Home,100,100,0,1,0,\n")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Sessions)
}

func TestSplitRowQuoting(t *testing.T) {
	t.Parallel()
	cases := map[string][]string{
		`a,b,c`:                 {"a", "b", "c"},
		`"a,b",c`:               {"a,b", "c"},
		`"say ""hi""", x`:       {`say "hi"`, "x"},
		`a,,`:                   {"a", "", ""},
		`"$1,200.00","(1,000)"`: {"$1,200.00", "(1,000)"},
	}
	for in, want := range cases {
		assert.Equal(t, want, domain.SplitRow(in, ','), in)
	}
}

func TestParseAndRoundMoney(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"$100", 100, true},
		{"1,234", 1234, true},
		{"(250)", -250, true},
		{"$(1,000.50)", 0, false},
		{"($1,000.50)", -1001, true},
		{"€ 75.4", 75, true},
		{"$100.50", 101, true},
		{"$0.40", 1, true},
		{"(0.40)", -1, true},
		{"0.00", 0, true},
		{"N/A", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		d, err := domain.ParseDecimal(tc.in)
		assert.Equal(t, tc.ok, err == nil, tc.in)
		if tc.ok {
			got, _ := domain.RoundMoney(d)
			assert.Equal(t, tc.want, got, tc.in)
		}
	}
}

func TestParseRoundsAmountsWithWarning(t *testing.T) {
	t.Parallel()
	text := header + "\n" +
		"3/1/2026,Cash,NLH,1/2,Home,$100.50,$0.40,,2,,\n" +
		"3/2/2026,Tournament,NLH,,Home,$0.40,,,,,\n" +
		"3/3/2026,Cash,NLH,1/2,Home,$0.00,10,,,,\n"

	result, err := domain.NewParser().Parse(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, result.Sessions, 2)
	assert.Equal(t, int64(101), result.Sessions[0].BuyInTotal)
	require.NotNil(t, result.Sessions[0].CashOut)
	assert.Equal(t, int64(1), *result.Sessions[0].CashOut)
	assert.Equal(t, int64(1), result.Sessions[1].BuyIn)

	assert.Equal(t, 1, result.Report.RowsSkipped)
	require.Len(t, result.Report.Warnings, 4)
	assert.Equal(t, domain.Warning{Row: 2, Reason: "buy-in 100.5 rounded to 101"}, result.Report.Warnings[0])
	assert.Equal(t, domain.Warning{Row: 2, Reason: "cash-out 0.4 rounded to 1"}, result.Report.Warnings[1])
	assert.Equal(t, domain.Warning{Row: 3, Reason: "buy-in 0.4 rounded to 1"}, result.Report.Warnings[2])
	assert.Equal(t, domain.Warning{Row: 4, Reason: "invalid buy-in", Skipped: true}, result.Report.Warnings[3])
}

func TestParseQuotedNoteSpanningLines(t *testing.T) {
	t.Parallel()
	text := header + "\r\n" +
		"3/1/2026,Cash,NLH,1/2,Home,100,150,50,2,25,\"flopped a set\r\nstacked the \"\"nit\"\"\"\r\n" +
		"3/2/2026,Cash,NLH,1/2,Home,N/A,,,,,\r\n"

	assert.Len(t, domain.Lines(text), 4)
	result, err := domain.NewParser().Parse(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, result.Sessions, 1)
	assert.Equal(t, "flopped a set\nstacked the \"nit\"", result.Sessions[0].Notes)
	require.Len(t, result.Report.Warnings, 1)
	assert.Equal(t, 3, result.Report.Warnings[0].Row)
}

func TestParseDateLayouts(t *testing.T) {
	t.Parallel()
	want := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"3/7/2026", "2026-03-07", "3/7/26", "Mar 7, 2026", "March 7, 2026", "7-Mar-2026", "2026/03/07"} {
		got, ok := domain.ParseDate(in)
		require.True(t, ok, in)
		assert.True(t, want.Equal(got), in)
	}
	_, ok := domain.ParseDate("yesterday")
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	t.Parallel()
	assert.Equal(t, sessiondomain.KindCash, domain.ClassifyFormat("LIVE CASH"))
	assert.Equal(t, sessiondomain.KindTournament, domain.ClassifyFormat("MTT"))
	assert.Equal(t, "PLO", domain.ClassifyVariant("Pot Limit Omaha").RawValue())
	assert.Equal(t, "Mixed", domain.ClassifyVariant("mixed games").RawValue())
	assert.Equal(t, "NLH", domain.ClassifyVariant("Razz").RawValue())
}
