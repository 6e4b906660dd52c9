package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pokerlog/internal/modules/session/domain"
	sessionout "pokerlog/internal/modules/session/port/out"
	"pokerlog/internal/platform/markdown"
	"pokerlog/internal/platform/slug"
)

// VaultRecapWriter renders completed sessions as markdown notes under recaps/YYYY/MM/DD.
type VaultRecapWriter struct {
	dir string
}

func NewVaultRecapWriter(recapDir string) sessionout.RecapWriter {
	return &VaultRecapWriter{dir: recapDir}
}

func (w *VaultRecapWriter) Write(_ context.Context, session domain.Session, snap domain.Snapshot) (string, error) {
	date := session.StartTime
	if date.IsZero() {
		date = session.CreatedAt
	}
	dir := filepath.Join(w.dir, date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create recap dir: %w", err)
	}
	title := strings.TrimSpace(session.GameType.Label() + " " + session.Stakes + " " + session.Location)
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.md", date.Format("150405"), slug.Make(session.GameType.RawValue(), session.Stakes, session.Location)))

	meta := markdown.Frontmatter{
		{Key: "schema_version", Value: domain.SchemaVersion},
		{Key: "id", Value: session.ID},
		{Key: "kind", Value: string(session.Kind)},
		{Key: "status", Value: string(session.Status)},
		{Key: "game_type", Value: session.GameType.RawValue()},
		{Key: "stakes", Value: session.Stakes},
		{Key: "location", Value: session.Location},
		{Key: "start_time", Value: session.StartTime.Format(time.RFC3339)},
		{Key: "duration_minutes", Value: int(snap.Duration.Minutes())},
		{Key: "imported", Value: session.IsImported},
	}
	if session.EndTime != nil {
		meta.Set("end_time", session.EndTime.Format(time.RFC3339))
	}
	if snap.Profit != nil {
		meta.Set("profit", *snap.Profit)
	}
	if snap.HourlyRate != nil {
		meta.Set("hourly_rate", decimal.NewFromFloat(*snap.HourlyRate).Round(2).InexactFloat64())
	}
	if session.IsTournament() {
		meta.Set("buy_in", session.BuyIn+session.EntryFee)
		meta.Set("rebuys", session.RebuysUsed)
		meta.Set("bounties", session.BountiesCollected)
		if session.Payout != nil {
			meta.Set("payout", *session.Payout)
		}
	} else {
		meta.Set("buy_in_total", session.BuyInTotal)
		if session.CashOut != nil {
			meta.Set("cash_out", *session.CashOut)
		}
	}

	rendered, err := markdown.RenderFrontmatter(meta, recapBody(title, session, snap))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write recap note: %w", err)
	}
	return path, nil
}

func recapBody(title string, session domain.Session, snap domain.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Duration: %d minutes\n", int(snap.Duration.Minutes()))
	if snap.Profit != nil {
		fmt.Fprintf(&b, "- Profit: %d\n", *snap.Profit)
	}
	if snap.HourlyRate != nil {
		fmt.Fprintf(&b, "- Hourly: %.2f\n", *snap.HourlyRate)
	}
	if session.IsTournament() && session.FieldSize > 0 {
		fmt.Fprintf(&b, "- Field: %d (prize pool %d)\n", session.FieldSize, snap.PrizePool)
	}

	if len(session.StackEntries) > 0 {
		b.WriteString("\n## Stack\n\n")
		for _, e := range session.StackEntries {
			fmt.Fprintf(&b, "- %s %d", e.Timestamp.Format("15:04"), e.ChipCount)
			if e.BigBlind > 0 {
				fmt.Fprintf(&b, " @ %d/%d", e.SmallBlind, e.BigBlind)
			}
			b.WriteString("\n")
		}
	}
	if len(session.HandNotes) > 0 {
		b.WriteString("\n## Hands\n\n")
		for _, n := range session.HandNotes {
			fmt.Fprintf(&b, "- %s (%d): %s\n", n.Timestamp.Format("15:04"), n.StackBefore, n.Text)
		}
	}
	if strings.TrimSpace(session.Notes) != "" {
		fmt.Fprintf(&b, "\n## Notes\n\n%s\n", strings.TrimSpace(session.Notes))
	}
	return b.String()
}
