package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pokerlog/internal/bootstrap"
	sessiondto "pokerlog/internal/modules/session/dto"
)

type sessionAction func(ctx context.Context, app *bootstrap.App) (sessiondto.SessionOutput, error)

// runPrint wires the app, runs action and prints the resulting session.
func runPrint(opts *rootOptions, cmd *cobra.Command, action sessionAction) error {
	return withApp(opts, func(ctx context.Context, app *bootstrap.App) error {
		out, err := action(ctx, app)
		if err != nil {
			return err
		}
		printSession(cmd.OutOrStdout(), out)
		return nil
	})
}

func newSessionCmd(opts *rootOptions) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Live session lifecycle"}
	session.AddCommand(
		newSessionNewCmd(opts),
		newSessionStartCmd(opts),
		simpleSessionCmd(opts, "pause", "Pause the active session", func(ctx context.Context, app *bootstrap.App) (sessiondto.SessionOutput, error) {
			return app.SessionCLI.Pause(ctx)
		}),
		simpleSessionCmd(opts, "resume", "Resume the paused session", func(ctx context.Context, app *bootstrap.App) (sessiondto.SessionOutput, error) {
			return app.SessionCLI.Resume(ctx)
		}),
		simpleSessionCmd(opts, "rebuy", "Record a tournament rebuy", func(ctx context.Context, app *bootstrap.App) (sessiondto.SessionOutput, error) {
			return app.SessionCLI.Rebuy(ctx)
		}),
		newSessionStackCmd(opts),
		newSessionMessageCmd(opts),
		newSessionAddOnCmd(opts),
		newSessionBountyCmd(opts),
		newSessionFieldCmd(opts),
		newSessionLevelCmd(opts),
		newSessionNoteCmd(opts),
		newSessionCompleteCmd(opts),
		newSessionShowCmd(opts),
		newSessionListCmd(opts),
		newSessionDeleteCmd(opts),
		newSessionStructuresCmd(opts),
	)
	return session
}

func simpleSessionCmd(opts *rootOptions, use, short string, action sessionAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrint(opts, cmd, action)
		},
	}
}

func newSessionNewCmd(opts *rootOptions) *cobra.Command {
	var (
		input  sessiondto.CreateInput
		levels []string
		start  bool
	)
	cmd := &cobra.Command{
		Use:   "new --kind <tournament|cash>",
		Short: "Create a session in setup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for i, raw := range levels {
				level, err := parseLevel(raw)
				if err != nil {
					return err
				}
				level.LevelNumber = i + 1
				input.Levels = append(input.Levels, level)
			}
			return runPrint(opts, cmd, func(ctx context.Context, app *bootstrap.App) (sessiondto.SessionOutput, error) {
				out, err := app.SessionCLI.Create(ctx, input)
				if err != nil || !start {
					return out, err
				}
				return app.SessionCLI.Start(ctx, out.ID)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&input.Kind, "kind", "tournament", "session kind: tournament|cash")
	f.StringVar(&input.GameType, "game", "", "game type (defaults to config)")
	f.StringVar(&input.Stakes, "stakes", "", "stakes label")
	f.StringVar(&input.Location, "location", "", "venue")
	f.StringVar(&input.Notes, "notes", "", "free-form notes")
	f.Int64Var(&input.BuyIn, "buy-in", 0, "buy-in (tournament) or initial buy-in total (cash)")
	f.Int64Var(&input.EntryFee, "fee", 0, "tournament entry fee")
	f.Int64Var(&input.Deductions, "deductions", 0, "tournament deductions")
	f.Int64Var(&input.BountyAmount, "bounty", 0, "bounty value per knockout")
	f.Int64Var(&input.Guarantee, "guarantee", 0, "guaranteed prize pool")
	f.Int64Var(&input.StartingChips, "chips", 0, "starting chips (defaults to config)")
	f.IntVar(&input.FieldSize, "field", 0, "entrants")
	f.Float64Var(&input.PayoutPercent, "payout-percent", 0, "share of the field paid (defaults to config)")
	f.StringVar(&input.Structure, "structure", "", "named blind structure template")
	f.StringArrayVar(&levels, "level", nil, "blind level sb/bb[/ante][@minutes] or break[@minutes], repeatable")
	f.BoolVar(&start, "start", false, "start immediately")
	return cmd
}

func newSessionStartCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start <id>",
		Short: "Start a session and make it the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrint(opts, cmd, func(ctx context.Context, app *bootstrap.App) (sessiondto.SessionOutput, error) {
				return app.SessionCLI.Start(ctx, args[0])
			})
		},
	}
}

func newSessionStackCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stack <chips|text>",
		Short: "Record a stack observation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrint(opts, cmd, func(ctx context.Context, app *bootstrap.App) (sessiondto.SessionOutput, error) {
				return app.SessionCLI.Stack(ctx, strings.Join(args, " "))
			})
		},
	}
}

func newSessionMessageCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "message <text>",
		Short: "Record a stack read out of a chat message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrint(opts, cmd, func(ctx context.Context, app *bootstrap.App) (sessiondto.SessionOutput, error) {
				return app.SessionCLI.Message(ctx, strings.Join(args, " "))
			})
		},
	}
}

func newSessionAddOnCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "addon <amount>",
		Short: "Add money to a cash game buy-in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			return runPrint(opts, cmd, func(ctx context.Context, app *bootstrap.App) (sessiondto.SessionOutput, error) {
				return app.SessionCLI.AddOn(ctx, amount)
			})
		},
	}
}

func newSessionBountyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bounty [count]",
		Short: "Record collected bounties",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid count %q", args[0])
				}
				count = n
			}
			return runPrint(opts, cmd, func(ctx context.Context, app *bootstrap.App) (sessiondto.SessionOutput, error) {
				return app.SessionCLI.Bounty(ctx, count)
			})
		},
	}
}

func newSessionFieldCmd(opts *rootOptions) *cobra.Command {
	var entrants, remaining int
	cmd := &cobra.Command{
		Use:   "field",
		Short: "Update entrants and players remaining",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrint(opts, cmd, func(ctx context.Context, app *bootstrap.App) (sessiondto.SessionOutput, error) {
				return app.SessionCLI.Field(ctx, entrants, remaining)
			})
		},
	}
	cmd.Flags().IntVar(&entrants, "entrants", 0, "field size (0 keeps the current value)")
	cmd.Flags().IntVar(&remaining, "remaining", 0, "players remaining (0 keeps the current value)")
	return cmd
}

func newSessionLevelCmd(opts *rootOptions) *cobra.Command {
	levelCmd := &cobra.Command{Use: "level", Short: "Blind schedule commands"}
	levelCmd.AddCommand(simpleSessionCmd(opts, "next", "Advance to the next blind level", func(ctx context.Context, app *bootstrap.App) (sessiondto.SessionOutput, error) {
		return app.SessionCLI.NextLevel(ctx)
	}))

	var number int
	add := &cobra.Command{
		Use:   "add <level>",
		Short: "Add a level: sb/bb[/ante][@minutes] or break[@minutes]",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(args[0])
			if err != nil {
				return err
			}
			level.LevelNumber = number
			return runPrint(opts, cmd, func(ctx context.Context, app *bootstrap.App) (sessiondto.SessionOutput, error) {
				return app.SessionCLI.AddLevel(ctx, level)
			})
		},
	}
	add.Flags().IntVar(&number, "number", 0, "level number (0 appends after the last level)")

	rm := &cobra.Command{
		Use:   "rm <number>",
		Short: "Remove a blind level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid level number %q", args[0])
			}
			return runPrint(opts, cmd, func(ctx context.Context, app *bootstrap.App) (sessiondto.SessionOutput, error) {
				return app.SessionCLI.RemoveLevel(ctx, n)
			})
		},
	}
	levelCmd.AddCommand(add, rm)
	return levelCmd
}

func newSessionNoteCmd(opts *rootOptions) *cobra.Command {
	var stackBefore int64
	cmd := &cobra.Command{
		Use:   "note <text>",
		Short: "Attach a hand note to the active session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrint(opts, cmd, func(ctx context.Context, app *bootstrap.App) (sessiondto.SessionOutput, error) {
				return app.SessionCLI.Note(ctx, strings.Join(args, " "), stackBefore)
			})
		},
	}
	cmd.Flags().Int64Var(&stackBefore, "stack", -1, "stack before the hand (defaults to the latest observation)")
	return cmd
}

func newSessionCompleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <payout|cash-out>",
		Short: "Complete the active session and write its recap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			return withApp(opts, func(ctx context.Context, app *bootstrap.App) error {
				recap, err := app.SessionCLI.Complete(ctx, amount)
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), recap.Session)
				if recap.Path != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "recap: %s\n", recap.Path)
				}
				return nil
			})
		},
	}
}

func newSessionShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a session (defaults to the active one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runPrint(opts, cmd, func(ctx context.Context, app *bootstrap.App) (sessiondto.SessionOutput, error) {
				return app.SessionCLI.Show(ctx, id)
			})
		},
	}
}

func newSessionListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(ctx context.Context, app *bootstrap.App) error {
				sessions, err := app.SessionCLI.List(ctx)
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				for _, s := range sessions {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s %s\t%s\t%s\n",
						s.ID, s.StartTime.Format("2006-01-02"), s.Kind, s.GameType, s.Stakes, s.Status, formatOptional(s.Profit))
				}
				return nil
			})
		},
	}
}

func newSessionDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session and everything it owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.SessionCLI.Delete(ctx, args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newSessionStructuresCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "structures",
		Short: "List named blind structures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(ctx context.Context, app *bootstrap.App) error {
				names, err := app.SessionCLI.Structures(ctx)
				if err != nil {
					return err
				}
				if len(names) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no structures")
					return nil
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
				return nil
			})
		},
	}
}

// parseLevel reads "sb/bb[/ante][@minutes]" or "break[@minutes]".
func parseLevel(raw string) (sessiondto.LevelInput, error) {
	out := sessiondto.LevelInput{}
	body, minutes, hasMinutes := strings.Cut(strings.TrimSpace(raw), "@")
	if hasMinutes {
		m, err := strconv.Atoi(minutes)
		if err != nil {
			return out, fmt.Errorf("invalid level minutes in %q", raw)
		}
		out.DurationMinutes = m
	}
	if strings.EqualFold(body, "break") {
		out.IsBreak = true
		return out, nil
	}
	parts := strings.Split(body, "/")
	if len(parts) < 2 || len(parts) > 3 {
		return out, fmt.Errorf("invalid level %q: want sb/bb[/ante]", raw)
	}
	values := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return out, fmt.Errorf("invalid level %q: %w", raw, err)
		}
		values[i] = v
	}
	out.SmallBlind, out.BigBlind = values[0], values[1]
	if len(values) == 3 {
		out.Ante = values[2]
	}
	return out, nil
}

func printSession(w io.Writer, s sessiondto.SessionOutput) {
	_, _ = fmt.Fprintf(w, "id: %s\nkind: %s\nstatus: %s\ngame: %s\nstakes: %s\nlocation: %s\n", s.ID, s.Kind, s.Status, s.GameLabel, s.Stakes, s.Location)
	if !s.StartTime.IsZero() {
		_, _ = fmt.Fprintf(w, "started: %s\n", s.StartTime.Format("2006-01-02 15:04"))
	}
	m := s.Metrics
	if s.Kind == "cash" {
		_, _ = fmt.Fprintf(w, "buy-in total: %d\ncash-out: %s\n", s.BuyInTotal, formatOptional(s.TerminalAmount))
	} else {
		_, _ = fmt.Fprintf(w, "buy-in: %d+%d\nrebuys: %d\nbounties: %d\n", s.BuyIn, s.EntryFee, s.RebuysUsed, s.BountiesCollected)
		if lvl := s.CurrentLevel; lvl != nil {
			if lvl.IsBreak {
				_, _ = fmt.Fprintf(w, "level: break %s\n", lvl.BreakLabel)
			} else {
				_, _ = fmt.Fprintf(w, "level: %d (%d/%d ante %d)\n", lvl.DisplayNumber, lvl.SmallBlind, lvl.BigBlind, lvl.Ante)
			}
		}
		_, _ = fmt.Fprintf(w, "stack: %d\nbb: %.1f (%s)\nm: %.1f (%s) %s\n", m.LatestStack, m.BB, m.BBZone, m.M, m.MZone, m.Advice)
		if s.FieldSize > 0 {
			_, _ = fmt.Fprintf(w, "field: %d/%d avg=%d pool=%d bubble=%d\n", s.PlayersRemaining, s.FieldSize, m.AverageStack, m.PrizePool, m.BubbleDistance)
		}
		_, _ = fmt.Fprintf(w, "payout: %s\n", formatOptional(s.TerminalAmount))
	}
	_, _ = fmt.Fprintf(w, "duration: %s\nprofit: %s\n", m.Duration.Round(60e9), formatOptional(m.Profit))
	if m.HourlyRate != nil {
		_, _ = fmt.Fprintf(w, "hourly: %.2f\n", *m.HourlyRate)
	} else {
		_, _ = fmt.Fprintln(w, "hourly: -")
	}
}

func formatOptional(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}
