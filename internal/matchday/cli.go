package matchday

import (
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/okian/kickoff/internal/domain/game"
	"github.com/okian/kickoff/internal/domain/sequencer"
	"github.com/okian/kickoff/pkg/logger"
)

// Version is reported by --version.
var Version = "dev"

// App builds the matchday command line. Command output goes to out.
func App(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "matchday",
		Usage:   "manage a kickoff career from the terminal",
		Version: Version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   DefaultBaseURL,
				Usage:   "base URL of the kickoff server",
				EnvVars: []string{"KICKOFF_URL"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: DefaultTimeout,
				Usage: "HTTP request timeout",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				return logger.SetLevelString("debug")
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "start",
				Usage:     "start a career",
				ArgsUsage: "<team name>",
				Action: func(c *cli.Context) error {
					if err := need(c, 1); err != nil {
						return err
					}
					sess, err := newClient(c).Start(c.Context, strings.Join(c.Args().Slice(), " "))
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "session: %s\n", sess.ID)
					PrintState(c.App.Writer, sess.State)
					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "print the career and squad",
				ArgsUsage: "<session>",
				Action: func(c *cli.Context) error {
					if err := need(c, 1); err != nil {
						return err
					}
					sess, err := newClient(c).Session(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					PrintState(c.App.Writer, sess.State)
					PrintSquad(c.App.Writer, sess.State.Team)
					return nil
				},
			},
			{
				Name:      "market",
				Usage:     "open the transfer market",
				ArgsUsage: "<session>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "refresh", Usage: "list a new batch of free agents"},
				},
				Action: func(c *cli.Context) error {
					if err := need(c, 1); err != nil {
						return err
					}
					client, id := newClient(c), c.Args().First()
					st, err := client.SetView(c.Context, id, game.ViewTransfer)
					if err == nil && c.Bool("refresh") {
						st, err = client.RefreshMarket(c.Context, id)
					}
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "budget %s\n", Money(st.Team.Budget))
					PrintMarket(c.App.Writer, st.Market)
					return nil
				},
			},
			{
				Name:      "buy",
				Usage:     "sign a listed player",
				ArgsUsage: "<session> <player>",
				Action: func(c *cli.Context) error {
					if err := need(c, 2); err != nil {
						return err
					}
					st, err := newClient(c).Buy(c.Context, c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return err
					}
					PrintState(c.App.Writer, st)
					return nil
				},
			},
			{
				Name:      "sell",
				Usage:     "release a squad player",
				ArgsUsage: "<session> <player>",
				Action: func(c *cli.Context) error {
					if err := need(c, 2); err != nil {
						return err
					}
					st, err := newClient(c).Sell(c.Context, c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return err
					}
					PrintState(c.App.Writer, st)
					return nil
				},
			},
			{
				Name:      "tactic",
				Usage:     "set the formation (" + strings.Join(game.Tactics, ", ") + ")",
				ArgsUsage: "<session> <formation>",
				Action: func(c *cli.Context) error {
					if err := need(c, 2); err != nil {
						return err
					}
					st, err := newClient(c).ChangeTactic(c.Context, c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return err
					}
					PrintState(c.App.Writer, st)
					return nil
				},
			},
			{
				Name:      "advance",
				Usage:     "queue the next match",
				ArgsUsage: "<session>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "wait", Usage: "block until the simulation is ready"},
				},
				Action: func(c *cli.Context) error {
					if err := need(c, 1); err != nil {
						return err
					}
					client, id := newClient(c), c.Args().First()
					job, err := client.Advance(c.Context, id)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "queued: %s\n", job)
					if !c.Bool("wait") {
						return nil
					}
					st, err := client.WaitLive(c.Context, id, DefaultPoll)
					if err != nil {
						return err
					}
					PrintState(c.App.Writer, st)
					return nil
				},
			},
			{
				Name:      "watch",
				Usage:     "follow the live match commentary",
				ArgsUsage: "<session>",
				Action: func(c *cli.Context) error {
					if err := need(c, 1); err != nil {
						return err
					}
					return newClient(c).Watch(c.Context, c.Args().First(), func(u sequencer.Update) error {
						PrintUpdate(c.App.Writer, u)
						return nil
					})
				},
			},
			{
				Name:      "finish",
				Usage:     "close the played match",
				ArgsUsage: "<session>",
				Action: func(c *cli.Context) error {
					if err := need(c, 1); err != nil {
						return err
					}
					st, err := newClient(c).Finish(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					PrintState(c.App.Writer, st)
					return nil
				},
			},
			{
				Name:      "advice",
				Usage:     "ask the assistant for a game plan",
				ArgsUsage: "<session>",
				Action: func(c *cli.Context) error {
					if err := need(c, 1); err != nil {
						return err
					}
					advice, err := newClient(c).Advice(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, advice)
					return nil
				},
			},
			{
				Name:      "quit",
				Usage:     "end a career",
				ArgsUsage: "<session>",
				Action: func(c *cli.Context) error {
					if err := need(c, 1); err != nil {
						return err
					}
					return newClient(c).Quit(c.Context, c.Args().First())
				},
			},
			{
				Name:  "season",
				Usage: "start a career and play several matchweeks",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "team", Value: DefaultTeamName, Usage: "team to manage"},
					&cli.IntFlag{Name: "weeks", Value: DefaultWeeks, Usage: "matchweeks to play"},
					&cli.StringFlag{Name: "tactic", Usage: "formation to use"},
					&cli.BoolFlag{Name: "buy", Usage: "sign the cheapest affordable free agent first"},
					&cli.DurationFlag{Name: "poll", Value: DefaultPoll, Usage: "poll interval while a match is simulated"},
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "skip live commentary"},
					&cli.BoolFlag{Name: "keep", Usage: "keep the career on the server"},
				},
				Action: func(c *cli.Context) error {
					cfg := &Config{
						BaseURL: c.String("url"),
						Timeout: c.Duration("timeout"),
						Team:    c.String("team"),
						Weeks:   c.Int("weeks"),
						Tactic:  c.String("tactic"),
						Buy:     c.Bool("buy"),
						Poll:    c.Duration("poll"),
						Quiet:   c.Bool("quiet"),
						Keep:    c.Bool("keep"),
					}
					if cfg.Weeks < 1 {
						return fmt.Errorf("%w: weeks must be positive", ErrUsage)
					}
					stats, err := Season(c.Context, cfg, c.App.Writer)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "W%d D%d L%d  goals %d-%d  points %d  budget %s\n",
						stats.Won, stats.Drawn, stats.Lost, stats.GoalsFor, stats.GoalsAgainst, stats.Points(), Money(stats.Budget))
					return nil
				},
			},
		},
	}
}

func newClient(c *cli.Context) *Client {
	return NewClient(c.String("url"), c.Duration("timeout"))
}

func need(c *cli.Context, n int) error {
	if c.NArg() < n {
		return fmt.Errorf("%w: %s %s", ErrUsage, c.Command.Name, c.Command.ArgsUsage)
	}
	return nil
}
