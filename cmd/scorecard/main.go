package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	scoringservice "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/application"
	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	scoringcatalog "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/catalog"
	scoringdb "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func main() {
	cliApp := &cli.App{
		Name:  "scorecard",
		Usage: "score golf games from local files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "specs",
				Usage: "directory of extra game spec yaml files",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log service operations",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "score",
				Usage:     "print the leaderboard of a game",
				ArgsUsage: "<game.yaml>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "view", Usage: "gross, net or points"},
					&cli.BoolFlag{Name: "holes", Usage: "also print per-hole points"},
				},
				Action: scoreAction,
			},
			{
				Name:      "import",
				Usage:     "apply a CSV or XLSX scorecard to a game and print the leaderboard",
				ArgsUsage: "<game.yaml> <scorecard>",
				Action:    importAction,
			},
			{
				Name:      "post",
				Usage:     "print the handicap posting for one player",
				ArgsUsage: "<game.yaml> <player-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "score-type", Value: "H", Usage: "H, A or C"},
				},
				Action: postAction,
			},
			{
				Name:      "chart",
				Usage:     "render the running totals chart",
				ArgsUsage: "<game.yaml>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Value: "running_totals.png", Usage: "output PNG path"},
				},
				Action: chartAction,
			},
			{
				Name:   "specs",
				Usage:  "list the available game specs",
				Action: specsAction,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// newService builds a service backed by memory so nothing needs a database.
func newService(c *cli.Context) (*scoringservice.ScoringService, error) {
	catalog, err := scoringcatalog.NewWithSeeds(c.String("specs"))
	if err != nil {
		return nil, err
	}

	level := pterm.LogLevelWarn
	if c.Bool("verbose") {
		level = pterm.LogLevelInfo
	}
	logger := slog.New(pterm.NewSlogHandler(pterm.DefaultLogger.WithLevel(level)))

	return scoringservice.NewScoringService(
		scoringdb.NewMemoryRepository(),
		catalog,
		nil,
		logger,
		scoringservice.NoOpMetrics{},
		nil,
		nil,
	), nil
}

func loadGame(path string) (scoringdomain.Game, error) {
	var game scoringdomain.Game
	data, err := os.ReadFile(path)
	if err != nil {
		return game, fmt.Errorf("failed to read game: %w", err)
	}
	if err := yaml.Unmarshal(data, &game); err != nil {
		return game, fmt.Errorf("failed to decode game %s: %w", path, err)
	}
	if game.ID == "" {
		game.ID = filepath.Base(path)
	}
	return game, nil
}

func argAt(c *cli.Context, i int, name string) (string, error) {
	if c.NArg() <= i {
		return "", fmt.Errorf("missing %s argument", name)
	}
	return c.Args().Get(i), nil
}

func computeFromArgs(c *cli.Context, svc *scoringservice.ScoringService) (*scoringdomain.Scoreboard, error) {
	path, err := argAt(c, 0, "game")
	if err != nil {
		return nil, err
	}
	game, err := loadGame(path)
	if err != nil {
		return nil, err
	}
	result, err := svc.ComputeScoreboard(c.Context, game)
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func scoreAction(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	sb, err := computeFromArgs(c, svc)
	if err != nil {
		return err
	}
	if v := c.String("view"); v != "" {
		view, ok := scoringdomain.ParseView(v)
		if !ok {
			return fmt.Errorf("unknown view %q", v)
		}
		viewed := sb.WithView(view)
		sb = &viewed
	}

	if err := printLeaderboard(sb); err != nil {
		return err
	}
	if c.Bool("holes") {
		if err := printHoles(sb); err != nil {
			return err
		}
	}
	printWarnings(sb.Warnings)
	return nil
}

func importAction(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	gamePath, err := argAt(c, 0, "game")
	if err != nil {
		return err
	}
	cardPath, err := argAt(c, 1, "scorecard")
	if err != nil {
		return err
	}
	game, err := loadGame(gamePath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(cardPath)
	if err != nil {
		return fmt.Errorf("failed to read scorecard: %w", err)
	}

	ctx := c.Context
	if err := saveGame(ctx, svc, game); err != nil {
		return err
	}
	result, err := svc.ImportScorecardIntoGame(ctx, game.ID, filepath.Base(cardPath), data)
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}

	imported := *result.Success
	if err := printLeaderboard(imported.Scoreboard); err != nil {
		return err
	}
	printWarnings(imported.Warnings)
	for _, inv := range imported.Invalidations {
		pterm.Warning.Printfln("hole %d %s for %s: %s", inv.Hole, inv.Name, inv.TeamID, inv.Reason)
	}
	return nil
}

func postAction(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	gamePath, err := argAt(c, 0, "game")
	if err != nil {
		return err
	}
	playerID, err := argAt(c, 1, "player-id")
	if err != nil {
		return err
	}
	game, err := loadGame(gamePath)
	if err != nil {
		return err
	}

	ctx := c.Context
	if err := saveGame(ctx, svc, game); err != nil {
		return err
	}
	result, err := svc.BuildPosting(ctx, scoringservice.PostingRequest{
		GameID:    game.ID,
		PlayerID:  playerID,
		ScoreType: c.String("score-type"),
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}

	payload := *result.Success
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode posting: %w", err)
	}
	fmt.Println(string(out))
	for _, adj := range payload.Adjustments {
		pterm.Info.Printfln("hole %d capped from %d to %d", adj.HoleNumber, adj.RawScore, adj.Adjusted)
	}
	return nil
}

func chartAction(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	sb, err := computeFromArgs(c, svc)
	if err != nil {
		return err
	}
	png, err := svc.RenderRunningTotals(c.Context, sb)
	if err != nil {
		return err
	}
	out := c.String("out")
	if err := os.WriteFile(out, png, 0o644); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	pterm.Success.Printfln("Wrote %s", out)
	return nil
}

func specsAction(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	result, err := svc.ListSpecs(c.Context)
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}

	data := pterm.TableData{{"Name", "Version", "Type", "Description"}}
	for _, spec := range *result.Success {
		data = append(data, []string{spec.Name, strconv.Itoa(spec.Version), string(spec.Type), spec.Disp})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func saveGame(ctx context.Context, svc *scoringservice.ScoringService, game scoringdomain.Game) error {
	result, err := svc.SaveGame(ctx, game)
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}
	return nil
}

func printLeaderboard(sb *scoringdomain.Scoreboard) error {
	title := sb.GameName
	if title == "" {
		title = sb.GameID
	}
	pterm.DefaultSection.Printfln("%s (%s, %s)", title, sb.Spec, sb.View)

	data := pterm.TableData{{"Pos", "Player", "Score", "Thru"}}
	for _, e := range sb.Leaderboard {
		pos := strconv.Itoa(e.Position)
		if e.TieCount > 1 {
			pos = "T" + pos
		}
		name := e.PlayerName
		if name == "" {
			name = e.PlayerID
		}
		data = append(data, []string{pos, name, e.Display, strconv.Itoa(e.HolesPlayed)})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	if sb.Match != nil {
		pterm.Info.Println(sb.Match.Status)
	}
	return nil
}

func printHoles(sb *scoringdomain.Scoreboard) error {
	header := []string{"Player"}
	for _, h := range sb.Holes {
		header = append(header, strconv.Itoa(h.Hole))
	}
	data := pterm.TableData{header}
	for _, p := range sb.Players {
		row := []string{p.PlayerName}
		if row[0] == "" {
			row[0] = p.PlayerID
		}
		for _, h := range sb.Holes {
			row = append(row, holePoints(h, p.PlayerID))
		}
		data = append(data, row)
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func holePoints(h scoringdomain.HoleResult, playerID string) string {
	for _, pr := range h.Players {
		if pr.PlayerID == playerID {
			return strconv.FormatFloat(pr.Points, 'f', -1, 64)
		}
	}
	return "-"
}

func printWarnings(warnings []scoringdomain.Warning) {
	for _, w := range warnings {
		if w.Hole > 0 {
			pterm.Warning.Printfln("hole %d: %s", w.Hole, w.Message)
			continue
		}
		pterm.Warning.Println(w.Message)
	}
}
