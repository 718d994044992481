package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"salary-board/internal/app"

	"github.com/spf13/cobra"
)

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the selectable players",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		players, err := c.Players(ctx)
		if err != nil {
			return err
		}
		for _, p := range players {
			fmt.Println(p)
		}
		return nil
	},
}

type predictFlags struct {
	player   string
	advanced bool
	controls []string
	set      []string
}

var pf predictFlags

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict a player's salary and list the closest players",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides, err := parseOverrides(pf.set)
		if err != nil {
			return err
		}
		in := app.Input{
			Player:    pf.player,
			Advanced:  pf.advanced || len(overrides) > 0 || cmd.Flags().Changed("controls"),
			Overrides: overrides,
			Predict:   true,
			Language:  rf.lang,
		}
		if cmd.Flags().Changed("controls") {
			in.Controls = pf.controls
		} else if len(overrides) > 0 {
			in.Controls = overrideNames(overrides)
		}

		c, ctx, cancel, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		page, err := c.Render(ctx, in)
		if err != nil {
			return err
		}
		fmt.Println(renderPrediction(page))
		return nil
	},
}

var leagueCmd = &cobra.Command{
	Use:   "league",
	Short: "Show the season's top scorers and their efficiency",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		page, err := c.Render(ctx, app.Input{ShowLeague: true, Language: rf.lang})
		if err != nil {
			return err
		}
		fmt.Println(renderLeague(page))
		return nil
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show the loaded model artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		models, err := c.Models(ctx)
		if err != nil {
			return err
		}
		fmt.Println(renderModels(models))
		return nil
	},
}

var chartOut string

var chartCmd = &cobra.Command{
	Use:       "chart salaries|leaders|efficiency",
	Short:     "Download a chart as PNG",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"salaries", "leaders", "efficiency"},
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		png, err := c.Chart(ctx, args[0], pf.player)
		if err != nil {
			return err
		}
		out := chartOut
		if out == "" {
			out = args[0] + ".png"
		}
		if err := os.WriteFile(out, png, 0o644); err != nil {
			return err
		}
		fmt.Println("✓ wrote", out)
		return nil
	},
}

// parseOverrides reads Name=Value pairs.
func parseOverrides(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: want Name=Value", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --set %q: %w", pair, err)
		}
		out[name] = v
	}
	return out, nil
}

// overrideNames exposes the overridden features as controls, in a stable order.
func overrideNames(overrides map[string]float64) []string {
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sortBySchema(names)
	return names
}

func init() {
	predictCmd.Flags().StringVar(&pf.player, "player", "", "player name (empty for the abstract player)")
	predictCmd.Flags().BoolVar(&pf.advanced, "advanced", false, "open the advanced panel")
	predictCmd.Flags().StringSliceVar(&pf.controls, "controls", nil, "features exposed in the advanced panel")
	predictCmd.Flags().StringArrayVar(&pf.set, "set", nil, "feature override Name=Value (repeatable)")

	chartCmd.Flags().StringVar(&pf.player, "player", "", "player for the salaries chart")
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "", "output file (default <chart>.png)")
}
