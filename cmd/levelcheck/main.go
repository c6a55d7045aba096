// Command levelcheck validates level files and reports whether each level can
// be won. It checks:
//   - JSON or YAML structure and the tile grammar
//   - Grid dimensions, start and exit placement, catalog references
//   - Connectivity: the exit is reachable from the start ignoring requirements
//   - Winnability: the exit is reachable collecting the keys, items and weapons
//     the level provides
//   - Combat cost of each monster type against the weapons on the map
//
// Arguments may be level files or directories. Output is colored when stdout
// is a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gookit/color"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/wricardo/fliplabyrinth/game/level"
	"github.com/wricardo/fliplabyrinth/game/levels"
)

var (
	colorTitle = color.Style{color.FgCyan, color.OpBold}
	colorValid = color.Style{color.FgGreen, color.OpBold}
	colorError = color.Style{color.FgRed, color.OpBold}
	colorWarn  = color.Style{color.FgYellow}
	colorInfo  = color.Style{color.FgGray}
)

func main() {
	cmd := &cli.Command{
		Name:      "levelcheck",
		Usage:     "validate level files and check that they can be won",
		ArgsUsage: "[file or directory ...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only print invalid levels",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable colored output",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("no-color") || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.Enable = false
	}

	args := cmd.Args().Slice()
	if len(args) == 0 {
		args = []string{filepath.Join("game", "levels", "data")}
	}

	files, err := expand(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no level files found in %s", strings.Join(args, ", "))
	}

	catalog := level.DefaultCatalog()
	invalid := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		report := Check(filepath.Base(file), data, catalog)
		if !report.Valid() {
			invalid++
		}
		if report.Valid() && cmd.Bool("quiet") {
			continue
		}
		printReport(report)
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if invalid > 0 {
		return cli.Exit(colorError.Sprintf("%d of %d levels have errors", invalid, len(files)), 1)
	}
	colorValid.Printf("All %d levels are valid\n", len(files))
	return nil
}

// expand resolves directories to the level files they contain
func expand(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && levels.IsLevelFile(e.Name()) {
				files = append(files, filepath.Join(arg, e.Name()))
			}
		}
	}
	return files, nil
}

func printReport(r Report) {
	fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), colorTitle.Sprint(r.File))

	if r.Valid() {
		colorValid.Println("VALID")
	} else {
		colorError.Println("INVALID")
	}
	for _, e := range r.Errors {
		colorError.Println("  x " + e)
	}
	for _, w := range r.Warnings {
		colorWarn.Println("  ! " + w)
	}
	for _, i := range r.Info {
		colorInfo.Println("  - " + i)
	}
}
