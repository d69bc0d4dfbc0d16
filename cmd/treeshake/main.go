package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/evanw/treeshake/internal/config"
	"github.com/evanw/treeshake/pkg/api"
)

var version = "dev"

var logLevels = map[string]api.LogLevel{
	"verbose": api.LogLevelVerbose,
	"debug":   api.LogLevelDebug,
	"info":    api.LogLevelInfo,
	"warning": api.LogLevelWarning,
	"error":   api.LogLevelError,
	"silent":  api.LogLevelSilent,
}

func parseLogLevel(text string) (api.LogLevel, error) {
	if text == "" {
		return api.LogLevelWarning, nil
	}
	if level, ok := logLevels[text]; ok {
		return level, nil
	}
	return 0, fmt.Errorf("invalid log level %q (valid: verbose, debug, info, warning, error, silent)", text)
}

func parseColor(text string) (api.StderrColor, error) {
	if text == "" {
		return api.ColorIfTerminal, nil
	}
	value, err := strconv.ParseBool(text)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q for --color (expected true or false)", text)
	}
	if value {
		return api.ColorAlways, nil
	}
	return api.ColorNever, nil
}

// The options of a config file, with the flags given on the command line
// taking precedence
func shakeOptions(c *cli.Context, options *config.Options) (api.ShakeOptions, error) {
	result := api.ShakeOptions{
		EntryPoints:                c.Args().Slice(),
		IgnoreAnnotations:          !options.TreeShaking.Annotations,
		NoModuleSideEffects:        !options.TreeShaking.ModuleSideEffects,
		NoSideEffects:              append(append([]string{}, options.TreeShaking.NoSideEffects...), c.StringSlice("no-side-effects")...),
		NoPropertyReadSideEffects:  !options.TreeShaking.PropertyReadSideEffects,
		NoTryCatchDeoptimization:   !options.TreeShaking.TryCatchDeoptimization,
		NoUnknownGlobalSideEffects: !options.TreeShaking.UnknownGlobalSideEffects,
		ShimMissingExports:         options.ShimMissingExports || c.Bool("shim-missing-exports"),
		SyntheticNamedExports:      options.SyntheticNamedExports,
		External:                   append(append([]string{}, options.External...), c.StringSlice("external")...),
		Timing:                     c.Bool("timing"),
	}

	if !options.TreeShaking.Enabled || c.Bool("no-treeshake") {
		result.TreeShaking = api.TreeShakingFalse
	}
	if c.Bool("ignore-annotations") {
		result.IgnoreAnnotations = true
	}
	if c.Bool("no-module-side-effects") {
		result.NoModuleSideEffects = true
	}

	levelText := options.LogLevel
	if c.IsSet("log-level") {
		levelText = c.String("log-level")
	}
	level, err := parseLogLevel(levelText)
	if err != nil {
		return api.ShakeOptions{}, err
	}
	result.LogLevel = level

	if len(options.LogOverride) > 0 {
		result.LogOverride = make(map[string]api.LogLevel)
		for name, text := range options.LogOverride {
			override, err := parseLogLevel(text)
			if err != nil {
				return api.ShakeOptions{}, fmt.Errorf("log override %q: %w", name, err)
			}
			result.LogOverride[name] = override
		}
	}

	if result.Color, err = parseColor(c.String("color")); err != nil {
		return api.ShakeOptions{}, err
	}
	return result, nil
}

func loadConfig(c *cli.Context) (*config.Options, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	options, _, err := config.LoadOrDefault(".")
	return options, err
}

func newApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:      "treeshake",
		Usage:     "Find the code of an ES module graph that is actually used",
		UsageText: "treeshake [options] [entry points]",
		Version:   version,
		Writer:    stdout,

		// Errors are printed by "main"
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (YAML, JSON, or TOML)",
				EnvVars: []string{"TREESHAKE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, yaml",
			},
			&cli.StringSliceFlag{
				Name:  "external",
				Usage: "Keep module `M` out of the graph (may be repeated)",
			},
			&cli.StringSliceFlag{
				Name:  "no-side-effects",
				Usage: "Treat modules matching `GLOB` as free of side effects",
			},
			&cli.BoolFlag{
				Name:  "no-treeshake",
				Usage: "Include every statement of every executed module",
			},
			&cli.BoolFlag{
				Name:  "ignore-annotations",
				Usage: "Ignore /* @__PURE__ */ comments",
			},
			&cli.BoolFlag{
				Name:  "no-module-side-effects",
				Usage: "Assume modules have no side effects unless told otherwise",
			},
			&cli.BoolFlag{
				Name:  "shim-missing-exports",
				Usage: "Replace missing exports with undefined instead of failing",
			},
			&cli.BoolFlag{
				Name:  "code",
				Usage: "Print the remaining code of each module in text output",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Disable logging (verbose, debug, info, warning, error, silent)",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Force use of color terminal escapes (true or false)",
			},
			&cli.BoolFlag{
				Name:  "timing",
				Usage: "Log how long each phase took (shown with --log-level=verbose)",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c, stdout)
		},
	}
}

func run(c *cli.Context, stdout io.Writer) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no entry points given")
	}

	format := c.String("format")
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid format %q (valid: text, json, yaml)", format)
	}

	configOptions, err := loadConfig(c)
	if err != nil {
		return err
	}
	options, err := shakeOptions(c, configOptions)
	if err != nil {
		return err
	}

	result := api.Shake(options)

	switch format {
	case "json":
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		fmt.Fprintf(stdout, "%s\n", encoded)
	case "yaml":
		encoder := yaml.NewEncoder(stdout)
		encoder.SetIndent(2)
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
	default:
		printText(stdout, result, c.Bool("code"))
	}

	if len(result.Errors) > 0 {
		return cli.Exit(fmt.Sprintf("%d error(s)", len(result.Errors)), 1)
	}
	return nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func printText(w io.Writer, result api.ShakeResult, showCode bool) {
	if len(result.Modules) == 0 {
		return
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		}),
	)

	table.Header([]string{"Module", "Executed", "Included", "Statements", "Exports"})
	included := 0
	for _, m := range result.Modules {
		if m.Included {
			included++
		}
		id := m.ID
		if m.IsEntry {
			id += " (entry)"
		}
		table.Append([]string{
			id,
			yesNo(m.Executed),
			yesNo(m.Included),
			fmt.Sprintf("%d/%d", m.IncludedStatements, m.Statements),
			fmt.Sprintf("%d/%d", len(m.IncludedExports), len(m.Exports)),
		})
	}
	table.Render()
	fmt.Fprintln(w)

	for _, external := range result.Externals {
		if external.Used {
			fmt.Fprintf(w, "external %s: %s\n", external.ID, strings.Join(external.UsedNames, ", "))
		} else {
			color.New(color.FgYellow).Fprintf(w, "external %s: unused\n", external.ID)
		}
	}
	for _, group := range result.CycleGroups {
		color.New(color.FgYellow).Fprintf(w, "cycle: %s\n", strings.Join(group, ", "))
	}

	color.New(color.FgGreen).Fprintf(w, "Included %d of %d modules\n", included, len(result.Modules))

	if showCode {
		for _, m := range result.Modules {
			if code := strings.TrimSpace(m.Code); code != "" {
				fmt.Fprintf(w, "\n// %s\n%s\n", m.ID, code)
			}
		}
	}
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		if exit, ok := err.(cli.ExitCoder); ok {
			color.Red("Error: %v", exit)
			os.Exit(exit.ExitCode())
		}
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
