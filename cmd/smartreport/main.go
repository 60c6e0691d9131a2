// Package main provides the CLI entry point for smartreport.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xuri/excelize/v2"

	"github.com/SanChiaki/sr-template-editor/pkg/smartreport"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/canvas"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/cellref"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/conflict"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/geometry"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/models"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/payload"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/schedule"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/workbook"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds what every subcommand needs once flags are parsed.
type app struct {
	cfg      *config
	log      zerolog.Logger
	closeLog func()
}

func newRootCmd() *cobra.Command {
	a := &app{closeLog: func() {}}

	rootCmd := &cobra.Command{
		Use:   "smartreport",
		Short: "Lay out smart report components on spreadsheet templates",
		Long: `smartreport binds typed report components (text, tables, charts, ...)
to cell ranges of an xlsx template, draws them onto the sheet and keeps
finished templates in a local store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.closeLog()
		},
	}
	addGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		a.validateCmd(),
		a.placeCmd(),
		a.stampCmd(),
		a.extractCmd(),
		a.templateCmd(),
	)
	return rootCmd
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.String("store-dir", "", "Template store directory (default: .smartreport/templates)")
	fs.String("sheet", "", "Sheet to read sizes from and draw on (default: first sheet)")
	fs.String("log-level", "", "Log level: debug, info, warn, error (default: warn)")
	fs.String("log-file", "", "Log file path (default: stderr)")
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd.Root().PersistentFlags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, closer, err := newLogger(cfg, cmd.Name(), cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	a.cfg, a.log, a.closeLog = cfg, log, closer
	return nil
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config>",
		Short: "Check a component configuration for bad ranges and overlaps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := payload.DecodeFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range cfg.ComponentList {
				if _, err := cellref.Parse(c.Location); err != nil {
					fmt.Fprintf(out, "unpositioned\t%s\t%s\t%v\n", c.ID, c.Name, err)
				}
			}
			pairs := conflict.Pairs(cfg.ComponentList)
			for _, p := range pairs {
				fmt.Fprintf(out, "overlap\t%s (%s)\t%s (%s)\n", p.A.Name, p.A.Location, p.B.Name, p.B.Location)
			}
			if len(pairs) > 0 {
				return fmt.Errorf("%d overlapping component pairs", len(pairs))
			}

			fmt.Fprintf(out, "ok\t%d components\n", len(cfg.ComponentList))
			return nil
		},
	}
}

func (a *app) placeCmd() *cobra.Command {
	var (
		typeName     string
		at           string
		x, y         float64
		workbookPath string
		name         string
		prompt       string
		outputPath   string
	)

	cmd := &cobra.Command{
		Use:   "place <config>",
		Short: "Add a component to a configuration, rejecting overlaps",
		Long: `place adds one component to a configuration file, creating the file if
needed. The target is either a range (--at) or a pixel drop point (--x/--y)
measured on the sheet of --workbook, or on a default grid without one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok := models.ParseComponentType(typeName)
			if !ok {
				return fmt.Errorf("invalid type: %s", typeName)
			}
			dropped := cmd.Flags().Changed("x") && cmd.Flags().Changed("y")
			if at == "" && !dropped {
				return errors.New("either --at or both --x and --y are required")
			}

			cfg, err := readConfigOrEmpty(args[0])
			if err != nil {
				return err
			}
			sizes, closeWorkbook, err := a.openSizes(workbookPath)
			if err != nil {
				return err
			}
			defer closeWorkbook()

			sched := schedule.NewManual()
			opts := smartreport.DefaultOptions()
			opts.Logger = a.log
			coord := smartreport.New(canvas.NewMemory(sizes), sched, opts)
			defer coord.Close()

			coord.LoadConfig(cfg)
			sched.Flush()

			var placed models.Component
			if at != "" {
				placed, err = coord.Add(models.Component{Type: t, Location: at, Name: name, Prompt: prompt})
			} else {
				placed, err = coord.Drop(t, x, y)
				if err == nil && (name != "" || prompt != "") {
					if name != "" {
						placed.Name = name
					}
					placed.Prompt = prompt
					err = coord.Update(placed)
				}
			}
			if err != nil {
				return err
			}
			sched.Flush()

			data, err := payload.Encode(coord.Export(), true)
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			if outputPath == "" {
				outputPath = args[0]
			}
			if err := os.WriteFile(outputPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}

			placed, _ = coord.Component(placed.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", placed.ID, placed.Name, placed.Location)
			return nil
		},
	}

	cmd.Flags().StringVar(&typeName, "type", "", "Component type: "+typeList())
	cmd.Flags().StringVar(&at, "at", "", "Target range, e.g. B2:D6")
	cmd.Flags().Float64Var(&x, "x", 0, "Drop point x in pixels")
	cmd.Flags().Float64Var(&y, "y", 0, "Drop point y in pixels")
	cmd.Flags().StringVar(&workbookPath, "workbook", "", "Workbook whose column widths and row heights define the grid")
	cmd.Flags().StringVar(&name, "name", "", "Component name (default: type and position in the list)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Generation prompt")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: rewrite <config>)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func (a *app) stampCmd() *cobra.Command {
	var (
		outputPath string
		noShapes   bool
	)

	cmd := &cobra.Command{
		Use:   "stamp <workbook> <config>",
		Short: "Draw components onto a workbook and embed the configuration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := payload.DecodeFile(args[1])
			if err != nil {
				return err
			}
			f, err := excelize.OpenFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to open workbook: %w", err)
			}
			defer f.Close()

			n := 0
			if !noShapes {
				if n, err = workbook.Stamp(f, a.cfg.Sheet, cfg.ComponentList); err != nil {
					return err
				}
			}
			if err := workbook.Embed(f, cfg.ComponentList); err != nil {
				return fmt.Errorf("failed to embed components: %w", err)
			}

			if outputPath == "" {
				err = f.Save()
			} else {
				err = f.SaveAs(outputPath)
			}
			if err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}

			a.log.Info().Int("shapes", n).Int("components", len(cfg.ComponentList)).Msg("workbook stamped")
			fmt.Fprintf(cmd.OutOrStdout(), "stamped %d of %d components\n", n, len(cfg.ComponentList))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: overwrite <workbook>)")
	cmd.Flags().BoolVar(&noShapes, "no-shapes", false, "Only embed the configuration, draw nothing")
	return cmd
}

func (a *app) extractCmd() *cobra.Command {
	var shapes bool

	cmd := &cobra.Command{
		Use:   "extract <workbook>",
		Short: "Print the configuration embedded in a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if shapes {
				all, err := workbook.ReadShapes(args[0])
				if err != nil {
					return fmt.Errorf("failed to read shapes: %w", err)
				}
				data, err := encodeJSON(all)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			f, err := excelize.OpenFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to open workbook: %w", err)
			}
			defer f.Close()

			components, err := workbook.Extract(f)
			if err != nil {
				return err
			}
			data, err := payload.Encode(models.Config{ComponentList: components}, true)
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&shapes, "shapes", false, "List the drawn shapes per sheet instead")
	return cmd
}

// openSizes returns the grid of the configured sheet of path, or nil for the
// default grid when path is empty.
func (a *app) openSizes(path string) (geometry.SizeProvider, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	sizes, err := workbook.NewSizes(f, a.cfg.Sheet)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return sizes, func() { _ = f.Close() }, nil
}

func readConfigOrEmpty(path string) (models.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return models.Config{}, nil
	}
	return payload.DecodeFile(path)
}

func typeList() string {
	s := ""
	for i, t := range models.ComponentTypes {
		if i > 0 {
			s += ", "
		}
		s += string(t)
	}
	return s
}
