package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/payload"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/templatestore"
)

func (a *app) templateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage stored templates (a workbook plus its configuration)",
	}
	cmd.AddCommand(
		a.templateSaveCmd(),
		a.templateLoadCmd(),
		a.templateListCmd(),
		a.templateDeleteCmd(),
	)
	return cmd
}

func (a *app) store() *templatestore.Store {
	return templatestore.Open(a.cfg.StoreDir, a.log)
}

func (a *app) templateSaveCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "save <id> <workbook> <config>",
		Short: "Store a workbook and its configuration under one id",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read workbook: %w", err)
			}
			cfg, err := payload.DecodeFile(args[2])
			if err != nil {
				return err
			}
			meta, err := a.store().Save(args[0], name, data, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d components)\n", meta.ID, meta.Components)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name of the template")
	return cmd
}

func (a *app) templateLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <id> <dir>",
		Short: "Write a stored template into a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := a.store().Load(args[0])
			if err != nil {
				return err
			}
			config, err := payload.Encode(tpl.Config, true)
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}

			dir := args[1]
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			files := []struct {
				name string
				data []byte
			}{
				{templatestore.WorkbookFile, tpl.Workbook},
				{templatestore.ConfigFile, config},
			}
			for _, file := range files {
				path := filepath.Join(dir, file.name)
				if err := os.WriteFile(path, file.data, 0644); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
}

func (a *app) templateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored templates, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metas, err := a.store().List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCOMPONENTS\tCREATED")
			for _, m := range metas {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", m.ID, m.Name, m.Components, m.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}

func (a *app) templateDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a stored template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store().Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func encodeJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialization failed: %w", err)
	}
	return data, nil
}
