package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/wargame/internal/yamlconfig"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Import or export a guild's YAML configuration",
	}
	cmd.AddCommand(configImportCmd())
	cmd.AddCommand(configExportCmd())
	return cmd
}

func configImportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a YAML config file into the store for --guild",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireGuild(); err != nil {
				return err
			}
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			doc, err := yamlconfig.Parse(raw)
			if err != nil {
				return err
			}

			s, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			if err := yamlconfig.Import(cmd.Context(), s, guildID, doc); err != nil {
				if ve, ok := err.(*yamlconfig.ValidationError); ok {
					color.Red("import rejected: %d referential integrity problem(s)", len(ve.Problems))
					for _, p := range ve.Problems {
						fmt.Fprintf(os.Stderr, "  - %s\n", p)
					}
					os.Exit(1)
				}
				return err
			}
			color.Green("imported %s into guild %d", file, guildID)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the YAML config file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func configExportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump --guild's current store state to a YAML config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireGuild(); err != nil {
				return err
			}

			s, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			doc, err := yamlconfig.Export(cmd.Context(), s, guildID)
			if err != nil {
				return err
			}
			out, err := yamlconfig.Marshal(doc)
			if err != nil {
				return err
			}
			if file == "" || file == "-" {
				_, err = os.Stdout.Write(out)
				return err
			}
			if err := os.WriteFile(file, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", file, err)
			}
			color.Green("exported guild %d to %s", guildID, file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "output path, or - for stdout")
	return cmd
}
