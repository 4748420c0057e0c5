package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"graphics-server/internal/attributes"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect attribute schemas",
	}

	var format string
	show := &cobra.Command{
		Use:       "show KIND",
		Short:     "Show a schema (character or style)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := attributes.Get(attributes.Kind(args[0]))
			if err != nil {
				return err
			}
			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(schema.Sorted())
			case "table":
				renderSchema(cmd.OutOrStdout(), schema)
				return nil
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
	show.Flags().StringVarP(&format, "format", "f", "table", "output format (table, json)")
	cmd.AddCommand(show)
	return cmd
}

func kindNames() []string {
	kinds := attributes.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}

// renderSchema prints one row per property, categories in display order.
func renderSchema(w io.Writer, schema *attributes.Schema) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Order", "Category", "Property", "Type", "Options"})

	for _, cat := range schema.Sorted().Categories {
		for _, p := range cat.Properties {
			options := make([]string, len(p.Options))
			for i, o := range p.Options {
				options[i] = o.Value
			}
			t.AppendRow(table.Row{cat.Order, cat.Key, p.Key, string(p.Type), strings.Join(options, ", ")})
		}
	}
	t.Render()
}
