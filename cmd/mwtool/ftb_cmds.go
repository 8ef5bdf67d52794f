package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/olgasafonova/mediawiki-client/internal/ftb"
	"github.com/olgasafonova/mediawiki-client/wiki"
)

type exportFile struct {
	Path    string `json:"path" yaml:"path"`
	Records int    `json:"records" yaml:"records"`
}

func (a *app) exportCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tiles, sheets, ore entries and tile translations as JSON files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.ftbClient(ctx)
			if err != nil {
				return err
			}

			export, err := client.Export(ctx)
			if err != nil {
				return err
			}

			sets := []struct {
				name    string
				records []json.RawMessage
			}{
				{"tiles.json", export.Tiles},
				{"sheets.json", export.Sheets},
				{"ores.json", export.Ores},
				{"translations.json", export.Translations},
			}
			files := make([]exportFile, 0, len(sets))
			rows := make([][]string, 0, len(sets))
			for _, set := range sets {
				records := set.records
				if records == nil {
					records = []json.RawMessage{}
				}
				path := filepath.Join(dir, set.name)
				if err := writeJSONFile(path, records); err != nil {
					return err
				}
				files = append(files, exportFile{Path: path, Records: len(records)})
				rows = append(rows, []string{path, strconv.Itoa(len(records))})
			}
			return a.render(files, []string{"File", "Records"}, rows)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory to write the export files to")
	return cmd
}

func (a *app) tilesCommand() *cobra.Command {
	var mod string
	cmd := &cobra.Command{
		Use:   "tiles",
		Short: "List tilesheet tiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if mod != "" {
				if err := ftb.ValidateMod(mod); err != nil {
					return err
				}
			}
			ctx := cmd.Context()
			client, err := a.ftbClient(ctx)
			if err != nil {
				return err
			}
			tiles, err := client.Tiles(ctx, mod)
			if err != nil {
				return err
			}

			rows := make([][]string, len(tiles))
			for i, t := range tiles {
				rows[i] = []string{t.ID.String(), t.Mod, strconv.Itoa(t.X), strconv.Itoa(t.Y), t.Name}
			}
			return a.render(tiles, []string{"ID", "Mod", "X", "Y", "Name"}, rows)
		},
	}
	cmd.Flags().StringVar(&mod, "mod", "", "only tiles of this mod abbreviation")
	return cmd
}

func (a *app) sheetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets",
		Short: "List tilesheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.ftbClient(ctx)
			if err != nil {
				return err
			}
			sheets, err := client.Sheets(ctx)
			if err != nil {
				return err
			}

			rows := make([][]string, len(sheets))
			for i, s := range sheets {
				rows[i] = []string{s.Mod, s.Sizes}
			}
			return a.render(sheets, []string{"Mod", "Sizes"}, rows)
		},
	}
}

func oreRows(ores []ftb.Ore) [][]string {
	rows := make([][]string, len(ores))
	for i, o := range ores {
		rows[i] = []string{o.ID.String(), o.TagName, o.ItemName, o.ModName}
	}
	return rows
}

var oreHeader = []string{"ID", "Tag", "Item", "Mod"}

func (a *app) oresCommand() *cobra.Command {
	var mod string
	cmd := &cobra.Command{
		Use:   "ores",
		Short: "List ore dictionary entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if mod != "" {
				if err := ftb.ValidateMod(mod); err != nil {
					return err
				}
			}
			ctx := cmd.Context()
			client, err := a.ftbClient(ctx)
			if err != nil {
				return err
			}
			ores, err := client.Ores(ctx, mod)
			if err != nil {
				return err
			}
			return a.render(ores, oreHeader, oreRows(ores))
		},
	}
	cmd.Flags().StringVar(&mod, "mod", "", "only entries of this mod abbreviation")
	return cmd
}

func (a *app) importTilesCommand() *cobra.Command {
	var sizes string
	cmd := &cobra.Command{
		Use:   "import-tiles <mod> <file>",
		Short: "Create a mod's tilesheet and add the tiles listed in file",
		Long: `Creates the tilesheet of <mod> and adds every tile of <file> in batches
of 100. Each line of <file> is "x y name".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mod, path := args[0], args[1]
			if err := ftb.ValidateMod(mod); err != nil {
				return err
			}
			if err := ftb.ValidateSizes(sizes); err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			tiles, err := ftb.ParseNewTiles(f)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			ctx := cmd.Context()
			client, err := a.ftbClient(ctx)
			if err != nil {
				return err
			}
			token, err := wiki.GetToken[wiki.Csrf](ctx, client.Session())
			if err != nil {
				return err
			}
			if err := client.ImportTiles(ctx, token, mod, sizes, tiles); err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "Imported %d tiles into %s\n", len(tiles), mod)
			return err
		},
	}
	cmd.Flags().StringVar(&sizes, "sizes", "16|32", "\"|\"-separated tile sizes of the new sheet")
	return cmd
}

func (a *app) purgeCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "purge <mod>",
		Short: "Delete every tile of a mod, then its tilesheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mod := args[0]
			if err := ftb.ValidateMod(mod); err != nil {
				return err
			}
			ctx := cmd.Context()
			client, err := a.ftbClient(ctx)
			if err != nil {
				return err
			}

			if dryRun {
				if _, err := client.Sheet(ctx, mod); err != nil {
					return err
				}
				tiles, err := client.Tiles(ctx, mod)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(a.out, "Would delete %d tiles and the %s tilesheet\n", len(tiles), mod)
				return err
			}

			token, err := wiki.GetToken[wiki.Csrf](ctx, client.Session())
			if err != nil {
				return err
			}
			deleted, err := client.PurgeSheet(ctx, token, mod)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "Deleted %d tiles and the %s tilesheet\n", deleted, mod)
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only count the tiles that would be deleted")
	return cmd
}

func (a *app) verifyOresCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "verify-ores",
		Short: "List ore dictionary entries whose item has no tile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.ftbClient(ctx)
			if err != nil {
				return err
			}
			invalid, err := client.InvalidOres(ctx)
			if err != nil {
				return err
			}
			if invalid == nil {
				invalid = []ftb.Ore{}
			}

			if file != "" {
				if err := writeInvalidOres(file, invalid); err != nil {
					return err
				}
			}
			return a.render(invalid, oreHeader, oreRows(invalid))
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "also write the entries to this file, one per line")
	return cmd
}

// writeInvalidOres writes "id tag = item (mod)" lines
func writeInvalidOres(path string, ores []ftb.Ore) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, o := range ores {
		fmt.Fprintf(w, "%s %s = %s (%s)\n", o.ID, o.TagName, o.ItemName, o.ModName)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (a *app) moveOresCommand() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "move-ores",
		Short: "Move ore entries missing from one mod over from another",
		Long: `Reassigns to --to every ore dictionary entry of --from whose tag and item
pair is not yet registered under --to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.ftbClient(ctx)
			if err != nil {
				return err
			}
			token, err := wiki.GetToken[wiki.Csrf](ctx, client.Session())
			if err != nil {
				return err
			}
			moved, err := client.MoveOres(ctx, token, from, to)
			if err != nil {
				return err
			}
			return a.render(moved, oreHeader, oreRows(moved))
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "mod to move entries from")
	cmd.Flags().StringVar(&to, "to", "", "mod to move entries to")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
