package ftb

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apierrors "github.com/olgasafonova/mediawiki-client/internal/errors"
	"github.com/olgasafonova/mediawiki-client/wiki"
)

const (
	// PageLimit is the per-page limit requested from the extension lists
	PageLimit = "5000"

	// ChunkSize is the number of ids or import lines sent per mutation
	ChunkSize = 100
)

// Client provides access to the tilesheet and ore dictionary APIs
type Client struct {
	session *wiki.Session
	logger  *slog.Logger
}

// NewClient creates a client over an existing session
func NewClient(s *wiki.Session) *Client {
	return &Client{session: s, logger: s.Logger()}
}

// Session returns the underlying session
func (c *Client) Session() *wiki.Session {
	return c.session
}

// QueryTiles lists tiles, optionally restricted to one mod ("" for all)
func (c *Client) QueryTiles(mod string) *wiki.Query {
	return c.session.Query("tiles").
		Arg("tslimit", PageLimit).
		OptionalArg("tsmod", optional(mod))
}

// QuerySheets lists every tilesheet
func (c *Client) QuerySheets() *wiki.Query {
	return c.session.Query("sheets").Arg("tslimit", PageLimit)
}

// QueryTileTranslations lists the translations of one tile
func (c *Client) QueryTileTranslations(id ID) *wiki.Query {
	return c.session.Query("tiletranslations").Arg("tsid", id.String())
}

// QueryOres lists ore dictionary entries, optionally restricted to one mod.
// The module is list=oredictsearch but answers under query.oredictentries.
func (c *Client) QueryOres(mod string) *wiki.Query {
	return c.session.Query("oredictsearch").
		ResultKey("oredictentries").
		Arg("odlimit", PageLimit).
		OptionalArg("odmod", optional(mod))
}

// Tiles collects the tiles of mod ("" for all)
func (c *Client) Tiles(ctx context.Context, mod string) ([]Tile, error) {
	return collect[Tile](ctx, c.QueryTiles(mod), 0)
}

// Sheets collects every tilesheet
func (c *Client) Sheets(ctx context.Context) ([]Sheet, error) {
	return collect[Sheet](ctx, c.QuerySheets(), 0)
}

// Sheet finds the tilesheet of mod
func (c *Client) Sheet(ctx context.Context, mod string) (Sheet, error) {
	sheets, err := c.Sheets(ctx)
	if err != nil {
		return Sheet{}, err
	}
	for _, s := range sheets {
		if s.Mod == mod {
			return s, nil
		}
	}
	return Sheet{}, apierrors.NewNotFoundError("sheet", mod)
}

// Ores collects the ore entries of mod ("" for all)
func (c *Client) Ores(ctx context.Context, mod string) ([]Ore, error) {
	return collect[Ore](ctx, c.QueryOres(mod), 0)
}

// TileTranslations collects the translations of one tile
func (c *Client) TileTranslations(ctx context.Context, id ID) ([]TileTranslation, error) {
	return collect[TileTranslation](ctx, c.QueryTileTranslations(id), 0)
}

// collect decodes up to limit records of q (0 for all)
func collect[T any](ctx context.Context, q *wiki.Query, limit int) ([]T, error) {
	out := make([]T, 0)
	for rec, err := range q.All(ctx) {
		if err != nil {
			return out, err
		}
		v, err := wiki.DecodeRecord[T](rec)
		if err != nil {
			return out, fmt.Errorf("%s record: %w", q.List(), err)
		}
		out = append(out, v)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// AddTiles imports a "|"-separated batch of "x y name" lines into mod's sheet
func (c *Client) AddTiles(ctx context.Context, token wiki.Token[wiki.Csrf], mod, batch string) (*wiki.Response, error) {
	return c.session.Request().
		Arg("action", "addtiles").
		Arg("tstoken", token.Value()).
		Arg("tsmod", mod).
		Arg("tsimport", batch).
		Post(ctx)
}

// DeleteTiles deletes a "|"-separated batch of tile ids
func (c *Client) DeleteTiles(ctx context.Context, token wiki.Token[wiki.Csrf], ids string, summary *string) (*wiki.Response, error) {
	return c.session.Request().
		Arg("action", "deletetiles").
		Arg("tstoken", token.Value()).
		Arg("tsids", ids).
		OptionalArg("tssummary", summary).
		Post(ctx)
}

// CreateSheet creates the tilesheet of mod with the given "|"-separated sizes
func (c *Client) CreateSheet(ctx context.Context, token wiki.Token[wiki.Csrf], mod, sizes string) (*wiki.Response, error) {
	if err := ValidateSizes(sizes); err != nil {
		return nil, err
	}
	return c.session.Request().
		Arg("action", "createsheet").
		Arg("tstoken", token.Value()).
		Arg("tsmod", mod).
		Arg("tssizes", sizes).
		Post(ctx)
}

// DeleteSheet deletes the tilesheet of mod
func (c *Client) DeleteSheet(ctx context.Context, token wiki.Token[wiki.Csrf], mod string, summary *string) (*wiki.Response, error) {
	return c.session.Request().
		Arg("action", "deletesheet").
		Arg("tstoken", token.Value()).
		Arg("tsmod", mod).
		OptionalArg("tssummary", summary).
		Post(ctx)
}

// EditOre changes the set fields of one ore dictionary entry
func (c *Client) EditOre(ctx context.Context, token wiki.Token[wiki.Csrf], id ID, args EditOreArgs) (*wiki.Response, error) {
	return c.session.Request().
		Arg("action", "editoredict").
		Arg("odtoken", token.Value()).
		Arg("odid", id.String()).
		OptionalArg("odmod", args.Mod).
		OptionalArg("odtag", args.Tag).
		OptionalArg("oditem", args.Item).
		OptionalArg("odparams", args.Params).
		OptionalArg("odsummary", args.Summary).
		Post(ctx)
}

// ImportTiles creates mod's sheet and adds tiles to it in chunks
func (c *Client) ImportTiles(ctx context.Context, token wiki.Token[wiki.Csrf], mod, sizes string, tiles []NewTile) error {
	if _, err := c.CreateSheet(ctx, token, mod, sizes); err != nil {
		return fmt.Errorf("create sheet %s: %w", mod, err)
	}

	lines := make([]string, len(tiles))
	for i, t := range tiles {
		lines[i] = t.String()
	}
	for i, batch := range ChunkIDs(lines, ChunkSize) {
		if _, err := c.AddTiles(ctx, token, mod, batch); err != nil {
			return fmt.Errorf("add tiles batch %d: %w", i, err)
		}
	}

	c.logger.Info("Imported tiles", "mod", mod, "tiles", len(tiles))
	return nil
}

// PurgeSheet deletes every tile of mod in chunks, then the sheet itself.
// It returns the number of tiles deleted.
func (c *Client) PurgeSheet(ctx context.Context, token wiki.Token[wiki.Csrf], mod string) (int, error) {
	if _, err := c.Sheet(ctx, mod); err != nil {
		return 0, err
	}

	tiles, err := c.Tiles(ctx, mod)
	if err != nil {
		return 0, err
	}
	ids := make([]string, len(tiles))
	for i, t := range tiles {
		ids[i] = t.ID.String()
	}

	summary := "Purging tiles"
	for i, batch := range ChunkIDs(ids, ChunkSize) {
		if _, err := c.DeleteTiles(ctx, token, batch, &summary); err != nil {
			return i * ChunkSize, fmt.Errorf("delete tiles batch %d: %w", i, err)
		}
	}

	sheetSummary := "Purging tilesheet"
	if _, err := c.DeleteSheet(ctx, token, mod, &sheetSummary); err != nil {
		return len(ids), fmt.Errorf("delete sheet %s: %w", mod, err)
	}

	c.logger.Info("Purged tilesheet", "mod", mod, "tiles", len(ids))
	return len(ids), nil
}

// InvalidOres returns the ore entries whose item has no tile in the item's mod
func (c *Client) InvalidOres(ctx context.Context) ([]Ore, error) {
	tiles, err := c.Tiles(ctx, "")
	if err != nil {
		return nil, err
	}
	known := make(map[TileKey]struct{}, len(tiles))
	for _, t := range tiles {
		known[t.Key()] = struct{}{}
	}

	ores, err := c.Ores(ctx, "")
	if err != nil {
		return nil, err
	}
	var invalid []Ore
	for _, o := range ores {
		if _, ok := known[o.TileKey()]; !ok {
			invalid = append(invalid, o)
		}
	}
	return invalid, nil
}

// Export fetches every tile, sheet, ore entry and tile translation as raw records
func (c *Client) Export(ctx context.Context) (*Export, error) {
	var (
		out Export
		err error
	)
	if out.Tiles, err = c.QueryTiles("").Collect(ctx); err != nil {
		return nil, fmt.Errorf("export tiles: %w", err)
	}
	if out.Sheets, err = c.QuerySheets().Collect(ctx); err != nil {
		return nil, fmt.Errorf("export sheets: %w", err)
	}
	if out.Ores, err = c.QueryOres("").Collect(ctx); err != nil {
		return nil, fmt.Errorf("export ores: %w", err)
	}

	for _, raw := range out.Tiles {
		tile, err := wiki.DecodeRecord[Tile](raw)
		if err != nil {
			return nil, fmt.Errorf("export tiles: %w", err)
		}
		translations, err := c.QueryTileTranslations(tile.ID).Collect(ctx)
		if err != nil {
			return nil, fmt.Errorf("export translations of tile %s: %w", tile.ID, err)
		}
		out.Translations = append(out.Translations, translations...)
	}
	return &out, nil
}

// ChunkIDs joins values into "|"-separated batches of at most size values
func ChunkIDs(values []string, size int) []string {
	if size <= 0 {
		size = ChunkSize
	}
	batches := make([]string, 0, (len(values)+size-1)/size)
	for start := 0; start < len(values); start += size {
		end := min(start+size, len(values))
		batches = append(batches, strings.Join(values[start:end], "|"))
	}
	return batches
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
