package ftb

import (
	"context"
)

// MCP Tool wrapper methods
// These methods wrap the client methods with Args/Result types for MCP integration.

const defaultListLimit = 100

func effectiveLimit(limit int) int {
	if limit == 0 {
		return defaultListLimit
	}
	return limit
}

// ListTilesMCP is the MCP wrapper for QueryTiles
func (c *Client) ListTilesMCP(ctx context.Context, args ListTilesArgs) (ListTilesResult, error) {
	if args.Mod != "" {
		if err := ValidateMod(args.Mod); err != nil {
			return ListTilesResult{}, err
		}
	}
	if err := ValidateLimit(args.Limit); err != nil {
		return ListTilesResult{}, err
	}
	limit := effectiveLimit(args.Limit)

	// One extra record tells whether the list was cut off.
	tiles, err := collect[Tile](ctx, c.QueryTiles(args.Mod), limit+1)
	if err != nil {
		return ListTilesResult{}, err
	}
	result := ListTilesResult{Tiles: tiles}
	if len(tiles) > limit {
		result.Tiles = tiles[:limit]
		result.Truncated = true
	}
	result.Count = len(result.Tiles)
	return result, nil
}

// ListOresMCP is the MCP wrapper for QueryOres
func (c *Client) ListOresMCP(ctx context.Context, args ListOresArgs) (ListOresResult, error) {
	if args.Mod != "" {
		if err := ValidateMod(args.Mod); err != nil {
			return ListOresResult{}, err
		}
	}
	if err := ValidateLimit(args.Limit); err != nil {
		return ListOresResult{}, err
	}
	limit := effectiveLimit(args.Limit)

	q := c.QueryOres(args.Mod).OptionalArg("odtag", optional(args.Tag))
	ores, err := collect[Ore](ctx, q, limit+1)
	if err != nil {
		return ListOresResult{}, err
	}
	result := ListOresResult{Ores: ores}
	if len(ores) > limit {
		result.Ores = ores[:limit]
		result.Truncated = true
	}
	result.Count = len(result.Ores)
	return result, nil
}

// ListSheetsMCP is the MCP wrapper for Sheets
func (c *Client) ListSheetsMCP(ctx context.Context, _ ListSheetsArgs) (ListSheetsResult, error) {
	sheets, err := c.Sheets(ctx)
	if err != nil {
		return ListSheetsResult{}, err
	}
	return ListSheetsResult{Sheets: sheets, Count: len(sheets)}, nil
}
