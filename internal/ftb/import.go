package ftb

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/olgasafonova/mediawiki-client/wiki"
)

var tileLineRegex = regexp.MustCompile(`^(\d+) (\d+) (.+)$`)

// ParseNewTiles reads an addtiles import list, one "x y name" tile per line.
// Blank lines are skipped.
func ParseNewTiles(r io.Reader) ([]NewTile, error) {
	var tiles []NewTile
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		m := tileLineRegex.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("line %d: expected \"x y name\", got %q", n, line)
		}
		x, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		y, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		tiles = append(tiles, NewTile{X: x, Y: y, Name: m[3]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tiles, nil
}

// MoveOres reassigns to mod "to" every ore entry of mod "from" whose tag and
// item pair is not already registered under "to". It returns the moved entries.
func (c *Client) MoveOres(ctx context.Context, token wiki.Token[wiki.Csrf], from, to string) ([]Ore, error) {
	if err := ValidateMod(from); err != nil {
		return nil, err
	}
	if err := ValidateMod(to); err != nil {
		return nil, err
	}

	existing, err := c.Ores(ctx, to)
	if err != nil {
		return nil, err
	}
	type pair struct{ tag, item string }
	present := make(map[pair]struct{}, len(existing))
	for _, o := range existing {
		present[pair{o.TagName, o.ItemName}] = struct{}{}
	}

	candidates, err := c.Ores(ctx, from)
	if err != nil {
		return nil, err
	}
	moved := make([]Ore, 0)
	for _, o := range candidates {
		if _, ok := present[pair{o.TagName, o.ItemName}]; ok {
			continue
		}
		if _, err := c.EditOre(ctx, token, o.ID, EditOreArgs{Mod: &to}); err != nil {
			return moved, fmt.Errorf("move ore %s: %w", o.ID, err)
		}
		c.logger.Debug("Moved ore", "id", o.ID, "tag", o.TagName, "item", o.ItemName, "to", to)
		moved = append(moved, o)
	}
	return moved, nil
}
