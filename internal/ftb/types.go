// Package ftb provides typed access to the tilesheet and ore dictionary
// extensions of the FTB wiki, on top of a wiki.Session.
package ftb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a numeric record id. Older extension versions send ids as strings,
// so both forms are accepted.
type ID int64

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n)
	return nil
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Tile is one icon on a mod's tilesheet (list=tiles)
type Tile struct {
	ID   ID     `json:"id"`
	Mod  string `json:"mod"`
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Z    int    `json:"z"`
}

// Sheet is a mod's tilesheet (list=sheets)
type Sheet struct {
	ID    ID     `json:"id,omitempty"`
	Mod   string `json:"mod"`
	Sizes string `json:"sizes"` // "|"-separated pixel sizes, e.g. "16|32"
}

// TileTranslation is a localised name of a tile (list=tiletranslations)
type TileTranslation struct {
	ID          ID     `json:"entry_id"`
	Language    string `json:"language"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
}

// Ore is an ore dictionary entry (list=oredictsearch)
type Ore struct {
	ID         ID     `json:"id"`
	TagName    string `json:"tag_name"`
	ItemName   string `json:"item_name"`
	ModName    string `json:"mod_name"`
	GridParams string `json:"grid_params,omitempty"`
}

// TileKey identifies a tile by item name and mod
type TileKey struct {
	Name string
	Mod  string
}

// Key returns the lookup key of the tile
func (t Tile) Key() TileKey {
	return TileKey{Name: t.Name, Mod: t.Mod}
}

// TileKey returns the key of the tile the ore's item should have
func (o Ore) TileKey() TileKey {
	return TileKey{Name: o.ItemName, Mod: o.ModName}
}

// NewTile is one line of an addtiles import: position and item name
type NewTile struct {
	X    int
	Y    int
	Name string
}

func (t NewTile) String() string {
	return fmt.Sprintf("%d %d %s", t.X, t.Y, t.Name)
}

// EditOreArgs lists the fields of an ore entry to change; nil fields are kept
type EditOreArgs struct {
	Mod     *string
	Tag     *string
	Item    *string
	Params  *string
	Summary *string
}

// Export is every tilesheet and ore dictionary record of the wiki
type Export struct {
	Tiles        []json.RawMessage
	Sheets       []json.RawMessage
	Ores         []json.RawMessage
	Translations []json.RawMessage
}
