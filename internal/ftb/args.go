package ftb

import "log/slog"

// ListTilesArgs contains parameters for listing tiles
type ListTilesArgs struct {
	Mod   string `json:"mod,omitempty" jsonschema_description:"Mod abbreviation (e.g. GT, IC2); empty lists every mod"`
	Limit int    `json:"limit,omitempty" jsonschema_description:"Maximum tiles to return (default 100, max 500)"`
}

// ListTilesResult is the result of listing tiles
type ListTilesResult struct {
	Tiles     []Tile `json:"tiles"`
	Count     int    `json:"count"`
	Truncated bool   `json:"truncated,omitempty"`
}

// ListOresArgs contains parameters for listing ore dictionary entries
type ListOresArgs struct {
	Mod   string `json:"mod,omitempty" jsonschema_description:"Mod abbreviation; empty lists every mod"`
	Tag   string `json:"tag,omitempty" jsonschema_description:"Only entries with this ore dictionary tag (e.g. ingotCopper)"`
	Limit int    `json:"limit,omitempty" jsonschema_description:"Maximum entries to return (default 100, max 500)"`
}

// ListOresResult is the result of listing ore dictionary entries
type ListOresResult struct {
	Ores      []Ore `json:"ores"`
	Count     int   `json:"count"`
	Truncated bool  `json:"truncated,omitempty"`
}

// ListSheetsArgs contains parameters for listing tilesheets (none)
type ListSheetsArgs struct{}

// ListSheetsResult is the result of listing tilesheets
type ListSheetsResult struct {
	Sheets []Sheet `json:"sheets"`
	Count  int     `json:"count"`
}

func (a ListTilesArgs) LogValue() slog.Value {
	return slog.GroupValue(slog.String("mod", a.Mod), slog.Int("limit", a.Limit))
}

func (r ListTilesResult) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("tiles", r.Count), slog.Bool("truncated", r.Truncated))
}

func (a ListOresArgs) LogValue() slog.Value {
	return slog.GroupValue(slog.String("mod", a.Mod), slog.String("tag", a.Tag), slog.Int("limit", a.Limit))
}

func (r ListOresResult) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("ores", r.Count), slog.Bool("truncated", r.Truncated))
}

func (ListSheetsArgs) LogValue() slog.Value { return slog.GroupValue() }

func (r ListSheetsResult) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("sheets", r.Count))
}
