package wiki

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
)

// MCP tool wrappers over the generic query surface.

const (
	defaultToolLimit = 50
	maxToolLimit     = 500
)

var listNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// reservedListParams are set by the query itself and cannot be overridden
var reservedListParams = map[string]bool{
	"action": true, "list": true, "format": true, "formatversion": true, "continue": true,
}

// QueryListArgs contains parameters for a generic list query
type QueryListArgs struct {
	List   string            `json:"list" jsonschema:"required" jsonschema_description:"List module name (e.g. allpages, categorymembers, tiles)"`
	Params map[string]string `json:"params,omitempty" jsonschema_description:"Extra list parameters (e.g. {\"apprefix\": \"Copper\"})"`
	Limit  int               `json:"limit,omitempty" jsonschema_description:"Maximum records to return (default 50, max 500)"`
}

// QueryListResult is the result of a generic list query
type QueryListResult struct {
	List      string           `json:"list"`
	Records   []map[string]any `json:"records"`
	Count     int              `json:"count"`
	Truncated bool             `json:"truncated,omitempty"`
}

func (a QueryListArgs) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("list", a.List),
		slog.Int("params", len(a.Params)),
		slog.Int("limit", a.Limit))
}

func (r QueryListResult) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("records", r.Count), slog.Bool("truncated", r.Truncated))
}

// RecentChangesArgs contains parameters for listing recent changes
type RecentChangesArgs struct {
	Limit int `json:"limit,omitempty" jsonschema_description:"Maximum changes to return (default 50, max 500)"`
}

func (a RecentChangesArgs) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("limit", a.Limit))
}

// RecentChange is one entry of list=recentchanges
type RecentChange struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	User      string `json:"user,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Comment   string `json:"comment,omitempty"`
	LogType   string `json:"logtype,omitempty"`
	LogAction string `json:"logaction,omitempty"`
	RevID     int64  `json:"revid,omitempty"`
	OldRevID  int64  `json:"old_revid,omitempty"`
	NewLen    int64  `json:"newlen,omitempty"`
	OldLen    int64  `json:"oldlen,omitempty"`
}

// RecentChangesResult is the result of listing recent changes
type RecentChangesResult struct {
	Changes   []RecentChange `json:"changes"`
	Count     int            `json:"count"`
	Truncated bool           `json:"truncated,omitempty"`
}

func (r RecentChangesResult) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("changes", r.Count), slog.Bool("truncated", r.Truncated))
}

func toolLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, fmt.Errorf("limit cannot be negative")
	case limit > maxToolLimit:
		return 0, fmt.Errorf("limit cannot exceed %d", maxToolLimit)
	case limit == 0:
		return defaultToolLimit, nil
	}
	return limit, nil
}

// QueryListMCP is the MCP wrapper for Query
func (s *Session) QueryListMCP(ctx context.Context, args QueryListArgs) (QueryListResult, error) {
	if !listNameRegex.MatchString(args.List) {
		return QueryListResult{}, fmt.Errorf("invalid list name %q", args.List)
	}
	limit, err := toolLimit(args.Limit)
	if err != nil {
		return QueryListResult{}, err
	}

	q := s.Query(args.List)
	for k, v := range args.Params {
		if reservedListParams[k] {
			return QueryListResult{}, fmt.Errorf("parameter %q cannot be overridden", k)
		}
		q.Arg(k, v)
	}

	records, truncated, err := collectLimit[map[string]any](ctx, q, limit)
	if err != nil {
		return QueryListResult{}, err
	}
	return QueryListResult{
		List:      args.List,
		Records:   records,
		Count:     len(records),
		Truncated: truncated,
	}, nil
}

// RecentChangesMCP is the MCP wrapper for QueryRecentChanges
func (s *Session) RecentChangesMCP(ctx context.Context, args RecentChangesArgs) (RecentChangesResult, error) {
	limit, err := toolLimit(args.Limit)
	if err != nil {
		return RecentChangesResult{}, err
	}

	changes, truncated, err := collectLimit[RecentChange](ctx, s.QueryRecentChanges(limit), limit)
	if err != nil {
		return RecentChangesResult{}, err
	}
	return RecentChangesResult{Changes: changes, Count: len(changes), Truncated: truncated}, nil
}

// collectLimit decodes up to limit records and reports whether more were available
func collectLimit[T any](ctx context.Context, q *Query, limit int) ([]T, bool, error) {
	out := make([]T, 0, limit)
	for rec, err := range q.All(ctx) {
		if err != nil {
			return nil, false, err
		}
		if len(out) == limit {
			return out, true, nil
		}
		v, err := DecodeRecord[T](rec)
		if err != nil {
			return nil, false, err
		}
		out = append(out, v)
	}
	return out, false, nil
}
