package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"iter"

	"github.com/olgasafonova/mediawiki-client/metrics"
	"github.com/olgasafonova/mediawiki-client/tracing"
)

// Done is returned by Query.Next when the list is exhausted
var Done = errors.New("no more records")

// Query walks a list=<name> query across continuation pages.
// Records come back in server order: page by page, then in page order.
// A Query is not safe for concurrent use.
type Query struct {
	req       *Request
	list      string
	resultKey string

	buf   []json.RawMessage // Current page, reversed so the next record is last
	more  bool
	pages int
	err   error
}

// Query starts a paginated list query
func (s *Session) Query(list string) *Query {
	req := s.Request().
		Arg("action", "query").
		Arg("list", list).
		Arg("continue", "")
	return &Query{req: req, list: list, resultKey: list, more: true}
}

// Arg sets a list parameter
func (q *Query) Arg(key, value string) *Query {
	q.req.Arg(key, value)
	return q
}

// OptionalArg sets a list parameter when value is non-nil
func (q *Query) OptionalArg(key string, value *string) *Query {
	q.req.OptionalArg(key, value)
	return q
}

// ResultKey reads records from query.<key> instead of query.<list>, for
// modules whose result key differs from their list name.
func (q *Query) ResultKey(key string) *Query {
	q.resultKey = key
	return q
}

// List returns the list name
func (q *Query) List() string {
	return q.list
}

// Args returns a copy of the arguments the next page will be fetched with
func (q *Query) Args() map[string]string {
	return q.req.Args()
}

// Next returns the next record, Done at the end of the list, or the error
// that stopped the query. Once an error is returned, every later call returns it.
func (q *Query) Next(ctx context.Context) (json.RawMessage, error) {
	for {
		if n := len(q.buf); n > 0 {
			rec := q.buf[n-1]
			q.buf[n-1] = nil
			q.buf = q.buf[:n-1]
			return rec, nil
		}
		if q.err != nil {
			return nil, q.err
		}
		if !q.more {
			return nil, Done
		}
		if err := q.fill(ctx); err != nil {
			q.err = err
			return nil, err
		}
	}
}

// fill fetches one page and carries its continue object into the arguments
func (q *Query) fill(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "wiki.query")
	defer span.End()
	q.pages++
	tracing.AddQueryAttributes(span, q.list, q.pages)

	resp, err := q.req.Get(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}

	records, err := resp.GetArray("query", q.resultKey)
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}
	metrics.RecordPage(q.list, len(records))

	if resp.Has("continue") {
		next := make(map[string]string)
		err := resp.EachString(func(key, value string) error {
			next[key] = value
			return nil
		}, "continue")
		if err != nil {
			tracing.RecordError(span, err)
			return err
		}
		for k, v := range next {
			q.req.Arg(k, v)
		}
	} else {
		q.more = false
	}

	q.buf = q.buf[:0]
	for i := len(records) - 1; i >= 0; i-- {
		q.buf = append(q.buf, records[i])
	}
	return nil
}

// All ranges over the remaining records. Iteration stops after the first
// error, which is yielded with a nil record.
func (q *Query) All(ctx context.Context) iter.Seq2[json.RawMessage, error] {
	return func(yield func(json.RawMessage, error) bool) {
		for {
			rec, err := q.Next(ctx)
			if errors.Is(err, Done) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Collect drains the query
func (q *Query) Collect(ctx context.Context) ([]json.RawMessage, error) {
	var out []json.RawMessage
	for rec, err := range q.All(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}
