package wiki

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type pageTitle struct {
	Title string `json:"title"`
}

func titles(t *testing.T, q *Query) []string {
	t.Helper()
	var out []string
	for rec, err := range q.All(context.Background()) {
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		p, err := DecodeRecord[pageTitle](rec)
		if err != nil {
			t.Fatalf("DecodeRecord: %v", err)
		}
		out = append(out, p.Title)
	}
	return out
}

func TestQuery_TwoPages(t *testing.T) {
	var requests []url.Values
	f := newFakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Query())
		if r.URL.Query().Get("apcontinue") == "" {
			writeJSON(w, `{"batchcomplete":true,"continue":{"apcontinue":"B|x\"y","continue":"-||"},"query":{"allpages":[{"title":"A1"},{"title":"A2"}]}}`)
			return
		}
		writeJSON(w, `{"batchcomplete":true,"query":{"allpages":[{"title":"B1"}]}}`)
	})
	s := f.session(t)

	q := s.Query("allpages").Arg("aplimit", "2")
	got := titles(t, q)

	if diff := cmp.Diff([]string{"A1", "A2", "B1"}, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if _, err := q.Next(context.Background()); !errors.Is(err, Done) {
		t.Errorf("Next after end = %v, want Done", err)
	}
	if len(requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(requests))
	}

	first := requests[0]
	if v, ok := first["continue"]; !ok || v[0] != "" {
		t.Errorf("first request should send an empty continue, got %v", first)
	}
	if first.Get("list") != "allpages" || first.Get("action") != "query" {
		t.Errorf("first request = %v", first)
	}

	second := requests[1]
	for k, want := range map[string]string{
		"apcontinue": `B|x"y`,
		"continue":   "-||",
		"aplimit":    "2",
		"list":       "allpages",
	} {
		if got := second.Get(k); got != want {
			t.Errorf("second request %s = %q, want %q", k, got, want)
		}
	}
}

func TestQuery_MissingListIsParseError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing", body: `{"batchcomplete":true,"query":{"pages":[]}}`},
		{name: "no query", body: `{"batchcomplete":true}`},
		{name: "object instead of array", body: `{"query":{"allpages":{"title":"A"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.body)
			})
			s := f.session(t)
			q := s.Query("allpages")

			_, err := q.Next(context.Background())
			if !IsParseError(err) {
				t.Fatalf("expected parse error, got %v", err)
			}
			if _, again := q.Next(context.Background()); again != err {
				t.Errorf("second Next = %v, want the same error", again)
			}
			if got := f.hits.Load(); got != 1 {
				t.Errorf("requests = %d, want 1", got)
			}
		})
	}
}

func TestQuery_EmptyPageWithContinue(t *testing.T) {
	f := newFakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cmcontinue") == "" {
			writeJSON(w, `{"continue":{"cmcontinue":"page|2","continue":"-||"},"query":{"categorymembers":[]}}`)
			return
		}
		writeJSON(w, `{"query":{"categorymembers":[{"title":"Ore"}]}}`)
	})
	s := f.session(t)

	got := titles(t, s.Query("categorymembers"))
	if diff := cmp.Diff([]string{"Ore"}, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestQuery_EmptyList(t *testing.T) {
	f := newFakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"batchcomplete":true,"query":{"allpages":[]}}`)
	})
	s := f.session(t)

	recs, err := s.Query("allpages").Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("records = %d, want 0", len(recs))
	}
}

func TestQuery_ResultKey(t *testing.T) {
	f := newFakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("list"); got != "oredictsearch" {
			t.Errorf("list = %q", got)
		}
		writeJSON(w, `{"query":{"oredictentries":[{"title":"ingotCopper"}]}}`)
	})
	s := f.session(t)

	q := s.Query("oredictsearch").ResultKey("oredictentries")
	if q.List() != "oredictsearch" {
		t.Errorf("List() = %q", q.List())
	}
	if diff := cmp.Diff([]string{"ingotCopper"}, titles(t, q)); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestQuery_ContinueScalars(t *testing.T) {
	var second url.Values
	f := newFakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "" {
			writeJSON(w, `{"continue":{"offset":10,"sroffset":true,"continue":"-||"},"query":{"search":[{"title":"A"}]}}`)
			return
		}
		second = r.URL.Query()
		writeJSON(w, `{"query":{"search":[]}}`)
	})
	s := f.session(t)

	if _, err := s.Query("search").Collect(context.Background()); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if second.Get("offset") != "10" || second.Get("sroffset") != "true" {
		t.Errorf("second request = %v", second)
	}
}

func TestQuery_NestedContinueIsParseError(t *testing.T) {
	f := newFakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"continue":{"bad":{"x":1}},"query":{"allpages":[{"title":"A"}]}}`)
	})
	s := f.session(t)

	_, err := s.Query("allpages").Collect(context.Background())
	if !IsParseError(err) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestQuery_APIError(t *testing.T) {
	f := newFakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"error":{"code":"apunknown_apnamespace","info":"Unrecognized value"}}`)
	})
	s := f.session(t)

	recs, err := s.Query("allpages").Arg("apnamespace", "999").Collect(context.Background())
	if !IsAPIError(err) {
		t.Fatalf("expected API error, got %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("records = %d, want 0", len(recs))
	}
	if got := f.hits.Load(); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
}

func TestQuery_AllStopsOnBreak(t *testing.T) {
	f := newFakeWiki(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"continue":{"apcontinue":"B","continue":"-||"},"query":{"allpages":[{"title":"A1"},{"title":"A2"}]}}`)
	})
	s := f.session(t)
	q := s.Query("allpages")

	for _, err := range q.All(context.Background()) {
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		break
	}
	if got := f.hits.Load(); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}

	rec, err := q.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if p, _ := DecodeRecord[pageTitle](rec); p.Title != "A2" {
		t.Errorf("next record = %q, want A2", p.Title)
	}
	if got := q.Args()["apcontinue"]; got != "B" {
		t.Errorf("apcontinue = %q, want B", got)
	}
}
