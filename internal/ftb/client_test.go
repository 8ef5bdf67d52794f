package ftb

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	apierrors "github.com/olgasafonova/mediawiki-client/internal/errors"
	"github.com/olgasafonova/mediawiki-client/wiki"
)

// recorder keeps every request the fake wiki received
type recorder struct {
	mu       sync.Mutex
	requests []url.Values
}

func (r *recorder) add(v url.Values) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, v)
}

func (r *recorder) byAction(action string) []url.Values {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []url.Values
	for _, v := range r.requests {
		if v.Get("action") == action {
			out = append(out, v)
		}
	}
	return out
}

// newTestClient starts a fake wiki; handler returns the JSON body for each request
func newTestClient(t *testing.T, handler func(form url.Values) string) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		rec.add(r.Form)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, handler(r.Form))
	}))
	t.Cleanup(server.Close)

	cfg := &wiki.Config{
		BaseURL:    server.URL + "/api.php",
		UserAgent:  "TestClient/1.0",
		Timeout:    5 * time.Second,
		RetryDelay: time.Millisecond,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := wiki.NewSession(cfg, logger)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return NewClient(s), rec
}

const tilesBody = `{"query":{"tiles":[
	{"id":1,"mod":"GT","name":"Copper Ore","x":0,"y":0,"z":0},
	{"id":2,"mod":"GT","name":"Tin Ore","x":1,"y":0,"z":0},
	{"id":3,"mod":"IC2","name":"Copper Ore","x":0,"y":0,"z":0}
]}}`

func TestQueryTiles_Args(t *testing.T) {
	client, rec := newTestClient(t, func(form url.Values) string {
		return `{"query":{"tiles":[]}}`
	})

	if _, err := client.Tiles(context.Background(), "GT"); err != nil {
		t.Fatalf("Tiles: %v", err)
	}
	if _, err := client.Tiles(context.Background(), ""); err != nil {
		t.Fatalf("Tiles: %v", err)
	}

	reqs := rec.byAction("query")
	if len(reqs) != 2 {
		t.Fatalf("requests = %d, want 2", len(reqs))
	}
	if reqs[0].Get("list") != "tiles" || reqs[0].Get("tslimit") != PageLimit || reqs[0].Get("tsmod") != "GT" {
		t.Errorf("first request = %v", reqs[0])
	}
	if _, ok := reqs[1]["tsmod"]; ok {
		t.Errorf("empty mod should not send tsmod: %v", reqs[1])
	}
}

func TestTiles_Decodes(t *testing.T) {
	client, _ := newTestClient(t, func(url.Values) string { return tilesBody })

	tiles, err := client.Tiles(context.Background(), "")
	if err != nil {
		t.Fatalf("Tiles: %v", err)
	}
	want := []Tile{
		{ID: 1, Mod: "GT", Name: "Copper Ore"},
		{ID: 2, Mod: "GT", Name: "Tin Ore", X: 1},
		{ID: 3, Mod: "IC2", Name: "Copper Ore"},
	}
	if diff := cmp.Diff(want, tiles); diff != "" {
		t.Errorf("tiles mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryOres_ResultKey(t *testing.T) {
	client, rec := newTestClient(t, func(form url.Values) string {
		return `{"query":{"oredictentries":[{"id":"12","tag_name":"oreCopper","item_name":"Copper Ore","mod_name":"GT"}]}}`
	})

	ores, err := client.Ores(context.Background(), "GT")
	if err != nil {
		t.Fatalf("Ores: %v", err)
	}
	want := []Ore{{ID: 12, TagName: "oreCopper", ItemName: "Copper Ore", ModName: "GT"}}
	if diff := cmp.Diff(want, ores); diff != "" {
		t.Errorf("ores mismatch (-want +got):\n%s", diff)
	}

	req := rec.byAction("query")[0]
	if req.Get("list") != "oredictsearch" || req.Get("odlimit") != PageLimit || req.Get("odmod") != "GT" {
		t.Errorf("request = %v", req)
	}
}

func TestSheet_NotFound(t *testing.T) {
	client, _ := newTestClient(t, func(url.Values) string {
		return `{"query":{"sheets":[{"mod":"GT","sizes":"16|32"}]}}`
	})

	sheet, err := client.Sheet(context.Background(), "GT")
	if err != nil {
		t.Fatalf("Sheet: %v", err)
	}
	if sheet.Sizes != "16|32" {
		t.Errorf("sizes = %q", sheet.Sizes)
	}

	_, err = client.Sheet(context.Background(), "IC2")
	if !apierrors.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestPurgeSheet(t *testing.T) {
	var ids []string
	for i := 1; i <= 250; i++ {
		ids = append(ids, `{"id":`+itoa(i)+`,"mod":"GT","name":"T","x":0,"y":0,"z":0}`)
	}
	tiles := `{"query":{"tiles":[` + strings.Join(ids, ",") + `]}}`

	client, rec := newTestClient(t, func(form url.Values) string {
		switch form.Get("action") {
		case "query":
			if form.Get("list") == "sheets" {
				return `{"query":{"sheets":[{"mod":"GT","sizes":"16|32"}]}}`
			}
			return tiles
		case "deletetiles":
			return `{"deletetiles":{"result":"Success"}}`
		case "deletesheet":
			return `{"deletesheet":{"result":"Success"}}`
		}
		return `{"error":{"code":"badaction"}}`
	})

	n, err := client.PurgeSheet(context.Background(), wiki.NewToken[wiki.Csrf]("tok"), "GT")
	if err != nil {
		t.Fatalf("PurgeSheet: %v", err)
	}
	if n != 250 {
		t.Errorf("deleted = %d, want 250", n)
	}

	deletes := rec.byAction("deletetiles")
	if len(deletes) != 3 {
		t.Fatalf("deletetiles calls = %d, want 3", len(deletes))
	}
	if got := len(strings.Split(deletes[0].Get("tsids"), "|")); got != 100 {
		t.Errorf("first batch = %d ids, want 100", got)
	}
	if got := deletes[2].Get("tsids"); !strings.HasPrefix(got, "201|") || !strings.HasSuffix(got, "|250") {
		t.Errorf("last batch = %q", got)
	}
	if deletes[0].Get("tstoken") != "tok" || deletes[0].Get("tssummary") != "Purging tiles" {
		t.Errorf("delete args = %v", deletes[0])
	}

	sheets := rec.byAction("deletesheet")
	if len(sheets) != 1 || sheets[0].Get("tsmod") != "GT" {
		t.Errorf("deletesheet = %v", sheets)
	}
}

func TestPurgeSheet_UnknownMod(t *testing.T) {
	client, rec := newTestClient(t, func(url.Values) string {
		return `{"query":{"sheets":[]}}`
	})

	_, err := client.PurgeSheet(context.Background(), wiki.NewToken[wiki.Csrf]("tok"), "NOPE")
	if !apierrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(rec.byAction("deletetiles")) != 0 {
		t.Error("nothing should be deleted for an unknown mod")
	}
}

func TestImportTiles(t *testing.T) {
	client, rec := newTestClient(t, func(form url.Values) string {
		return `{"` + form.Get("action") + `":{"result":"Success"}}`
	})

	tiles := make([]NewTile, 150)
	for i := range tiles {
		tiles[i] = NewTile{X: i % 16, Y: i / 16, Name: "Item " + itoa(i)}
	}

	if err := client.ImportTiles(context.Background(), wiki.NewToken[wiki.Csrf]("tok"), "GT", "16|32", tiles); err != nil {
		t.Fatalf("ImportTiles: %v", err)
	}

	creates := rec.byAction("createsheet")
	if len(creates) != 1 || creates[0].Get("tssizes") != "16|32" {
		t.Errorf("createsheet = %v", creates)
	}
	adds := rec.byAction("addtiles")
	if len(adds) != 2 {
		t.Fatalf("addtiles calls = %d, want 2", len(adds))
	}
	if !strings.HasPrefix(adds[0].Get("tsimport"), "0 0 Item 0|1 0 Item 1|") {
		t.Errorf("first import = %q", adds[0].Get("tsimport"))
	}
}

func TestCreateSheet_InvalidSizes(t *testing.T) {
	client, rec := newTestClient(t, func(url.Values) string { return `{}` })

	if _, err := client.CreateSheet(context.Background(), wiki.NewToken[wiki.Csrf]("tok"), "GT", "16,32"); err == nil {
		t.Error("expected validation error")
	}
	if len(rec.requests) != 0 {
		t.Error("no request should be sent for invalid sizes")
	}
}

func TestEditOre(t *testing.T) {
	client, rec := newTestClient(t, func(url.Values) string {
		return `{"editoredict":{"result":"Success"}}`
	})

	mod := "GT5"
	if _, err := client.EditOre(context.Background(), wiki.NewToken[wiki.Csrf]("tok"), 42, EditOreArgs{Mod: &mod}); err != nil {
		t.Fatalf("EditOre: %v", err)
	}

	req := rec.byAction("editoredict")[0]
	if req.Get("odid") != "42" || req.Get("odmod") != "GT5" || req.Get("odtoken") != "tok" {
		t.Errorf("request = %v", req)
	}
	for _, k := range []string{"odtag", "oditem", "odparams"} {
		if _, ok := req[k]; ok {
			t.Errorf("unset field %s should not be sent", k)
		}
	}
}

func TestEditOre_APIError(t *testing.T) {
	client, _ := newTestClient(t, func(url.Values) string {
		return `{"error":{"code":"permissiondenied","info":"You need the editoredict right"}}`
	})

	_, err := client.EditOre(context.Background(), wiki.NewToken[wiki.Csrf]("tok"), 1, EditOreArgs{})
	if !wiki.IsAPIError(err) {
		t.Errorf("expected API error, got %v", err)
	}
}

func TestInvalidOres(t *testing.T) {
	client, _ := newTestClient(t, func(form url.Values) string {
		if form.Get("list") == "tiles" {
			return tilesBody
		}
		return `{"query":{"oredictentries":[
			{"id":1,"tag_name":"oreCopper","item_name":"Copper Ore","mod_name":"GT"},
			{"id":2,"tag_name":"oreTin","item_name":"Tin Ore","mod_name":"IC2"},
			{"id":3,"tag_name":"oreTin","item_name":"Tin Ore","mod_name":"GT"}
		]}}`
	})

	invalid, err := client.InvalidOres(context.Background())
	if err != nil {
		t.Fatalf("InvalidOres: %v", err)
	}
	if len(invalid) != 1 || invalid[0].ID != 2 {
		t.Errorf("invalid = %+v, want only id 2", invalid)
	}
}

func TestExport(t *testing.T) {
	client, rec := newTestClient(t, func(form url.Values) string {
		switch form.Get("list") {
		case "tiles":
			return `{"query":{"tiles":[{"id":1,"mod":"GT","name":"A"},{"id":2,"mod":"GT","name":"B"}]}}`
		case "sheets":
			return `{"query":{"sheets":[{"mod":"GT","sizes":"16"}]}}`
		case "oredictsearch":
			return `{"query":{"oredictentries":[]}}`
		case "tiletranslations":
			return `{"query":{"tiletranslations":[{"entry_id":` + form.Get("tsid") + `,"language":"de","display_name":"X"}]}}`
		}
		return `{}`
	})

	export, err := client.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(export.Tiles) != 2 || len(export.Sheets) != 1 || len(export.Ores) != 0 || len(export.Translations) != 2 {
		t.Errorf("export sizes = %d/%d/%d/%d", len(export.Tiles), len(export.Sheets), len(export.Ores), len(export.Translations))
	}

	var tsids []string
	for _, v := range rec.byAction("query") {
		if v.Get("list") == "tiletranslations" {
			tsids = append(tsids, v.Get("tsid"))
		}
	}
	if diff := cmp.Diff([]string{"1", "2"}, tsids); diff != "" {
		t.Errorf("translation lookups mismatch (-want +got):\n%s", diff)
	}
}

func TestChunkIDs(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		size   int
		want   []string
	}{
		{name: "empty", values: nil, size: 2, want: []string{}},
		{name: "exact", values: []string{"1", "2", "3", "4"}, size: 2, want: []string{"1|2", "3|4"}},
		{name: "remainder", values: []string{"1", "2", "3"}, size: 2, want: []string{"1|2", "3"}},
		{name: "default size", values: []string{"1"}, size: 0, want: []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ChunkIDs(tt.values, tt.size)); diff != "" {
				t.Errorf("ChunkIDs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func itoa(i int) string {
	return ID(i).String()
}
