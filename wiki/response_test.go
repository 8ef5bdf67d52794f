package wiki

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleBody = `{
	"batchcomplete": true,
	"query": {
		"tokens": {"csrftoken": "abc+\\"},
		"tiles": [
			{"id": 7, "mod": "GT", "name": "Copper \"Ore\"", "x": 1, "y": 2, "z": 0},
			{"id": 8, "mod": "GT", "name": "Tin", "x": 2, "y": 2, "z": 0}
		],
		"empty": [],
		"general": {"sitename": "FTB Wiki", "maxuploadsize": 104857600}
	},
	"continue": {"tsfrom": "9", "continue": "-||", "offset": 20, "flag": false, "gone": null}
}`

func sampleResponse(t *testing.T) *Response {
	t.Helper()
	r, err := NewResponse([]byte(sampleBody))
	if err != nil {
		t.Fatalf("NewResponse: %v", err)
	}
	return r
}

func TestResponse_GetString(t *testing.T) {
	r := sampleResponse(t)

	got, err := r.GetString("query", "tokens", "csrftoken")
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if got != `abc+\` {
		t.Errorf("csrftoken = %q", got)
	}

	name, err := r.GetString("query", "tiles", "[0]", "name")
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if name != `Copper "Ore"` {
		t.Errorf("name = %q", name)
	}
}

func TestResponse_GetInt(t *testing.T) {
	r := sampleResponse(t)

	n, err := r.GetInt("query", "general", "maxuploadsize")
	if err != nil {
		t.Fatalf("GetInt: %v", err)
	}
	if n != 104857600 {
		t.Errorf("maxuploadsize = %d", n)
	}

	if _, err := r.GetInt("query", "general", "sitename"); !IsParseError(err) {
		t.Errorf("GetInt on a string should be a parse error, got %v", err)
	}
}

func TestResponse_MissingPath(t *testing.T) {
	r := sampleResponse(t)

	_, err := r.GetString("query", "tokens", "watchtoken")
	if !IsParseError(err) {
		t.Fatalf("expected parse error, got %v", err)
	}
	e, _ := AsError(err)
	if e.Path != "query.tokens.watchtoken" {
		t.Errorf("path = %q", e.Path)
	}
	if !strings.Contains(string(e.Body), "csrftoken") {
		t.Errorf("body should hold the enclosing object, got %s", e.Body)
	}
	if r.Has("query", "tokens", "watchtoken") {
		t.Error("Has should be false for a missing path")
	}
	if !r.Has("continue", "gone") {
		t.Error("Has should be true for a null value")
	}
}

func TestResponse_GetArray(t *testing.T) {
	r := sampleResponse(t)

	tiles, err := r.GetArray("query", "tiles")
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	if len(tiles) != 2 {
		t.Fatalf("tiles = %d, want 2", len(tiles))
	}
	if !json.Valid(tiles[0]) {
		t.Errorf("record is not standalone JSON: %s", tiles[0])
	}

	empty, err := r.GetArray("query", "empty")
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("empty array = %#v, want non-nil empty slice", empty)
	}

	if _, err := r.GetArray("query", "general"); !IsParseError(err) {
		t.Errorf("GetArray on an object should be a parse error, got %v", err)
	}
}

func TestResponse_GetArrayOfStrings(t *testing.T) {
	r, err := NewResponse([]byte(`{"list":["a\"b","c"]}`))
	if err != nil {
		t.Fatalf("NewResponse: %v", err)
	}

	items, err := r.GetArray("list")
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	var first string
	if err := json.Unmarshal(items[0], &first); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if first != `a"b` {
		t.Errorf("first = %q", first)
	}
}

func TestResponse_EachString(t *testing.T) {
	r := sampleResponse(t)

	got := map[string]string{}
	err := r.EachString(func(key, value string) error {
		got[key] = value
		return nil
	}, "continue")
	if err != nil {
		t.Fatalf("EachString: %v", err)
	}

	want := map[string]string{
		"tsfrom":   "9",
		"continue": "-||",
		"offset":   "20",
		"flag":     "false",
		"gone":     "",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}

	err = r.EachString(func(string, string) error { return nil }, "query")
	if !IsParseError(err) {
		t.Errorf("nested members should be a parse error, got %v", err)
	}
}

func TestResponse_Decode(t *testing.T) {
	r := sampleResponse(t)

	var general struct {
		Sitename string `json:"sitename"`
	}
	if err := r.Decode(&general, "query", "general"); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if general.Sitename != "FTB Wiki" {
		t.Errorf("sitename = %q", general.Sitename)
	}

	var token string
	if err := r.Decode(&token, "query", "tokens", "csrftoken"); err != nil {
		t.Fatalf("Decode string: %v", err)
	}
	if token != `abc+\` {
		t.Errorf("token = %q", token)
	}
}

func TestDecodeRecord(t *testing.T) {
	type tile struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	got, err := DecodeRecord[tile](json.RawMessage(`{"id":7,"name":"Copper"}`))
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	if diff := cmp.Diff(tile{ID: 7, Name: "Copper"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	_, err = DecodeRecord[tile](json.RawMessage(`{"id":"seven"}`))
	if !IsParseError(err) {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestNewResponse_Invalid(t *testing.T) {
	if _, err := NewResponse([]byte(`{"a":`)); !IsParseError(err) {
		t.Errorf("expected parse error, got %v", err)
	}
}
