package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/kintree/pkg/errors"
	kio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/person"
	"github.com/matzehuels/kintree/pkg/store"
)

// isolate points every XDG directory into a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func family() []person.Person {
	return []person.Person{
		{ID: "1", Data: person.Data{FirstName: "John", LastName: "Smith", Gender: person.GenderMale},
			Rels: person.Rels{Spouses: []string{"2"}, Children: []string{"3"}}},
		{ID: "2", Data: person.Data{FirstName: "Jane", Gender: person.GenderFemale},
			Rels: person.Rels{Spouses: []string{"1"}, Children: []string{"3"}}},
		{ID: "3", Data: person.Data{FirstName: "Tom"}, Rels: person.Rels{Father: "1", Mother: "2"}},
	}
}

func writeFamily(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "family.json")
	if err := kio.ExportFile(family(), path); err != nil {
		t.Fatal(err)
	}
	return path
}

func loadChart(t *testing.T, name string) *store.Snapshot {
	t.Helper()
	st, err := store.NewFileStore("")
	if err != nil {
		t.Fatal(err)
	}
	snap, err := st.Load(context.Background(), name)
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func TestImportRenderExport(t *testing.T) {
	dir := isolate(t)
	if err := execute(t, "import", writeFamily(t, dir)); err != nil {
		t.Fatalf("import: %v", err)
	}
	if n := len(loadChart(t, store.DefaultChart).People); n != 3 {
		t.Fatalf("stored people = %d, want 3", n)
	}

	base := filepath.Join(dir, "out", "chart")
	if err := execute(t, "render", "-f", "svg,json,dot", "-o", base+".svg"); err != nil {
		t.Fatalf("render: %v", err)
	}
	for format, want := range map[string]string{
		"svg":  `id="card-3"`,
		"json": `"cards"`,
		"dot":  "digraph",
	} {
		data, err := os.ReadFile(base + "." + format)
		if err != nil {
			t.Fatalf("%s output: %v", format, err)
		}
		if !strings.Contains(string(data), want) {
			t.Errorf("%s output missing %q", format, want)
		}
	}

	out := filepath.Join(dir, "export.json")
	if err := execute(t, "export", out); err != nil {
		t.Fatalf("export: %v", err)
	}
	people, err := kio.ImportFile(out)
	if err != nil || len(people) != 3 {
		t.Errorf("exported %d people, %v", len(people), err)
	}
}

func TestSeparateCharts(t *testing.T) {
	dir := isolate(t)
	if err := execute(t, "--chart", "smiths", "import", writeFamily(t, dir)); err != nil {
		t.Fatal(err)
	}
	if n := len(loadChart(t, "smiths").People); n != 3 {
		t.Errorf("smiths = %d people", n)
	}
	if !loadChart(t, store.DefaultChart).IsEmpty() {
		t.Error("default chart should be untouched")
	}
	if err := execute(t, "--chart", "../etc", "render"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad chart name error = %v", err)
	}
	if err := execute(t, "charts", "delete", "smiths"); err != nil {
		t.Fatal(err)
	}
	if !loadChart(t, "smiths").IsEmpty() {
		t.Error("smiths survived delete")
	}
}

func TestViewCommands(t *testing.T) {
	dir := isolate(t)
	if err := execute(t, "import", writeFamily(t, dir)); err != nil {
		t.Fatal(err)
	}
	steps := [][]string{
		{"orientation", "horizontal"},
		{"pin", "3", "500", "40"},
		{"collapse", "2"},
	}
	for _, args := range steps {
		if err := execute(t, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}
	view := loadChart(t, store.DefaultChart).View
	if view.Orientation != layout.Horizontal {
		t.Errorf("orientation = %q", view.Orientation)
	}
	if p, ok := view.Pins["3"]; !ok || p.X != 500 || p.Y != 40 {
		t.Errorf("pins = %v", view.Pins)
	}
	if !slices.Equal(view.Collapsed, []string{"2"}) {
		t.Errorf("collapsed = %v", view.Collapsed)
	}

	if err := execute(t, "reset-positions"); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "collapse", "2"); err != nil {
		t.Fatal(err)
	}
	view = loadChart(t, store.DefaultChart).View
	if len(view.Pins) != 0 || len(view.Collapsed) != 0 {
		t.Errorf("view after reset = %+v", view)
	}

	tests := []struct {
		args []string
		want errors.Code
	}{
		{[]string{"orientation", "diagonal"}, errors.ErrCodeInvalidOrientation},
		{[]string{"pin", "3", "x", "1"}, errors.ErrCodeInvalidInput},
		{[]string{"pin", "404", "1", "1"}, errors.ErrCodeNotFound},
		{[]string{"collapse", "404"}, errors.ErrCodeNotFound},
		{[]string{"remove", "404"}, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		if err := execute(t, tt.args...); !errors.Is(err, tt.want) {
			t.Errorf("%v error = %v, want %s", tt.args, err, tt.want)
		}
	}
}

func TestRemoveAndClear(t *testing.T) {
	dir := isolate(t)
	if err := execute(t, "import", writeFamily(t, dir)); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "remove", "3"); err != nil {
		t.Fatal(err)
	}
	snap := loadChart(t, store.DefaultChart)
	if len(snap.People) != 2 {
		t.Fatalf("people = %d", len(snap.People))
	}
	for _, p := range snap.People {
		if slices.Contains(p.Rels.Children, "3") {
			t.Errorf("%s still lists removed child", p.ID)
		}
	}
	if err := execute(t, "clear"); err != nil {
		t.Fatal(err)
	}
	if n := len(loadChart(t, store.DefaultChart).People); n != 0 {
		t.Errorf("people after clear = %d", n)
	}
}

// backend serves the person API for one family.
func backend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/details/{id}/network", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(family())
	})
	mux.HandleFunc("POST /api/details/add", func(w http.ResponseWriter, r *http.Request) {
		var pl person.Payload
		if err := json.NewDecoder(r.Body).Decode(&pl); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if pl.PersonName != "Ada Smith" {
			t.Errorf("personname = %q", pl.PersonName)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"_id": "99"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, dir, baseURL string) string {
	t.Helper()
	path := filepath.Join(dir, "kintree.toml")
	body := "[api]\nbase_url = \"" + baseURL + "\"\nretries = 1\n\n[cache]\nbackend = \"none\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFetchAndAdd(t *testing.T) {
	dir := isolate(t)
	cfg := writeConfig(t, dir, backend(t).URL)

	if err := execute(t, "--config", cfg, "fetch", "1"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if n := len(loadChart(t, store.DefaultChart).People); n != 3 {
		t.Fatalf("people after fetch = %d", n)
	}

	err := execute(t, "--config", cfg, "add", "--relation", "child", "--of", "1", "--name", "Ada Smith", "--gender", "f")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	snap := loadChart(t, store.DefaultChart)
	var ada *person.Person
	for i := range snap.People {
		if snap.People[i].ID == "99" {
			ada = &snap.People[i]
		}
	}
	if ada == nil {
		t.Fatalf("new person not stored: %+v", snap.People)
	}
	if ada.Rels.Father != "1" || ada.Rels.Mother != "2" || ada.Data.Gender != person.GenderFemale {
		t.Errorf("new person = %+v", ada)
	}

	if err := execute(t, "--config", cfg, "fetch", "7"); !errors.Is(err, errors.ErrCodeNetworkFetch) {
		t.Errorf("fetch unknown error = %v", err)
	}
	if n := len(loadChart(t, store.DefaultChart).People); n != 4 {
		t.Errorf("failed fetch changed the chart: %d people", n)
	}
}

func TestAddValidation(t *testing.T) {
	isolate(t)
	tests := [][]string{
		{"add", "--relation", "cousin", "--of", "1", "--name", "X"},
		{"add", "--relation", "child", "--of", "1"},
		{"add", "--relation", "child", "--of", "1", "--name", "X", "--gender", "Q"},
		{"edit", "1"},
		{"search"},
	}
	for _, args := range tests {
		if err := execute(t, args...); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("%v error = %v, want INVALID_INPUT", args, err)
		}
	}
}

func TestConfigCommands(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config", "kintree", "config.toml")

	if err := execute(t, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("template not written: %v", err)
	}
	if err := execute(t, "config", "init"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second init error = %v", err)
	}
	if err := execute(t, "config", "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
	if err := execute(t, "config", "show"); err != nil {
		t.Errorf("config show: %v", err)
	}

	if err := os.WriteFile(path, []byte("[layout]\norientaton = \"horizontal\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "render"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("typo in config error = %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"SVG, png,svg", []string{"svg", "png"}},
		{",", []string{"svg"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if err := validateFormats([]string{"svg", "gif"}); err == nil {
		t.Error("validateFormats accepted gif")
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []string
		want    map[string]string
	}{
		{"single explicit", "tree.out", []string{"svg"}, map[string]string{"svg": "tree.out"}},
		{"default base", "", []string{"svg", "png"}, map[string]string{"svg": "smiths.svg", "png": "smiths.png"}},
		{"strips format ext", "out/tree.svg", []string{"svg", "json"}, map[string]string{"svg": "out/tree.svg", "json": "out/tree.json"}},
		{"keeps other ext", "tree.v2", []string{"svg", "dot"}, map[string]string{"svg": "tree.v2.svg", "dot": "tree.v2.dot"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.output, "smiths", tt.formats)
			for f, p := range tt.want {
				if got[f] != p {
					t.Errorf("%s path = %q, want %q", f, got[f], p)
				}
			}
		})
	}
}

func TestPlural(t *testing.T) {
	for n, want := range map[int]string{0: "0 matches", 1: "1 match", 3: "3 matches"} {
		if got := plural(n, "match"); got != want {
			t.Errorf("plural(%d) = %q, want %q", n, got, want)
		}
	}
}
