package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/matzehuels/simcheck/pkg/errors"
	"github.com/matzehuels/simcheck/pkg/raster"
	"github.com/matzehuels/simcheck/pkg/store"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writeImage(t *testing.T, path string, img image.Image) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := raster.EncodeFile(path, img); err != nil {
		t.Fatal(err)
	}
	return path
}

// testEnv is a CLI whose config keeps every backend inside a temp dir.
type testEnv struct {
	t      *testing.T
	dir    string
	config string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`[cache]
backend = "file"
dir = %q

[store]
backend = "sqlite"
path = %q
`, filepath.Join(dir, "cache"), filepath.Join(dir, "history.db"))
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	return &testEnv{t: t, dir: dir, config: path}
}

func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", e.config}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"compare", "signature", "distance", "merge", "export-page", "fixtures",
		"review", "history", "serve", "cache", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestCompareCommandFlow(t *testing.T) {
	env := newTestEnv(t)
	actual := writeImage(t, filepath.Join(env.dir, "map.png"), solid(200, 200, color.White))
	expected := filepath.Join(env.dir, "expectedMap.tiff")

	_, err := env.run("compare", "--record", expected, actual)
	if !errors.Is(err, errors.ErrCodeMissingReference) {
		t.Fatalf("first compare error = %v, want %s", err, errors.ErrCodeMissingReference)
	}
	artifact := filepath.Join(env.dir, "actualMap.png")
	if _, err := os.Stat(artifact); err != nil {
		t.Fatalf("artifact not written: %v", err)
	}

	if _, err := env.run("review", "--accept-all", env.dir); err != nil {
		t.Fatalf("review --accept-all: %v", err)
	}
	if _, err := os.Stat(expected); err != nil {
		t.Fatalf("expected file not promoted: %v", err)
	}

	out, err := env.run("compare", "--json", "--record", expected, actual)
	if err != nil {
		t.Fatalf("second compare: %v", err)
	}
	var res struct {
		Outcome  string  `json:"outcome"`
		Distance float64 `json:"distance"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if res.Outcome != "pass" || res.Distance != 0 {
		t.Errorf("result = %+v, want pass at 0", res)
	}

	out, err = env.run("history", "--json", "--expected", expected)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var recs []store.Record
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		t.Fatalf("decode history %q: %v", out, err)
	}
	if len(recs) != 2 || recs[0].Outcome != "pass" || recs[1].Outcome != "missing-reference" {
		t.Errorf("history = %+v, want pass then missing-reference", recs)
	}
}

func TestCompareCommandExceeded(t *testing.T) {
	env := newTestEnv(t)
	actual := writeImage(t, filepath.Join(env.dir, "page.png"), solid(200, 200, color.White))
	expected := writeImage(t, filepath.Join(env.dir, "expectedPage.tiff"), solid(200, 200, color.Black))

	_, err := env.run("compare", "-m", "5", "--no-artifact", expected, actual)
	if !errors.Is(err, errors.ErrCodeSimilarityExceeded) {
		t.Fatalf("compare error = %v, want %s", err, errors.ErrCodeSimilarityExceeded)
	}
	if _, err := os.Stat(filepath.Join(env.dir, "actualPage.png")); !os.IsNotExist(err) {
		t.Error("--no-artifact still wrote the artifact")
	}
}

func TestDistanceCommand(t *testing.T) {
	env := newTestEnv(t)
	a := writeImage(t, filepath.Join(env.dir, "a.png"), solid(200, 200, color.White))
	b := writeImage(t, filepath.Join(env.dir, "b.png"), solid(100, 100, color.White))

	out, err := env.run("distance", a, b)
	if err != nil {
		t.Fatalf("distance: %v", err)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil || d != 0 {
		t.Errorf("distance output = %q, want 0", out)
	}
}

func TestSignatureCommandJSON(t *testing.T) {
	env := newTestEnv(t)
	img := writeImage(t, filepath.Join(env.dir, "a.png"), solid(200, 200, color.RGBA{R: 9, G: 8, B: 7, A: 255}))

	out, err := env.run("signature", "--json", img)
	if err != nil {
		t.Fatalf("signature: %v", err)
	}
	var sig struct {
		Size int    `json:"size"`
		Pix  []byte `json:"pix"`
	}
	if err := json.Unmarshal([]byte(out), &sig); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sig.Size != 50 || len(sig.Pix) != 50*50*3 || sig.Pix[0] != 9 {
		t.Errorf("signature size %d, %d bytes, first %d", sig.Size, len(sig.Pix), sig.Pix[0])
	}
}

func TestMergeCommand(t *testing.T) {
	env := newTestEnv(t)
	base := writeImage(t, filepath.Join(env.dir, "base.png"), solid(30, 20, color.White))
	svg := filepath.Join(env.dir, "dot.svg")
	markup := `<svg xmlns="http://www.w3.org/2000/svg" width="30" height="20"><rect width="30" height="20" fill="#000"/></svg>`
	if err := os.WriteFile(svg, []byte(markup), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(env.dir, "merged.tiff")

	if _, err := env.run("merge", "-o", out, base, svg); err != nil {
		t.Fatalf("merge: %v", err)
	}
	img, err := raster.DecodeFile(out)
	if err != nil {
		t.Fatalf("decode merged: %v", err)
	}
	if img.Bounds().Dx() != 30 || img.Bounds().Dy() != 20 {
		t.Errorf("bounds = %v, want 30x20", img.Bounds())
	}

	if _, err := env.run("merge", "-o", filepath.Join(env.dir, "x.svg"), base); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("merge to svg error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestFixturesCommand(t *testing.T) {
	env := newTestEnv(t)
	fixtures := filepath.Join(env.dir, "fixtures")
	writeImage(t, filepath.Join(fixtures, "expectedA.png"), solid(4, 4, color.White))

	if _, err := env.run("fixtures", fixtures); err != nil {
		t.Fatalf("fixtures: %v", err)
	}
	if _, err := os.Stat(filepath.Join(fixtures, "expectedA.tiff")); err != nil {
		t.Errorf("tiff not written: %v", err)
	}
}

func TestCacheCommands(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run("cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if got := strings.TrimSpace(out); got != filepath.Join(env.dir, "cache") {
		t.Errorf("cache path = %q", got)
	}
	if _, err := env.run("cache", "clear"); err != nil {
		t.Errorf("cache clear: %v", err)
	}
}

func TestBadConfig(t *testing.T) {
	env := newTestEnv(t)
	if err := os.WriteFile(env.config, []byte("[cache]\nbackend = \"memcached\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := env.run("cache", "path"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}
