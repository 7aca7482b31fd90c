package cli

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gogpu/imglayout"
)

// execute runs the root command with args and returns stdout and the log.
func execute(t *testing.T, args ...string) (out, logs string, err error) {
	t.Helper()
	t.Cleanup(func() { imglayout.SetLogger(nil) })

	var stdout, stderr bytes.Buffer
	c := New(&stderr, LogInfo)
	root := c.RootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stdout)
	root.SetArgs(args)

	err = root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func assertContains(t *testing.T, s string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(s, w) {
			t.Errorf("output does not contain %q:\n%s", w, s)
		}
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestLogBatch(t *testing.T) {
	p := imglayout.NewPlanner(imglayout.MustCaps(imglayout.Gen7), imglayout.WithCache(8))
	defer p.Close()

	bad := imglayout.Request{Kind: imglayout.Kind2D}
	l, err := p.Plan(imglayout.Request{
		Kind: imglayout.Kind2D, Width: 16, Height: 16, Depth: 1,
		BlockWidth: 1, BlockHeight: 1, BlockSize: 4,
		LevelCount: 1, ArraySize: 1, SampleCount: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	_, badErr := p.Plan(bad)
	results := []imglayout.Result{{Layout: l}, {Err: badErr}}

	var buf bytes.Buffer
	logBatch(newLogger(&buf, log.DebugLevel), imglayout.Gen7, results, time.Millisecond, p.Stats())

	assertContains(t, buf.String(), "planned", "layouts=1", "failed=1",
		"bytes=", "planner", "misses=2")
}

func TestLogTexture(t *testing.T) {
	var out, logs bytes.Buffer
	c := New(&logs, LogDebug)
	if err := c.runZS(&out, imglayout.MustCaps(imglayout.Gen7), &zsOptions{
		format: "d24s8", width: 64, height: 64, levels: 1, array: 1,
	}); err != nil {
		t.Fatalf("runZS() error = %v", err)
	}

	assertContains(t, logs.String(), "texture", "label=zs", "stencil=true", "bos=3",
		"buffer object", "name=tex-2d", `name="hiz texture"`)
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger.Debug("hidden")
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("log = %q", buf.String())
	}
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	assertContains(t, out, imglayout.Version)
}

func TestCapsCommand(t *testing.T) {
	out, _, err := execute(t, "caps", "--all")
	if err != nil {
		t.Fatalf("caps --all error = %v", err)
	}
	assertContains(t, out, "gen6", "gen7", "gen7.5", "gen8", "max 2D size", "8,192", "stencil align")

	out, _, err = execute(t, "caps", "--gen", "gen6")
	if err != nil {
		t.Fatalf("caps error = %v", err)
	}
	if strings.Contains(out, "gen8") {
		t.Errorf("caps --gen gen6 printed gen8:\n%s", out)
	}

	if _, _, err := execute(t, "caps", "--gen", "gen9"); err == nil {
		t.Error("caps --gen gen9 succeeded")
	}
}

func TestPlanCommand(t *testing.T) {
	out, logs, err := execute(t, "plan", "--width", "64", "--height", "64", "--levels", "3")
	if err != nil {
		t.Fatalf("plan error = %v", err)
	}
	assertContains(t, out, "request 0", "tiling", "footprint", "slice w")
	assertContains(t, logs, "planned", "gen=gen7", "layouts=1", "failed=0")
}

func TestPlanCommandDepth(t *testing.T) {
	out, _, err := execute(t, "plan", "--format", "d24x8", "--usage", "zs",
		"--width", "64", "--height", "64")
	if err != nil {
		t.Fatalf("plan error = %v", err)
	}
	assertContains(t, out, "hiz")
}

func TestPlanCommandFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.toml")
	if err := os.WriteFile(path, []byte(sampleRequests), 0o600); err != nil {
		t.Fatal(err)
	}

	out, logs, err := execute(t, "plan", "--file", path, "--workers", "2")
	if err != nil {
		t.Fatalf("plan --file error = %v", err)
	}
	assertContains(t, out, "backbuffer", "shadow")
	assertContains(t, logs, "gen=gen6", "layouts=2")

	// an explicit --gen wins over the file
	color := filepath.Join(t.TempDir(), "color.toml")
	data := "gen = \"gen6\"\n\n[[request]]\nwidth = 256\nheight = 256\nusage = \"rt\"\n"
	if err := os.WriteFile(color, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	_, logs, err = execute(t, "plan", "--file", color, "--gen", "gen8")
	if err != nil {
		t.Fatalf("plan --file --gen error = %v", err)
	}
	assertContains(t, logs, "gen=gen8")

	// interleaved depth/stencil is gen6 only
	if _, _, err := execute(t, "plan", "--file", path, "--gen", "gen8"); err == nil {
		t.Error("plan of d24s8 depth buffer on gen8 succeeded")
	}
}

func TestPlanCommandErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	data := "[[request]]\nname = \"ok\"\nwidth = 16\n\n[[request]]\nname = \"empty\"\nwidth = 0\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "plan", "--file", path)
	if err == nil {
		t.Fatal("plan with an invalid request succeeded")
	}
	assertContains(t, err.Error(), "1 of 2 requests failed")
	assertContains(t, out, "ok", "empty")

	tests := [][]string{
		{"plan", "--width", "16", "--format", "rgba"},
		{"plan", "--width", "16", "--tilings", "z"},
		{"plan", "--file", filepath.Join(t.TempDir(), "missing.toml")},
		{"plan", "extra"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			if _, _, err := execute(t, args...); err == nil {
				t.Errorf("%v succeeded", args)
			}
		})
	}
}

func TestZSCommand(t *testing.T) {
	out, _, err := execute(t, "zs", "--format", "d24s8", "--width", "64", "--height", "64")
	if err != nil {
		t.Fatalf("zs error = %v", err)
	}
	assertContains(t, out, "gen7 depth/stencil descriptor", "depth", "stencil", "hiz", "384c00ff")

	out, _, err = execute(t, "zs", "--null", "--gen", "gen8")
	if err != nil {
		t.Fatalf("zs --null error = %v", err)
	}
	assertContains(t, out, "gen8 depth/stencil descriptor")
	if strings.Contains(out, "hiz") {
		t.Errorf("null descriptor printed a hiz record:\n%s", out)
	}
}

func TestZSCommandErrors(t *testing.T) {
	tests := [][]string{
		{"zs", "--format", "rgba8"},
		{"zs", "--level", "3"},
		{"zs", "--base", "2"},
		{"zs", "--cube"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			if _, _, err := execute(t, args...); err == nil {
				t.Errorf("%v succeeded", args)
			}
		})
	}
}

func TestRenderCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mips.png")
	out, _, err := execute(t, "render", "--width", "64", "--height", "64", "--levels", "4",
		"--size", "128", "--out", path)
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	assertContains(t, out, path)

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("png.DecodeConfig() error = %v", err)
	}
	if max(cfg.Width, cfg.Height) != 128 {
		t.Errorf("image is %dx%d, want longest side 128", cfg.Width, cfg.Height)
	}

	if _, _, err := execute(t, "render", "--width", "0", "--out", path); err == nil {
		t.Error("render of an empty image succeeded")
	}
}
