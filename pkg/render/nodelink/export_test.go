package nodelink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	errs "github.com/matzehuels/depviz/pkg/errors"
)

type fakeRenderer struct {
	err   error
	calls []string
}

func (f *fakeRenderer) Render(_ context.Context, _ string, format string) ([]byte, error) {
	f.calls = append(f.calls, format)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("image:" + format), nil
}

func TestExport_WritesDOTAndImages(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	g := buildGraph(t, "a", map[string][]string{"a": {"b"}, "b": {}}, 2)
	r := &fakeRenderer{}

	res, err := Export(context.Background(), g, ExportOptions{
		Dir:      dir,
		Name:     "deps.png",
		Formats:  []string{"PNG", "svg", "png", "dot"},
		Renderer: r,
	})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	if res.DOTPath != filepath.Join(dir, "deps.dot") {
		t.Errorf("DOTPath = %s, want %s", res.DOTPath, filepath.Join(dir, "deps.dot"))
	}
	data, err := os.ReadFile(res.DOTPath)
	if err != nil {
		t.Fatalf("read DOT: %v", err)
	}
	if string(data) != res.DOT {
		t.Error("written DOT differs from ExportResult.DOT")
	}

	if len(r.calls) != 2 {
		t.Errorf("renderer calls = %v, want [png svg]", r.calls)
	}
	for _, f := range []string{"png", "svg"} {
		path, ok := res.Images[f]
		if !ok {
			t.Errorf("Images[%s] missing", f)
			continue
		}
		got, _ := os.ReadFile(path)
		if string(got) != "image:"+f {
			t.Errorf("%s contents = %q", path, got)
		}
	}
	if !res.Rendered() {
		t.Errorf("Rendered() = false, skipped %v", res.Skipped)
	}
}

func TestExport_RenderFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	g := buildGraph(t, "a", map[string][]string{"a": {}}, 1)

	res, err := Export(context.Background(), g, ExportOptions{
		Dir:      dir,
		Name:     "deps",
		Formats:  []string{"png"},
		Renderer: &fakeRenderer{err: errors.New("no renderer")},
	})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "deps.dot")); err != nil {
		t.Errorf("DOT file not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "deps.png")); !os.IsNotExist(err) {
		t.Errorf("PNG should not exist, stat err = %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Format != "png" {
		t.Fatalf("Skipped = %v, want one png skip", res.Skipped)
	}
	if !errs.Is(res.Skipped[0].Err, errs.ErrCodeRender) {
		t.Errorf("skip code = %v, want %v", errs.GetCode(res.Skipped[0].Err), errs.ErrCodeRender)
	}
	if res.Rendered() {
		t.Error("Rendered() = true, want false")
	}
}

func TestExport_InvalidOptions(t *testing.T) {
	g := buildGraph(t, "a", map[string][]string{"a": {}}, 1)

	tests := []struct {
		name string
		opts ExportOptions
		code errs.Code
	}{
		{"empty name", ExportOptions{Dir: t.TempDir(), Name: " "}, errs.ErrCodeInvalidArgument},
		{"extension only", ExportOptions{Dir: t.TempDir(), Name: ".dot"}, errs.ErrCodeInvalidArgument},
		{"bad format", ExportOptions{Dir: t.TempDir(), Name: "x", Formats: []string{"pdf"}}, errs.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Export(context.Background(), g, tt.opts)
			if !errs.Is(err, tt.code) {
				t.Errorf("Export() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"deps", "deps"},
		{"deps.dot", "deps"},
		{"deps.PNG", "deps"},
		{"deps.svg", "deps"},
		{"deps.gv", "deps"},
		{"musl-1.2.dev", "musl-1.2.dev"},
		{"  spaced.png ", "spaced"},
		{"sub/deps.dot", "sub/deps"},
	}
	for _, tt := range tests {
		if got := BaseName(tt.in); got != tt.want {
			t.Errorf("BaseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExport_JSONIsWrittenNotRendered(t *testing.T) {
	dir := t.TempDir()
	g := buildGraph(t, "a", map[string][]string{"a": {"b"}, "b": {}}, 2)
	r := &fakeRenderer{err: errors.New("should not be called")}

	res, err := Export(context.Background(), g, ExportOptions{
		Dir:      dir,
		Name:     "deps.json",
		Formats:  []string{"json"},
		Renderer: r,
	})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if len(r.calls) != 0 {
		t.Errorf("renderer called for %v", r.calls)
	}
	want := filepath.Join(dir, "deps.json")
	if res.Images[FormatJSON] != want {
		t.Errorf("Images[json] = %q, want %q", res.Images[FormatJSON], want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("JSON file not written: %v", err)
	}
	if !res.Rendered() {
		t.Error("Rendered() = false, want true")
	}
}
