package cli_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/colorvibe/internal/cli"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	rootCmd := cli.NewRootCmd()
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := rootCmd.Execute()
	return outBuf.String(), err
}

// writeStripes writes a PNG of vertical stripes, one per colour.
func writeStripes(t *testing.T, colors ...color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 10*len(colors), 10))
	for i, c := range colors {
		for x := i * 10; x < (i+1)*10; x++ {
			for y := range 10 {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "stripes.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode image: %v", err)
	}
	return path
}

func TestContrastCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "black on white", args: []string{"contrast", "000000", "#ffffff"}, want: "#000000 on #ffffff: 21.00:1 (AAA)"},
		{name: "identical", args: []string{"contrast", "#3b82f6", "#3b82f6"}, want: "1.00:1 (Fail)"},
		{name: "invalid hex", args: []string{"contrast", "#12", "#ffffff"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("contrast error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output %q does not contain %q", out, tt.want)
			}
		})
	}
}

func TestShuffleCommand(t *testing.T) {
	out, err := run(t, "shuffle", "--seed", "7", "--color", "primary=#1d4ed8", "--lock", "primary", "-f", "export", "--preview", "never")
	if err != nil {
		t.Fatalf("shuffle error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("shuffle printed %d lines, want 5:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "primary: #1d4ed8 / rgb(29, 78, 216) / ") {
		t.Errorf("locked primary line = %q", lines[0])
	}
}

func TestExtractCommand(t *testing.T) {
	path := writeStripes(t,
		color.NRGBA{R: 220, G: 20, B: 60, A: 255},
		color.NRGBA{R: 20, G: 160, B: 60, A: 255},
		color.NRGBA{R: 30, G: 60, B: 200, A: 255},
		color.NRGBA{R: 230, G: 200, B: 40, A: 255},
		color.NRGBA{R: 20, G: 20, B: 20, A: 255},
	)

	out, err := run(t, "extract", path, "-f", "json", "--preview", "never")
	if err != nil {
		t.Fatalf("extract error = %v", err)
	}

	var report struct {
		Palette []struct {
			Role string `json:"role"`
			Hex  string `json:"hex"`
		} `json:"palette"`
		Mood     string `json:"mood"`
		FellBack bool   `json:"fell_back"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("extract output is not JSON: %v\n%s", err, out)
	}
	if report.FellBack {
		t.Error("extract fell back to the default palette")
	}
	if len(report.Palette) != 5 || report.Mood == "" {
		t.Errorf("unexpected report %+v", report)
	}
	if report.Palette[0].Hex == "#3b82f6" {
		t.Error("primary is still the default colour")
	}
}

func TestExtractCommandErrors(t *testing.T) {
	textFile := filepath.Join(t.TempDir(), "notes.png")
	if err := os.WriteFile(textFile, []byte("not an image"), 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing file", args: []string{"extract", filepath.Join(t.TempDir(), "nope.png")}},
		{name: "not an image", args: []string{"extract", textFile}},
		{name: "bad algorithm", args: []string{"extract", textFile, "--algorithm", "octree"}},
		{name: "private url", args: []string{"extract", "https://127.0.0.1/photo.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "colorvibe version ") {
		t.Errorf("version output = %q", out)
	}
}

func TestExtractSwatches(t *testing.T) {
	path := writeStripes(t,
		color.NRGBA{R: 220, G: 20, B: 60, A: 255},
		color.NRGBA{R: 220, G: 20, B: 60, A: 255},
		color.NRGBA{R: 30, G: 60, B: 200, A: 255},
	)

	out, err := run(t, "extract", path, "--swatches", "--preview", "never")
	if err != nil {
		t.Fatalf("extract --swatches error = %v", err)
	}

	var got struct {
		Count  int `json:"count"`
		Colors []struct {
			Hex    string  `json:"hex"`
			HSL    string  `json:"hsl"`
			Weight float64 `json:"weight"`
		} `json:"colors"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("swatches output is not JSON: %v\n%s", err, out)
	}
	if got.Count != len(got.Colors) || got.Count == 0 {
		t.Fatalf("count = %d with %d colours", got.Count, len(got.Colors))
	}
	for i := 1; i < len(got.Colors); i++ {
		if got.Colors[i].Weight > got.Colors[i-1].Weight {
			t.Errorf("swatches not ordered by weight: %+v", got.Colors)
		}
	}
	if !strings.HasPrefix(got.Colors[0].HSL, "hsl(") {
		t.Errorf("first swatch HSL = %q", got.Colors[0].HSL)
	}
}
