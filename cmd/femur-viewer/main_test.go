package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/fatih/color"
	"go.viam.com/test"

	"github.com/thedaneeffect/femur-viewer/internal/mesh"
	"github.com/thedaneeffect/femur-viewer/internal/mesh/meshtest"
)

func runCommand(t *testing.T, args ...string) (int, string) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	code := run(append([]string{"femur-viewer"}, args...), &out)
	return code, out.String()
}

func headless(t *testing.T) {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("display detection only looks at the environment on linux")
	}
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")
}

func TestDefaultPathMissing(t *testing.T) {
	// the default data set is not shipped with the repository
	t.Chdir(t.TempDir())

	code, out := runCommand(t)
	test.That(t, code, test.ShouldEqual, 0)
	test.That(t, out, test.ShouldEqual,
		"Application Error: 3D file not found at: ../data/validation/R_Femur_22_DECIM.obj.FINAL.obj\n")
}

func TestExitCodeFlag(t *testing.T) {
	code, out := runCommand(t, "--exit-code", filepath.Join(t.TempDir(), "missing.obj"))
	test.That(t, code, test.ShouldEqual, 1)
	test.That(t, out, test.ShouldStartWith, "Application Error: 3D file not found at: ")
}

func TestRunWithoutDisplay(t *testing.T) {
	fixture := meshtest.WriteShaft(t)
	headless(t)

	code, out := runCommand(t, fixture)
	test.That(t, code, test.ShouldEqual, 0)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	test.That(t, len(lines), test.ShouldEqual, 5)
	test.That(t, lines[0], test.ShouldEqual, "[Info] Loading mesh from: "+fixture+"...")
	test.That(t, lines[1], test.ShouldEqual, "[Success] Mesh loaded. Vertices: 500, Faces: 800")
	test.That(t, lines[2], test.ShouldEqual, "[Info] Starting visualization window...")
	test.That(t, lines[3], test.ShouldEqual, "[Tip] Press 'q' to close the window.")
	test.That(t, lines[4], test.ShouldStartWith, "Application Error:")
	test.That(t, lines[4], test.ShouldContainSubstring, "display unavailable")
}

func TestLoadFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.obj")
	test.That(t, os.WriteFile(path, []byte("v 0 0 0\nv 0 x 0\n"), 0o600), test.ShouldBeNil)

	code, out := runCommand(t, "--exit-code", path)
	test.That(t, code, test.ShouldEqual, 1)
	test.That(t, out, test.ShouldContainSubstring, "Application Error: read broken.obj: line 2: bad vertex")
	test.That(t, out, test.ShouldNotContainSubstring, "[Success]")
}

func TestExport(t *testing.T) {
	fixture := meshtest.WriteShaft(t)
	dst := filepath.Join(t.TempDir(), "out.obj")

	code, out := runCommand(t, "--export", dst, fixture)
	test.That(t, code, test.ShouldEqual, 0)
	test.That(t, out, test.ShouldContainSubstring, "[Success] Saved to "+dst)
	test.That(t, out, test.ShouldNotContainSubstring, "Application Error")

	m, err := mesh.Load(dst)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.NumPoints(), test.ShouldEqual, 500)
	test.That(t, m.NumFaces(), test.ShouldEqual, 800)
}

func TestConfigLayers(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "viewer.json")
	err := os.WriteFile(cfgPath, []byte(`{"path": "from-config.obj", "width": 640, "title": "from config"}`), 0o600)
	test.That(t, err, test.ShouldBeNil)

	code, out := runCommand(t, "--config", cfgPath, "--title", "from flag")
	test.That(t, code, test.ShouldEqual, 0)
	test.That(t, out, test.ShouldEqual, "Application Error: 3D file not found at: from-config.obj\n")
}

func TestInvalidFlagValues(t *testing.T) {
	fixture := meshtest.WriteShaft(t)
	code, out := runCommand(t, "--exit-code", "--width", "-5", fixture)
	test.That(t, code, test.ShouldEqual, 1)
	test.That(t, out, test.ShouldContainSubstring, "Application Error: window size must be positive")

	code, out = runCommand(t, "--color", "chartreuse-ish", fixture)
	test.That(t, code, test.ShouldEqual, 0)
	test.That(t, out, test.ShouldContainSubstring, `Application Error: unknown color "chartreuse-ish"`)

	code, out = runCommand(t, fixture, fixture)
	test.That(t, code, test.ShouldEqual, 0)
	test.That(t, out, test.ShouldContainSubstring, "expected at most one mesh file, got 2")
}

func TestProfiles(t *testing.T) {
	fixture := meshtest.WriteShaft(t)
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.prof")
	mem := filepath.Join(dir, "mem.prof")

	code, out := runCommand(t, "--cpuprofile", cpu, "--memprofile", mem, "--export", filepath.Join(dir, "out.obj"), fixture)
	test.That(t, code, test.ShouldEqual, 0)
	test.That(t, out, test.ShouldNotContainSubstring, "Application Error")

	for _, path := range []string{cpu, mem} {
		info, err := os.Stat(path)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
	}
}

func TestUsageErrorIsOneLine(t *testing.T) {
	code, out := runCommand(t, "--exit-code", "--width", "wide")
	test.That(t, code, test.ShouldEqual, 1)
	test.That(t, out, test.ShouldStartWith, "Application Error: ")
	test.That(t, out, test.ShouldContainSubstring, "wide")
	test.That(t, strings.Count(out, "\n"), test.ShouldEqual, 1)
	test.That(t, out, test.ShouldNotContainSubstring, "Incorrect Usage")

	code, out = runCommand(t, "--no-such-flag")
	test.That(t, code, test.ShouldEqual, 0)
	test.That(t, out, test.ShouldStartWith, "Application Error: ")
	test.That(t, strings.Count(out, "\n"), test.ShouldEqual, 1)
}
