package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.Path, test.ShouldEqual, "../data/validation/R_Femur_22_DECIM.obj.FINAL.obj")
	test.That(t, cfg.Width, test.ShouldEqual, 1200)
	test.That(t, cfg.Height, test.ShouldEqual, 800)
	test.That(t, cfg.Title, test.ShouldEqual, "Femur Visualization - Team 4")
	test.That(t, cfg.SmoothShading, test.ShouldBeTrue)
	test.That(t, cfg.ShowEdges, test.ShouldBeFalse)
	test.That(t, cfg.Validate(), test.ShouldBeNil)
}

func TestFromFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.json")
	err := os.WriteFile(path, []byte(`{"width": 640, "color": "#ff8800"}`), 0o600)
	test.That(t, err, test.ShouldBeNil)

	cfg, err := FromFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Width, test.ShouldEqual, 640)
	test.That(t, cfg.Height, test.ShouldEqual, DefaultHeight)
	test.That(t, cfg.Color, test.ShouldEqual, "#ff8800")
	test.That(t, cfg.Validate(), test.ShouldBeNil)
}

func TestFromFileErrors(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)

	path := filepath.Join(t.TempDir(), "bad.json")
	test.That(t, os.WriteFile(path, []byte(`{"width": "wide"}`), 0o600), test.ShouldBeNil)
	_, err = FromFile(path)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "parse config")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Width = 0
	test.That(t, cfg.Validate(), test.ShouldNotBeNil)

	cfg = Default()
	cfg.FontSize = -1
	test.That(t, cfg.Validate(), test.ShouldNotBeNil)

	cfg = Default()
	cfg.Color = "mauve-ish"
	test.That(t, cfg.Validate(), test.ShouldNotBeNil)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("beige")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Hex(), test.ShouldEqual, "#f5f5dc")

	for name, hex := range map[string]string{
		"navajowhite": "#ffdead",
		"LightBlue":   "#add8e6",
		"ivory":       "#fffff0",
	} {
		c, err := ParseColor(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, c.Hex(), test.ShouldEqual, hex)
	}

	_, err = ParseColor("bone-ish")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown color "bone-ish"`)

	c, err = ParseColor("#102030")
	test.That(t, err, test.ShouldBeNil)
	r, g, b := c.RGB255()
	test.That(t, []uint8{r, g, b}, test.ShouldResemble, []uint8{0x10, 0x20, 0x30})
}
