package mesh

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	mgl "github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestLoadOBJFixture(t *testing.T) {
	m, err := Load("testdata/sample_femur.obj")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.NumPoints(), test.ShouldEqual, 500)
	test.That(t, m.NumFaces(), test.ShouldEqual, 800)
	test.That(t, len(m.Normals), test.ShouldEqual, 500)

	box := m.Bounds()
	test.That(t, box.Min.Y(), test.ShouldEqual, 0)
	test.That(t, box.Max.Y(), test.ShouldEqual, 40)
	test.That(t, box.Empty(), test.ShouldBeFalse)
	test.That(t, box.Radius(), test.ShouldBeGreaterThan, 20)
}

func TestReadOBJPolygonAndTexcoords(t *testing.T) {
	m, err := Load("testdata/quad.obj")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.NumPoints(), test.ShouldEqual, 4)
	test.That(t, m.Triangles, test.ShouldResemble, []Triangle{{0, 1, 2}, {0, 2, 3}})
	test.That(t, m.NumFaces(), test.ShouldEqual, 1)
	test.That(t, m.NumTriangles(), test.ShouldEqual, 2)
	test.That(t, m.Clone().NumFaces(), test.ShouldEqual, 1)
	test.That(t, m.UVs[2], test.ShouldResemble, vec2{1, 1})

	// normals are computed when the file has none
	test.That(t, len(m.Normals), test.ShouldEqual, 4)
	test.That(t, m.Normals[0].ApproxEqual(vec3{0, 0, 1}), test.ShouldBeTrue)
}

func TestReadOBJRelativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"
	m, err := ReadOBJ(strings.NewReader(src))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Triangles, test.ShouldResemble, []Triangle{{0, 1, 2}})
}

func TestReadOBJSkipsOtherStatements(t *testing.T) {
	src := strings.Join([]string{
		"cstype bspline",
		"v 0 0 0",
		"usemap none",
		"v 1 0 0",
		"lod 1",
		"mg 1 0.5",
		"v 0 1 0",
		"bevel off",
		"f 1 2 3",
		"",
	}, "\n")
	m, err := ReadOBJ(strings.NewReader(src))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.NumPoints(), test.ShouldEqual, 3)
	test.That(t, m.Triangles, test.ShouldResemble, []Triangle{{0, 1, 2}})
}

func TestReadOBJErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		msg  string
	}{
		{"short vertex", "v 0 0\n", "line 1: bad vertex"},
		{"bad number", "v 0 x 0\n", "line 1: bad vertex"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", "out of range"},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n", "need at least 3 corners"},
		{"no faces", "v 0 0 0\n", "no faces"},
		{"empty", "", "no vertices"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadOBJ(strings.NewReader(tc.src))
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.msg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.obj"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, os.ErrNotExist), test.ShouldBeTrue)
}

func TestLoadPLY(t *testing.T) {
	m, err := Load("testdata/tetra.ply")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.NumPoints(), test.ShouldEqual, 4)
	test.That(t, m.NumFaces(), test.ShouldEqual, 4)
	test.That(t, m.Points[3], test.ShouldResemble, vec3{0, 0, 1})
}

func TestReadPLYMalformed(t *testing.T) {
	header := func(vertices, faces int) string {
		return "ply\nformat ascii 1.0\n" +
			"element vertex " + strconv.Itoa(vertices) + "\n" +
			"property float x\nproperty float y\nproperty float z\n" +
			"element face " + strconv.Itoa(faces) + "\n" +
			"property list uchar int vertex_indices\nend_header\n"
	}
	for _, tc := range []struct {
		name string
		src  string
		msg  string
	}{
		{"empty", "", "could not parse PLY file"},
		{"not ply", "solid cube\nendsolid\n", "could not parse PLY file"},
		{"truncated", header(4, 1) + "0 0 0\n1 0 0\n", ""},
		{"index out of range", header(3, 1) + "0 0 0\n1 0 0\n0 1 0\n3 0 1 7\n", "face 0 references a vertex out of range"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, err := ReadPLY(strings.NewReader(tc.src))
			test.That(t, m, test.ShouldBeNil)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.msg)
		})
	}
}

func TestLoadSTLMergesCorners(t *testing.T) {
	m, err := Load("testdata/tetra.stl")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.NumPoints(), test.ShouldEqual, 4)
	test.That(t, m.NumFaces(), test.ShouldEqual, 4)
}

func TestWriteOBJRoundTrip(t *testing.T) {
	m, err := Load("testdata/sample_femur.obj")
	test.That(t, err, test.ShouldBeNil)

	var buf bytes.Buffer
	test.That(t, WriteOBJ(&buf, m), test.ShouldBeNil)

	out := buf.String()
	test.That(t, out, test.ShouldStartWith, "# 500 vertice(s)\r\n")
	test.That(t, out, test.ShouldContainSubstring, "\r\n# 500 normal(s)\r\n")
	test.That(t, out, test.ShouldContainSubstring, "\r\n# 800 triangle(s)\r\n")
	test.That(t, out, test.ShouldContainSubstring, "f 1//1 101//101 102//102\r\n")

	back, err := ReadOBJ(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.Triangles, test.ShouldResemble, m.Triangles)
	test.That(t, back.Points, test.ShouldResemble, m.Points)
}

func TestSaveOBJ(t *testing.T) {
	m, err := ReadOBJ(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"))
	test.That(t, err, test.ShouldBeNil)

	path := filepath.Join(t.TempDir(), "tri.obj")
	test.That(t, SaveOBJ(path, m), test.ShouldBeNil)

	back, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.NumFaces(), test.ShouldEqual, 1)
	test.That(t, back.Normals[0].ApproxEqual(vec3{0, 0, 1}), test.ShouldBeTrue)
}

func TestCloneIsIndependent(t *testing.T) {
	m, err := Load("testdata/quad.obj")
	test.That(t, err, test.ShouldBeNil)

	c := m.Clone()
	c.Points[0] = vec3{9, 9, 9}
	c.Triangles[0].V1 = 3
	test.That(t, m.Points[0], test.ShouldResemble, vec3{0, 0, 0})
	test.That(t, m.Triangles[0].V1, test.ShouldEqual, uint32(0))

	test.That(t, CopyPoints(nil), test.ShouldBeNil)
}

func TestComputeNormalsDegenerate(t *testing.T) {
	m := &Mesh{
		Points:    []vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
		Triangles: []Triangle{{0, 1, 2}},
	}
	m.ComputeNormals()
	test.That(t, m.Normals, test.ShouldResemble, []vec3{{}, {}, {}})
	test.That(t, m.FaceNormal(m.Triangles[0]), test.ShouldResemble, mgl.Vec3{})
}
