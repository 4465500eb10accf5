// Package mesh holds triangle meshes and reads them from the common interchange formats.
package mesh

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	mgl "github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type (
	float = float32
	vec2  = mgl.Vec2
	vec3  = mgl.Vec3
)

// Triangle indexes three entries of Mesh.Points, counter-clockwise.
type Triangle struct {
	V1, V2, V3 uint32
}

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Points    []vec3
	Normals   []vec3 // one per point, may be empty until ComputeNormals
	UVs       []vec2
	Triangles []Triangle

	faces int // polygons in the source file, before triangulation
}

func (m *Mesh) NumPoints() int { return len(m.Points) }

// NumFaces is the number of faces the mesh was read with. Polygons count
// once however many triangles they were split into.
func (m *Mesh) NumFaces() int {
	if m.faces > 0 {
		return m.faces
	}
	return len(m.Triangles)
}

func (m *Mesh) NumTriangles() int { return len(m.Triangles) }

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Points:    CopyPoints(m.Points),
		Normals:   CopyPoints(m.Normals),
		UVs:       append([]vec2(nil), m.UVs...),
		Triangles: append([]Triangle(nil), m.Triangles...),
		faces:     m.faces,
	}
}

// CopyPoints returns a copy of points that shares no memory with it.
func CopyPoints(points []vec3) []vec3 {
	if points == nil {
		return nil
	}
	out := make([]vec3, len(points))
	copy(out, points)
	return out
}

// Bounds returns the axis aligned bounding box of all points.
func (m *Mesh) Bounds() Box {
	if len(m.Points) == 0 {
		return Box{}
	}
	box := Box{Min: m.Points[0], Max: m.Points[0]}
	for _, p := range m.Points[1:] {
		for i := range 3 {
			box.Min[i] = min(box.Min[i], p[i])
			box.Max[i] = max(box.Max[i], p[i])
		}
	}
	return box
}

// FaceNormal returns the unit normal of triangle t, or zero for a degenerate face.
func (m *Mesh) FaceNormal(t Triangle) vec3 {
	n := face_cross(m.Points[t.V1], m.Points[t.V2], m.Points[t.V3])
	if n.Len() == 0 {
		return vec3{}
	}
	return n.Normalize()
}

// ComputeNormals replaces Normals with area weighted vertex normals.
func (m *Mesh) ComputeNormals() {
	normals := make([]vec3, len(m.Points))
	for _, t := range m.Triangles {
		// the unnormalized cross product is weighted by twice the face area
		n := face_cross(m.Points[t.V1], m.Points[t.V2], m.Points[t.V3])
		normals[t.V1] = normals[t.V1].Add(n)
		normals[t.V2] = normals[t.V2].Add(n)
		normals[t.V3] = normals[t.V3].Add(n)
	}
	for i, n := range normals {
		if n.Len() > 0 {
			normals[i] = n.Normalize()
		}
	}
	m.Normals = normals
}

func (m *Mesh) validate() error {
	if len(m.Points) == 0 {
		return errors.New("mesh has no vertices")
	}
	if len(m.Triangles) == 0 {
		return errors.New("mesh has no faces")
	}
	n := uint32(len(m.Points))
	for i, t := range m.Triangles {
		if t.V1 >= n || t.V2 >= n || t.V3 >= n {
			return errors.Errorf("face %d references a vertex out of range", i)
		}
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Points) {
		m.Normals = nil
	}
	if len(m.Normals) == 0 {
		m.ComputeNormals()
	}
	return nil
}

func face_cross(a, b, c vec3) vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}

// Box is an axis aligned bounding box.
type Box struct {
	Min, Max vec3
}

func (b Box) Center() vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Box) Size() vec3 {
	return b.Max.Sub(b.Min)
}

// Radius is the radius of the sphere enclosing the box.
func (b Box) Radius() float {
	return b.Size().Len() / 2
}

// Empty reports whether the box has no volume along every axis.
func (b Box) Empty() bool {
	s := b.Size()
	return s.X() == 0 && s.Y() == 0 && s.Z() == 0 || math.IsNaN(float64(s.Len()))
}

// Load reads the mesh file at path, picking the format from the extension.
// Unknown extensions are read as OBJ.
func Load(path string) (m *Mesh, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open mesh")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ply":
		m, err = ReadPLY(f)
	case ".stl":
		m, err = ReadSTL(f)
	default:
		m, err = ReadOBJ(f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filepath.Base(path))
	}
	return m, nil
}
