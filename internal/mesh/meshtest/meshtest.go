// Package meshtest builds meshes for tests outside the mesh package.
package meshtest

import (
	"math"
	"path/filepath"
	"testing"

	mgl "github.com/go-gl/mathgl/mgl32"

	"github.com/thedaneeffect/femur-viewer/internal/mesh"
)

// Shaft returns an open tube along +y made of rings of segments points,
// narrowing from radius 2.5 at y=0 to 1.5 at the top ring, 10 units apart.
func Shaft(rings, segments int) *mesh.Mesh {
	m := &mesh.Mesh{}
	for r := range rings {
		radius := 2.5
		if rings > 1 {
			radius -= float64(r) / float64(rings-1)
		}
		for s := range segments {
			a := 2 * math.Pi * float64(s) / float64(segments)
			m.Points = append(m.Points, mgl.Vec3{
				float32(radius * math.Cos(a)),
				float32(10 * r),
				float32(radius * math.Sin(a)),
			})
		}
	}
	for r := 0; r+1 < rings; r++ {
		for s := range segments {
			a := uint32(r*segments + s)
			b := uint32(r*segments + (s+1)%segments)
			c := a + uint32(segments)
			d := b + uint32(segments)
			m.Triangles = append(m.Triangles, mesh.Triangle{V1: a, V2: c, V3: d}, mesh.Triangle{V1: a, V2: d, V3: b})
		}
	}
	m.ComputeNormals()
	return m
}

// WriteShaft saves a 5 x 100 shaft, 500 vertices and 800 faces, as OBJ in a
// temporary directory and returns its path.
func WriteShaft(tb testing.TB) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "sample_femur.obj")
	if err := mesh.SaveOBJ(path, Shaft(5, 100)); err != nil {
		tb.Fatal(err)
	}
	return path
}
