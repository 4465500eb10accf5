package mesh

import (
	"io"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// ReadSTL decodes an STL stream, merging coincident
// corners into shared vertices.
func ReadSTL(r io.Reader) (*Mesh, error) {
	tris, err := model3d.ReadSTL(r)
	if err != nil {
		return nil, errors.Wrap(err, "read stl")
	}

	m := &Mesh{}
	index := map[model3d.Coord3D]uint32{}
	vertex := func(c model3d.Coord3D) uint32 {
		if i, ok := index[c]; ok {
			return i
		}
		i := uint32(len(m.Points))
		index[c] = i
		m.Points = append(m.Points, vec3{float(c.X), float(c.Y), float(c.Z)})
		return i
	}
	for _, t := range tris {
		m.Triangles = append(m.Triangles, Triangle{vertex(t[0]), vertex(t[1]), vertex(t[2])})
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}
