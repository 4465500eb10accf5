package mesh

import (
	"io"
	"reflect"

	"github.com/chenzhekl/goply"
	"github.com/pkg/errors"
)

// ReadPLY decodes an ASCII or binary PLY stream with a "vertex" element
// (x, y, z and optionally nx, ny, nz) and a "face" element (vertex_indices).
func ReadPLY(r io.Reader) (m *Mesh, err error) {
	// goply panics on malformed headers and bodies
	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = errors.Errorf("could not parse PLY file, possibly malformed: %v", r)
		}
	}()

	ply := goply.New(r)
	vertices := ply.Elements("vertex")
	faces := ply.Elements("face")

	m = &Mesh{Points: make([]vec3, 0, len(vertices)), faces: len(faces)}
	with_normals := len(vertices) > 0
	for i, v := range vertices {
		var p [3]float
		for axis, key := range [3]string{"x", "y", "z"} {
			if p[axis], err = ply_float(v[key]); err != nil {
				return nil, errors.Wrapf(err, "vertex %d %s", i, key)
			}
		}
		m.Points = append(m.Points, vec3(p))

		if !with_normals {
			continue
		}
		var n [3]float
		for axis, key := range [3]string{"nx", "ny", "nz"} {
			if n[axis], err = ply_float(v[key]); err != nil {
				with_normals = false
				break
			}
		}
		m.Normals = append(m.Normals, vec3(n))
	}
	if !with_normals {
		m.Normals = nil
	}

	for i, f := range faces {
		list := reflect.ValueOf(f["vertex_indices"])
		if list.Kind() != reflect.Slice {
			return nil, errors.Errorf("face %d has no vertex_indices", i)
		}
		idx := make([]uint32, list.Len())
		for j := range idx {
			v, err := ply_index(list.Index(j).Interface())
			if err != nil {
				return nil, errors.Wrapf(err, "face %d", i)
			}
			idx[j] = v
		}
		for j := 1; j < len(idx)-1; j++ {
			m.Triangles = append(m.Triangles, Triangle{idx[0], idx[j], idx[j+1]})
		}
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func ply_float(v interface{}) (float, error) {
	switch x := v.(type) {
	case float32:
		return x, nil
	case float64:
		return float(x), nil
	case nil:
		return 0, errors.New("missing property")
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return float(rv.Int()), nil
	case rv.CanUint():
		return float(rv.Uint()), nil
	}
	return 0, errors.Errorf("unsupported property type %T", v)
}

func ply_index(v interface{}) (uint32, error) {
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		if i := rv.Int(); i >= 0 {
			return uint32(i), nil
		}
	case rv.CanUint():
		return uint32(rv.Uint()), nil
	}
	return 0, errors.Errorf("bad vertex index %v", v)
}
