package mesh

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type obj_corner struct {
	v, t, n int // 0-based, -1 when absent
}

// ReadOBJ decodes a Wavefront OBJ stream. Polygons are fan triangulated.
// Statements other than v, vt, vn and f are skipped.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	var (
		points  []vec3
		uvs     []vec2
		normals []vec3
		faces   [][]obj_corner
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line_no := 0
	for scanner.Scan() {
		line_no++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			p, err := parse_floats(fields[1:], 3)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: bad vertex", line_no)
			}
			points = append(points, vec3{p[0], p[1], p[2]})
		case "vn":
			n, err := parse_floats(fields[1:], 3)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: bad normal", line_no)
			}
			normals = append(normals, vec3{n[0], n[1], n[2]})
		case "vt":
			t, err := parse_floats(fields[1:], 2)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: bad texcoord", line_no)
			}
			uvs = append(uvs, vec2{t[0], t[1]})
		case "f":
			if len(fields) < 4 {
				return nil, errors.Errorf("line %d: bad face: need at least 3 corners", line_no)
			}
			face := make([]obj_corner, 0, len(fields)-1)
			for _, field := range fields[1:] {
				c, err := parse_corner(field, len(points), len(uvs), len(normals))
				if err != nil {
					return nil, errors.Wrapf(err, "line %d: bad face", line_no)
				}
				face = append(face, c)
			}
			faces = append(faces, face)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan obj")
	}

	m := &Mesh{Points: points, faces: len(faces)}

	// normals and texcoords are indexed separately from positions, they are
	// only kept when every corner of a point agrees on them.
	point_normals := make([]vec3, len(points))
	point_uvs := make([]vec2, len(points))
	has_normal := make([]bool, len(points))
	normals_ok := len(normals) > 0
	uvs_ok := len(uvs) > 0

	for _, face := range faces {
		for _, c := range face {
			if c.n < 0 {
				normals_ok = false
			} else if normals_ok {
				if has_normal[c.v] && point_normals[c.v] != normals[c.n] {
					normals_ok = false
				}
				point_normals[c.v] = normals[c.n]
				has_normal[c.v] = true
			}
			if c.t < 0 {
				uvs_ok = false
			} else if uvs_ok {
				point_uvs[c.v] = uvs[c.t]
			}
		}
		for i := 1; i < len(face)-1; i++ {
			m.Triangles = append(m.Triangles, Triangle{
				V1: uint32(face[0].v),
				V2: uint32(face[i].v),
				V3: uint32(face[i+1].v),
			})
		}
	}
	if normals_ok {
		m.Normals = point_normals
	}
	if uvs_ok {
		m.UVs = point_uvs
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func parse_floats(fields []string, n int) ([]float, error) {
	if len(fields) < n {
		return nil, errors.Errorf("want %d components, got %d", n, len(fields))
	}
	out := make([]float, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float(f)
	}
	return out, nil
}

// parse_corner parses one of v, v/t, v//n or v/t/n.
func parse_corner(field string, num_v, num_t, num_n int) (obj_corner, error) {
	parts := strings.Split(field, "/")
	if len(parts) > 3 {
		return obj_corner{}, errors.Errorf("corner %q", field)
	}
	c := obj_corner{v: -1, t: -1, n: -1}
	var err error
	if c.v, err = parse_index(parts[0], num_v); err != nil {
		return c, errors.Wrapf(err, "vertex of %q", field)
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.t, err = parse_index(parts[1], num_t); err != nil {
			return c, errors.Wrapf(err, "texcoord of %q", field)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.n, err = parse_index(parts[2], num_n); err != nil {
			return c, errors.Wrapf(err, "normal of %q", field)
		}
	}
	return c, nil
}

// parse_index resolves a 1-based or negative (relative) OBJ index.
func parse_index(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	}
	return 0, errors.Errorf("index %d out of range [1, %d]", i, count)
}
