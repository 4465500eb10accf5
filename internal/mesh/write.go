package mesh

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// WriteOBJ encodes m as OBJ with one normal per vertex and faces in
// v//n form, each block preceded by a count comment.
func WriteOBJ(w io.Writer, m *Mesh) error {
	if len(m.Normals) != len(m.Points) {
		m = m.Clone()
		m.ComputeNormals()
	}

	bw := bufio.NewWriter(w)
	var buf []byte

	write := func() error {
		_, err := bw.Write(buf)
		buf = buf[:0]
		return err
	}

	buf = append_header(buf, "", len(m.Points), "vertice(s)")
	for _, p := range m.Points {
		buf = append_record(buf, "v", p)
	}
	buf = append_header(buf, "\r\n", len(m.Normals), "normal(s)")
	for _, n := range m.Normals {
		buf = append_record(buf, "vn", n)
	}
	buf = append_header(buf, "\r\n", len(m.Triangles), "triangle(s)")
	if err := write(); err != nil {
		return errors.Wrap(err, "write obj")
	}

	for _, t := range m.Triangles {
		buf = append(buf, 'f')
		for _, i := range [3]uint32{t.V1, t.V2, t.V3} {
			buf = append(buf, ' ')
			buf = strconv.AppendUint(buf, uint64(i)+1, 10)
			buf = append(buf, "//"...)
			buf = strconv.AppendUint(buf, uint64(i)+1, 10)
		}
		buf = append(buf, "\r\n"...)
		if err := write(); err != nil {
			return errors.Wrap(err, "write obj")
		}
	}

	return errors.Wrap(bw.Flush(), "flush obj")
}

// SaveOBJ writes m to path, replacing any existing file.
func SaveOBJ(path string, m *Mesh) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create obj")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return WriteOBJ(f, m)
}

func append_record(buf []byte, typ string, v vec3) []byte {
	buf = append(buf, typ...)
	for _, c := range v {
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, float64(c), 'G', -1, 32)
	}
	return append(buf, "\r\n"...)
}

func append_header(buf []byte, prefix string, n int, what string) []byte {
	buf = append(buf, prefix...)
	buf = append(buf, "# "...)
	buf = strconv.AppendInt(buf, int64(n), 10)
	buf = append(buf, ' ')
	buf = append(buf, what...)
	return append(buf, "\r\n"...)
}
