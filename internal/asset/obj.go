package asset

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

type objCorner struct {
	v, vt, vn int // 1-based, 0 when absent
}

// ParseOBJ imports the triangle geometry of a Wavefront OBJ file. Polygons are
// fan-triangulated; materials, groups and smoothing directives are ignored.
// Missing normals are computed from the faces.
func ParseOBJ(raw []byte) (*ModelData, error) {
	var (
		positions [][3]float32
		texcoords [][2]float32
		normals   [][3]float32
		corners   []objCorner
	)

	sc := bufio.NewScanner(bytes.NewReader(raw))
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", line, err)
			}
			positions = append(positions, [3]float32{p[0], p[1], p[2]})
		case "vt":
			p, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", line, err)
			}
			texcoords = append(texcoords, [2]float32{p[0], p[1]})
		case "vn":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", line, err)
			}
			normals = append(normals, [3]float32{p[0], p[1], p[2]})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj line %d: face needs at least 3 corners", line)
			}
			face := make([]objCorner, 0, len(fields)-1)
			for _, f := range fields[1:] {
				c, err := parseCorner(f, len(positions), len(texcoords), len(normals))
				if err != nil {
					return nil, fmt.Errorf("obj line %d: %w", line, err)
				}
				face = append(face, c)
			}
			for i := 1; i+1 < len(face); i++ {
				corners = append(corners, face[0], face[i], face[i+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(corners) == 0 {
		return nil, ErrEmptyMesh
	}

	// Deduplicate corners into unique vertices.
	unique := make(map[objCorner]uint32, len(corners))
	order := make([]objCorner, 0, len(corners))
	indices := make([]uint32, len(corners))
	hasUV, hasNormals := true, true
	for i, c := range corners {
		idx, ok := unique[c]
		if !ok {
			idx = uint32(len(order))
			unique[c] = idx
			order = append(order, c)
			hasUV = hasUV && c.vt != 0
			hasNormals = hasNormals && c.vn != 0
		}
		indices[i] = idx
	}

	d := NewModelData(len(order), len(indices), hasUV)
	copy(d.Indices, indices)
	for i, c := range order {
		p := positions[c.v-1]
		copy(d.Positions[3*i:3*i+3], p[:])
		if hasUV {
			uv := texcoords[c.vt-1]
			copy(d.UVs[2*i:2*i+2], uv[:])
		}
		if hasNormals {
			n := normals[c.vn-1]
			copy(d.Normals[3*i:3*i+3], n[:])
		}
	}
	if !hasNormals {
		d.RecomputeNormals()
	}
	return d, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseCorner parses "v", "v/vt", "v//vn" or "v/vt/vn", resolving negative
// (relative) indices against the counts seen so far.
func parseCorner(s string, nv, nvt, nvn int) (objCorner, error) {
	parts := strings.Split(s, "/")
	var c objCorner
	var err error
	if c.v, err = resolveIndex(parts[0], nv); err != nil || c.v == 0 {
		return c, fmt.Errorf("bad vertex index %q", s)
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.vt, err = resolveIndex(parts[1], nvt); err != nil {
			return c, fmt.Errorf("bad texcoord index %q", s)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.vn, err = resolveIndex(parts[2], nvn); err != nil {
			return c, fmt.Errorf("bad normal index %q", s)
		}
	}
	return c, nil
}

func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i = count + i + 1
	}
	if i < 1 || i > count {
		return 0, fmt.Errorf("index %d out of range", i)
	}
	return i, nil
}
