package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultIcosphereRadius is the sphere radius used when none is configured.
	DefaultIcosphereRadius float32 = 0.1

	// DefaultIcosphereSubdivisions is the subdivision level used when none is configured.
	DefaultIcosphereSubdivisions = 5

	// MaxIcosphereSubdivisions caps the subdivision level; level 8 already yields 655362 vertices.
	MaxIcosphereSubdivisions = 8
)

var (
	// ErrInvalidSubdivisions is returned for a subdivision level outside [0, MaxIcosphereSubdivisions].
	ErrInvalidSubdivisions = errors.New("invalid icosphere subdivisions")

	// ErrInvalidRadius is returned for a non-positive sphere radius.
	ErrInvalidRadius = errors.New("invalid icosphere radius")
)

var icosahedronFaces = [20][3]uint32{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

// IcosphereVertexCount returns the vertex count of an icosphere at the given subdivision level.
func IcosphereVertexCount(subdivisions int) int {
	return 10*(1<<(2*subdivisions)) + 2
}

// IcosphereIndexCount returns the index count of an icosphere at the given subdivision level.
func IcosphereIndexCount(subdivisions int) int {
	return 60 * (1 << (2 * subdivisions))
}

// GenerateIcosphere builds a subdivided icosahedron projected onto a sphere.
// Each subdivision splits every triangle into four, sharing edge midpoints between
// neighbouring triangles so the mesh stays watertight.
//
// Every vertex gets its normalized position as normal, an equirectangular UV
// and an opaque black color.
//
// Parameters:
//   - radius: sphere radius in model units, must be > 0
//   - subdivisions: number of subdivision passes in [0, MaxIcosphereSubdivisions]
//
// Returns:
//   - *Mesh: the generated mesh with bounds [-radius, radius] on every axis
//   - error: ErrInvalidRadius or ErrInvalidSubdivisions on bad input
func GenerateIcosphere(radius float32, subdivisions int) (*Mesh, error) {
	if !(radius > 0) {
		return nil, fmt.Errorf("radius %v: %w", radius, ErrInvalidRadius)
	}
	if subdivisions < 0 || subdivisions > MaxIcosphereSubdivisions {
		return nil, fmt.Errorf("subdivisions %d not in [0, %d]: %w", subdivisions, MaxIcosphereSubdivisions, ErrInvalidSubdivisions)
	}

	t := float32((1 + math.Sqrt(5)) / 2)
	positions := make([]mgl32.Vec3, 0, IcosphereVertexCount(subdivisions))
	for _, p := range []mgl32.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	} {
		positions = append(positions, p.Normalize().Mul(radius))
	}

	faces := icosahedronFaces[:]
	midpoints := make(map[uint64]uint32)
	midpoint := func(a, b uint32) uint32 {
		lo, hi := min(a, b), max(a, b)
		key := uint64(lo)<<32 | uint64(hi)
		if idx, ok := midpoints[key]; ok {
			return idx
		}
		mid := positions[a].Add(positions[b]).Mul(0.5).Normalize().Mul(radius)
		positions = append(positions, mid)
		idx := uint32(len(positions) - 1)
		midpoints[key] = idx
		return idx
	}

	for range subdivisions {
		next := make([][3]uint32, 0, len(faces)*4)
		for _, f := range faces {
			a := midpoint(f[0], f[1])
			b := midpoint(f[1], f[2])
			c := midpoint(f[2], f[0])
			next = append(next,
				[3]uint32{f[0], a, c},
				[3]uint32{f[1], b, a},
				[3]uint32{f[2], c, b},
				[3]uint32{a, b, c},
			)
		}
		faces = next
	}

	vertices := make([]GPUVertex, len(positions))
	for i, p := range positions {
		n := p.Normalize()
		u := (float32(math.Atan2(float64(p.Z()), float64(p.X()))) + math.Pi) / (2 * math.Pi)
		sinLat := math.Max(-1, math.Min(1, float64(p.Y()/radius)))
		v := (float32(math.Asin(sinLat)) + math.Pi/2) / math.Pi
		vertices[i] = GPUVertex{
			Position: p,
			Normal:   n,
			TexCoord: [2]float32{u, v},
			Color:    [4]float32{0, 0, 0, 1},
		}
	}

	indices := make([]uint32, 0, len(faces)*3)
	for _, f := range faces {
		indices = append(indices, f[0], f[1], f[2])
	}

	return &Mesh{
		Vertices: vertices,
		Indices:  indices,
		Bounds: Bounds{
			Min: mgl32.Vec3{-radius, -radius, -radius},
			Max: mgl32.Vec3{radius, radius, radius},
		},
	}, nil
}
