package shader

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslTypeLayout is the host-shareable size and alignment of a WGSL type.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

var wgslScalarLayouts = map[string]wgslTypeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"f16":  {2, 2},
	"bool": {4, 4},
}

// wgslVertexFormats maps canonical type names to the vertex format that reads them.
// Attribute sizes come from the type layout.
var wgslVertexFormats = map[string]wgpu.VertexFormat{
	"f32":       wgpu.VertexFormatFloat32,
	"vec2<f32>": wgpu.VertexFormatFloat32x2,
	"vec3<f32>": wgpu.VertexFormatFloat32x3,
	"vec4<f32>": wgpu.VertexFormatFloat32x4,
	"i32":       wgpu.VertexFormatSint32,
	"vec2<i32>": wgpu.VertexFormatSint32x2,
	"vec3<i32>": wgpu.VertexFormatSint32x3,
	"vec4<i32>": wgpu.VertexFormatSint32x4,
	"u32":       wgpu.VertexFormatUint32,
	"vec2<u32>": wgpu.VertexFormatUint32x2,
	"vec3<u32>": wgpu.VertexFormatUint32x3,
	"vec4<u32>": wgpu.VertexFormatUint32x4,
	"vec2<f16>": wgpu.VertexFormatFloat16x2,
	"vec4<f16>": wgpu.VertexFormatFloat16x4,
}

var (
	// shorthandRegex matches predeclared aliases such as vec3f or mat4x4h
	shorthandRegex = regexp.MustCompile(`^(vec[234]|mat[234]x[234])([fhiu])$`)

	vectorRegex = regexp.MustCompile(`^vec[234]$`)
	matrixRegex = regexp.MustCompile(`^mat[234]x[234]$`)

	// genericRegex splits a templated type into its name and argument list
	genericRegex = regexp.MustCompile(`^(\w+)<(.+)>$`)

	shorthandScalars = map[string]string{"f": "f32", "h": "f16", "i": "i32", "u": "u32"}
)

// canonicalType removes whitespace from a WGSL type name and expands shorthand aliases,
// so vec3f and vec3< f32 > both become vec3<f32>.
//
// Parameters:
//   - name: the type name as written in source
//
// Returns:
//   - string: the canonical spelling
func canonicalType(name string) string {
	name = strings.Join(strings.Fields(name), "")
	if m := shorthandRegex.FindStringSubmatch(name); m != nil {
		return m[1] + "<" + shorthandScalars[m[2]] + ">"
	}
	return name
}

// isRuntimeArray reports whether the type is an array without an element count.
func isRuntimeArray(typeName string) bool {
	t := canonicalType(typeName)
	return strings.HasPrefix(t, "array<") && strings.HasSuffix(t, ">") &&
		len(splitTopLevel(t[len("array<"):len(t)-1])) == 1
}

// roundUpAlign rounds value up to the next multiple of alignment, which must be a power
// of two. Zero alignment returns value unchanged.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout computes the size and alignment of a WGSL type. Vectors, matrices and
// fixed arrays are derived from their element types; struct names are looked up in known.
// A runtime-sized array resolves to one element stride, the smallest binding that can hold
// it.
//
// Parameters:
//   - typeName: the type as written in source, e.g. "vec3f" or "array<VertexRecord>"
//   - known: layouts of structs resolved so far
//
// Returns:
//   - wgslTypeLayout: the resolved layout
//   - bool: false for unknown or non host-shareable types
func resolveTypeLayout(typeName string, known map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	t := canonicalType(typeName)
	if l, ok := wgslScalarLayouts[t]; ok {
		return l, true
	}
	if l, ok := known[t]; ok {
		return l, true
	}

	m := genericRegex.FindStringSubmatch(t)
	if m == nil {
		return wgslTypeLayout{}, false
	}
	head, args := m[1], splitTopLevel(m[2])

	switch {
	case vectorRegex.MatchString(head):
		scalar, ok := wgslScalarLayouts[args[0]]
		if !ok || len(args) != 1 {
			return wgslTypeLayout{}, false
		}
		n := uint64(head[3] - '0')
		lanes := n
		if n == 3 {
			lanes = 4
		}
		return wgslTypeLayout{size: n * scalar.size, align: lanes * scalar.size}, true

	case matrixRegex.MatchString(head):
		cols := uint64(head[3] - '0')
		column, ok := resolveTypeLayout("vec"+head[5:]+"<"+m[2]+">", known)
		if !ok {
			return wgslTypeLayout{}, false
		}
		stride := roundUpAlign(column.align, column.size)
		return wgslTypeLayout{size: cols * stride, align: column.align}, true

	case head == "atomic":
		if args[0] != "i32" && args[0] != "u32" {
			return wgslTypeLayout{}, false
		}
		return wgslScalarLayouts[args[0]], true

	case head == "array":
		elem, ok := resolveTypeLayout(args[0], known)
		if !ok {
			return wgslTypeLayout{}, false
		}
		stride := roundUpAlign(elem.align, elem.size)
		if len(args) == 1 {
			return wgslTypeLayout{size: stride, align: elem.align}, true
		}
		count, err := strconv.ParseUint(strings.TrimRight(args[1], "iu"), 10, 64)
		if err != nil || count == 0 {
			return wgslTypeLayout{}, false
		}
		return wgslTypeLayout{size: count * stride, align: elem.align}, true
	}
	return wgslTypeLayout{}, false
}

// splitTopLevel splits s at commas outside angle brackets, trimming each part.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth = max(depth-1, 0)
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}
