package shader

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// attributeRegex matches one attribute with its optional argument list, e.g. @location(2)
	attributeRegex = regexp.MustCompile(`@(\w+)\s*(?:\(([^)]*)\))?`)

	entryPointRegex = regexp.MustCompile(`(?s)@(vertex|fragment|compute)\b.*?\bfn\s+(\w+)`)

	workgroupSizeRegex = regexp.MustCompile(`@workgroup_size\s*\(([^)]*)\)`)

	// bindingDeclRegex captures group, binding, address space, name and type from
	// declarations like: @group(0) @binding(2) var<uniform> params: BurnFadeParams;
	bindingDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// wgslField is one struct member. location is -1 when the member has no @location.
type wgslField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

type wgslStruct struct {
	name   string
	fields []wgslField
}

// wgslReflection holds what the engine reads back out of a WGSL module: its comment-free
// source, the structs it declares and the layouts of those structs.
type wgslReflection struct {
	source  string
	structs []wgslStruct
	layouts map[string]wgslTypeLayout
}

// reflectWGSL strips comments from source and resolves the layout of every struct it
// declares. Structs may reference each other in any declaration order.
//
// Parameters:
//   - source: pre-processed WGSL source
//
// Returns:
//   - *wgslReflection: the reflected module
func reflectWGSL(source string) *wgslReflection {
	r := &wgslReflection{source: stripComments(source)}
	for _, m := range structBlockRegex.FindAllStringSubmatch(r.source, -1) {
		r.structs = append(r.structs, wgslStruct{name: m[1], fields: parseFields(m[2])})
	}

	r.layouts = make(map[string]wgslTypeLayout, len(r.structs))
	pending := slices.Clone(r.structs)
	for len(pending) > 0 {
		unresolved := pending[:0]
		for _, ps := range pending {
			if l, ok := r.hostLayout(ps); ok {
				r.layouts[ps.name] = l
			} else {
				unresolved = append(unresolved, ps)
			}
		}
		if len(unresolved) == len(pending) {
			break
		}
		pending = unresolved
	}
	return r
}

// hostLayout lays out a struct from the layouts resolved so far. Builtin members are not
// stored in buffers and are skipped.
func (r *wgslReflection) hostLayout(ps wgslStruct) (wgslTypeLayout, bool) {
	var offset uint64
	align := uint64(1)
	for _, f := range ps.fields {
		if f.isBuiltin {
			continue
		}
		fl, ok := resolveTypeLayout(f.typeName, r.layouts)
		if !ok {
			return wgslTypeLayout{}, false
		}
		offset = roundUpAlign(fl.align, offset) + fl.size
		align = max(align, fl.align)
	}
	return wgslTypeLayout{size: roundUpAlign(align, offset), align: align}, true
}

func (r *wgslReflection) findStruct(name string) (wgslStruct, bool) {
	i := slices.IndexFunc(r.structs, func(s wgslStruct) bool { return s.name == name })
	if i < 0 {
		return wgslStruct{}, false
	}
	return r.structs[i], true
}

// entryPoint returns the name of the first function carrying the stage attribute for
// shaderType, or an empty string.
func (r *wgslReflection) entryPoint(shaderType ShaderType) string {
	var stage string
	switch shaderType {
	case ShaderTypeVertex:
		stage = "vertex"
	case ShaderTypeFragment:
		stage = "fragment"
	case ShaderTypeCompute:
		stage = "compute"
	default:
		return ""
	}
	for _, m := range entryPointRegex.FindAllStringSubmatch(r.source, -1) {
		if m[1] == stage {
			return m[2]
		}
	}
	return ""
}

// workgroupSize returns the @workgroup_size dimensions. Omitted or non-literal dimensions
// are 1, as is every dimension when the attribute is absent.
func (r *wgslReflection) workgroupSize() [3]uint32 {
	size := [3]uint32{1, 1, 1}
	m := workgroupSizeRegex.FindStringSubmatch(r.source)
	if m == nil {
		return size
	}
	for i, arg := range splitTopLevel(m[1]) {
		if i >= len(size) {
			break
		}
		if v, err := strconv.ParseUint(strings.TrimRight(arg, "iu"), 10, 32); err == nil && v > 0 {
			size[i] = uint32(v)
		}
	}
	return size
}

// vertexLayouts builds a vertex buffer layout for every pure vertex input struct: one with
// @location members and no @builtin member. Output structs mix in @builtin(position) and
// are ignored, as are structs holding types no vertex format can read. Attributes are
// packed in declaration order.
//
// Returns:
//   - map[int][]wgpu.VertexBufferLayout: one layout per input struct keyed by buffer slot
func (r *wgslReflection) vertexLayouts() map[int][]wgpu.VertexBufferLayout {
	result := make(map[int][]wgpu.VertexBufferLayout)
	for _, ps := range r.structs {
		if layout, ok := vertexBufferLayout(ps); ok {
			result[len(result)] = []wgpu.VertexBufferLayout{layout}
		}
	}
	return result
}

func vertexBufferLayout(ps wgslStruct) (wgpu.VertexBufferLayout, bool) {
	if len(ps.fields) == 0 {
		return wgpu.VertexBufferLayout{}, false
	}
	layout := wgpu.VertexBufferLayout{StepMode: wgpu.VertexStepModeVertex}
	for _, f := range ps.fields {
		if f.isBuiltin || f.location < 0 {
			return wgpu.VertexBufferLayout{}, false
		}
		t := canonicalType(f.typeName)
		format, ok := wgslVertexFormats[t]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
			Format:         format,
			Offset:         layout.ArrayStride,
			ShaderLocation: uint32(f.location),
		})
		fl, _ := resolveTypeLayout(t, nil)
		layout.ArrayStride += fl.size
	}
	return layout, true
}

// bindGroupLayouts collects every @group @binding variable into layout descriptors keyed
// by group, with entries sorted by binding. Buffer entries get a MinBindingSize from the
// bound type's layout when it resolves.
//
// Parameters:
//   - visibility: the stage flag set on each entry
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group
//   - map[int]map[int]string: variable names keyed by group then binding
func (r *wgslReflection) bindGroupLayouts(visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	descriptors := make(map[int]wgpu.BindGroupLayoutDescriptor)
	names := make(map[int]map[int]string)

	for _, m := range bindingDeclRegex.FindAllStringSubmatch(r.source, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])

		entry := wgpu.BindGroupLayoutEntry{
			Binding:    uint32(binding),
			Visibility: visibility,
		}
		entry.Buffer.Type = bufferBindingType(m[3])
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if l, ok := resolveTypeLayout(m[5], r.layouts); ok {
				entry.Buffer.MinBindingSize = l.size
			}
		}

		desc := descriptors[group]
		desc.Entries = append(desc.Entries, entry)
		descriptors[group] = desc

		if names[group] == nil {
			names[group] = make(map[int]string)
		}
		names[group][binding] = m[4]
	}

	for _, desc := range descriptors {
		slices.SortFunc(desc.Entries, func(a, b wgpu.BindGroupLayoutEntry) int {
			return cmp.Compare(a.Binding, b.Binding)
		})
	}
	return descriptors, names
}

// bufferBindingType maps a var address space to a buffer binding type. Handle types such
// as textures and samplers declare no address space and map to undefined.
func bufferBindingType(addressSpace string) wgpu.BufferBindingType {
	parts := splitTopLevel(addressSpace)
	switch {
	case parts[0] == "uniform":
		return wgpu.BufferBindingTypeUniform
	case parts[0] == "storage" && len(parts) > 1 && parts[1] == "read_write":
		return wgpu.BufferBindingTypeStorage
	case parts[0] == "storage":
		return wgpu.BufferBindingTypeReadOnlyStorage
	}
	return wgpu.BufferBindingTypeUndefined
}

// parseFields splits a struct body into members. Attributes are read off the front of each
// member before the name and type are split at the first colon.
func parseFields(body string) []wgslField {
	var fields []wgslField
	for _, decl := range splitTopLevel(body) {
		f := wgslField{location: -1}
		for _, a := range attributeRegex.FindAllStringSubmatch(decl, -1) {
			switch a[1] {
			case "builtin":
				f.isBuiltin = true
			case "location":
				if loc, err := strconv.Atoi(strings.TrimSpace(a[2])); err == nil {
					f.location = loc
				}
			}
		}
		decl = strings.TrimSpace(attributeRegex.ReplaceAllString(decl, ""))
		name, typeName, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		f.name = strings.TrimSpace(name)
		f.typeName = strings.TrimSpace(typeName)
		if f.name == "" || f.typeName == "" {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

// stripComments removes line comments and nested block comments in one pass. Newlines are
// kept so line structure survives.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		rest := source[i:]
		switch {
		case strings.HasPrefix(rest, "/*"):
			depth++
			i++
		case depth > 0 && strings.HasPrefix(rest, "*/"):
			depth--
			i++
		case depth > 0:
			if source[i] == '\n' {
				sb.WriteByte('\n')
			}
		case strings.HasPrefix(rest, "//"):
			for i < len(source) && source[i] != '\n' {
				i++
			}
			if i < len(source) {
				sb.WriteByte('\n')
			}
		default:
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
