// annotations.go defines the annotation types, argument constants, and parser for the
// WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed with
// @oxy: that drive struct injection, bind group declaration, and provider registration.
// The parsed results are stored as Annotation values and consumed by the PreProcessor
// and the Scene to wire GPU resources to bind groups.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition
	// at the annotation site. It produces no declaration.
	//
	// Syntax: //@oxy:include <struct_type>
	//
	// Example: //@oxy:include burn_fade_params
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration
	// and records an Annotation carrying the group, binding, address space and struct type.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@oxy:group 0 2 storage_uniform params burn_fade_params
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider registers a provider identity for a hand-written binding
	// without generating any WGSL output.
	//
	// Syntax: //@oxy:provider <group> <binding> <provider_identity>
	//
	// Example: //@oxy:provider 0 0 camera
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation represents a single parsed @oxy: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed (include, group, or provider).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type key (e.g. "camera")
	//   - group:    [0] = address space, [1] = var name, [2] = WGSL type key
	//   - provider: [0] = provider identity (e.g. "camera", "burn_output")
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source.
	Line int

	// Group is the @group index for group and provider annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group and provider annotations. Nil for include annotations.
	Binding *int
}

// ElementType returns the struct type key of a group annotation with any array<> wrapper
// removed, or "" for other annotation types.
func (a Annotation) ElementType() AnnotationArg {
	if a.Type != AnnotationTypeBindingGroup || len(a.Args) < 3 {
		return ""
	}
	typeArg := string(a.Args[2])
	if inner, ok := strings.CutPrefix(typeArg, "array<"); ok {
		typeArg = strings.TrimSuffix(inner, ">")
	}
	return AnnotationArg(typeArg)
}

// AddressSpace returns the address space key of a group annotation, or "" for other types.
func (a Annotation) AddressSpace() AnnotationArg {
	if a.Type != AnnotationTypeBindingGroup || len(a.Args) < 1 {
		return ""
	}
	return a.Args[0]
}

// AnnotationArg is a typed string constant used as an argument in annotations.
type AnnotationArg string

// Struct type arguments. Each maps to a Go GPU type with an embedded .wgsl asset file.
const (
	// AnnotationArgCamera identifies the CameraUniform struct.
	// Source: engine/camera/assets/camera_uniform.wgsl
	AnnotationArgCamera AnnotationArg = "camera"

	// AnnotationArgVertex identifies the VertexInput struct read by the vertex stage.
	// Source: engine/model/assets/vertex.wgsl
	AnnotationArgVertex AnnotationArg = "vertex"

	// AnnotationArgVertexRecord identifies the scalar VertexRecord struct used for vertex storage buffers.
	// Source: engine/model/assets/vertex_record.wgsl
	AnnotationArgVertexRecord AnnotationArg = "vertex_record"

	// AnnotationArgBurnFadeParams identifies the BurnFadeParams parameter block.
	// Source: engine/burnfade/assets/burn_fade_params.wgsl
	AnnotationArgBurnFadeParams AnnotationArg = "burn_fade_params"
)

// Address space arguments for @oxy:group annotations.
const (
	// AnnotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	AnnotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// AnnotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	AnnotationArgStorageTypeRead AnnotationArg = "storage_read"

	// AnnotationArgStorageTypeReadWrite maps to var<storage, read_write> in WGSL.
	AnnotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// Provider identity arguments for @oxy:provider annotations.
const (
	// AnnotationArgBurnSource identifies the effect's untouched source vertex buffer.
	AnnotationArgBurnSource AnnotationArg = "burn_source"

	// AnnotationArgBurnOutput identifies the compute output buffer that doubles as the render vertex buffer.
	AnnotationArgBurnOutput AnnotationArg = "burn_output"

	// AnnotationArgBurnParams identifies the burn parameter uniform.
	AnnotationArgBurnParams AnnotationArg = "burn_params"
)

// validStructTypes are the struct keys @oxy:include and @oxy:group accept. Each one needs
// an entry in structRegistry.
var validStructTypes = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgVertex,
	AnnotationArgVertexRecord,
	AnnotationArgBurnFadeParams,
}

// validAddressSpaces lists all AnnotationArg values accepted as address spaces.
var validAddressSpaces = []AnnotationArg{
	AnnotationArgStorageTypeUniform,
	AnnotationArgStorageTypeRead,
	AnnotationArgStorageTypeReadWrite,
}

// validProviderIdentities lists all AnnotationArg values accepted as provider identities.
var validProviderIdentities = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgBurnSource,
	AnnotationArgBurnOutput,
	AnnotationArgBurnParams,
}

// annotationArity is the number of fields after the annotation type for each kind.
var annotationArity = map[AnnotationType]int{
	annotationTypeInclude:      1,
	AnnotationTypeBindingGroup: 5,
	AnnotationTypeProvider:     3,
}

// parseAnnotation parses one WGSL source line. Lines that are not //@oxy: comments yield
// nil and no error.
//
// Parameters:
//   - line: the raw source line
//   - lineNum: the 1-based line number used in errors
//
// Returns:
//   - *Annotation: the annotation, or nil for ordinary lines
//   - error: a "line N: ..." error for a malformed annotation
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}
	fail := func(format string, args ...any) (*Annotation, error) {
		return nil, fmt.Errorf("line %d: %s", lineNum, fmt.Sprintf(format, args...))
	}

	fields := strings.Fields(after)
	if len(fields) == 0 {
		return fail("empty @oxy annotation")
	}
	kind, fields := AnnotationType(fields[0]), fields[1:]
	arity, known := annotationArity[kind]
	if !known {
		return fail("unknown @oxy annotation type %q", kind)
	}
	if len(fields) != arity {
		return fail("@oxy %s annotation takes %d arguments, got %d", kind, arity, len(fields))
	}

	a := &Annotation{Type: kind, Line: lineNum}
	if kind == annotationTypeInclude {
		if !slices.Contains(validStructTypes, AnnotationArg(fields[0])) {
			return fail("unknown struct type %q in @oxy include annotation", fields[0])
		}
		a.Args = []AnnotationArg{AnnotationArg(fields[0])}
		return a, nil
	}

	group, err := parseIndex("group", fields[0])
	if err != nil {
		return fail("%v", err)
	}
	binding, err := parseIndex("binding", fields[1])
	if err != nil {
		return fail("%v", err)
	}
	a.Group, a.Binding = &group, &binding

	if kind == AnnotationTypeProvider {
		if !slices.Contains(validProviderIdentities, AnnotationArg(fields[2])) {
			return fail("unknown provider identity %q in @oxy provider annotation", fields[2])
		}
		a.Args = []AnnotationArg{AnnotationArg(fields[2])}
		return a, nil
	}

	space, name, typeArg := AnnotationArg(fields[2]), AnnotationArg(fields[3]), AnnotationArg(fields[4])
	if !slices.Contains(validAddressSpaces, space) {
		return fail("unknown address space %q in @oxy group annotation", space)
	}
	a.Args = []AnnotationArg{space, name, typeArg}
	if !slices.Contains(validStructTypes, a.ElementType()) {
		return fail("unknown struct type %q in @oxy group annotation", a.ElementType())
	}
	return a, nil
}

func parseIndex(what, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s number %q", what, s)
	}
	return n, nil
}
