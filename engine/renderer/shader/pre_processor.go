// pre_processor.go implements the WGSL shader pre-processor. It scans shader source for
// @oxy: annotations, replaces them with generated WGSL declarations or injected struct
// source, and collects a declarations list the Scene uses to wire GPU resources.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/burnfade/engine/burnfade"
	"github.com/Carmen-Shannon/burnfade/engine/camera"
	"github.com/Carmen-Shannon/burnfade/engine/model"
)

// wgslStructSource is a struct declaration that //@oxy:include can inject, together with the
// struct's name for use in generated bindings.
type wgslStructSource struct {
	name   string
	source string
}

var structRegistry = map[AnnotationArg]wgslStructSource{
	AnnotationArgCamera:         {"CameraUniform", camera.GPUCameraUniformSource},
	AnnotationArgVertex:         {"VertexInput", model.GPUVertexSource},
	AnnotationArgVertexRecord:   {"VertexRecord", model.GPUVertexRecordSource},
	AnnotationArgBurnFadeParams: {"BurnFadeParams", burnfade.GPUBurnFadeParamsSource},
}

// varQualifiers are the WGSL var forms for each address space argument.
var varQualifiers = map[AnnotationArg]string{
	AnnotationArgStorageTypeUniform:   "var<uniform>",
	AnnotationArgStorageTypeRead:      "var<storage, read>",
	AnnotationArgStorageTypeReadWrite: "var<storage, read_write>",
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// declarations accumulates group and provider annotations during a Process call.
	declarations []Annotation
}

// PreProcessor processes raw WGSL shader source containing @oxy: annotations.
type PreProcessor interface {
	// Process replaces @oxy:include annotations with struct source and @oxy:group
	// annotations with generated declarations. @oxy:provider annotations produce no
	// output but are recorded. The declarations list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code containing annotations
	//
	// Returns:
	//   - string: the processed WGSL shader source code
	//   - error: an error if any annotation is malformed or references an unknown type
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations collected during the most
	// recent call to Process, in source order.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	included := make(map[AnnotationArg]bool)

	var sb strings.Builder
	sb.Grow(len(source))
	for i, line := range strings.Split(source, "\n") {
		if i > 0 {
			sb.WriteByte('\n')
		}
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			sb.WriteString(line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			// each struct is declared at most once per module
			if !included[a.Args[0]] {
				included[a.Args[0]] = true
				sb.WriteString(structRegistry[a.Args[0]].source)
			}
		case AnnotationTypeBindingGroup:
			sb.WriteString(bindingDecl(*a))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return sb.String(), nil
}

// bindingDecl renders a group annotation as a WGSL variable declaration, e.g.
// "@group(0) @binding(2) var<uniform> params: BurnFadeParams;".
func bindingDecl(a Annotation) string {
	typeName := structRegistry[a.ElementType()].name
	if strings.HasPrefix(string(a.Args[2]), "array<") {
		typeName = "array<" + typeName + ">"
	}
	return fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, varQualifiers[a.Args[0]], a.Args[1], typeName)
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
