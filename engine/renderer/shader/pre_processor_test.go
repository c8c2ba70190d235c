package shader

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/burnfade/engine/burnfade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreProcessorExpandsAnnotations(t *testing.T) {
	src := strings.Join([]string{
		"//@oxy:include burn_fade_params",
		"//@oxy:include burn_fade_params",
		"//@oxy:group 0 2 storage_uniform params burn_fade_params",
		"//@oxy:group 0 0 storage_read source_vertices array<vertex_record>",
		"//@oxy:provider 1 0 burn_output",
		"fn main() {}",
	}, "\n")

	pp := NewPreProcessor()
	out, err := pp.Process(src)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "struct BurnFadeParams"))
	assert.Contains(t, out, strings.TrimSpace(burnfade.GPUBurnFadeParamsSource))
	assert.Contains(t, out, "@group(0) @binding(2) var<uniform> params: BurnFadeParams;")
	assert.Contains(t, out, "@group(0) @binding(0) var<storage, read> source_vertices: array<VertexRecord>;")
	assert.NotContains(t, out, "@oxy:")
	assert.Contains(t, out, "fn main() {}")

	decls := pp.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, AnnotationTypeBindingGroup, decls[0].Type)
	assert.Equal(t, AnnotationArgBurnFadeParams, decls[0].ElementType())
	assert.Equal(t, AnnotationArgVertexRecord, decls[1].ElementType())
	assert.Equal(t, AnnotationTypeProvider, decls[2].Type)
	assert.Equal(t, AnnotationArgBurnOutput, decls[2].Args[0])
}

func TestPreProcessorResetsDeclarations(t *testing.T) {
	pp := NewPreProcessor()
	_, err := pp.Process("//@oxy:group 0 0 storage_uniform camera camera")
	require.NoError(t, err)
	require.Len(t, pp.Declarations(), 1)

	_, err = pp.Process("fn main() {}")
	require.NoError(t, err)
	assert.Empty(t, pp.Declarations())
}

func TestPreProcessorReportsErrors(t *testing.T) {
	_, err := NewPreProcessor().Process("fn main() {}\n//@oxy:include nothing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
