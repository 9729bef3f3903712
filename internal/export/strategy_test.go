package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceAdvance(t *testing.T) {
	tr := newTrace()
	tr.advance(StateTemplateAvailable)
	tr.advance(StateTemplateFailedAtRuntime)
	tr.advance(StateExportedBasic)

	assert.True(t, tr.Current().Terminal())
	assert.Equal(t, "START>TEMPLATE_AVAILABLE>TEMPLATE_FAILED_AT_RUNTIME>EXPORTED_BASIC", tr.String())
}

func TestTraceRejectsIllegalEdges(t *testing.T) {
	tests := []struct {
		name string
		path []State
	}{
		{"basic straight from start", []State{StateExportedBasic}},
		{"template after unavailable", []State{StateTemplateUnavailable, StateExportedWithTemplate}},
		{"basic twice", []State{StateTemplateUnavailable, StateExportedBasic, StateExportedBasic}},
		{"retry template after failure", []State{StateTemplateAvailable, StateTemplateFailedAtRuntime, StateTemplateAvailable}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTrace()
			assert.Panics(t, func() {
				for _, s := range tt.path {
					tr.advance(s)
				}
			})
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "TEMPLATE_UNAVAILABLE", StateTemplateUnavailable.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
	assert.False(t, StateTemplateAvailable.Terminal())
}
