package checklist

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want Answer
	}{
		{"CUMPLE", Complies},
		{"Sí", Complies},
		{"COMPLIES", Complies},
		{"NO_CUMPLE", DoesNotComply},
		{"no cumple", DoesNotComply},
		{"DOES_NOT_COMPLY", DoesNotComply},
		{"NO_APLICA", NotApplicable},
		{"N/A", NotApplicable},
		{"NOT_APPLICABLE", NotApplicable},
		{"", Unset},
		{"   ", Unset},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAnswer(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseAnswer("parcialmente")
	assert.Error(t, err)
}

func TestAnswerCodesAndLabels(t *testing.T) {
	assert.Equal(t, "NO_APLICA", NotApplicable.Code())
	assert.Equal(t, "No cumple", DoesNotComply.Label())
	assert.Equal(t, "", Unset.Label())
	assert.Equal(t, "UNSET", Unset.String())
}

func TestInlineAnswerJSON(t *testing.T) {
	var got []InlineAnswer
	body := `[{"item":2,"respuesta":"CUMPLE"},{"item":4,"respuesta":"NO_APLICA","observaciones":"sin garantía"}]`
	require.NoError(t, json.Unmarshal([]byte(body), &got))

	require.Len(t, got, 2)
	require.NotNil(t, got[0].Answer)
	assert.Equal(t, Complies, *got[0].Answer)
	assert.Nil(t, got[0].Observations)
	require.NotNil(t, got[1].Answer)
	assert.Equal(t, NotApplicable, *got[1].Answer)
	require.NotNil(t, got[1].Observations)
	assert.Equal(t, "sin garantía", *got[1].Observations)

	got = nil
	require.NoError(t, json.Unmarshal([]byte(`[{"item":1,"respuesta":null},{"item":2,"respuesta":""}]`), &got))
	assert.Nil(t, got[0].Answer, "null leaves the stored answer alone")
	require.NotNil(t, got[1].Answer)
	assert.Equal(t, Unset, *got[1].Answer, "empty clears it")

	err := json.Unmarshal([]byte(`[{"item":1,"respuesta":"TAL VEZ"}]`), &got)
	assert.Error(t, err)
}
