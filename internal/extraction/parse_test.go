package extraction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notaria/internal/domain"
)

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"plain", `{"a":1}`, `{"a":1}`, true},
		{"surrounded by prose", `Aquí está: {"a":{"b":2}} fin`, `{"a":{"b":2}}`, true},
		{"brace inside string", `{"a":"x}y"}`, `{"a":"x}y"}`, true},
		{"escaped quote", `{"a":"x\"}"}`, `{"a":"x\"}"}`, true},
		{"unbalanced first brace", `{ roto {"a":1}`, `{"a":1}`, true},
		{"none", `sin datos`, "", false},
		{"never closed", `{"a":1`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := firstJSONObject(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePayload_NestedContract(t *testing.T) {
	raw := "```json\n" + `{
		"fields": {
			"vendedor_nombre": {"value": "Juan Pérez López", "confidence": 0.95, "source": "INE"},
			"precio": {"value": 1500000.50, "confidence": 0.9},
			"vendedor_rfc": {"value": null, "confidence": 0},
			"comprador_curp": {"value": "PELJ800101HDFRRN01", "ambiguous": true}
		},
		"missing": ["comprador_nombre"],
		"suggestions": ["Solicitar identificación del comprador"]
	}` + "\n```"

	p, err := parsePayload(raw)
	require.NoError(t, err)

	require.Contains(t, p.Fields, "vendedor_nombre")
	assert.Equal(t, "Juan Pérez López", *p.Fields["vendedor_nombre"].Value)
	assert.Equal(t, 0.95, p.Fields["vendedor_nombre"].Confidence)
	assert.Equal(t, "INE", p.Fields["vendedor_nombre"].Source)

	assert.Equal(t, "1500000.50", *p.Fields["precio"].Value)
	assert.Nil(t, p.Fields["vendedor_rfc"].Value)

	curp := p.Fields["comprador_curp"]
	assert.True(t, curp.Ambiguous)
	assert.Equal(t, defaultConfidence, curp.Confidence)

	assert.Empty(t, p.Rejected)
	assert.Equal(t, []string{"Solicitar identificación del comprador"}, p.Suggestions)
}

func TestParsePayload_FlatObject(t *testing.T) {
	p, err := parsePayload(`{"vendedor_nombre": "Ana", "precio": "  ", "notaria_numero": 21, "missing": ["x"]}`)
	require.NoError(t, err)

	assert.Len(t, p.Fields, 3)
	assert.Equal(t, "Ana", *p.Fields["vendedor_nombre"].Value)
	assert.Equal(t, defaultConfidence, p.Fields["vendedor_nombre"].Confidence)
	assert.Nil(t, p.Fields["precio"].Value)
	assert.Zero(t, p.Fields["precio"].Confidence)
	assert.Equal(t, "21", *p.Fields["notaria_numero"].Value)
	assert.NotContains(t, p.Fields, "missing")
}

func TestParsePayload_NonScalarValueRejectedAlone(t *testing.T) {
	p, err := parsePayload(`{"fields": {
		"vendedor_nombre": {"value": "Ana Ruiz", "confidence": 0.9},
		"colindancias": {"value": ["norte", "sur"]},
		"precio": {"a": 1, "value": {"monto": 10}},
		"comprador_nombre": ["Luis"]
	}}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"colindancias", "comprador_nombre", "precio"}, p.Rejected)
	assert.Len(t, p.Fields, 1)
	assert.Equal(t, "Ana Ruiz", *p.Fields["vendedor_nombre"].Value)
}

func TestParsePayload_Failures(t *testing.T) {
	for name, raw := range map[string]string{
		"no object":      "Lo siento, no puedo ayudar con eso.",
		"invalid json":   `{"fields": {"a": }}`,
		"fields not map": `{"fields": "x"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parsePayload(raw)
			var pe *domain.ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, raw, pe.Raw)
		})
	}
}
