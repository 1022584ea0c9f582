package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notaria/internal/domain"
)

func TestNewFieldDatum_ReviewInvariant(t *testing.T) {
	low := domain.NewFieldDatum(domain.StringPtr("x"), 0.49, "INE", false)
	assert.True(t, low.NeedsReview)

	ambiguous := domain.NewFieldDatum(domain.StringPtr("x"), 0.9, "INE", true)
	assert.True(t, ambiguous.NeedsReview)

	ok := domain.NewFieldDatum(domain.StringPtr("x"), 0.5, "INE", false)
	assert.False(t, ok.NeedsReview)
}

func TestNewFieldDatum_ClampsConfidence(t *testing.T) {
	assert.Equal(t, 1.0, domain.NewFieldDatum(nil, 7, "", false).Confidence)
	assert.Equal(t, 0.0, domain.NewFieldDatum(nil, -2, "", false).Confidence)
	assert.Equal(t, 0.0, domain.NewFieldDatum(nil, math.NaN(), "", false).Confidence)
}

func TestExtractedData_LookupPrecedence(t *testing.T) {
	data := domain.ExtractedData{}
	data.Set("vendedor", "nombre", domain.NewFieldDatum(domain.StringPtr("Ana"), 0.9, "", false))
	data.Set("comprador", "nombre", domain.NewFieldDatum(domain.StringPtr("Luis"), 0.9, "", false))

	// bare key: lexicographic order, "comprador" before "vendedor"
	d, ok := data.Lookup("nombre")
	require.True(t, ok)
	assert.Equal(t, "Luis", d.StringValue())

	d, ok = data.Lookup("vendedor.nombre")
	require.True(t, ok)
	assert.Equal(t, "Ana", d.StringValue())

	data.Set(domain.DefaultSection, "nombre", domain.NewFieldDatum(domain.StringPtr("General"), 0.9, "", false))
	d, _ = data.Lookup("nombre")
	assert.Equal(t, "General", d.StringValue())

	_, ok = data.Lookup("inexistente")
	assert.False(t, ok)
}

func TestExtractedData_Flatten(t *testing.T) {
	data := domain.ExtractedData{}
	data.Set("", "folio", domain.NewFieldDatum(domain.StringPtr("A-1"), 1, "", false))
	data.Set("inmueble", "direccion", domain.NewFieldDatum(domain.StringPtr("Calle 1"), 1, "", false))
	data.Set("inmueble", "clave", domain.NewFieldDatum(nil, 0, "", false))

	flat := data.Flatten()

	assert.Equal(t, "A-1", flat["folio"])
	assert.Equal(t, "A-1", flat["general.folio"])
	assert.Equal(t, "Calle 1", flat["direccion"])
	assert.Equal(t, "Calle 1", flat["inmueble.direccion"])
	assert.Equal(t, "", flat["clave"])
}

func TestExtractedData_MissingFields(t *testing.T) {
	data := domain.ExtractedData{}
	data.Set("", "a", domain.NewFieldDatum(domain.StringPtr("1"), 1, "", false))
	data.Set("", "b", domain.NewFieldDatum(domain.StringPtr("   "), 1, "", false))

	assert.Equal(t, []string{"b", "c"}, data.MissingFields([]string{"a", "b", "c"}))
	assert.Equal(t, []string{}, data.MissingFields([]string{"a"}))
}

func TestExtractedData_IsEmpty(t *testing.T) {
	assert.True(t, domain.ExtractedData{}.IsEmpty())

	data := domain.ExtractedData{}
	data.Set("", "a", domain.NewFieldDatum(nil, 0, "", false))
	assert.True(t, data.IsEmpty())

	data.Set("", "b", domain.NewFieldDatum(domain.StringPtr("x"), 1, "", false))
	assert.False(t, data.IsEmpty())
}

func TestExtractedData_ScanValue(t *testing.T) {
	data := domain.ExtractedData{}
	data.Set("", "a", domain.NewFieldDatum(domain.StringPtr("1"), 0.8, "INE", false))

	raw, err := data.Value()
	require.NoError(t, err)

	var out domain.ExtractedData
	require.NoError(t, out.Scan(raw))
	d, ok := out.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "1", d.StringValue())
	assert.Equal(t, "INE", d.Source)

	require.NoError(t, out.Scan(nil))
	assert.Empty(t, out)
	assert.Error(t, out.Scan(42))
}

func TestExtractedData_CloneIsDeep(t *testing.T) {
	data := domain.ExtractedData{}
	data.Set("", "a", domain.NewFieldDatum(domain.StringPtr("1"), 1, "", false))

	clone := data.Clone()
	clone.Set("", "a", domain.NewFieldDatum(domain.StringPtr("2"), 1, "", false))

	d, _ := data.Lookup("a")
	assert.Equal(t, "1", d.StringValue())
}
