package export_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"notaria/internal/domain"
	"notaria/internal/export"
)

func testCaseType() *domain.CaseType {
	return &domain.CaseType{
		ID: "compraventa_inmueble",
		Fields: []domain.FieldDefinition{
			{ID: "vendedor", Label: "Vendedor", Required: true, Section: "partes"},
			{ID: "comprador", Label: "Comprador", Required: true, Section: "partes"},
			{ID: "precio", Label: "Precio", DataType: "currency", Required: true},
		},
	}
}

func TestWriteCaseXLSX(t *testing.T) {
	data := domain.ExtractedData{}
	data.Set("partes", "vendedor", domain.NewFieldDatum(domain.StringPtr("ANA PÉREZ"), 0.9, "ine", false))
	data.Set("general", "precio", domain.NewFieldDatum(domain.StringPtr("1500000.50"), 0.4, "escritura", false))
	c := &domain.Case{ID: uuid.New(), ExtractedData: data}

	var buf bytes.Buffer
	require.NoError(t, export.WriteCaseXLSX(&buf, c, testCaseType()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Datos")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Sección", rows[0][0])
	assert.Equal(t, []string{"general", "precio", "Precio", "1500000.50", "0.4", "escritura", "sí", "sí"}, rows[1])
	assert.Equal(t, "vendedor", rows[2][1])
	assert.Equal(t, "no", rows[2][6])
	// missing required field appended with an empty value
	assert.Equal(t, "comprador", rows[3][1])
	assert.Equal(t, "", rows[3][3])
}

func TestWriteCaseCSV(t *testing.T) {
	data := domain.ExtractedData{}
	data.Set("partes", "vendedor", domain.NewFieldDatum(domain.StringPtr("PÉREZ, ANA"), 0.9, "ine", false))
	c := &domain.Case{ID: uuid.New(), ExtractedData: data}

	var buf bytes.Buffer
	require.NoError(t, export.WriteCaseCSV(&buf, c, testCaseType()))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), export.BOM))
	lines := strings.Split(strings.TrimSpace(string(buf.Bytes()[len(export.BOM):])), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Sección,Campo,Etiqueta,Valor,Confianza,Origen,Revisar,Obligatorio", lines[0])
	assert.Equal(t, `partes,vendedor,Vendedor,"PÉREZ, ANA",0.90,ine,no,sí`, lines[1])
	assert.Equal(t, "partes,comprador,Comprador,,0.00,,sí,sí", lines[2])
	assert.Equal(t, "general,precio,Precio,,0.00,,sí,sí", lines[3])
}

func TestBuildFilename(t *testing.T) {
	c := &domain.Case{ID: uuid.MustParse("7d0e3c2a-3f51-4b8e-9a57-1c2d3e4f5a6b"), CaseTypeID: "compraventa inmueble/2"}
	name := export.BuildFilename(c, "xlsx")
	assert.True(t, strings.HasPrefix(name, "compraventa_inmueble_2_7d0e3c2a_"), name)
	assert.True(t, strings.HasSuffix(name, ".xlsx"))
}

func TestRenderPreviewHTML(t *testing.T) {
	doc := &domain.Document{
		Type:    "compraventa_inmueble",
		Status:  domain.DocumentStatusDraft,
		Version: 2,
		Content: "# ESCRITURA\n\n**PRIMERA.** El vendedor\nvende.\n\n<script>alert(1)</script>",
	}
	out := string(export.RenderPreviewHTML(doc))

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>PRIMERA.</strong>")
	assert.Contains(t, out, "<br")
	assert.Contains(t, out, "versión 2")
	assert.NotContains(t, out, "<script>")
}

func TestReadFieldValues_RoundTrip(t *testing.T) {
	data := domain.ExtractedData{}
	data.Set("partes", "vendedor", domain.NewFieldDatum(domain.StringPtr("ANA PÉREZ"), 0.9, "ine", false))
	c := &domain.Case{ID: uuid.New(), ExtractedData: data}

	var buf bytes.Buffer
	require.NoError(t, export.WriteCaseXLSX(&buf, c, testCaseType()))

	// reviewer fills in a missing value
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	rows, err := f.GetRows("Datos")
	require.NoError(t, err)
	for i, row := range rows {
		if len(row) > 1 && row[1] == "precio" {
			cell, _ := excelize.CoordinatesToCellName(4, i+1)
			require.NoError(t, f.SetCellValue("Datos", cell, "2,000,000.00"))
		}
	}
	var edited bytes.Buffer
	require.NoError(t, f.Write(&edited))
	_ = f.Close()

	values, err := export.ReadFieldValues(&edited)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"partes.vendedor": "ANA PÉREZ",
		"general.precio":  "2,000,000.00",
	}, values)
}

func TestReadFieldValues_NotXLSX(t *testing.T) {
	_, err := export.ReadFieldValues(bytes.NewBufferString("not a spreadsheet"))
	assert.Error(t, err)
}
