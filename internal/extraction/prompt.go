package extraction

import (
	"fmt"
	"strings"

	"notaria/internal/domain"
)

// BuildExtractionPrompt assembles the single instruction sent to the
// provider for a case type and its uploaded documents.
func BuildExtractionPrompt(ct *domain.CaseType, files []domain.CaseFile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Eres un asistente jurídico especializado en la práctica notarial mexicana. "+
		"Tu tarea es extraer los datos necesarios para redactar un instrumento de tipo \"%s\" "+
		"a partir de los documentos proporcionados por el cliente.\n\n", ct.Name)

	b.WriteString("CAMPOS A EXTRAER (usa exactamente estos identificadores):\n")
	for _, f := range ct.Fields {
		marker := "opcional"
		if f.Required {
			marker = "obligatorio"
		}
		fmt.Fprintf(&b, "- %s: %s (tipo: %s, %s)\n", f.ID, f.Label, f.DataType, marker)
	}

	b.WriteString("\nCONVENCIONES:\n")
	b.WriteString("- Nombres completos en el orden nombre(s), apellido paterno, apellido materno, tal como aparecen en la identificación.\n")
	b.WriteString("- La CURP tiene exactamente 18 caracteres alfanuméricos en mayúsculas; si no coincide, marca el campo como ambiguo.\n")
	b.WriteString("- El RFC tiene 12 (persona moral) o 13 (persona física) caracteres.\n")
	b.WriteString("- Fechas en formato ISO AAAA-MM-DD.\n")
	b.WriteString("- Importes como número sin formato: sin símbolo de moneda ni separadores de miles (ejemplo: 1500000.50).\n")
	b.WriteString("- Si un dato no aparece en los documentos, usa null; nunca inventes información.\n")

	b.WriteString("\nDOCUMENTOS DISPONIBLES:\n")
	if len(files) == 0 {
		b.WriteString("- (ninguno)\n")
	}
	for _, f := range files {
		category := f.Category
		if category == "" {
			category = "Documento"
		}
		ref := f.URL
		if ref == "" {
			ref = f.FileName
		}
		fmt.Fprintf(&b, "- %s: %s\n", category, ref)
	}

	b.WriteString("\nFORMATO DE RESPUESTA:\n")
	b.WriteString("Responde únicamente con un objeto JSON con esta estructura, sin texto adicional:\n")
	b.WriteString(`{"fields":{"<id>":{"value":"<valor o null>","confidence":<0 a 1>,"source":"<documento de origen>","ambiguous":<true|false>}},"missing":["<id>"],"suggestions":["<recomendación>"]}`)
	b.WriteString("\n")

	return b.String()
}
