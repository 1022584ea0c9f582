package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"notaria/internal/domain"
)

// buildDraftPrompt asks the provider to draft an instrument when no
// template exists for the case type.
func buildDraftPrompt(ct *domain.CaseType, data domain.ExtractedData, skeleton string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Eres un notario público mexicano. Redacta el instrumento notarial de tipo \"%s\" "+
		"con lenguaje jurídico formal, en español, usando exclusivamente los datos proporcionados.\n\n", ct.Name)
	if ct.Description != "" {
		fmt.Fprintf(&b, "Descripción del acto: %s\n\n", ct.Description)
	}

	b.WriteString("DATOS DEL EXPEDIENTE (JSON por sección):\n")
	payload, err := json.MarshalIndent(values(data), "", "  ")
	if err != nil {
		payload = []byte("{}")
	}
	b.Write(payload)
	b.WriteString("\n\n")

	if strings.TrimSpace(skeleton) != "" {
		b.WriteString("Sigue la siguiente estructura de documento:\n")
		b.WriteString(skeleton)
		b.WriteString("\n\n")
	}

	b.WriteString("REGLAS:\n")
	b.WriteString("- Incluye proemio, antecedentes, declaraciones, cláusulas y cierre con espacio para firmas.\n")
	b.WriteString("- Escribe los importes con número y con letra, seguidos de \"MONEDA NACIONAL\".\n")
	b.WriteString("- Si falta un dato, deja el marcador [PENDIENTE: descripción del dato]; no inventes información.\n")
	b.WriteString("- Usa texto plano con encabezados en Markdown y saltos de línea simples.\n")
	b.WriteString("- Responde únicamente con el texto del documento, sin comentarios adicionales.\n")
	return b.String()
}

// buildEditPrompt asks for the complete revised document.
func buildEditPrompt(content, instruction string) string {
	var b strings.Builder
	b.WriteString("Eres un notario público mexicano revisando un instrumento notarial. ")
	b.WriteString("Aplica la instrucción del usuario al documento y conserva intacto todo lo demás, ")
	b.WriteString("incluidos el formato, los nombres y las cantidades no mencionados.\n\n")
	fmt.Fprintf(&b, "INSTRUCCIÓN:\n%s\n\n", strings.TrimSpace(instruction))
	b.WriteString("DOCUMENTO ACTUAL:\n<<<\n")
	b.WriteString(content)
	b.WriteString("\n>>>\n\n")
	b.WriteString("Responde únicamente con el documento completo ya modificado, sin explicaciones ni delimitadores.\n")
	return b.String()
}

// values reduces the data set to section -> key -> value for the prompt.
func values(data domain.ExtractedData) map[string]map[string]*string {
	out := make(map[string]map[string]*string, len(data))
	for section, fields := range data {
		m := make(map[string]*string, len(fields))
		for key, d := range fields {
			m[key] = d.Value
		}
		out[section] = m
	}
	return out
}
