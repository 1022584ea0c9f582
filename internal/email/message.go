// Package email renders case status notifications shared by the SES and
// no-op notifiers.
package email

import (
	"fmt"
	"html"
	"strings"

	"notaria/internal/domain"
)

// Message is a rendered notification.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// CaseURL is the frontend link for a case.
func CaseURL(frontendURL string, c *domain.Case) string {
	return fmt.Sprintf("%s/cases/%s", strings.TrimRight(frontendURL, "/"), c.ID)
}

// BuildCaseStatusMessage renders the notification for the case's current
// status. ok is false for statuses that are not announced.
func BuildCaseStatusMessage(frontendURL string, c *domain.Case) (Message, bool) {
	link := CaseURL(frontendURL, c)
	var subject, body string
	switch c.Status {
	case domain.CaseStatusNeedsInfo:
		subject = "Su expediente requiere información adicional"
		body = "Faltan datos obligatorios para continuar con su trámite:\n" + bullets(c.MissingFields)
	case domain.CaseStatusReviewing:
		subject = "Su expediente está listo para revisión"
		body = "La información de su trámite fue procesada y está lista para revisión."
	case domain.CaseStatusCompleted:
		subject = "Su trámite ha concluido"
		body = "El documento de su trámite fue aprobado."
	case domain.CaseStatusError:
		subject = "Ocurrió un problema con su expediente"
		body = "No fue posible procesar su trámite: " + c.ErrorMessage
	default:
		return Message{}, false
	}

	text := fmt.Sprintf("%s\n\nConsulte el expediente en:\n%s\n\nNotaría", body, link)
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">%s</h2>
  <p style="white-space: pre-line;">%s</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #1F2937; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Ver expediente</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Notaría</p>
</body>
</html>`, html.EscapeString(subject), html.EscapeString(body), html.EscapeString(link))

	return Message{Subject: subject, Text: text, HTML: htmlBody}, true
}

func bullets(items []string) string {
	var b strings.Builder
	for _, s := range items {
		b.WriteString("- ")
		b.WriteString(s)
		b.WriteString("\n")
	}
	return b.String()
}
