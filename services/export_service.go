package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"inventario-app/models"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ExportService renders selected bens in the formats the list screen
// offers: CSV, JSON, XML, XLSX, a print-ready HTML report (the PDF path)
// and a WhatsApp share link.
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

var exportHeaders = []string{
	"numero_patrimonio", "codigo", "descricao", "situacao", "categoria",
	"fabricante", "modelo", "numero_serie", "data_aquisicao", "valor",
	"localizacao", "responsavel", "observacoes", "created_at", "updated_at",
}

var exportHeaderDisplay = []string{
	"Plaqueta", "Codigo", "Descricao", "Situacao", "Categoria",
	"Fabricante", "Modelo", "N de Serie", "Data de Aquisicao", "Valor",
	"Localizacao", "Responsavel", "Observacoes", "Data de Criacao", "Ultima Atualizacao",
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// sanitize strips accent marks and ordinal symbols so spreadsheet tools
// render the text cleanly.
func sanitize(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		out = s
	}
	return strings.ReplaceAll(out, "º", "o")
}

// formatBRL renders a value as Brazilian currency, e.g. R$ 1.234,56.
func formatBRL(v float64) string {
	negative := v < 0
	if negative {
		v = -v
	}
	whole := fmt.Sprintf("%.2f", v)
	intPart := whole[:len(whole)-3]
	decPart := whole[len(whole)-2:]

	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)

	sign := ""
	if negative {
		sign = "-"
	}
	return sign + "R$ " + strings.Join(grouped, ".") + "," + decPart
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func (s *ExportService) fieldValues(bem models.Bem) []string {
	dataAquisicao := ""
	if bem.DataAquisicao != nil {
		dataAquisicao = formatDate(*bem.DataAquisicao)
	}
	updatedAt := ""
	if !bem.UpdatedAt.IsZero() {
		updatedAt = bem.UpdatedAt.Format("02/01/2006 15:04:05")
	}
	return []string{
		sanitize(bem.NumeroPatrimonio),
		sanitize(bem.Codigo),
		sanitize(bem.Descricao),
		sanitize(bem.Situacao),
		sanitize(bem.Categoria),
		sanitize(bem.Fabricante),
		sanitize(bem.Modelo),
		sanitize(bem.NumeroSerie),
		dataAquisicao,
		formatBRL(bem.Valor),
		sanitize(bem.Localizacao),
		sanitize(bem.Responsavel),
		sanitize(bem.Observacoes),
		bem.CreatedAt.Format("02/01/2006 15:04:05"),
		updatedAt,
	}
}

func (s *ExportService) ConvertToCSV(bens []models.Bem) string {
	if len(bens) == 0 {
		return ""
	}

	rows := []string{strings.Join(exportHeaderDisplay, ",")}
	for _, bem := range bens {
		values := s.fieldValues(bem)
		for i, value := range values {
			if strings.ContainsAny(value, ",\"\n") {
				values[i] = `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
			}
		}
		rows = append(rows, strings.Join(values, ","))
	}
	return strings.Join(rows, "\n")
}

func (s *ExportService) ConvertToJSON(bens []models.Bem) ([]byte, error) {
	return json.MarshalIndent(bens, "", "  ")
}

func escapeXML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}

func (s *ExportService) ConvertToXML(bens []models.Bem) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<bens>\n")
	for _, bem := range bens {
		b.WriteString(fmt.Sprintf("  <bem id=\"%d\">\n", bem.ID))
		values := s.fieldValues(bem)
		for i, header := range exportHeaders {
			b.WriteString(fmt.Sprintf("    <%s>%s</%s>\n", header, escapeXML(values[i]), header))
		}
		b.WriteString("  </bem>\n")
	}
	b.WriteString("</bens>")
	return b.String()
}

func (s *ExportService) ConvertToXLSX(bens []models.Bem) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	header := make([]interface{}, len(exportHeaderDisplay))
	for i, h := range exportHeaderDisplay {
		header[i] = h
	}
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, bem := range bens {
		values := s.fieldValues(bem)
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildPrintHTML returns a self-contained report the browser prints to
// PDF.
func (s *ExportService) BuildPrintHTML(bens []models.Bem, generatedAt time.Time) string {
	headers := []string{"Plaqueta", "Descricao", "Situacao", "Valor", "Fabricante", "Modelo", "N Serie"}

	var head strings.Builder
	for _, h := range headers {
		head.WriteString("<th>" + h + "</th>")
	}

	var body strings.Builder
	for _, bem := range bens {
		cells := []string{
			sanitize(bem.NumeroPatrimonio),
			sanitize(bem.Descricao),
			sanitize(bem.Situacao),
			formatBRL(bem.Valor),
			orNA(sanitize(bem.Fabricante)),
			orNA(sanitize(bem.Modelo)),
			orNA(sanitize(bem.NumeroSerie)),
		}
		body.WriteString("<tr>")
		for _, cell := range cells {
			body.WriteString("<td>" + escapeXML(cell) + "</td>")
		}
		body.WriteString("</tr>")
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="UTF-8">
    <title>Exportacao de Bens</title>
    <style>
      body { font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; }
      table { width: 100%%; border-collapse: collapse; font-size: 12px; }
      th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
      th { background-color: #f2f2f2; }
      @media print { body { -webkit-print-color-adjust: exact; } }
    </style>
  </head>
  <body>
    <h1>Relatorio de Bens</h1>
    <p>Gerado em: %s</p>
    <table>
      <thead><tr>%s</tr></thead>
      <tbody>%s</tbody>
    </table>
    <script>window.onload = function() { window.print(); }</script>
  </body>
</html>`, generatedAt.Format("02/01/2006 15:04:05"), head.String(), body.String())
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// BuildWhatsAppLink builds the share URL with the item list as message
// text.
func (s *ExportService) BuildWhatsAppLink(bens []models.Bem) string {
	var msg strings.Builder
	msg.WriteString("*Inventario ActiveScan Pro*\n\n")
	for i, bem := range bens {
		msg.WriteString(fmt.Sprintf("*Item %d*\n", i+1))
		msg.WriteString("Plaqueta: " + sanitize(bem.NumeroPatrimonio) + "\n")
		msg.WriteString("Descricao: " + sanitize(bem.Descricao) + "\n")
		msg.WriteString("Fabricante: " + orNA(sanitize(bem.Fabricante)) + "\n")
		msg.WriteString("Modelo: " + orNA(sanitize(bem.Modelo)) + "\n")
		msg.WriteString("N Serie: " + orNA(sanitize(bem.NumeroSerie)) + "\n")
		msg.WriteString("Situacao: " + sanitize(bem.Situacao) + "\n")
		msg.WriteString("Valor: " + formatBRL(bem.Valor) + "\n\n")
	}
	return "https://api.whatsapp.com/send?text=" + url.QueryEscape(msg.String())
}
