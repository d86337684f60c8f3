package services

import (
	"bytes"
	"fmt"
	"strings"

	"muellepos/internal/domain"
	"muellepos/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// PDFFormat selects the page layout of the rendered ticket.
type PDFFormat string

const (
	// FormatThermal targets the 58mm roll of the dock's receipt printer.
	FormatThermal PDFFormat = "thermal"
	// FormatStandard is a letter page for office printers.
	FormatStandard PDFFormat = "standard"
	// FormatCompact is a half-letter voucher.
	FormatCompact PDFFormat = "compact"
)

// ParsePDFFormat defaults to thermal, the printer actually at the dock.
func ParsePDFFormat(s string) (PDFFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "thermal", "termico":
		return FormatThermal, true
	case "standard", "carta":
		return FormatStandard, true
	case "compact", "compacto":
		return FormatCompact, true
	}
	return FormatThermal, false
}

// DocsService renders printable artifacts for a ticket. Only a generated or
// printed ticket may be rendered; a draft has no committed price yet.
type DocsService struct {
	RequestID string
}

func (s DocsService) checkPrintable(t domain.Ticket) error {
	switch t.State {
	case domain.StateGenerated, domain.StatePrinted:
		return nil
	default:
		return domain.InvalidTransitionError{From: t.State, Attempted: "imprimir"}
	}
}

// TicketPDF renders the ticket in the requested format and returns the bytes
// with a download filename.
func (s DocsService) TicketPDF(t domain.Ticket, format PDFFormat) ([]byte, string, error) {
	if err := s.checkPrintable(t); err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "ticket_pdf", fmt.Sprintf("codigo=%s formato=%s", t.Code, format))

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatStandard:
		data, err = buildStandardPDF(t)
	case FormatCompact:
		data, err = buildCompactPDF(t)
	default:
		data, err = buildThermalPDF(t)
	}
	if err != nil {
		return nil, "", err
	}
	return data, fmt.Sprintf("ticket-%s.pdf", t.Code), nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

// ticketLines is the shared field listing, in ticket order.
func ticketLines(t domain.Ticket) []string {
	return []string{
		fmt.Sprintf("Codigo      : %s", t.Code),
		fmt.Sprintf("Pasajero    : %s", safe(t.Passenger.Name, "-")),
		fmt.Sprintf("Documento   : %s", safe(t.Passenger.DocumentID, "-")),
		fmt.Sprintf("Fecha       : %s", safe(t.TravelDate, "-")),
		fmt.Sprintf("Hora        : %s", safe(t.TravelTime, "-")),
		fmt.Sprintf("Embarcacion : %s", t.Vessel.Display()),
		fmt.Sprintf("Adultos     : %d", t.Passengers.Adults),
		fmt.Sprintf("Ninos       : %d", t.Passengers.Children),
		fmt.Sprintf("Servicio    : %s", t.ServiceType()),
		fmt.Sprintf("Total       : %s", utils.FormatPesos(t.Quote.Amount)),
	}
}

func buildThermalPDF(t domain.Ticket) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: 58, Ht: 160},
	})
	pdf.SetTitle("Ticket", false)
	pdf.SetMargins(4, 6, 4)
	pdf.SetAutoPageBreak(true, 6)
	pdf.AddPage()

	pdf.SetFont("Courier", "B", 10)
	pdf.CellFormat(0, 5, "MUELLE GUATAPE", "", 1, "C", false, 0, "")
	pdf.SetFont("Courier", "", 7)
	pdf.CellFormat(0, 4, "Pasajes de embarcacion", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 3, strings.Repeat("-", 32), "", 1, "C", false, 0, "")

	pdf.SetFont("Courier", "", 7)
	for _, line := range ticketLines(t) {
		pdf.CellFormat(0, 4, line, "", 1, "L", false, 0, "")
	}

	pdf.CellFormat(0, 3, strings.Repeat("-", 32), "", 1, "C", false, 0, "")
	pdf.SetFont("Courier", "B", 8)
	pdf.CellFormat(0, 5, "Estado: "+string(t.State), "", 1, "C", false, 0, "")
	pdf.SetFont("Courier", "", 6)
	pdf.CellFormat(0, 4, "Conserve este ticket durante el viaje", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildStandardPDF(t domain.Ticket) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle("Ticket de Pasaje", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TICKET DE PASAJE - MUELLE GUATAPE")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 12)
	for _, line := range ticketLines(t) {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Estado: "+string(t.State))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Este ticket es valido para el viaje indicado. Presentelo al abordar la embarcacion.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildCompactPDF(t domain.Ticket) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: 140, Ht: 108},
	})
	pdf.SetTitle("Ticket", false)
	pdf.SetMargins(8, 8, 8)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "MUELLE GUATAPE - "+t.Code)
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range ticketLines(t) {
		pdf.Cell(0, 5, line)
		pdf.Ln(5)
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.Cell(0, 6, "Estado: "+string(t.State))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ESC/POS control sequences for the thermal printer.
var (
	escInit        = []byte{0x1B, 0x40}
	escAlignCenter = []byte{0x1B, 0x61, 0x01}
	escAlignLeft   = []byte{0x1B, 0x61, 0x00}
	escBoldOn      = []byte{0x1B, 0x45, 0x01}
	escBoldOff     = []byte{0x1B, 0x45, 0x00}
	escDoubleOn    = []byte{0x1D, 0x21, 0x11}
	escDoubleOff   = []byte{0x1D, 0x21, 0x00}
	escFeedCut     = []byte{0x1D, 0x56, 0x42, 0x03}
)

// TicketESCPOS renders the ticket as a raw ESC/POS stream for direct printing.
func (s DocsService) TicketESCPOS(t domain.Ticket) ([]byte, error) {
	if err := s.checkPrintable(t); err != nil {
		return nil, err
	}
	utils.LogEvent(s.RequestID, "docs", "ticket_escpos", "codigo="+t.Code)

	var buf bytes.Buffer
	buf.Write(escInit)

	buf.Write(escAlignCenter)
	buf.Write(escDoubleOn)
	buf.WriteString("MUELLE GUATAPE\n")
	buf.Write(escDoubleOff)
	buf.WriteString("Pasajes de embarcacion\n")
	buf.WriteString(strings.Repeat("-", 32) + "\n")

	buf.Write(escAlignLeft)
	for _, line := range ticketLines(t) {
		buf.WriteString(line + "\n")
	}
	buf.WriteString(strings.Repeat("-", 32) + "\n")

	buf.Write(escAlignCenter)
	buf.Write(escBoldOn)
	buf.WriteString("Estado: " + string(t.State) + "\n")
	buf.Write(escBoldOff)
	buf.WriteString("Conserve este ticket\n\n")
	buf.Write(escFeedCut)

	return buf.Bytes(), nil
}
