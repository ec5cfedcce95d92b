// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// Filename is the name the exported document is delivered under.
const Filename = "reports-dashboard.pdf"

// Section titles, in document order.
const (
	TitleProjectStatus   = "Project Status Overview"
	TitleTeamPerformance = "Team Performance"
	TitleProjectDetails  = "Project Details"
	TitleRecentUpdates   = "Recent Updates"
)

// Page geometry in millimetres (A4 portrait).
const (
	pageWidth  = 210.0
	pageHeight = 297.0

	ptPerMM     = 72 / 25.4
	tableMargin = 40 / ptPerMM

	headerEdge  = 14.0
	contentTop  = 35.0
	newPageTop  = 20.0
	titleGap    = 10.0
	sectionGap  = 20.0
	brandBand   = 2.0
	footerInset = 10.0

	fontSize    = 10.0
	cellPadding = 3.0
	lineFactor  = 1.15
)

type rgb struct{ r, g, b int }

var (
	brandColor  = rgb{224, 95, 0}
	titleColor  = rgb{60, 60, 60}
	metaColor   = rgb{100, 100, 100}
	footerColor = rgb{150, 150, 150}
)

type cellStyle struct {
	fill     *rgb
	text     rgb
	line     rgb
	fontBold bool
}

var (
	headStyle    = cellStyle{fill: &rgb{250, 250, 250}, text: rgb{80, 80, 80}, line: rgb{220, 220, 220}, fontBold: true}
	bodyStyle    = cellStyle{text: rgb{70, 70, 70}, line: rgb{240, 240, 240}}
	bodyAltStyle = cellStyle{fill: &rgb{252, 252, 252}, text: rgb{70, 70, 70}, line: rgb{240, 240, 240}}
)

// Placement records where a section landed. Y values are millimetres from the
// top of the page.
type Placement struct {
	Title   string
	Page    int
	Y       float64
	Rows    int
	EndPage int
	EndY    float64
}

// Layout describes a rendered document.
type Layout struct {
	Pages    int
	Sections []Placement
	// MaxRowBottom is the lowest edge of any table row across all pages.
	MaxRowBottom float64
}

// Section returns the placement of the section with the given title.
func (l Layout) Section(title string) (Placement, bool) {
	for _, p := range l.Sections {
		if p.Title == title {
			return p, true
		}
	}
	return Placement{}, false
}

type section struct {
	title string
	// threshold is the space a section needs below its title; when less
	// remains, the section starts on a new page.
	threshold float64
	head      []string
	widths    map[int]float64
	rows      [][]string
}

func buildSections(ds Datasets) []section {
	status := section{
		title:     TitleProjectStatus,
		threshold: 100,
		head:      []string{"Project Name", "Completion", "Days Left", "Status", "Tasks"},
		widths:    map[int]float64{0: 50, 3: 30},
	}
	for _, r := range ds.ProjectStatus {
		status.rows = append(status.rows, r.Cells())
	}

	team := section{
		title:     TitleTeamPerformance,
		threshold: 100,
		head:      []string{"Team Member", "Total Tasks", "Completed", "Delayed", "Rate"},
	}
	for _, r := range ds.UserPerformance {
		team.rows = append(team.rows, r.Cells())
	}

	details := section{
		title:     TitleProjectDetails,
		threshold: 100,
		head:      []string{"Project Name", "Status", "Start Date", "End Date", "Assigned To", "Progress"},
		widths:    map[int]float64{0: 40, 1: 25, 4: 30},
	}
	for _, r := range ds.ProjectOverview {
		details.rows = append(details.rows, r.Cells())
	}

	updates := section{
		title:     TitleRecentUpdates,
		threshold: 60,
		head:      []string{"Month", "Projects Updated"},
	}
	for _, r := range ds.RecentUpdates {
		updates.rows = append(updates.rows, r.Cells())
	}

	return []section{status, team, details, updates}
}

// Export renders ds as a paginated PDF and writes it to w. The filter is only
// printed in the header. Output depends on nothing but the arguments, so equal
// inputs give byte-identical documents.
func Export(w io.Writer, ds Datasets, filter Filter, now time.Time) (Layout, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Reports Doc", true)
	pdf.SetCreator("taskdesk", true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(tableMargin, tableMargin, tableMargin)
	pdf.SetCellMargin(0)

	txt := newPDFText(pdf)
	e := &exporter{pdf: pdf, txt: txt}

	pdf.AddPage()
	e.header(filter, now)

	y := contentTop
	for _, s := range buildSections(ds) {
		if len(s.rows) == 0 {
			continue
		}
		if y+s.threshold > pageHeight {
			pdf.AddPage()
			y = newPageTop
		}
		p := Placement{Title: s.title, Page: pdf.PageNo(), Y: y, Rows: len(s.rows)}
		y = e.sectionTitle(s.title, y)
		y = e.table(s, y)
		p.EndPage, p.EndY = pdf.PageNo(), y
		e.layout.Sections = append(e.layout.Sections, p)
		y += sectionGap
	}

	e.footers()
	e.layout.Pages = pdf.PageCount()

	if err := pdf.Output(w); err != nil {
		return Layout{}, fmt.Errorf("rendering report PDF: %w", err)
	}
	return e.layout, nil
}

type exporter struct {
	pdf    *fpdf.Fpdf
	txt    pdfText
	layout Layout
}

func (e *exporter) header(filter Filter, now time.Time) {
	pdf := e.pdf
	setFill(pdf, brandColor)
	pdf.Rect(0, 0, pageWidth, brandBand, "F")

	pdf.SetFont("Helvetica", "B", 24)
	setText(pdf, titleColor)
	pdf.Text(headerEdge, 20, e.txt("Reports Doc"))

	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, metaColor)
	e.textRight("Generated on "+now.Format(DisplayDateLayout), 20)
	if filter.Active() {
		e.textRight(filter.RangeLabel(), 25)
	}
}

func (e *exporter) textRight(s string, y float64) {
	s = e.txt(s)
	e.pdf.Text(pageWidth-headerEdge-e.pdf.GetStringWidth(s), y, s)
}

func (e *exporter) sectionTitle(title string, y float64) float64 {
	e.pdf.SetFont("Helvetica", "B", 14)
	setText(e.pdf, brandColor)
	e.pdf.Text(headerEdge, y, e.txt(title))
	return y + titleGap
}

// table draws a header row and the body rows starting at y, continuing on new
// pages with the header repeated. A row that does not fit moves to the next
// page whole; one taller than a page is split between its lines. It returns
// the bottom of the last row.
func (e *exporter) table(s section, y float64) float64 {
	widths := columnWidths(len(s.head), s.widths)
	bottom := pageHeight - tableMargin
	head := e.wrap(s.head, widths, headStyle)
	pageTop := tableMargin + rowHeight(head)

	y = e.drawRow(head, widths, y, rowHeight(head), headStyle)
	for i, cells := range s.rows {
		style := bodyStyle
		if i%2 == 1 {
			style = bodyAltStyle
		}
		lines := e.wrap(cells, widths, style)
		for {
			h := rowHeight(lines)
			if y+h <= bottom {
				y = e.drawRow(lines, widths, y, h, style)
				break
			}
			n := linesFitting(y, bottom)
			if y != pageTop && (pageTop+h <= bottom || n == 0) {
				e.pdf.AddPage()
				y = e.drawRow(head, widths, tableMargin, rowHeight(head), headStyle)
				continue
			}
			var part [][][]byte
			part, lines = splitRow(lines, n)
			y = e.drawRow(part, widths, y, rowHeight(part), style)
			e.layout.MaxRowBottom = max(e.layout.MaxRowBottom, y)
			e.pdf.AddPage()
			y = e.drawRow(head, widths, tableMargin, rowHeight(head), headStyle)
		}
		e.layout.MaxRowBottom = max(e.layout.MaxRowBottom, y)
	}
	return y
}

// linesFitting returns how many text lines a row starting at y can hold
// above bottom.
func linesFitting(y, bottom float64) int {
	n := max(int((bottom-y-2*cellPadding)/lineHeight()), 0)
	for n > 0 && y+linesHeight(n) > bottom {
		n--
	}
	return n
}

// splitRow cuts every cell after its first n lines. Cells that run out keep
// an empty line so the continuation still draws their border.
func splitRow(lines [][][]byte, n int) (first, rest [][][]byte) {
	first = make([][][]byte, len(lines))
	rest = make([][][]byte, len(lines))
	for i, cell := range lines {
		k := min(n, len(cell))
		first[i] = cell[:k]
		rest[i] = cell[k:]
		if len(first[i]) == 0 {
			first[i] = [][]byte{nil}
		}
		if len(rest[i]) == 0 {
			rest[i] = [][]byte{nil}
		}
	}
	return first, rest
}

// wrap encodes and splits every cell to its column width.
func (e *exporter) wrap(cells []string, widths []float64, style cellStyle) [][][]byte {
	e.setFont(style)
	out := make([][][]byte, len(widths))
	for i := range widths {
		text := Placeholder
		if i < len(cells) && cells[i] != "" {
			text = cells[i]
		}
		out[i] = e.pdf.SplitLines([]byte(e.txt(text)), widths[i]-2*cellPadding)
		if len(out[i]) == 0 {
			out[i] = [][]byte{nil}
		}
	}
	return out
}

func (e *exporter) drawRow(lines [][][]byte, widths []float64, y, h float64, style cellStyle) float64 {
	pdf := e.pdf
	e.setFont(style)
	pdf.SetLineWidth(0.1)
	setDraw(pdf, style.line)

	x := tableMargin
	lh := lineHeight()
	for i, w := range widths {
		if style.fill != nil {
			setFill(pdf, *style.fill)
			pdf.Rect(x, y, w, h, "FD")
		} else {
			pdf.Rect(x, y, w, h, "D")
		}
		setText(pdf, style.text)
		for j, line := range lines[i] {
			pdf.SetXY(x+cellPadding, y+cellPadding+float64(j)*lh)
			pdf.CellFormat(w-2*cellPadding, lh, string(line), "", 0, "L", false, 0, "")
		}
		x += w
	}
	return y + h
}

func (e *exporter) setFont(style cellStyle) {
	if style.fontBold {
		e.pdf.SetFont("Helvetica", "B", fontSize)
		return
	}
	e.pdf.SetFont("Helvetica", "", fontSize)
}

// footers stamps "Page i of N" and the brand rule on every page.
func (e *exporter) footers() {
	pdf := e.pdf
	n := pdf.PageCount()
	for i := 1; i <= n; i++ {
		pdf.SetPage(i)
		pdf.SetFont("Helvetica", "", 8)
		setText(pdf, footerColor)
		s := e.txt(fmt.Sprintf("Page %d of %d", i, n))
		pdf.Text((pageWidth-pdf.GetStringWidth(s))/2, pageHeight-footerInset, s)
		setFill(pdf, brandColor)
		pdf.Rect(0, pageHeight-brandBand, pageWidth, brandBand, "F")
	}
}

// columnWidths gives fixed columns their width and splits the rest of the
// table width evenly.
func columnWidths(n int, fixed map[int]float64) []float64 {
	total := pageWidth - 2*tableMargin
	remaining := total
	free := 0
	for i := 0; i < n; i++ {
		if w, ok := fixed[i]; ok {
			remaining -= w
		} else {
			free++
		}
	}
	widths := make([]float64, n)
	for i := range widths {
		if w, ok := fixed[i]; ok {
			widths[i] = w
		} else if free > 0 {
			widths[i] = remaining / float64(free)
		}
	}
	return widths
}

func lineHeight() float64 {
	return fontSize / ptPerMM * lineFactor
}

func rowHeight(lines [][][]byte) float64 {
	n := 1
	for _, l := range lines {
		n = max(n, len(l))
	}
	return linesHeight(n)
}

func linesHeight(n int) float64 {
	return float64(n)*lineHeight() + 2*cellPadding
}

func setFill(pdf *fpdf.Fpdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }
func setText(pdf *fpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
func setDraw(pdf *fpdf.Fpdf, c rgb) { pdf.SetDrawColor(c.r, c.g, c.b) }
