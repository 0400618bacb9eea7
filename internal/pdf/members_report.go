package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"teamjoin/internal/models"
)

// Generator — интерфейс (удобно мокать в тестах)
type Generator interface {
	GenerateMembersReport(members []models.MemberRecord, invites []models.InviteStatus, at time.Time) (string, error)
}

type ReportGenerator struct {
	RootDir  string // куда складывать отчёты, например "./files"
	FontPath string // TTF с кириллицей; пусто или нет файла, тогда Helvetica
	fontName string
}

func NewReportGenerator(rootDir, fontPath string) *ReportGenerator {
	return &ReportGenerator{
		RootDir:  filepath.Clean(rootDir),
		FontPath: fontPath,
		fontName: "DejaVu",
	}
}

// GenerateMembersReport writes a PDF with all members and invite links and
// returns its absolute path.
func (g *ReportGenerator) GenerateMembersReport(members []models.MemberRecord, invites []models.InviteStatus, at time.Time) (string, error) {
	absPath, err := g.ensureTarget(fmt.Sprintf("members_%s.pdf", at.Format("20060102_150405")))
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Team members", false)
	pdf.SetAuthor("teamjoin", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	font := g.setupFont(pdf)
	pdf.AddPage()

	// ===== Заголовок
	pdf.SetFont(font, "B", 16)
	pdf.CellFormat(0, 10, "Team members", "", 1, "C", false, 0, "")
	pdf.SetFont(font, "", 10)
	pdf.CellFormat(0, 6, "Generated "+at.Format("02.01.2006 15:04"), "", 1, "C", false, 0, "")
	g.hr(pdf)

	// ===== Участники
	g.sectionTitle(pdf, font, fmt.Sprintf("Members (%d)", len(members)))
	widths := []float64{35, 75, 30, 30}
	g.tableRow(pdf, font, "B", widths, "User ID", "Email", "Joined", "Valid till")
	for _, m := range members {
		g.tableRow(pdf, font, "", widths, m.UserID, m.Email, m.Joined, m.Expiry)
	}
	pdf.Ln(6)

	// ===== Инвайты
	g.sectionTitle(pdf, font, fmt.Sprintf("Invite links (%d)", len(invites)))
	inviteWidths := []float64{120, 25, 25}
	g.tableRow(pdf, font, "B", inviteWidths, "Link", "Expiry", "Active")
	for _, inv := range invites {
		active := "no"
		if inv.Active {
			active = "yes"
		}
		g.tableRow(pdf, font, "", inviteWidths, truncate(inv.Link, 70), inv.Expiry, active)
	}

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(font, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return absPath, nil
}

// ===== helpers =====

func (g *ReportGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	return filepath.Join(g.RootDir, filepath.Base(filename)), nil
}

func (g *ReportGenerator) setupFont(pdf *gofpdf.Fpdf) string {
	if g.FontPath == "" {
		return "Helvetica"
	}
	if _, err := os.Stat(g.FontPath); err != nil {
		return "Helvetica"
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
	return g.fontName
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, font, s string) {
	pdf.SetFont(font, "B", 12)
	pdf.CellFormat(0, 8, s, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) tableRow(pdf *gofpdf.Fpdf, font, style string, widths []float64, cells ...string) {
	pdf.SetFont(font, style, 9)
	for i, c := range cells {
		pdf.CellFormat(widths[i], 6, c, "1", 0, "L", style == "B", 0, "")
	}
	pdf.Ln(-1)
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 3)
}

// truncate режет по рунам, чтобы не порвать UTF-8
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
