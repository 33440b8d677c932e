package services

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/jung-kurt/gofpdf"
	"github.com/recaudoseguro/recaudo-api/internal/lending"
	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"github.com/recaudoseguro/recaudo-api/internal/storage"
	"github.com/recaudoseguro/recaudo-api/pkg/logger"
	"github.com/xuri/excelize/v2"
)

//go:embed templates/contract.html
var contractTemplateHTML string

var contractTemplate = template.Must(template.New("contract").Parse(contractTemplateHTML))

var monthNames = []string{"", "enero", "febrero", "marzo", "abril", "mayo", "junio", "julio",
	"agosto", "septiembre", "octubre", "noviembre", "diciembre"}

// Route export formats
const (
	ExportFormatXLSX = "xlsx"
	ExportFormatPDF  = "pdf"
)

// ReportService renders documents: credit contracts and route sheets
type ReportService struct {
	repos       *repository.Repositories
	routes      *RouteService
	storage     *storage.LocalStorage
	notifier    *NotificationService
	companyName string
	loc         *time.Location
	htmlToPDF   func(html []byte) ([]byte, error)
}

func NewReportService(
	repos *repository.Repositories,
	routes *RouteService,
	store *storage.LocalStorage,
	notifier *NotificationService,
	companyName string,
	loc *time.Location,
) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		repos:       repos,
		routes:      routes,
		storage:     store,
		notifier:    notifier,
		companyName: companyName,
		loc:         loc,
		htmlToPDF:   wkhtmlToPDF,
	}
}

type contractInstallment struct {
	Number int
	Date   string
	Amount string
}

type contractData struct {
	GUID               string
	Date               string
	CompanyName        string
	ClientName         string
	ClientIdentity     string
	ClientAddress      string
	Principal          string
	AmountWords        string
	Commission         string
	CommissionWords    string
	Total              string
	TotalWords         string
	InstallmentCount   int
	InstallmentAmount  string
	FirstPaymentDate   string
	LastPaymentDate    string
	LateInterestActive bool
	LateInterestRate   string
	Schedule           []contractInstallment
	AcceptedAt         string
}

// GenerateContract renders the contract of an accepted credit to PDF, stores
// it and records its path on the credit.
func (s *ReportService) GenerateContract(ctx context.Context, creditID uint) error {
	credit, err := s.repos.Credit.FindByIDWithClient(ctx, creditID)
	if err != nil {
		return fmt.Errorf("failed to load credit %d: %w", creditID, creditLookupErr(err))
	}
	// without settings the contract has no late-interest clause
	settings, _ := s.repos.Settings.FindByProvider(ctx, credit.ProviderID)

	html, err := s.renderContractHTML(credit, lending.LateInterestOf(settings))
	if err != nil {
		return err
	}
	pdf, err := s.htmlToPDF(html)
	if err != nil {
		return fmt.Errorf("failed to render contract %d: %w", creditID, err)
	}

	path, err := s.storage.UploadFromBytes(pdf, fmt.Sprintf("contrato_%s.pdf", credit.GUID), "contracts")
	if err != nil {
		return fmt.Errorf("failed to store contract %d: %w", creditID, err)
	}
	if err := s.repos.Credit.SetContractPath(ctx, credit.ID, path); err != nil {
		_ = s.storage.Delete(path)
		return fmt.Errorf("failed to save contract path: %w", err)
	}

	logger.FromContext(ctx).Info("contract generated",
		slog.Uint64("credit_id", uint64(credit.ID)), slog.String("path", path))
	s.notifier.notifyCredit(ctx, credit, "Contrato disponible",
		fmt.Sprintf("El contrato del crédito %s está listo para descargar", credit.GUID), models.NotificationTypeContractReady)
	return nil
}

func (s *ReportService) renderContractHTML(credit *models.Credit, li lending.LateInterest) ([]byte, error) {
	blank := func(v string) string {
		if v == "" {
			return "____________________"
		}
		return v
	}

	total := credit.Obligation()
	data := contractData{
		GUID:               credit.GUID,
		Date:               s.longDate(time.Now()),
		CompanyName:        s.companyName,
		ClientName:         blank(credit.Client.FullName),
		ClientIdentity:     blank(credit.Client.Identity),
		ClientAddress:      blank(credit.Client.Address),
		Principal:          credit.Principal.StringFixed(2),
		AmountWords:        AmountInWords(credit.Principal),
		Commission:         credit.CommissionAmount.StringFixed(2),
		CommissionWords:    AmountInWords(credit.CommissionAmount),
		Total:              total.StringFixed(2),
		TotalWords:         AmountInWords(total),
		InstallmentCount:   credit.InstallmentCount,
		InstallmentAmount:  credit.InstallmentAmount().StringFixed(2),
		LateInterestActive: li.Active,
		LateInterestRate:   li.Rate.String(),
	}
	if credit.AcceptedAt != nil {
		data.AcceptedAt = s.longDate(*credit.AcceptedAt)
	}
	if n := len(credit.PaymentSchedule); n > 0 {
		data.FirstPaymentDate = s.longDate(credit.PaymentSchedule[0])
		data.LastPaymentDate = s.longDate(credit.PaymentSchedule[n-1])
		for i, d := range credit.PaymentSchedule {
			data.Schedule = append(data.Schedule, contractInstallment{
				Number: i + 1,
				Date:   d.Format("02/01/2006"),
				Amount: data.InstallmentAmount,
			})
		}
	}

	var buf bytes.Buffer
	if err := contractTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute contract template: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *ReportService) longDate(t time.Time) string {
	t = t.In(s.loc)
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthNames[t.Month()], t.Year())
}

func wkhtmlToPDF(html []byte) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}
	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeLetter)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.Encoding.Set("utf-8")
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}
	return pdfg.Bytes(), nil
}

// ExportRoute renders a collector's route as a spreadsheet or PDF and returns
// the file with a suggested name.
func (s *ReportService) ExportRoute(ctx context.Context, actor Actor, collectorID uint, window lending.RouteWindow, format string) ([]byte, string, error) {
	if format != ExportFormatXLSX && format != ExportFormatPDF {
		return nil, "", newError(KindValidation, "formato de exportación no soportado, use xlsx o pdf")
	}
	route, err := s.routes.BuildPaymentRoute(ctx, actor, collectorID, window)
	if err != nil {
		return nil, "", err
	}
	collector, err := s.repos.User.FindByID(ctx, collectorID)
	if err != nil {
		return nil, "", err
	}

	title := fmt.Sprintf("Ruta de cobro de %s", collector.FullName)
	filename := fmt.Sprintf("ruta_%d_%s.%s", collectorID, route.AsOf.Format(models.DateLayout), format)

	var data []byte
	if format == ExportFormatXLSX {
		data, err = RouteXLSX(route, title)
	} else {
		data, err = RoutePDF(route, title)
	}
	if err != nil {
		return nil, "", err
	}
	return data, filename, nil
}

var routeColumns = []string{"Fecha", "Cliente", "Teléfono", "Dirección", "Cuota N°", "Valor cuota", "Días mora", "Mora", "Deuda total", "Acuerdo"}

func routeRow(group lending.RouteGroup, e lending.RouteEntry) []interface{} {
	agreement := "No"
	if e.HasAgreement {
		agreement = "Sí"
	}
	return []interface{}{
		group.Date.Format(models.DateLayout),
		e.ClientName,
		e.ClientPhone,
		e.Address,
		e.InstallmentNumber,
		e.InstallmentAmount.InexactFloat64(),
		e.ChargeableDays,
		e.LateFee.InexactFloat64(),
		e.TotalDebt.InexactFloat64(),
		agreement,
	}
}

// RouteXLSX writes the route as one spreadsheet row per visit
func RouteXLSX(route *lending.Route, title string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Ruta"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	overdueStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "#B00020"}})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})

	_ = f.SetCellValue(sheet, "A1", title)
	_ = f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	_ = f.SetCellValue(sheet, "A2", fmt.Sprintf("Generada el %s, hasta %s",
		route.AsOf.Format(models.DateLayout), route.Until.Format(models.DateLayout)))

	if err := f.SetSheetRow(sheet, "A4", &routeColumns); err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(routeColumns), 4)
	_ = f.SetCellStyle(sheet, "A4", last, headerStyle)

	row := 5
	for _, g := range route.Groups {
		for _, e := range g.Entries {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			values := routeRow(g, e)
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return nil, err
			}
			if g.Overdue {
				end, _ := excelize.CoordinatesToCellName(len(routeColumns), row)
				_ = f.SetCellStyle(sheet, cell, end, overdueStyle)
			}
			row++
		}
	}

	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row+1), "Total esperado")
	_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row+1), route.ExpectedTotal.InexactFloat64())
	_ = f.SetCellStyle(sheet, "F5", fmt.Sprintf("F%d", row+1), moneyStyle)
	_ = f.SetColWidth(sheet, "B", "D", 28)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RoutePDF writes the route as a printable sheet, one section per due date
func RoutePDF(route *lending.Route, title string) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Generada el %s - %d visitas - total esperado %s",
		route.AsOf.Format(models.DateLayout), route.TotalEntries, route.ExpectedTotal.StringFixed(2))))
	pdf.Ln(10)

	widths := []float64{70, 35, 70, 18, 28, 18, 28, 28}
	headers := []string{"Cliente", "Teléfono", "Dirección", "Cuota", "Valor", "Días", "Mora", "Deuda"}

	for _, g := range route.Groups {
		pdf.SetFont("Arial", "B", 11)
		label := g.Date.Format(models.DateLayout)
		if g.Overdue {
			label += " (vencidas)"
		}
		pdf.Cell(0, 8, tr(label))
		pdf.Ln(8)

		pdf.SetFont("Arial", "B", 9)
		for i, h := range headers {
			pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, e := range g.Entries {
			cells := []string{
				e.ClientName,
				e.ClientPhone,
				e.Address,
				fmt.Sprintf("%d", e.InstallmentNumber),
				e.InstallmentAmount.StringFixed(2),
				fmt.Sprintf("%d", e.ChargeableDays),
				e.LateFee.StringFixed(2),
				e.TotalDebt.StringFixed(2),
			}
			for i, c := range cells {
				align := "L"
				if i >= 3 {
					align = "R"
				}
				pdf.CellFormat(widths[i], 6, tr(c), "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write route pdf: %w", err)
	}
	return buf.Bytes(), nil
}
