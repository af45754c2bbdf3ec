package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/counselflow/counselflow-api/internal/models"
	"github.com/counselflow/counselflow-api/internal/policy"
	"github.com/counselflow/counselflow-api/internal/query"
	"github.com/counselflow/counselflow-api/internal/repository"
	"github.com/counselflow/counselflow-api/internal/validation"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Export is a rendered file ready to be served
type Export struct {
	Data        []byte
	Filename    string
	ContentType string
}

var exportColumns = []string{
	"ID", "Title", "Client", "Type", "Status", "Risk", "Priority",
	"Value", "Currency", "Start Date", "End Date", "Assigned Lawyer", "Tags",
}

type ExportService struct {
	repo repository.ContractRepository
	now  func() time.Time
}

func NewExportService(repo repository.ContractRepository) *ExportService {
	return &ExportService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// ExportContracts renders the contracts visible to caller under the list filters of q
func (s *ExportService) ExportContracts(ctx context.Context, caller policy.Caller, q *validation.ContractQuery, format string) (*Export, error) {
	var render func([]models.Contract) ([]byte, error)
	var contentType string
	switch strings.ToLower(format) {
	case FormatCSV, "":
		format, render, contentType = FormatCSV, s.renderCSV, "text/csv"
	case FormatXLSX:
		format, render, contentType = FormatXLSX, s.renderXLSX, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		format, render, contentType = FormatPDF, s.renderPDF, "application/pdf"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	contracts, err := s.repo.Find(ctx, query.ContractExport(caller, q))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contracts: %w", err)
	}

	data, err := render(contracts)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s export: %w", format, err)
	}

	return &Export{
		Data:        data,
		Filename:    fmt.Sprintf("contracts_%s.%s", s.now().Format("2006-01-02"), format),
		ContentType: contentType,
	}, nil
}

func exportRow(c *models.Contract) []string {
	value := ""
	if c.Value != nil {
		value = strconv.FormatFloat(*c.Value, 'f', 2, 64)
	}
	end := ""
	if c.EndDate != nil {
		end = c.EndDate.Format("2006-01-02")
	}
	return []string{
		c.ID,
		c.Title,
		c.Client.Name,
		c.Type,
		c.Status,
		c.RiskLevel,
		c.Priority,
		value,
		c.Currency,
		c.StartDate.Format("2006-01-02"),
		end,
		c.AssignedLawyer.FullName,
		strings.Join(c.Tags, "; "),
	}
}

func (s *ExportService) renderCSV(contracts []models.Contract) ([]byte, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	if err := writer.Write(exportColumns); err != nil {
		return nil, err
	}
	for i := range contracts {
		if err := writer.Write(exportRow(&contracts[i])); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	return buf.Bytes(), writer.Error()
}

func (s *ExportService) renderXLSX(contracts []models.Contract) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Contracts"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for col, title := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	_ = f.SetCellStyle(sheet, "A1", lastHeader, headerStyle)

	for i := range contracts {
		c := &contracts[i]
		row := exportRow(c)
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			// Keep value numeric so spreadsheets can sum it
			if col == 7 && c.Value != nil {
				_ = f.SetCellValue(sheet, cell, *c.Value)
				continue
			}
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ExportService) renderPDF(contracts []models.Contract) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Contracts")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 8, fmt.Sprintf("Generated %s - %d contracts", s.now().Format("2006-01-02 15:04 UTC"), len(contracts)))
	pdf.Ln(10)

	widths := []float64{70, 50, 38, 30, 20, 30, 22, 17}
	headers := []string{"Title", "Client", "Type", "Status", "Risk", "Value", "Start", "Currency"}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(224, 224, 224)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for i := range contracts {
		c := &contracts[i]
		value := "-"
		if c.Value != nil {
			value = strconv.FormatFloat(*c.Value, 'f', 2, 64)
		}
		cells := []string{
			clip(c.Title, 45), clip(c.Client.Name, 30), c.Type, c.Status,
			c.RiskLevel, value, c.StartDate.Format("2006-01-02"), c.Currency,
		}
		for j, v := range cells {
			pdf.CellFormat(widths[j], 6, tr(v), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
