package services

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"reverse-market/internal/models"
)

const exportSheet = "Requests"

var exportHeader = []interface{}{
	"ID", "العنوان", "المشتري", "الهاتف", "الفئة", "المدينة", "الحي", "الميزانية", "الحالة", "تاريخ الإنشاء", "تاريخ الاعتماد",
}

// ExportService renders request listings as spreadsheets
type ExportService struct {
	requests *RequestService
}

func NewExportService(requests *RequestService) *ExportService {
	return &ExportService{requests: requests}
}

// WriteRequests writes every request matching status to w as an XLSX workbook
func (s *ExportService) WriteRequests(ctx context.Context, status *models.RequestStatus, w io.Writer) (int, error) {
	requests, err := s.requests.All(ctx, status)
	if err != nil {
		return 0, fmt.Errorf("failed to load requests: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return 0, err
	}

	for i := range requests {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		row := exportRow(&requests[i])
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return 0, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return 0, err
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}
	return len(requests), nil
}

func exportRow(r *models.Request) []interface{} {
	buyer, phone := "", ""
	if r.User != nil {
		buyer = r.User.FullName()
		phone = r.User.PhoneNumber
	}
	budget := ""
	if r.MaxBudget.Valid {
		budget = r.MaxBudget.Decimal.StringFixed(2)
	}
	approved := ""
	if r.ApprovedAt != nil {
		approved = r.ApprovedAt.Format("2006-01-02 15:04")
	}
	return []interface{}{
		r.ID,
		r.Title,
		buyer,
		phone,
		r.CategoryPath(),
		r.City,
		r.District,
		budget,
		r.Status.String(),
		r.CreatedAt.Format("2006-01-02 15:04"),
		approved,
	}
}
