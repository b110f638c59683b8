package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"taskhive/internal/domain/task"
)

// Format names are the values accepted by the export endpoint.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

var columns = []string{
	"Title", "Description", "Category", "Status", "Priority", "Due Date", "Created At",
}

// Result is a rendered export ready to be written as an HTTP response.
type Result struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Export renders the tasks in the requested format. An unknown format is a
// caller error; rendering failures are upstream errors.
func Export(tasks []task.Task, format string) (*Result, error) {
	stamp := time.Now().Format("2006-01-02")
	switch format {
	case FormatCSV:
		data, err := renderCSV(tasks)
		if err != nil {
			return nil, err
		}
		return &Result{
			Data:        data,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("tasks-%s.csv", stamp),
		}, nil
	case FormatExcel:
		data, err := renderExcel(tasks)
		if err != nil {
			return nil, err
		}
		return &Result{
			Data:        data,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Filename:    fmt.Sprintf("tasks-%s.xlsx", stamp),
		}, nil
	case FormatPDF:
		data, err := renderPDF(tasks)
		if err != nil {
			return nil, err
		}
		return &Result{
			Data:        data,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("tasks-%s.pdf", stamp),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

func row(t *task.Task) []string {
	return []string{
		t.Title,
		t.Description,
		t.Category,
		string(t.Status),
		string(t.Priority),
		t.DueDate.Format("2006-01-02 15:04"),
		t.CreatedAt.Format("2006-01-02 15:04"),
	}
}

func renderCSV(tasks []task.Task) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columns); err != nil {
		return nil, err
	}
	for i := range tasks {
		if err := w.Write(row(&tasks[i])); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderExcel(tasks []task.Task) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Tasks"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, name := range columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, err
		}
	}
	for i := range tasks {
		for col, value := range row(&tasks[i]) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderPDF(tasks []task.Task) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.AddPage()

	widths := []float64{50, 70, 30, 25, 25, 35, 35}

	pdf.SetFont("Helvetica", "B", 9)
	for i, name := range columns {
		pdf.CellFormat(widths[i], 8, name, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for i := range tasks {
		for col, value := range row(&tasks[i]) {
			// Long text is clipped to the cell, not wrapped.
			pdf.CellFormat(widths[col], 8, value, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
