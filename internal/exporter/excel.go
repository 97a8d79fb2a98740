package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"pulseapi/internal/analytics"
	"pulseapi/internal/services"
)

// ExcelExporter writes dashboard views into an xlsx workbook.
type ExcelExporter struct {
	logger *slog.Logger
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(logger *slog.Logger) *ExcelExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelExporter{
		logger: logger.With(slog.String("component", "excel_exporter")),
	}
}

// Report bundles the views one workbook covers.
type Report struct {
	Summary      *services.SummaryStats
	Transactions *services.TransactionsResult
	Users        *services.UsersResult
	Insurance    *services.InsuranceResult
}

// Write renders the report into w as an xlsx workbook with one sheet per
// dashboard page.
func (e *ExcelExporter) Write(w io.Writer, report *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}

	if err := e.writeSummary(f, summarySheet, report.Summary); err != nil {
		return err
	}
	if report.Transactions != nil {
		if err := e.writeTransactions(f, report.Transactions); err != nil {
			return err
		}
	}
	if report.Users != nil {
		if err := e.writeUsers(f, report.Users); err != nil {
			return err
		}
	}
	if report.Insurance != nil {
		if err := e.writeInsurance(f, report.Insurance); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (e *ExcelExporter) writeSummary(f *excelize.File, sheet string, s *services.SummaryStats) error {
	if s == nil {
		return nil
	}

	rows := [][]interface{}{
		{"Metric", "Value", "Formatted"},
		{"Total Transactions", s.TotalTransactions, s.Formatted["total_transactions"]},
		{"Total Transaction Amount", s.TotalTransactionAmount, s.Formatted["total_transaction_amount"]},
		{"Registered Users", s.TotalRegisteredUsers, s.Formatted["total_registered_users"]},
		{"App Opens", s.TotalAppOpens, s.Formatted["total_app_opens"]},
		{"Insurance Policies", s.TotalInsuranceCount, s.Formatted["total_insurance_count"]},
		{"Insurance Amount", s.TotalInsuranceAmount, s.Formatted["total_insurance_amount"]},
		{"States Covered", s.StatesCovered, ""},
		{"Years Covered", s.YearsCovered, ""},
	}
	return writeRows(f, sheet, rows)
}

func (e *ExcelExporter) writeTransactions(f *excelize.File, t *services.TransactionsResult) error {
	const sheet = "Transactions"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{{"State", "Count", "Amount"}}
	for _, st := range t.ByState {
		rows = append(rows, []interface{}{st.State, st.Count, st.Amount})
	}
	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Type", "Count", "Amount"})
	for _, tt := range t.ByType {
		rows = append(rows, []interface{}{tt.Type, tt.Count, tt.Amount})
	}
	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Quarter", "Count", "Amount", "QoQ Growth %"})
	for i, pt := range t.ByPeriod {
		rows = append(rows, []interface{}{pt.Label, pt.Count, pt.Amount, percentCell(t.Growth, i)})
	}
	return writeRows(f, sheet, rows)
}

func (e *ExcelExporter) writeUsers(f *excelize.File, u *services.UsersResult) error {
	const sheet = "Users"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{{"State", "Registered Users", "App Opens", "Opens Per User"}}
	for _, st := range u.ByState {
		rows = append(rows, []interface{}{st.State, st.RegisteredUsers, st.AppOpens, ratioCell(st.OpensPerUser)})
	}
	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Quarter", "Registered Users", "App Opens"})
	for _, pt := range u.ByPeriod {
		rows = append(rows, []interface{}{pt.Label, pt.RegisteredUsers, pt.AppOpens})
	}
	return writeRows(f, sheet, rows)
}

func (e *ExcelExporter) writeInsurance(f *excelize.File, i *services.InsuranceResult) error {
	const sheet = "Insurance"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{{"State", "Policies", "Amount"}}
	for _, st := range i.ByState {
		rows = append(rows, []interface{}{st.State, st.Count, st.Amount})
	}
	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"State", "Policies", "Registered Users", "Penetration %"})
	for _, p := range i.Penetration {
		rows = append(rows, []interface{}{p.State, p.InsuranceCount, p.RegisteredUsers, percentValue(p.Penetration)})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name for row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d on %s: %w", i+1, sheet, err)
		}
	}
	return nil
}

// percentCell renders a growth series value, blank when undefined.
func percentCell(series []analytics.GrowthPoint, i int) interface{} {
	if i >= len(series) {
		return ""
	}
	return percentValue(series[i].Growth)
}

func percentValue(p analytics.Percent) interface{} {
	if !p.IsDefined() {
		return ""
	}
	return float64(p)
}

func ratioCell(r analytics.Ratio) interface{} {
	if !r.IsDefined() {
		return ""
	}
	return float64(r)
}
