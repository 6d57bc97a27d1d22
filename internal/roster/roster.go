package roster

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"receipt-mailer/internal/model"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const defaultPaymentMethod = "Mobile Money"

type fieldSpec struct {
	canonical string
	aliases   []string
}

// requiredFields maps canonical fields to accepted header aliases.
// Order matters: it fixes alias precedence and the order of fields in
// the missing-columns error.
var requiredFields = []fieldSpec{
	{"name", []string{"name", "full name", "student name", "student"}},
	{"email", []string{"email", "email address"}},
	{"amount", []string{"amount", "amount paid", "contribution", "paid"}},
	{"date", []string{"date", "payment date", "paid on", "received on"}},
	{"payment_method", []string{"payment method", "payment mode", "mode", "channel"}},
}

// textDateLayouts is tried when a date cell holds text instead of an
// Excel serial.
var textDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

var amountPrinter = message.NewPrinter(language.English)

// Load reads the first sheet of the workbook and returns the normalized
// roster. Header resolution or a row missing name/email fails the whole
// load; all-blank rows are skipped but still consume their row number.
func Load(path, currency string) ([]model.StudentPayment, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	var students []model.StudentPayment
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based sheet row
		if blankRow(row) {
			continue
		}
		name := strings.TrimSpace(cellAt(row, columns["name"]))
		email := strings.TrimSpace(cellAt(row, columns["email"]))
		if name == "" || email == "" {
			return nil, fmt.Errorf("missing name or email in row %d", rowNum)
		}
		method := strings.TrimSpace(cellAt(row, columns["payment_method"]))
		if method == "" {
			method = defaultPaymentMethod
		}
		amount, amountValue := formatAmount(cellAt(row, columns["amount"]), currency)
		students = append(students, model.StudentPayment{
			Name:          name,
			Email:         email,
			Amount:        amount,
			AmountValue:   amountValue,
			Date:          formatDate(cellAt(row, columns["date"])),
			PaymentMethod: method,
			ReceiptNumber: fmt.Sprintf("R-%04d", rowNum),
		})
	}
	return students, nil
}

// mapColumns resolves loose header names to canonical field -> column
// index. Matching is case-insensitive and whitespace-trimmed; the first
// alias present wins per field.
func mapColumns(headers []string) (map[string]int, error) {
	byName := make(map[string]int, len(headers))
	for idx, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, ok := byName[key]; !ok {
			byName[key] = idx
		}
	}

	columns := make(map[string]int, len(requiredFields))
	var missing []string
	for _, field := range requiredFields {
		found := false
		for _, alias := range field.aliases {
			if idx, ok := byName[alias]; ok {
				columns[field.canonical] = idx
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, field.canonical)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

// formatAmount renders a numeric cell as a thousands-grouped integer
// with the currency code appended ("1,500 RWF"). Non-numeric values keep
// their raw form with the currency appended.
func formatAmount(raw, currency string) (string, *float64) {
	raw = strings.TrimSpace(raw)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return strings.TrimSpace(raw + " " + currency), nil
	}
	display := amountPrinter.Sprintf("%d", int64(math.Round(value))) + " " + currency
	return display, &value
}

// formatDate renders an Excel serial date as "02 January 2006". Text
// cells are tried against a few common layouts and otherwise returned
// unchanged.
func formatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format("02 January 2006")
		}
	}
	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("02 January 2006")
		}
	}
	return raw
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
