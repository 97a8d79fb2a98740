package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pulseapi/internal/errors"
	"pulseapi/pkg/contracts/domain"
)

// rawTable is a parsed CSV file with a column index resolved against a schema.
type rawTable struct {
	schema  Schema
	path    string
	columns map[string]int
	rows    [][]string
}

// readTable opens and parses the CSV backing the given schema.
// The header is matched by column name, so extra columns and reordering are
// tolerated; missing required columns are not.
func readTable(dataDir string, schema Schema) (*rawTable, error) {
	path := filepath.Join(dataDir, schema.File)

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("dataset %s", schema.ID), err).
				WithContext("path", path)
		}
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open dataset %s", schema.ID), err).
			WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.NewSchemaError(fmt.Sprintf("dataset %s is empty", schema.ID), nil).
				WithContext("path", path)
		}
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read header of dataset %s", schema.ID), err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	for _, required := range schema.Columns {
		if _, ok := columns[required]; !ok {
			return nil, errors.NewSchemaError(
				fmt.Sprintf("dataset %s is missing required column %q", schema.ID, required), nil).
				WithContext("path", path).
				WithContext("header", strings.Join(header, ","))
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read rows of dataset %s", schema.ID), err)
	}

	return &rawTable{schema: schema, path: path, columns: columns, rows: rows}, nil
}

// field returns the trimmed cell value for a column in the given row.
func (t *rawTable) field(row []string, column string) string {
	idx := t.columns[column]
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// intField parses a non-negative integer cell.
func (t *rawTable) intField(row []string, line int, column string) (int64, error) {
	raw := strings.ReplaceAll(t.field(row, column), ",", "")
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, t.parseError(line, column, raw, err)
	}
	if v < 0 {
		return 0, t.parseError(line, column, raw, fmt.Errorf("value must be non-negative"))
	}
	return v, nil
}

// floatField parses a non-negative float cell.
func (t *rawTable) floatField(row []string, line int, column string) (float64, error) {
	raw := strings.ReplaceAll(t.field(row, column), ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, t.parseError(line, column, raw, err)
	}
	if v < 0 {
		return 0, t.parseError(line, column, raw, fmt.Errorf("value must be non-negative"))
	}
	return v, nil
}

// periodFields parses and bounds-checks the Year and Quarter cells.
func (t *rawTable) periodFields(row []string, line int) (int, int, error) {
	year, err := t.intField(row, line, colYear)
	if err != nil {
		return 0, 0, err
	}
	quarter, err := t.intField(row, line, colQuarter)
	if err != nil {
		return 0, 0, err
	}
	if year < 2000 || year > 2100 {
		return 0, 0, t.parseError(line, colYear, t.field(row, colYear), fmt.Errorf("year out of range"))
	}
	if quarter < 1 || quarter > 4 {
		return 0, 0, t.parseError(line, colQuarter, t.field(row, colQuarter), fmt.Errorf("quarter must be 1-4"))
	}
	return int(year), int(quarter), nil
}

func (t *rawTable) parseError(line int, column, value string, cause error) error {
	return errors.NewParsingError(
		fmt.Sprintf("dataset %s: bad value in column %q", t.schema.ID, column), cause).
		WithContext("line", line).
		WithContext("value", value)
}

// Per-dataset loaders. Line numbers in errors are 1-based and include the
// header row, matching what an editor shows.

func loadTransactions(dataDir string) ([]domain.TransactionRecord, error) {
	t, err := readTable(dataDir, schemas[domain.DatasetTransactions])
	if err != nil {
		return nil, err
	}

	records := make([]domain.TransactionRecord, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		year, quarter, err := t.periodFields(row, line)
		if err != nil {
			return nil, err
		}
		count, err := t.intField(row, line, colTxnCount)
		if err != nil {
			return nil, err
		}
		amount, err := t.floatField(row, line, colTxnAmount)
		if err != nil {
			return nil, err
		}
		records = append(records, domain.TransactionRecord{
			State:   t.field(row, colState),
			Year:    year,
			Quarter: quarter,
			Type:    t.field(row, colTransactionType),
			Count:   count,
			Amount:  amount,
		})
	}
	return records, nil
}

func loadUsers(dataDir string) ([]domain.UserRecord, error) {
	t, err := readTable(dataDir, schemas[domain.DatasetUsers])
	if err != nil {
		return nil, err
	}

	records := make([]domain.UserRecord, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		year, quarter, err := t.periodFields(row, line)
		if err != nil {
			return nil, err
		}
		users, err := t.intField(row, line, colRegisteredUsers)
		if err != nil {
			return nil, err
		}
		opens, err := t.intField(row, line, colAppOpens)
		if err != nil {
			return nil, err
		}
		records = append(records, domain.UserRecord{
			State:           t.field(row, colState),
			Year:            year,
			Quarter:         quarter,
			RegisteredUsers: users,
			AppOpens:        opens,
		})
	}
	return records, nil
}

func loadInsurance(dataDir string) ([]domain.InsuranceRecord, error) {
	t, err := readTable(dataDir, schemas[domain.DatasetInsurance])
	if err != nil {
		return nil, err
	}

	records := make([]domain.InsuranceRecord, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		year, quarter, err := t.periodFields(row, line)
		if err != nil {
			return nil, err
		}
		count, err := t.intField(row, line, colInsuranceCount)
		if err != nil {
			return nil, err
		}
		amount, err := t.floatField(row, line, colInsuranceAmount)
		if err != nil {
			return nil, err
		}
		records = append(records, domain.InsuranceRecord{
			State:   t.field(row, colState),
			Year:    year,
			Quarter: quarter,
			Type:    t.field(row, colInsuranceType),
			Count:   count,
			Amount:  amount,
		})
	}
	return records, nil
}

func loadMapTransactions(dataDir string) ([]domain.MapTransactionRecord, error) {
	t, err := readTable(dataDir, schemas[domain.DatasetMapTransactions])
	if err != nil {
		return nil, err
	}

	records := make([]domain.MapTransactionRecord, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		year, quarter, err := t.periodFields(row, line)
		if err != nil {
			return nil, err
		}
		count, err := t.intField(row, line, colTxnCount)
		if err != nil {
			return nil, err
		}
		amount, err := t.floatField(row, line, colTxnAmount)
		if err != nil {
			return nil, err
		}
		records = append(records, domain.MapTransactionRecord{
			State:    t.field(row, colState),
			Year:     year,
			Quarter:  quarter,
			District: t.field(row, colDistrict),
			Count:    count,
			Amount:   amount,
		})
	}
	return records, nil
}

func loadTopPerformers(dataDir string) ([]domain.TopPerformerRecord, error) {
	t, err := readTable(dataDir, schemas[domain.DatasetTopPerformers])
	if err != nil {
		return nil, err
	}

	records := make([]domain.TopPerformerRecord, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		year, quarter, err := t.periodFields(row, line)
		if err != nil {
			return nil, err
		}
		count, err := t.intField(row, line, colTxnCount)
		if err != nil {
			return nil, err
		}
		amount, err := t.floatField(row, line, colTxnAmount)
		if err != nil {
			return nil, err
		}
		records = append(records, domain.TopPerformerRecord{
			State:      t.field(row, colState),
			Year:       year,
			Quarter:    quarter,
			EntityType: t.field(row, colEntityType),
			Name:       t.field(row, colEntityName),
			Count:      count,
			Amount:     amount,
		})
	}
	return records, nil
}
