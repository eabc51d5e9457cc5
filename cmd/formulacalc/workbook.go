package main

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/vogtb/go-spreadsheet/packages/formula"
)

// workbookFile is the YAML layout accepted by -workbook:
//
//	sheets:
//	  - name: Sheet1
//	    rows: 100
//	    cols: 10
//	    cells:
//	      A1: 10
//	      A2: hello
//	      A3: true
//	      A4: "#N/A"
type workbookFile struct {
	Sheets []sheetFile `yaml:"sheets"`
}

type sheetFile struct {
	Name  string         `yaml:"name"`
	Rows  uint32         `yaml:"rows,omitempty"`
	Cols  uint32         `yaml:"cols,omitempty"`
	Cells map[string]any `yaml:"cells,omitempty"`
}

// loadWorkbook reads the workbook at path, or creates a workbook with one
// empty Sheet1 when path is empty
func loadWorkbook(path string) (*formula.Workbook, error) {
	if path == "" {
		wb := formula.NewWorkbook()
		if _, err := wb.AddWorksheet("Sheet1", 0, 0); err != nil {
			return nil, err
		}
		return wb, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}
	wb, err := parseWorkbook(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return wb, nil
}

func parseWorkbook(data []byte) (*formula.Workbook, error) {
	var file workbookFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	wb := formula.NewWorkbook()
	for _, sf := range file.Sheets {
		ws, err := wb.AddWorksheet(sf.Name, sf.Rows, sf.Cols)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sf.Name, err)
		}
		// sorted so the first bad cell reported is stable
		for _, address := range slices.Sorted(maps.Keys(sf.Cells)) {
			row, col, ok := formula.ParseCellAddress(address)
			if !ok {
				return nil, fmt.Errorf("sheet %q: invalid cell address %q", sf.Name, address)
			}
			v, err := cellValue(sf.Cells[address])
			if err != nil {
				return nil, fmt.Errorf("sheet %q cell %s: %w", sf.Name, address, err)
			}
			if err := ws.Set(row, col, v); err != nil {
				return nil, fmt.Errorf("sheet %q: %w", sf.Name, err)
			}
		}
	}
	return wb, nil
}

// cellValue converts a decoded YAML scalar into a cell value. strings that
// spell an error code are stored as that error.
func cellValue(raw any) (formula.Value, error) {
	switch v := raw.(type) {
	case string:
		if code, ok := formula.ParseErrorCode(v); ok {
			return formula.NewSpreadsheetError(code), nil
		}
		return formula.Text(v), nil
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, fmt.Errorf("%v is not a finite number", v)
		}
		return formula.Number(v), nil
	case nil, bool, int:
		return formula.FromPrimitive(v), nil
	default:
		return nil, fmt.Errorf("unsupported value %v (%T)", raw, raw)
	}
}
