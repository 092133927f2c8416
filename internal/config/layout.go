package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/SAP-F-2025/exam-session-client/internal/errors"
	"github.com/SAP-F-2025/exam-session-client/internal/models"
	"github.com/SAP-F-2025/exam-session-client/internal/validator"
	"github.com/xuri/excelize/v2"
)

// LoadLayout resolves the EXAM_LAYOUT setting: the name of a built-in layout,
// or a path to a .json or .xlsx file describing the part ranges.
func LoadLayout(source string, v *validator.Validator) (*models.ExamLayout, error) {
	var (
		layout *models.ExamLayout
		err    error
	)

	switch strings.ToLower(filepath.Ext(source)) {
	case "":
		layout, err = builtinLayout(source)
	case ".json":
		layout, err = loadJSONLayout(source)
	case ".xlsx":
		layout, err = loadExcelLayout(source)
	default:
		err = fmt.Errorf("unsupported layout file %q", source)
	}
	if err != nil {
		return nil, err
	}

	if err := v.ValidateStruct(layout); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}
	if err := layout.CheckContiguous(); err != nil {
		return nil, fmt.Errorf("layout %s: %w", layout.Name, err)
	}
	return layout, nil
}

func builtinLayout(name string) (*models.ExamLayout, error) {
	switch name {
	case "toeic":
		return models.TOEICLayout(), nil
	default:
		return nil, fmt.Errorf("unknown built-in layout %q", name)
	}
}

func loadJSONLayout(path string) (*models.ExamLayout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	var layout models.ExamLayout
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	if layout.Name == "" {
		layout.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &layout, nil
}

func loadExcelLayout(path string) (*models.ExamLayout, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	return ParseExcelLayout(f, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// ParseExcelLayout reads the first sheet of f. The header row must name the
// columns part, start, end and name; listening is optional.
func ParseExcelLayout(f *excelize.File, name string) (*models.ExamLayout, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, apperrors.NewValidationError("file", "Excel must have header row and at least one data row", len(rows))
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range []string{"part", "start", "end", "name"} {
		if _, ok := headerMap[col]; !ok {
			return nil, apperrors.NewValidationError("header", "missing column "+col, rows[0])
		}
	}

	layout := &models.ExamLayout{Name: name}
	for rowIndex, row := range rows[1:] {
		cell := func(col string) string {
			i, ok := headerMap[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if cell("part") == "" {
			continue
		}

		var p models.PartRange
		for _, num := range []struct {
			col string
			dst *int
		}{{"part", &p.Part}, {"start", &p.Start}, {"end", &p.End}} {
			n, err := strconv.Atoi(cell(num.col))
			if err != nil {
				return nil, apperrors.NewValidationError(num.col, fmt.Sprintf("row %d: not a number", rowIndex+2), cell(num.col))
			}
			*num.dst = n
		}
		p.Name = cell("name")
		if v := cell("listening"); v != "" {
			p.Listening, _ = strconv.ParseBool(v)
		}

		layout.Parts = append(layout.Parts, p)
		if p.End > layout.TotalQuestions {
			layout.TotalQuestions = p.End
		}
	}
	return layout, nil
}
