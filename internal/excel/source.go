package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/atanko123/Scripts/internal/logger"
	"github.com/atanko123/Scripts/internal/model"
	"github.com/atanko123/Scripts/pkg/errors"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Source streams the first sheet of a workbook one row at a time. It is
// single pass; open it again to re-read.
type Source struct {
	path     string
	skipRows int
	parser   RowParser
	file     *excelize.File
	rows     *excelize.Rows
	rowNum   int
	invalid  int
	log      zerolog.Logger
}

func Open(path string, mode model.Mode, skipRows int) (*Source, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewInputFormatError(path, "failed to open workbook", err)
	}

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		file.Close()
		return nil, errors.NewInputFormatError(path, "workbook has no sheets", errors.ErrInvalidFileFormat)
	}

	parser := NewRowParser(mode)
	if err := checkWidth(path, file, sheets[0], skipRows, parser.Columns(), parser.MinColumns()); err != nil {
		file.Close()
		return nil, err
	}

	rows, err := file.Rows(sheets[0])
	if err != nil {
		file.Close()
		return nil, errors.NewInputFormatError(path, "failed to read sheet "+sheets[0], err)
	}

	return &Source{
		path:     path,
		skipRows: skipRows,
		parser:   parser,
		file:     file,
		rows:     rows,
		log:      logger.Get().With().Str("input", path).Logger(),
	}, nil
}

// checkWidth makes one pass over the sheet and fails when no data row
// reaches the columns the mode cannot do without. The reader drops trailing
// empty cells, so a column blank in every row looks absent; only the
// leading minColumns are checked and the rest read as empty strings.
func checkWidth(path string, file *excelize.File, sheet string, skipRows int, columns []string, minColumns int) error {
	rows, err := file.Rows(sheet)
	if err != nil {
		return errors.NewInputFormatError(path, "failed to read sheet "+sheet, err)
	}
	defer rows.Close()

	rowNum, widest, dataRows := 0, 0, 0
	for rows.Next() {
		rowNum++
		cells, err := rows.Columns()
		if err != nil {
			return errors.NewInputFormatError(path, fmt.Sprintf("failed to read row %d", rowNum), err)
		}
		if rowNum <= skipRows || isBlank(cells) {
			continue
		}
		dataRows++
		if len(cells) > widest {
			widest = len(cells)
		}
	}
	if err := rows.Error(); err != nil {
		return errors.NewInputFormatError(path, "failed to iterate rows", err)
	}

	if dataRows > 0 && widest < minColumns {
		return errors.NewInputFormatError(path,
			fmt.Sprintf("%s: %s", errors.ErrMissingColumn, columns[widest]), errors.ErrMissingColumn)
	}
	return nil
}

// Next returns the next valid row or io.EOF at the end of the sheet. Rows
// with empty required fields are logged, counted and skipped.
func (s *Source) Next() (model.Row, error) {
	for s.rows.Next() {
		s.rowNum++

		cells, err := s.rows.Columns()
		if err != nil {
			return nil, errors.NewInputFormatError(s.path, fmt.Sprintf("failed to read row %d", s.rowNum), err)
		}
		if s.rowNum <= s.skipRows || isBlank(cells) {
			continue
		}

		row, err := s.parser.Parse(cells, s.rowNum)
		if err != nil {
			s.invalid++
			s.log.Warn().Err(err).Int("row", s.rowNum).Str("status", string(model.RowStatusInvalid)).Msg("Skipping invalid row")
			continue
		}
		return row, nil
	}

	if err := s.rows.Error(); err != nil {
		return nil, errors.NewInputFormatError(s.path, "failed to iterate rows", err)
	}
	return nil, io.EOF
}

// Invalid is the number of rows skipped for missing required fields.
func (s *Source) Invalid() int {
	return s.invalid
}

func (s *Source) Close() error {
	if err := s.rows.Close(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
