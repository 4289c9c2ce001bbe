package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Row 一行导入数据
// Values 始终包含十一个规范列（缺失列为 ""），未知列以清洗后的表头为键原样保留
type Row struct {
	Number int
	Values map[string]string
}

// Get 读取列值，不存在时返回 ""
func (r Row) Get(key string) string { return r.Values[key] }

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile 按扩展名读取 .csv / .xlsx / .xls 文件
// 仅有表头或完全为空的文件返回零行；maxRows > 0 时数据行超限返回 FormatError
func ReadFile(path string, aliases *AliasTable, maxRows int) ([]Row, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = readCSV(path)
	case ".xlsx":
		records, err = readXLSX(path, aliases)
	case ".xls":
		records, err = readXLS(path, aliases)
	default:
		return nil, &FormatError{Path: filepath.Base(path), Reason: "仅支持 .csv / .xlsx / .xls", Err: ErrUnsupportedFormat}
	}
	if err != nil {
		return nil, &FormatError{Path: filepath.Base(path), Reason: "文件无法读取", Err: err}
	}

	rows := buildRows(records, aliases)
	if maxRows > 0 && len(rows) > maxRows {
		return nil, &FormatError{
			Path:   filepath.Base(path),
			Reason: fmt.Sprintf("数据行数 %d 超过上限 %d", len(rows), maxRows),
		}
	}
	return rows, nil
}

// buildRows 第一条记录为表头，其余为数据；全空行跳过但保留后续行号
func buildRows(records [][]string, aliases *AliasTable) []Row {
	if len(records) == 0 {
		return nil
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = aliases.Normalize(h)
	}

	var rows []Row
	for i, rec := range records[1:] {
		if isBlankRecord(rec) {
			continue
		}

		values := make(map[string]string, len(CanonicalKeys)+len(headers))
		for _, key := range CanonicalKeys {
			values[key] = ""
		}
		seen := make(map[string]bool, len(headers))
		for j, h := range headers {
			if h == "" || seen[h] {
				continue
			}
			seen[h] = true
			if j < len(rec) {
				values[h] = strings.TrimSpace(rec[j])
			} else {
				values[h] = ""
			}
		}

		rows = append(rows, Row{Number: i + 2, Values: values})
	}
	return rows
}

func isBlankRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ────────────────────── CSV ──────────────────────

func readCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err = decodeText(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("解析 CSV 失败: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// decodeText 去除 UTF-8 BOM；非 UTF-8 内容按 Windows-1252 解码（Excel 西语环境默认编码）
func decodeText(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("CSV 编码转换失败: %w", err)
	}
	return decoded, nil
}

// detectDelimiter 比较表头行中 ';' 与 ',' 的数量
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// dateColumn 返回表头中入职日期列的下标，不存在时返回 -1
func dateColumn(records [][]string, aliases *AliasTable) int {
	if len(records) == 0 {
		return -1
	}
	for i, h := range records[0] {
		if aliases.Normalize(h) == ColFechaIngreso {
			return i
		}
	}
	return -1
}

// convertSerialDates 将入职日期列中的数值单元格换算为日期文本
// isNumeric 判断第 row 行第 col 列是否为数值单元格（下标从 0 起）
func convertSerialDates(records [][]string, col int, isNumeric func(row, col int) bool) {
	if col < 0 {
		return
	}
	for i := 1; i < len(records); i++ {
		if col >= len(records[i]) || records[i][col] == "" || !isNumeric(i, col) {
			continue
		}
		if date, ok := serialToDate(records[i][col]); ok {
			records[i][col] = date
		}
	}
}

// ────────────────────── XLSX ──────────────────────

// readXLSX 读取第一个工作表；RawCellValue 保证日期单元格以序列号返回
// 只有数值类型的单元格才按序列号换算，文本单元格原样保留
func readXLSX(path string, aliases *AliasTable) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	sheet := sheets[0]
	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	convertSerialDates(records, dateColumn(records, aliases), func(row, col int) bool {
		cell, err := excelize.CoordinatesToCellName(col+1, row+1)
		if err != nil {
			return false
		}
		typ, err := f.GetCellType(sheet, cell)
		if err != nil {
			return false
		}
		return typ == excelize.CellTypeUnset || typ == excelize.CellTypeNumber
	})
	return records, nil
}

// ────────────────────── XLS ──────────────────────

// readXLS 读取第一个工作表
// 该格式的读取库不暴露单元格类型，入职日期列的数字仅凭序列号范围换算
func readXLS(path string, aliases *AliasTable) ([][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, nil
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	var records [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		rec := make([]string, 0, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			for len(rec) < c {
				rec = append(rec, "")
			}
			rec = append(rec, row.Col(c))
		}
		records = append(records, rec)
	}

	convertSerialDates(records, dateColumn(records, aliases), func(int, int) bool { return true })
	return records, nil
}
