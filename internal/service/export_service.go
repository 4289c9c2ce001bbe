package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/dto"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/importer"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportService 导入报告导出
//
// 设计说明：
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - Excel 格式：Sheet "Errores" 列出失败行及原始值，Sheet "Advertencias" 列出警告
type ExportService interface {
	// ExportBatchReport 导出指定批次的报告
	ExportBatchReport(ctx context.Context, batchID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	imports ImportService
	logger  *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(imports ImportService, logger *zap.Logger) ExportService {
	return &exportService{imports: imports, logger: logger}
}

func (s *exportService) ExportBatchReport(ctx context.Context, batchID string) (*bytes.Buffer, string, error) {
	detail, err := s.imports.GetBatch(ctx, batchID)
	if err != nil {
		return nil, "", err
	}

	buf, err := ReportWorkbook(detail.Report)
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("batch_id", batchID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	name := strings.TrimSuffix(detail.FileName, filepath.Ext(detail.FileName))
	return buf, fmt.Sprintf("reporte_%s.xlsx", name), nil
}

// ═══════════════════════════════════════════════════════════
// ReportWorkbook 报告转 Excel
// ═══════════════════════════════════════════════════════════
//
// Errores:      | Fila | Atributo | Errores | <规范列...> | <其他列...> |
// Advertencias: | Fila | Mensaje |

const (
	sheetErrors   = "Errores"
	sheetWarnings = "Advertencias"
)

// ReportWorkbook 生成报告工作簿
func ReportWorkbook(report *dto.ImportReport) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetErrors); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetWarnings); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#F4B084"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	// ── Errores ──
	valueCols := failureColumns(report.Failures)
	header := []interface{}{"Fila", "Atributo", "Errores"}
	for _, c := range valueCols {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheetErrors, "A1", &header); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetErrors, "A1", cell(colName(len(header)-1), 1), headerStyle); err != nil {
		return nil, err
	}

	for i, fail := range report.Failures {
		line := []interface{}{fail.Row, fail.Attribute, strings.Join(fail.Errors, "; ")}
		for _, c := range valueCols {
			line = append(line, fail.Values[c])
		}
		if err := f.SetSheetRow(sheetErrors, cell("A", i+2), &line); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(sheetErrors, "A", "A", 8)
	_ = f.SetColWidth(sheetErrors, "B", "B", 18)
	_ = f.SetColWidth(sheetErrors, "C", "C", 50)

	// ── Advertencias ──
	if err := f.SetSheetRow(sheetWarnings, "A1", &[]interface{}{"Fila", "Mensaje"}); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetWarnings, "A1", "B1", headerStyle); err != nil {
		return nil, err
	}
	for i, w := range report.Warnings {
		if err := f.SetSheetRow(sheetWarnings, cell("A", i+2), &[]interface{}{w.Row, w.Message}); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(sheetWarnings, "A", "A", 8)
	_ = f.SetColWidth(sheetWarnings, "B", "B", 70)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// failureColumns 规范列在前，其余未知列按字母序追加
func failureColumns(failures []dto.ImportFailure) []string {
	cols := append([]string{}, importer.CanonicalKeys...)
	known := make(map[string]bool, len(cols))
	for _, c := range cols {
		known[c] = true
	}

	var extra []string
	for _, fail := range failures {
		for k := range fail.Values {
			if !known[k] {
				known[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
