package service

import (
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/dto"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/importer"
)

func TestReportWorkbook(t *testing.T) {
	report := dto.NewImportReport()
	report.Failures = append(report.Failures, dto.ImportFailure{
		Row:       3,
		Attribute: "sede",
		Errors:    []string{"No se encontró 'Sur' en el catálogo de sedes"},
		Values:    map[string]string{importer.ColNombreCompleto: "Luis Perez", importer.ColSede: "Sur", "correo": "l@x.mx"},
	})
	report.Warnings = append(report.Warnings, dto.ImportWarning{Row: 4, Message: "Jefe inmediato 'Nadie' no encontrado"})

	buf, err := ReportWorkbook(report)
	if err != nil {
		t.Fatalf("ReportWorkbook 失败: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("打开生成的工作簿失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Errores")
	if err != nil {
		t.Fatalf("读取 Errores 失败: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Errores 期望 2 行，实际=%d", len(rows))
	}
	if rows[0][0] != "Fila" || rows[1][0] != "3" || rows[1][1] != "sede" {
		t.Errorf("Errores 内容错误: %v", rows)
	}
	// 规范列之后追加未知列
	if last := rows[0][len(rows[0])-1]; last != "correo" {
		t.Errorf("未知列应排在最后，实际=%s", last)
	}

	warn, _ := f.GetRows("Advertencias")
	if len(warn) != 2 || warn[1][0] != "4" {
		t.Errorf("Advertencias 内容错误: %v", warn)
	}
}

func TestExportBatchReport(t *testing.T) {
	imports, _ := setupTestImportService(t, nil)
	ctx := context.Background()
	report, _ := imports.ImportRows(ctx, nil, ImportOptions{FileName: "alta.xlsx"})

	svc := NewExportService(imports, zap.NewNop())
	buf, name, err := svc.ExportBatchReport(ctx, report.BatchID)
	if err != nil {
		t.Fatalf("ExportBatchReport 失败: %v", err)
	}
	if buf.Len() == 0 || name != "reporte_alta.xlsx" {
		t.Errorf("导出结果错误: len=%d name=%s", buf.Len(), name)
	}

	if _, _, err := svc.ExportBatchReport(ctx, "missing"); !errors.Is(err, ErrImportBatchNotFound) {
		t.Errorf("期望 ErrImportBatchNotFound，实际=%v", err)
	}
}
