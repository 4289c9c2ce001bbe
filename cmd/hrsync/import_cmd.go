package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/importer"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/service"
)

type importOptions struct {
	file       string
	reportXLSX string
	importedBy string
	strict     bool
}

func newImportCmd(root *rootOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "从 CSV / XLSX / XLS 文件导入人员主数据",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(opts.file) == "" {
				return withCode(exitUsage, fmt.Errorf("--file is required"))
			}

			a, err := bootstrap(root)
			if err != nil {
				return err
			}
			defer a.Close()

			return runImport(cmd.Context(), cmd.OutOrStdout(), a.svc.Import, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "待导入文件 (.csv/.xlsx/.xls)")
	cmd.Flags().StringVar(&opts.reportXLSX, "report-xlsx", "", "将失败与警告写入该 xlsx 文件")
	cmd.Flags().StringVar(&opts.importedBy, "imported-by", "", "记录到批次中的操作人 ID")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "存在失败行时以非零状态退出")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// runImport 执行导入并将报告以一行 JSON 输出到 out
func runImport(ctx context.Context, out io.Writer, svc service.ImportService, opts importOptions) error {
	var actor *string
	if v := strings.TrimSpace(opts.importedBy); v != "" {
		actor = &v
	}

	report, err := svc.ImportFile(ctx, opts.file, service.ImportOptions{ImportedBy: actor})
	if err != nil {
		var fe *importer.FormatError
		if errors.As(err, &fe) {
			return withCode(exitValidation, err)
		}
		return withCode(exitDB, err)
	}

	if opts.reportXLSX != "" {
		buf, err := service.ReportWorkbook(report)
		if err != nil {
			return fmt.Errorf("生成报告文件失败: %w", err)
		}
		if err := os.WriteFile(opts.reportXLSX, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("写入报告文件失败: %w", err)
		}
	}

	if err := writeJSONLine(out, report); err != nil {
		return err
	}

	if opts.strict && len(report.Failures) > 0 {
		return withCode(exitRowFailures, fmt.Errorf("%d 行导入失败", len(report.Failures)))
	}
	return nil
}
