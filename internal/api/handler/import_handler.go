package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/api/middleware"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/dto"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/importer"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/service"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/pkg/response"
)

var allowedImportExt = map[string]bool{".csv": true, ".xlsx": true, ".xls": true}

// ImportHandler 人员导入 HTTP 处理器
type ImportHandler struct {
	importSvc service.ImportService
	uploadDir string
}

// NewImportHandler 创建 ImportHandler
func NewImportHandler(importSvc service.ImportService, uploadDir string) *ImportHandler {
	return &ImportHandler{importSvc: importSvc, uploadDir: uploadDir}
}

// Upload 上传并同步导入人员文件
// POST /api/v1/imports  (multipart/form-data, 字段 file)
func (h *ImportHandler) Upload(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "上传文件过大")
			return
		}
		response.BadRequest(c, 17001, "缺少上传文件 file")
		return
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImportExt[ext] {
		response.BadRequest(c, 17002, "仅支持 .csv / .xlsx / .xls 文件")
		return
	}

	// 保留扩展名，读取器按扩展名选择解析方式
	tmp, err := os.CreateTemp(h.uploadDir, "import-*"+ext)
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(fh, tmpPath); err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	fileName := filepath.Base(fh.Filename)
	middleware.SetImportSummary(c, middleware.ImportSummary{File: fileName})

	report, err := h.importSvc.ImportFile(c.Request.Context(), tmpPath, service.ImportOptions{
		FileName:   fileName,
		ImportedBy: &userID,
	})
	if err != nil {
		var fe *importer.FormatError
		if errors.As(err, &fe) {
			response.UnprocessableEntity(c, 17003, "文件无法解析", fe.Reason)
			return
		}
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	middleware.SetImportSummary(c, middleware.ImportSummary{
		File:      fileName,
		BatchID:   report.BatchID,
		Processed: report.Processed,
		Failed:    len(report.Failures),
	})
	response.OK(c, report)
}

// ListBatches 导入批次列表
// GET /api/v1/imports?page=1&page_size=20
func (h *ImportHandler) ListBatches(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败: "+err.Error())
		return
	}

	list, total, err := h.importSvc.ListBatches(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetBatch 导入批次详情（含完整报告）
// GET /api/v1/imports/:id
func (h *ImportHandler) GetBatch(c *gin.Context) {
	detail, err := h.importSvc.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrImportBatchNotFound) {
			response.NotFound(c, 17004, "导入批次不存在")
			return
		}
		_ = c.Error(err)
		response.InternalError(c)
		return
	}
	response.OK(c, detail)
}
