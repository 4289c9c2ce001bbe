package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/api/middleware"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/dto"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/importer"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/model"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/service"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock ImportService ──

type mockImportService struct {
	fileResult  *dto.ImportReport
	fileErr     error
	gotPath     string
	gotContent  []byte
	gotOpts     service.ImportOptions
	listResult  []dto.ImportBatchResponse
	listTotal   int64
	listErr     error
	batchResult *dto.ImportBatchDetailResponse
	batchErr    error
}

func (m *mockImportService) ImportFile(_ context.Context, path string, opts service.ImportOptions) (*dto.ImportReport, error) {
	m.gotPath = path
	m.gotContent, _ = os.ReadFile(path)
	m.gotOpts = opts
	return m.fileResult, m.fileErr
}
func (m *mockImportService) ImportRows(_ context.Context, _ []importer.Row, _ service.ImportOptions) (*dto.ImportReport, error) {
	return m.fileResult, m.fileErr
}
func (m *mockImportService) ListBatches(_ context.Context, _ *dto.PaginationRequest) ([]dto.ImportBatchResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockImportService) GetBatch(_ context.Context, _ string) (*dto.ImportBatchDetailResponse, error) {
	return m.batchResult, m.batchErr
}

// ── Mock ScheduleAssignmentService ──

type mockAssignService struct {
	assignResult  *model.ScheduleAssignment
	assignChanged bool
	assignErr     error
	gotRef        model.AssignableRef
	gotDate       time.Time
	gotActor      *string
	activeResult  *model.ScheduleAssignment
	activeErr     error
	historyResult []model.ScheduleAssignment
}

func (m *mockAssignService) Assign(_ context.Context, ref model.AssignableRef, _ string, date time.Time, actor *string) (*model.ScheduleAssignment, bool, error) {
	m.gotRef, m.gotDate, m.gotActor = ref, date, actor
	return m.assignResult, m.assignChanged, m.assignErr
}
func (m *mockAssignService) ActiveAt(_ context.Context, ref model.AssignableRef, date time.Time) (*model.ScheduleAssignment, error) {
	m.gotRef, m.gotDate = ref, date
	return m.activeResult, m.activeErr
}
func (m *mockAssignService) History(_ context.Context, ref model.AssignableRef) ([]model.ScheduleAssignment, error) {
	m.gotRef = ref
	return m.historyResult, nil
}

// ── Mock ExportService ──

type mockExportService struct {
	buf  *bytes.Buffer
	name string
	err  error
}

func (m *mockExportService) ExportBatchReport(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.name, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "admin")
}

func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		setAuth(c)
		c.Next()
	})
	return r
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func multipartFile(t *testing.T, field, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("创建表单文件失败: %v", err)
		}
		fw.Write(content)
	}
	mw.Close()
	return body, mw.FormDataContentType()
}

// ═══════════════════════════════════════════════════════════
// ImportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestImportHandler_Upload_Success(t *testing.T) {
	mock := &mockImportService{fileResult: &dto.ImportReport{Processed: 2, Created: 2}}
	h := NewImportHandler(mock, t.TempDir())

	body, ct := multipartFile(t, "file", "Personal.XLSX", []byte("fake"))
	req := httptest.NewRequest("POST", "/imports", body)
	req.Header.Set("Content-Type", ct)

	w := httptest.NewRecorder()
	r := newRouter()
	r.POST("/imports", h.Upload)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if mock.gotOpts.FileName != "Personal.XLSX" {
		t.Errorf("文件名应为原始名称，实际=%s", mock.gotOpts.FileName)
	}
	if mock.gotOpts.ImportedBy == nil || *mock.gotOpts.ImportedBy != "test-user-id" {
		t.Error("应记录操作人")
	}
	if string(mock.gotContent) != "fake" {
		t.Errorf("上传内容未落盘: %q", mock.gotContent)
	}
	if _, err := os.Stat(mock.gotPath); !os.IsNotExist(err) {
		t.Error("临时文件应在请求结束后删除")
	}
}

func TestImportHandler_Upload_AccessLogCarriesBatch(t *testing.T) {
	mock := &mockImportService{fileResult: &dto.ImportReport{
		BatchID:   "batch-001",
		Processed: 2,
		Failures:  []dto.ImportFailure{{Row: 4, Attribute: "sede"}},
	}}
	h := NewImportHandler(mock, t.TempDir())

	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(middleware.Logger(zap.New(core)))
	r.Use(func(c *gin.Context) {
		setAuth(c)
		c.Next()
	})
	r.POST("/imports", h.Upload)

	body, ct := multipartFile(t, "file", "alta.csv", []byte("x"))
	req := httptest.NewRequest("POST", "/imports", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if logs.Len() != 1 {
		t.Fatalf("期望 1 条访问日志，实际=%d", logs.Len())
	}
	fields := logs.All()[0].ContextMap()
	if fields["import_file"] != "alta.csv" || fields["batch_id"] != "batch-001" {
		t.Errorf("访问日志缺少导入信息: %v", fields)
	}
	if fields["rows_processed"] != int64(2) || fields["rows_failed"] != int64(1) {
		t.Errorf("行数统计错误: %v", fields)
	}
}

func TestImportHandler_Upload_MissingFile(t *testing.T) {
	h := NewImportHandler(&mockImportService{}, t.TempDir())
	body, ct := multipartFile(t, "", "", nil)
	req := httptest.NewRequest("POST", "/imports", body)
	req.Header.Set("Content-Type", ct)

	w := httptest.NewRecorder()
	r := newRouter()
	r.POST("/imports", h.Upload)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest || parseResponse(w).Code != 17001 {
		t.Errorf("expected 400/17001, got %d/%d", w.Code, parseResponse(w).Code)
	}
}

func TestImportHandler_Upload_BadExtension(t *testing.T) {
	mock := &mockImportService{}
	h := NewImportHandler(mock, t.TempDir())
	body, ct := multipartFile(t, "file", "personal.pdf", []byte("x"))
	req := httptest.NewRequest("POST", "/imports", body)
	req.Header.Set("Content-Type", ct)

	w := httptest.NewRecorder()
	r := newRouter()
	r.POST("/imports", h.Upload)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest || parseResponse(w).Code != 17002 {
		t.Errorf("expected 400/17002, got %d", w.Code)
	}
	if mock.gotPath != "" {
		t.Error("不支持的扩展名不应调用服务")
	}
}

func TestImportHandler_Upload_FormatError(t *testing.T) {
	mock := &mockImportService{fileErr: &importer.FormatError{Path: "a.csv", Reason: "文件无法读取"}}
	h := NewImportHandler(mock, t.TempDir())
	body, ct := multipartFile(t, "file", "a.csv", []byte("x"))
	req := httptest.NewRequest("POST", "/imports", body)
	req.Header.Set("Content-Type", ct)

	w := httptest.NewRecorder()
	r := newRouter()
	r.POST("/imports", h.Upload)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 17003 || resp.Details == "" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestImportHandler_ListBatches(t *testing.T) {
	mock := &mockImportService{
		listResult: []dto.ImportBatchResponse{{ID: "b1", FileName: "a.csv"}},
		listTotal:  21,
	}
	h := NewImportHandler(mock, "")

	w := httptest.NewRecorder()
	r := newRouter()
	r.GET("/imports", h.ListBatches)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/imports?page=2&page_size=10", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.Pagination.TotalPages != 3 || resp.Data.Pagination.Page != 2 {
		t.Errorf("分页信息错误: %+v", resp.Data.Pagination)
	}
}

func TestImportHandler_GetBatch_NotFound(t *testing.T) {
	h := NewImportHandler(&mockImportService{batchErr: service.ErrImportBatchNotFound}, "")

	w := httptest.NewRecorder()
	r := newRouter()
	r.GET("/imports/:id", h.GetBatch)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/imports/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportBatchReport(t *testing.T) {
	h := NewExportHandler(&mockExportService{buf: bytes.NewBufferString("xlsx"), name: "reporte_alta.xlsx"})

	w := httptest.NewRecorder()
	r := newRouter()
	r.GET("/imports/:id/report.xlsx", h.ExportBatchReport)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/imports/b1/report.xlsx", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename*=UTF-8''reporte_alta.xlsx" {
		t.Errorf("Content-Disposition 错误: %s", got)
	}
	if w.Body.String() != "xlsx" {
		t.Error("响应体错误")
	}
}

func TestExportHandler_NotFound(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrImportBatchNotFound})

	w := httptest.NewRecorder()
	r := newRouter()
	r.GET("/imports/:id/report.xlsx", h.ExportBatchReport)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/imports/x/report.xlsx", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ScheduleAssignmentHandler Tests
// ═══════════════════════════════════════════════════════════

const (
	testUUID1 = "6f1c2b1e-5b7a-4e8e-9a57-0a1f2d3c4b5a"
	testUUID2 = "0b7e6c1d-2a3f-4b5c-8d9e-1f2a3b4c5d6e"
)

func TestAssignHandler_Assign_Created(t *testing.T) {
	until := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	mock := &mockAssignService{
		assignResult: &model.ScheduleAssignment{
			AssignmentID: "a1", ScheduleID: testUUID2, AssignableType: model.AssignableArea, AssignableID: testUUID1,
			ValidFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), ValidUntil: &until,
		},
		assignChanged: true,
	}
	h := NewScheduleAssignmentHandler(mock, time.UTC)

	req := httptest.NewRequest("POST", "/schedule-assignments", jsonBody(dto.AssignScheduleRequest{
		AssignableType: "area", AssignableID: testUUID1, ScheduleID: testUUID2, EffectiveDate: "2025-01-01",
	}))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r := newRouter()
	r.POST("/schedule-assignments", h.Assign)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if mock.gotRef.Kind != model.AssignableArea || mock.gotRef.ID != testUUID1 {
		t.Errorf("分配对象错误: %+v", mock.gotRef)
	}
	if mock.gotDate.Format(dateLayout) != "2025-01-01" {
		t.Errorf("生效日期错误: %s", mock.gotDate)
	}

	var resp struct {
		Data dto.AssignScheduleResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.Assignment.ValidUntil == nil || *resp.Data.Assignment.ValidUntil != "2025-02-28" {
		t.Errorf("valid_until 错误: %+v", resp.Data.Assignment)
	}
}

func TestAssignHandler_Assign_Noop(t *testing.T) {
	mock := &mockAssignService{
		assignResult: &model.ScheduleAssignment{AssignmentID: "a1", ValidFrom: time.Now()},
	}
	h := NewScheduleAssignmentHandler(mock, time.UTC)

	req := httptest.NewRequest("POST", "/schedule-assignments", jsonBody(dto.AssignScheduleRequest{
		AssignableType: "user", AssignableID: testUUID1, ScheduleID: testUUID2, EffectiveDate: "2025-01-01",
	}))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r := newRouter()
	r.POST("/schedule-assignments", h.Assign)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("no-op 应返回 200，实际=%d", w.Code)
	}
}

func TestAssignHandler_Assign_Validation(t *testing.T) {
	h := NewScheduleAssignmentHandler(&mockAssignService{}, time.UTC)
	cases := []dto.AssignScheduleRequest{
		{AssignableType: "team", AssignableID: testUUID1, ScheduleID: testUUID2, EffectiveDate: "2025-01-01"},
		{AssignableType: "user", AssignableID: "1", ScheduleID: testUUID2, EffectiveDate: "2025-01-01"},
		{AssignableType: "user", AssignableID: testUUID1, ScheduleID: testUUID2, EffectiveDate: "01/01/2025"},
	}
	for i, c := range cases {
		req := httptest.NewRequest("POST", "/schedule-assignments", jsonBody(c))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r := newRouter()
		r.POST("/schedule-assignments", h.Assign)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("case %d: expected 400, got %d", i, w.Code)
		}
	}
}

func TestAssignHandler_Assign_ScheduleNotFound(t *testing.T) {
	h := NewScheduleAssignmentHandler(&mockAssignService{assignErr: service.ErrAssignmentScheduleNotFound}, time.UTC)
	req := httptest.NewRequest("POST", "/schedule-assignments", jsonBody(dto.AssignScheduleRequest{
		AssignableType: "campaign", AssignableID: testUUID1, ScheduleID: testUUID2, EffectiveDate: "2025-01-01",
	}))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r := newRouter()
	r.POST("/schedule-assignments", h.Assign)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound || parseResponse(w).Code != 18003 {
		t.Errorf("expected 404/18003, got %d", w.Code)
	}
}

func TestAssignHandler_Active_DefaultsToToday(t *testing.T) {
	loc, _ := time.LoadLocation("America/Mexico_City")
	mock := &mockAssignService{activeErr: service.ErrNoActiveAssignment}
	h := NewScheduleAssignmentHandler(mock, loc)
	// 2025-03-01 03:00 UTC 在墨西哥城仍是 2025-02-28
	h.now = func() time.Time { return time.Date(2025, 3, 1, 3, 0, 0, 0, time.UTC) }

	w := httptest.NewRecorder()
	r := newRouter()
	r.GET("/active", h.Active)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/active?assignable_type=user&assignable_id="+testUUID1, nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if mock.gotDate.Format(dateLayout) != "2025-02-28" {
		t.Errorf("默认日期应按配置时区计算，实际=%s", mock.gotDate.Format(dateLayout))
	}
}

func TestAssignHandler_History(t *testing.T) {
	mock := &mockAssignService{historyResult: []model.ScheduleAssignment{
		{AssignmentID: "a1", ValidFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{AssignmentID: "a2", ValidFrom: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
	}}
	h := NewScheduleAssignmentHandler(mock, nil)

	w := httptest.NewRecorder()
	r := newRouter()
	r.GET("/history", h.History)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/history?assignable_type=campaign&assignable_id="+testUUID1, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Data []dto.ScheduleAssignmentResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Data) != 2 || resp.Data[1].ValidFrom != "2025-02-01" || resp.Data[0].ValidUntil != nil {
		t.Errorf("历史记录错误: %+v", resp.Data)
	}
	if mock.gotRef.Kind != model.AssignableCampaign {
		t.Errorf("分配对象类型错误: %s", mock.gotRef.Kind)
	}
}

func TestMustGetUserID_Missing(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if _, ok := MustGetUserID(c); ok {
		t.Error("缺少 user_id 时应返回 false")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
