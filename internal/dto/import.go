package dto

// ── 人员导入 ──

// ImportReport 批次汇总报告
type ImportReport struct {
	BatchID   string          `json:"batch_id,omitempty"`
	Processed int             `json:"processed"` // 成功提交的行数
	Created   int             `json:"created"`
	Updated   int             `json:"updated"`
	Failures  []ImportFailure `json:"failures"`
	Warnings  []ImportWarning `json:"warnings"`
}

// ImportFailure 单行失败
type ImportFailure struct {
	Row       int               `json:"row"`
	Attribute string            `json:"attribute"`
	Errors    []string          `json:"errors"`
	Values    map[string]string `json:"values"`
}

// ImportWarning 已提交但存在软解析缺口的行
type ImportWarning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// NewImportReport 创建空报告（failures / warnings 序列化为 [] 而非 null）
func NewImportReport() *ImportReport {
	return &ImportReport{
		Failures: []ImportFailure{},
		Warnings: []ImportWarning{},
	}
}

// ImportBatchResponse 导入批次列表项
type ImportBatchResponse struct {
	ID         string  `json:"id"`
	FileName   string  `json:"file_name"`
	Status     string  `json:"status"`
	Processed  int     `json:"processed"`
	Created    int     `json:"created"`
	Updated    int     `json:"updated"`
	Failed     int     `json:"failed"`
	Warnings   int     `json:"warnings"`
	ImportedBy *string `json:"imported_by,omitempty"`
	StartedAt  string  `json:"started_at"`
	FinishedAt string  `json:"finished_at"`
}

// ImportBatchDetailResponse 批次详情（含完整报告）
type ImportBatchDetailResponse struct {
	ImportBatchResponse
	Report *ImportReport `json:"report"`
}
