package model

import "time"

// 导入批次状态
const (
	ImportBatchCompleted = "completed" // 逐行处理完成（可能含失败行）
	ImportBatchEmpty     = "empty"     // 文件无数据行
)

// ImportBatch 导入批次记录表，对应 import_batches
type ImportBatch struct {
	BatchID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"batch_id"`
	FileName     string    `gorm:"type:varchar(255);not null"                     json:"file_name"`
	Status       string    `gorm:"type:varchar(20);not null"                      json:"status"`
	Processed    int       `gorm:"not null;default:0"                             json:"processed"`
	CreatedCount int       `gorm:"not null;default:0"                             json:"created_count"`
	UpdatedCount int       `gorm:"not null;default:0"                             json:"updated_count"`
	FailedCount  int       `gorm:"not null;default:0"                             json:"failed_count"`
	WarningCount int       `gorm:"not null;default:0"                             json:"warning_count"`
	Report       JSONB     `gorm:"type:jsonb;not null;default:'{}'"               json:"report"`
	ImportedBy   *string   `gorm:"type:uuid"                                      json:"imported_by,omitempty"`
	StartedAt    time.Time `gorm:"not null"                                       json:"started_at"`
	FinishedAt   time.Time `gorm:"not null"                                       json:"finished_at"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (ImportBatch) TableName() string { return "import_batches" }
