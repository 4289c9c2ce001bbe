package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/TravisDev5x/HELPDESKREACT26-sub000/config"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/dto"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/importer"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/model"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/repository"
)

// ── 导入模块业务错误 ──

var ErrImportBatchNotFound = errors.New("导入批次不存在")

const (
	// attributeFile 整批失败使用的属性名
	attributeFile  = "file"
	msgNoDataRows  = "El archivo no contiene filas de datos"
	lockKeyPrefix  = "import:employee:"
	tempPasswordLn = 16
)

// RowLocker 按员工编号加锁，避免并发导入同一员工
// pkg/redis.Client 实现该接口；为 nil 时不加锁，依赖唯一索引与乐观锁兜底
type RowLocker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

// ImportOptions 导入调用参数
type ImportOptions struct {
	FileName   string  // 记录到批次中的文件名，缺省取路径文件名
	ImportedBy *string // 操作人，CLI 调用时为空
}

// ImportService 人员主数据批量导入
//
// 设计说明：
//   - 单协程顺序处理，每行独立事务，任一行失败不影响其他行
//   - 整批失败只有两种：文件格式错误（返回 error）与无数据行（报告中一条 file 失败）
//   - 每个输入行恰好计入 processed 或 failures 之一
type ImportService interface {
	ImportFile(ctx context.Context, path string, opts ImportOptions) (*dto.ImportReport, error)
	ImportRows(ctx context.Context, rows []importer.Row, opts ImportOptions) (*dto.ImportReport, error)
	ListBatches(ctx context.Context, req *dto.PaginationRequest) ([]dto.ImportBatchResponse, int64, error)
	GetBatch(ctx context.Context, id string) (*dto.ImportBatchDetailResponse, error)
}

type importService struct {
	repo     *repository.Repository
	aliases  *importer.AliasTable
	cfg      *config.ImportConfig
	locker   RowLocker
	logger   *zap.Logger
	now      func() time.Time
	hashCost int
}

// NewImportService 创建 ImportService 实例；locker 可为 nil
func NewImportService(repo *repository.Repository, aliases *importer.AliasTable, cfg *config.ImportConfig, locker RowLocker, logger *zap.Logger) ImportService {
	return &importService{
		repo:     repo,
		aliases:  aliases,
		cfg:      cfg,
		locker:   locker,
		logger:   logger,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
}

// ═══════════════════════════════════════════════════════════
// ImportFile / ImportRows
// ═══════════════════════════════════════════════════════════

func (s *importService) ImportFile(ctx context.Context, path string, opts ImportOptions) (*dto.ImportReport, error) {
	if opts.FileName == "" {
		opts.FileName = filepath.Base(path)
	}

	rows, err := importer.ReadFile(path, s.aliases, s.cfg.MaxRows)
	if err != nil {
		s.logger.Warn("导入文件无法读取", zap.String("file", opts.FileName), zap.Error(err))
		return nil, err
	}
	return s.ImportRows(ctx, rows, opts)
}

func (s *importService) ImportRows(ctx context.Context, rows []importer.Row, opts ImportOptions) (*dto.ImportReport, error) {
	startedAt := s.now()
	report := dto.NewImportReport()

	if len(rows) == 0 {
		report.Failures = append(report.Failures, dto.ImportFailure{
			Row:       0,
			Attribute: attributeFile,
			Errors:    []string{msgNoDataRows},
			Values:    map[string]string{},
		})
		s.saveBatch(ctx, opts, model.ImportBatchEmpty, startedAt, report)
		return report, nil
	}

	snapshot, err := s.loadCatalogs(ctx)
	if err != nil {
		s.logger.Error("加载目录失败", zap.Error(err))
		return nil, err
	}
	resolver := importer.NewResolver(snapshot, &managerLookup{users: s.repo.User}, startedAt)
	today := model.DateOnly(startedAt.In(s.cfg.Location()))

	for _, row := range rows {
		created, warnings, rerr := s.processRow(ctx, row, resolver, today, opts.ImportedBy)
		if rerr != nil {
			s.logger.Warn("导入行失败",
				zap.Int("row", row.Number),
				zap.String("attribute", rerr.Attribute),
				zap.String("kind", string(rerr.Kind)),
				zap.Strings("errors", rerr.Messages))
			report.Failures = append(report.Failures, dto.ImportFailure{
				Row:       row.Number,
				Attribute: rerr.Attribute,
				Errors:    rerr.Messages,
				Values:    copyValues(row.Values),
			})
			continue
		}

		report.Processed++
		if created {
			report.Created++
		} else {
			report.Updated++
		}
		for _, w := range warnings {
			report.Warnings = append(report.Warnings, dto.ImportWarning{Row: row.Number, Message: w})
		}
	}

	s.logger.Info("导入批次完成",
		zap.String("file", opts.FileName),
		zap.Int("rows", len(rows)),
		zap.Int("processed", report.Processed),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("failed", len(report.Failures)),
		zap.Int("warnings", len(report.Warnings)))

	s.saveBatch(ctx, opts, model.ImportBatchCompleted, startedAt, report)
	return report, nil
}

// processRow 校验 → 解析 → 拆分姓名 → 加锁 → 行事务
func (s *importService) processRow(ctx context.Context, row importer.Row, resolver *importer.Resolver, today time.Time, actor *string) (bool, []string, *importer.RowError) {
	if rerr := importer.ValidationError(row); rerr != nil {
		return false, nil, rerr
	}

	resolved, err := resolver.Resolve(ctx, row)
	if err != nil {
		var rerr *importer.RowError
		if errors.As(err, &rerr) {
			return false, nil, rerr
		}
		return false, nil, importer.NewExceptionError(err)
	}

	fullName := strings.TrimSpace(row.Get(importer.ColNombreCompleto))
	names := importer.SplitFullName(fullName)

	identifier := strings.TrimSpace(row.Get(importer.ColNumeroEmpleado))
	if identifier == "" {
		identifier = placeholderIdentifier(row.Number)
	}

	if s.locker != nil {
		release, err := s.locker.AcquireLock(ctx, lockKeyPrefix+identifier, s.cfg.LockTTL)
		if err != nil {
			return false, nil, importer.NewExceptionError(err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("释放导入锁失败", zap.String("employee_number", identifier), zap.Error(err))
			}
		}()
	}

	created, err := s.commitRow(ctx, identifier, fullName, names, resolved, today, actor)
	if err != nil {
		return false, nil, importer.NewExceptionError(err)
	}
	return created, resolved.Warnings, nil
}

// commitRow 单行事务：任何错误或 panic 均整体回滚
func (s *importService) commitRow(ctx context.Context, identifier, fullName string, names importer.NameParts, resolved *importer.ResolvedRow, today time.Time, actor *string) (created bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			created, err = false, fmt.Errorf("panic: %v", r)
		}
	}()

	err = s.repo.Tx.Transaction(ctx, func(txRepo *repository.Repository) error {
		var txErr error
		created, txErr = s.upsertEmployee(ctx, txRepo, identifier, fullName, names, resolved, today, actor)
		return txErr
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *importService) upsertEmployee(ctx context.Context, txRepo *repository.Repository, identifier, fullName string, names importer.NameParts, resolved *importer.ResolvedRow, today time.Time, actor *string) (bool, error) {
	created := false

	// 1. 按员工编号查找（含软删除）
	user, err := txRepo.User.GetByEmployeeNumberUnscoped(ctx, identifier)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := s.initialCredential()
		if err != nil {
			return false, err
		}
		user = &model.User{
			EmployeeNumber: identifier,
			PasswordHash:   hash,
			Status:         model.UserStatusActive,
		}
		user.CreatedBy = actor
		applyIdentity(user, fullName, names, resolved)
		if err := txRepo.User.Create(ctx, user); err != nil {
			return false, err
		}
		created = true

	case err != nil:
		return false, err

	default:
		if user.IsSoftDeleted() {
			if err := txRepo.User.Restore(ctx, user.UserID); err != nil {
				return false, err
			}
			user.DeletedAt = gorm.DeletedAt{}
			user.DeletedBy = nil
			user.Status = model.UserStatusActive
		}
		applyIdentity(user, fullName, names, resolved)
		user.UpdatedBy = actor
		if err := txRepo.User.Update(ctx, user); err != nil {
			return false, err
		}
	}

	// 2. 档案 upsert
	profile, err := txRepo.Profile.GetByUserID(ctx, user.UserID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = &model.EmployeeProfile{UserID: user.UserID}
		profile.CreatedBy = actor
		applyProfile(profile, resolved)
		if err := txRepo.Profile.Create(ctx, profile); err != nil {
			return false, err
		}
	case err != nil:
		return false, err
	default:
		applyProfile(profile, resolved)
		profile.UpdatedBy = actor
		if err := txRepo.Profile.Update(ctx, profile); err != nil {
			return false, err
		}
	}

	// 3. 班次分配
	if resolved.ScheduleID != nil {
		ref := model.AssignableRef{Kind: model.AssignableUser, ID: user.UserID}
		if _, _, err := assignInTx(ctx, txRepo, ref, *resolved.ScheduleID, today, actor); err != nil {
			return false, err
		}
	}

	return created, nil
}

func applyIdentity(user *model.User, fullName string, names importer.NameParts, resolved *importer.ResolvedRow) {
	user.FullName = fullName
	user.FirstName = names.FirstName
	user.PaternalLastName = names.PaternalLastName
	user.MaternalLastName = names.MaternalLastName
	user.SedeID = resolved.SedeID
	user.AreaID = resolved.AreaID
	user.CampaignID = resolved.CampaignID
	user.PositionID = resolved.PositionID
}

func applyProfile(profile *model.EmployeeProfile, resolved *importer.ResolvedRow) {
	profile.HireDate = resolved.HireDate
	profile.EmployeeStatusID = resolved.EmployeeStatusID
	profile.HireTypeID = resolved.HireTypeID
	profile.ManagerID = resolved.ManagerID
}

// ────────────────────── 批次记录 ──────────────────────

// saveBatch 持久化批次报告；失败只记录日志，不影响返回的报告
func (s *importService) saveBatch(ctx context.Context, opts ImportOptions, status string, startedAt time.Time, report *dto.ImportReport) {
	raw, err := json.Marshal(report)
	if err != nil {
		s.logger.Error("序列化导入报告失败", zap.Error(err))
		return
	}

	batch := &model.ImportBatch{
		FileName:     opts.FileName,
		Status:       status,
		Processed:    report.Processed,
		CreatedCount: report.Created,
		UpdatedCount: report.Updated,
		FailedCount:  len(report.Failures),
		WarningCount: len(report.Warnings),
		Report:       model.JSONB(raw),
		ImportedBy:   opts.ImportedBy,
		StartedAt:    startedAt,
		FinishedAt:   s.now(),
	}
	if err := s.repo.ImportBatch.Create(ctx, batch); err != nil {
		s.logger.Error("保存导入批次失败", zap.String("file", opts.FileName), zap.Error(err))
		return
	}
	report.BatchID = batch.BatchID
}

func (s *importService) ListBatches(ctx context.Context, req *dto.PaginationRequest) ([]dto.ImportBatchResponse, int64, error) {
	batches, total, err := s.repo.ImportBatch.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询导入批次失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.ImportBatchResponse, 0, len(batches))
	for i := range batches {
		list = append(list, toImportBatchResponse(&batches[i]))
	}
	return list, total, nil
}

func (s *importService) GetBatch(ctx context.Context, id string) (*dto.ImportBatchDetailResponse, error) {
	batch, err := s.repo.ImportBatch.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImportBatchNotFound
		}
		return nil, err
	}

	report := dto.NewImportReport()
	if len(batch.Report) > 0 {
		if err := json.Unmarshal(batch.Report, report); err != nil {
			return nil, fmt.Errorf("解析批次报告失败: %w", err)
		}
	}
	report.BatchID = batch.BatchID

	return &dto.ImportBatchDetailResponse{
		ImportBatchResponse: toImportBatchResponse(batch),
		Report:              report,
	}, nil
}

func toImportBatchResponse(b *model.ImportBatch) dto.ImportBatchResponse {
	return dto.ImportBatchResponse{
		ID:         b.BatchID,
		FileName:   b.FileName,
		Status:     b.Status,
		Processed:  b.Processed,
		Created:    b.CreatedCount,
		Updated:    b.UpdatedCount,
		Failed:     b.FailedCount,
		Warnings:   b.WarningCount,
		ImportedBy: b.ImportedBy,
		StartedAt:  b.StartedAt.Format(time.RFC3339),
		FinishedAt: b.FinishedAt.Format(time.RFC3339),
	}
}

// ────────────────────── 内部辅助 ──────────────────────

// loadCatalogs 批次开始时一次性加载全部启用目录
func (s *importService) loadCatalogs(ctx context.Context) (*importer.CatalogSnapshot, error) {
	entries := make(map[model.CatalogKind][]model.CatalogEntry, len(model.CatalogKinds))
	for _, kind := range model.CatalogKinds {
		list, err := s.repo.Catalog.ListActive(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("加载目录 %s 失败: %w", kind, err)
		}
		entries[kind] = list
	}
	return importer.NewCatalogSnapshot(entries), nil
}

// managerLookup 以 UserRepository 实现 importer.ManagerLookup
type managerLookup struct {
	users repository.UserRepository
}

func (m *managerLookup) FindByFullName(ctx context.Context, name string) (string, bool, error) {
	id, err := m.users.FindActiveIDByFullName(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// initialCredential 随机初始密码的 bcrypt 哈希，明文不保留
func (s *importService) initialCredential() (string, error) {
	pwd, err := generateTempPassword(tempPasswordLn)
	if err != nil {
		return "", fmt.Errorf("生成初始密码失败: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("密码哈希失败: %w", err)
	}
	return string(hash), nil
}

// placeholderIdentifier 无员工编号时生成 IMP-<行号>-<8 位大写十六进制>
func placeholderIdentifier(rowNumber int) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("IMP-%d-%s", rowNumber, suffix)
}

func copyValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

// generateTempPassword 生成指定长度的随机密码（保证包含字母和数字）
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 4 {
		length = 8
	}

	result := make([]byte, length)

	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
	if err != nil {
		return "", err
	}
	result[0] = letters[n.Int64()]

	n, err = rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
	if err != nil {
		return "", err
	}
	result[1] = digits[n.Int64()]

	for i := 2; i < length; i++ {
		n, err = rand.Int(rand.Reader, big.NewInt(int64(len(all))))
		if err != nil {
			return "", err
		}
		result[i] = all[n.Int64()]
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}

	return string(result), nil
}
