package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/model"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/repository"
)

// ── Mock CatalogRepository ──

type mockCatalogRepo struct {
	entries map[model.CatalogKind][]model.CatalogEntry
	err     error
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{entries: make(map[model.CatalogKind][]model.CatalogEntry)}
}

func (m *mockCatalogRepo) add(kind model.CatalogKind, id, name string, active bool) {
	m.entries[kind] = append(m.entries[kind], model.CatalogEntry{ID: id, Name: name, IsActive: active})
}

func (m *mockCatalogRepo) ListActive(_ context.Context, kind model.CatalogKind) ([]model.CatalogEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.CatalogEntry
	for _, e := range m.entries[kind] {
		if e.IsActive {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockCatalogRepo) GetActiveByID(_ context.Context, kind model.CatalogKind, id string) (*model.CatalogEntry, error) {
	for _, e := range m.entries[kind] {
		if e.ID == id && e.IsActive {
			e := e
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users     map[string]*model.User // user_id -> user
	seq       int
	createErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.EmployeeNumber == user.EmployeeNumber {
			return fmt.Errorf("duplicate key value violates unique constraint \"idx_users_employee_number\"")
		}
	}
	m.seq++
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%03d", m.seq)
	}
	user.Version = 1
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok && !u.DeletedAt.Valid {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmployeeNumberUnscoped(_ context.Context, employeeNumber string) (*model.User, error) {
	for _, u := range m.users {
		if u.EmployeeNumber == employeeNumber {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindActiveIDByFullName(_ context.Context, fullName string) (string, error) {
	want := strings.ToLower(strings.TrimSpace(fullName))
	for _, u := range m.users {
		if !u.DeletedAt.Valid && strings.ToLower(strings.TrimSpace(u.FullName)) == want {
			return u.UserID, nil
		}
	}
	return "", gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	stored, ok := m.users[user.UserID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Version = stored.Version + 1
	cp := *user
	cp.DeletedAt = stored.DeletedAt
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) Restore(_ context.Context, id string) error {
	stored, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.DeletedAt = gorm.DeletedAt{}
	stored.DeletedBy = nil
	return nil
}

func (m *mockUserRepo) byEmployeeNumber(n string) *model.User {
	for _, u := range m.users {
		if u.EmployeeNumber == n {
			return u
		}
	}
	return nil
}

// ── Mock ProfileRepository ──

type mockProfileRepo struct {
	profiles  map[string]*model.EmployeeProfile // user_id -> profile
	seq       int
	createErr error
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*model.EmployeeProfile)}
}

func (m *mockProfileRepo) GetByUserID(_ context.Context, userID string) (*model.EmployeeProfile, error) {
	if p, ok := m.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) Create(_ context.Context, profile *model.EmployeeProfile) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	profile.ProfileID = fmt.Sprintf("profile-%03d", m.seq)
	cp := *profile
	m.profiles[profile.UserID] = &cp
	return nil
}

func (m *mockProfileRepo) Update(_ context.Context, profile *model.EmployeeProfile) error {
	cp := *profile
	m.profiles[profile.UserID] = &cp
	return nil
}

// ── Mock ScheduleAssignmentRepository ──

type mockAssignmentRepo struct {
	rows          []*model.ScheduleAssignment
	seq           int
	panicOnCreate bool
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{}
}

func (m *mockAssignmentRepo) FindActiveAt(_ context.Context, ref model.AssignableRef, day time.Time) (*model.ScheduleAssignment, error) {
	for _, a := range m.rows {
		if a.Ref() == ref && a.ActiveOn(day) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) FindNextAfter(_ context.Context, ref model.AssignableRef, day time.Time) (*model.ScheduleAssignment, error) {
	var next *model.ScheduleAssignment
	for _, a := range m.rows {
		if a.Ref() != ref || !a.ValidFrom.After(model.DateOnly(day)) {
			continue
		}
		if next == nil || a.ValidFrom.Before(next.ValidFrom) {
			next = a
		}
	}
	if next == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *next
	return &cp, nil
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.ScheduleAssignment) error {
	if m.panicOnCreate {
		panic("assignment insert failed")
	}
	m.seq++
	a.AssignmentID = fmt.Sprintf("asg-%03d", m.seq)
	cp := *a
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *mockAssignmentRepo) Close(_ context.Context, id string, validUntil time.Time, _ *string) error {
	for _, a := range m.rows {
		if a.AssignmentID == id {
			d := model.DateOnly(validUntil)
			a.ValidUntil = &d
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) ListByAssignable(_ context.Context, ref model.AssignableRef) ([]model.ScheduleAssignment, error) {
	var result []model.ScheduleAssignment
	for _, a := range m.rows {
		if a.Ref() == ref {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ValidFrom.Before(result[j].ValidFrom) })
	return result, nil
}

// ── Mock ImportBatchRepository ──

type mockImportBatchRepo struct {
	batches []*model.ImportBatch
}

func newMockImportBatchRepo() *mockImportBatchRepo {
	return &mockImportBatchRepo{}
}

func (m *mockImportBatchRepo) Create(_ context.Context, b *model.ImportBatch) error {
	b.BatchID = fmt.Sprintf("batch-%03d", len(m.batches)+1)
	cp := *b
	m.batches = append(m.batches, &cp)
	return nil
}

func (m *mockImportBatchRepo) GetByID(_ context.Context, id string) (*model.ImportBatch, error) {
	for _, b := range m.batches {
		if b.BatchID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockImportBatchRepo) List(_ context.Context, offset, limit int) ([]model.ImportBatch, int64, error) {
	var result []model.ImportBatch
	for i := len(m.batches) - 1; i >= 0; i-- {
		result = append(result, *m.batches[i])
	}
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

// ── Mock TxRunner ──

// mockTxRunner 在内存中模拟事务：fn 失败或 panic 时恢复用户、档案与分配数据
type mockTxRunner struct {
	repos     *mockRepos
	repo      *repository.Repository
	commits   int
	rollbacks int
}

func (m *mockTxRunner) Transaction(_ context.Context, fn func(txRepo *repository.Repository) error) error {
	restore := m.repos.snapshot()
	defer func() {
		if r := recover(); r != nil {
			restore()
			m.rollbacks++
			panic(r)
		}
	}()

	if err := fn(m.repo); err != nil {
		restore()
		m.rollbacks++
		return err
	}
	m.commits++
	return nil
}

// ── 聚合 ──

type mockRepos struct {
	catalog     *mockCatalogRepo
	user        *mockUserRepo
	profile     *mockProfileRepo
	assignment  *mockAssignmentRepo
	importBatch *mockImportBatchRepo
	tx          *mockTxRunner
}

// snapshot 复制可写数据，返回的函数将其恢复
func (m *mockRepos) snapshot() func() {
	users := make(map[string]*model.User, len(m.user.users))
	for id, u := range m.user.users {
		cp := *u
		users[id] = &cp
	}
	profiles := make(map[string]*model.EmployeeProfile, len(m.profile.profiles))
	for id, p := range m.profile.profiles {
		cp := *p
		profiles[id] = &cp
	}
	rows := make([]*model.ScheduleAssignment, 0, len(m.assignment.rows))
	for _, a := range m.assignment.rows {
		cp := *a
		rows = append(rows, &cp)
	}
	return func() {
		m.user.users = users
		m.profile.profiles = profiles
		m.assignment.rows = rows
	}
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		catalog:     newMockCatalogRepo(),
		user:        newMockUserRepo(),
		profile:     newMockProfileRepo(),
		assignment:  newMockAssignmentRepo(),
		importBatch: newMockImportBatchRepo(),
	}
	repo := &repository.Repository{
		Catalog:            m.catalog,
		User:               m.user,
		Profile:            m.profile,
		ScheduleAssignment: m.assignment,
		ImportBatch:        m.importBatch,
	}
	m.tx = &mockTxRunner{repos: m, repo: repo}
	repo.Tx = m.tx
	return repo, m
}
