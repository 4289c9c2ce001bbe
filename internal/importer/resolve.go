package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/model"
)

// strictField 严格字段：非空值未匹配即整行失败
type strictField struct {
	Column string
	Kind   model.CatalogKind
	Label  string
}

// strictFields 解析顺序固定
var strictFields = []strictField{
	{Column: ColSede, Kind: model.CatalogSede, Label: "sedes"},
	{Column: ColCampana, Kind: model.CatalogCampaign, Label: "campañas"},
	{Column: ColArea, Kind: model.CatalogArea, Label: "áreas"},
	{Column: ColPuesto, Kind: model.CatalogPosition, Label: "puestos"},
	{Column: ColHorario, Kind: model.CatalogSchedule, Label: "horarios"},
	{Column: ColEstatus, Kind: model.CatalogEmployeeStatus, Label: "estatus"},
	{Column: ColTipoIngreso, Kind: model.CatalogHireType, Label: "tipos de ingreso"},
}

// ────────────────────── CatalogSnapshot ──────────────────────

// CatalogSnapshot 单批次内只读的启用目录索引
// 键为去重音小写后的名称与编码，名称优先于编码
type CatalogSnapshot struct {
	index map[model.CatalogKind]map[string]string
}

// NewCatalogSnapshot 由各目录的启用条目构建索引，停用条目被忽略
func NewCatalogSnapshot(entries map[model.CatalogKind][]model.CatalogEntry) *CatalogSnapshot {
	s := &CatalogSnapshot{index: make(map[model.CatalogKind]map[string]string, len(entries))}
	for kind, list := range entries {
		idx := make(map[string]string, len(list)*2)
		for _, e := range list {
			if !e.IsActive {
				continue
			}
			if k := foldKey(e.Name); k != "" {
				if _, exists := idx[k]; !exists {
					idx[k] = e.ID
				}
			}
		}
		for _, e := range list {
			if !e.IsActive || e.Code == nil {
				continue
			}
			if k := foldKey(*e.Code); k != "" {
				if _, exists := idx[k]; !exists {
					idx[k] = e.ID
				}
			}
		}
		s.index[kind] = idx
	}
	return s
}

// Lookup 精确匹配（忽略大小写、重音与首尾空白）
func (s *CatalogSnapshot) Lookup(kind model.CatalogKind, value string) (string, bool) {
	id, ok := s.index[kind][foldKey(value)]
	return id, ok
}

// ────────────────────── Resolver ──────────────────────

// ManagerLookup 按全名查找直属上级
type ManagerLookup interface {
	FindByFullName(ctx context.Context, name string) (id string, found bool, err error)
}

// ResolvedRow 目录解析结果，未填写的字段为 nil
type ResolvedRow struct {
	HireDate         *time.Time
	SedeID           *string
	CampaignID       *string
	AreaID           *string
	PositionID       *string
	ScheduleID       *string
	EmployeeStatusID *string
	HireTypeID       *string
	ManagerID        *string
	Warnings         []string
}

func (r *ResolvedRow) set(kind model.CatalogKind, id string) {
	p := &id
	switch kind {
	case model.CatalogSede:
		r.SedeID = p
	case model.CatalogCampaign:
		r.CampaignID = p
	case model.CatalogArea:
		r.AreaID = p
	case model.CatalogPosition:
		r.PositionID = p
	case model.CatalogSchedule:
		r.ScheduleID = p
	case model.CatalogEmployeeStatus:
		r.EmployeeStatusID = p
	case model.CatalogHireType:
		r.HireTypeID = p
	}
}

// Resolver 将行内自由文本解析为目录 ID
type Resolver struct {
	catalogs *CatalogSnapshot
	managers ManagerLookup
	now      time.Time
}

// NewResolver 创建解析器；now 用于两位年份换算
func NewResolver(catalogs *CatalogSnapshot, managers ManagerLookup, now time.Time) *Resolver {
	return &Resolver{catalogs: catalogs, managers: managers, now: now}
}

// Resolve 顺序：入职日期 → 七个严格字段 → 直属上级
// 遇到第一个致命问题立即返回 RowError；上级未找到仅记警告
func (r *Resolver) Resolve(ctx context.Context, row Row) (*ResolvedRow, error) {
	out := &ResolvedRow{}

	if raw := strings.TrimSpace(row.Get(ColFechaIngreso)); raw != "" {
		t, ok := ParseDate(raw, r.now)
		if !ok {
			return nil, &RowError{
				Kind:      KindResolution,
				Attribute: ColFechaIngreso,
				Messages:  []string{fmt.Sprintf("El valor '%s' no es una fecha válida", raw)},
			}
		}
		out.HireDate = &t
	}

	for _, f := range strictFields {
		raw := strings.TrimSpace(row.Get(f.Column))
		if raw == "" {
			continue
		}
		id, ok := r.catalogs.Lookup(f.Kind, raw)
		if !ok {
			return nil, &RowError{
				Kind:      KindResolution,
				Attribute: f.Column,
				Messages:  []string{fmt.Sprintf("No se encontró '%s' en el catálogo de %s", raw, f.Label)},
			}
		}
		out.set(f.Kind, id)
	}

	if name := strings.TrimSpace(row.Get(ColJefeInmediato)); name != "" {
		id, found, err := r.managers.FindByFullName(ctx, name)
		if err != nil {
			return nil, NewExceptionError(fmt.Errorf("consulta de jefe inmediato: %w", err))
		}
		if found {
			out.ManagerID = &id
		} else {
			out.Warnings = append(out.Warnings,
				fmt.Sprintf("Jefe inmediato '%s' no encontrado; el registro se importó sin jefe", name))
		}
	}

	return out, nil
}
