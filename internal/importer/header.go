package importer

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// 规范列名
const (
	ColNombreCompleto = "nombre_completo"
	ColNumeroEmpleado = "numero_empleado"
	ColFechaIngreso   = "fecha_de_ingreso"
	ColSede           = "sede"
	ColCampana        = "campana"
	ColArea           = "area"
	ColPuesto         = "puesto_especifico"
	ColHorario        = "horario"
	ColEstatus        = "estatus"
	ColTipoIngreso    = "tipo_de_ingreso"
	ColJefeInmediato  = "jefe_inmediato"
)

// CanonicalKeys 十一个规范列名，顺序即别名匹配优先级
var CanonicalKeys = []string{
	ColNombreCompleto,
	ColNumeroEmpleado,
	ColFechaIngreso,
	ColSede,
	ColCampana,
	ColArea,
	ColPuesto,
	ColHorario,
	ColEstatus,
	ColTipoIngreso,
	ColJefeInmediato,
}

// defaultAliases 内置别名（写法不必预先规范化，构建时统一经过 clean）
var defaultAliases = map[string][]string{
	ColNombreCompleto: {"nombre completo", "nombre", "nombre del empleado", "nombre empleado", "colaborador", "empleado"},
	ColNumeroEmpleado: {"numero empleado", "número de empleado", "no. empleado", "num empleado", "núm. empleado", "id empleado", "nómina", "numero de nomina", "clave"},
	ColFechaIngreso:   {"fecha de ingreso", "fecha ingreso", "ingreso", "fecha de alta", "fecha alta", "alta"},
	ColSede:           {"sede", "centro", "ubicación", "plaza"},
	ColCampana:        {"campaña", "campana", "campaign", "proyecto"},
	ColArea:           {"área", "area", "departamento"},
	ColPuesto:         {"puesto específico", "puesto", "cargo", "posición"},
	ColHorario:        {"horario", "turno"},
	ColEstatus:        {"estatus", "status", "estado"},
	ColTipoIngreso:    {"tipo de ingreso", "tipo ingreso", "tipo de contratación", "tipo contratación"},
	ColJefeInmediato:  {"jefe inmediato", "jefe", "supervisor", "líder", "jefe directo"},
}

// AliasTable 表头别名表，构建后只读
type AliasTable struct {
	index map[string]string // 规范化别名 -> 规范列名
}

// NewAliasTable 由内置别名与配置追加别名构建别名表
// 同一别名出现在多个规范列下时，按 CanonicalKeys 顺序先出现者生效
func NewAliasTable(overrides map[string][]string) (*AliasTable, error) {
	for key := range overrides {
		if !isCanonical(key) {
			return nil, fmt.Errorf("header_aliases 包含未知列名: %q", key)
		}
	}

	t := &AliasTable{index: make(map[string]string)}
	for _, key := range CanonicalKeys {
		t.add(key, key)
		for _, alias := range defaultAliases[key] {
			t.add(alias, key)
		}
		for _, alias := range overrides[key] {
			t.add(alias, key)
		}
	}
	return t, nil
}

func (t *AliasTable) add(alias, key string) {
	c := clean(alias)
	if c == "" {
		return
	}
	if _, exists := t.index[c]; !exists {
		t.index[c] = key
	}
}

// Normalize 将原始表头映射为规范列名；未匹配时返回清洗后的表头
func (t *AliasTable) Normalize(header string) string {
	c := clean(header)
	if key, ok := t.index[c]; ok {
		return key
	}
	return c
}

func isCanonical(key string) bool {
	for _, k := range CanonicalKeys {
		if k == key {
			return true
		}
	}
	return false
}

// clean 去首尾空白 → 空白折叠为 _ → 小写 → 仅保留 [a-z0-9_] 与重音元音/ñ → 去重音
func clean(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), "_"))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || strings.ContainsRune("áéíóúüñàèìòù", r) {
			b.WriteRune(r)
		}
	}
	return foldAccents(b.String())
}

// foldAccents NFD 分解后去掉组合附加符号（unicode.Mn）
func foldAccents(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// foldKey 目录值比较键：去首尾空白、去重音、小写
func foldKey(s string) string {
	return strings.ToLower(foldAccents(strings.TrimSpace(s)))
}
