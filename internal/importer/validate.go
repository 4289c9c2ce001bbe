package importer

import "strings"

const msgNombreRequerido = "El campo nombre_completo es obligatorio"

// Validate 必填校验，返回 属性 -> 错误列表；空 map 表示通过
// 只有 nombre_completo 为必填项
func Validate(row Row) map[string][]string {
	errs := make(map[string][]string)
	if strings.TrimSpace(row.Get(ColNombreCompleto)) == "" {
		errs[ColNombreCompleto] = append(errs[ColNombreCompleto], msgNombreRequerido)
	}
	return errs
}

// ValidationError 将 Validate 结果转为行级失败，通过时返回 nil
func ValidationError(row Row) *RowError {
	errs := Validate(row)
	if len(errs) == 0 {
		return nil
	}
	// 按规范列顺序取第一个失败属性，保证结果确定
	for _, key := range CanonicalKeys {
		if msgs, ok := errs[key]; ok {
			return &RowError{Kind: KindValidation, Attribute: key, Messages: msgs}
		}
	}
	return nil
}
