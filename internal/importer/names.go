package importer

import "strings"

// NameParts 姓名拆分结果，缺失部分为 nil
type NameParts struct {
	FirstName        *string
	PaternalLastName *string
	MaternalLastName *string
}

// SplitFullName 按空白切分全名
// 0 个词全部为空；1 个词仅名；2 个词为名+父姓；3 个词各占一位；
// 4 个及以上时最后两个词为父姓、母姓，其余以单空格拼成名
func SplitFullName(full string) NameParts {
	tokens := strings.Fields(full)
	switch len(tokens) {
	case 0:
		return NameParts{}
	case 1:
		return NameParts{FirstName: strPtr(tokens[0])}
	case 2:
		return NameParts{FirstName: strPtr(tokens[0]), PaternalLastName: strPtr(tokens[1])}
	case 3:
		return NameParts{
			FirstName:        strPtr(tokens[0]),
			PaternalLastName: strPtr(tokens[1]),
			MaternalLastName: strPtr(tokens[2]),
		}
	}
	n := len(tokens)
	return NameParts{
		FirstName:        strPtr(strings.Join(tokens[:n-2], " ")),
		PaternalLastName: strPtr(tokens[n-2]),
		MaternalLastName: strPtr(tokens[n-1]),
	}
}

func strPtr(s string) *string { return &s }
