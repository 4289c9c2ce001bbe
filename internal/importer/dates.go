package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// 电子表格数值单元格按 Excel 序列号换算的范围（1950-01-01 ~ 9999-12-31）
// 低于下限的数值不视为日期，例如 "2024"、"15"
const (
	minSerialDate  = 18264
	maxExcelSerial = 2958465
)

var (
	// 日在前，对应墨西哥常用写法
	fourDigitYearLayouts = []string{
		"2006-01-02",
		"02/01/2006",
		"2/1/2006",
		"02-01-2006",
		"2-1-2006",
		"2006/01/02",
		"02.01.2006",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	twoDigitYearLayouts = []string{
		"02/01/06",
		"2/1/06",
		"02-01-06",
	}
)

// ParseDate 解析文本形式的入职日期，返回值为 UTC 零点
// 两位年份晚于当前年份时归入上一世纪；纯数字不作为日期接受
func ParseDate(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}

	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > now.Year() {
				t = t.AddDate(-100, 0, 0)
			}
			return dateOnly(t), true
		}
	}

	return time.Time{}, false
}

// serialToDate 将数值单元格的序列号换算为 2006-01-02 文本
// 非数值或超出范围时返回 false
func serialToDate(raw string) (string, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f < minSerialDate || f > maxExcelSerial {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
