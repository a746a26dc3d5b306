package resume

import (
	"regexp"
	"sort"
	"strings"
)

// DatePatterns 日期片段的四种识别形态，按扫描顺序排列
var DatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{2}/\d{4}`),          // MM/YYYY
	regexp.MustCompile(`\d{2}/\d{2}/\d{4}`),    // DD/MM/YYYY
	regexp.MustCompile(`[\p{L}\p{N}_]+ \d{4}`), // Month YYYY，例如 "March 2020"、"Août 2020"
	regexp.MustCompile(`\d{4}-\d{4}`),          // YYYY-YYYY
}

type monthAlias struct {
	name string
	num  string
}

// monthAliases 月份名到两位数字的映射，全称在前、缩写在后，查找时取第一个命中项
var monthAliases = []monthAlias{
	{"january", "01"}, {"february", "02"}, {"march", "03"}, {"april", "04"},
	{"may", "05"}, {"june", "06"}, {"july", "07"}, {"august", "08"},
	{"september", "09"}, {"october", "10"}, {"november", "11"}, {"december", "12"},
	{"jan", "01"}, {"feb", "02"}, {"mar", "03"}, {"apr", "04"},
	{"jun", "06"}, {"jul", "07"}, {"aug", "08"},
	{"sep", "09"}, {"oct", "10"}, {"nov", "11"}, {"dec", "12"},
}

// DateSet 去重后的原始日期片段
type DateSet []string

// Contains 判断集合中是否存在指定片段
func (s DateSet) Contains(token string) bool {
	for _, t := range s {
		if t == token {
			return true
		}
	}
	return false
}

// ConvertMonthName 将片段中出现的第一个月份名替换为两位月份数字（整体转为小写）。
// 未包含月份名时原样返回。
func ConvertMonthName(token string) string {
	lower := strings.ToLower(token)
	for _, alias := range monthAliases {
		if strings.Contains(lower, alias.name) {
			return strings.Replace(lower, alias.name, alias.num, -1)
		}
	}
	return token
}

// ExtractDates 在文本中查找所有日期片段并去重。
//
// 每个片段都会经过 ConvertMonthName，但返回的仍是原始文本形式：
// 下游的工龄计算直接解析原始片段，转换结果不参与输出。
// 结果按字典序排列，同一输入多次调用得到完全相同的切片。
func ExtractDates(text string) DateSet {
	seen := make(map[string]struct{})
	for _, pattern := range DatePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			_ = ConvertMonthName(match)
			seen[match] = struct{}{}
		}
	}

	dates := make(DateSet, 0, len(seen))
	for token := range seen {
		dates = append(dates, token)
	}
	sort.Strings(dates)
	return dates
}
