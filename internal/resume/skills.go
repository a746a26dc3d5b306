package resume

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ZeroConfidence 没有任何技能命中时的固定置信度
const ZeroConfidence = "0.0%"

var digitsRe = regexp.MustCompile(`\d+`)

// SkillSet 规范化后的技能集合
type SkillSet map[string]struct{}

// Sorted 返回按字典序排列的技能列表
func (s SkillSet) Sorted() []string {
	skills := make([]string, 0, len(s))
	for skill := range s {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}

// NormalizeSkill 去掉数字、首尾空白并转为小写
func NormalizeSkill(skill string) string {
	return strings.ToLower(strings.TrimSpace(digitsRe.ReplaceAllString(skill, "")))
}

// SplitSkills 先按逗号、再按斜杠切分技能要求，并去除首尾空白
func SplitSkills(required string) []string {
	var phrases []string
	for _, piece := range strings.Split(required, ",") {
		for _, skill := range strings.Split(piece, "/") {
			phrases = append(phrases, strings.TrimSpace(skill))
		}
	}
	return phrases
}

// ParseSkillSet 将调用方给出的技能要求转换为规范化技能集合。
// 规范化后为空的技能会被丢弃，否则空串会匹配任意简历。
func ParseSkillSet(required string) SkillSet {
	set := make(SkillSet)
	for _, phrase := range SplitSkills(required) {
		if skill := NormalizeSkill(phrase); skill != "" {
			set[skill] = struct{}{}
		}
	}
	return set
}

// SkillMatch 技能匹配结果
type SkillMatch struct {
	Required SkillSet
	Matched  SkillSet
}

// MatchSkills 检查每个要求的技能是否作为子串出现在规范化后的简历文本中。
// 不做词边界判断，"ai" 也会命中 "air"。
func MatchSkills(required SkillSet, resumeText string, normalizer *Normalizer) SkillMatch {
	if normalizer == nil {
		normalizer = DefaultNormalizer
	}
	haystack := normalizer.NormalizeForMatch(resumeText)

	matched := make(SkillSet)
	for skill := range required {
		if strings.Contains(haystack, skill) {
			matched[skill] = struct{}{}
		}
	}
	return SkillMatch{Required: required, Matched: matched}
}

// ConfidenceValue 命中比例的百分数，保留两位小数。
// 按浮点数的精确二进制值舍入，3.125 得到 3.12 而不是 3.13。
func (m SkillMatch) ConfidenceValue() float64 {
	if len(m.Matched) == 0 || len(m.Required) == 0 {
		return 0
	}
	return RoundPercent(float64(len(m.Matched)) / float64(len(m.Required)) * 100)
}

// RoundPercent 保留两位小数
func RoundPercent(v float64) float64 {
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return rounded
}

// Confidence 渲染为百分比字符串，例如 "66.67%"、"100.0%"；没有命中时为 "0.0%"
func (m SkillMatch) Confidence() string {
	if len(m.Matched) == 0 {
		return ZeroConfidence
	}
	return FormatPercent(m.ConfidenceValue())
}

// FormatPercent 使用最短表示并保证至少一位小数
func FormatPercent(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%"
}
