package resume

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalizer 将简历文本转换为用于子串匹配的可比较形式。
// 创建后只读，可在多个请求之间共享。
type Normalizer struct {
	tag language.Tag
}

// DefaultNormalizer 进程级共享的英文规范化器
var DefaultNormalizer = NewNormalizer(language.English)

// NewNormalizer 按语言创建规范化器
func NewNormalizer(tag language.Tag) *Normalizer {
	return &Normalizer{tag: tag}
}

// NormalizeForMatch 转为小写。
// cases.Caser 带有内部状态，不能跨 goroutine 共享，因此每次调用单独创建。
func (n *Normalizer) NormalizeForMatch(text string) string {
	return cases.Lower(n.tag).String(text)
}
