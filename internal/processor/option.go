package processor

import (
	"time"

	"resume-matcher/internal/resume"

	"github.com/rs/zerolog"
)

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// ----- 组件选项 -----

// WithPDFExtractor 设置PDF提取器组件
func WithPDFExtractor(extractor PDFExtractor) ComponentOpt {
	return func(c *Components) {
		c.PDFExtractor = extractor
	}
}

// WithContactExtractor 设置联系信息提取规则（电话号码地区）
func WithContactExtractor(extractor *resume.ContactExtractor) ComponentOpt {
	return func(c *Components) {
		c.Contact = extractor
	}
}

// WithTextCache 设置解码文本缓存
func WithTextCache(cache TextCache) ComponentOpt {
	return func(c *Components) {
		c.TextCache = cache
	}
}

// WithUploadArchiver 设置原始文件归档
func WithUploadArchiver(archiver UploadArchiver) ComponentOpt {
	return func(c *Components) {
		c.Archiver = archiver
	}
}

// WithNormalizer 设置匹配用的文本规范化器
func WithNormalizer(normalizer *resume.Normalizer) ComponentOpt {
	return func(c *Components) {
		c.Normalizer = normalizer
	}
}

// ----- 设置选项 -----

// WithDocumentTimeout 设置单份简历的处理超时
func WithDocumentTimeout(timeout time.Duration) SettingOpt {
	return func(s *Settings) {
		if timeout > 0 {
			s.DocumentTimeout = timeout
		}
	}
}

// WithClock 设置时钟，计算工作年限时使用
func WithClock(clock Clock) SettingOpt {
	return func(s *Settings) {
		if clock != nil {
			s.Clock = clock
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger zerolog.Logger) SettingOpt {
	return func(s *Settings) {
		s.Logger = logger
	}
}
