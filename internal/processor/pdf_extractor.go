package processor

import (
	"context"
	"time"

	"resume-matcher/internal/config"
	"resume-matcher/internal/parser"

	"github.com/rs/zerolog"
)

// BuildPDFExtractor 根据配置返回合适的PDF解析器实现
func BuildPDFExtractor(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (PDFExtractor, error) {
	timeout := time.Duration(cfg.PDF.Timeout) * time.Second

	if cfg.PDF.Type == "tika" && cfg.PDF.TikaServerURL != "" {
		logger.Info().Str("server", cfg.PDF.TikaServerURL).Msg("使用Tika PDF解析器")
		return parser.NewTikaPDFExtractor(cfg.PDF.TikaServerURL,
			parser.WithMetadataMode(parser.MetadataMode(cfg.PDF.MetadataMode)),
			parser.WithTimeout(timeout),
			parser.WithTikaLogger(logger),
		), nil
	}

	logger.Info().Msg("使用Eino PDF解析器")
	return parser.NewEinoPDFTextExtractor(ctx,
		parser.WithEinoLogger(logger),
		parser.WithEinoTimeout(timeout),
	)
}
