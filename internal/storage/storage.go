package storage

import (
	"context"
	"fmt"

	"resume-matcher/internal/config"

	"github.com/rs/zerolog"
)

// Storage 存储管理器，两个组件都是可选的
type Storage struct {
	// 原始上传文件归档
	MinIO *MinIO

	// 解码文本缓存
	Redis *Redis

	logger zerolog.Logger
}

// NewStorage 按配置初始化存储组件。
// 未配置的组件保持为 nil；已配置但初始化失败时返回错误。
func NewStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	s := &Storage{logger: logger}
	var err error

	if cfg.MinIO.Endpoint != "" {
		s.MinIO, err = NewMinIO(ctx, &cfg.MinIO, logger)
		if err != nil {
			return nil, fmt.Errorf("初始化MinIO失败: %w", err)
		}
	} else {
		logger.Info().Msg("MinIO未配置, 跳过上传归档")
	}

	if cfg.Redis.Address != "" {
		s.Redis, err = NewRedisAdapter(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("初始化Redis失败: %w", err)
		}
		logger.Info().Str("address", cfg.Redis.Address).Msg("Redis客户端初始化成功")
	} else {
		logger.Info().Msg("Redis未配置, 跳过解码文本缓存")
	}

	return s, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("关闭Redis连接失败")
		}
	}
}
