package router

import (
	"context"
	"errors"

	"resume-matcher/internal/api/handler"
	"resume-matcher/internal/constants"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
)

// ErrInvalidAPIKey 请求携带的 API Key 不在配置列表中
var ErrInvalidAPIKey = errors.New("无效的 API Key")

// RegisterRoutes 注册 API 路由。apiKeys 为空时上传接口不做鉴权。
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler, apiKeys []string) {
	var middlewares []app.HandlerFunc
	if len(apiKeys) > 0 {
		middlewares = append(middlewares, NewKeyAuth(apiKeys))
	}

	api := h.Group("/", middlewares...)
	api.POST("/single_resume", resumeHandler.SingleResume)
	api.POST("/bulk_resume", resumeHandler.BulkResume)

	// 健康检查不需要鉴权
	h.GET("/health", resumeHandler.Health)
}

// NewKeyAuth 基于 X-API-Key 请求头的鉴权中间件
func NewKeyAuth(apiKeys []string) app.HandlerFunc {
	allowed := make(map[string]struct{}, len(apiKeys))
	for _, key := range apiKeys {
		allowed[key] = struct{}{}
	}

	return keyauth.New(
		keyauth.WithKeyLookUp("header:"+constants.HeaderAPIKey, ""),
		keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
			if _, ok := allowed[key]; !ok {
				return false, ErrInvalidAPIKey
			}
			return true, nil
		}),
		keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
			c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{
				"success":         false,
				"responseMessage": "无效或缺失的 API Key",
				"responseCode":    "401",
				"data":            utils.H{},
			})
		}),
	)
}
