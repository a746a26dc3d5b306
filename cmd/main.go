package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-matcher/internal/api/handler"
	"resume-matcher/internal/api/router"
	"resume-matcher/internal/config"
	appCoreLogger "resume-matcher/internal/logger"
	"resume-matcher/internal/processor"
	"resume-matcher/internal/resume"
	"resume-matcher/internal/storage"
	"resume-matcher/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

var (
	version = "1.0.0" //nolint:gochecknoglobals
)

func main() {
	var configPath, sampleConfigPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.StringVar(&sampleConfigPath, "init-config", "", "Write a sample config file to this path and exit")
	pflag.Parse()

	if sampleConfigPath != "" {
		if err := config.CreateSampleConfig(sampleConfigPath); err != nil {
			appCoreLogger.Fatal().Err(err).Msg("生成示例配置失败")
		}
		appCoreLogger.Info().Str("path", sampleConfigPath).Msg("示例配置已生成")
		return
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		appCoreLogger.Fatal().Err(err).Msg("加载配置失败")
	}
	initLogger(cfg)
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		shutdownTracing, err = tracing.InitProvider(ctx, tracing.ProviderConfig{
			Endpoint:    cfg.Tracing.OTLPEndpoint,
			ServiceName: cfg.Tracing.ServiceName,
			Version:     version,
			Insecure:    cfg.Tracing.Insecure,
		})
		if err != nil {
			glog.Fatalf("初始化链路追踪失败: %v", err)
		}
		glog.Infof("链路追踪已启用，导出地址: %s", cfg.Tracing.OTLPEndpoint)
	}

	storageManager, err := storage.NewStorage(ctx, cfg, appCoreLogger.Logger)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()

	pdfExtractor, err := processor.BuildPDFExtractor(ctx, cfg, appCoreLogger.Logger)
	if err != nil {
		glog.Fatalf("创建PDF提取器失败: %v", err)
	}

	contactExtractor, err := resume.NewContactExtractor(cfg.Analyzer.PhoneRegion)
	if err != nil {
		glog.Fatalf("创建联系信息提取器失败: %v", err)
	}
	glog.Infof("电话号码规则地区: %s", contactExtractor.Region())

	compOpts := []processor.ComponentOpt{
		processor.WithPDFExtractor(pdfExtractor),
		processor.WithContactExtractor(contactExtractor),
	}
	// 未启用的存储组件不能以 nil 指针形式放进接口
	if storageManager.Redis != nil {
		compOpts = append(compOpts, processor.WithTextCache(storageManager.Redis))
	}
	if storageManager.MinIO != nil {
		compOpts = append(compOpts, processor.WithUploadArchiver(storageManager.MinIO))
	}
	analyzer := processor.NewResumeAnalyzer(compOpts, []processor.SettingOpt{
		processor.WithDocumentTimeout(cfg.DocumentTimeout()),
		processor.WithLogger(appCoreLogger.Logger),
	})
	glog.Infof("简历分析器初始化成功，单份超时: %s", cfg.DocumentTimeout())

	resumeHandler := handler.NewResumeHandler(analyzer, appCoreLogger.Logger)

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(cfg.MaxRequestBodySize()),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, resumeHandler, cfg.Server.APIKeys)
	if len(cfg.Server.APIKeys) == 0 {
		glog.Warn("未配置 server.api_keys，上传接口不做鉴权")
	}
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Errorf("关闭链路追踪失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// initLogger 初始化应用日志，并让 Hertz 的 glog 通过适配器输出到同一个 zerolog 实例
func initLogger(cfg *config.Config) {
	appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	glog.SetLogger(hertzadapter.From(appCoreLogger.Logger))
	if cfg.Logger.Level == "debug" {
		glog.SetLevel(glog.LevelDebug)
	} else {
		glog.SetLevel(glog.LevelInfo)
	}
}
