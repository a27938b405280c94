package main

import (
    "context"
    "flag"
    "fmt"
    "os"
    "time"

    "github.com/joho/godotenv"
    "gorm.io/driver/mysql"
    "gorm.io/gorm"

    "github.com/mengeric/billing-collector-go/collector"
    "github.com/mengeric/billing-collector-go/config"
    "github.com/mengeric/billing-collector-go/driver"
    "github.com/mengeric/billing-collector-go/driver/localdir"
    "github.com/mengeric/billing-collector-go/logging"
    "github.com/mengeric/billing-collector-go/notifier"
    "github.com/mengeric/billing-collector-go/storage/gormstore"
    "github.com/mengeric/billing-collector-go/uploader"
)

// version 构建期通过 -ldflags 注入。
var version = "dev"

func main() {
    cfgFile := flag.String("config", "", "YAML 配置文件路径，可留空仅用环境变量")
    flag.Parse()

    // .env 不存在属正常情况
    if err := godotenv.Load(); err == nil {
        logging.L().Info(context.Background(), "loaded .env")
    }
    cfg, err := config.Load(*cfgFile)
    if err != nil {
        logging.L().Error(context.Background(), "load config failed", "file", *cfgFile, "err", err)
        os.Exit(1)
    }

    ctx, stop := collector.WithSignalCancel(context.Background())
    defer stop()

    store, err := buildStore(ctx, cfg)
    if err != nil {
        logging.L().Error(ctx, "init status store failed", "err", err)
        os.Exit(1)
    }
    up, err := buildUploader(ctx, cfg)
    if err != nil {
        logging.L().Error(ctx, "init uploader failed", "err", err)
        os.Exit(1)
    }

    var ntf notifier.Notifier = notifier.Nop{}
    if cfg.WebhookURL != "" {
        ntf = notifier.NewWebhook(cfg.WebhookURL, 3, 2*time.Second)
    } else {
        logging.L().Warn(ctx, "webhook url not configured, terminal notifications disabled")
    }

    registerDrivers(ctx, cfg)

    svc := collector.NewService(
        collector.WithListenAddr(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
        collector.WithVersion(version),
        collector.WithMaxPages(cfg.MaxPages),
        collector.WithProxyURL(cfg.ProxyURL),
        collector.WithWatch(
            time.Duration(cfg.Watch.EverySeconds)*time.Second,
            time.Duration(cfg.Watch.StallAfterSeconds)*time.Second,
        ),
        collector.WithRateLimits(cfg.RateLimit.RetrievePerMin, cfg.RateLimit.StatusPerMin, cfg.RateLimit.HealthPerMin),
        collector.WithStore(store),
        collector.WithUploader(up),
        collector.WithNotifier(ntf),
    )
    svc.Start(ctx)
    <-svc.Done()
    logging.L().Info(context.Background(), "collector stopped")
}

// buildStore 根据配置装配状态存储：有 DSN 用 MySQL，否则退化为内存存储。
func buildStore(ctx context.Context, cfg config.Config) (collector.Storage, error) {
    if cfg.Mysql.DataSource == "" {
        logging.L().Warn(ctx, "MYSQL_DSN empty, using in-memory status store (dev only)")
        return collector.NewMemStore(), nil
    }
    db, err := gorm.Open(mysql.Open(cfg.Mysql.DataSource), &gorm.Config{TranslateError: true})
    if err != nil {
        return nil, err
    }
    if err := gormstore.AutoMigrate(db); err != nil {
        return nil, err
    }
    return gormstore.New(db), nil
}

// buildUploader 根据配置装配上传器：配置了桶走 S3，否则退化为内存上传器。
func buildUploader(ctx context.Context, cfg config.Config) (uploader.Uploader, error) {
    if cfg.S3.Bucket == "" {
        logging.L().Warn(ctx, "S3_BUCKET empty, using in-memory uploader (dev only)")
        return uploader.NewMemory(), nil
    }
    return uploader.NewS3(uploader.S3Config{
        Endpoint:  cfg.S3.Endpoint,
        Region:    cfg.S3.Region,
        Bucket:    cfg.S3.Bucket,
        AccessKey: cfg.S3.AccessKey,
        SecretKey: cfg.S3.SecretKey,
        UseSSL:    cfg.S3.UseSSL,
    })
}

// registerDrivers 注册各运营商驱动。
// 真实门户驱动作为外部协作方在这里接入；未接入时用目录回放驱动兜底，便于联调。
func registerDrivers(ctx context.Context, cfg config.Config) {
    if cfg.ReplayDir != "" {
        d := localdir.New(cfg.ReplayDir)
        driver.Register(driver.CarrierUPS, d)
        driver.Register(driver.CarrierFedEx, d)
        logging.L().Info(ctx, "replay driver registered", "dir", cfg.ReplayDir)
        return
    }
    logging.L().Warn(ctx, "no retrieval driver configured, requests will be rejected as invalid")
}
