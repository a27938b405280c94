package config

import (
    "os"
    "strconv"

    "gopkg.in/yaml.v3"
)

// Load 从 YAML 文件加载配置，随后应用环境变量覆盖与默认值。
// 参数：file 为空时跳过文件读取，仅使用环境变量与默认值。
func Load(file string) (Config, error) {
    var c Config
    if file != "" {
        b, err := os.ReadFile(file)
        if err != nil {
            return c, err
        }
        if err := yaml.Unmarshal(b, &c); err != nil {
            return c, err
        }
    }
    c.ApplyEnv()
    c.withDefaults()
    return c, nil
}

// MustLoad 从 YAML 文件加载配置（失败 panic）。
func MustLoad(file string) Config {
    c, err := Load(file)
    if err != nil {
        panic(err)
    }
    return c
}

// ApplyEnv 应用环境变量覆盖。环境变量优先级高于文件。
func (c *Config) ApplyEnv() {
    setStr(&c.Host, "COLLECTOR_HOST")
    setInt(&c.Port, "COLLECTOR_PORT")
    setStr(&c.Mysql.DataSource, "MYSQL_DSN")
    setStr(&c.S3.Endpoint, "S3_ENDPOINT")
    setStr(&c.S3.Region, "S3_REGION")
    setStr(&c.S3.Bucket, "S3_BUCKET")
    setStr(&c.S3.AccessKey, "S3_ACCESS_KEY")
    setStr(&c.S3.SecretKey, "S3_SECRET_KEY")
    setBool(&c.S3.UseSSL, "S3_USE_SSL")
    setStr(&c.WebhookURL, "WEBHOOK_URL")
    setInt(&c.MaxPages, "MAX_PAGES")
    setStr(&c.ProxyURL, "PROXY_URL")
    setStr(&c.ReplayDir, "REPLAY_DIR")
    setInt(&c.Watch.EverySeconds, "WATCH_EVERY_SECONDS")
    setInt(&c.Watch.StallAfterSeconds, "WATCH_STALL_AFTER_SECONDS")
}

func setStr(dst *string, key string) {
    if v := os.Getenv(key); v != "" {
        *dst = v
    }
}

func setInt(dst *int, key string) {
    if v := os.Getenv(key); v != "" {
        if n, err := strconv.Atoi(v); err == nil {
            *dst = n
        }
    }
}

func setBool(dst *bool, key string) {
    if v := os.Getenv(key); v != "" {
        if b, err := strconv.ParseBool(v); err == nil {
            *dst = b
        }
    }
}
