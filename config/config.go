package config

// Config 服务运行所需的完整配置。
// 功能：承载 HTTP 监听、状态存储（MySQL）、对象存储（S3 兼容）、回调通知与抓取驱动相关配置。
// 说明：所有字段均可通过环境变量覆盖，见 ApplyEnv；YAML 文件为可选项。
type Config struct {
    Host string `yaml:"host"` // 服务监听地址，例如 0.0.0.0
    Port int    `yaml:"port"` // 服务监听端口，例如 8686

    Mysql struct {
        // DataSource 形如 user:pass@tcp(127.0.0.1:3306)/billing?charset=utf8mb4&parseTime=true&loc=Local；
        // 留空时使用内置内存存储（仅开发场景）。
        DataSource string `yaml:"dataSource"`
    } `yaml:"mysql"`

    S3 struct {
        Endpoint  string `yaml:"endpoint"` // 形如 s3.amazonaws.com 或 127.0.0.1:9000
        Region    string `yaml:"region"`
        Bucket    string `yaml:"bucket"` // 留空时使用内置内存上传器（仅开发场景）
        AccessKey string `yaml:"accessKey"`
        SecretKey string `yaml:"secretKey"`
        UseSSL    bool   `yaml:"useSSL"`
    } `yaml:"s3"`

    WebhookURL string `yaml:"webhookUrl"` // 终态回调地址，留空则不发送通知

    MaxPages  int    `yaml:"maxPages"`  // 账单门户翻页上限，防止无界翻页
    ProxyURL  string `yaml:"proxyUrl"`  // 抓取驱动使用的代理凭据（可选）
    ReplayDir string `yaml:"replayDir"` // localdir 驱动的回放目录（开发场景）

    Watch struct {
        EverySeconds      int `yaml:"everySeconds"`      // 滞留任务巡检周期
        StallAfterSeconds int `yaml:"stallAfterSeconds"` // 超过该时长未更新的非终态任务视为滞留
    } `yaml:"watch"`

    RateLimit struct {
        RetrievePerMin int `yaml:"retrievePerMin"`
        StatusPerMin   int `yaml:"statusPerMin"`
        HealthPerMin   int `yaml:"healthPerMin"`
    } `yaml:"rateLimit"`
}

// withDefaults 填充默认值。
func (c *Config) withDefaults() {
    if c.Host == "" {
        c.Host = "0.0.0.0"
    }
    if c.Port <= 0 {
        c.Port = 8686
    }
    if c.MaxPages <= 0 {
        c.MaxPages = 50
    }
    if c.Watch.EverySeconds <= 0 {
        c.Watch.EverySeconds = 60
    }
    if c.Watch.StallAfterSeconds <= 0 {
        c.Watch.StallAfterSeconds = 600
    }
    if c.RateLimit.RetrievePerMin <= 0 {
        c.RateLimit.RetrievePerMin = 5
    }
    if c.RateLimit.StatusPerMin <= 0 {
        c.RateLimit.StatusPerMin = 10
    }
    if c.RateLimit.HealthPerMin <= 0 {
        c.RateLimit.HealthPerMin = 50
    }
}
