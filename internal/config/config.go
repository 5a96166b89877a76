// 包 config：集中读取环境变量配置，替代散落在各处的 os.Getenv；.env 由入口通过 godotenv 预先加载
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StrategyFixed = "fixed"
	StrategyGeo   = "geo"
)

// DB：存储连接配置
// 约束：Driver 取值 postgres（lib/pq）、pgx（pgx stdlib）、sqlite（modernc）；DSN 非空时优先生效
type DB struct {
	Driver     string
	DSN        string
	SQLitePath string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	MaxOpen    int
	MaxIdle    int
}

// Redis：可选的地理查询缓存；Host 为空表示禁用
type Redis struct {
	Host string
	Port string
	Pass string
	DB   int
}

// Geo：位置解析策略与外部数据源
type Geo struct {
	Strategy      string
	Endpoint      string
	Timeout       time.Duration
	MMDBPath      string
	IPDBPath      string
	IPDBLang      string
	IP2RegionPath string
	CacheTTL      time.Duration
}

// Config：ClientAddrHeader 为空时只信任连接远端地址，部署在反向代理之后时显式开启
type Config struct {
	Addr             string
	DB               DB
	Redis            Redis
	Geo              Geo
	ClientAddrHeader string
	RequestTimeout   time.Duration
}

// FromEnv：读取进程环境变量构建配置
// 约束：数值与时长解析失败时静默回退默认值，与原有 PG_MAX_OPEN_CONNS 的处理一致
func FromEnv() Config {
	c := Config{
		Addr: str("ADDR", ":8080"),
		DB: DB{
			Driver:     strings.ToLower(strings.TrimSpace(str("DB_DRIVER", "postgres"))),
			DSN:        os.Getenv("DB_DSN"),
			SQLitePath: str("SQLITE_PATH", "visits.db"),
			Host:       str("PG_HOST", "localhost"),
			Port:       str("PG_PORT", "5432"),
			User:       str("PG_USER", "postgres"),
			Password:   os.Getenv("PG_PASSWORD"),
			Name:       str("PG_DB", "visitmap"),
			SSLMode:    str("PG_SSLMODE", "disable"),
			MaxOpen:    num("PG_MAX_OPEN_CONNS", 50),
			MaxIdle:    num("PG_MAX_IDLE_CONNS", 25),
		},
		Redis: Redis{
			Host: os.Getenv("REDIS_HOST"),
			Port: str("REDIS_PORT", "6379"),
			Pass: os.Getenv("REDIS_PASS"),
			DB:   num("REDIS_DB", 0),
		},
		Geo: Geo{
			Strategy:      strings.ToLower(strings.TrimSpace(str("LOCATION_STRATEGY", StrategyFixed))),
			Endpoint:      os.Getenv("GEO_ENDPOINT"),
			Timeout:       dur("GEO_TIMEOUT", 3*time.Second),
			MMDBPath:      os.Getenv("GEO_MMDB_PATH"),
			IPDBPath:      os.Getenv("GEO_IPDB_PATH"),
			IPDBLang:      str("GEO_IPDB_LANG", "EN"),
			IP2RegionPath: os.Getenv("GEO_IP2REGION_PATH"),
			CacheTTL:      dur("GEO_CACHE_TTL", 24*time.Hour),
		},
		ClientAddrHeader: os.Getenv("CLIENT_ADDR_HEADER"),
		RequestTimeout:   dur("REQUEST_TIMEOUT", 10*time.Second),
	}
	if c.Redis.DB < 0 {
		c.Redis.DB = 0
	}
	return c
}

// Validate：启动前校验互相依赖的配置项
func (c Config) Validate() error {
	switch c.DB.Driver {
	case "postgres", "pgx", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	switch c.Geo.Strategy {
	case StrategyFixed:
	case StrategyGeo:
		if c.Geo.Endpoint == "" && c.Geo.MMDBPath == "" && c.Geo.IPDBPath == "" && c.Geo.IP2RegionPath == "" {
			return errors.New("LOCATION_STRATEGY=geo needs one of GEO_ENDPOINT, GEO_MMDB_PATH, GEO_IPDB_PATH, GEO_IP2REGION_PATH")
		}
	default:
		return fmt.Errorf("unsupported LOCATION_STRATEGY %q", c.Geo.Strategy)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// DSNString：按驱动生成连接串
// 约束：postgres/pgx 共用 URL 形式，用户名与密码按 userinfo 转义；sqlite 为文件路径，非内存库附加 busy_timeout
func (d DB) DSNString() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Driver == "sqlite" {
		if d.SQLitePath == ":memory:" || strings.Contains(d.SQLitePath, "?") {
			return d.SQLitePath
		}
		return d.SQLitePath + "?_pragma=busy_timeout(5000)"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.User(d.User),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	if d.Password != "" {
		u.User = url.UserPassword(d.User, d.Password)
	}
	return u.String()
}

// Addr：Redis 未启用时返回空串
func (r Redis) Addr() string {
	if r.Host == "" {
		return ""
	}
	return net.JoinHostPort(r.Host, r.Port)
}

func str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func num(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func dur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}
