package config

import (
	"net/url"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"ADDR", "DB_DRIVER", "DB_DSN", "LOCATION_STRATEGY", "GEO_TIMEOUT", "REQUEST_TIMEOUT", "REDIS_HOST", "CLIENT_ADDR_HEADER"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	if c.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", c.Addr)
	}
	if c.DB.Driver != "postgres" {
		t.Errorf("Driver = %q, want postgres", c.DB.Driver)
	}
	if c.Geo.Strategy != StrategyFixed {
		t.Errorf("Strategy = %q, want %q", c.Geo.Strategy, StrategyFixed)
	}
	if c.Geo.Timeout != 3*time.Second {
		t.Errorf("Geo.Timeout = %v, want 3s", c.Geo.Timeout)
	}
	if c.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", c.RequestTimeout)
	}
	if c.ClientAddrHeader != "" {
		t.Errorf("ClientAddrHeader = %q, want empty so forwarded headers are ignored by default", c.ClientAddrHeader)
	}
	if c.Redis.Addr() != "" {
		t.Errorf("Redis.Addr() = %q, want empty when REDIS_HOST unset", c.Redis.Addr())
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", " SQLite ")
	t.Setenv("SQLITE_PATH", "/tmp/v.db")
	t.Setenv("GEO_TIMEOUT", "750ms")
	t.Setenv("REQUEST_TIMEOUT", "5")
	t.Setenv("PG_MAX_OPEN_CONNS", "oops")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	c := FromEnv()
	if c.DB.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", c.DB.Driver)
	}
	if got := c.DB.DSNString(); got != "/tmp/v.db?_pragma=busy_timeout(5000)" {
		t.Errorf("DSNString() = %q", got)
	}
	if c.Geo.Timeout != 750*time.Millisecond {
		t.Errorf("Geo.Timeout = %v", c.Geo.Timeout)
	}
	if c.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v", c.RequestTimeout)
	}
	if c.DB.MaxOpen != 50 {
		t.Errorf("MaxOpen = %d, want fallback 50", c.DB.MaxOpen)
	}
	if c.Redis.Addr() != "cache:6380" {
		t.Errorf("Redis.Addr() = %q", c.Redis.Addr())
	}
}

func TestPostgresDSN(t *testing.T) {
	d := DB{Driver: "pgx", Host: "db", Port: "5433", User: "u", Password: "p", Name: "visits", SSLMode: "require"}
	want := "postgres://u:p@db:5433/visits?sslmode=require"
	if got := d.DSNString(); got != want {
		t.Errorf("DSNString() = %q, want %q", got, want)
	}

	d.User, d.Password, d.Host, d.Port, d.Name = "app user", "p@ss/w#rd:1", "127.0.0.1", "1", "db"
	u, err := url.Parse(d.DSNString())
	if err != nil {
		t.Fatalf("DSNString() %q does not parse: %v", d.DSNString(), err)
	}
	if pw, _ := u.User.Password(); pw != "p@ss/w#rd:1" || u.User.Username() != "app user" {
		t.Errorf("userinfo = %q/%q", u.User.Username(), pw)
	}
	if u.Host != "127.0.0.1:1" || u.Path != "/db" || u.Query().Get("sslmode") != "require" {
		t.Errorf("DSNString() = %q, host/db/sslmode misparsed", d.DSNString())
	}

	d.DSN = "postgres://override"
	if got := d.DSNString(); got != "postgres://override" {
		t.Errorf("DSNString() with DSN = %q", got)
	}
}

func TestValidate(t *testing.T) {
	base := Config{DB: DB{Driver: "sqlite"}, Geo: Geo{Strategy: StrategyFixed}, RequestTimeout: time.Second}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"fixed ok", func(c *Config) {}, false},
		{"bad driver", func(c *Config) { c.DB.Driver = "mysql" }, true},
		{"geo without source", func(c *Config) { c.Geo.Strategy = StrategyGeo }, true},
		{"geo with endpoint", func(c *Config) { c.Geo.Strategy = StrategyGeo; c.Geo.Endpoint = "http://geo/{ip}" }, false},
		{"geo with ipdb", func(c *Config) { c.Geo.Strategy = StrategyGeo; c.Geo.IPDBPath = "data/ipip/city.ipdb" }, false},
		{"unknown strategy", func(c *Config) { c.Geo.Strategy = "random" }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
	}
	for _, tc := range tests {
		c := base
		tc.mutate(&c)
		err := c.Validate()
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}
