package utils

import (
	"context"
	"testing"
	"visit-map/internal/config"
)

func TestOpenStoreSQLiteMemory(t *testing.T) {
	st, err := OpenStore("sqlite", ":memory:", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if st.Driver() != "sqlite" {
		t.Errorf("Driver() = %q", st.Driver())
	}
	if got := st.DB().Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}
	if err := st.PingContext(context.Background()); err != nil {
		t.Errorf("PingContext() = %v", err)
	}
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenStore("mysql", "x", 0, 0); err == nil {
		t.Fatal("OpenStore(mysql) succeeded, want error")
	}
}

func TestOpenRedisDisabled(t *testing.T) {
	if rc := OpenRedis(config.Redis{}); rc != nil {
		t.Fatalf("OpenRedis without host = %v, want nil", rc)
	}
	rc := OpenRedis(config.Redis{Host: "127.0.0.1", Port: "6379", DB: 2})
	if rc == nil {
		t.Fatal("OpenRedis with host = nil")
	}
	defer rc.Close()
	if rc.Options().DB != 2 || rc.Options().Addr != "127.0.0.1:6379" {
		t.Errorf("options = %+v", rc.Options())
	}
}
