//go:build !integration

package redis

import (
	"testing"
	"time"

	"celebrity-subscription/internal/config"
)

func TestOptions(t *testing.T) {
	t.Run("host and port", func(t *testing.T) {
		opts, err := options(&config.RedisConfig{URL: "localhost:6379", DB: 2, Password: "pw", PoolSize: 7, OpTimeout: time.Second})
		if err != nil {
			t.Fatalf("options() error = %v", err)
		}
		if opts.Addr != "localhost:6379" || opts.DB != 2 || opts.Password != "pw" || opts.PoolSize != 7 || opts.ReadTimeout != time.Second {
			t.Errorf("unexpected options %+v", opts)
		}
	})

	t.Run("url with explicit password override", func(t *testing.T) {
		opts, err := options(&config.RedisConfig{URL: "redis://:urlpw@cache:6380/3", Password: "override"})
		if err != nil {
			t.Fatalf("options() error = %v", err)
		}
		if opts.Addr != "cache:6380" || opts.DB != 3 || opts.Password != "override" {
			t.Errorf("unexpected options %+v", opts)
		}
	})

	t.Run("bad url", func(t *testing.T) {
		if _, err := options(&config.RedisConfig{URL: "redis://host:notaport/x"}); err == nil {
			t.Error("expected a parse error")
		}
	})
}
