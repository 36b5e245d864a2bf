package configwatcher

import (
	"context"
	"course_market_backend/internal/config"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMode(t *testing.T, dir, mode string) {
	t.Helper()
	body := []byte("storage:\n  type: minio\npayment:\n  stripe_secret_key: sk_test_x\n  currency_mode: " + mode + "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), body, 0o644))
}

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	writeMode(t, dir, config.CurrencyModeCaller)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, dir, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// 等待 watcher 注册目录
	time.Sleep(200 * time.Millisecond)
	writeMode(t, dir, config.CurrencyModeFixed)

	select {
	case cfg := <-reloaded:
		assert.Equal(t, config.CurrencyModeFixed, cfg.Payment.CurrencyMode)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
