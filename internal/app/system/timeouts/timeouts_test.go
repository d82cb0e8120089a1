package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/eventdesk/internal/app/system/timeouts"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_IgnoresZeroValues(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{Short: 7 * time.Second})
	require.Equal(t, 7*time.Second, timeouts.Short())
	require.Equal(t, timeouts.DefaultMedium, timeouts.Medium())

	timeouts.Reset()
	require.Equal(t, timeouts.DefaultShort, timeouts.Short())
}

func TestConfigureFromEnv(t *testing.T) {
	t.Cleanup(timeouts.Reset)
	t.Setenv("EVENTDESK_TIMEOUT_EXPORT", "2m")
	t.Setenv("EVENTDESK_TIMEOUT_PING", "not-a-duration")
	t.Setenv("EVENTDESK_TIMEOUT_LONG", "-5s")

	require.Equal(t, 1, timeouts.ConfigureFromEnv())
	cur := timeouts.Current()
	require.Equal(t, 2*time.Minute, cur.Export)
	require.Equal(t, timeouts.DefaultPing, cur.Ping)
	require.Equal(t, timeouts.DefaultLong, cur.Long)
}

func TestWithTimeout_LogsDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, zap.New(core), "list registrations")
	<-ctx.Done()
	cancel()

	require.Equal(t, 1, logs.Len())
	require.Equal(t, "list registrations", logs.All()[0].ContextMap()["operation"])
}

func TestWithTimeout_QuietOnEarlyCancel(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	_, cancel := timeouts.WithTimeout(context.Background(), time.Hour, zap.New(core), "detail")
	cancel()
	require.Zero(t, logs.Len())
}
