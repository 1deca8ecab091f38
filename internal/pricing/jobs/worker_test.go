package jobs

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"repricer/internal/config"
)

func TestRedisOpt(t *testing.T) {
	opt := RedisOpt(config.RedisConfig{Addr: "redis:6379", Password: "secret", DB: 3})

	assert.Equal(t, "redis:6379", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 3, opt.DB)
}

func TestNewWorker(t *testing.T) {
	task, err := NewRunPassTask(RunPassPayload{AllActive: true})
	require.NoError(t, err)

	handler := func(context.Context, *asynq.Task) error { return nil }

	w, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "localhost:6379"},
		Logger:    zap.NewNop(),
		Handlers:  []TaskHandler{{Type: TaskTypeRunPass, Handler: handler}},
		Cron:      []CronRegistration{{Spec: "@every 15m", Task: task}},
	})
	require.NoError(t, err)
	assert.NotNil(t, w.scheduler)
}

func TestNewWorker_InvalidCron(t *testing.T) {
	task, err := NewRunPassTask(RunPassPayload{AllActive: true})
	require.NoError(t, err)

	_, err = NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "localhost:6379"},
		Cron:      []CronRegistration{{Spec: "every tuesday", Task: task}},
	})
	assert.Error(t, err)
}

func TestWorker_RunNil(t *testing.T) {
	var w *Worker
	assert.Error(t, w.Run(context.Background()))
}
