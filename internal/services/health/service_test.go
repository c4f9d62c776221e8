package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestStatusOK(t *testing.T) {
	svc := NewService(pingFunc(func(context.Context) error { return nil }))
	body, ok := svc.Status(context.Background())
	assert.True(t, ok)
	assert.Equal(t, true, body["ok"])
}

func TestStatusReportsStoreFailure(t *testing.T) {
	svc := NewService(pingFunc(func(context.Context) error { return errors.New("disk I/O error") }))
	body, ok := svc.Status(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "disk I/O error", body["store"])
}

func TestStatusWithoutStore(t *testing.T) {
	var svc *Service
	_, ok := svc.Status(context.Background())
	assert.False(t, ok)
}
