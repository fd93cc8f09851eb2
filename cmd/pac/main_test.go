package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/pac/internal/adapters/metrics"
	"go.trai.ch/pac/internal/app"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newApp(ctrl *gomock.Controller, loader *mocks.MockGlobalConfigLoader, log *mocks.MockLogger) *app.App {
	return app.New(
		loader,
		mocks.NewMockPackageLoader(ctrl),
		nil,
		mocks.NewMockPacker(ctrl),
		mocks.NewMockHasher(ctrl),
		mocks.NewMockSourceFetcher(ctrl),
		mocks.NewMockTelemetry(ctrl),
		log,
		metrics.New(),
	)
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockLogger := mocks.NewMockLogger(ctrl)
	application := newApp(ctrl, mocks.NewMockGlobalConfigLoader(ctrl), mockLogger)

	cleaned := false
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:    application,
			Logger: mockLogger,
		}, func() { cleaned = true }, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)
	assert.Equal(t, 0, exitCode)
	assert.True(t, cleaned)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 and logs when the command fails.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockLoader := mocks.NewMockGlobalConfigLoader(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)
	application := newApp(ctrl, mockLoader, mockLogger)

	mockLoader.EXPECT().Load("/missing.yaml").Return(nil, domain.ErrConfiguration)
	mockLogger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:    application,
			Logger: mockLogger,
		}, func() {}, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"build", "--config", "/missing.yaml"}, stderr, provider)
	assert.Equal(t, 1, exitCode)
}
