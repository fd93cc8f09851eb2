package runtimetag_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/pac/internal/adapters/runtimetag"
	"go.trai.ch/pac/internal/adapters/shell"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestDetector_DetectRuntimeTag(t *testing.T) {
	tests := []struct {
		name    string
		command []string
		wantTag domain.RuntimeTag
		wantOK  bool
	}{
		{
			name:    "quoted release",
			command: []string{"sh", "-c", `echo '"26"'`},
			wantTag: "26",
			wantOK:  true,
		},
		{
			name:    "plain release",
			command: []string{"sh", "-c", "echo 25"},
			wantTag: "25",
			wantOK:  true,
		},
		{
			name:    "non-zero exit",
			command: []string{"sh", "-c", "echo 26; exit 1"},
			wantTag: domain.UnknownRuntime,
		},
		{
			name:    "empty output",
			command: []string{"sh", "-c", "true"},
			wantTag: domain.UnknownRuntime,
		},
		{
			name:    "unparseable output",
			command: []string{"sh", "-c", "echo command not found: erl"},
			wantTag: domain.UnknownRuntime,
		},
		{
			name:    "missing binary",
			command: []string{"pac-missing-runtime-xyz"},
			wantTag: domain.UnknownRuntime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			log := mocks.NewMockLogger(ctrl)
			if !tt.wantOK {
				log.EXPECT().Warn(gomock.Any()).Times(1)
			}

			d := runtimetag.NewDetector(shell.NewExecutor(log), log, tt.command)
			tag, ok := d.DetectRuntimeTag(context.Background())
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTag, tag)
		})
	}
}
