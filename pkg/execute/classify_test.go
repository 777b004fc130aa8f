package execute

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want Stage
	}{
		{"Pulling fs layer 3f2a1", StagePulling},
		{"Downloading [====>   ]", StagePulling},
		{"Creating container db", StageStarting},
		{"waiting for database to be ready", StageWaiting},
		{"service is healthy", StageHealthy},
		{"API available at http://127.0.0.1:54321", StageHealthy},
		{"Error response from daemon", StageError},
		{"error while starting container", StageError},
		{"some unrelated chatter", StageUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStage(tt.line))
		})
	}
}

func TestClassifyFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		res  *ProcessResult
		want FailureKind
	}{
		{
			name: "timeout wins",
			res:  &ProcessResult{TimedOut: true, Stderr: "address already in use"},
			want: FailureTimeout,
		},
		{
			name: "port conflict",
			res:  &ProcessResult{ExitCode: 1, Stderr: "bind: address already in use"},
			want: FailurePortConflict,
		},
		{
			name: "docker port allocation",
			res:  &ProcessResult{ExitCode: 125, Stdout: "port is already allocated"},
			want: FailurePortConflict,
		},
		{
			name: "permission",
			res:  &ProcessResult{ExitCode: 1, Stderr: "permission denied while trying to connect"},
			want: FailurePermission,
		},
		{
			name: "generic",
			res:  &ProcessResult{ExitCode: 1, Stderr: "something odd"},
			want: FailureGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failure := ClassifyFailure(tt.res)
			assert.Equal(t, tt.want, failure.Kind)
			assert.NotEmpty(t, failure.Advice)
		})
	}
}
