package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Station-Manager/bk178x"
)

// recordingClient records each call as "name value".
type recordingClient struct {
	calls []string
	err   error
}

func (r *recordingClient) rec(name string, v any) error {
	r.calls = append(r.calls, fmt.Sprintf("%s %v", name, v))
	return r.err
}

func (r *recordingClient) SetRemoteMode(_ context.Context, v bool) error { return r.rec("remote", v) }
func (r *recordingClient) SetOutput(_ context.Context, v bool) error { return r.rec("output", v) }
func (r *recordingClient) SetVoltage(_ context.Context, v uint32) error { return r.rec("voltage", v) }
func (r *recordingClient) SetCurrent(_ context.Context, v uint16) error { return r.rec("current", v) }
func (r *recordingClient) EnableLocalKey(_ context.Context, v bool) error {
	return r.rec("localkey", v)
}
func (r *recordingClient) Exec(_ context.Context, f bk178x.Frame) error { return r.rec("exec", f) }
func (r *recordingClient) Close() error { return nil }

func TestRunLine(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"remote on", "remote true"},
		{"REMOTE off", "remote false"},
		{"output 1", "output true"},
		{"output false", "output false"},
		{"voltage 12000", "voltage 12000"},
		{"current 65535", "current 65535"},
		{"localkey on", "localkey true"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			c := &recordingClient{}
			require.NoError(t, runLine(context.Background(), c, tt.line))
			assert.Equal(t, []string{tt.want}, c.calls)
		})
	}
}

func TestRunLine_Errors(t *testing.T) {
	bad := []string{
		"",
		"voltage",
		"voltage 1 2",
		"voltage -5",
		"voltage 4294967296",
		"current 65536",
		"output maybe",
		"reboot now",
	}
	for _, line := range bad {
		c := &recordingClient{}
		assert.Error(t, runLine(context.Background(), c, line), line)
		assert.Empty(t, c.calls, line)
	}
}

func TestRunLine_PropagatesDeviceError(t *testing.T) {
	devErr := &bk178x.StatusError{Command: bk178x.CmdSetVoltage, Status: bk178x.StatusIncorrectParameter}
	c := &recordingClient{err: devErr}

	err := runLine(context.Background(), c, "voltage 99999999")
	assert.ErrorIs(t, err, bk178x.ErrDeviceRejected)
	assert.Equal(t, bk178x.StatusIncorrectParameter, bk178x.StatusOf(err))
}

func TestNewLogger_FallsBackToInfo(t *testing.T) {
	l := newLogger("nonsense", "")
	assert.Equal(t, "info", l.GetLevel().String())

	l = newLogger("debug", "")
	assert.Equal(t, "debug", l.GetLevel().String())
}
