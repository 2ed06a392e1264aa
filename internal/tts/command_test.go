package tts

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, name string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	text, _ := io.ReadAll(stdin)
	ret := m.Called(name, args, string(text))

	if fn, ok := ret.Get(0).(func(args []string) []byte); ok {
		return fn(args), nil, ret.Error(2)
	}
	stdout, _ := ret.Get(0).([]byte)
	stderr, _ := ret.Get(1).([]byte)
	return stdout, stderr, ret.Error(2)
}

func outputArg(args []string) string {
	for i, a := range args {
		if a == "--output_file" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestCommandSynthesizeWritesThroughFile(t *testing.T) {
	runner := new(mockRunner)
	runner.On("Run", "/bin/piper", mock.Anything, "hello").
		Return(func(args []string) []byte {
			require.NoError(t, os.WriteFile(outputArg(args), []byte("RIFFdata"), 0o600))
			return nil
		}, nil, nil).Once()

	exec := NewExecutorWithRunner("/bin/piper", time.Second, runner)
	c := NewCommandSynthesizer(exec, []string{"--model", "en.onnx", "--output_file", OutputPlaceholder}, "audio/wav", t.TempDir())

	var buf bytes.Buffer
	require.NoError(t, c.Synthesize(context.Background(), "hello", &buf))
	assert.Equal(t, "RIFFdata", buf.String())

	args := runner.Calls[0].Arguments.Get(1).([]string)
	out := outputArg(args)
	assert.True(t, strings.HasSuffix(out, ".wav"))
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "command output file must be removed")
	runner.AssertExpectations(t)
}

func TestCommandSynthesizeFromStdout(t *testing.T) {
	runner := new(mockRunner)
	runner.On("Run", "/bin/say", []string{"--stdout"}, "hi").Return([]byte("audio"), []byte(nil), nil).Once()

	c := NewCommandSynthesizer(NewExecutorWithRunner("/bin/say", time.Second, runner), []string{"--stdout"}, "audio/wav", t.TempDir())

	var buf bytes.Buffer
	require.NoError(t, c.Synthesize(context.Background(), "hi", &buf))
	assert.Equal(t, "audio", buf.String())
}

func TestCommandSynthesizeFailure(t *testing.T) {
	runner := new(mockRunner)
	runner.On("Run", "/bin/say", mock.Anything, "hi").
		Return([]byte(nil), []byte("model missing\n"), errors.New("exit status 1")).Once()

	c := NewCommandSynthesizer(NewExecutorWithRunner("/bin/say", time.Second, runner), nil, "audio/wav", t.TempDir())

	err := c.Synthesize(context.Background(), "hi", &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model missing")
}

func TestNewExecutorMissingBinary(t *testing.T) {
	_, err := NewExecutor("/definitely/not/a/tts-binary", time.Second)
	assert.Error(t, err)
}
