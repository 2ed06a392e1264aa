package tts

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// OutputPlaceholder in the argument list is replaced by the file the command
// must write its audio to. Without it, audio is read from stdout.
const OutputPlaceholder = "{output}"

// CommandSynthesizer runs a local TTS binary (piper, espeak-ng, ...). Text is
// passed on stdin.
type CommandSynthesizer struct {
	executor    *Executor
	args        []string
	contentType string
	tempDir     string
}

func NewCommandSynthesizer(executor *Executor, args []string, contentType, tempDir string) *CommandSynthesizer {
	return &CommandSynthesizer{
		executor:    executor,
		args:        args,
		contentType: contentType,
		tempDir:     tempDir,
	}
}

func (c *CommandSynthesizer) Name() string {
	return "command"
}

func (c *CommandSynthesizer) ContentType() string {
	return c.contentType
}

func (c *CommandSynthesizer) Synthesize(ctx context.Context, text string, w io.Writer) error {
	outputFile := filepath.Join(c.tempDir, "tts-cmd-"+uuid.NewString()+extensionFor(c.contentType))
	defer os.Remove(outputFile)

	args, usesFile := c.buildArgs(outputFile)

	stdout, stderr, err := c.executor.Execute(ctx, args, strings.NewReader(text))
	if err != nil {
		return fmt.Errorf("execution failed: %w: %s", err, strings.TrimSpace(string(stderr)))
	}

	if !usesFile {
		if len(stdout) == 0 {
			return errEmptyAudio
		}
		_, err := w.Write(stdout)
		return err
	}

	f, err := os.Open(outputFile)
	if err != nil {
		return fmt.Errorf("failed to read audio file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(w, f)
	if err != nil {
		return fmt.Errorf("failed to read audio file: %w", err)
	}
	if n == 0 {
		return errEmptyAudio
	}
	return nil
}

func (c *CommandSynthesizer) buildArgs(outputFile string) ([]string, bool) {
	args := make([]string, 0, len(c.args))
	usesFile := false
	for _, a := range c.args {
		if strings.Contains(a, OutputPlaceholder) {
			usesFile = true
			a = strings.ReplaceAll(a, OutputPlaceholder, outputFile)
		}
		args = append(args, a)
	}
	return args, usesFile
}
