package process_test

import (
	"context"
	stderrors "errors"
	"os/exec"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/shellwrap/process"
)

func TestRunOutput(t *testing.T) {
	tests := []struct {
		name       string
		cmd        process.Command
		wantStdout string
		wantStderr string
	}{
		{
			name:       "argv to stdout",
			cmd:        process.Command{Binary: "echo", Args: []string{"hello", "world"}},
			wantStdout: "hello world\n",
		},
		{
			name:       "stdin forwarded",
			cmd:        process.Command{Binary: "cat", Stdin: strings.NewReader("from stdin")},
			wantStdout: "from stdin",
		},
		{
			name:       "stderr captured apart",
			cmd:        process.Command{Binary: "sh", Args: []string{"-c", "printf out; printf err >&2"}},
			wantStdout: "out",
			wantStderr: "err",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := process.Run(context.Background(), tt.cmd)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if result.ExitCode != 0 {
				t.Errorf("exit code %d", result.ExitCode)
			}
			if string(result.Stdout) != tt.wantStdout || string(result.Stderr) != tt.wantStderr {
				t.Errorf("got stdout %q stderr %q", result.Stdout, result.Stderr)
			}
			if !reflect.DeepEqual(result.Argv, tt.cmd.Argv()) {
				t.Errorf("argv %q, want %q", result.Argv, tt.cmd.Argv())
			}
		})
	}
}

func TestRunExitCode(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo boom >&2; exit 42"},
	})
	if result.ExitCode != 42 {
		t.Fatalf("expected exit code 42, got %d", result.ExitCode)
	}
	perr, ok := process.AsProcessError(err)
	if !ok {
		t.Fatalf("expected *ProcessError, got %v", err)
	}
	if perr.Error() != "Process exited with code 42" {
		t.Fatalf("unexpected message %q", perr.Error())
	}
	if strings.TrimSpace(perr.Stderr) != "boom" {
		t.Fatalf("expected stderr snapshot, got %q", perr.Stderr)
	}
	if perr.HasTimeout {
		t.Fatal("expected no deadline")
	}
}

func TestRunContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, err := process.Run(ctx, process.Command{
		Binary:      "sleep",
		Args:        []string{"10"},
		GracePeriod: 500 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error from context cancellation")
	}
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded in chain, got %v", err)
	}
	if result.ExitCode != -15 {
		t.Fatalf("expected SIGTERM exit code -15, got %d", result.ExitCode)
	}
	if result.Duration > 5*time.Second {
		t.Fatalf("process took too long: %v", result.Duration)
	}
}

func TestRunTimeout(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary:  "sleep",
		Args:    []string{"10"},
		Timeout: 100 * time.Millisecond,
	})
	perr, ok := process.AsProcessError(err)
	if !ok {
		t.Fatalf("expected *ProcessError, got %v", err)
	}
	if !perr.TimedOut || !perr.HasTimeout {
		t.Fatalf("expected timed out error, got %+v", perr)
	}
	if perr.Error() != "Process timed out after 0.1 seconds" {
		t.Fatalf("unexpected message %q", perr.Error())
	}
	if result.ExitCode != -15 {
		t.Fatalf("expected exit code -15, got %d", result.ExitCode)
	}
}

func TestRunTimeoutNotReached(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{
		Binary:  "sh",
		Args:    []string{"-c", "exit 3"},
		Timeout: 5 * time.Second,
	})
	perr, ok := process.AsProcessError(err)
	if !ok {
		t.Fatalf("expected *ProcessError, got %v", err)
	}
	if perr.TimedOut {
		t.Fatal("fast failure should not be reported as a timeout")
	}
	if !perr.HasTimeout || perr.Timeout != 5*time.Second {
		t.Fatalf("expected deadline recorded, got %+v", perr)
	}
}

func TestRunEmptyBinary(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{})
	if err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestRunCommandNotFound(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{Binary: "doesntexistfffff"})
	if !stderrors.Is(err, exec.ErrNotFound) {
		t.Fatalf("expected exec.ErrNotFound, got %v", err)
	}
}

func TestRunDuration(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "sleep",
		Args:   []string{"0.1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Duration < 50*time.Millisecond {
		t.Fatalf("duration too short: %v", result.Duration)
	}
}

func TestRunEnv(t *testing.T) {
	tests := []struct {
		name string
		cmd  process.Command
		want string
	}{
		{
			name: "merged over parent",
			cmd:  process.Command{Env: []string{"SHELLWRAP_TEST=hello"}},
			want: "hello",
		},
		{
			name: "replaced",
			cmd:  process.Command{Env: []string{"SHELLWRAP_TEST=only"}, ReplaceEnv: true},
			want: "only",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := tt.cmd
			cmd.Binary = "sh"
			cmd.Args = []string{"-c", "echo $SHELLWRAP_TEST"}
			result, err := process.Run(context.Background(), cmd)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := strings.TrimSpace(string(result.Stdout)); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
