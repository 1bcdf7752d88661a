package power

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"codeberg.org/mutker/hotctl/internal/errors"
)

// Keys of the thermal report.
const (
	KeySchedulerLimit = "CPU_Scheduler_Limit"
	KeyAvailableCPUs  = "CPU_Available_CPUs"
	KeySpeedLimit     = "CPU_Speed_Limit"
)

var blanks = strings.NewReplacer(" ", "", "\t", "")

// ParseReport extracts the recognised KEY=VALUE pairs from a thermal report.
// Whitespace is ignored anywhere on a line. Lines without a separator, with
// a non-numeric value or with an unknown key are skipped.
func ParseReport(report string) Limits {
	var limits Limits

	for _, line := range strings.Split(blanks.Replace(report), "\n") {
		key, value, ok := strings.Cut(strings.TrimSuffix(line, "\r"), "=")
		if !ok {
			continue
		}
		if i := strings.IndexByte(value, '='); i >= 0 {
			value = value[:i]
		}

		n, err := strconv.ParseUint(value, 10, 0)
		if err != nil {
			continue
		}

		switch key {
		case KeySchedulerLimit:
			limits.SchedulerLimit = uintPtr(uint(n))
		case KeyAvailableCPUs:
			limits.AvailableCPUs = uintPtr(uint(n))
		case KeySpeedLimit:
			limits.SpeedLimit = uintPtr(uint(n))
		}
	}

	return limits
}

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec. A non-zero exit is an error.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return stdout.Bytes(), nil
}

// TextProbe parses the output of an external diagnostic command.
type TextProbe struct {
	Command string
	Args    []string
	run     Runner
}

// NewTextProbe returns a probe that runs command with args.
func NewTextProbe(command string, args ...string) *TextProbe {
	return NewTextProbeWithRunner(ExecRunner, command, args...)
}

// NewTextProbeWithRunner is NewTextProbe with a custom command runner.
func NewTextProbeWithRunner(run Runner, command string, args ...string) *TextProbe {
	return &TextProbe{
		Command: command,
		Args:    args,
		run:     run,
	}
}

// Probe runs the command once. Any failure leaves every field unset.
func (p *TextProbe) Probe(ctx context.Context) (Limits, error) {
	errFactory := errors.New()

	out, err := p.run(ctx, p.Command, p.Args...)
	if err != nil {
		return Limits{}, errFactory.Wrap(ErrCommandFailed, err)
	}

	if len(bytes.TrimSpace(out)) == 0 {
		return Limits{}, errFactory.WithData(ErrEmptyReport, p.Command)
	}

	return ParseReport(string(out)), nil
}
