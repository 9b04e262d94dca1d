package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

const environmentAssignmentSeparatorConstant = "="

// OSCommandRunner executes commands through os/exec.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the supplied command. A non-zero exit code is surfaced through
// ExecutionResult rather than an error so the executor can decide how to treat
// command failures; only spawn failures return an error.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	executable.Dir = command.Details.WorkingDirectory
	executable.Env = runner.buildEnvironment(command.Details.EnvironmentVariables)

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer
	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	runError := executable.Run()
	if runError == nil {
		return runner.captureResult(&standardOutputBuffer, &standardErrorBuffer, 0), nil
	}

	exitError := &exec.ExitError{}
	if errors.As(runError, &exitError) {
		return runner.captureResult(&standardOutputBuffer, &standardErrorBuffer, exitError.ExitCode()), nil
	}

	return ExecutionResult{}, runError
}

// buildEnvironment layers per-command variables over the process environment.
// A nil Env on the command means inherit, so nil is returned when there is
// nothing to add.
func (runner *OSCommandRunner) buildEnvironment(environmentVariables map[string]string) []string {
	if len(environmentVariables) == 0 {
		return nil
	}

	mergedEnvironment := append([]string{}, os.Environ()...)
	for environmentKey, environmentValue := range environmentVariables {
		mergedEnvironment = append(mergedEnvironment, environmentKey+environmentAssignmentSeparatorConstant+environmentValue)
	}
	return mergedEnvironment
}

func (runner *OSCommandRunner) captureResult(standardOutputBuffer *bytes.Buffer, standardErrorBuffer *bytes.Buffer, exitCode int) ExecutionResult {
	return ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
		ExitCode:       exitCode,
	}
}
