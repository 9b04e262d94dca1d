package execshell

// CommandEventObserver receives lifecycle notifications for every external
// command the executor runs. The console log format installs an observer that
// echoes gh invocations; structured logging leaves the default in place.
type CommandEventObserver interface {
	// CommandStarted fires before the command process is spawned.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires once the process exited, regardless of exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the process could not be spawned at all.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// discardCommandEvents is the default observer; it drops every notification.
type discardCommandEvents struct{}

func (discardCommandEvents) CommandStarted(ShellCommand) {}

func (discardCommandEvents) CommandCompleted(ShellCommand, ExecutionResult) {}

func (discardCommandEvents) CommandExecutionFailed(ShellCommand, error) {}
