package main

import (
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/PlayerIUnknown/aegis-gui/internal/logging"
)

// annotationStructuredLog marks commands whose output and failures are structured logs.
const annotationStructuredLog = "aegis.structured-log"

type commandExecutionContext struct {
	CommandPath       string
	UsesStructuredLog bool
}

var (
	commandContextMu sync.RWMutex
	commandContext   commandExecutionContext
)

func setCommandExecutionContext(ctx commandExecutionContext) {
	commandContextMu.Lock()
	defer commandContextMu.Unlock()
	commandContext = ctx
}

func resetCommandExecutionContext() {
	setCommandExecutionContext(commandExecutionContext{})
}

func currentCommandExecutionContext() commandExecutionContext {
	commandContextMu.RLock()
	defer commandContextMu.RUnlock()
	return commandContext
}

func structuredLogAnnotation() map[string]string {
	return map[string]string{annotationStructuredLog: "true"}
}

// commandUsesStructuredLogging is true for long-running or operational commands.
// Interactive commands print plain text.
func commandUsesStructuredLogging(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationStructuredLog] == "true" {
			return true
		}
	}
	return false
}

// prepareCommand records the running command and installs the default logger
// for structured commands.
func prepareCommand(cmd *cobra.Command, _ []string) error {
	ctx := commandExecutionContext{
		CommandPath:       cmd.CommandPath(),
		UsesStructuredLog: commandUsesStructuredLogging(cmd),
	}
	setCommandExecutionContext(ctx)
	if !ctx.UsesStructuredLog {
		return nil
	}
	_, err := logging.BootstrapFromEnv(logging.BootstrapOptions{Command: ctx.CommandPath, Writer: os.Stderr})
	return err
}
