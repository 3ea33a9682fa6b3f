package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/scryptbridge/internal/models"
)

var execCmd = &cobra.Command{
	Use:   "exec <action> [json-args]",
	Short: "Run a host action with a JSON argument array",
	Long: `Exec passes a JSON argument array to a host action, exactly as an
embedding runtime would, and prints the outcome as JSON. The arguments
are read from stdin when not given.`,
	Example: `  scryptbridge exec scrypt '["password", "NaCl", {"N": 1024, "r": 8, "p": 16, "dkLen": 64}]'
  echo '[[1,2,3], "salt", {"N": 16, "r": 1, "p": 1, "dkLen": 16}]' | scryptbridge exec scrypt`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	action := args[0]

	var raw []byte
	if len(args) == 2 {
		raw = []byte(args[1])
	} else {
		var err error
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read arguments: %w", err)
		}
	}

	outcomes := make(chan models.Outcome, 1)
	handled, err := plugin.ExecuteJSON(cmd.Context(), action, raw, func(o models.Outcome) {
		outcomes <- o
	})
	if err != nil {
		return err
	}
	if !handled {
		return fmt.Errorf("unknown action %q", action)
	}

	select {
	case outcome := <-outcomes:
		printJSON(outcome)
		if !outcome.OK {
			return fmt.Errorf("%s", outcome.Message)
		}
		return nil
	case <-cmd.Context().Done():
		return cmd.Context().Err()
	}
}
