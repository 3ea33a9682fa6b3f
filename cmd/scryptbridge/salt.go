package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/scryptbridge/internal/codec"
	"github.com/TheMichaelB/scryptbridge/internal/crypto"
)

var saltCmd = &cobra.Command{
	Use:     "salt",
	Short:   "Generate a random salt",
	Example: `  scryptbridge salt --size 32`,
	Args:    cobra.NoArgs,
	RunE:    runSalt,
}

var saltSize int

func init() {
	rootCmd.AddCommand(saltCmd)

	saltCmd.Flags().IntVar(&saltSize, "size", 0,
		"Salt size in bytes (default from config)")
}

func runSalt(cmd *cobra.Command, args []string) error {
	size := cfg.Derive.SaltSize
	if cmd.Flags().Changed("size") {
		size = saltSize
	}

	salt, err := crypto.GenerateSalt(size)
	if err != nil {
		return err
	}

	values := make([]int, len(salt))
	parts := make([]string, len(salt))
	for i, b := range salt {
		values[i] = int(b)
		parts[i] = fmt.Sprint(b)
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"hex":   codec.HexEncode(salt),
			"bytes": values,
		})
		return nil
	}

	fmt.Fprintln(os.Stdout, codec.HexEncode(salt))
	printInfo("bytes: %s", strings.Join(parts, ","))
	return nil
}
