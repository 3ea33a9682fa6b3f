package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/TheMichaelB/scryptbridge/internal/codec"
	"github.com/TheMichaelB/scryptbridge/internal/models"
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive a key with scrypt",
	Long: `Derive runs one scrypt derivation and prints the key as lowercase hex.

Parameters default to the derive section of the config. A parameter set
to 0 counts as absent and the derivation fails with MissingParameterError.`,
	Example: `  scryptbridge derive --password secret --salt NaCl
  scryptbridge derive --salt-hex 0a0b0c --N 1024 --r 8 --p 16 --dklen 64
  scryptbridge derive --password-hex 70617373 --salt-bytes 115,97,108,116`,
	RunE: runDerive,
}

var (
	derivePassword    string
	derivePasswordHex string
	deriveSalt        string
	deriveSaltHex     string
	deriveSaltBytes   []int
	deriveN           int
	deriveR           int
	deriveP           int
	deriveKeyLen      int
)

func init() {
	rootCmd.AddCommand(deriveCmd)

	deriveCmd.Flags().StringVar(&derivePassword, "password", "",
		"Password text (will prompt if no password flag is given)")
	deriveCmd.Flags().StringVar(&derivePasswordHex, "password-hex", "",
		"Password as hex")
	deriveCmd.Flags().StringVar(&deriveSalt, "salt", "",
		"Salt text")
	deriveCmd.Flags().StringVar(&deriveSaltHex, "salt-hex", "",
		"Salt as hex")
	deriveCmd.Flags().IntSliceVar(&deriveSaltBytes, "salt-bytes", nil,
		"Salt as comma separated byte values")
	deriveCmd.Flags().IntVar(&deriveN, "N", 0,
		"CPU/memory cost (default from config)")
	deriveCmd.Flags().IntVar(&deriveR, "r", 0,
		"Block size (default from config)")
	deriveCmd.Flags().IntVar(&deriveP, "p", 0,
		"Parallelization (default from config)")
	deriveCmd.Flags().IntVar(&deriveKeyLen, "dklen", 0,
		"Derived key length in bytes (default from config)")

	deriveCmd.MarkFlagsMutuallyExclusive("password", "password-hex")
	deriveCmd.MarkFlagsMutuallyExclusive("salt", "salt-hex", "salt-bytes")
}

func runDerive(cmd *cobra.Command, args []string) error {
	password, err := derivePasswordInput(cmd)
	if err != nil {
		return err
	}

	salt, err := deriveSaltInput(cmd)
	if err != nil {
		return err
	}

	options := deriveOptions(cmd)

	logger.WithFields(map[string]interface{}{
		"N":     options[models.ParamN],
		"r":     options[models.ParamR],
		"p":     options[models.ParamP],
		"dkLen": options[models.ParamDKLen],
	}).Debug("Submitting derivation")

	result := service.DeriveRaw(cmd.Context(), password, salt, options, nil)
	outcome, err := result.Wait(cmd.Context())
	if err != nil {
		return fmt.Errorf("wait for derivation: %w", err)
	}

	return reportOutcome(outcome)
}

func derivePasswordInput(cmd *cobra.Command) (interface{}, error) {
	switch {
	case cmd.Flags().Changed("password-hex"):
		b, err := codec.HexDecode(derivePasswordHex)
		if err != nil {
			return nil, fmt.Errorf("--password-hex: %w", err)
		}
		return b, nil
	case cmd.Flags().Changed("password"):
		return derivePassword, nil
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return password, nil
}

func deriveSaltInput(cmd *cobra.Command) (interface{}, error) {
	switch {
	case cmd.Flags().Changed("salt-hex"):
		b, err := codec.HexDecode(deriveSaltHex)
		if err != nil {
			return nil, fmt.Errorf("--salt-hex: %w", err)
		}
		return b, nil
	case cmd.Flags().Changed("salt-bytes"):
		return deriveSaltBytes, nil
	}
	return deriveSalt, nil
}

// deriveOptions builds the option bag from flags, falling back to config.
func deriveOptions(cmd *cobra.Command) map[string]interface{} {
	pick := func(flag string, value, fallback int) int {
		if cmd.Flags().Changed(flag) {
			return value
		}
		return fallback
	}

	return map[string]interface{}{
		models.ParamN:     pick("N", deriveN, cfg.Derive.N),
		models.ParamR:     pick("r", deriveR, cfg.Derive.R),
		models.ParamP:     pick("p", deriveP, cfg.Derive.P),
		models.ParamDKLen: pick("dklen", deriveKeyLen, cfg.Derive.KeyLen),
	}
}

func reportOutcome(outcome models.Outcome) error {
	if jsonOutput {
		printJSON(outcome)
	} else if outcome.OK {
		fmt.Fprintln(os.Stdout, outcome.Hex)
	}

	if !outcome.OK {
		return fmt.Errorf("derivation failed: %s", outcome.Message)
	}
	return nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", err
	}

	return string(password), nil
}
