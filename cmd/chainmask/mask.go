package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chainmask/chainmask"
	"github.com/chainmask/chainmask/pkg/mask"
	"github.com/chainmask/chainmask/pkg/types"
	"github.com/spf13/cobra"
)

var (
	maskStyle        string
	maskHead         int
	maskTail         int
	maskPlaceholder  string
	maskFamilies     string
	maskGrammarsPath string
	maskOutputPath   string
)

var maskCmd = &cobra.Command{
	Use:   "mask [file]",
	Short: "Mask blockchain identifiers in text",
	Long: `Read text from a file (or stdin when no file is given), replace every
detected blockchain identifier with a masked rendering, and write the result
to stdout.

The partial style keeps the head and tail of each identifier the way wallet
UIs display truncated addresses; full replaces the identifier with a
placeholder; fixed replaces it with an asterisk run of the same length.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMask,
}

func init() {
	maskCmd.Flags().StringVar(&maskStyle, "style", string(mask.StylePartial), "Mask style: partial, full, fixed")
	maskCmd.Flags().IntVar(&maskHead, "head", mask.DefaultHead, "Runes kept from the front (partial style)")
	maskCmd.Flags().IntVar(&maskTail, "tail", mask.DefaultTail, "Runes kept from the end (partial style)")
	maskCmd.Flags().StringVar(&maskPlaceholder, "placeholder", mask.DefaultPlaceholder, "Replacement text (full style)")
	maskCmd.Flags().StringVar(&maskFamilies, "families", "", "Only mask the listed families (comma-separated, empty for all)")
	maskCmd.Flags().StringVar(&maskGrammarsPath, "grammars", "", "Path to custom grammars file")
	maskCmd.Flags().StringVarP(&maskOutputPath, "output", "o", "", "Write masked text to file instead of stdout")
}

func runMask(cmd *cobra.Command, args []string) error {
	content, source, err := readMaskInput(cmd, args)
	if err != nil {
		return err
	}

	style, err := mask.ParseStyle(maskStyle)
	if err != nil {
		return err
	}
	families, err := parseFamilies(maskFamilies)
	if err != nil {
		return err
	}

	masker, err := mask.New(mask.Config{
		Style:       style,
		Head:        maskHead,
		Tail:        maskTail,
		Placeholder: maskPlaceholder,
		Families:    families,
	})
	if err != nil {
		return fmt.Errorf("configuring masker: %w", err)
	}

	var opts []chainmask.Option
	if maskGrammarsPath != "" {
		grammars, err := chainmask.LoadGrammarsFromFile(maskGrammarsPath)
		if err != nil {
			return fmt.Errorf("loading grammars: %w", err)
		}
		opts = append(opts, chainmask.WithGrammars(grammars))
	}

	detector, err := chainmask.NewDetector(opts...)
	if err != nil {
		return fmt.Errorf("creating detector: %w", err)
	}
	defer detector.Close()

	matches, err := detector.ScanString(content)
	if err != nil {
		return fmt.Errorf("detecting identifiers: %w", err)
	}

	masked := masker.Apply(content, matches)

	if err := writeMaskOutput(cmd, masked); err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "Masked %d of %d identifiers in %s\n",
			countSelected(matches, families), len(matches), source)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func readMaskInput(cmd *cobra.Command, args []string) (content, source string, err error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("reading input: %w", err)
		}
		return string(data), args[0], nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), "stdin", nil
}

func writeMaskOutput(cmd *cobra.Command, masked string) error {
	if maskOutputPath == "" || maskOutputPath == "-" {
		_, err := io.WriteString(cmd.OutOrStdout(), masked)
		return err
	}
	if err := os.WriteFile(maskOutputPath, []byte(masked), 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func parseFamilies(s string) ([]types.Family, error) {
	if s == "" {
		return nil, nil
	}

	var families []types.Family
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := types.ParseFamily(part)
		if err != nil {
			return nil, err
		}
		families = append(families, f)
	}
	return families, nil
}

func countSelected(matches []*types.Match, families []types.Family) int {
	if len(families) == 0 {
		return len(matches)
	}

	selected := make(map[types.Family]struct{}, len(families))
	for _, f := range families {
		selected[f] = struct{}{}
	}

	n := 0
	for _, m := range matches {
		if _, ok := selected[m.Family]; ok {
			n++
		}
	}
	return n
}
