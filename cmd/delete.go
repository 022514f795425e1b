package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a macro",
	Long: `Delete a macro file. Asks for confirmation unless --force is given.

Examples:
  macro delete old-rig
  macro delete old-rig --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Delete without confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	s, err := requireMacro(name)
	if err != nil {
		return err
	}

	if !deleteForce && !confirm(fmt.Sprintf("Delete macro %s?", name)) {
		fmt.Println("Aborted")
		return nil
	}

	if err := s.Remove(name); err != nil {
		return err
	}

	logger.Info("macro deleted", "macro", name)
	fmt.Printf("✓ Deleted macro: %s\n", name)
	return nil
}

// confirm asks a yes/no question on stdin, defaulting to no
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	answer, _ := bufio.NewReader(stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
