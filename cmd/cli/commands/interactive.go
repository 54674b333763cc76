package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// InteractiveCmd creates the interactive command
func InteractiveCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (load once, run multiple commands)",
		Long: `Start an interactive session where you can run multiple commands against the same
loaded store and Google authorization. The session keeps running until you type 'exit' or 'quit'.

'use <cycle>' sets the cycle passed to every command that takes --cycle.
Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("\n🚀 Starting interactive session...")
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")

			commands := make(map[string]*cobra.Command)
			for _, subCmd := range cmd.Parent().Commands() {
				if subCmd.Name() != "interactive" && subCmd.Name() != "completion" && subCmd.Name() != "help" {
					commands[subCmd.Name()] = subCmd
				}
			}

			return runSession(os.Stdin, commands)
		},
	}

	return cmd
}

// runSession reads commands line by line until exit or end of input
func runSession(in io.Reader, commands map[string]*cobra.Command) error {
	scanner := bufio.NewScanner(in)
	var cycle string

	for {
		if cycle != "" {
			fmt.Printf("[%s] > ", cycle)
		} else {
			fmt.Print("> ")
		}

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts, err := parseCommandLine(line)
		if err != nil {
			fmt.Printf("❌ Error parsing command: %v\n\n", err)
			continue
		}
		if len(parts) == 0 {
			continue
		}
		cmdName := parts[0]
		cmdArgs := parts[1:]

		switch cmdName {
		case "exit", "quit":
			fmt.Println("👋 Goodbye!")
			return nil
		case "help":
			printInteractiveHelp(commands)
			continue
		case "use":
			if len(cmdArgs) != 1 {
				fmt.Printf("❌ Usage: use <cycle>\n\n")
				continue
			}
			cycle = cmdArgs[0]
			continue
		}

		targetCmd, exists := commands[cmdName]
		if !exists {
			fmt.Printf("❌ Unknown command: %s (type 'help' for available commands)\n\n", cmdName)
			continue
		}

		if err := runCommand(targetCmd, withCycle(targetCmd, cmdArgs, cycle)); err != nil {
			fmt.Printf("❌ Error: %v\n\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

// runCommand calls the command's RunE directly so the root PersistentPreRunE does not
// reload the application on every line
func runCommand(targetCmd *cobra.Command, args []string) error {
	targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
		_ = flag.Value.Set(flag.DefValue)
	})

	if err := targetCmd.ParseFlags(args); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}
	if err := targetCmd.ValidateRequiredFlags(); err != nil {
		return err
	}

	args = targetCmd.Flags().Args()
	if targetCmd.Args != nil {
		if err := targetCmd.Args(targetCmd, args); err != nil {
			return err
		}
	}

	if targetCmd.RunE != nil {
		return targetCmd.RunE(targetCmd, args)
	}
	if targetCmd.Run != nil {
		targetCmd.Run(targetCmd, args)
	}
	return nil
}

// withCycle appends the session cycle when the command takes --cycle and none was given
func withCycle(targetCmd *cobra.Command, args []string, cycle string) []string {
	if cycle == "" || targetCmd.Flags().Lookup("cycle") == nil {
		return args
	}
	for _, a := range args {
		if a == "-c" || a == "--cycle" || strings.HasPrefix(a, "--cycle=") || strings.HasPrefix(a, "-c=") {
			return args
		}
	}
	return append(args, "--cycle", cycle)
}

func printInteractiveHelp(commands map[string]*cobra.Command) {
	fmt.Println("\nAvailable commands:")

	names := lo.Keys(commands)
	sort.Strings(names)
	for _, name := range names {
		cmd := commands[name]
		fmt.Printf("  %-30s %s\n", cmd.Use, cmd.Short)
	}

	fmt.Println("\n  use <cycle>                    Set the cycle for the following commands")
	fmt.Println("  help                           Show this help message")
	fmt.Println("  exit, quit                     Exit the interactive session")
}

// parseCommandLine splits a command line into arguments. Single and double quotes group
// words into one argument.
func parseCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var inQuote rune

	for _, r := range line {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			inQuote = r
		case unicode.IsSpace(r):
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if inQuote != 0 {
		return nil, fmt.Errorf("unclosed quote: %c", inQuote)
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args, nil
}
