package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minhajsf/Plan-it/internal/orchestrator"
)

// Assistant handles one utterance for one user
type Assistant interface {
	Handle(ctx context.Context, u orchestrator.Utterance) orchestrator.Reply
}

var promptCmd = &cobra.Command{
	Use:   "prompt [request]",
	Short: "Run a single request",
	Long: `Runs one plain-language request through the assistant and prints the result.
If the request removes something and confirmation is enabled, the y/n answer is
read from standard input.

Example:
  planit prompt "Delete my dentist appointment on Friday"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := currentUserID()
		if err != nil {
			return err
		}
		return runPrompt(cmd.Context(), planit.Orchestrator, userID, strings.Join(args, " "), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session",
	Long:  `Reads one request per line until "exit", "quit" or end of input.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := currentUserID()
		if err != nil {
			return err
		}
		return runChat(cmd.Context(), planit.Orchestrator, userID, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func runPrompt(ctx context.Context, assistant Assistant, userID int64, text string, in io.Reader, out io.Writer) error {
	reply := assistant.Handle(ctx, orchestrator.Utterance{UserID: userID, Text: text})
	fmt.Fprintln(out, reply.Message)

	if reply.Outcome != orchestrator.OutcomeAwaitingConfirmation {
		return nil
	}

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return fmt.Errorf("no confirmation given")
	}
	reply = assistant.Handle(ctx, orchestrator.Utterance{UserID: userID, Text: answer})
	fmt.Fprintln(out, reply.Message)
	return nil
}

func runChat(ctx context.Context, assistant Assistant, userID int64, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, `What would you like to do? Type "exit" to quit.`)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		if err := ctx.Err(); err != nil {
			return nil
		}

		reply := assistant.Handle(ctx, orchestrator.Utterance{UserID: userID, Text: line})
		fmt.Fprintln(out, reply.Message)
	}
}
