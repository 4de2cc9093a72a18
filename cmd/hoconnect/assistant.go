package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cuemby/hoconnect/pkg/assistant"
	"github.com/spf13/cobra"
)

var ideasCmd = &cobra.Command{
	Use:   "ideas CHALLENGE",
	Short: "Ask the content generator for project ideas",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdeas,
}

var draftCmd = &cobra.Command{
	Use:   "draft PROMPT",
	Short: "Draft a task from an instruction and optionally assign it",
	Long: `Ask the content generator to turn an instruction into a task draft,
choosing the department and assignee from the directory. With --create the
draft is added as a task, which notifies the assignee.`,
	Args: cobra.ExactArgs(1),
	RunE: runDraft,
}

func init() {
	draftCmd.Flags().Bool("create", false, "Create the drafted task")
	draftCmd.Flags().String("as", "", "Employee id or name creating the task")

	rootCmd.AddCommand(ideasCmd)
	rootCmd.AddCommand(draftCmd)
}

func newGenerator() *assistant.Safe {
	if cfg.Assistant.APIKey == "" {
		return assistant.NewSafe(nil)
	}
	return assistant.NewSafe(assistant.New(assistant.Config{
		APIKey:    cfg.Assistant.APIKey,
		Model:     cfg.Assistant.Model,
		MaxTokens: cfg.Assistant.MaxTokens,
		BaseURL:   cfg.Assistant.BaseURL,
	}))
}

func runIdeas(cmd *cobra.Command, args []string) error {
	b, err := openBackend(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	inst, err := openInstance(b, cfg, "")
	if err != nil {
		return err
	}
	defer closeInstance(inst)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ideas := newGenerator().Ideas(ctx, args[0], inst.AvailableDepartments())
	if len(ideas) == 0 {
		fmt.Println("No suggestions.")
		return nil
	}
	for n, idea := range ideas {
		fmt.Printf("%d. %s\n", n+1, idea.Title)
		fmt.Printf("   %s\n", idea.Description)
		fmt.Printf("   Objective: %s\n", idea.Objective)
		for _, step := range idea.KeySteps {
			fmt.Printf("   - %s\n", step)
		}
		fmt.Printf("   Impact: %s\n\n", idea.Impact)
	}
	return nil
}

func runDraft(cmd *cobra.Command, args []string) error {
	create, _ := cmd.Flags().GetBool("create")
	as, _ := cmd.Flags().GetString("as")

	b, err := openBackend(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	inst, err := openInstance(b, cfg, as)
	if err != nil {
		return err
	}
	defer closeInstance(inst)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	draft := newGenerator().Draft(ctx, args[0], inst.Employees(), inst.AvailableDepartments())
	if draft == nil {
		fmt.Println("No suggestion.")
		return nil
	}

	fmt.Printf("Title: %s\n", draft.Title)
	fmt.Printf("Department: %s\n", draft.Department)
	fmt.Printf("Assignee: %s\n", draft.AssigneeName)
	fmt.Printf("Deadline: %s\n", draft.Deadline)
	if len(draft.SuggestedSubTasks) > 0 {
		fmt.Printf("Sub-tasks: %s\n", strings.Join(draft.SuggestedSubTasks, ", "))
	}

	if !create {
		return nil
	}
	task, err := inst.AddTask(*draft)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Task created: %s\n", task.ID)
	return nil
}
