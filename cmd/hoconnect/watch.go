package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cuemby/hoconnect/pkg/toast"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run an instance and print its toasts",
	Long: `Open an instance logged in as an employee and print every toast as it
appears and disappears, until interrupted. Run notify or chat from another
terminal against the same redis store and bus to see toasts arrive.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("as", "", "Employee id or name to log in as (required)")
	_ = watchCmd.MarkFlagRequired("as")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	user, _ := inst.CurrentUser()
	inst.ObserveToasts(func(ev toast.Event) {
		fmt.Printf("%s ", time.Now().Format("15:04:05"))
		printToastEvent(user.Name, ev)
	})

	fmt.Printf("Watching as %s (%s)\n", user.Name, user.Department)
	fmt.Printf("  Instance: %s\n", inst.ID())
	fmt.Printf("  Unread notifications: %d\n", inst.UnreadCount())
	fmt.Println("Press Ctrl+C to stop.")

	waitForSignal()

	fmt.Println("\nShutting down...")
	return nil
}
