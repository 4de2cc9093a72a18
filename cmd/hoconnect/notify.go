package main

import (
	"context"
	"fmt"

	"github.com/cuemby/hoconnect/pkg/notify"
	"github.com/cuemby/hoconnect/pkg/types"
	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Dispatch one notification",
	Long: `Dispatch a notification through the configured store and bus. Without
--target it is a broadcast; with --target only that employee's instances
show it.

Examples:
  # Announce to everyone
  hoconnect notify --title "ปิดระบบ" --message "ปิดปรับปรุงคืนนี้" --type warning

  # Mention one employee
  hoconnect notify --title "ping" --type mention --target u-bob`,
	RunE: runNotify,
}

var chatCmd = &cobra.Command{
	Use:   "chat TEXT",
	Short: "Send a chat message as an employee",
	Long: `Send a chat message. Employees mentioned with @name in a group room
receive a mention; a message in a DM room notifies the partner.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	notifyCmd.Flags().String("title", "", "Notification title (required)")
	notifyCmd.Flags().String("message", "", "Notification message")
	notifyCmd.Flags().String("type", string(types.NotificationInfo), "Type: info, success, warning or mention")
	notifyCmd.Flags().String("department", "", "Department tag")
	notifyCmd.Flags().String("target", "", "Target employee id (empty = broadcast)")
	notifyCmd.Flags().String("as", "", "Employee id or name to dispatch as")
	_ = notifyCmd.MarkFlagRequired("title")

	chatCmd.Flags().String("as", "", "Employee id or name to send as (required)")
	chatCmd.Flags().String("room", types.GlobalRoom, "Room name")
	chatCmd.Flags().String("dm", "", "Send a direct message to this employee id instead")
	_ = chatCmd.MarkFlagRequired("as")

	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(chatCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	message, _ := cmd.Flags().GetString("message")
	typ, _ := cmd.Flags().GetString("type")
	dept, _ := cmd.Flags().GetString("department")
	target, _ := cmd.Flags().GetString("target")
	as, _ := cmd.Flags().GetString("as")

	if !types.NotificationType(typ).Valid() {
		return fmt.Errorf("unknown notification type %q", typ)
	}

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

	n, err := inst.Notify(notify.Request{
		Title:        title,
		Message:      message,
		Type:         types.NotificationType(typ),
		Department:   dept,
		TargetUserID: target,
	})
	if err != nil {
		return fmt.Errorf("failed to dispatch: %v", err)
	}

	fmt.Printf("✓ Notification dispatched: %s\n", n.ID)
	if n.IsBroadcast() {
		fmt.Println("  Addressing: broadcast")
	} else {
		fmt.Printf("  Addressing: %s\n", n.TargetUserID)
	}
	fmt.Printf("  Ledger size: %d\n", inst.LedgerLen())
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	as, _ := cmd.Flags().GetString("as")
	room, _ := cmd.Flags().GetString("room")
	dm, _ := cmd.Flags().GetString("dm")

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

	if dm != "" {
		user, _ := inst.CurrentUser()
		room = types.DMRoom(user.ID, dm)
	}

	msg, err := inst.SendChatMessage(room, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("✓ Message sent to %s\n", types.RoomLabel(msg.Room))
	fmt.Printf("  Ledger size: %d\n", inst.LedgerLen())
	return nil
}
