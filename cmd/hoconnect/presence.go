package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cuemby/hoconnect/pkg/presence"
	"github.com/cuemby/hoconnect/pkg/types"
	"github.com/spf13/cobra"
)

var presenceCmd = &cobra.Command{
	Use:   "presence",
	Short: "Show which employees are online",
	RunE:  runPresence,
}

var employeeCmd = &cobra.Command{
	Use:   "employee",
	Short: "Manage the employee directory",
}

var employeeAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Sign up a new employee",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmployeeAdd,
}

var employeeRemoveCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove an employee from the directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		if err := inst.DeleteEmployee(args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Employee removed: %s\n", args[0])
		return nil
	},
}

func init() {
	employeeAddCmd.Flags().String("department", types.DepartmentSales, "Department")
	employeeAddCmd.Flags().String("role", "", "Role")
	employeeAddCmd.Flags().String("level", string(types.JobLevelStaff), "Job level")

	employeeCmd.AddCommand(employeeAddCmd)
	employeeCmd.AddCommand(employeeRemoveCmd)
	rootCmd.AddCommand(employeeCmd)
	rootCmd.AddCommand(presenceCmd)
}

func runPresence(cmd *cobra.Command, args []string) error {
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

	stats := inst.Presence()
	fmt.Printf("Online: %d  Offline: %d\n\n", stats.OnlineCount, stats.OfflineCount)

	online := make(map[string]bool, len(stats.OnlineUsers))
	for _, e := range stats.OnlineUsers {
		online[e.ID] = true
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDEPARTMENT\tSTATUS\tLAST ACTIVE")
	for _, e := range inst.Employees() {
		status := "offline"
		if online[e.ID] {
			status = "online"
		}
		last := e.LastActive
		if last == "" {
			last = "never"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Department, status, last)
	}
	_ = w.Flush()

	fmt.Printf("\nWindow: %s\n", presenceWindow())
	return nil
}

func presenceWindow() string {
	if cfg.Presence.Window > 0 {
		return cfg.Presence.Window.String()
	}
	return presence.Window.String()
}

func runEmployeeAdd(cmd *cobra.Command, args []string) error {
	dept, _ := cmd.Flags().GetString("department")
	role, _ := cmd.Flags().GetString("role")
	level, _ := cmd.Flags().GetString("level")

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

	emp, err := inst.SignUp(types.Employee{
		Name:       args[0],
		Role:       role,
		Level:      types.JobLevel(level),
		Department: dept,
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Employee added: %s\n", emp.ID)
	fmt.Printf("  Name: %s\n", emp.Name)
	fmt.Printf("  Department: %s\n", emp.Department)
	return nil
}
