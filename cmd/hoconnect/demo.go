package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cuemby/hoconnect/pkg/events"
	"github.com/cuemby/hoconnect/pkg/instance"
	"github.com/cuemby/hoconnect/pkg/storage"
	"github.com/cuemby/hoconnect/pkg/toast"
	"github.com/cuemby/hoconnect/pkg/types"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the three-instance mention scenario in this process",
	Long: `Open three instances on a scratch store, log them in as alice, bob and
carol, and have alice mention bob in the all-department room. Only bob's
instance shows a toast; carol's instance only sees its ledger grow.

Time is simulated, so the toast lifetimes play out instantly.`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	dir, err := os.MkdirTemp("", "hoconnect-demo-")
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %v", err)
	}
	defer os.RemoveAll(dir)

	store, err := storage.NewBoltStore(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	bus := events.NewBroker()
	bus.Start()
	defer bus.Stop()

	directory := []types.Employee{
		{ID: "u-alice", Name: "alice", Department: types.DepartmentSales, Level: types.JobLevelManager},
		{ID: "u-bob", Name: "bob", Department: types.DepartmentLogistics, Level: types.JobLevelStaff},
		{ID: "u-carol", Name: "carol", Department: types.DepartmentHR, Level: types.JobLevelStaff},
	}
	if err := storage.Save(store, storage.KeyEmployees, directory); err != nil {
		return err
	}

	clock := clockwork.NewFakeClock()
	instCfg := instanceConfig(cfg)
	instCfg.ID = ""
	instCfg.Clock = clock

	instances := make(map[string]*instance.Instance)
	for _, emp := range directory {
		inst := instance.New(store, bus, instCfg)
		inst.Open()
		inst.Start()
		defer inst.Close()

		if _, err := inst.Login(emp.ID); err != nil {
			return err
		}
		name := emp.Name
		inst.ObserveToasts(func(ev toast.Event) { printToastEvent(name, ev) })
		instances[name] = inst
		fmt.Printf("✓ Instance %s logged in as %s\n", shortInstanceID(inst.ID()), name)
	}

	fmt.Println()
	fmt.Println("alice: \"@bob check this\"")
	if _, err := instances["alice"].SendChatMessage(types.GlobalRoom, "@bob check this"); err != nil {
		return err
	}

	if !waitUntil(2*time.Second, func() bool {
		return len(instances["bob"].Toasts()) == 1 && instances["carol"].LedgerLen() == 1
	}) {
		return fmt.Errorf("signal was not delivered")
	}

	fmt.Println()
	for _, name := range []string{"alice", "bob", "carol"} {
		inst := instances[name]
		fmt.Printf("%-6s ledger=%d unread=%d toasts=%d\n", name, inst.LedgerLen(), inst.UnreadCount(), len(inst.Toasts()))
	}

	fmt.Println()
	fmt.Println("... 10 seconds later")
	clock.Advance(instCfg.Lifetimes.RemoteMention + time.Millisecond)
	if !waitUntil(2*time.Second, func() bool { return len(instances["bob"].Toasts()) == 0 }) {
		return fmt.Errorf("toast did not expire")
	}
	fmt.Println("✓ Demo complete")
	return nil
}

func printToastEvent(viewer string, ev toast.Event) {
	if ev.Added {
		fmt.Printf("[%s] + %s toast %q: %s\n", viewer, ev.Entry.Path, ev.Entry.Title, ev.Entry.Message)
		return
	}
	fmt.Printf("[%s] - toast %q (%s)\n", viewer, ev.Entry.Title, ev.Reason)
}

func shortInstanceID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func waitUntil(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}
