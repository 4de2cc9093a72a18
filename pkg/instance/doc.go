/*
Package instance holds the state of one running copy of the application.

An Instance owns read replicas of the shared collections (employee
directory, tasks, issues, notification ledger), the identity logged in on
it, and its own toast queue. Instances never talk to each other directly:
every mutation is a whole-collection write to the shared store through a
storage.SignalingStore, which publishes a change signal to every other
instance on the bus.

Lifecycle:

	inst := instance.New(store, bus, instance.Config{})
	inst.Open()  // load collections and session
	inst.Start() // begin applying signals
	defer inst.Close()

A writer updates its own replica directly because it never receives its
own signal. Receivers replace the whole replica with the signalled value;
there is no merge and no version check, so concurrent writers of one
collection resolve as last writer wins.
*/
package instance
