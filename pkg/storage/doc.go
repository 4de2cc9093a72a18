/*
Package storage provides the durable record store shared by all HO Connect instances.

The store is a plain key-value layer. Each shared collection (employees,
tasks, issues, notifications) is one JSON array under one key and is always
rewritten in full; there are no per-record writes. A write therefore costs
O(collection size), which is fine for one organization's directory and a
ledger capped at 100 records.

# Backends

	BoltStore   embedded bbolt file <dataDir>/hoconnect.db; one process
	RedisStore  Redis strings; any number of processes

	┌─────────────── hoconnect.db ───────────────┐
	│ collections                                 │
	│   ho_connect_employees      [Employee...]   │
	│   ho_connect_tasks          [Task...]       │
	│   ho_connect_issues         [Issue...]      │
	│   ho_connect_notifications  [Notification]  │
	│ sessions                                    │
	│   ho_connect_user:<instance> Employee       │
	└─────────────────────────────────────────────┘

# Signalling

SignalingStore wraps a shared Store for one instance. A Put on a collection
key writes through and then publishes an events.Signal with the full new
value, stamped with the instance id, so every other instance can replace its
copy. Session keys are never signalled.

	shared, _ := storage.NewBoltStore(dataDir)
	replica := storage.NewSignalingStore(shared, bus, instanceID)
	_ = storage.Save(replica, storage.KeyTasks, tasks)

# Consistency

There is no version token. Two instances that read, modify and write the
same collection concurrently race, and the later write wins; a notification
appended by the earlier writer can be lost. This is a known limitation of
the design, kept deliberately.

# Failure Handling

Load and Decode never fail. A missing key, a read error, or a malformed
document yields an empty collection; parse failures are logged and counted
in hoconnect_signal_parse_failures_total.
*/
package storage
