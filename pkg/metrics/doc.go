/*
Package metrics provides Prometheus metrics and health endpoints for HO Connect.

All collectors are package-level variables registered with the default
registry in init, so any package can record into them without wiring.

# Metrics

Dispatch:
  - hoconnect_notifications_dispatched_total{type,addressing}
  - hoconnect_dispatch_duration_seconds
  - hoconnect_ledger_size

Change signals:
  - hoconnect_signals_published_total{key}
  - hoconnect_signals_received_total{key}
  - hoconnect_signals_dropped_total
  - hoconnect_signal_parse_failures_total{key}

Toasts:
  - hoconnect_toasts_shown_total{path}       path = local | remote
  - hoconnect_toasts_removed_total{reason}   reason = expired | dismissed | evicted

Presence:
  - hoconnect_employees_online
  - hoconnect_employees_offline

Content generator:
  - hoconnect_generator_requests_total{operation,result}

# Gauges

Presence is derived from timestamps and never pushed, so the presence and
ledger gauges are refreshed by a Collector polling a Source:

	c := metrics.NewCollector(inst, 15*time.Second)
	c.Start()
	defer c.Stop()

# Health

The store and the signal bus are critical components: /ready returns 503
until both are registered healthy. The generator is reported on /health only.

	metrics.RegisterComponent(metrics.ComponentStore, true, "bolt open")
	metrics.RegisterComponent(metrics.ComponentBus, true, "memory")
	http.ListenAndServe(":9090", metrics.NewServeMux())

# Timing

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.DispatchDuration)
*/
package metrics
