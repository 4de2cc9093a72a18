/*
Package toast manages the transient alerts one instance shows on screen.

A toast is a view of a notification record with a bounded lifetime. Its
state machine has two states:

	Visible ──(own timer fires | Dismiss | pushed out by a newer toast)──▶ Removed

Every toast arms its own timer when it is added to this instance's queue,
so the same record mirrored into two instances expires independently in
each. At most Capacity toasts are visible; adding one more silently drops
the oldest.

Lifetimes:

	locally dispatched, non-mention   6s
	locally dispatched, mention      12s
	mention received via a signal    10s
*/
package toast
