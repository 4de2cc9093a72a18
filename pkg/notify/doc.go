/*
Package notify implements the notification dispatcher and its receiving
half.

Dispatch (Notify):

 1. mint a fresh id and build the record with IsRead false
 2. prepend it to the ledger view, truncate, persist the whole ledger
 3. show a toast here if the record is a broadcast or targets the viewer

Step 2 is a store write, so every other instance receives the new ledger
through a change signal. The dispatching instance never receives its own
signal and shows its toast directly.

Receive applies such a signal: the ledger view is replaced by the snapshot
and at most one mention targeted at the viewer is toasted. The dispatcher
remembers the id of the last record it toasted from a signal so that the
same snapshot delivered twice does not toast twice.

Writes are whole-collection and unversioned. Two instances dispatching at
the same moment can each persist a ledger missing the other's record; the
last write wins.
*/
package notify
