/*
Package presence derives online/offline status from lastActive timestamps.

There is no heartbeat channel and no stored presence state. An employee is
online when

	lastActive is set  &&  now - lastActive < Window (5 minutes)

and callers must always pass the current wall-clock time, since the answer
changes as time passes without any write. Login stamps lastActive via Touch.
*/
package presence
