/*
Package assistant talks to the external content generator.

The generator is an opaque request/response collaborator: it proposes
project ideas for a challenge and drafts tasks from free-form instructions.
Client implements it on the Anthropic Messages API. Safe wraps any
Generator so that errors, timeouts and replies of the wrong shape come back
as "no suggestion" and never reach the caller as failures.
*/
package assistant
