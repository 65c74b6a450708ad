/*
Package session implements keyed session access orchestration.

It serializes all handling for one identity behind a per-key mutex while
letting distinct identities proceed in parallel, so each conversation's
state transitions are strictly sequential even though the process serves
many conversations at once.
*/
package session
