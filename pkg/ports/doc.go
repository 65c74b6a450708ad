/*
Package ports defines the driven-side interfaces of the dialog engine.

Adapters (in-memory and Redis stores, the Telegram transport, the HTTP
calculation engine client) implement these contracts; the dialog
controller depends only on the interfaces so every collaborator can be
faked in tests.
*/
package ports
