/*
Package dialog implements the conversation state machine and its
formatting collaborators.

The Controller owns the protocol: it collects and validates personal
inputs across turns, invokes the calculation engine at the single
terminal input transition, and routes button presses over the frozen
section order while the user browses results. Keyboard construction,
MarkdownV2 rendering and the document export are pure helpers consumed
by the controller.
*/
package dialog
