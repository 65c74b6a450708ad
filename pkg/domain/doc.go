/*
Package domain contains the core domain models for the pgdbot dialog engine.

It defines the conversation Session and its Phase machine, the validated
personal inputs (name, birth date, gender), the tagged Action variant that
button payloads are parsed into, and the Result shape returned by the
calculation engine. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Session: Per-identity conversation state between a start and a terminal event.
  - Phase: The current input-collection or browsing state of a session.
  - Action: A closed variant type for button presses (Select, Back, Export, Finish, Gender).
  - Result: Summary tables plus ordered long-form sections from the calculation engine.
*/
package domain
