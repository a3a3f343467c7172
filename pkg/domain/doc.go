/*
Package domain contains the core models of the tutoring pipeline.

It is kept pure and free of external dependencies like I/O, persistence or
provider clients.

# Key Entities

  - State: the working memory of one run (conversation, validation verdict, search plan, tutor reply).
  - Partial: the field updates contributed by a single node.
  - ReducerTable: the static per-field merge policy (append or overwrite) used by Merge.
  - RunError: the first unrecovered failure of a run, recorded by the runner.
  - Session: a learning session owned by a user.
*/
package domain
