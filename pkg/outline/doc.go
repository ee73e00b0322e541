// Package outline turns flat lines of dotted-numeric outline codes into an
// ordered tree.
//
// # Overview
//
// A work breakdown structure arrives as loose text: "1 Planning",
// "1.1 Scope", "1.2 Budget", "1.1.1 Interviews". The hierarchy is implied by
// the code alone. A code with n dots sits at level n+1 and its parent is the
// code with the last segment removed. There are no explicit ids and no parent
// columns.
//
// The package works in three steps:
//
//   - [Parse] extracts an [Item] from one raw line, or reports that the line
//     carries no code at all. [ParseLines] does this for a whole document.
//   - [Sort] orders items by the integer tuple of their code, so "1.10" comes
//     after "1.2". A code whose segments are not integers fails with a
//     MALFORMED_CODE error.
//   - [Build] links sorted items into a [Forest] using a code index built
//     while walking the items in order.
//
// # Orphans
//
// An item whose parent code never appeared is an orphan. What happens to it
// is an explicit [OrphanPolicy]:
//
//   - [OrphanDrop] leaves it out of the tree (the default)
//   - [OrphanAdopt] hangs it under its nearest existing ancestor
//   - [OrphanStrict] aborts with an ORPHAN_NODE error
//
// Every orphan and duplicate that was tolerated is listed in the
// [BuildReport] so callers can surface it.
//
// # Ordering
//
// Children keep input order, which after [Sort] is numeric code order.
// Because sorting is stable and total on valid codes, any permutation of the
// same item set builds the same forest.
//
// # Concurrency
//
// Items and nodes are plain values. Nothing here holds shared state; a built
// [Forest] may be read from many goroutines as long as nobody mutates it.
package outline
