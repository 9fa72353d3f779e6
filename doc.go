// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

/*
Package mtbdd defines a concrete type for shared, reduced and ordered Binary
Decision Diagrams (BDD), with complement edges, and for their multi-terminal
extension (MTBDD), where leaves carry an arbitrary two-word payload.

Basics

A BDD manager is created with New and a number of variables. Variables have a
stable identity (their creation number, used in Ithvar, Makeset, NewAssoc,
...) and a position in the current order, called a level. New variables can
be added at any position with NewVarFirst, NewVarLast, NewVarBefore and
NewVarAfter.

Most operations return a Node; that is a small integer value with the index of
a vertex in the node table and a complement bit in its lowest position. Hence
negation (method Not) is free and never creates nodes. Constants One and Zero
denote the functions true and false. Value Null is returned when an operation
fails.

Memory management

Nodes are reference counted. Every operation returns a node with one more
external reference and the caller should release it with Free when it is no
longer needed. Unreferenced nodes are reclaimed by a mark-and-sweep garbage
collector that runs when the number of live nodes reaches a threshold. A
function can stop an operation from another goroutine with Abort, and a limit
on the number of nodes can be set with Maxnodesize. In both cases, the
operation returns Null, a callback is called, and the error is recorded in the
manager (see Err).

Variable order

The order of variables can be improved with Reorder, or automatically when
the node table gets too full (see SetReordering). Variables can be grouped
into blocks (see NewBlock) that are moved as a whole. Reordering never changes
the functions denoted by the nodes you hold.

Associations

Quantification, substitution and relational product use variable
associations (NewAssoc) that map variables to either a quantification mark or
a replacement function.

Logging

The manager logs warnings (such as wrong arguments) and debug traces (garbage
collections, resizing, reorderings) through a logrus.FieldLogger that can be
set with the Logger option.
*/
package mtbdd
