// Package design holds the relational project model edited by integrators:
// projects, areas, rooms, automation boards, circuits, control modules,
// circuit-to-channel links, keypads and scenes.
//
// Store persists the model in SQLite. LoadGraph returns a whole project as a
// Graph for export; CreateGraph inserts an imported Graph in one go.
//
// Kinds are closed enumerations. Every switch over CircuitKind or ModuleKind
// in this module is exhaustive, so adding a kind is a compile-visible change
// in the catalogue below and a test failure everywhere else.
package design
