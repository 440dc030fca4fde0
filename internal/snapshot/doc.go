// Package snapshot reads and writes the designer's own project snapshot: a
// flat, lossless JSON image of a design graph used for backups and for
// moving projects between installations.
//
// Two layouts are accepted on import. The current layout mirrors
// design.Graph with a format header. The legacy layout written by the
// first generation of the designer uses Portuguese section names
// (projeto, areas, ambientes, circuitos, modulos, vinculacoes) and carries
// no boards, keypads, scenes or network addresses.
//
// Both layouts are checked against an embedded JSON Schema. A section that
// fails its schema is treated as absent and reported; a document whose
// envelope fails is rejected with design.ErrMalformedDocument.
package snapshot
