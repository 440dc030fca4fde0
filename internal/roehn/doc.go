// Package roehn compiles a design graph into a ROEHN Wizard project document
// (.rwp) and parses such documents back into design graphs.
//
// The document is a typed tree. Every node carries a "$type" discriminator as
// its first JSON field and cross-references between nodes are GUIDs, with the
// all-zero GUID meaning "unset". References are modelled by [Ref] so that an
// unset reference is a type-level state rather than a string comparison.
//
// A [Session] holds all per-run state (reference registry, unit counter,
// network roster) and is never shared between runs:
//
//	doc, report, err := roehn.Compile(graph, opts, logger)
//	graph, err := roehn.Parse(doc, logger)
package roehn
