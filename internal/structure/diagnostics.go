package structure

import "fmt"

// DiagnosticKind classifies a reference the build could not honour.
type DiagnosticKind int

const (
	UnresolvedGeometry DiagnosticKind = iota // geometry index with no association
	DanglingChild                            // child index with no record
	ClaimedChild                             // child already owned by another parent
	CyclicChild                              // child is the parent or one of its ancestors
)

func (k DiagnosticKind) String() string {
	switch k {
	case UnresolvedGeometry:
		return "unresolved-geometry"
	case DanglingChild:
		return "dangling-child"
	case ClaimedChild:
		return "claimed-child"
	case CyclicChild:
		return "cyclic-child"
	default:
		return "unknown"
	}
}

// Diagnostic records one dropped reference. Diagnostics never fail a build.
type Diagnostic struct {
	Kind DiagnosticKind
	// Idx is the record that carried the reference.
	Idx int
	// Ref is the unresolved child or geometry index.
	Ref int
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: record %d -> %d", d.Kind, d.Idx, d.Ref)
}
