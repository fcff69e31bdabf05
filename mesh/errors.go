package mesh

import "fmt"

// ErrorKind identifies the class of a construction-time failure. Queries
// never fail (they return a neutral "no hit"/zero result); Build and
// BuildIndexed return errors only of these kinds. Restore also returns these
// kinds (for a format version mismatch or a bit-budget overflow) and can
// return plain I/O or gob decoding errors.
type ErrorKind int

const (
	// EmptyInput: no triangles were supplied.
	EmptyInput ErrorKind = iota
	// DegenerateTriangle: the strict constructor rejected a triangle whose
	// three indices are not all distinct.
	DegenerateTriangle
	// IndexOutOfRange: a triangle referenced a vertex index outside
	// [0, vertex_count).
	IndexOutOfRange
	// TooManyMaterials: the material list is longer than MaterialMask+1.
	TooManyMaterials
	// MaterialIndexOutOfRange: a triangle's material index is >= the
	// material count.
	MaterialIndexOutOfRange
	// MaterialsAbsentNonzeroIndex: the material list is empty but a
	// triangle specifies a nonzero material index.
	MaterialsAbsentNonzeroIndex
	// TreeConversionFailed: the BVH builder or codec could not produce a
	// valid serialized tree from the sanitized input.
	TreeConversionFailed
	// SubShapeIDOverflow: TriangleBlockIDBits + NumTriangleBits would
	// exceed the caller's SubShapeID bit budget.
	SubShapeIDOverflow
)

func (k ErrorKind) String() string {
	switch k {
	case EmptyInput:
		return "EmptyInput"
	case DegenerateTriangle:
		return "DegenerateTriangle"
	case IndexOutOfRange:
		return "IndexOutOfRange"
	case TooManyMaterials:
		return "TooManyMaterials"
	case MaterialIndexOutOfRange:
		return "MaterialIndexOutOfRange"
	case MaterialsAbsentNonzeroIndex:
		return "MaterialsAbsentNonzeroIndex"
	case TreeConversionFailed:
		return "TreeConversionFailed"
	case SubShapeIDOverflow:
		return "SubShapeIDOverflow"
	default:
		return "Unknown"
	}
}

// BuildError is the error type returned by Build and BuildIndexed. It carries
// a machine-checkable Kind alongside a human-readable message so callers can
// either print Error() directly or switch on Kind via errors.As.
type BuildError struct {
	Kind ErrorKind
	msg  string
}

func (e *BuildError) Error() string {
	return e.msg
}

// Unwrap always returns nil, because BuildError never wraps another error.
func (e *BuildError) Unwrap() error {
	return nil
}

func newBuildError(kind ErrorKind, format string, args ...interface{}) *BuildError {
	return &BuildError{Kind: kind, msg: fmt.Sprintf("mesh: %s: %s", kind, fmt.Sprintf(format, args...))}
}
