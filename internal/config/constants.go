package config

const SourceFileExt = ".vx"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".vx", ".vex"}

// ConfigFileName is the per-project configuration file looked up from the
// working directory upward.
const ConfigFileName = "vex.yaml"

// Engine operation names exposed to programs by the native compute engine.
const (
	SumOpName       = "sum"
	MeanOpName      = "mean"
	MinOpName       = "min"
	MaxOpName       = "max"
	SortOpName      = "sort"
	ReverseOpName   = "reverse"
	LenOpName       = "len"
	DotOpName       = "dot"
	MatmulOpName    = "matmul"
	TransposeOpName = "transpose"
	ScaleOpName     = "scale"
	UpperOpName     = "upper"
	LowerOpName     = "lower"
	TrimOpName      = "trim"
	ConcatOpName    = "concat"
)

// LibFuncName is the call form routed to the library specialist.
const LibFuncName = "lib"
