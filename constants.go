package main

//
// CONSTANTS
//

const FUNC_CAP = 160     // stdlib functions storage space, starting point.
const FRAME_CAP = 16     // initial symbol table frame stack capacity.
const FRAME_SIZE = 8     // initial bindings per frame.
const SCRIPT_EXT = ".ms" // suffix selecting script import over plugin load.
const default_WriteMode = 0644

// plugin dispatch results beginning with this marker are failures.
const ErrorMarker = "!!MSCRIPT-ERROR!!"

// statement kinds, selected from the leading sigil of a line.
type StmtKind uint8

const (
	StmtNone StmtKind = iota
	StmtDeclare
	StmtAssign
	StmtEval
	StmtHandler
	StmtLoop
	StmtScope
	StmtReturn
	StmtCountUp
	StmtCountDown
	StmtCount
	StmtForEach
	StmtIf
	StmtElse
	StmtSwitch
	StmtCase
	StmtFunction
	StmtContinue
	StmtBreak
	StmtTrace
	StmtImport
	StmtShellExpr
	StmtShellQuiet
	StmtPrint
	StmtEnd
	StmtShell
	END_STATEMENTS
)

var stmtNames = [...]string{
	StmtNone:       "empty",
	StmtDeclare:    "declare",
	StmtAssign:     "assign",
	StmtEval:       "evaluate",
	StmtHandler:    "handler",
	StmtLoop:       "loop",
	StmtScope:      "scope",
	StmtReturn:     "return",
	StmtCountUp:    "ascending loop",
	StmtCountDown:  "descending loop",
	StmtCount:      "counted loop",
	StmtForEach:    "for-each",
	StmtIf:         "if",
	StmtElse:       "else",
	StmtSwitch:     "switch",
	StmtCase:       "case",
	StmtFunction:   "function",
	StmtContinue:   "continue",
	StmtBreak:      "break",
	StmtTrace:      "trace",
	StmtImport:     "import",
	StmtShellExpr:  "shell expression",
	StmtShellQuiet: "quiet shell",
	StmtPrint:      "print",
	StmtEnd:        "end",
	StmtShell:      "shell",
}

func (k StmtKind) String() string {
	if k < END_STATEMENTS {
		return stmtNames[k]
	}
	return "unknown"
}

// opensBlock reports whether a statement kind owns a body closed by '}'.
func (k StmtKind) opensBlock() bool {
	switch k {
	case StmtHandler, StmtLoop, StmtScope, StmtCountUp, StmtCountDown, StmtCount,
		StmtForEach, StmtIf, StmtSwitch, StmtFunction:
		return true
	}
	return false
}

// outcome kinds, propagated from nested block execution.
type OutKind uint8

const (
	OutNormal OutKind = iota
	OutContinue
	OutBreak
	OutReturn
)

// binary operator identifiers.
type OpKind uint8

const (
	OpNone OpKind = iota
	OpOr
	OpAnd
	OpNeq
	OpLeq
	OpGeq
	OpLss
	OpGtr
	OpEqu
	OpMod
	OpSub
	OpAdd
	OpDiv
	OpMul
	OpPow
)

var opNames = [...]string{
	OpNone: "?", OpOr: "or", OpAnd: "and", OpNeq: "!=", OpLeq: "<=", OpGeq: ">=",
	OpLss: "<", OpGtr: ">", OpEqu: "==", OpMod: "%", OpSub: "-", OpAdd: "+",
	OpDiv: "/", OpMul: "*", OpPow: "^",
}

func (o OpKind) String() string { return opNames[o] }

type opSpelling struct {
	text string
	op   OpKind
	word bool
}

// precedence levels, lowest binding first. each level splits at its
// rightmost occurrence. word aliases share the level of their symbol.
var opGroups = [][]opSpelling{
	{{"or", OpOr, true}, {"||", OpOr, false}},
	{{"and", OpAnd, true}, {"&&", OpAnd, false}},
	{{"<>", OpNeq, false}},
	{{"!=", OpNeq, false}, {"NEQ", OpNeq, true}},
	{{"<=", OpLeq, false}, {"LEQ", OpLeq, true}},
	{{">=", OpGeq, false}, {"GEQ", OpGeq, true}},
	{{"<", OpLss, false}, {"LSS", OpLss, true}},
	{{">", OpGtr, false}, {"GTR", OpGtr, true}},
	{{"==", OpEqu, false}, {"EQU", OpEqu, true}},
	{{"=", OpEqu, false}},
	{{"%", OpMod, false}},
	{{"-", OpSub, false}},
	{{"+", OpAdd, false}},
	{{"/", OpDiv, false}},
	{{"*", OpMul, false}},
	{{"^", OpPow, false}},
}

// symbolic operator spellings, longest first. a scan reads the longest one
// at each position so '<' never matches inside '<=' or '<>'.
var opSymbols = []string{"<>", "!=", "<=", ">=", "==", "&&", "||", "<", ">", "=", "!", "%", "-", "+", "/", "*", "^"}

// named constants recognised by the evaluator before symbol lookup.
var namedConstants = map[string]Value{
	"pi":     Number(3.141592653589793),
	"e":      Number(2.718281828459045),
	"tab":    String("\t"),
	"cr":     String("\r"),
	"lf":     String("\n"),
	"crlf":   String("\r\n"),
	"quote":  String("\""),
	"squote": String("'"),
}

// names which may not be declared as variables.
var reservedNames = map[string]bool{
	"null": true, "true": true, "false": true, "not": true,
	"and": true, "or": true,
}

// log levels, RFC 5424 numbering.
const (
	LOG_EMERG int = iota
	LOG_ALERT
	LOG_CRIT
	LOG_ERR
	LOG_WARNING
	LOG_NOTICE
	LOG_INFO
	LOG_DEBUG
)

// host exit codes
const (
	EXIT_OK int = iota
	EXIT_EXCEPTION
	EXIT_SYNTAX
	EXIT_USAGE
)
