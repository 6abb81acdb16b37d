package grammar

// SchemaVersion is the version of the node type schema. It changes
// whenever a node kind or field is renamed or removed.
const SchemaVersion = 1

// Expr is a compiled term. Exprs are owned by a Language and must not be
// modified.
type Expr struct {
	Op    Op
	Kind  Symbol  // OpTok, OpWord: terminal to match
	Sym   Symbol  // OpTok, OpWord: symbol of the produced leaf
	Text  string  // OpWord
	Rule  RuleID  // OpRef
	Field FieldID // OpField
	Prec  int
	Min   int // OpList
	Items []*Expr

	// First holds the terminals that can start the expression.
	First TokenSet
	// Nullable is set when the expression can match without input.
	Nullable bool
	// Committed is set for items that follow a Cut. A committed item that
	// fails is repaired in place; a committed List recovers from errors.
	Committed bool
	// Sync holds the terminals that can start whatever follows a committed
	// item in its Seq. Recovery stops skipping when it reaches one.
	Sync TokenSet
	// Missing is the symbol of the zero-width node inserted when the
	// expression is absent. Set for committed items and list items.
	Missing Symbol
	// MissingNamed reports whether Missing is a named symbol.
	MissingNamed bool
}

// Separator returns the separator of a List, or nil.
func (e *Expr) Separator() *Expr {
	if e.Op == OpList && len(e.Items) > 1 {
		return e.Items[1]
	}
	return nil
}

// Rule is a compiled named rule.
type Rule struct {
	ID     RuleID
	Name   string
	Hidden bool
	// Symbol is the node kind of a visible rule. For a hidden rule it is
	// the supertype symbol, or zero when the rule has none.
	Symbol Symbol
	Body   *Expr
}

type symbolKind uint8

const (
	symTerminal symbolKind = iota
	symRule
	symAlias
	symSupertype
)

type symbolInfo struct {
	name  string
	named bool
	kind  symbolKind
	extra bool
}

// Language is a compiled grammar. It is immutable and safe for concurrent
// use.
type Language struct {
	name      string
	symbols   []symbolInfo
	terminals int
	fields    []string
	fieldIDs  map[string]FieldID
	rules     []*Rule
	ruleIDs   map[string]RuleID
	start     RuleID
	hidden    map[Symbol]RuleID // supertype symbol -> hidden rule
}

// Name returns the grammar name.
func (l *Language) Name() string { return l.name }

// SymbolCount returns the number of symbols.
func (l *Language) SymbolCount() int { return len(l.symbols) }

// TerminalCount returns the number of terminal symbols.
func (l *Language) TerminalCount() int { return l.terminals }

// SymbolName returns the name of a symbol.
func (l *Language) SymbolName(s Symbol) string {
	if int(s) < len(l.symbols) {
		return l.symbols[s].name
	}
	return ""
}

// IsNamed reports whether nodes of the symbol are named.
func (l *Language) IsNamed(s Symbol) bool {
	return int(s) < len(l.symbols) && l.symbols[s].named
}

// IsTerminal reports whether the symbol is a terminal.
func (l *Language) IsTerminal(s Symbol) bool {
	return int(s) < l.terminals
}

// IsExtra reports whether the terminal is trivia.
func (l *Language) IsExtra(s Symbol) bool {
	return int(s) < len(l.symbols) && l.symbols[s].extra
}

// IsSupertype reports whether the symbol names a hidden rule. Supertype
// symbols only appear on missing nodes.
func (l *Language) IsSupertype(s Symbol) bool {
	return int(s) < len(l.symbols) && l.symbols[s].kind == symSupertype
}

// SymbolForName returns the symbol with the given name and namedness.
func (l *Language) SymbolForName(name string, named bool) (Symbol, bool) {
	for i, info := range l.symbols {
		if info.name == name && info.named == named {
			return Symbol(i), true
		}
	}
	return 0, false
}

// FieldCount returns the number of field labels, not counting the zero id.
func (l *Language) FieldCount() int { return len(l.fields) - 1 }

// FieldName returns the label of a field id, or "" for zero.
func (l *Language) FieldName(f FieldID) string {
	if int(f) < len(l.fields) {
		return l.fields[f]
	}
	return ""
}

// FieldID returns the id of a field label.
func (l *Language) FieldID(name string) (FieldID, bool) {
	id, ok := l.fieldIDs[name]
	return id, ok
}

// Rules returns all rules in declaration order.
func (l *Language) Rules() []*Rule { return l.rules }

// Rule returns a rule by id.
func (l *Language) Rule(id RuleID) *Rule { return l.rules[id] }

// RuleByName returns a rule by name.
func (l *Language) RuleByName(name string) (*Rule, bool) {
	id, ok := l.ruleIDs[name]
	if !ok {
		return nil, false
	}
	return l.rules[id], true
}

// Start returns the start rule.
func (l *Language) Start() *Rule { return l.rules[l.start] }
