package grammar

// Op discriminates grammar terms.
type Op uint8

const (
	OpInvalid Op = iota
	OpTok        // a terminal by name
	OpWord       // a terminal whose text must also match
	OpRef        // a rule reference
	OpSeq        // all items in order
	OpChoice     // first matching alternative, by precedence then order
	OpOpt        // zero or one
	OpRepeat     // zero or more
	OpRepeat1    // one or more
	OpList       // delimited list with error recovery
	OpField      // label the nodes produced by the item
	OpAlias      // rename a terminal
	OpPrec       // ordering weight inside a Choice
	OpCut        // commit point inside a Seq
	OpNot        // negative one-token lookahead
)

var opNames = [...]string{
	OpInvalid: "invalid",
	OpTok:     "tok",
	OpWord:    "word",
	OpRef:     "ref",
	OpSeq:     "seq",
	OpChoice:  "choice",
	OpOpt:     "opt",
	OpRepeat:  "repeat",
	OpRepeat1: "repeat1",
	OpList:    "list",
	OpField:   "field",
	OpAlias:   "alias",
	OpPrec:    "prec",
	OpCut:     "cut",
	OpNot:     "not",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "invalid"
}

// Term is one node of a rule body as written with the DSL functions below.
// Terms are plain data; Build compiles them into Exprs.
type Term struct {
	op    Op
	name  string // terminal, rule, field or alias name
	text  string // OpWord
	named bool   // OpAlias
	prec  int
	min   int
	items []*Term
}

// Tok matches one token of the named terminal.
func Tok(name string) *Term {
	return &Term{op: OpTok, name: name}
}

// Word matches one token of terminal kind whose text is exactly text. The
// leaf is anonymous and named by its text, like a keyword.
func Word(kind, text string) *Term {
	return &Term{op: OpWord, name: kind, text: text}
}

// Ref matches the named rule.
func Ref(name string) *Term {
	return &Term{op: OpRef, name: name}
}

// Seq matches each item in order.
func Seq(items ...*Term) *Term {
	return &Term{op: OpSeq, items: items}
}

// Choice matches the first alternative that succeeds. Alternatives are
// tried in descending Prec order, then in the order given.
func Choice(alts ...*Term) *Term {
	return &Term{op: OpChoice, items: alts}
}

// Opt matches t or nothing.
func Opt(t *Term) *Term {
	return &Term{op: OpOpt, items: []*Term{t}}
}

// Repeat matches t zero or more times.
func Repeat(t *Term) *Term {
	return &Term{op: OpRepeat, items: []*Term{t}}
}

// Repeat1 matches t one or more times.
func Repeat1(t *Term) *Term {
	return &Term{op: OpRepeat1, items: []*Term{t}}
}

// List matches zero or more items separated by sep. A nil sep gives a
// list of adjacent items. When the list follows a Cut it recovers from
// malformed items instead of stopping.
func List(item, sep *Term) *Term {
	return list(0, item, sep)
}

// List1 is List with at least one item.
func List1(item, sep *Term) *Term {
	return list(1, item, sep)
}

func list(least int, item, sep *Term) *Term {
	t := &Term{op: OpList, min: least, items: []*Term{item}}
	if sep != nil {
		t.items = append(t.items, sep)
	}
	return t
}

// Field labels the nodes t produces with name.
func Field(name string, t *Term) *Term {
	return &Term{op: OpField, name: name, items: []*Term{t}}
}

// Alias renames the leaf produced by a Tok or Word term to a named node
// kind.
func Alias(t *Term, name string) *Term {
	return &Term{op: OpAlias, name: name, named: true, items: []*Term{t}}
}

// Prec sets the ordering weight of t as a Choice alternative.
func Prec(n int, t *Term) *Term {
	return &Term{op: OpPrec, prec: n, items: []*Term{t}}
}

// Cut commits the enclosing Seq: the items after it are never abandoned.
// A failing item is repaired with ERROR and MISSING nodes instead.
func Cut() *Term {
	return &Term{op: OpCut}
}

// Not succeeds without consuming input when the next token does not match
// t, which must be a Tok or Word.
func Not(t *Term) *Term {
	return &Term{op: OpNot, items: []*Term{t}}
}
