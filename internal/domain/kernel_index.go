package domain

import (
	"strconv"
	"strings"

	m "securehls.dev/pkg/securehls/internal/model"
)

// KernelIndex answers the questions the direct detector asks about a kernel.
type KernelIndex interface {
	// DeclaredArrayBound returns the element count of a fixed-size array
	// declaration, resolving #define constants.
	DeclaredArrayBound(name string) (int, bool)
	// LoopBoundExpr returns the first counted loop driven by name.
	LoopBoundExpr(name string) (LoopBound, bool)
	// Loops lists every counted loop in source order.
	Loops() []LoopBound
	// Accesses lists every array subscript and pointer dereference in
	// source order.
	Accesses() []ArrayAccess
	// Functions lists the names of the functions defined in the file.
	Functions() []string
}

// LoopBound is the condition of a counted for loop, normalized to
// `Var Op Bound` with Op either "<" or "<=".
type LoopBound struct {
	Var       string
	Op        string
	Bound     string
	Line      int
	header    int
	bodyStart int
	bodyEnd   int
	boundToks []m.Token
}

// Inclusive reports whether the loop runs up to and including its bound.
func (l LoopBound) Inclusive() bool {
	return l.Op == "<="
}

func (l LoopBound) contains(i int) bool {
	return i >= l.bodyStart && i <= l.bodyEnd
}

// LocalDef is an assignment or initialized declaration `Name = Expr`.
type LocalDef struct {
	Name    string
	Text    string
	Line    int
	Pointer bool
	expr    []m.Token
	tok     int
}

// Clamped reports whether the definition selects its value with a ternary.
func (d LocalDef) Clamped() bool {
	for _, t := range d.expr {
		if t.Is("?") {
			return true
		}
	}

	return false
}

// ArrayAccess is a subscript or pointer dereference.
type ArrayAccess struct {
	Array     string
	IndexText string
	Line      int
	Write     bool
	Deref     bool
	index     []m.Token
	tok       int
}

type condRange struct {
	start, end         int
	bodyStart, bodyEnd int
}

type functionSpan struct {
	name               string
	bodyStart, bodyEnd int
}

type kernelIndex struct {
	src       []byte
	toks      []m.Token
	match     []int
	defines   map[string]int
	arrays    map[string]int
	loops     []LoopBound
	defs      []LocalDef
	accesses  []ArrayAccess
	conds     []condRange
	functions []functionSpan
	headers   [][2]int
}

var (
	assignOps = map[string]bool{
		"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
		"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
	}
	notTypeWords = map[string]bool{
		"return": true, "case": true, "sizeof": true, "else": true, "goto": true, "do": true,
	}
	controlWords = map[string]bool{
		"for": true, "if": true, "while": true, "switch": true,
	}
	typeWords = map[string]bool{
		"void": true, "char": true, "short": true, "int": true, "long": true, "float": true,
		"double": true, "signed": true, "unsigned": true, "const": true, "volatile": true,
	}
)

func buildKernelIndex(src []byte, tokens []m.Token) *kernelIndex {
	k := &kernelIndex{
		src:     src,
		defines: map[string]int{},
		arrays:  map[string]int{},
	}

	k.collectDefines(tokens)

	for _, t := range tokens {
		if !t.Directive {
			k.toks = append(k.toks, t)
		}
	}

	k.match = matchBrackets(k.toks)
	k.collectFunctions()
	k.collectArrays()

	for _, fn := range k.functions {
		k.scanBody(fn.bodyStart, fn.bodyEnd)
	}

	return k
}

func (k *kernelIndex) collectDefines(tokens []m.Token) {
	for i := 0; i+3 < len(tokens); i++ {
		if !tokens[i].Directive || !tokens[i].Is("#") || !tokens[i+1].Is("define") {
			continue
		}

		name, value := tokens[i+2], tokens[i+3]
		if name.Line != value.Line || !value.Directive || name.Kind != m.TokenIdent || value.Kind != m.TokenNumber {
			continue
		}

		// #define N(x) is a macro, not a constant
		if i+4 < len(tokens) && tokens[i+4].Line == name.Line && tokens[i+4].Directive {
			continue
		}

		if n, ok := parseIntLiteral(value.Text); ok {
			k.defines[name.Text] = n
		}
	}
}

func parseIntLiteral(s string) (int, bool) {
	s = strings.TrimRight(s, "uUlL")

	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, false
	}

	return int(n), true
}

func matchBrackets(toks []m.Token) []int {
	match := make([]int, len(toks))
	for i := range match {
		match[i] = -1
	}

	pairs := map[string]string{")": "(", "]": "[", "}": "{"}

	var stack []int

	for i, t := range toks {
		if t.Kind != m.TokenPunct {
			continue
		}

		switch t.Text {
		case "(", "[", "{":
			stack = append(stack, i)
		case ")", "]", "}":
			if len(stack) == 0 || toks[stack[len(stack)-1]].Text != pairs[t.Text] {
				continue
			}

			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			match[open] = i
			match[i] = open
		}
	}

	return match
}

func (k *kernelIndex) collectFunctions() {
	n := len(k.toks)

	for i := 0; i < n; i++ {
		t := k.toks[i]

		if t.Is("{") && k.match[i] > i {
			i = k.match[i]
			continue
		}

		if t.Kind != m.TokenIdent || controlWords[t.Text] || i+1 >= n || !k.toks[i+1].Is("(") {
			continue
		}

		closeParen := k.match[i+1]
		if closeParen < 0 || closeParen+1 >= n || !k.toks[closeParen+1].Is("{") {
			continue
		}

		body := closeParen + 1

		end := k.match[body]
		if end < 0 {
			end = n - 1
		}

		k.functions = append(k.functions, functionSpan{name: t.Text, bodyStart: body, bodyEnd: end})
		i = end
	}
}

func (k *kernelIndex) collectArrays() {
	for i := 1; i+1 < len(k.toks); i++ {
		if k.toks[i].Kind != m.TokenIdent || !k.toks[i+1].Is("[") || !k.isDeclaration(i) {
			continue
		}

		closeBracket := k.match[i+1]
		if closeBracket != i+3 {
			continue
		}

		if size, ok := k.constValue(k.toks[i+2 : i+3]); ok {
			k.arrays[k.toks[i].Text] = size
		}
	}
}

// isDeclaration reports whether the identifier at i, followed by "[", names
// an array being declared rather than accessed.
func (k *kernelIndex) isDeclaration(i int) bool {
	if i == 0 {
		return false
	}

	prev := k.toks[i-1]

	switch {
	case prev.Kind == m.TokenIdent:
		if notTypeWords[prev.Text] {
			return false
		}
	case prev.Is("*"):
		if i < 2 || !isTypeWord(k.toks[i-2]) {
			return false
		}
	default:
		return false
	}

	closeBracket := k.match[i+1]
	if closeBracket < 0 || closeBracket+1 >= len(k.toks) {
		return false
	}

	next := k.toks[closeBracket+1]

	return next.Is(";") || next.Is("=") || next.Is(",") || next.Is("[") || next.Is(")")
}

// constValue resolves a single literal or #define name.
func (k *kernelIndex) constValue(toks []m.Token) (int, bool) {
	if len(toks) != 1 {
		return 0, false
	}

	switch toks[0].Kind {
	case m.TokenNumber:
		return parseIntLiteral(toks[0].Text)
	case m.TokenIdent:
		n, ok := k.defines[toks[0].Text]
		return n, ok
	default:
		return 0, false
	}
}

func (k *kernelIndex) scanBody(start, end int) {
	for i := start + 1; i < end; i++ {
		t := k.toks[i]

		switch {
		case t.Is("for") && k.toks[i+1].Is("("):
			k.scanFor(i)
		case (t.Is("if") || t.Is("while")) && k.toks[i+1].Is("("):
			k.scanCond(i)
		case t.Kind == m.TokenIdent && k.toks[i+1].Is("=") && !k.inHeader(i):
			k.scanDef(i)
		}

		if t.Kind == m.TokenIdent && k.toks[i+1].Is("[") && !k.isDeclaration(i) {
			k.scanAccess(i)
		}

		if t.Is("*") && k.unaryAt(i) && k.toks[i+1].Kind == m.TokenIdent {
			k.scanDeref(i)
		}
	}
}

func (k *kernelIndex) inHeader(i int) bool {
	for _, h := range k.headers {
		if i > h[0] && i < h[1] {
			return true
		}
	}

	return false
}

func (k *kernelIndex) scanFor(i int) {
	open := i + 1

	closeParen := k.match[open]
	if closeParen < 0 {
		return
	}

	k.headers = append(k.headers, [2]int{open, closeParen})

	var semis []int

	for j := open + 1; j < closeParen; j++ {
		if k.toks[j].Is("(") || k.toks[j].Is("[") {
			if k.match[j] > j {
				j = k.match[j]
			}

			continue
		}

		if k.toks[j].Is(";") {
			semis = append(semis, j)
		}
	}

	if len(semis) != 2 {
		return
	}

	bodyStart, bodyEnd, ok := k.bodyAfter(closeParen)
	if !ok {
		return
	}

	for _, clause := range splitTop(k.toks[semis[0]+1:semis[1]], "&&") {
		loop, ok := parseLoopCond(clause)
		if !ok {
			continue
		}

		loop.Bound = k.text(loop.boundToks)
		loop.Line = k.toks[i].Line
		loop.header = i
		loop.bodyStart = bodyStart
		loop.bodyEnd = bodyEnd
		k.loops = append(k.loops, loop)

		return
	}
}

func parseLoopCond(clause []m.Token) (LoopBound, bool) {
	if len(clause) < 3 {
		return LoopBound{}, false
	}

	first, op := clause[0], clause[1]
	if first.Kind == m.TokenIdent && (op.Is("<") || op.Is("<=")) {
		return LoopBound{Var: first.Text, Op: op.Text, boundToks: clause[2:]}, true
	}

	last, rop := clause[len(clause)-1], clause[len(clause)-2]
	if last.Kind == m.TokenIdent && (rop.Is(">") || rop.Is(">=")) {
		normalized := "<"
		if rop.Is(">=") {
			normalized = "<="
		}

		return LoopBound{Var: last.Text, Op: normalized, boundToks: clause[:len(clause)-2]}, true
	}

	return LoopBound{}, false
}

// splitTop splits toks at top-level occurrences of sep.
func splitTop(toks []m.Token, sep string) [][]m.Token {
	var (
		parts [][]m.Token
		depth int
		start int
	)

	for j, t := range toks {
		switch {
		case t.Is("(") || t.Is("["):
			depth++
		case t.Is(")") || t.Is("]"):
			depth--
		case depth == 0 && t.Is(sep):
			parts = append(parts, toks[start:j])
			start = j + 1
		}
	}

	return append(parts, toks[start:])
}

func (k *kernelIndex) scanCond(i int) {
	open := i + 1

	closeParen := k.match[open]
	if closeParen < 0 {
		return
	}

	k.headers = append(k.headers, [2]int{open, closeParen})

	bodyStart, bodyEnd, ok := k.bodyAfter(closeParen)
	if !ok {
		return
	}

	k.conds = append(k.conds, condRange{start: open + 1, end: closeParen - 1, bodyStart: bodyStart, bodyEnd: bodyEnd})
}

// bodyAfter returns the token range of the statement or block following a
// control header closed at closeParen.
func (k *kernelIndex) bodyAfter(closeParen int) (int, int, bool) {
	start := closeParen + 1
	if start >= len(k.toks) {
		return 0, 0, false
	}

	if k.toks[start].Is("{") {
		end := k.match[start]
		return start, end, end > start
	}

	end, ok := k.statementEnd(start)

	return start, end, ok
}

func (k *kernelIndex) scanDef(i int) {
	if i > 0 {
		prev := k.toks[i-1]
		if prev.Is(".") || prev.Is("->") || prev.Is("]") || prev.Is(")") {
			return
		}

		// `*p = v` stores through p
		if prev.Is("*") && k.unaryAt(i-1) {
			return
		}
	}

	var (
		expr  []m.Token
		depth int
	)

	for j := i + 2; j < len(k.toks); j++ {
		t := k.toks[j]
		if depth == 0 && (t.Is(";") || t.Is(",") || t.Is("{") || t.Is("}")) {
			break
		}

		switch {
		case t.Is("(") || t.Is("["):
			depth++
		case t.Is(")") || t.Is("]"):
			depth--
		}

		if depth < 0 {
			break
		}

		expr = append(expr, t)
	}

	if len(expr) == 0 {
		return
	}

	pointer := i >= 2 && k.toks[i-1].Is("*") && k.toks[i-2].Kind == m.TokenIdent

	k.defs = append(k.defs, LocalDef{
		Name:    k.toks[i].Text,
		Text:    k.text(expr),
		Line:    k.toks[i].Line,
		Pointer: pointer,
		expr:    expr,
		tok:     i,
	})
}

func (k *kernelIndex) scanAccess(i int) {
	open := i + 1

	closeBracket := k.match[open]
	if closeBracket < 0 {
		return
	}

	index := k.toks[open+1 : closeBracket]

	after := closeBracket + 1
	for after < len(k.toks) && k.toks[after].Is("[") && k.match[after] > after {
		after = k.match[after] + 1
	}

	write := after < len(k.toks) && isWriteOp(k.toks[after])
	if i > 0 && (k.toks[i-1].Is("++") || k.toks[i-1].Is("--")) {
		write = true
	}

	k.accesses = append(k.accesses, ArrayAccess{
		Array:     k.toks[i].Text,
		IndexText: k.text(index),
		Line:      k.toks[i].Line,
		Write:     write,
		index:     index,
		tok:       i,
	})
}

func (k *kernelIndex) scanDeref(i int) {
	name := i + 1
	if name+1 < len(k.toks) && (k.toks[name+1].Is("[") || k.toks[name+1].Is("(")) {
		return
	}

	write := name+1 < len(k.toks) && isWriteOp(k.toks[name+1])
	if i > 0 && (k.toks[i-1].Is("++") || k.toks[i-1].Is("--")) {
		write = true
	}

	k.accesses = append(k.accesses, ArrayAccess{
		Array:     k.toks[name].Text,
		IndexText: "0",
		Line:      k.toks[i].Line,
		Write:     write,
		Deref:     true,
		tok:       i,
	})
}

func isTypeWord(t m.Token) bool {
	return t.Kind == m.TokenIdent && (typeWords[t.Text] || strings.HasSuffix(t.Text, "_t"))
}

func isWriteOp(t m.Token) bool {
	return assignOps[t.Text] || t.Is("++") || t.Is("--")
}

// unaryAt reports whether the "*" at i is a dereference rather than a
// multiplication or part of a declaration.
func (k *kernelIndex) unaryAt(i int) bool {
	if i == 0 {
		return true
	}

	prev := k.toks[i-1]

	switch {
	case prev.Kind == m.TokenNumber || prev.Kind == m.TokenString:
		return false
	case prev.Kind == m.TokenIdent:
		// `float *p` declares, `return *p` dereferences
		return prev.Is("return")
	case prev.Is(")") || prev.Is("]"):
		return false
	default:
		return true
	}
}

// statementEnd returns the index of the ";" that ends the statement
// starting at i.
func (k *kernelIndex) statementEnd(i int) (int, bool) {
	for j := i; j < len(k.toks); j++ {
		t := k.toks[j]

		switch {
		case t.Is("(") || t.Is("["):
			if k.match[j] < 0 {
				return 0, false
			}

			j = k.match[j]
		case t.Is(";"):
			return j, true
		case t.Is("{") || t.Is("}"):
			return 0, false
		}
	}

	return 0, false
}

// statementAt returns the token range of the statement containing i. It
// fails for tokens inside a control header.
func (k *kernelIndex) statementAt(i int) (int, int, bool) {
	start := 0

scan:
	for j := i - 1; j >= 0; j-- {
		t := k.toks[j]

		switch {
		case t.Is(")") || t.Is("]"):
			open := k.match[j]
			if open < 0 {
				return 0, 0, false
			}

			if t.Is(")") && open > 0 && controlWords[k.toks[open-1].Text] {
				start = j + 1
				break scan
			}

			j = open
		case t.Is("(") || t.Is("["):
			return 0, 0, false
		case t.Is(";") || t.Is("{") || t.Is("}") || t.Is("else") || t.Is("do"):
			start = j + 1
			break scan
		}
	}

	end, ok := k.statementEnd(start)
	if !ok || end < i {
		return 0, 0, false
	}

	return start, end, true
}

// anchorAt returns the exact source text of the statement containing i.
func (k *kernelIndex) anchorAt(i int) (string, bool) {
	start, end, ok := k.statementAt(i)
	if !ok {
		return "", false
	}

	return string(k.src[k.toks[start].Offset:k.toks[end].End()]), true
}

// text returns the source text spanned by toks.
func (k *kernelIndex) text(toks []m.Token) string {
	if len(toks) == 0 {
		return ""
	}

	return string(k.src[toks[0].Offset:toks[len(toks)-1].End()])
}

func (k *kernelIndex) functionOf(i int) (functionSpan, bool) {
	for _, fn := range k.functions {
		if i > fn.bodyStart && i < fn.bodyEnd {
			return fn, true
		}
	}

	return functionSpan{}, false
}

func (k *kernelIndex) sameFunction(a, b int) bool {
	fa, okA := k.functionOf(a)
	fb, okB := k.functionOf(b)

	return okA && okB && fa.bodyStart == fb.bodyStart
}

// defBefore returns the latest definition of name preceding token at within
// the same function.
func (k *kernelIndex) defBefore(name string, at int) (LocalDef, bool) {
	var (
		found LocalDef
		ok    bool
	)

	for _, d := range k.defs {
		if d.tok >= at {
			break
		}

		if d.Name == name && k.sameFunction(d.tok, at) {
			found, ok = d, true
		}
	}

	return found, ok
}

// enclosingLoop returns the innermost loop over name whose body contains at.
func (k *kernelIndex) enclosingLoop(name string, at int) (LoopBound, bool) {
	var (
		found LoopBound
		ok    bool
	)

	for _, l := range k.loops {
		if l.Var == name && l.contains(at) {
			found, ok = l, true
		}
	}

	return found, ok
}

// defChain returns the unclamped definitions expr depends on, depth first.
func (k *kernelIndex) defChain(expr []m.Token, at int) []LocalDef {
	var chain []LocalDef

	seen := map[string]bool{}

	var walk func(expr []m.Token, at int)
	walk = func(expr []m.Token, at int) {
		for _, t := range expr {
			if t.Kind != m.TokenIdent || seen[t.Text] {
				continue
			}

			d, ok := k.defBefore(t.Text, at)
			if !ok || d.Clamped() {
				continue
			}

			seen[t.Text] = true
			chain = append(chain, d)
			walk(d.expr, d.tok)
		}
	}

	walk(expr, at)

	return chain
}

// dependsOn reports whether expr reads v directly or through unclamped
// definitions.
func (k *kernelIndex) dependsOn(expr []m.Token, v string, at int) bool {
	if mentions(expr, v) {
		return true
	}

	for _, d := range k.defChain(expr, at) {
		if mentions(d.expr, v) {
			return true
		}
	}

	return false
}

func mentions(toks []m.Token, names ...string) bool {
	for _, t := range toks {
		if t.Kind != m.TokenIdent {
			continue
		}

		for _, n := range names {
			if t.Text == n {
				return true
			}
		}
	}

	return false
}

// guardedBy reports whether i sits in the body of an if or while whose
// condition mentions one of names.
func (k *kernelIndex) guardedBy(i int, names ...string) bool {
	for _, c := range k.conds {
		if i >= c.bodyStart && i <= c.bodyEnd && mentions(k.toks[c.start:c.end+1], names...) {
			return true
		}
	}

	return false
}

// checkedBetween reports whether a condition between from and to mentions name.
func (k *kernelIndex) checkedBetween(from, to int, name string) bool {
	for _, c := range k.conds {
		if c.start > from && c.start < to && mentions(k.toks[c.start:c.end+1], name) {
			return true
		}
	}

	return false
}

func (k *kernelIndex) DeclaredArrayBound(name string) (int, bool) {
	n, ok := k.arrays[name]
	return n, ok
}

func (k *kernelIndex) LoopBoundExpr(name string) (LoopBound, bool) {
	for _, l := range k.loops {
		if l.Var == name {
			return l, true
		}
	}

	return LoopBound{}, false
}

func (k *kernelIndex) Functions() []string {
	names := make([]string, 0, len(k.functions))
	for _, fn := range k.functions {
		names = append(names, fn.name)
	}

	return names
}

func (k *kernelIndex) Loops() []LoopBound {
	return k.loops
}

func (k *kernelIndex) Accesses() []ArrayAccess {
	return k.accesses
}
