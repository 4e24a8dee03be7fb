package domain

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"securehls.dev/pkg/securehls/internal/adapter"
	m "securehls.dev/pkg/securehls/internal/model"
)

// DefaultGuardSuffix names guarded variants: fir becomes fir_secure.
const DefaultGuardSuffix = "_secure"

// Site is one suspected defect with the guard that would protect it. Guard
// is nil when no statement anchor could be derived.
type Site struct {
	Finding m.Finding
	Guard   *m.Guard
}

// DirectDetector scans kernel source for off-by-one loops, unchecked index
// arithmetic, pointers past their region and NULL dereferences.
type DirectDetector struct {
	adapter.CSourceAdapter
	suffix  string
	guarded *regexp.Regexp
}

// NewDirectDetector creates a DirectDetector. An empty suffix selects
// DefaultGuardSuffix.
func NewDirectDetector(lexer adapter.CSourceAdapter, suffix string) *DirectDetector {
	if suffix == "" {
		suffix = DefaultGuardSuffix
	}

	return &DirectDetector{
		CSourceAdapter: lexer,
		suffix:         suffix,
		guarded:        regexp.MustCompile(regexp.QuoteMeta(suffix) + `\d*$`),
	}
}

// Index tokenizes src and builds its KernelIndex.
func (d *DirectDetector) Index(ctx context.Context, path m.Path, src []byte) (KernelIndex, error) {
	k, err := d.index(ctx, path, src)
	if err != nil {
		return nil, err
	}

	return k, nil
}

func (d *DirectDetector) index(ctx context.Context, path m.Path, src []byte) (*kernelIndex, error) {
	tokens, err := d.Tokenize(ctx, string(path), src)
	if err != nil {
		return nil, fmt.Errorf("tokenize %s: %w", path, err)
	}

	return buildKernelIndex(src, tokens), nil
}

// Analyze implements Detector. Findings are ordered by line and unique per
// line and bug type.
func (d *DirectDetector) Analyze(ctx context.Context, path m.Path, src []byte) ([]m.Finding, error) {
	sites, err := d.Scan(ctx, path, src)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}

	var findings []m.Finding

	for _, s := range sites {
		key := fmt.Sprintf("%d/%s", s.Finding.Line, s.Finding.BugType)
		if seen[key] {
			continue
		}

		seen[key] = true
		findings = append(findings, s.Finding)
	}

	sort.SliceStable(findings, func(i, j int) bool { return findings[i].Line < findings[j].Line })

	return findings, nil
}

// Plan returns the guards for the sites of src, without duplicates.
func (d *DirectDetector) Plan(ctx context.Context, path m.Path, src []byte) ([]m.Guard, error) {
	sites, err := d.Scan(ctx, path, src)
	if err != nil {
		return nil, err
	}

	seen := map[m.Guard]bool{}

	var guards []m.Guard

	for _, s := range sites {
		if s.Guard == nil || seen[*s.Guard] {
			continue
		}

		seen[*s.Guard] = true
		guards = append(guards, *s.Guard)
	}

	return guards, nil
}

// Scan runs every rule over src. Guarded variants yield nothing.
func (d *DirectDetector) Scan(ctx context.Context, path m.Path, src []byte) ([]Site, error) {
	k, err := d.index(ctx, path, src)
	if err != nil {
		return nil, err
	}

	for _, fn := range k.Functions() {
		if d.guarded.MatchString(fn) {
			return nil, nil
		}
	}

	r := &ruleRun{k: k, path: path}
	r.inclusiveLoops()
	r.inductionSums()
	r.strideMismatch()
	r.pointerPastEnd()
	r.nullDeref()

	return r.sites, nil
}

type ruleRun struct {
	k     *kernelIndex
	path  m.Path
	sites []Site
}

func (r *ruleRun) add(acc ArrayAccess, line int, predicate, message string, bugType m.BugType) {
	site := Site{
		Finding: m.Finding{SourcePath: r.path, Line: line, BugType: bugType, Message: message},
	}

	if anchor, ok := r.k.anchorAt(acc.tok); ok {
		site.Guard = &m.Guard{Anchor: anchor, Predicate: predicate, BugType: bugType}
	}

	r.sites = append(r.sites, site)
}

func oobType(acc ArrayAccess) m.BugType {
	if acc.Write {
		return m.BugOOBWrite
	}

	return m.BugOOBRead
}

func accessVerb(acc ArrayAccess) string {
	if acc.Write {
		return "write"
	}

	return "read"
}

func subscript(acc ArrayAccess) string {
	return fmt.Sprintf("%s[%s]", acc.Array, acc.IndexText)
}

// namesOf lists the identifiers an index depends on, including v.
func (r *ruleRun) namesOf(acc ArrayAccess, v string) []string {
	names := []string{v}

	for _, t := range acc.index {
		if t.Kind == m.TokenIdent {
			names = append(names, t.Text)
		}
	}

	for _, d := range r.k.defChain(acc.index, acc.tok) {
		names = append(names, d.Name)
	}

	return names
}

func parenthesize(expr string, toks []m.Token) string {
	if len(toks) > 1 {
		return "(" + expr + ")"
	}

	return expr
}

// inclusiveLoops flags `v <= B` loops feeding an index, and literal loop
// bounds past a declared array size.
func (r *ruleRun) inclusiveLoops() {
	for _, loop := range r.k.Loops() {
		literal, isLiteral := r.k.constValue(loop.boundToks)

		for _, acc := range r.k.Accesses() {
			if acc.Deref || !loop.contains(acc.tok) || !r.k.dependsOn(acc.index, loop.Var, acc.tok) {
				continue
			}

			size, sized := r.k.DeclaredArrayBound(acc.Array)

			var flagged bool

			switch {
			case sized && isLiteral:
				flagged = (loop.Inclusive() && literal >= size) || (!loop.Inclusive() && literal > size)
			default:
				flagged = loop.Inclusive()
			}

			if !flagged || r.k.guardedBy(acc.tok, r.namesOf(acc, loop.Var)...) {
				continue
			}

			predicate := fmt.Sprintf("%s >= %s", loop.Var, loop.Bound)
			if sized {
				predicate = fmt.Sprintf("%s >= %d", parenthesize(acc.IndexText, acc.index), size)
			}

			message := fmt.Sprintf("loop bound %s %s %s lets %s %s past the end", loop.Var, loop.Op, loop.Bound, subscript(acc), accessVerb(acc))
			if sized && isLiteral && !loop.Inclusive() {
				message = fmt.Sprintf("loop runs %s up to %d but %s has %d elements", loop.Var, literal-1, acc.Array, size)
			}

			r.add(acc, loop.Line, predicate, message, oobType(acc))
		}
	}
}

// sumOfTwo matches `a + b` over two identifiers.
func sumOfTwo(expr []m.Token) (string, string, bool) {
	if len(expr) != 3 || !expr[1].Is("+") || expr[0].Kind != m.TokenIdent || expr[2].Kind != m.TokenIdent {
		return "", "", false
	}

	return expr[0].Text, expr[2].Text, true
}

// compensated reports whether the outer loop bound already subtracts the
// inner loop's extent, as in `out_h = height - kh + 1`.
func (r *ruleRun) compensated(outer, inner LoopBound) bool {
	if len(inner.boundToks) != 1 {
		return false
	}

	subtracts := func(toks []m.Token) bool {
		for j := 1; j < len(toks); j++ {
			if toks[j-1].Is("-") && toks[j].Text == inner.Bound {
				return true
			}
		}

		return false
	}

	if subtracts(outer.boundToks) {
		return true
	}

	if len(outer.boundToks) == 1 && outer.boundToks[0].Kind == m.TokenIdent {
		if def, ok := r.k.defBefore(outer.Bound, outer.header); ok {
			return subtracts(def.expr)
		}
	}

	return false
}

// inductionSums flags indices built from the sum of two induction variables
// whose outer loop runs over the full extent.
func (r *ruleRun) inductionSums() {
	for _, acc := range r.k.Accesses() {
		if acc.Deref {
			continue
		}

		var (
			predicates []string
			names      []string
		)

		for _, def := range r.k.defChain(acc.index, acc.tok) {
			a, b, ok := sumOfTwo(def.expr)
			if !ok {
				continue
			}

			la, okA := r.k.enclosingLoop(a, def.tok)
			lb, okB := r.k.enclosingLoop(b, def.tok)

			if !okA || !okB {
				continue
			}

			outer, inner := la, lb
			if lb.header < la.header {
				outer, inner = lb, la
			}

			if r.compensated(outer, inner) {
				continue
			}

			predicates = append(predicates, fmt.Sprintf("%s >= %s", def.Name, outer.Bound))
			names = append(names, def.Name)
		}

		if len(predicates) == 0 || r.k.guardedBy(acc.tok, r.namesOf(acc, names[0])...) {
			continue
		}

		predicate := predicates[0]
		for _, p := range predicates[1:] {
			predicate += " || " + p
		}

		message := fmt.Sprintf("%s %s sums induction variables without shrinking the outer range", subscript(acc), accessVerb(acc))
		r.add(acc, acc.Line, predicate, message, oobType(acc))
	}
}

// linearized matches `row * stride + col` and returns stride and col.
func linearized(expr []m.Token) (string, string, bool) {
	if len(expr) != 5 || !expr[1].Is("*") || !expr[3].Is("+") {
		return "", "", false
	}

	if expr[0].Kind != m.TokenIdent || expr[4].Kind != m.TokenIdent {
		return "", "", false
	}

	if expr[2].Kind != m.TokenIdent && expr[2].Kind != m.TokenNumber {
		return "", "", false
	}

	return expr[2].Text, expr[4].Text, true
}

// inductionCopy resolves col to the loop it copies, directly or through a
// single `col = v` definition.
func (r *ruleRun) inductionCopy(col string, at int) (LoopBound, bool) {
	if loop, ok := r.k.enclosingLoop(col, at); ok {
		return loop, true
	}

	def, ok := r.k.defBefore(col, at)
	if !ok || len(def.expr) != 1 || def.expr[0].Kind != m.TokenIdent {
		return LoopBound{}, false
	}

	return r.k.enclosingLoop(def.expr[0].Text, def.tok)
}

// strideMismatch flags row-major indices whose column runs over a range
// other than the row stride.
func (r *ruleRun) strideMismatch() {
	type candidate struct {
		expr []m.Token
		at   int
	}

	for _, acc := range r.k.Accesses() {
		if acc.Deref {
			continue
		}

		candidates := []candidate{{expr: acc.index, at: acc.tok}}
		for _, def := range r.k.defChain(acc.index, acc.tok) {
			candidates = append(candidates, candidate{expr: def.expr, at: def.tok})
		}

		for _, c := range candidates {
			stride, col, ok := linearized(c.expr)
			if !ok {
				continue
			}

			loop, ok := r.inductionCopy(col, c.at)
			if !ok || loop.Bound == stride {
				continue
			}

			if r.k.guardedBy(acc.tok, r.namesOf(acc, col)...) {
				break
			}

			message := fmt.Sprintf("%s %s: column %s runs to %s but the row stride is %s", subscript(acc), accessVerb(acc), col, loop.Bound, stride)
			r.add(acc, acc.Line, fmt.Sprintf("%s >= %s", col, stride), message, oobType(acc))

			break
		}
	}
}

// pointerPastEnd flags `p = base + len` followed by a use of p.
func (r *ruleRun) pointerPastEnd() {
	for _, def := range r.k.defs {
		if !def.Pointer {
			continue
		}

		base, extent, ok := sumOfTwo(def.expr)
		if !ok {
			continue
		}

		for _, acc := range r.k.Accesses() {
			if acc.Array != def.Name || acc.tok <= def.tok || !r.k.sameFunction(def.tok, acc.tok) {
				continue
			}

			if latest, ok := r.k.defBefore(def.Name, acc.tok); ok && latest.tok != def.tok {
				continue
			}

			offset := fmt.Sprintf("(%s - %s)", def.Name, base)
			predicate := fmt.Sprintf("%s >= %s", offset, extent)

			if acc.IndexText != "0" {
				predicate = fmt.Sprintf("%s + %s >= %s", offset, parenthesize(acc.IndexText, acc.index), extent)
			}

			message := fmt.Sprintf("%s points one past %s (%s) and is %s", def.Name, base, def.Text, accessVerbPast(acc))
			r.add(acc, acc.Line, predicate, message, oobType(acc))
		}
	}
}

func accessVerbPast(acc ArrayAccess) string {
	if acc.Write {
		return "written"
	}

	return "read"
}

// nullDeref flags a pointer set to NULL and dereferenced with no check in
// between.
func (r *ruleRun) nullDeref() {
	for _, def := range r.k.defs {
		if len(def.expr) != 1 || !(def.expr[0].Is("NULL") || def.expr[0].Is("nullptr")) {
			continue
		}

		for _, acc := range r.k.Accesses() {
			if acc.Array != def.Name || acc.tok <= def.tok || !r.k.sameFunction(def.tok, acc.tok) {
				continue
			}

			if latest, ok := r.k.defBefore(def.Name, acc.tok); ok && latest.tok != def.tok {
				break
			}

			if r.k.checkedBetween(def.tok, acc.tok, def.Name) || r.k.guardedBy(acc.tok, def.Name) {
				break
			}

			message := fmt.Sprintf("%s is assigned NULL on line %d and dereferenced without a check", def.Name, def.Line)
			r.add(acc, acc.Line, def.Name+" == NULL", message, m.BugNullDeref)

			break
		}
	}
}
