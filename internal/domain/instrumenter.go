package domain

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"securehls.dev/pkg/securehls/internal/adapter"
	m "securehls.dev/pkg/securehls/internal/model"
)

// ErrFunctionNotFound is returned when the target function has no definition
// in the source.
var ErrFunctionNotFound = errors.New("function not found")

const reasonAnchorNotFound = "anchor not found"

var includeRe = regexp.MustCompile(`^\s*#\s*include\s*[<"]([^>"]+)[>"]`)

// Instrumenter rewrites a kernel into a renamed variant whose unsafe
// statements are preceded by bounds-check guards.
type Instrumenter struct {
	adapter.CSourceAdapter
	suffix string
}

// NewInstrumenter creates an Instrumenter. An empty suffix selects
// DefaultGuardSuffix.
func NewInstrumenter(lexer adapter.CSourceAdapter, suffix string) *Instrumenter {
	if suffix == "" {
		suffix = DefaultGuardSuffix
	}

	return &Instrumenter{CSourceAdapter: lexer, suffix: suffix}
}

// GuardedPath returns the output path of the guarded variant of p:
// bench/fir.c becomes bench/fir_secure.c.
func (in *Instrumenter) GuardedPath(p m.Path) m.Path {
	s := string(p)
	ext := path.Ext(s)

	return m.Path(strings.TrimSuffix(s, ext) + in.suffix + ext)
}

type editKind int

const (
	editInsert editKind = iota
	editReplace
)

type edit struct {
	offset int
	kind   editKind
	seq    int
	length int
	text   string
}

type rewriter struct {
	edits []edit
}

func (r *rewriter) insert(offset int, text string) {
	r.edits = append(r.edits, edit{offset: offset, kind: editInsert, seq: len(r.edits), text: text})
}

func (r *rewriter) replace(offset, length int, text string) {
	r.edits = append(r.edits, edit{offset: offset, kind: editReplace, seq: len(r.edits), length: length, text: text})
}

func (r *rewriter) apply(src []byte) []byte {
	sort.SliceStable(r.edits, func(i, j int) bool {
		a, b := r.edits[i], r.edits[j]
		if a.offset != b.offset {
			return a.offset < b.offset
		}

		if a.kind != b.kind {
			return a.kind < b.kind
		}

		return a.seq < b.seq
	})

	var (
		out  strings.Builder
		last int
	)

	for _, e := range r.edits {
		out.Write(src[last:e.offset])
		out.WriteString(e.text)
		last = e.offset + e.length
	}

	out.Write(src[last:])

	return []byte(out.String())
}

// Instrument renames function to a fresh name, declares its diagnostic flag
// and inserts one guard before the first occurrence of each anchor. Guards
// whose anchor is missing are reported as skipped.
func (in *Instrumenter) Instrument(ctx context.Context, p m.Path, src []byte, function string, guards []m.Guard) (m.InstrumentResult, error) {
	tokens, err := in.Tokenize(ctx, string(p), src)
	if err != nil {
		return m.InstrumentResult{}, fmt.Errorf("tokenize %s: %w", p, err)
	}

	k := buildKernelIndex(src, tokens)

	var body functionSpan

	found := false

	for _, fn := range k.functions {
		if fn.name == function {
			body, found = fn, true
			break
		}
	}

	if !found {
		return m.InstrumentResult{}, fmt.Errorf("%s in %s: %w", function, p, ErrFunctionNotFound)
	}

	idents := map[string]bool{}
	for _, t := range tokens {
		if t.Kind == m.TokenIdent {
			idents[t.Text] = true
		}
	}

	guarded := freshName(function+in.suffix, idents)
	idents[guarded] = true
	flag := freshName(guarded+"_err", idents)

	res := m.InstrumentResult{Function: function, GuardedFunction: guarded, Flag: flag}

	r := &rewriter{}

	for _, t := range tokens {
		if t.Kind == m.TokenIdent && t.Text == function {
			r.replace(t.Offset, len(t.Text), guarded)
		}
	}

	open := k.toks[body.bodyStart]
	r.insert(open.End(), "\n"+k.bodyIndent(body)+flag+" = 0;")

	starts := make(map[int]int, len(k.toks))
	for i, t := range k.toks {
		starts[t.Offset] = i
	}

	for _, g := range guards {
		at, ok := k.findAnchor(g.Anchor, starts)
		if !ok {
			res.Skipped = append(res.Skipped, m.SkippedGuard{Guard: g, Reason: reasonAnchorNotFound})
			continue
		}

		k.insertGuard(r, at, g, guarded, flag)
		res.Applied = append(res.Applied, g)
	}

	in.insertPreamble(r, src, tokens, flag, len(res.Applied) > 0)

	res.Source = r.apply(src)

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(src)),
		B:        difflib.SplitLines(string(res.Source)),
		FromFile: string(p),
		ToFile:   string(in.GuardedPath(p)),
		Context:  3,
	})
	if err != nil {
		return m.InstrumentResult{}, fmt.Errorf("diff %s: %w", p, err)
	}

	res.Diff = diff

	return res, nil
}

func freshName(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}

	for n := 2; ; n++ {
		name := base + strconv.Itoa(n)
		if !taken[name] {
			return name
		}
	}
}

// findAnchor returns the token index where the first occurrence of anchor
// starts. Occurrences inside comments or literals never start at a token.
func (k *kernelIndex) findAnchor(anchor string, starts map[int]int) (int, bool) {
	anchor = strings.TrimSpace(anchor)
	if anchor == "" {
		return 0, false
	}

	src := string(k.src)

	for from := 0; from < len(src); {
		i := strings.Index(src[from:], anchor)
		if i < 0 {
			return 0, false
		}

		off := from + i
		if tok, ok := starts[off]; ok {
			return tok, true
		}

		from = off + 1
	}

	return 0, false
}

func (k *kernelIndex) lineStart(offset int) int {
	return strings.LastIndexByte(string(k.src[:offset]), '\n') + 1
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

func (k *kernelIndex) bodyIndent(fn functionSpan) string {
	next := fn.bodyStart + 1
	if next >= fn.bodyEnd {
		return "    "
	}

	start := k.lineStart(k.toks[next].Offset)

	indent := leadingSpace(string(k.src[start:k.toks[next].Offset]))
	if indent == "" {
		return "    "
	}

	return indent
}

// needsBraces reports whether the statement at i is the unbraced body of a
// control statement.
func (k *kernelIndex) needsBraces(i int) bool {
	if i == 0 {
		return false
	}

	prev := k.toks[i-1]
	if prev.Is("else") || prev.Is("do") {
		return true
	}

	if !prev.Is(")") {
		return false
	}

	open := k.match[i-1]

	return open > 0 && controlWords[k.toks[open-1].Text]
}

func (k *kernelIndex) insertGuard(r *rewriter, at int, g m.Guard, function, flag string) {
	anchor := strings.TrimSpace(g.Anchor)
	off := k.toks[at].Offset
	start := k.lineStart(off)
	prefix := string(k.src[start:off])
	lineIndent := leadingSpace(prefix)
	midLine := strings.TrimSpace(prefix) != ""
	wrap := k.needsBraces(at)

	indent := lineIndent
	if wrap && midLine {
		indent += "    "
	}

	lines := []string{
		"#ifndef __SYNTHESIS__",
		fmt.Sprintf("if (%s) {", g.Predicate),
		fmt.Sprintf(`    fprintf(stderr, "SECUREHLS: %s detected in %s\n");`, g.BugType, function),
		"    assert(0);",
		"}",
		"#endif",
		fmt.Sprintf("%s |= (%s);", flag, g.Predicate),
	}

	block := strings.Join(lines, "\n"+indent) + "\n" + indent

	switch {
	case wrap:
		r.insert(off, "{\n"+indent+block)

		closeIndent := indent
		if midLine {
			closeIndent = lineIndent
		}

		r.insert(off+len(anchor), "\n"+closeIndent+"}")
	case midLine:
		r.insert(off, "\n"+indent+block)
	default:
		r.insert(off, block)
	}
}

func (in *Instrumenter) insertPreamble(r *rewriter, src []byte, tokens []m.Token, flag string, guarded bool) {
	included := map[string]bool{}
	lastInclude := -1

	for _, t := range tokens {
		if !t.Directive || !t.Is("#") {
			continue
		}

		lineEnd := len(src)
		if i := strings.IndexByte(string(src[t.Offset:]), '\n'); i >= 0 {
			lineEnd = t.Offset + i
		}

		if match := includeRe.FindStringSubmatch(string(src[t.Offset:lineEnd])); match != nil {
			included[match[1]] = true
			lastInclude = lineEnd
		}
	}

	var lines []string

	if guarded {
		for _, h := range []string{"assert.h", "stdio.h"} {
			if !included[h] {
				lines = append(lines, "#include <"+h+">")
			}
		}
	}

	decl := "static volatile int " + flag + " = 0;"

	if lastInclude >= 0 {
		text := ""
		for _, l := range lines {
			text += "\n" + l
		}

		r.insert(lastInclude, text+"\n\n"+decl)

		return
	}

	at := 0
	if len(tokens) > 0 {
		at = strings.LastIndexByte(string(src[:tokens[0].Offset]), '\n') + 1
	}

	text := ""
	for _, l := range lines {
		text += l + "\n"
	}

	if text != "" {
		text += "\n"
	}

	r.insert(at, text+decl+"\n\n")
}
