package program

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/datalite/internal/parse"
)

// fingerprintDomain versions the digest; bump on canonical format changes.
const fingerprintDomain = "datalite/program/v1"

// Fingerprint returns a stable hex digest identifying the program's
// content. It hashes the Canonical rendering, so declaration order and
// rule formatting never change it while any schema, fact, or rule change
// does. Run provenance records it so a database can be matched back to
// the program that produced it.
func (p *Program) Fingerprint() string {
	canonical := norm.NFC.Bytes([]byte(p.Canonical()))
	return hashWithDomain(fingerprintDomain, canonical)
}

// Canonical renders the program in a normalized line-based form: one
// line per declaration, relations and rules ordered by name, fact rows
// ordered by rendered text with multiplicity preserved, and rule bodies
// re-rendered from their parse trees with minimal parentheses.
func (p *Program) Canonical() string {
	var relLines, factLines, ruleLines []string

	for _, rel := range p.Relations {
		var sb strings.Builder
		sb.WriteString("relation ")
		sb.WriteString(rel.Name)
		sb.WriteByte('(')
		for i, c := range rel.Columns {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(c.Name)
			sb.WriteByte(' ')
			sb.WriteString(c.Type)
		}
		sb.WriteByte(')')
		if rel.Distinct {
			sb.WriteString(" distinct")
		}
		relLines = append(relLines, sb.String())
	}

	for _, fs := range p.Facts {
		for _, row := range fs.Rows {
			var sb strings.Builder
			sb.WriteString("fact ")
			sb.WriteString(fs.Relation)
			sb.WriteByte('(')
			for i, v := range row {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(renderValue(v))
			}
			sb.WriteByte(')')
			factLines = append(factLines, sb.String())
		}
	}

	for _, r := range p.Rules {
		var sb strings.Builder
		sb.WriteString("rule ")
		sb.WriteString(r.Name)
		sb.WriteString(": ")
		ast, err := ruleAST(r)
		if err != nil {
			// Unparseable text still fingerprints deterministically.
			sb.WriteString(r.Text)
		} else {
			renderAtom(&sb, ast.Head)
			sb.WriteString(" <= ")
			renderNode(&sb, ast.Body)
		}
		ruleLines = append(ruleLines, sb.String())
	}

	sort.Strings(relLines)
	sort.Strings(factLines)
	sort.Strings(ruleLines)

	var sb strings.Builder
	for _, group := range [][]string{relLines, factLines, ruleLines} {
		for _, line := range group {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Body operator precedence, loosest first. A child is parenthesized
// only when it binds looser than its parent.
const (
	precOr = iota + 1
	precAnd
	precAtom
)

func nodePrec(n parse.Node) int {
	switch n.(type) {
	case *parse.Or:
		return precOr
	case *parse.And:
		return precAnd
	default:
		return precAtom
	}
}

func renderNode(sb *strings.Builder, n parse.Node) {
	switch b := n.(type) {
	case *parse.Atom:
		renderAtom(sb, b)
	case *parse.And:
		renderChild(sb, b.Left, precAnd)
		sb.WriteString(" & ")
		renderChild(sb, b.Right, precAnd)
	case *parse.Or:
		renderChild(sb, b.Left, precOr)
		sb.WriteString(" | ")
		renderChild(sb, b.Right, precOr)
	}
}

func renderChild(sb *strings.Builder, n parse.Node, parent int) {
	if nodePrec(n) < parent {
		sb.WriteByte('(')
		renderNode(sb, n)
		sb.WriteByte(')')
		return
	}
	renderNode(sb, n)
}

func renderAtom(sb *strings.Builder, a *parse.Atom) {
	sb.WriteString(a.Name)
	sb.WriteByte('(')
	for i, t := range a.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		switch arg := t.(type) {
		case *parse.Variable:
			sb.WriteString(arg.Name)
		case *parse.Constant:
			sb.WriteString(renderValue(arg.Value))
		}
	}
	sb.WriteByte(')')
}

func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		s := strconv.FormatFloat(val, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			// Keep whole floats distinct from integers.
			s += ".0"
		}
		return s
	case string:
		return strconv.Quote(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte separator keeps
// the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
