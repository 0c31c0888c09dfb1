package selector

import (
	"fmt"
	"strings"
)

// ErrUnsupported is returned by Parse when a selector uses a construct
// outside the restricted grammar (pseudo-classes, sibling combinators,
// attribute operators other than '='). Per §4.2, callers are expected to
// drop these selectors silently and only report them as a diagnostic count,
// never abort the run.
type ErrUnsupported struct {
	Text   string
	Reason string
}

func (e *ErrUnsupported) Error() string {
	return fmt.Sprintf("unsupported selector %q: %s", e.Text, e.Reason)
}

// Parse compiles one selector string into a Compound. The grammar accepted
// is exactly:
//
//	Selector   := Compound ( (S '>' S | S) Compound )*
//	Compound   := SimplePart+
//	SimplePart := '*' | Tag | '.' Ident | '#' Ident | '[' Ident '=' '"' Value '"' ']'
func Parse(text string) (Compound, error) {
	p := &parser{text: text}
	parts, err := p.parseSelector()
	if err != nil {
		return Compound{}, err
	}
	return Compound{Text: text, Parts: parts}, nil
}

type parser struct {
	text string
	pos  int
}

func (p *parser) unsupported(reason string) error {
	return &ErrUnsupported{Text: p.text, Reason: reason}
}

func (p *parser) eof() bool { return p.pos >= len(p.text) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.text[p.pos]
}

func (p *parser) skipSpaces() (sawSpace bool) {
	for !p.eof() && p.peek() == ' ' {
		p.pos++
		sawSpace = true
	}
	return
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *parser) parseIdent() (string, error) {
	start := p.pos
	for !p.eof() && isIdentByte(p.peek()) {
		p.pos++
	}
	if p.pos == start {
		return "", p.unsupported("expected identifier")
	}
	return p.text[start:p.pos], nil
}

// parseSelector parses the full Compound (S Combinator S Compound)* chain
// and returns the flattened Part list across every compound in the chain.
func (p *parser) parseSelector() ([]Part, error) {
	var parts []Part

	for {
		compoundParts, err := p.parseCompound()
		if err != nil {
			return nil, err
		}

		sawSpace := p.skipSpaces()
		if p.eof() {
			// Last compound: its final part carries End.
			last := compoundParts[len(compoundParts)-1]
			last.Combinator = End
			compoundParts[len(compoundParts)-1] = last
			parts = append(parts, compoundParts...)
			return parts, nil
		}

		combinator := Descendant
		if p.peek() == '>' {
			combinator = Child
			p.pos++
			p.skipSpaces()
		} else if !sawSpace {
			return nil, p.unsupported(fmt.Sprintf("unexpected character %q", string(p.peek())))
		}

		last := compoundParts[len(compoundParts)-1]
		last.Combinator = combinator
		compoundParts[len(compoundParts)-1] = last
		parts = append(parts, compoundParts...)
	}
}

// parseCompound parses one or more SimplePart tokens glued together with no
// intervening whitespace, and returns them each with Combinator=Descendant
// except the final one (Descendant is overwritten by the caller, since only
// the last part of a compound carries a combinator to whatever is next).
func (p *parser) parseCompound() ([]Part, error) {
	var parts []Part

	for {
		simple, err := p.parseSimple()
		if err != nil {
			return nil, err
		}
		parts = append(parts, Part{Simple: simple, Combinator: Descendant})

		if p.eof() || p.peek() == ' ' || p.peek() == '>' {
			break
		}
	}

	if len(parts) == 0 {
		return nil, p.unsupported("empty compound")
	}
	return parts, nil
}

func (p *parser) parseSimple() (Simple, error) {
	switch p.peek() {
	case '*':
		p.pos++
		return Simple{Kind: Tag, Name: "*"}, nil

	case '.':
		p.pos++
		name, err := p.parseIdent()
		if err != nil {
			return Simple{}, err
		}
		return Simple{Kind: Class, Name: name}, nil

	case '#':
		p.pos++
		name, err := p.parseIdent()
		if err != nil {
			return Simple{}, err
		}
		return Simple{Kind: Id, Name: name}, nil

	case '[':
		return p.parseAttr()

	case ':':
		return Simple{}, p.unsupported("pseudo-classes and pseudo-elements are not supported")

	case '+', '~':
		return Simple{}, p.unsupported("sibling combinators are not supported")

	default:
		if isIdentByte(p.peek()) {
			name, err := p.parseIdent()
			if err != nil {
				return Simple{}, err
			}
			return Simple{Kind: Tag, Name: strings.ToLower(name)}, nil
		}
		return Simple{}, p.unsupported(fmt.Sprintf("unexpected character %q", string(p.peek())))
	}
}

func (p *parser) parseAttr() (Simple, error) {
	p.pos++ // consume '['
	name, err := p.parseIdent()
	if err != nil {
		return Simple{}, err
	}
	if p.eof() || p.peek() != '=' {
		return Simple{}, p.unsupported("only the '=' attribute operator is supported")
	}
	p.pos++ // consume '='
	if p.eof() || p.peek() != '"' {
		return Simple{}, p.unsupported(`attribute value must be a quoted string`)
	}
	p.pos++ // consume opening quote

	var sb strings.Builder
	for {
		if p.eof() {
			return Simple{}, p.unsupported("unterminated attribute value")
		}
		c := p.peek()
		if c == '\\' && p.pos+1 < len(p.text) && p.text[p.pos+1] == '"' {
			sb.WriteByte('"')
			p.pos += 2
			continue
		}
		if c == '"' {
			p.pos++
			break
		}
		sb.WriteByte(c)
		p.pos++
	}

	if p.eof() || p.peek() != ']' {
		return Simple{}, p.unsupported("expected ']' after attribute value")
	}
	p.pos++ // consume ']'

	return Simple{Kind: AttrEq, Name: name, Value: sb.String()}, nil
}
