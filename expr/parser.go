package expr

import (
	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/amfnerr"
	"github.com/amfn-io/amfn/calendar"
)

// Parse tokenizes and parses src into an AST, using a Pratt
// (precedence-climbing) parser as spec §4.3/§9 call for — deliberately not
// a grammar framework.
func Parse(src string) (Node, error) {
	lx := newLexer(src)
	var toks []token
	for {
		tk, err := lx.next()
		if err != nil {
			return nil, amfnerr.Wrap(amfnerr.ExprParse, err, "lexing %q", src)
		}
		toks = append(toks, tk)
		if tk.kind == tokEOF {
			break
		}
	}

	p := &parser{toks: toks, src: src}
	node, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tokEOF {
		return nil, amfnerr.New(amfnerr.ExprParse, "unexpected trailing input in %q at position %d", src, p.cur().pos)
	}
	return node, nil
}

type parser struct {
	toks []token
	pos  int
	src  string
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// binaryOp returns the operator string and precedence for the current
// token if it forms a valid infix operator, else ("", 0, false).
func (p *parser) binaryOp() (string, int, bool) {
	t := p.cur()
	switch t.kind {
	case tokPlus:
		return "+", 4, true
	case tokMinus:
		return "-", 4, true
	case tokStar:
		return "*", 5, true
	case tokSlash:
		return "/", 5, true
	case tokAmp:
		return "&", 4, true
	case tokLT:
		return "<", 3, true
	case tokLE:
		return "<=", 3, true
	case tokEQ:
		return "=", 3, true
	case tokNE:
		return "!=", 3, true
	case tokGE:
		return ">=", 3, true
	case tokGT:
		return ">", 3, true
	case tokIdent:
		switch t.text {
		case "or":
			return "or", 1, true
		case "and":
			return "and", 2, true
		}
	}
	return "", 0, false
}

func (p *parser) parseExpr(minPrec int) (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, prec, ok := p.binaryOp()
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = BinaryNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	t := p.cur()
	if t.kind == tokMinus {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return UnaryNode{Op: "-", Operand: operand}, nil
	}
	if t.kind == tokIdent && t.text == "not" {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return UnaryNode{Op: "not", Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.cur()
	switch t.kind {
	case tokNumber:
		p.advance()
		d, err := decimal.NewFromString(t.text)
		if err != nil {
			return nil, amfnerr.Wrap(amfnerr.ExprParse, err, "invalid number literal %q", t.text)
		}
		return LiteralNode{Value: DecimalValue(d)}, nil

	case tokString:
		p.advance()
		return LiteralNode{Value: StringValue(t.text)}, nil

	case tokDate:
		p.advance()
		d, err := calendar.Parse(t.text)
		if err != nil {
			return nil, amfnerr.Wrap(amfnerr.ExprParse, err, "invalid date literal %q", t.text)
		}
		return LiteralNode{Value: DateValue(d)}, nil

	case tokLParen:
		p.advance()
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if p.cur().kind != tokRParen {
			return nil, amfnerr.New(amfnerr.ExprParse, "expected ')' at position %d in %q", p.cur().pos, p.src)
		}
		p.advance()
		return inner, nil

	case tokIdent:
		p.advance()
		if p.cur().kind == tokLParen {
			return p.parseCall(t.text)
		}
		return IdentNode{Name: t.text}, nil

	default:
		return nil, amfnerr.New(amfnerr.ExprParse, "unexpected token at position %d in %q", t.pos, p.src)
	}
}

func (p *parser) parseCall(name string) (Node, error) {
	p.advance() // consume '('
	var args []Node
	if p.cur().kind != tokRParen {
		for {
			arg, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur().kind == tokComma {
				p.advance()
				continue
			}
			break
		}
	}
	if p.cur().kind != tokRParen {
		return nil, amfnerr.New(amfnerr.ExprParse, "expected ')' closing call to %q", name)
	}
	p.advance()
	return CallNode{Name: name, Args: args}, nil
}
