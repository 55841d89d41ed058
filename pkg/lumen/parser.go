package lumen

import (
	"fmt"
)

// Parser is a recursive-descent parser over a token slice (spec §4.2).
// Precedence, loosest to tightest: logical-or, logical-and, equality,
// relational, additive, multiplicative, unary, postfix, primary — all
// left-associative except unary, which is right-associative.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a Parser over an already-tokenized source.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse tokenizes src and parses it into a Program.
func Parse(src string, opts ...LexerOption) (*Program, error) {
	tokens, err := NewLexer(src, opts...).Tokenize()
	if err != nil {
		if le, ok := err.(*LexError); ok {
			return nil, &SyntaxError{Msg: le.Msg, Span: le.Span}
		}
		return nil, &SyntaxError{Msg: err.Error()}
	}
	return NewParser(tokens).ParseProgram()
}

func (p *Parser) cur() Token       { return p.tokens[p.pos] }
func (p *Parser) peekAt(n int) Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}
func (p *Parser) atEOF() bool { return p.cur().Kind == TokenEOF }

func (p *Parser) advance() Token {
	t := p.cur()
	if !p.atEOF() {
		p.pos++
	}
	return t
}

func (p *Parser) check(kind TokenKind) bool { return p.cur().Kind == kind }

func (p *Parser) checkKeyword(word string) bool { return p.cur().IsKeyword(word) }

func (p *Parser) match(kind TokenKind) (Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	return Token{}, false
}

func (p *Parser) expect(kind TokenKind, what string) (Token, error) {
	if t, ok := p.match(kind); ok {
		return t, nil
	}
	return Token{}, p.errorf("expected %s, got %s", what, p.cur())
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Span: p.cur().Span}
}

// ParseProgram parses `program := top_stmt (';'? top_stmt)* ';'?`.
func (p *Parser) ParseProgram() (*Program, error) {
	prog := &Program{}
	for !p.atEOF() {
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		prog.Items = append(prog.Items, item)
		for p.check(TokenSemicolon) {
			p.advance()
		}
	}
	return prog, nil
}

// ---- expr := 'let' binding_group | logical_or ----

func (p *Parser) parseExpr() (Expr, error) {
	if p.checkKeyword("let") {
		return p.parseLetGroup()
	}
	return p.parseLogicalOr()
}

func (p *Parser) parseLetGroup() (Expr, error) {
	start := p.cur().Span
	p.advance() // 'let'
	var bindings []Binding
	for {
		b, err := p.parseBinding()
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
		if p.check(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	for p.checkKeyword("and") {
		p.advance()
		for {
			b, err := p.parseBinding()
			if err != nil {
				return nil, err
			}
			bindings = append(bindings, b)
			if p.check(TokenComma) {
				p.advance()
				continue
			}
			break
		}
	}
	end := bindings[len(bindings)-1].Init.Span()
	return &LetGroup{exprBase{start.Merge(end)}, bindings}, nil
}

// binding := IDENT (':' type)? '=' expr
func (p *Parser) parseBinding() (Binding, error) {
	nameTok, err := p.expect(TokenIdent, "identifier")
	if err != nil {
		return Binding{}, err
	}
	var typeExpr TypeExpr
	if p.check(TokenColon) {
		p.advance()
		typeExpr, err = p.parseType()
		if err != nil {
			return Binding{}, err
		}
	}
	if _, err := p.expect(TokenEq, "'=' in binding"); err != nil {
		return Binding{}, err
	}
	init, err := p.parseExpr()
	if err != nil {
		return Binding{}, err
	}
	return Binding{Name: nameTok.Lexeme, Type: typeExpr, Init: init}, nil
}

// ---- binary precedence ladder ----

func (p *Parser) parseLogicalOr() (Expr, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.check(TokenOrOr) {
		p.advance()
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{exprBase{left.Span().Merge(right.Span())}, OpOr, left, right}
	}
	return left, nil
}

func (p *Parser) parseLogicalAnd() (Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.check(TokenAndAnd) {
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &Binary{exprBase{left.Span().Merge(right.Span())}, OpAnd, left, right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.check(TokenEqEq) || p.check(TokenNotEq) {
		op := OpEq
		if p.check(TokenNotEq) {
			op = OpNotEq
		}
		p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &Binary{exprBase{left.Span().Merge(right.Span())}, op, left, right}
	}
	return left, nil
}

func (p *Parser) parseRelational() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch {
		case p.check(TokenLt):
			op = OpLt
		case p.check(TokenLe):
			op = OpLe
		case p.check(TokenGt):
			op = OpGt
		case p.check(TokenGe):
			op = OpGe
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &Binary{exprBase{left.Span().Merge(right.Span())}, op, left, right}
	}
}

func (p *Parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(TokenPlus) || p.check(TokenMinus) {
		op := OpAdd
		if p.check(TokenMinus) {
			op = OpSub
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &Binary{exprBase{left.Span().Merge(right.Span())}, op, left, right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch {
		case p.check(TokenStar):
			op = OpMul
		case p.check(TokenSlash):
			op = OpDiv
		case p.check(TokenPercent):
			op = OpMod
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{exprBase{left.Span().Merge(right.Span())}, op, left, right}
	}
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.check(TokenBang) || p.check(TokenMinus) {
		opTok := p.advance()
		op := OpNot
		if opTok.Kind == TokenMinus {
			op = OpNeg
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{exprBase{opTok.Span.Merge(operand.Span())}, op, operand}, nil
	}
	return p.parsePostfix()
}

// postfix := primary ( '(' args? ')' | '.' IDENT | '[' expr ']' )*
func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check(TokenLParen):
			p.advance()
			var args []Expr
			if !p.check(TokenRParen) {
				for {
					a, err := p.parseExpr()
					if err != nil {
						return nil, err
					}
					args = append(args, a)
					if p.check(TokenComma) {
						p.advance()
						continue
					}
					break
				}
			}
			end, err := p.expect(TokenRParen, "')'")
			if err != nil {
				return nil, err
			}
			expr = &Call{exprBase{expr.Span().Merge(end.Span)}, expr, args}
		case p.check(TokenDot):
			p.advance()
			field, err := p.expect(TokenIdent, "field name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &Member{exprBase{expr.Span().Merge(field.Span)}, expr, field.Lexeme}
		case p.check(TokenLBracket):
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			end, err := p.expect(TokenRBracket, "']'")
			if err != nil {
				return nil, err
			}
			expr = &Index{exprBase{expr.Span().Merge(end.Span)}, expr, idx}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.cur()
	switch {
	case p.check(TokenNumber):
		p.advance()
		return &NumberLit{exprBase{tok.Span}, tok.Payload.Number}, nil
	case p.check(TokenString):
		p.advance()
		return &StringLit{exprBase{tok.Span}, tok.Payload.Str}, nil
	case p.checkKeyword("true"), p.checkKeyword("false"):
		p.advance()
		return &BoolLit{exprBase{tok.Span}, tok.Payload.Bool}, nil
	case p.checkKeyword("null"):
		p.advance()
		return &NullLit{exprBase{tok.Span}}, nil
	case p.checkKeyword("undefined"):
		p.advance()
		return &UndefinedLit{exprBase{tok.Span}}, nil
	case p.checkKeyword("if"):
		return p.parseConditional()
	case p.checkKeyword("match"):
		return p.parseMatch()
	case p.check(TokenIdent):
		p.advance()
		if p.check(TokenFatArrow) {
			p.advance()
			body, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			param := Param{Name: tok.Lexeme}
			return &FuncLit{exprBase{tok.Span.Merge(body.Span())}, []Param{param}, nil, body}, nil
		}
		return &Identifier{exprBase{tok.Span}, tok.Lexeme}, nil
	case p.check(TokenLParen):
		return p.parseParenOrFuncLit()
	case p.check(TokenLBracket):
		return p.parseArrayOrDict()
	case p.check(TokenLBrace):
		return p.parseBlockOrRecord()
	default:
		return nil, p.errorf("unexpected token %s", tok)
	}
}

func (p *Parser) parseConditional() (Expr, error) {
	start := p.advance() // 'if'
	if _, err := p.expect(TokenLParen, "'(' after if"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen, "')' after condition"); err != nil {
		return nil, err
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	end := then.Span()
	var elseBranch Expr
	if p.checkKeyword("else") {
		p.advance()
		elseBranch, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
		end = elseBranch.Span()
	}
	return &Conditional{exprBase{start.Span.Merge(end)}, cond, then, elseBranch}, nil
}

// match expr '{' match_case (',' match_case)* ','? '}'
func (p *Parser) parseMatch() (Expr, error) {
	start := p.advance() // 'match'
	disc, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLBrace, "'{' after match discriminant"); err != nil {
		return nil, err
	}
	var cases []MatchCase
	for !p.check(TokenRBrace) {
		mc, err := p.parseMatchCase()
		if err != nil {
			return nil, err
		}
		cases = append(cases, mc)
		if p.check(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	end, err := p.expect(TokenRBrace, "'}' to close match")
	if err != nil {
		return nil, err
	}
	if len(cases) == 0 {
		return nil, &SyntaxError{Msg: "match expression requires at least one case", Span: start.Span.Merge(end.Span)}
	}
	return &Match{exprBase{start.Span.Merge(end.Span)}, disc, cases}, nil
}

// match_case := pattern ('if' expr)? '=>' expr
func (p *Parser) parseMatchCase() (MatchCase, error) {
	pat, err := p.parsePattern()
	if err != nil {
		return MatchCase{}, err
	}
	var guard Expr
	if p.checkKeyword("if") {
		p.advance()
		guard, err = p.parseExpr()
		if err != nil {
			return MatchCase{}, err
		}
	}
	if _, err := p.expect(TokenFatArrow, "'=>' in match case"); err != nil {
		return MatchCase{}, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return MatchCase{}, err
	}
	return MatchCase{Pattern: pat, Guard: guard, Body: body}, nil
}

// pattern := '_' | NUMBER | STRING | 'true' | 'false' | 'null' | IDENT
func (p *Parser) parsePattern() (Pattern, error) {
	tok := p.cur()
	switch {
	case p.check(TokenUnderscore):
		p.advance()
		return PatternWildcard{}, nil
	case p.check(TokenNumber):
		p.advance()
		return PatternLiteral{Value: &NumberLit{exprBase{tok.Span}, tok.Payload.Number}}, nil
	case p.check(TokenString):
		p.advance()
		return PatternLiteral{Value: &StringLit{exprBase{tok.Span}, tok.Payload.Str}}, nil
	case p.checkKeyword("true"), p.checkKeyword("false"):
		p.advance()
		return PatternLiteral{Value: &BoolLit{exprBase{tok.Span}, tok.Payload.Bool}}, nil
	case p.checkKeyword("null"):
		p.advance()
		return PatternLiteral{Value: &NullLit{exprBase{tok.Span}}}, nil
	case p.check(TokenIdent):
		p.advance()
		return PatternIdent{Name: tok.Lexeme}, nil
	default:
		return nil, p.errorf("unknown pattern starting with %s", tok)
	}
}

// parseParenOrFuncLit resolves the `(` disambiguation: look ahead for a
// matching ')' followed by an optional ': type' and then '=>' — a function
// literal; otherwise a parenthesized expression (spec §4.2).
func (p *Parser) parseParenOrFuncLit() (Expr, error) {
	if p.looksLikeParamList() {
		return p.parseFuncLitParens()
	}
	start := p.advance() // '('
	inner, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	end, err := p.expect(TokenRParen, "')'")
	if err != nil {
		return nil, err
	}
	_ = start
	_ = end
	return inner, nil
}

// looksLikeParamList scans forward from the current '(' to its matching
// ')' (respecting nesting) and checks whether what follows is '=>' or
// ':' type '=>'.
func (p *Parser) looksLikeParamList() bool {
	depth := 0
	i := p.pos
	for i < len(p.tokens) {
		k := p.tokens[i].Kind
		if k == TokenLParen {
			depth++
		} else if k == TokenRParen {
			depth--
			if depth == 0 {
				break
			}
		} else if k == TokenEOF {
			return false
		}
		i++
	}
	if i >= len(p.tokens) || p.tokens[i].Kind != TokenRParen {
		return false
	}
	j := i + 1
	if j >= len(p.tokens) {
		return false
	}
	if p.tokens[j].Kind == TokenFatArrow {
		return true
	}
	if p.tokens[j].Kind == TokenColon {
		// skip a type expression greedily up to '=>' or give up at ';'/EOF.
		k := j + 1
		depth := 0
		for k < len(p.tokens) {
			switch p.tokens[k].Kind {
			case TokenLParen, TokenLBracket:
				depth++
			case TokenRParen, TokenRBracket:
				if depth == 0 {
					return false
				}
				depth--
			case TokenFatArrow:
				if depth == 0 {
					return true
				}
			case TokenSemicolon, TokenEOF:
				return false
			}
			k++
		}
	}
	return false
}

func (p *Parser) parseFuncLitParens() (Expr, error) {
	start := p.advance() // '('
	var params []Param
	if !p.check(TokenRParen) {
		for {
			nameTok, err := p.expect(TokenIdent, "parameter name")
			if err != nil {
				return nil, err
			}
			var typeExpr TypeExpr
			if p.check(TokenColon) {
				p.advance()
				typeExpr, err = p.parseType()
				if err != nil {
					return nil, err
				}
			}
			params = append(params, Param{Name: nameTok.Lexeme, Type: typeExpr})
			if p.check(TokenComma) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(TokenRParen, "')' to close parameter list"); err != nil {
		return nil, err
	}
	var retType TypeExpr
	if p.check(TokenColon) {
		p.advance()
		var err error
		retType, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokenFatArrow, "'=>' after parameter list"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &FuncLit{exprBase{start.Span.Merge(body.Span())}, params, retType, body}, nil
}

// parseArrayOrDict resolves the `[` disambiguation: an array literal unless
// the first element is immediately followed by ':' — then a dictionary
// literal (spec §4.2).
func (p *Parser) parseArrayOrDict() (Expr, error) {
	start := p.advance() // '['
	if p.check(TokenRBracket) {
		end := p.advance()
		return &ArrayLit{exprBase{start.Span.Merge(end.Span)}, nil}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.check(TokenColon) {
		p.advance()
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		entries := []DictEntry{{Key: first, Value: val}}
		for p.check(TokenComma) {
			p.advance()
			if p.check(TokenRBracket) {
				break
			}
			k, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenColon, "':' in dictionary entry"); err != nil {
				return nil, err
			}
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			entries = append(entries, DictEntry{Key: k, Value: v})
		}
		end, err := p.expect(TokenRBracket, "']' to close dictionary literal")
		if err != nil {
			return nil, err
		}
		return &DictLit{exprBase{start.Span.Merge(end.Span)}, entries}, nil
	}
	elements := []Expr{first}
	for p.check(TokenComma) {
		p.advance()
		if p.check(TokenRBracket) {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
	}
	end, err := p.expect(TokenRBracket, "']' to close array literal")
	if err != nil {
		return nil, err
	}
	return &ArrayLit{exprBase{start.Span.Merge(end.Span)}, elements}, nil
}

// parseBlockOrRecord resolves the `{` disambiguation (spec §4.2): a block
// expression unless the first token is '}' (empty record), or an
// identifier/string literal followed by ':' (record literal).
func (p *Parser) parseBlockOrRecord() (Expr, error) {
	start := p.cur()
	if p.peekAt(1).Kind == TokenRBrace {
		end := p.peekAt(1)
		p.advance()
		p.advance()
		return &RecordLit{exprBase{start.Span.Merge(end.Span)}, nil}, nil
	}
	looksRecord := (p.peekAt(1).Kind == TokenIdent || p.peekAt(1).Kind == TokenString) &&
		p.peekAt(2).Kind == TokenColon
	if looksRecord {
		return p.parseRecordLit()
	}
	return p.parseBlock()
}

func (p *Parser) parseRecordLit() (Expr, error) {
	start := p.advance() // '{'
	var fields []RecordField
	for {
		var name string
		nameTok := p.cur()
		if p.check(TokenIdent) {
			p.advance()
			name = nameTok.Lexeme
		} else if p.check(TokenString) {
			p.advance()
			name = nameTok.Payload.Str
		} else {
			return nil, p.errorf("expected field name, got %s", nameTok)
		}
		if _, err := p.expect(TokenColon, "':' after field name"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fields = append(fields, RecordField{Name: name, Value: val})
		if p.check(TokenComma) {
			p.advance()
			if p.check(TokenRBrace) {
				break
			}
			continue
		}
		break
	}
	end, err := p.expect(TokenRBrace, "'}' to close record literal")
	if err != nil {
		return nil, err
	}
	return &RecordLit{exprBase{start.Span.Merge(end.Span)}, fields}, nil
}

func (p *Parser) parseBlock() (Expr, error) {
	start := p.advance() // '{'
	var stmts []Stmt
	for {
		if p.check(TokenRBrace) {
			return nil, p.errorf("block requires a final expression")
		}
		if p.checkKeyword("let") {
			letExpr, err := p.parseLetGroup()
			if err != nil {
				return nil, err
			}
			for p.check(TokenSemicolon) {
				p.advance()
			}
			stmts = append(stmts, Stmt{Let: letExpr.(*LetGroup)})
			continue
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		for p.check(TokenSemicolon) {
			p.advance()
		}
		if p.check(TokenRBrace) {
			end := p.advance()
			return &Block{exprBase{start.Span.Merge(end.Span)}, stmts, e}, nil
		}
		stmts = append(stmts, Stmt{Expr: e})
	}
}

// ---- Type expressions ----

// TypeExpr is implemented by every type-annotation AST node (spec §3).
type TypeExpr interface {
	isTypeExpr()
}

type NamedTypeExpr struct{ Name string }
type ArrayTypeExpr struct{ Elem TypeExpr }
type DictTypeExpr struct{ Key, Value TypeExpr }
type FuncTypeExpr struct {
	Params []TypeExpr
	Ret    TypeExpr
}
type VarTypeExpr struct{ Name string }

func (NamedTypeExpr) isTypeExpr() {}
func (ArrayTypeExpr) isTypeExpr() {}
func (DictTypeExpr) isTypeExpr()  {}
func (FuncTypeExpr) isTypeExpr()  {}
func (VarTypeExpr) isTypeExpr()   {}

var primTypeNames = map[string]bool{
	"number": true, "string": true, "boolean": true,
	"null": true, "undefined": true, "unit": true,
}

// type := prim | '[' type ']' | 'Array' '<' type '>'
//       | '[' type ':' type ']' | 'Dict' '<' type ',' type '>'
//       | '(' (type (',' type)*)? ')' '=>' type
//       | IDENT
func (p *Parser) parseType() (TypeExpr, error) {
	switch {
	case p.check(TokenIdent):
		name := p.cur().Lexeme
		if name == "Array" && p.peekAt(1).Kind == TokenLt {
			p.advance()
			p.advance() // '<'
			elem, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectGt(); err != nil {
				return nil, err
			}
			return ArrayTypeExpr{Elem: elem}, nil
		}
		if name == "Dict" && p.peekAt(1).Kind == TokenLt {
			p.advance()
			p.advance() // '<'
			key, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenComma, "',' in Dict<K,V>"); err != nil {
				return nil, err
			}
			val, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectGt(); err != nil {
				return nil, err
			}
			return DictTypeExpr{Key: key, Value: val}, nil
		}
		p.advance()
		if primTypeNames[name] {
			return NamedTypeExpr{Name: name}, nil
		}
		return VarTypeExpr{Name: name}, nil
	case p.check(TokenLBracket):
		p.advance()
		first, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if p.check(TokenColon) {
			p.advance()
			val, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenRBracket, "']' to close Dict type"); err != nil {
				return nil, err
			}
			return DictTypeExpr{Key: first, Value: val}, nil
		}
		if _, err := p.expect(TokenRBracket, "']' to close Array type"); err != nil {
			return nil, err
		}
		return ArrayTypeExpr{Elem: first}, nil
	case p.check(TokenLParen):
		p.advance()
		var params []TypeExpr
		if !p.check(TokenRParen) {
			for {
				t, err := p.parseType()
				if err != nil {
					return nil, err
				}
				params = append(params, t)
				if p.check(TokenComma) {
					p.advance()
					continue
				}
				break
			}
		}
		if _, err := p.expect(TokenRParen, "')' in function type"); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenFatArrow, "'=>' in function type"); err != nil {
			return nil, err
		}
		ret, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return FuncTypeExpr{Params: params, Ret: ret}, nil
	default:
		return nil, p.errorf("expected type expression, got %s", p.cur())
	}
}

// expectGt closes the `Array<T>`/`Dict<K,V>` angle-bracket forms, which the
// lexer tokenizes as plain TokenLt/TokenGt since the grammar never needs
// `<`/`>` as independent type syntax outside this context.
func (p *Parser) expectGt() (Token, error) {
	return p.expect(TokenGt, "'>' to close type argument list")
}
