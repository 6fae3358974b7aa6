package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"unicode"
)

type Parser struct {
	*bufio.Reader
	peeked []string
}

func NewParser(in io.Reader) *Parser {
	return &Parser{Reader: bufio.NewReader(in)}
}

var keywords = map[string]bool{
	"let":       true,
	"def":       true,
	"structure": true,
	"check":     true,
	"search":    true,
	"prove":     true,
	"namespace": true,
	"end":       true,
	"open":      true,
	"close":     true,
	"import":    true,
	"inspect":   true,
	"exit":      true,
}

// Next parses the next statement. It returns io.EOF when the input ends
// between the statements.
func (p *Parser) Next() (any, error) {
	for {
		token, err := p.next()
		if err != nil {
			return nil, err
		}

		switch token {
		case ";":
			continue
		case "let":
			group, err := p.readGroup()
			if err != nil {
				return nil, eof(err)
			}
			return Let{group}, nil
		case "def":
			def, err := p.readDef()
			return def, eof(err)
		case "structure":
			structure, err := p.readStructure()
			return structure, eof(err)
		case "check":
			expr, err := p.readExpr()
			if err != nil {
				return nil, eof(err)
			}
			return Check{expr}, nil
		case "search":
			search, err := p.readSearch()
			return search, eof(err)
		case "prove":
			expr, err := p.readExpr()
			if err != nil {
				return nil, eof(err)
			}
			return Prove{expr}, nil
		case "namespace":
			name, err := p.readIdentifier()
			return NamespaceBegin{name}, eof(err)
		case "end":
			name, err := p.readIdentifier()
			return NamespaceEnd{name}, eof(err)
		case "open":
			path, err := p.readPath()
			return Open{path}, eof(err)
		case "close":
			path, err := p.readPath()
			return Close{path}, eof(err)
		case "import":
			path, err := p.readString()
			return Import{path}, eof(err)
		case "inspect":
			path, err := p.readPath()
			return Inspect{path}, eof(err)
		case "exit":
			return Exit{}, nil
		default:
			return nil, UnexpectedToken{token}
		}
	}
}

// Inside of a statement, the end of input is an error.
func eof(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (p *Parser) next() (string, error) {
	if n := len(p.peeked); n > 0 {
		token := p.peeked[n-1]
		p.peeked = p.peeked[:n-1]
		return token, nil
	}
	return p.readToken()
}

func (p *Parser) peek() (string, error) {
	token, err := p.next()
	if err != nil {
		return "", err
	}
	p.peeked = append(p.peeked, token)
	return token, nil
}

func (p *Parser) expect(expected string) error {
	token, err := p.next()
	if err != nil {
		return err
	}
	if token != expected {
		return UnexpectedToken{token}
	}
	return nil
}

func (p *Parser) readDef() (Def, error) {
	name, err := p.readIdentifier()
	if err != nil {
		return Def{}, err
	}
	params, err := p.readParams()
	if err != nil {
		return Def{}, err
	}
	if err := p.expect(":="); err != nil {
		return Def{}, err
	}
	body, err := p.readExpr()
	if err != nil {
		return Def{}, err
	}
	return Def{
		Name:   name,
		Params: params,
		Body:   body,
	}, nil
}

// NAME PARAMS := { GROUP ( , GROUP )* }
func (p *Parser) readStructure() (Structure, error) {
	name, err := p.readIdentifier()
	if err != nil {
		return Structure{}, err
	}
	params, err := p.readParams()
	if err != nil {
		return Structure{}, err
	}
	if err := p.expect(":="); err != nil {
		return Structure{}, err
	}
	if err := p.expect("{"); err != nil {
		return Structure{}, err
	}

	structure := Structure{Name: name, Params: params}
	for {
		field, err := p.readGroup()
		if err != nil {
			return Structure{}, err
		}
		field.Explicit = true
		structure.Fields = append(structure.Fields, field)

		token, err := p.next()
		if err != nil {
			return Structure{}, err
		}
		switch token {
		case ",":
			continue
		case "}":
			return structure, nil
		default:
			return Structure{}, UnexpectedToken{token}
		}
	}
}

func (p *Parser) readSearch() (Search, error) {
	search := Search{Count: 1}
	for {
		token, err := p.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Search{}, err
		}
		if token != "(" {
			break
		}
		p.next()

		group, err := p.readGroup()
		if err != nil {
			return Search{}, err
		}
		group.Explicit = true
		search.Goals = append(search.Goals, group)

		if err := p.expect(")"); err != nil {
			return Search{}, err
		}
	}

	if len(search.Goals) == 0 {
		token, err := p.next()
		if err != nil {
			return Search{}, err
		}
		return Search{}, UnexpectedToken{token}
	}

	token, err := p.peek()
	if err == io.EOF {
		return search, nil
	}
	if err != nil {
		return Search{}, err
	}
	if isNumber(token) {
		p.next()
		count, err := strconv.Atoi(token)
		if err != nil {
			return Search{}, err
		}
		if count < 1 {
			return Search{}, WrongValue{"count", count}
		}
		search.Count = count
	}
	return search, nil
}

// NAMES PARAMS : EXPR
func (p *Parser) readGroup() (Group, error) {
	var group Group
	for {
		name, err := p.readIdentifier()
		if err != nil {
			return Group{}, err
		}
		group.Names = append(group.Names, name)

		token, err := p.peek()
		if err != nil {
			return Group{}, err
		}
		if !isIdentifier(token) {
			break
		}
	}

	params, err := p.readParams()
	if err != nil {
		return Group{}, err
	}
	group.Params = params

	if err := p.expect(":"); err != nil {
		return Group{}, err
	}

	typ, err := p.readExpr()
	if err != nil {
		return Group{}, err
	}
	group.Type = typ

	return group, nil
}

// ( '(' GROUP ')' | '{' GROUP '}' )*
func (p *Parser) readParams() ([]Group, error) {
	var params []Group
	for {
		token, err := p.peek()
		if err != nil {
			return nil, err
		}

		var closing string
		switch token {
		case "(":
			closing = ")"
		case "{":
			closing = "}"
		default:
			return params, nil
		}
		p.next()

		group, err := p.readGroup()
		if err != nil {
			return nil, err
		}
		group.Explicit = token == "("
		params = append(params, group)

		if err := p.expect(closing); err != nil {
			return nil, err
		}
	}
}

// TERM+ where TERM is PATH or ( EXPR )
func (p *Parser) readExpr() (Expr, error) {
	var expr Expr
LOOP:
	for {
		token, err := p.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch {
		case token == "(":
			p.next()
			sub, err := p.readExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			expr = append(expr, sub)
		case isIdentifier(token):
			path, err := p.readPath()
			if err != nil {
				return nil, err
			}
			expr = append(expr, Name(path))
		default:
			break LOOP
		}
	}

	if len(expr) == 0 {
		token, err := p.next()
		if err != nil {
			return nil, err
		}
		return nil, UnexpectedToken{token}
	}
	return expr, nil
}

// IDENTIFIER ( . IDENTIFIER )*
func (p *Parser) readPath() (string, error) {
	path, err := p.readIdentifier()
	if err != nil {
		return "", err
	}
	for {
		token, err := p.peek()
		if err == io.EOF {
			return path, nil
		}
		if err != nil {
			return "", err
		}
		if token != "." {
			return path, nil
		}
		p.next()

		name, err := p.readIdentifier()
		if err != nil {
			return "", err
		}
		path += "." + name
	}
}

func (p *Parser) readIdentifier() (string, error) {
	token, err := p.next()
	if err != nil {
		return "", err
	}
	if !isIdentifier(token) {
		return "", UnexpectedToken{token}
	}
	return token, nil
}

func (p *Parser) readString() (string, error) {
	token, err := p.next()
	if err != nil {
		return "", err
	}
	if len(token) < 2 || token[0] != '"' || token[len(token)-1] != '"' {
		return "", UnexpectedToken{token}
	}
	str, err := strconv.Unquote(token)
	if err != nil {
		return "", fmt.Errorf("invalid string: '%s'", token)
	}
	return str, nil
}

func isIdentifier(token string) bool {
	if token == "" || keywords[token] || isNumber(token) {
		return false
	}
	for _, r := range token {
		if !(unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || r == '\'') {
			return false
		}
	}
	return true
}

func isNumber(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !('0' <= r && r <= '9') {
			return false
		}
	}
	return true
}

type UnexpectedToken struct {
	token string
}

func (err UnexpectedToken) Error() string {
	return fmt.Sprintf("unexpected token: '%s'", err.token)
}

type WrongValue struct {
	key string
	val any
}

func (e WrongValue) Error() string {
	return fmt.Sprintf("argument of %s = %v has an invalid value", e.key, e.val)
}
