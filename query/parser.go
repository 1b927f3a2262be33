package query

import "strings"

// Parse compiles query text into a Query. Target keyword matching is
// case-insensitive; a missing or unrecognized target is a *ParseError,
// as is a malformed value, unknown operator, or unterminated string
// (§4.10).
func Parse(input string) (*Query, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, source: input}
	return p.parseQuery()
}

type parser struct {
	tokens []token
	pos    int
	source string
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) atKeyword(kw string) bool {
	t := p.peek()
	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

func (p *parser) expectKeyword(kw string) error {
	if !p.atKeyword(kw) {
		return newParseError(p.peek().pos, "expected %q, got %q", kw, p.peek().text)
	}
	p.next()
	return nil
}

func (p *parser) parseQuery() (*Query, error) {
	targetTok := p.peek()
	if targetTok.kind != tokIdent {
		return nil, newParseError(targetTok.pos, "missing query target (expected CONCEPTS, MEMORIES, or RULES)")
	}

	var target TargetKind
	switch strings.ToUpper(targetTok.text) {
	case "CONCEPTS":
		target = TargetConcepts
	case "MEMORIES":
		target = TargetMemories
	case "RULES":
		target = TargetRules
	default:
		return nil, newParseError(targetTok.pos, "unknown query target %q", targetTok.text)
	}
	p.next()

	q := &Query{Target: target, Source: p.source}

	if t := p.peek(); t.kind == tokIdent && (strings.EqualFold(t.text, "RELATED") || strings.EqualFold(t.text, "CONNECTED")) {
		trav, err := p.parseTraversal()
		if err != nil {
			return nil, err
		}
		q.Traversal = trav
	}

	if p.atKeyword("WHERE") {
		p.next()
		conditions, err := p.parseConditions()
		if err != nil {
			return nil, err
		}
		q.Conditions = conditions
	}

	if p.atKeyword("ORDER") {
		p.next()
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		field, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		dir := OrderAsc
		if p.atKeyword("DESC") {
			p.next()
			dir = OrderDesc
		} else if p.atKeyword("ASC") {
			p.next()
		}
		q.OrderBy = &OrderClause{Field: field, Direction: dir}
	}

	if p.atKeyword("LIMIT") {
		p.next()
		t := p.next()
		if t.kind != tokNumber {
			return nil, newParseError(t.pos, "LIMIT expects a number, got %q", t.text)
		}
		n, ok := asNumber(t.text)
		if !ok {
			return nil, newParseError(t.pos, "malformed LIMIT value %q", t.text)
		}
		limit := int(n)
		q.Limit = &limit
	}

	if p.peek().kind != tokEOF {
		return nil, newParseError(p.peek().pos, "unexpected trailing token %q", p.peek().text)
	}

	return q, nil
}

func (p *parser) parseTraversal() (*Traversal, error) {
	if p.atKeyword("RELATED") {
		p.next()
		if err := p.expectKeyword("TO"); err != nil {
			return nil, err
		}
		id, err := p.expectString()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("DEPTH"); err != nil {
			return nil, err
		}
		depthTok := p.next()
		if depthTok.kind != tokNumber {
			return nil, newParseError(depthTok.pos, "DEPTH expects a number, got %q", depthTok.text)
		}
		depth, ok := asNumber(depthTok.text)
		if !ok {
			return nil, newParseError(depthTok.pos, "malformed DEPTH value %q", depthTok.text)
		}
		return &Traversal{Kind: TraversalRelatedTo, ConceptID: id, Depth: int(depth)}, nil
	}

	p.next() // CONNECTED
	if err := p.expectKeyword("TO"); err != nil {
		return nil, err
	}
	id, err := p.expectString()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("VIA"); err != nil {
		return nil, err
	}
	rel, err := p.expectString()
	if err != nil {
		return nil, err
	}
	return &Traversal{Kind: TraversalConnected, ConceptID: id, RelationType: rel}, nil
}

func (p *parser) parseConditions() ([]Condition, error) {
	var conditions []Condition
	for {
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, cond)

		if p.atKeyword("AND") {
			p.next()
			continue
		}
		break
	}
	return conditions, nil
}

func (p *parser) parseCondition() (Condition, error) {
	field, err := p.expectIdent()
	if err != nil {
		return Condition{}, err
	}

	op, err := p.parseOperator()
	if err != nil {
		return Condition{}, err
	}

	cond := Condition{Field: field, Operator: op}

	switch op {
	case OpBetween:
		v1, err := p.parseValue()
		if err != nil {
			return Condition{}, err
		}
		if err := p.expectKeyword("AND"); err != nil {
			return Condition{}, err
		}
		v2, err := p.parseValue()
		if err != nil {
			return Condition{}, err
		}
		cond.Value, cond.Value2 = v1, v2
	case OpIn, OpNotIn:
		values, err := p.parseValueList()
		if err != nil {
			return Condition{}, err
		}
		cond.Values = values
	default:
		v, err := p.parseValue()
		if err != nil {
			return Condition{}, err
		}
		cond.Value = v
	}

	return cond, nil
}

func (p *parser) parseOperator() (Operator, error) {
	t := p.peek()

	if t.kind == tokSymbol {
		p.next()
		switch t.text {
		case "=":
			return OpEquals, nil
		case "!=":
			return OpNotEquals, nil
		case ">":
			return OpGreaterThan, nil
		case "<":
			return OpLessThan, nil
		case ">=":
			return OpGTE, nil
		case "<=":
			return OpLTE, nil
		default:
			return "", newParseError(t.pos, "unknown operator %q", t.text)
		}
	}

	if t.kind == tokIdent {
		switch strings.ToUpper(t.text) {
		case "CONTAINS":
			p.next()
			return OpContains, nil
		case "STARTSWITH":
			p.next()
			return OpStartsWith, nil
		case "ENDSWITH":
			p.next()
			return OpEndsWith, nil
		case "MATCHES":
			p.next()
			return OpMatches, nil
		case "BETWEEN":
			p.next()
			return OpBetween, nil
		case "IN":
			p.next()
			return OpIn, nil
		case "NOTIN", "NOT_IN":
			p.next()
			return OpNotIn, nil
		}
	}

	return "", newParseError(t.pos, "unknown operator %q", t.text)
}

func (p *parser) parseValue() (any, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return t.text, nil
	case tokNumber:
		n, ok := asNumber(t.text)
		if !ok {
			return nil, newParseError(t.pos, "malformed numeric value %q", t.text)
		}
		return n, nil
	case tokIdent:
		switch strings.ToLower(t.text) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return t.text, nil
	default:
		return nil, newParseError(t.pos, "malformed value %q", t.text)
	}
}

func (p *parser) parseValueList() ([]any, error) {
	if p.peek().kind == tokSymbol && p.peek().text == "(" {
		p.next()
	} else {
		return nil, newParseError(p.peek().pos, "expected '(' to start value list, got %q", p.peek().text)
	}

	var values []any
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		if p.peek().kind == tokSymbol && p.peek().text == "," {
			p.next()
			continue
		}
		break
	}

	if p.peek().kind == tokSymbol && p.peek().text == ")" {
		p.next()
	} else {
		return nil, newParseError(p.peek().pos, "expected ')' to close value list, got %q", p.peek().text)
	}
	return values, nil
}

func (p *parser) expectIdent() (string, error) {
	t := p.next()
	if t.kind != tokIdent {
		return "", newParseError(t.pos, "expected identifier, got %q", t.text)
	}
	return t.text, nil
}

func (p *parser) expectString() (string, error) {
	t := p.next()
	if t.kind != tokString {
		return "", newParseError(t.pos, "expected quoted string, got %q", t.text)
	}
	return t.text, nil
}
