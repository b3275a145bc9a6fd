package internal

import (
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// A rule based Tokenizer for jack.

// Jack language has those elements:
// * KeyWord: class, constructor, function, method, field, static, var, int, char, boolean, void, true,
// 			false, null, this, let, do, if, else, while, return.
// * Symbol: {, }, (, ), [, ], ., ,, ;, +, -, *, /, &, |, <, >, =, ~.
// * Constant: integer (0..32767), string ("xxx", ascii only, no newline or quote inside).
// * Identifier: letters, digits, underscore, not starting with a digit.
// * Comment: /**/, //. Comments and whitespace are ignored.

type TokenType int

const (
	KeywordTP TokenType = iota
	SymbolTP
	IntegerConstantTP
	StringConstantTP
	IdentifierTP
	IgnoredTP
)

func (tp TokenType) String() string {
	switch tp {
	case KeywordTP:
		return "keyword"
	case SymbolTP:
		return "symbol"
	case IntegerConstantTP:
		return "integerConstant"
	case StringConstantTP:
		return "stringConstant"
	case IdentifierTP:
		return "identifier"
	case IgnoredTP:
		return "ignored"
	}
	return "unknown"
}

// MaxIntegerConstant is the largest literal the 16 bit target can push.
const MaxIntegerConstant = 32767

type Token struct {
	content string
	line    int
	column  int
	tp      TokenType
}

func NewToken(tp TokenType, content string) *Token {
	return &Token{tp: tp, content: content}
}

func (t *Token) Type() TokenType {
	return t.tp
}

// Content returns the token text. String constants are stored without quotes.
func (t *Token) Content() string {
	return t.content
}

func (t *Token) Line() int {
	return t.line
}

func (t *Token) Column() int {
	return t.column
}

// Literal returns the token the way it is written in source.
func (t *Token) Literal() string {
	if t.tp == StringConstantTP {
		return `"` + t.content + `"`
	}
	return t.content
}

func (t *Token) is(tp TokenType, content string) bool {
	return t != nil && t.tp == tp && t.content == content
}

func (t *Token) String() string {
	return t.tp.String() + " " + strconv.Quote(t.content)
}

type tokenRule struct {
	tp    TokenType
	regex *regexp.Regexp
}

var blockCommentRule = &tokenRule{tp: IgnoredTP, regex: regexp.MustCompile(`^/\*(?s:.*?)\*/`)}

// tokenRules are tried in order, the first one matching at the current position wins.
var tokenRules = []*tokenRule{
	{tp: IgnoredTP, regex: regexp.MustCompile(`^//[^\n]*`)},
	blockCommentRule,
	{tp: IgnoredTP, regex: regexp.MustCompile(`^\s+`)},
	{tp: SymbolTP, regex: regexp.MustCompile(`^[{}()\[\].,;+\-*/&|<>=~]`)},
	{tp: IntegerConstantTP, regex: regexp.MustCompile(`^\d+`)},
	{tp: StringConstantTP, regex: regexp.MustCompile(`^"[^"\n]*"`)},
	{tp: KeywordTP, regex: regexp.MustCompile(`^(?:class|constructor|function|method|field|static|var|int|char|boolean|void|true|false|null|this|let|do|if|else|while|return)\b`)},
	{tp: IdentifierTP, regex: regexp.MustCompile(`^[A-Za-z_]\w*`)},
}

type Tokenizer struct {
	currentPos    int
	currentLine   int
	currentColumn int
	tokens        []*Token
}

// Tokenize accepts a source `rd` and tokenizes its content according to jack language rules.
// Ignored tokens are dropped. The first position no rule matches aborts with a *LexError.
func (tokenizer *Tokenizer) Tokenize(rd io.Reader) ([]*Token, error) {
	src, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	return tokenizer.TokenizeString(string(src))
}

func (tokenizer *Tokenizer) TokenizeString(src string) ([]*Token, error) {
	tokenizer.Reset()
	for tokenizer.currentPos < len(src) {
		rest := src[tokenizer.currentPos:]
		token, matched, err := tokenizer.matchRule(rest)
		if err != nil {
			return nil, err
		}
		if token.tp != IgnoredTP {
			tokenizer.tokens = append(tokenizer.tokens, token)
		}
		tokenizer.advance(matched)
	}
	return tokenizer.tokens, nil
}

// matchRule returns the token at the start of rest and the exact source text it consumed.
func (tokenizer *Tokenizer) matchRule(rest string) (*Token, string, error) {
	// An unclosed block comment must not fall through to the `/` and `*` symbols.
	if strings.HasPrefix(rest, "/*") && !blockCommentRule.regex.MatchString(rest) {
		return nil, "", tokenizer.makeError(firstLine(rest), "incorrect comment format")
	}
	for _, rule := range tokenRules {
		loc := rule.regex.FindStringIndex(rest)
		if loc == nil || loc[0] != 0 || loc[1] == 0 {
			continue
		}
		matched := rest[:loc[1]]
		token := &Token{
			content: matched,
			line:    tokenizer.currentLine,
			column:  tokenizer.currentColumn,
			tp:      rule.tp,
		}
		switch rule.tp {
		case StringConstantTP:
			token.content = matched[1 : len(matched)-1]
			if strings.IndexFunc(token.content, isNotASCII) >= 0 {
				return nil, "", tokenizer.makeError(matched, "non ascii character in string")
			}
		case IntegerConstantTP:
			value, err := strconv.Atoi(matched)
			if err != nil || value > MaxIntegerConstant {
				return nil, "", tokenizer.makeError(matched, "integer constant out of range")
			}
		}
		return token, matched, nil
	}
	if rest[0] == '"' {
		return nil, "", tokenizer.makeError(firstLine(rest), "incorrect string format")
	}
	// Near is the offending character alone.
	_, size := utf8.DecodeRuneInString(rest)
	return nil, "", tokenizer.makeError(rest[:size], "unrecognized token")
}

func isNotASCII(r rune) bool {
	return r > unicode.MaxASCII
}

// advance moves the cursor over the consumed text, keeping line and column current.
func (tokenizer *Tokenizer) advance(consumed string) {
	tokenizer.currentPos += len(consumed)
	if n := strings.Count(consumed, "\n"); n > 0 {
		tokenizer.currentLine += n
		tokenizer.currentColumn = len(consumed) - strings.LastIndexByte(consumed, '\n')
		return
	}
	tokenizer.currentColumn += len(consumed)
}

func (tokenizer *Tokenizer) makeError(near string, msg string) error {
	return &LexError{Line: tokenizer.currentLine, Column: tokenizer.currentColumn, Near: near, Msg: msg}
}

func (tokenizer *Tokenizer) Reset() {
	tokenizer.currentPos, tokenizer.currentLine, tokenizer.currentColumn = 0, 1, 1
	tokenizer.tokens = nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const maxNear = 20
	if len(s) > maxNear {
		s = s[:maxNear]
	}
	return s
}

// TokenStream is a single forward cursor over a token sequence with one token lookahead.
type TokenStream struct {
	tokens     []*Token
	currentPos int
}

func NewTokenStream(tokens []*Token) *TokenStream {
	return &TokenStream{tokens: tokens}
}

func (stream *TokenStream) hasRemainTokens() bool {
	return stream.currentPos < len(stream.tokens)
}

// peek returns the next token without consuming it, or nil at the end.
func (stream *TokenStream) peek() *Token {
	if !stream.hasRemainTokens() {
		return nil
	}
	return stream.tokens[stream.currentPos]
}

// next consumes the next token, or returns nil at the end.
func (stream *TokenStream) next() *Token {
	token := stream.peek()
	if token != nil {
		stream.currentPos++
	}
	return token
}

// lastLine is the line of the most recently consumed token, used to place errors at end of input.
func (stream *TokenStream) lastLine() int {
	if stream.currentPos == 0 || len(stream.tokens) == 0 {
		return 1
	}
	return stream.tokens[stream.currentPos-1].line
}
