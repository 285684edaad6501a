package internal

import (
	"bufio"
	"io"
	"strconv"
	"unicode"

	"tlog.app/go/errors"
)

// Tokenizer turns Jack source into tokens. It implements TokenSource, the whole
// input is scanned on the first call to Advance.
type Tokenizer struct {
	rd io.Reader

	currentPos   int
	currentLine  int
	inComment    bool
	commentStart int

	tokens  []Token
	next    int
	scanned bool
	err     error
}

func NewTokenizer(rd io.Reader) *Tokenizer {
	return &Tokenizer{rd: rd}
}

func (tokenizer *Tokenizer) Advance() bool {
	if !tokenizer.scanned {
		tokenizer.scanned = true
		tokenizer.tokens, tokenizer.err = tokenizer.Tokenize(tokenizer.rd)
		if tokenizer.err != nil {
			return false
		}
	}
	if tokenizer.err != nil || tokenizer.next >= len(tokenizer.tokens) {
		return false
	}
	tokenizer.next++
	return true
}

func (tokenizer *Tokenizer) Token() Token {
	if tokenizer.next == 0 || tokenizer.next > len(tokenizer.tokens) {
		return Token{}
	}
	return tokenizer.tokens[tokenizer.next-1]
}

func (tokenizer *Tokenizer) Err() error {
	return tokenizer.err
}

// Tokenize accepts a source `rd` and splits its content into tokens according to the jack language rules.
// Comments and whitespace never reach the result.
func (tokenizer *Tokenizer) Tokenize(rd io.Reader) (tokens []Token, err error) {
	tokenizer.Reset()
	bfReader := bufio.NewReader(rd)
	for {
		line, err := bfReader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "read line %d", tokenizer.currentLine+1)
		}
		tokenizer.currentLine++
		tokenizer.currentPos = 0
		for {
			token, ok, lexErr := tokenizer.getNextToken(line)
			if lexErr != nil {
				return nil, lexErr
			}
			if !ok {
				break
			}
			tokens = append(tokens, token)
		}
		if err == io.EOF {
			break
		}
	}
	if tokenizer.inComment {
		return nil, tokenizer.makeError(tokenizer.commentStart, "/*", "unterminated comment")
	}
	return tokens, nil
}

// getNextToken returns the next token of line, ok is false when the rest of the line
// holds no more tokens.
func (tokenizer *Tokenizer) getNextToken(line []byte) (token Token, ok bool, err error) {
	for {
		if tokenizer.inComment && !tokenizer.skipCommentBody(line) {
			return Token{}, false, nil
		}
		tokenizer.trimSpace(line)
		if !tokenizer.hasRemainCharacters(line) {
			return Token{}, false, nil
		}
		c := line[tokenizer.currentPos]
		if c != '/' || tokenizer.currentPos+1 >= len(line) {
			break
		}
		switch line[tokenizer.currentPos+1] {
		case '/':
			tokenizer.currentPos = len(line)
			return Token{}, false, nil
		case '*':
			tokenizer.inComment, tokenizer.commentStart = true, tokenizer.currentLine
			tokenizer.currentPos += 2
			continue
		}
		break
	}
	switch c := line[tokenizer.currentPos]; {
	case isSymbol(c):
		return tokenizer.tokenSymbol(line), true, nil
	case c == '"':
		token, err = tokenizer.tokenString(line)
	case isDigit(c):
		token, err = tokenizer.tokenNumber(line)
	case isLetterOrUnderscore(c):
		token = tokenizer.toKeywordOrIdentifier(line)
	default:
		err = tokenizer.makeError(tokenizer.currentLine, string(c), "unexpected character")
	}
	return token, err == nil, err
}

// skipCommentBody steps over the body of a /* */ comment. It reports whether the
// comment was closed on this line.
func (tokenizer *Tokenizer) skipCommentBody(line []byte) bool {
	for tokenizer.currentPos < len(line)-1 {
		if line[tokenizer.currentPos] == '*' && line[tokenizer.currentPos+1] == '/' {
			tokenizer.currentPos += 2
			tokenizer.inComment = false
			return true
		}
		tokenizer.currentPos++
	}
	tokenizer.currentPos = len(line)
	return false
}

func (tokenizer *Tokenizer) trimSpace(line []byte) {
	for tokenizer.currentPos < len(line) && unicode.IsSpace(rune(line[tokenizer.currentPos])) {
		tokenizer.currentPos++
	}
}

func (tokenizer *Tokenizer) hasRemainCharacters(line []byte) bool {
	return tokenizer.currentPos < len(line)
}

func (tokenizer *Tokenizer) tokenSymbol(line []byte) Token {
	token := NewSymbolToken(line[tokenizer.currentPos], tokenizer.currentLine)
	tokenizer.currentPos++
	return token
}

func (tokenizer *Tokenizer) tokenString(line []byte) (Token, error) {
	// Looking forward through line to find a closing quote.
	startPos := tokenizer.currentPos + 1
	for i := startPos; i < len(line); i++ {
		switch line[i] {
		case '"':
			tokenizer.currentPos = i + 1
			return NewStringToken(string(line[startPos:i]), tokenizer.currentLine), nil
		case '\n', '\r':
			i = len(line)
		}
	}
	return Token{}, tokenizer.makeError(tokenizer.currentLine, string(line[startPos-1:]), "unterminated string")
}

func (tokenizer *Tokenizer) tokenNumber(line []byte) (Token, error) {
	startPos := tokenizer.currentPos
	for tokenizer.currentPos < len(line) && isDigit(line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	text := string(line[startPos:tokenizer.currentPos])
	v, err := strconv.Atoi(text)
	if err != nil || v > MaxInt {
		return Token{}, tokenizer.makeError(tokenizer.currentLine, text, "integer constant out of range 0..32767")
	}
	// A number directly followed by letters is not a valid identifier either.
	if tokenizer.currentPos < len(line) && isLetterOrUnderscore(line[tokenizer.currentPos]) {
		return Token{}, tokenizer.makeError(tokenizer.currentLine, text, "incorrect identifier format")
	}
	return NewIntegerToken(v, tokenizer.currentLine), nil
}

func (tokenizer *Tokenizer) toKeywordOrIdentifier(line []byte) Token {
	startPos := tokenizer.currentPos
	for tokenizer.currentPos < len(line) && (isLetterOrUnderscore(line[tokenizer.currentPos]) || isDigit(line[tokenizer.currentPos])) {
		tokenizer.currentPos++
	}
	word := string(line[startPos:tokenizer.currentPos])
	if kw, ok := keywords[word]; ok {
		return NewKeywordToken(kw, tokenizer.currentLine)
	}
	return NewIdentifierToken(word, tokenizer.currentLine)
}

func (tokenizer *Tokenizer) makeError(line int, near string, msg string) error {
	return errors.New("tokenizer: %s near %q at line %d", msg, near, line)
}

func (tokenizer *Tokenizer) Reset() {
	tokenizer.currentPos, tokenizer.currentLine = 0, 0
	tokenizer.inComment, tokenizer.commentStart = false, 0
}

func isSymbol(c byte) bool {
	switch c {
	case '{', '}', '(', ')', '[', ']', '.', ',', ';', '+', '-', '*', '/', '&', '|', '<', '>', '=', '~', '^', '#':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetterOrUnderscore(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
