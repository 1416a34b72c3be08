// Package compiler implements the single-pass golox compiler.
//
// The compiler is a Pratt parser that drives the lexer and emits bytecode
// as it parses; there is no AST. A fixed rule table maps each token type
// to an optional prefix parser, an optional infix parser, and an infix
// precedence, and parsePrecedence climbs that table to respect operator
// binding.
//
// Nested function declarations are compiled on an owned stack of
// per-function frames: the frame on top of the stack is the function
// currently being emitted, and popping it yields the finished Function
// object, which the enclosing frame stores as a constant.
//
// Errors are reported to the error writer as they are found; the parser
// then enters panic mode, suppressing further reports until it
// resynchronizes at a statement boundary. Compile returns the top-level
// script function only if no error was reported.
package compiler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/kristofer/golox/pkg/bytecode"
	"github.com/kristofer/golox/pkg/lexer"
)

// ErrCompile is returned by Compile when one or more errors were
// reported. The diagnostics themselves go to the error writer.
var ErrCompile = errors.New("compile error")

// FunctionType distinguishes the top-level script from declared functions.
type FunctionType int

const (
	TypeScript FunctionType = iota
	TypeFunction
)

// maxLocals caps the number of local slots per function; slot operands
// are a single byte.
const maxLocals = 256

type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . () []
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix parseFn
	infix  parseFn
	prec   precedence
}

// rules is filled in by init to avoid an initialization cycle between
// the table and the parse functions that consult it.
var rules map[lexer.TokenType]parseRule

func init() {
	rules = map[lexer.TokenType]parseRule{
		lexer.TokenLeftParen:    {prefix: (*Compiler).grouping, infix: (*Compiler).call, prec: precCall},
		lexer.TokenLeftBracket:  {prefix: (*Compiler).arrayLiteral, infix: (*Compiler).index, prec: precCall},
		lexer.TokenLeftBrace:    {prefix: (*Compiler).mapLiteral},
		lexer.TokenDot:          {infix: (*Compiler).dot, prec: precCall},
		lexer.TokenMinus:        {prefix: (*Compiler).unary, infix: (*Compiler).binary, prec: precTerm},
		lexer.TokenPlus:         {infix: (*Compiler).binary, prec: precTerm},
		lexer.TokenSlash:        {infix: (*Compiler).binary, prec: precFactor},
		lexer.TokenStar:         {infix: (*Compiler).binary, prec: precFactor},
		lexer.TokenBang:         {prefix: (*Compiler).unary},
		lexer.TokenBangEqual:    {infix: (*Compiler).binary, prec: precEquality},
		lexer.TokenEqualEqual:   {infix: (*Compiler).binary, prec: precEquality},
		lexer.TokenGreater:      {infix: (*Compiler).binary, prec: precComparison},
		lexer.TokenGreaterEqual: {infix: (*Compiler).binary, prec: precComparison},
		lexer.TokenLess:         {infix: (*Compiler).binary, prec: precComparison},
		lexer.TokenLessEqual:    {infix: (*Compiler).binary, prec: precComparison},
		lexer.TokenIdentifier:   {prefix: (*Compiler).variable},
		lexer.TokenString:       {prefix: (*Compiler).stringLiteral},
		lexer.TokenNumber:       {prefix: (*Compiler).number},
		lexer.TokenAnd:          {infix: (*Compiler).and, prec: precAnd},
		lexer.TokenOr:           {infix: (*Compiler).or, prec: precOr},
		lexer.TokenTrue:         {prefix: (*Compiler).literal},
		lexer.TokenFalse:        {prefix: (*Compiler).literal},
		lexer.TokenNil:          {prefix: (*Compiler).literal},
	}
}

func getRule(tt lexer.TokenType) parseRule {
	return rules[tt]
}

// local tracks one declared local variable: its name token and the scope
// depth it was declared at. A depth of -1 marks a local whose
// initializer is still being compiled.
type local struct {
	name  lexer.Token
	depth int
}

// funcScope is the per-function compiler state. The Compiler keeps a
// stack of these; the top frame is the function currently being built.
type funcScope struct {
	function   *bytecode.Function
	ftype      FunctionType
	locals     []local
	scopeDepth int
}

// Compiler compiles golox source to a top-level function object.
type Compiler struct {
	lex       *lexer.Lexer
	current   lexer.Token
	previous  lexer.Token
	hadError  bool
	panicMode bool

	scopes []*funcScope
	pool   *bytecode.StringPool
	errw   io.Writer
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithErrorOutput redirects compile diagnostics, which default to stderr.
func WithErrorOutput(w io.Writer) Option {
	return func(c *Compiler) { c.errw = w }
}

// New creates a compiler whose string constants are interned in pool.
// Sharing the pool with the VM keeps compile-time and runtime strings
// identical, so string equality stays a pointer comparison.
func New(pool *bytecode.StringPool, opts ...Option) *Compiler {
	c := &Compiler{
		pool: pool,
		errw: os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile parses and compiles source in a single pass, returning the
// top-level script function. If any error was reported, it returns
// ErrCompile; diagnostics have already been written to the error writer.
func (c *Compiler) Compile(source string) (*bytecode.Function, error) {
	c.lex = lexer.New(source)
	c.hadError = false
	c.panicMode = false
	c.scopes = c.scopes[:0]
	c.pushScope(TypeScript, nil)

	c.advance()
	for !c.match(lexer.TokenEOF) {
		c.declaration()
	}
	fn := c.endCompiler()

	if c.hadError {
		return nil, ErrCompile
	}
	return fn, nil
}

// pushScope starts compiling a new function. Slot 0 of every call frame
// holds the callee, so the frame reserves it with an unnameable local.
func (c *Compiler) pushScope(ftype FunctionType, name *bytecode.String) {
	scope := &funcScope{
		function: &bytecode.Function{
			Chunk: bytecode.NewChunk(),
			Name:  name,
		},
		ftype:  ftype,
		locals: []local{{name: lexer.Token{}, depth: 0}},
	}
	c.scopes = append(c.scopes, scope)
}

func (c *Compiler) cur() *funcScope {
	return c.scopes[len(c.scopes)-1]
}

func (c *Compiler) currentChunk() *bytecode.Chunk {
	return c.cur().function.Chunk
}

// endCompiler finishes the current function and pops its frame.
func (c *Compiler) endCompiler() *bytecode.Function {
	c.emitReturn()
	fn := c.cur().function
	c.scopes = c.scopes[:len(c.scopes)-1]
	return fn
}

// --- token plumbing ---

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.lex.NextToken()
		if c.current.Type != lexer.TokenError {
			break
		}
		c.errorAtCurrent(c.current.Literal)
	}
}

func (c *Compiler) consume(tt lexer.TokenType, message string) {
	if c.current.Type == tt {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *Compiler) check(tt lexer.TokenType) bool {
	return c.current.Type == tt
}

func (c *Compiler) match(tt lexer.TokenType) bool {
	if !c.check(tt) {
		return false
	}
	c.advance()
	return true
}

// --- error reporting ---

func (c *Compiler) errorAt(tok lexer.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true

	fmt.Fprintf(c.errw, "[line %d] Error", tok.Line)
	switch tok.Type {
	case lexer.TokenEOF:
		fmt.Fprintf(c.errw, " at end")
	case lexer.TokenError:
		// the message is the lexeme
	default:
		fmt.Fprintf(c.errw, " at '%s'", tok.Literal)
	}
	fmt.Fprintf(c.errw, ": %s\n", message)
	c.hadError = true
}

func (c *Compiler) error(message string) {
	c.errorAt(c.previous, message)
}

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

// synchronize skips tokens until a statement boundary so one mistake
// does not cascade into a wall of spurious diagnostics.
func (c *Compiler) synchronize() {
	c.panicMode = false

	for c.current.Type != lexer.TokenEOF {
		if c.previous.Type == lexer.TokenSemicolon {
			return
		}
		switch c.current.Type {
		case lexer.TokenStruct, lexer.TokenFun, lexer.TokenVar,
			lexer.TokenFor, lexer.TokenIf, lexer.TokenWhile,
			lexer.TokenPrint, lexer.TokenReturn:
			return
		}
		c.advance()
	}
}

// --- emitters ---

func (c *Compiler) emitByte(b byte) {
	c.currentChunk().Write(b, c.previous.Line)
}

func (c *Compiler) emitOp(op bytecode.Opcode) {
	c.emitByte(byte(op))
}

func (c *Compiler) emitOps(op1, op2 bytecode.Opcode) {
	c.emitOp(op1)
	c.emitOp(op2)
}

func (c *Compiler) emitReturn() {
	c.emitOp(bytecode.OpNil)
	c.emitOp(bytecode.OpReturn)
}

func (c *Compiler) makeConstant(v bytecode.Value) byte {
	idx := c.currentChunk().AddConstant(v)
	if idx >= bytecode.MaxConstants {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v bytecode.Value) {
	c.emitOp(bytecode.OpConstant)
	c.emitByte(c.makeConstant(v))
}

// emitJump emits a forward jump with a placeholder offset and returns
// the offset of the placeholder for later patching.
func (c *Compiler) emitJump(op bytecode.Opcode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.currentChunk().Code) - 2
}

// patchJump back-fills a placeholder emitted by emitJump with the
// distance from the byte after the operand to the current end of code.
func (c *Compiler) patchJump(offset int) {
	chunk := c.currentChunk()
	jump := len(chunk.Code) - offset - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
	}
	chunk.Code[offset] = byte(jump >> 8)
	chunk.Code[offset+1] = byte(jump)
}

// emitLoop emits a backward jump to loopStart.
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(bytecode.OpLoop)
	offset := len(c.currentChunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error("Loop body too large.")
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

// --- declarations ---

func (c *Compiler) declaration() {
	switch {
	case c.match(lexer.TokenVar):
		c.varDeclaration()
	case c.match(lexer.TokenFun):
		c.funDeclaration()
	case c.match(lexer.TokenStruct):
		c.structDeclaration()
	default:
		c.statement()
	}

	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	if c.match(lexer.TokenEqual) {
		c.expression()
	} else {
		c.emitOp(bytecode.OpNil)
	}
	c.consume(lexer.TokenSemicolon, "Expect ';' after variable declaration.")

	c.defineVariable(global)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(TypeFunction)
	c.defineVariable(global)
}

// function compiles a function body on a fresh frame. The finished
// function object lands in the enclosing chunk's constant pool.
func (c *Compiler) function(ftype FunctionType) {
	c.pushScope(ftype, c.pool.Intern(c.previous.Literal))
	c.beginScope()

	c.consume(lexer.TokenLeftParen, "Expect '(' after function name.")
	if !c.check(lexer.TokenRightParen) {
		for {
			c.cur().function.Arity++
			if c.cur().function.Arity > 255 {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			param := c.parseVariable("Expect parameter name.")
			c.defineVariable(param)
			if !c.match(lexer.TokenComma) {
				break
			}
		}
	}
	c.consume(lexer.TokenRightParen, "Expect ')' after parameters.")
	c.consume(lexer.TokenLeftBrace, "Expect '{' before function body.")
	c.block()

	fn := c.endCompiler()
	c.emitConstant(bytecode.ObjValue(fn))
}

// structDeclaration emits STRUCT followed by one STRUCT_ARG per field.
// The VM defines the struct as a global when it executes STRUCT; the
// trailing POP clears the construction slot off the stack.
func (c *Compiler) structDeclaration() {
	c.consume(lexer.TokenIdentifier, "Expect struct name.")
	nameConstant := c.identifierConstant(c.previous)

	c.emitOp(bytecode.OpStruct)
	c.emitByte(nameConstant)

	c.consume(lexer.TokenLeftBrace, "Expect '{' before struct body.")
	for !c.check(lexer.TokenRightBrace) && !c.check(lexer.TokenEOF) {
		c.consume(lexer.TokenIdentifier, "Expect field name.")
		c.emitOp(bytecode.OpStructArg)
		c.emitByte(c.identifierConstant(c.previous))
		if !c.match(lexer.TokenComma) {
			break
		}
	}
	c.consume(lexer.TokenRightBrace, "Expect '}' after struct body.")

	c.emitOp(bytecode.OpPop)
}

// parseVariable consumes a variable name. In a local scope the name is
// declared as a local and no constant is needed; at global scope the
// name goes into the constant pool.
func (c *Compiler) parseVariable(message string) byte {
	c.consume(lexer.TokenIdentifier, message)

	c.declareVariable()
	if c.cur().scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

func (c *Compiler) identifierConstant(tok lexer.Token) byte {
	return c.makeConstant(bytecode.ObjValue(c.pool.Intern(tok.Literal)))
}

// declareVariable records a local in the current scope. Globals are late
// bound and need no declaration.
func (c *Compiler) declareVariable() {
	scope := c.cur()
	if scope.scopeDepth == 0 {
		return
	}

	name := c.previous
	for i := len(scope.locals) - 1; i >= 0; i-- {
		l := scope.locals[i]
		if l.depth != -1 && l.depth < scope.scopeDepth {
			break
		}
		if l.name.Literal == name.Literal {
			c.error("Already a variable with this name in this scope.")
		}
	}

	c.addLocal(name)
}

func (c *Compiler) addLocal(name lexer.Token) {
	scope := c.cur()
	if len(scope.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	// depth -1 marks the local as declared but not yet initialized
	scope.locals = append(scope.locals, local{name: name, depth: -1})
}

func (c *Compiler) markInitialized() {
	scope := c.cur()
	if scope.scopeDepth == 0 {
		return
	}
	scope.locals[len(scope.locals)-1].depth = scope.scopeDepth
}

func (c *Compiler) defineVariable(global byte) {
	if c.cur().scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOp(bytecode.OpDefineGlobal)
	c.emitByte(global)
}

// resolveLocal finds the innermost local with the given name, or -1 if
// the name must be a global.
func (c *Compiler) resolveLocal(name lexer.Token) int {
	scope := c.cur()
	for i := len(scope.locals) - 1; i >= 0; i-- {
		l := scope.locals[i]
		if l.name.Literal == name.Literal {
			if l.depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// --- statements ---

func (c *Compiler) statement() {
	switch {
	case c.match(lexer.TokenPrint):
		c.printStatement()
	case c.match(lexer.TokenIf):
		c.ifStatement()
	case c.match(lexer.TokenWhile):
		c.whileStatement()
	case c.match(lexer.TokenFor):
		c.forStatement()
	case c.match(lexer.TokenReturn):
		c.returnStatement()
	case c.match(lexer.TokenLeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(lexer.TokenSemicolon, "Expect ';' after value.")
	c.emitOp(bytecode.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(lexer.TokenSemicolon, "Expect ';' after expression.")
	c.emitOp(bytecode.OpPop)
}

func (c *Compiler) ifStatement() {
	c.consume(lexer.TokenLeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(lexer.TokenRightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.statement()
	elseJump := c.emitJump(bytecode.OpJump)

	c.patchJump(thenJump)
	c.emitOp(bytecode.OpPop)
	if c.match(lexer.TokenElse) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.currentChunk().Code)
	c.consume(lexer.TokenLeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(lexer.TokenRightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(bytecode.OpPop)
}

// forStatement compiles C-style for. The increment clause textually
// precedes the body but runs after it, so the compiler jumps over the
// increment into the body, and the body loops back to the increment,
// which then loops back to the condition.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(lexer.TokenLeftParen, "Expect '(' after 'for'.")

	switch {
	case c.match(lexer.TokenSemicolon):
		// no initializer
	case c.match(lexer.TokenVar):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.currentChunk().Code)
	exitJump := -1
	if !c.match(lexer.TokenSemicolon) {
		c.expression()
		c.consume(lexer.TokenSemicolon, "Expect ';' after loop condition.")

		exitJump = c.emitJump(bytecode.OpJumpIfFalse)
		c.emitOp(bytecode.OpPop)
	}

	if !c.match(lexer.TokenRightParen) {
		bodyJump := c.emitJump(bytecode.OpJump)
		incrementStart := len(c.currentChunk().Code)
		c.expression()
		c.emitOp(bytecode.OpPop)
		c.consume(lexer.TokenRightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(bytecode.OpPop)
	}
	c.endScope()
}

func (c *Compiler) returnStatement() {
	if c.cur().ftype == TypeScript {
		c.error("Can't return from top-level code.")
	}

	if c.match(lexer.TokenSemicolon) {
		c.emitReturn()
		return
	}
	c.expression()
	c.consume(lexer.TokenSemicolon, "Expect ';' after return value.")
	c.emitOp(bytecode.OpReturn)
}

func (c *Compiler) block() {
	for !c.check(lexer.TokenRightBrace) && !c.check(lexer.TokenEOF) {
		c.declaration()
	}
	c.consume(lexer.TokenRightBrace, "Expect '}' after block.")
}

func (c *Compiler) beginScope() {
	c.cur().scopeDepth++
}

// endScope pops the scope's locals off the runtime stack.
func (c *Compiler) endScope() {
	scope := c.cur()
	scope.scopeDepth--

	for len(scope.locals) > 0 && scope.locals[len(scope.locals)-1].depth > scope.scopeDepth {
		c.emitOp(bytecode.OpPop)
		scope.locals = scope.locals[:len(scope.locals)-1]
	}
}

// --- expressions ---

func (c *Compiler) expression() {
	c.parsePrecedence(precAssignment)
}

// parsePrecedence parses any expression at the given precedence or
// higher. Assignment targets are only legal while parsing at assignment
// precedence, which canAssign threads down into the rule functions.
func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	prefix := getRule(c.previous.Type).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= precAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.current.Type).prec {
		c.advance()
		infix := getRule(c.previous.Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(lexer.TokenEqual) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(lexer.TokenRightParen, "Expect ')' after expression.")
}

func (c *Compiler) number(canAssign bool) {
	value, _ := strconv.ParseFloat(c.previous.Literal, 64)
	c.emitConstant(bytecode.NumberValue(value))
}

func (c *Compiler) stringLiteral(canAssign bool) {
	// trim the surrounding quotes
	chars := c.previous.Literal[1 : len(c.previous.Literal)-1]
	c.emitConstant(bytecode.ObjValue(c.pool.Intern(chars)))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Type {
	case lexer.TokenFalse:
		c.emitOp(bytecode.OpFalse)
	case lexer.TokenTrue:
		c.emitOp(bytecode.OpTrue)
	case lexer.TokenNil:
		c.emitOp(bytecode.OpNil)
	}
}

func (c *Compiler) unary(canAssign bool) {
	op := c.previous.Type
	c.parsePrecedence(precUnary)

	switch op {
	case lexer.TokenMinus:
		c.emitOp(bytecode.OpNegate)
	case lexer.TokenBang:
		c.emitOp(bytecode.OpNot)
	}
}

func (c *Compiler) binary(canAssign bool) {
	op := c.previous.Type
	rule := getRule(op)
	c.parsePrecedence(rule.prec + 1)

	switch op {
	case lexer.TokenPlus:
		c.emitOp(bytecode.OpAdd)
	case lexer.TokenMinus:
		c.emitOp(bytecode.OpSubtract)
	case lexer.TokenStar:
		c.emitOp(bytecode.OpMultiply)
	case lexer.TokenSlash:
		c.emitOp(bytecode.OpDivide)
	case lexer.TokenEqualEqual:
		c.emitOp(bytecode.OpEqual)
	case lexer.TokenBangEqual:
		c.emitOps(bytecode.OpEqual, bytecode.OpNot)
	case lexer.TokenGreater:
		c.emitOp(bytecode.OpGreater)
	case lexer.TokenGreaterEqual:
		c.emitOps(bytecode.OpLess, bytecode.OpNot)
	case lexer.TokenLess:
		c.emitOp(bytecode.OpLess)
	case lexer.TokenLessEqual:
		c.emitOps(bytecode.OpGreater, bytecode.OpNot)
	}
}

// and short-circuits: if the left operand is falsey it stays on the
// stack as the result and the right operand is skipped.
func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(bytecode.OpJumpIfFalse)

	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(precAnd)

	c.patchJump(endJump)
}

// or short-circuits: if the left operand is truthy it stays on the
// stack as the result and the right operand is skipped.
func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(bytecode.OpJumpIfFalse)
	endJump := c.emitJump(bytecode.OpJump)

	c.patchJump(elseJump)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(precOr)

	c.patchJump(endJump)
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

// namedVariable resolves a name against the current locals first, then
// falls back to a late-bound global.
func (c *Compiler) namedVariable(name lexer.Token, canAssign bool) {
	var getOp, setOp bytecode.Opcode
	arg := c.resolveLocal(name)
	if arg != -1 {
		getOp = bytecode.OpGetLocal
		setOp = bytecode.OpSetLocal
	} else {
		arg = int(c.identifierConstant(name))
		getOp = bytecode.OpGetGlobal
		setOp = bytecode.OpSetGlobal
	}

	if canAssign && c.match(lexer.TokenEqual) {
		c.expression()
		c.emitOp(setOp)
		c.emitByte(byte(arg))
	} else {
		c.emitOp(getOp)
		c.emitByte(byte(arg))
	}
}

func (c *Compiler) call(canAssign bool) {
	argCount := c.argumentList()
	c.emitOp(bytecode.OpCall)
	c.emitByte(argCount)
}

func (c *Compiler) argumentList() byte {
	var count int
	if !c.check(lexer.TokenRightParen) {
		for {
			c.expression()
			if count == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			count++
			if !c.match(lexer.TokenComma) {
				break
			}
		}
	}
	c.consume(lexer.TokenRightParen, "Expect ')' after arguments.")
	return byte(count)
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(lexer.TokenIdentifier, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous)

	if canAssign && c.match(lexer.TokenEqual) {
		c.expression()
		c.emitOp(bytecode.OpSetProperty)
		c.emitByte(name)
	} else {
		c.emitOp(bytecode.OpGetProperty)
		c.emitByte(name)
	}
}

// index compiles the container[key] form. Indexing is read-only; an
// assignment here falls through to the "Invalid assignment target."
// report in parsePrecedence.
func (c *Compiler) index(canAssign bool) {
	c.expression()
	c.consume(lexer.TokenRightBracket, "Expect ']' after index.")
	c.emitOp(bytecode.OpIndex)
}

func (c *Compiler) arrayLiteral(canAssign bool) {
	var count int
	for !c.check(lexer.TokenRightBracket) && !c.check(lexer.TokenEOF) {
		c.expression()
		if count == 255 {
			c.error("Can't have more than 255 elements in an array literal.")
		}
		count++
		if !c.match(lexer.TokenComma) {
			break
		}
	}
	c.consume(lexer.TokenRightBracket, "Expect ']' after array elements.")
	c.emitOp(bytecode.OpArray)
	c.emitByte(byte(count))
}

// mapLiteral compiles { key -> value, ... }. The operand counts pushed
// values, so it is twice the number of entries.
func (c *Compiler) mapLiteral(canAssign bool) {
	var count int
	for !c.check(lexer.TokenRightBrace) && !c.check(lexer.TokenEOF) {
		c.expression()
		c.consume(lexer.TokenArrow, "Expect '->' between key and value.")
		c.expression()
		if count == 254 {
			c.error("Can't have more than 127 entries in a map literal.")
		}
		count += 2
		if !c.match(lexer.TokenComma) {
			break
		}
	}
	c.consume(lexer.TokenRightBrace, "Expect '}' after map entries.")
	c.emitOp(bytecode.OpMap)
	c.emitByte(byte(count))
}
