// Package lang implements the calculator's expression language.
//
// # Grammar
//
// Input is split into grapheme clusters and parsed by backtracking recursive
// descent. From loosest to tightest binding:
//
//	expr          := ws? functionChain ws?
//	functionChain := addsub (ws? ident ws? addsub)*
//	addsub        := muldiv (ws? ('+'|'-') ws? muldiv)*
//	muldiv        := exp (ws? ('*'|'/'|'%') ws? exp)*
//	exp           := base (ws? '^' ws? exp)?
//	base          := '-'* (number | access | func | group) '!'*
//	func          := ident (ws? '(' ws? (expr (',' expr)*)? ws? ')')?
//	access        := '$' 'm'? digit+ (':' expr)?
//	group         := '(' expr ')' | '[' expr ']'
//	number        := digit+ ('.' digit+)?
//	ident         := letter (letter | '_' | digit)*
//
// A function reference without an argument list is only valid for the
// constants PI and E. Named functions may also be used infix, binding looser
// than every operator: "7 mod 3 add 1" is ADD(MOD(7, 3), 1).
//
// # History and memory
//
// Every committed result that differs from the previous one is pushed onto a
// history stack, read with $N where $0 is the most recent result. A bank of
// [MemorySize] slots is read with $mN and written with $mN:expr, which
// yields the stored value.
//
// # Usage
//
//	calc := lang.New()
//	v, state, err := calc.Evaluate(ctx, "$m0:2^10")
//	v, state, err = calc.EvaluateWithOptions(ctx, "$m0 / 2",
//		lang.EvaluateOptions{Preview: true})
//
// Preview evaluation returns the would-be state without changing history or
// memory.
//
// # Rendering
//
// [Expr.String] renders the canonical form used in diagnostics: operators
// spaced, and every operand that is not a number, function call or group
// enclosed in square brackets.
//
//	0 % 1 ^ 2 / 3  =>  0 % [1 ^ 2] / 3
package lang
