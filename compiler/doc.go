/*

Process of compilation

Source Text ->
	split ->
Programs, one per '$' ->
	lex ->
Tokens (token) ->
	parse ->
Concrete Syntax Tree (ast) ->
	analyze ->
Abstract Syntax Tree (ast) + Symbol Table + Literals ->
	back ->
Memory Image (asm.Image) ->
	run ->
Output (vm)

Each stage reports diagnostics (diag).
A stage with errors stops the program, warnings never do.

*/
package compiler
