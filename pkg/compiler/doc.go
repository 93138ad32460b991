// Package compiler parses Brainfuck source into a tree and lowers the tree
// into a flat vm.Program.
//
// Pipeline: source → Parse → Ast → Generate → vm.Program
package compiler
