// Package compiler provides the compilation pipeline for PArL programs.
// It transforms source code into PArIR through four phases:
// 1. Lexer: Tokenization
// 2. Parser: AST generation
// 3. Checker: Static type checking
// 4. Codegen: PArIR generation
//
// Every phase fails fast. The first error stops the pipeline and is
// returned as a *CompileError; no partial program is ever returned.
package compiler

import (
	"fmt"
	"log/slog"

	"github.com/zurustar/parlc/pkg/compiler/ast"
	"github.com/zurustar/parlc/pkg/compiler/checker"
	"github.com/zurustar/parlc/pkg/compiler/codegen"
	"github.com/zurustar/parlc/pkg/compiler/diag"
	"github.com/zurustar/parlc/pkg/compiler/lexer"
	"github.com/zurustar/parlc/pkg/compiler/parser"
	"github.com/zurustar/parlc/pkg/ir"
	"github.com/zurustar/parlc/pkg/logger"
	"github.com/zurustar/parlc/pkg/script"
)

// CompileOptions provides configuration options for compilation.
type CompileOptions struct {
	// SkipCheck runs the code generator without the checker pass. The
	// generator re-derives every type itself, so errors are still caught,
	// but they are reported by the codegen phase.
	SkipCheck bool

	// Logger receives phase transitions at debug level.
	// Defaults to logger.GetLogger().
	Logger *slog.Logger
}

func (o CompileOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logger.GetLogger()
}

// Compile compiles source code to PArIR.
//
// Parameters:
//   - source: UTF-8 encoded source code string
//
// Returns:
//   - *ir.Program: The generated program
//   - error: A *CompileError if any phase failed
func Compile(source string) (*ir.Program, error) {
	return CompileWithOptions(source, CompileOptions{})
}

// CompileWithOptions compiles source code with additional options.
func CompileWithOptions(source string, opts CompileOptions) (*ir.Program, error) {
	log := opts.logger()

	program, err := parse(source, log)
	if err != nil {
		return nil, err
	}

	if !opts.SkipCheck {
		if _, err := checker.Check(program); err != nil {
			return nil, newCompileError(PhaseChecker, err, source)
		}
		log.Debug("Type check passed")
	}

	prog, err := codegen.Generate(program)
	if err != nil {
		return nil, newCompileError(PhaseCodegen, err, source)
	}
	log.Debug("Generated IR", "instructions", prog.Len())

	return prog, nil
}

// Check runs the lexer, parser and checker phases only.
func Check(source string) error {
	program, err := parse(source, logger.GetLogger())
	if err != nil {
		return err
	}
	if _, err := checker.Check(program); err != nil {
		return newCompileError(PhaseChecker, err, source)
	}
	return nil
}

// parse runs the lexer and parser phases.
func parse(source string, log *slog.Logger) (*ast.Program, error) {
	// Phase 1: scan once up front so that malformed tokens are reported
	// by the lexer phase rather than as parse errors.
	tokens := lexer.New(source).Tokenize()
	if last := tokens[len(tokens)-1]; last.Type == lexer.TOKEN_ILLEGAL {
		pos := ast.Position{Line: last.Line, Column: last.Column}
		err := diag.New(diag.Syntax, pos, "illegal token %q", last.Literal)
		return nil, newCompileError(PhaseLexer, err, source)
	}
	log.Debug("Scanned source", "tokens", len(tokens))

	// Phase 2: syntax analysis
	program, err := parser.New(lexer.New(source)).ParseProgram()
	if err != nil {
		return nil, newCompileError(PhaseParser, err, source)
	}
	log.Debug("Parsed program", "statements", len(program.Statements))

	return program, nil
}

// CompileFile compiles a source file.
// It reads the file, converts it from encoding to UTF-8 and compiles the content.
//
// Parameters:
//   - path: Path to the .parl source file
//   - encoding: Source encoding label, or "auto"
//
// Returns:
//   - *ir.Program: The generated program
//   - error: A read error, or a *CompileError wrapped with the file name
func CompileFile(path, encoding string) (*ir.Program, error) {
	s, err := script.LoadFile(path, encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	prog, err := Compile(s.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.FileName, err)
	}
	return prog, nil
}

// CompileResult represents the compilation result for a single script.
type CompileResult struct {
	// FileName is the name of the script file
	FileName string
	// Program is the generated program (nil if compilation failed)
	Program *ir.Program
	// Err is the compilation error (nil if successful)
	Err error
}

// CompileScripts compiles multiple scripts loaded by script.Loader.
// Each script is compiled independently and a result is returned for
// every script, whether or not it compiled.
//
// Parameters:
//   - scripts: Slice of Script structs from script.Loader (already UTF-8 converted)
//   - opts: Compilation options applied to every script
//
// Returns:
//   - []CompileResult: Compilation results in input order
func CompileScripts(scripts []script.Script, opts CompileOptions) []CompileResult {
	results := make([]CompileResult, 0, len(scripts))

	for _, s := range scripts {
		prog, err := CompileWithOptions(s.Content, opts)
		if err != nil {
			err = fmt.Errorf("%s: %w", s.FileName, err)
		}
		results = append(results, CompileResult{
			FileName: s.FileName,
			Program:  prog,
			Err:      err,
		})
	}

	return results
}

// CompileDirectory loads and compiles every .parl file under dirPath.
//
// Returns:
//   - []CompileResult: One result per script found
//   - error: An error if the directory cannot be read or holds no scripts
func CompileDirectory(dirPath string, opts CompileOptions) ([]CompileResult, error) {
	scripts, err := script.NewLoader(dirPath).LoadAllScripts()
	if err != nil {
		return nil, fmt.Errorf("failed to load scripts from %s: %w", dirPath, err)
	}
	return CompileScripts(scripts, opts), nil
}
