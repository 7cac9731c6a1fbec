// Package app はコマンドラインからコンパイルと実行までをまとめる。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/zurustar/parlc/pkg/cli"
	"github.com/zurustar/parlc/pkg/compiler"
	"github.com/zurustar/parlc/pkg/ir"
	"github.com/zurustar/parlc/pkg/logger"
	"github.com/zurustar/parlc/pkg/script"
	"github.com/zurustar/parlc/pkg/vm"
	"github.com/zurustar/parlc/pkg/window"
)

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config  *cli.Config
	log     *slog.Logger
	stdout  io.Writer
	program *ir.Program // コンパイル済みIR
}

// New Applicationを作成（IRとprintの出力先を指定する）
func New(stdout io.Writer) *Application {
	return &Application{
		stdout: stdout,
	}
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp(app.stdout)
		return nil
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.log.Debug("Application started", "source", app.config.SourcePath)

	// 3. 型検査のみ
	if app.config.CheckOnly {
		if err := app.check(); err != nil {
			return err
		}
		app.log.Info("Type check passed", "file", app.config.SourcePath)
		return nil
	}

	// 4. IRの読み込みまたはコンパイル
	program, err := app.loadProgram()
	if err != nil {
		return err
	}
	app.program = program

	// 5. IRの出力
	if err := app.writeIR(); err != nil {
		return fmt.Errorf("failed to write IR: %w", err)
	}

	// 6. VMで実行
	if app.config.Run {
		if err := app.runProgram(); err != nil {
			return fmt.Errorf("failed to run program: %w", err)
		}
	}

	app.log.Debug("Application terminated normally")
	return nil
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化
func (app *Application) initLogger() error {
	if err := logger.InitLogger(app.config.LogLevel); err != nil {
		return err
	}
	app.log = logger.GetLogger()
	return nil
}

// check ソースを読み込んで型検査する
func (app *Application) check() error {
	s, err := script.LoadFile(app.config.SourcePath, app.config.Encoding)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", app.config.SourcePath, err)
	}
	if err := compiler.Check(s.Content); err != nil {
		return fmt.Errorf("%s: %w", s.FileName, err)
	}
	return nil
}

// loadProgram .parir はそのまま読み込み、それ以外はコンパイルする
func (app *Application) loadProgram() (*ir.Program, error) {
	if app.config.IRInput {
		data, err := os.ReadFile(app.config.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read IR: %w", err)
		}
		program, err := ir.Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", app.config.SourcePath, err)
		}
		app.log.Info("IR loaded", "file", app.config.SourcePath, "instructions", program.Len())
		return program, nil
	}

	program, err := compiler.CompileFile(app.config.SourcePath, app.config.Encoding)
	if err != nil {
		return nil, err
	}
	app.log.Info("Compiled successfully", "file", app.config.SourcePath, "instructions", program.Len())
	return program, nil
}

// writeIR IRを出力する
// -o 指定時はファイルへ。未指定時は実行しない場合のみ標準出力へ（print出力と混ざらないように）
func (app *Application) writeIR() error {
	if app.config.IRInput {
		return nil
	}
	if app.config.OutputPath != "" {
		if err := os.WriteFile(app.config.OutputPath, []byte(app.program.String()), 0o644); err != nil {
			return err
		}
		app.log.Info("IR written", "path", app.config.OutputPath)
		return nil
	}
	if app.config.Run {
		return nil
	}
	_, err := io.WriteString(app.stdout, app.program.String())
	return err
}

// vmOptions 設定からVMのオプションを組み立てる
func (app *Application) vmOptions(display vm.Display) []vm.Option {
	return []vm.Option{
		vm.WithDisplay(display),
		vm.WithOutput(app.stdout),
		vm.WithSeed(app.config.Seed),
		vm.WithNoDelay(app.config.NoDelay),
		vm.WithLogger(app.log),
	}
}

// runProgram ヘッドレスまたはウィンドウでVMを実行
func (app *Application) runProgram() error {
	fb := vm.NewFramebuffer(app.config.Width, app.config.Height)

	// ヘッドレスモードの場合
	if app.config.Headless {
		app.log.Info("Running headless", "timeout", app.config.Timeout)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		opts := append(app.vmOptions(fb), vm.WithTimeout(app.config.Timeout))
		return vm.New(app.program, opts...).Run(ctx)
	}

	// GUIモードの場合はウィンドウを表示
	var game *window.Game
	opts := append(app.vmOptions(fb), vm.WithPrintListener(func(line string) {
		game.Prints().Add(line)
	}))
	machine := vm.New(app.program, opts...)
	game = window.NewGame(machine, fb, app.config.Timeout)
	game.SetScale(app.config.Scale)

	title := "parlc - " + filepath.Base(app.config.SourcePath)
	return window.Run(game, title)
}
