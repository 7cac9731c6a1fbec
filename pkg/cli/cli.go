// Package cli はコマンドライン引数と環境変数から設定を組み立てる。
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zurustar/parlc/pkg/logger"
	"github.com/zurustar/parlc/pkg/script"
)

// IRExtension はコンパイル済みIRファイルの拡張子
const IRExtension = ".parir"

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	SourcePath string        // 入力ファイル（.parl ソースまたは .parir）
	IRInput    bool          // 入力が .parir の場合 true
	OutputPath string        // IRの出力先（空なら標準出力）
	Run        bool          // コンパイル後にVMで実行する
	Headless   bool          // ヘッドレスモード（ウィンドウなし）
	Timeout    time.Duration // タイムアウト時間（0は無制限）
	LogLevel   string        // ログレベル（debug, info, warn, error）
	Encoding   string        // ソースの文字コード
	CheckOnly  bool          // 型検査のみ
	Width      int           // 表示幅（パッドのピクセル数）
	Height     int           // 表示高さ
	Scale      int           // ウィンドウの拡大率
	Seed       uint64        // irnd の乱数シード（0は時刻から）
	NoDelay    bool          // delay 命令を無視する
	ShowHelp   bool          // ヘルプ表示フラグ
}

// boolFlags は値を取らないフラグ（並べ替え時に次の引数を消費しない）
var boolFlags = map[string]bool{
	"h": true, "help": true,
	"run": true, "headless": true, "check": true, "no-delay": true,
}

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("parlc", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{}

	var timeoutSec int
	fs.StringVar(&config.OutputPath, "output", "", "IRの出力先")
	fs.StringVar(&config.OutputPath, "o", "", "IRの出力先（短縮形）")
	fs.BoolVar(&config.Run, "run", false, "VMで実行")
	fs.BoolVar(&config.Headless, "headless", false, "ヘッドレスモード")
	fs.IntVar(&timeoutSec, "timeout", 0, "タイムアウト時間（秒）")
	fs.IntVar(&timeoutSec, "t", 0, "タイムアウト時間（秒）（短縮形）")
	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.StringVar(&config.Encoding, "encoding", "", "ソースの文字コード")
	fs.BoolVar(&config.CheckOnly, "check", false, "型検査のみ")
	fs.IntVar(&config.Width, "width", 36, "表示幅")
	fs.IntVar(&config.Height, "height", 36, "表示高さ")
	fs.IntVar(&config.Scale, "scale", 12, "ウィンドウの拡大率")
	fs.Uint64Var(&config.Seed, "seed", 0, "乱数シード")
	fs.BoolVar(&config.NoDelay, "no-delay", false, "delay を無視")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}
	if config.ShowHelp {
		return config, nil
	}

	// 環境変数からの設定（コマンドラインフラグが優先）
	if !config.Headless {
		if headlessEnv := os.Getenv("HEADLESS"); headlessEnv != "" {
			config.Headless = headlessEnv == "1" || strings.ToLower(headlessEnv) == "true"
		}
	}

	// 環境変数からタイムアウトを取得（コマンドラインフラグが優先）
	if timeoutSec == 0 {
		if timeoutEnv := os.Getenv("TIMEOUT"); timeoutEnv != "" {
			if t, err := strconv.Atoi(timeoutEnv); err == nil && t > 0 {
				timeoutSec = t
			}
		}
	}

	// 環境変数からログレベルを取得（コマンドラインフラグが優先）
	if config.LogLevel == "info" {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}

	// 環境変数から文字コードを取得（コマンドラインフラグが優先）
	if config.Encoding == "" {
		config.Encoding = os.Getenv("PARL_ENCODING")
	}
	if config.Encoding == "" {
		config.Encoding = script.EncodingAuto
	}

	// タイムアウトの検証
	if timeoutSec < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
	}
	config.Timeout = time.Duration(timeoutSec) * time.Second

	// ログレベルの検証
	if _, err := logger.ParseLevel(config.LogLevel); err != nil {
		return nil, fmt.Errorf("%w (must be debug, info, warn, or error)", err)
	}

	// 表示サイズの検証
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("display size must be positive, got %dx%d", config.Width, config.Height)
	}
	if config.Scale < 1 {
		return nil, fmt.Errorf("scale must be at least 1, got %d", config.Scale)
	}

	// 位置引数（入力ファイル）
	if fs.NArg() == 0 {
		return nil, fmt.Errorf("no input file")
	}
	if fs.NArg() > 1 {
		return nil, fmt.Errorf("expected one input file, got %d", fs.NArg())
	}
	config.SourcePath = fs.Arg(0)
	config.IRInput = strings.HasSuffix(strings.ToLower(config.SourcePath), IRExtension)

	if config.CheckOnly && config.Run {
		return nil, fmt.Errorf("--check and --run cannot be combined")
	}
	if config.CheckOnly && config.IRInput {
		return nil, fmt.Errorf("--check needs a %s source, got %s", script.Extension, config.SourcePath)
	}
	// .parir は実行するために読み込む
	if config.IRInput {
		config.Run = true
	}

	return config, nil
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)

			name := strings.TrimLeft(arg, "-")
			// -o=out.ir の形式、またはブール型フラグは次の引数を消費しない
			if strings.Contains(name, "=") || boolFlags[name] {
				continue
			}
			if i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			// 位置引数
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を後ろに配置
	return append(flags, positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `parlc - PArL compiler and PArIR runner

Usage:
  parlc [options] <file.parl | file.parir>

Arguments:
  file.parl     PArLソース。コンパイルしてIRを出力する
  file.parir    コンパイル済みIR。そのままVMで実行する

Options:
  -o, --output <file>         IRの出力先（デフォルト: 標準出力）
  --run                       コンパイル後にVMで実行
  --headless                  ヘッドレスモード（ウィンドウなし）
  -t, --timeout <seconds>     指定秒数後にVMを停止（デフォルト: 無制限）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  --encoding <name>           ソースの文字コード（デフォルト: auto = BOM判定、なければUTF-8）
  --check                     型検査のみ行う
  --width, --height <px>      パッドのサイズ（デフォルト: 36x36）
  --scale <n>                 ウィンドウの拡大率（デフォルト: 12）
  --seed <n>                  irnd の乱数シード（0は時刻から）
  --no-delay                  delay 命令を無視
  -h, --help                  このヘルプを表示

Environment Variables:
  HEADLESS=1                  ヘッドレスモードを有効化
  TIMEOUT=<seconds>           タイムアウト時間（秒）
  LOG_LEVEL=<level>           ログレベル
  PARL_ENCODING=<name>        ソースの文字コード

Examples:
  parlc prog.parl                     IRを標準出力に表示
  parlc prog.parl -o prog.parir       IRをファイルに保存
  parlc --run prog.parl               ウィンドウで実行
  parlc --run --headless prog.parl    printの出力のみ
  parlc prog.parir --timeout 10       IRを10秒間実行
  parlc --encoding shift_jis old.parl Shift_JISのソースをコンパイル
`)
}
