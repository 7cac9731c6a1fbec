// Package window は VM のフレームバッファを Ebitengine のウィンドウに表示する。
package window

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/zurustar/parlc/pkg/logger"
	"golang.org/x/image/font/basicfont"
)

const (
	// DefaultScale はパッド1ピクセルあたりの画面ピクセル数
	DefaultScale = 12
	// DefaultLinger は VM 終了後にウィンドウを開いておく時間
	DefaultLinger = 2 * time.Second

	overlayLines  = 4
	overlayLineH  = 16
	overlayMargin = 4
)

var (
	// 背景色 #0087C8
	backgroundColor = color.RGBA{0x00, 0x87, 0xC8, 0xFF}
	// オーバーレイの背景色
	overlayColor = color.RGBA{0x10, 0x10, 0x10, 0xFF}
	// テキスト色（白）
	textColor = color.White
	// エラー表示の色（黄色）
	errorTextColor = color.RGBA{0xFF, 0xFF, 0x00, 0xFF}
	// デフォルトフォント
	defaultFace = text.NewGoXFace(basicfont.Face7x13)
)

// Runner はウィンドウが起動・停止する VM
type Runner interface {
	Run(ctx context.Context) error
	Stop()
}

// Source はウィンドウに転送するフレームバッファ
type Source interface {
	Width() int
	Height() int
	Pixels() []byte
}

// Game はEbitengineのゲームインターフェースを実装する
type Game struct {
	runner    Runner
	source    Source
	timeout   time.Duration // タイムアウト時間
	startTime time.Time     // 開始時刻
	scale     int
	linger    time.Duration

	prints *PrintLog // print 出力の直近の行

	frame   *ebiten.Image // フレームバッファのアップロード先
	overlay *ebiten.Image // オーバーレイの背景

	// VM startup control
	vmStarted bool
	vmDone    bool
	doneAt    time.Time
	vmErr     error
	vmErrCh   chan error // VMのエラーチャネル
	ctx       context.Context
	cancel    context.CancelFunc

	mu sync.RWMutex
}

// NewGame Gameを作成
func NewGame(runner Runner, source Source, timeout time.Duration) *Game {
	ctx, cancel := context.WithCancel(context.Background())
	return &Game{
		runner:    runner,
		source:    source,
		timeout:   timeout,
		startTime: time.Now(),
		scale:     DefaultScale,
		linger:    DefaultLinger,
		prints:    NewPrintLog(overlayLines),
		vmErrCh:   make(chan error, 1),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SetScale 拡大率を設定（1未満は1として扱う）
func (g *Game) SetScale(scale int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = max(scale, 1)
}

// SetLinger VM終了後にウィンドウを閉じるまでの時間を設定
func (g *Game) SetLinger(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.linger = d
}

// Prints print 出力を受け取るログを返す（vm.WithPrintListener に渡す）
func (g *Game) Prints() *PrintLog {
	return g.prints
}

// Err VM が返したエラーを取得
func (g *Game) Err() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.vmErr
}

// Update ゲームロジックの更新（Ebitengineが毎フレーム呼び出す）
func (g *Game) Update() error {
	// タイムアウトチェック
	if g.timeout > 0 && time.Since(g.startTime) >= g.timeout {
		logger.GetLogger().Info("Window timed out", "timeout", g.timeout)
		g.stopVM()
		return ebiten.Termination
	}

	// VMの開始（最初のUpdate()呼び出し時に実行）
	// これにより、Ebitengineが完全に初期化された後にVMが開始される
	g.mu.Lock()
	if !g.vmStarted && g.runner != nil {
		g.vmStarted = true
		go func(r Runner, ctx context.Context, ch chan<- error) {
			ch <- r.Run(ctx)
		}(g.runner, g.ctx, g.vmErrCh)
	}
	g.mu.Unlock()

	// Escキーで終了（1回だけ反応）
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.stopVM()
		return ebiten.Termination
	}

	return g.pollVM()
}

// pollVM VMの終了を確認し、余韻時間が過ぎたら終了する
func (g *Game) pollVM() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.vmDone {
		select {
		case err := <-g.vmErrCh:
			g.vmDone = true
			g.doneAt = time.Now()
			g.vmErr = err
			if err != nil {
				g.prints.Add("error: " + err.Error())
			}
		default:
			return nil
		}
	}

	if time.Since(g.doneAt) >= g.linger {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) stopVM() {
	g.cancel()
	if g.runner != nil {
		g.runner.Stop()
	}
}

// Draw 画面描画（Ebitengineが毎フレーム呼び出す）
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	g.drawFrame(screen)
	g.drawOverlay(screen)
}

// drawFrame フレームバッファを拡大して描画
func (g *Game) drawFrame(screen *ebiten.Image) {
	if g.source == nil {
		return
	}
	w, h := g.source.Width(), g.source.Height()
	if w <= 0 || h <= 0 {
		return
	}
	if g.frame == nil {
		g.frame = ebiten.NewImage(w, h)
	}
	g.frame.WritePixels(g.source.Pixels())

	g.mu.RLock()
	scale := g.scale
	g.mu.RUnlock()

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(g.frame, op)
}

// drawOverlay 直近の print 出力を画面下部に描画
func (g *Game) drawOverlay(screen *ebiten.Image) {
	_, padH := g.padSize()
	top := padH

	width := screen.Bounds().Dx()
	if g.overlay == nil || g.overlay.Bounds().Dx() != width {
		g.overlay = ebiten.NewImage(width, overlayLines*overlayLineH+overlayMargin*2)
		g.overlay.Fill(overlayColor)
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(0, float64(top))
	screen.DrawImage(g.overlay, op)

	g.mu.RLock()
	failed := g.vmErr != nil
	g.mu.RUnlock()

	lines := g.prints.Lines()
	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(overlayMargin, float64(top+overlayMargin+i*overlayLineH))
		if failed && i == len(lines)-1 {
			op.ColorScale.ScaleWithColor(errorTextColor)
		} else {
			op.ColorScale.ScaleWithColor(textColor)
		}
		text.Draw(screen, line, defaultFace, op)
	}
}

// padSize 拡大後のパッドのサイズ
func (g *Game) padSize() (int, int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.source == nil {
		return 0, 0
	}
	return g.source.Width() * g.scale, g.source.Height() * g.scale
}

// Layout 画面サイズを返す（パッド + print オーバーレイ）
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.padSize()
	return max(w, 1), h + overlayLines*overlayLineH + overlayMargin*2
}

// Run GUIモードでウィンドウを実行し、VMのエラーを返す
func Run(game *Game, title string) error {
	w, h := game.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	// ゲームを実行
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		game.stopVM()
		return fmt.Errorf("failed to run game: %w", err)
	}
	return game.Err()
}
