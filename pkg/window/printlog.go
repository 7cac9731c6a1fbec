package window

import "sync"

// PrintLog は print 出力の直近 n 行を保持する。VM のゴルーチンから
// 書き込まれ、描画側から読まれる。
type PrintLog struct {
	mu    sync.Mutex
	limit int
	lines []string
}

// NewPrintLog 保持行数を指定して作成
func NewPrintLog(limit int) *PrintLog {
	return &PrintLog{limit: max(limit, 1)}
}

// Add 1行追加し、古い行を捨てる
func (p *PrintLog) Add(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, line)
	if len(p.lines) > p.limit {
		p.lines = append([]string(nil), p.lines[len(p.lines)-p.limit:]...)
	}
}

// Lines 保持している行のコピーを返す（古い順）
func (p *PrintLog) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.lines...)
}
