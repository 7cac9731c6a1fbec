// Package script はPArLソースファイルの読み込みと文字コード変換を行う
package script

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Extension はPArLソースファイルの拡張子
const Extension = ".parl"

// EncodingAuto はBOMから文字コードを判定し、BOMがなければUTF-8として扱う
const EncodingAuto = "auto"

// Script はソースファイルを表す
type Script struct {
	FileName string // ファイル名
	Content  string // UTF-8に変換された内容
	Size     int64  // ファイルサイズ
}

// Loader はソースファイルの読み込みを行う
type Loader struct {
	root     string
	encoding string
}

// Option はLoaderの設定
type Option func(*Loader)

// WithEncoding 文字コードを指定する（WHATWGのラベル名、または"auto"）
func WithEncoding(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.encoding = name
		}
	}
}

// NewLoader Loaderを作成
func NewLoader(root string, opts ...Option) *Loader {
	l := &Loader{
		root:     root,
		encoding: EncodingAuto,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadAllScripts root以下のすべての.parlファイルを読み込む
func (l *Loader) LoadAllScripts() ([]Script, error) {
	files, err := l.findScriptFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to find script files: %w", err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no script files found in %s", l.root)
	}

	var scripts []Script
	for _, path := range files {
		s, err := l.loadScript(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load script %s: %w", path, err)
		}
		scripts = append(scripts, *s)
	}

	return scripts, nil
}

// findScriptFiles .parlファイルを検出（case-insensitive、パス順）
func (l *Loader) findScriptFiles() ([]string, error) {
	var files []string

	err := filepath.Walk(l.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), Extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Load 単一のファイルを読み込む。相対パスはrootからの相対として扱う
func (l *Loader) Load(name string) (*Script, error) {
	path := name
	if !filepath.IsAbs(name) && l.root != "" {
		path = filepath.Join(l.root, name)
	}
	return l.loadScript(path)
}

// loadScript pathのファイルを読み込んでUTF-8に変換する
func (l *Loader) loadScript(path string) (*Script, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	content, err := Decode(data, l.encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to convert encoding: %w", err)
	}

	return &Script{
		FileName: filepath.Base(path),
		Content:  content,
		Size:     info.Size(),
	}, nil
}

// LoadFile 単一のファイルをrootなしで読み込む
func LoadFile(path, encodingName string) (*Script, error) {
	return NewLoader("", WithEncoding(encodingName)).Load(path)
}

// Decode dataを指定の文字コードからUTF-8に変換し、改行をLFに揃える
func Decode(data []byte, encodingName string) (string, error) {
	dec, err := decoder(encodingName)
	if err != nil {
		return "", err
	}

	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", encodingName, err)
	}

	out = bytes.ReplaceAll(out, []byte("\r\n"), []byte("\n"))
	return string(out), nil
}

// decoder 文字コード名からデコーダーを作成
func decoder(name string) (transform.Transformer, error) {
	if name == "" || strings.EqualFold(name, EncodingAuto) {
		// BOMがあればUTF-8/UTF-16として読み、BOMは取り除く
		return unicode.BOMOverride(encoding.Nop.NewDecoder()), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return unicode.BOMOverride(enc.NewDecoder()), nil
}
