// Package main provides localization for the layerpaint CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Output":   "出力先",
		"Canvas":   "キャンバス",
		"Replay":   "再生",
		"Debug":    "デバッグ",
		"Logging":  "ログ",
		"Settings": "設定",

		// Root command
		"Replay layered drawing scripts into images":                                                     "レイヤー描画スクリプトを再生して画像を作成",
		"layerpaint replays timed pointer and layer scripts on a layered canvas and exports the result.": "layerpaintはポインタとレイヤー操作のスクリプトをレイヤーキャンバス上で再生し、結果を書き出します。",

		// Replay command
		"Replay a drawing script": "描画スクリプトを再生",
		"Replay a timed drawing script and export the composited canvas.": "時間付きの描画スクリプトを再生し、合成したキャンバスを書き出します。",

		// Flatten command
		"Flatten a saved document":                                      "保存済みドキュメントを統合",
		"Load a saved document and export its composite as PNG or PDF.": "保存済みドキュメントを読み込み、合成結果をPNGまたはPDFで書き出します。",

		// Version command
		"Show version information": "バージョン情報を表示",
		"layerpaint version %s":    "layerpaint バージョン %s",

		// Output flags
		"Output PNG file path":                               "出力PNGファイルパス",
		"Also export a PDF to this path":                     "PDFもこのパスに書き出す",
		"Background color for exports (hex, e.g., #ffffff)":  "書き出し時の背景色（16進数、例: #ffffff）",
		"Save the resulting document to this path":           "結果のドキュメントをこのパスに保存",
		"Output execution summary to file (Markdown format)": "実行サマリーをファイルに出力（Markdown形式）",

		// Canvas flags
		"Canvas preset (default, square, hd, a4)": "キャンバスプリセット（default, square, hd, a4）",
		"Canvas width when the script sets none":  "スクリプトで未指定の場合のキャンバス幅",
		"Canvas height when the script sets none": "スクリプトで未指定の場合のキャンバス高さ",

		// Replay flags
		"Maximum undo depth":                     "元に戻す操作の最大数",
		"Refresh interval in milliseconds":       "更新間隔（ミリ秒）",
		"Pace the replay against the wall clock": "実時間に合わせて再生",

		// Settings, debug and logging flags
		"YAML configuration file":              "YAML設定ファイル",
		"Enable debug output":                  "デバッグ出力を有効化",
		"Directory for debug output":           "デバッグ出力のディレクトリ",
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Error messages
		"A script argument is required":            "スクリプト引数が必要です",
		"A document argument is required":          "ドキュメント引数が必要です",
		"Nothing to export: set --output or --pdf": "書き出し先がありません: --output または --pdf を指定してください",
		"Completed with %d suppressed errors":      "抑制されたエラーが%d件あります",

		// Summary content
		"Replay Summary": "再生サマリー",
		"Generated":      "生成日時",
		"Session":        "セッション",
		"Session ID":     "セッションID",
		"Document ID":    "ドキュメントID",
		"Script":         "スクリプト",
		"Steps":          "ステップ数",
		"Gestures":       "ジェスチャー数",
		"Points":         "点数",
		"skipped":        "スキップ",
		"Segments":       "セグメント数",
		"Failed Steps":   "失敗したステップ",
		"Script Time":    "スクリプト時間",
		"Elapsed":        "経過時間",
		"Layers":         "レイヤー",
		"No layers":      "レイヤーがありません",
		"Name":           "名前",
		"Visible":        "表示",
		"Opacity":        "不透明度",
		"Blend Mode":     "描画モード",
		"yes":            "はい",
		"no":             "いいえ",
		"Compositor":     "合成",
		"Renders":        "描画回数",
		"Immediate":      "即時",
		"Deferred":       "延期",
		"Forced":         "強制",
		"Coalesced":      "統合",
		"Failures":       "失敗",
		"History":        "履歴",
		"Undo":           "元に戻す",
		"Redo":           "やり直し",
		"Outputs":        "出力",
		"Document":       "ドキュメント",
	})
}
