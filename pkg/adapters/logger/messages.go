package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Session level messages (info)
		"Replaying %s (%d steps)...":    "%s を再生中 (%d ステップ)...",
		"Output saved to %s":            "出力を %s に保存しました",
		"Document saved to %s":          "ドキュメントを %s に保存しました",
		"Document loaded from %s":       "%s からドキュメントを読み込みました",
		"Replay completed successfully": "再生が正常に完了しました",
		"Starting session %s (%dx%d)":   "セッション %s を開始します (%dx%d)",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
		"Exporting PDF to %s":           "PDF を %s に書き出し中",
		"Summary written to %s":         "サマリーを %s に書き出しました",

		"Flatten completed successfully":                   "統合が正常に完了しました",
		"Replayed %d events in %d ticks (%d failed steps)": "%d イベントを %d ティックで再生しました (失敗 %d ステップ)",
		"Parsed script %s: %d steps":                       "スクリプト %s を解析しました: %d ステップ",
		"Encoded PNG (%d bytes)":                           "PNG をエンコードしました (%d バイト)",
		"Encoded PDF (%d bytes)":                           "PDF をエンコードしました (%d バイト)",

		// Layer store
		"Added layer %d (%s)":       "レイヤー %d (%s) を追加しました",
		"Removed layer %d":          "レイヤー %d を削除しました",
		"Resized document to %dx%d": "ドキュメントを %dx%d にリサイズしました",
		"Restored %d of %d layers":  "%d / %d レイヤーを復元しました",

		// Compositor
		"Rendered %d layers in %s":      "%d レイヤーを %s で合成しました",
		"Deferred update to next frame": "更新を次のフレームに延期しました",

		// Stroke engine
		"Stroke began at (%.1f, %.1f) with %s": "(%.1f, %.1f) から %s でストロークを開始",
		"Stroke ended: %d points, %d segments": "ストローク終了: %d 点, %d セグメント",

		// History
		"Recorded history entry %q (%d undo, %d redo)": "履歴 %q を記録しました (元に戻す %d, やり直し %d)",
		"Nothing to undo": "元に戻す操作はありません",
		"Nothing to redo": "やり直す操作はありません",
		"Undid %s":        "%s を元に戻しました",
		"Redid %s":        "%s をやり直しました",

		// Warnings
		"Layer %d not found (%s)":                "レイヤー %d が見つかりません (%s)",
		"Unknown blend mode %q, using %s":        "不明なブレンドモード %q のため %s を使用します",
		"Skipping layer %d (%s) in snapshot: %s": "スナップショットでレイヤー %d (%s) をスキップ: %s",
		"Skipping layer %d (%s) on restore: %s":  "復元時にレイヤー %d (%s) をスキップ: %s",
		"Skipping non-finite sample (%v, %v)":    "有限でないサンプル (%v, %v) をスキップ",
		"No active layer, ignoring pointer down": "アクティブなレイヤーがないためポインターダウンを無視します",
		"Pointer down ignored while drawing":     "描画中のポインターダウンを無視します",
		"Tool %s has no stroke behavior":         "ツール %s には描画動作がありません",
		"Undo ignored while drawing":             "描画中の元に戻す操作を無視します",
		"Redo ignored while drawing":             "描画中のやり直し操作を無視します",
		"Step %d (%s) failed: %s":                "ステップ %d (%s) が失敗しました: %s",
		"Failed to write debug output: %s":       "デバッグ出力の書き込みに失敗しました: %s",
		"Failed to save gesture frame: %s":       "ジェスチャーフレームの保存に失敗しました: %s",

		// Errors
		"Composite failed: %s":           "合成に失敗しました: %s",
		"Failed to write output: %s":     "出力の書き込みに失敗しました: %s",
		"Failed to read script: %s":      "スクリプトの読み込みに失敗しました: %s",
		"Failed to parse script: %s":     "スクリプトの解析に失敗しました: %s",
		"Failed to replay script: %s":    "スクリプトの再生に失敗しました: %s",
		"Failed to composite layers: %s": "レイヤーの合成に失敗しました: %s",
		"Failed to export image: %s":     "画像の書き出しに失敗しました: %s",
		"Failed to write summary: %s":    "サマリーの書き込みに失敗しました: %s",
	})
}
