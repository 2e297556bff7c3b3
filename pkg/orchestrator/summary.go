package orchestrator

import (
	"time"

	"github.com/user/layerpaint/pkg/session"
	"github.com/user/layerpaint/pkg/summarizer"
)

// BuildSummary collects a run result and the final session state into a
// report.
func BuildSummary(result RunResult, sess *session.Session, generatedAt time.Time) *summarizer.Summary {
	store := sess.Store()
	width, height := store.Size()
	active := store.ActiveID()

	doc := summarizer.DocumentInfo{Width: width, Height: height}
	for _, l := range store.Layers() {
		info := l.Info()
		doc.Layers = append(doc.Layers, summarizer.LayerInfo{
			Name:      info.Name,
			Visible:   info.Visible,
			Opacity:   info.Opacity,
			BlendMode: string(info.BlendMode),
			Active:    info.ID == active,
		})
	}

	stats := sess.Stats()
	comp := sess.Compositor().Stats()
	undo, redo := sess.History().Labels()

	summary := summarizer.NewBuilder().
		WithSession(sess.ID(), sess.DocumentID(), result.Script.Name).
		WithDocument(doc).
		WithReplay(summarizer.ReplayInfo{
			Steps:     result.Replay.Steps,
			Gestures:  stats.Gestures,
			Points:    stats.Points,
			Segments:  stats.Segments,
			Skipped:   stats.Skipped,
			Failures:  len(result.Replay.Failures),
			ScriptMs:  int(result.Replay.ScriptDuration.Milliseconds()),
			ElapsedMs: int(result.Replay.Elapsed.Milliseconds()),
			Realtime:  result.Realtime,
		}).
		WithCompositor(summarizer.CompositorInfo{
			Renders:   comp.Renders,
			Immediate: comp.Immediate,
			Deferred:  comp.Deferred,
			Forced:    comp.Forced,
			Coalesced: comp.Coalesced,
			Failures:  comp.Failures,
		}).
		WithHistory(summarizer.HistoryInfo{
			MaxDepth: sess.History().MaxDepth(),
			Undo:     undo,
			Redo:     redo,
		}).
		WithOutputs(summarizer.OutputInfo{
			PNGPath:      result.PNGPath,
			PNGSize:      result.PNGSize,
			PDFPath:      result.PDFPath,
			PDFSize:      result.PDFSize,
			DocumentPath: result.DocumentPath,
			DocumentSize: result.DocumentSize,
		}).
		Build()
	summary.GeneratedAt = generatedAt
	return summary
}
