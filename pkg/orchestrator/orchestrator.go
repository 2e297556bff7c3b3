// Package orchestrator coordinates all pipeline stages.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/user/layerpaint/pkg/pipeline"
	"github.com/user/layerpaint/pkg/ports"
	"github.com/user/layerpaint/pkg/session"
)

// Config contains all configuration for the orchestrator.
type Config struct {
	// Input: a replay script, or a document for Flatten
	ScriptPath   string
	DocumentPath string

	// Outputs; empty paths are skipped
	OutputPath string // PNG
	PDFPath    string
	SavePath   string // document file written after a replay

	Background color.Color // nil keeps transparency
	Realtime   bool
}

// Orchestrator coordinates the execution of all pipeline stages against one
// session.
type Orchestrator struct {
	parseStage  pipeline.Stage[pipeline.ScriptInput, pipeline.Script]
	replayStage pipeline.Stage[pipeline.ReplayInput, pipeline.ReplayResult]
	exportStage pipeline.Stage[pipeline.ExportInput, pipeline.ExportResult]
	sess        *session.Session
	fs          ports.FileSystem
	sink        ports.DebugSink
	logger      ports.Logger
}

// New creates a new Orchestrator.
func New(
	parseStage pipeline.Stage[pipeline.ScriptInput, pipeline.Script],
	replayStage pipeline.Stage[pipeline.ReplayInput, pipeline.ReplayResult],
	exportStage pipeline.Stage[pipeline.ExportInput, pipeline.ExportResult],
	sess *session.Session,
	fs ports.FileSystem,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		parseStage:  parseStage,
		replayStage: replayStage,
		exportStage: exportStage,
		sess:        sess,
		fs:          fs,
		sink:        sink,
		logger:      logger,
	}
}

// Run replays the script at config.ScriptPath and writes the requested
// outputs.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	result := RunResult{Realtime: config.Realtime}

	// 1. Parse script
	data, err := o.fs.ReadFile(config.ScriptPath)
	if err != nil {
		o.logger.Error("Failed to read script: %s", err)
		return result, fmt.Errorf("read script: %w", err)
	}
	script, err := o.parseStage.Execute(ctx, pipeline.ScriptInput{
		Name: filepath.Base(config.ScriptPath),
		Data: data,
	})
	if err != nil {
		o.logger.Error("Failed to parse script: %s", err)
		return result, fmt.Errorf("parse stage: %w", err)
	}
	result.Script = script

	if o.sink.Enabled() {
		if data, err := json.MarshalIndent(script, "", "  "); err == nil {
			o.sink.SaveScriptJSON(data)
		}
	}

	// 2. Replay
	replay, err := o.replayStage.Execute(ctx, pipeline.ReplayInput{Script: script, Realtime: config.Realtime})
	if err != nil {
		o.logger.Error("Failed to replay script: %s", err)
		return result, fmt.Errorf("replay stage: %w", err)
	}
	result.Replay = replay
	o.logger.Info("Replayed %d events in %d ticks (%d failed steps)", replay.Events, replay.Ticks, len(replay.Failures))

	// 3. Export and save
	if err := o.export(ctx, config, script.Name, &result); err != nil {
		return result, err
	}
	if config.SavePath != "" {
		if err := o.sess.Save(config.SavePath); err != nil {
			return result, fmt.Errorf("save document: %w", err)
		}
		result.DocumentPath = config.SavePath
		result.DocumentSize = o.fileSize(config.SavePath)
	}

	if err := o.sess.DumpDebug(); err != nil {
		o.logger.Warn("Failed to write debug output: %s", err)
	}

	o.logger.Info("Replay completed successfully")
	return result, nil
}

// Flatten loads the document at config.DocumentPath and exports its
// composite. Layers that fail to decode are reported and skipped.
func (o *Orchestrator) Flatten(ctx context.Context, config Config) (RunResult, error) {
	result := RunResult{}

	if err := o.sess.Load(config.DocumentPath); err != nil {
		if !errors.Is(err, session.ErrPartialLoad) {
			return result, err
		}
		o.logger.Warn("%s", err)
	}

	if err := o.export(ctx, config, filepath.Base(config.DocumentPath), &result); err != nil {
		return result, err
	}
	o.logger.Info("Flatten completed successfully")
	return result, nil
}

func (o *Orchestrator) export(ctx context.Context, config Config, title string, result *RunResult) error {
	out, err := o.sess.Output()
	if err != nil {
		o.logger.Error("Failed to composite layers: %s", err)
		return fmt.Errorf("composite: %w", err)
	}

	exported, err := o.exportStage.Execute(ctx, pipeline.ExportInput{
		Image:      out.Image(),
		Background: config.Background,
		PDF:        config.PDFPath != "",
		Title:      title,
	})
	if err != nil {
		o.logger.Error("Failed to export image: %s", err)
		return fmt.Errorf("export stage: %w", err)
	}

	if config.OutputPath != "" {
		if err := o.fs.WriteFile(config.OutputPath, exported.PNG); err != nil {
			o.logger.Error("Failed to write output: %s", err)
			return fmt.Errorf("write output: %w", err)
		}
		result.PNGPath = config.OutputPath
		result.PNGSize = int64(len(exported.PNG))
		o.logger.Info("Output saved to %s", config.OutputPath)
	}
	if config.PDFPath != "" {
		o.logger.Info("Exporting PDF to %s", config.PDFPath)
		if err := o.fs.WriteFile(config.PDFPath, exported.PDF); err != nil {
			o.logger.Error("Failed to write output: %s", err)
			return fmt.Errorf("write pdf: %w", err)
		}
		result.PDFPath = config.PDFPath
		result.PDFSize = int64(len(exported.PDF))
	}
	return nil
}

func (o *Orchestrator) fileSize(path string) int64 {
	data, err := o.fs.ReadFile(path)
	if err != nil {
		return 0
	}
	return int64(len(data))
}

// RunResult contains the results of a pipeline run for summary generation.
type RunResult struct {
	Script   pipeline.Script
	Replay   pipeline.ReplayResult
	Realtime bool

	PNGPath      string
	PNGSize      int64
	PDFPath      string
	PDFSize      int64
	DocumentPath string
	DocumentSize int64
}
