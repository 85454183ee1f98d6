// Package orchestrator drives a conversion run: it rebuilds the output tree,
// streams the fwdata file through the sanitizer, renames the referenced
// audio files and writes the mapping.
package orchestrator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"fwsanitize/internal/audit"
	"fwsanitize/internal/config"
	"fwsanitize/internal/output"
	"fwsanitize/internal/sanitizer"
	"fwsanitize/internal/workspace"
)

// Orchestrator runs conversions for one configuration.
type Orchestrator struct {
	config     *config.Configuration
	out        *output.Output
	appVersion string
}

// New creates an Orchestrator. A nil out discards all output.
func New(cfg *config.Configuration, out *output.Output, appVersion string) *Orchestrator {
	if out == nil {
		out = output.Discard()
	}
	return &Orchestrator{
		config:     cfg,
		out:        out,
		appVersion: appVersion,
	}
}

// Run performs a single conversion with the given configuration.
func Run(ctx context.Context, cfg *config.Configuration, out *output.Output) (*Summary, error) {
	return New(cfg, out, "").Run(ctx)
}

// run holds the state of one conversion.
type run struct {
	cfg       *config.Configuration
	out       *output.Output
	journal   *audit.AuditWriter
	sanitizer *sanitizer.Sanitizer
	renamer   renamer
	summary   *Summary
	lineNum   int
	// renamed tracks files already moved by an earlier line, so a repeated
	// reference is not reported as missing.
	renamed map[string]string
}

// Run performs the conversion. In dry-run mode nothing on disk changes and
// renames are planned against the samples tree instead.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	cfg := o.config

	r := &run{
		cfg:     cfg,
		out:     o.out,
		summary: &Summary{DryRun: cfg.DryRun},
		renamed: make(map[string]string),
	}
	r.sanitizer = sanitizer.New(sanitizer.Options{
		EmptyNamePolicy: cfg.EmptyNamePolicy,
		OnWarning:       r.warnTransliteration,
	})

	if cfg.Audit != nil && !cfg.Audit.Disabled && !cfg.DryRun {
		journal, err := audit.NewAuditWriter(*cfg.Audit)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		defer journal.Close()

		runID, err := journal.StartRun(o.appVersion, cfg.Fwdata)
		if err != nil {
			return nil, fmt.Errorf("failed to start audit run: %w", err)
		}
		r.journal = journal
		r.summary.RunID = runID
	}

	err := r.execute(ctx)
	r.summary.Converted = r.sanitizer.MappingCount()
	r.summary.Duration = time.Since(start)

	if r.journal != nil {
		status := audit.RunStatusCompleted
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			status = audit.RunStatusInterrupted
		case err != nil:
			status = audit.RunStatusFailed
		}
		if endErr := r.journal.EndRun(r.summary.RunID, status, r.summary.auditSummary()); endErr != nil && err == nil {
			err = fmt.Errorf("failed to end audit run: %w", endErr)
		}
	}

	return r.summary, err
}

func (r *run) execute(ctx context.Context) error {
	cfg := r.cfg

	if cfg.DryRun {
		r.renamer = newPlannedRenamer(cfg.InputAudioDir())
	} else {
		if err := workspace.Prepare(cfg.SamplesDirectory, cfg.OutputDirectory, cfg.MappingFile); err != nil {
			return err
		}
		r.out.Info("Copied %s to %s", cfg.SamplesDirectory, cfg.OutputDirectory)
		r.renamer = &diskRenamer{dir: cfg.OutputAudioDir()}
	}

	in, err := os.Open(cfg.InputFile())
	if err != nil {
		return fmt.Errorf("failed to open fwdata: %w", err)
	}
	defer in.Close()

	var w *bufio.Writer
	if !cfg.DryRun {
		f, err := os.Create(cfg.OutputFile())
		if err != nil {
			return fmt.Errorf("failed to create output fwdata: %w", err)
		}
		defer f.Close()
		w = bufio.NewWriter(f)
	} else {
		w = bufio.NewWriter(io.Discard)
	}

	r.out.Info("Processing...")
	r.out.StartProgress(output.DefaultProgressLabel)
	err = r.processLines(ctx, bufio.NewReader(in), w)
	r.out.EndProgress()
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output fwdata: %w", err)
	}

	if !cfg.DryRun {
		wrote, err := r.sanitizer.WriteMapping(cfg.MappingFile)
		if err != nil {
			return fmt.Errorf("failed to write mapping: %w", err)
		}
		if wrote {
			r.out.Verbose("Wrote %d mappings to %s", r.sanitizer.MappingCount(), cfg.MappingFile)
			if err := r.record(r.journalMappingWritten(cfg.MappingFile)); err != nil {
				return err
			}
		}
	}

	return r.reportUnsafe()
}

// processLines copies every line from in to w, sanitized. Lines may be of any
// length; a trailing "\r" is dropped and every line is written with "\n".
func (r *run) processLines(ctx context.Context, in *bufio.Reader, w *bufio.Writer) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, readErr := in.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return fmt.Errorf("failed to read fwdata: %w", readErr)
		}
		if raw == "" && readErr == io.EOF {
			return nil
		}

		r.lineNum++
		r.summary.Lines++
		r.out.UpdateProgress(r.lineNum)

		line := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
		if err := r.processLine(line, w); err != nil {
			return err
		}

		if readErr == io.EOF {
			return nil
		}
	}
}

func (r *run) processLine(line string, w *bufio.Writer) error {
	result, err := r.sanitizer.SanitizeLine(line)
	if err != nil {
		r.summary.Warnings++
		r.out.Warn("line %d left unchanged: %v", r.lineNum, err)
		if recErr := r.record(r.journalLineRejected(err)); recErr != nil {
			return recErr
		}
	}

	if _, err := w.WriteString(result.Line + "\n"); err != nil {
		return fmt.Errorf("failed to write output fwdata: %w", err)
	}

	if !result.Renamed() {
		return nil
	}
	return r.renameAudio(result.OriginalAudioName, result.NewAudioName)
}

func (r *run) renameAudio(oldName, newName string) error {
	if !workspace.IsPlainName(oldName) || !workspace.IsPlainName(newName) {
		r.summary.Warnings++
		r.out.Warn("line %d: %s is not a file in the audio directory, not renamed", r.lineNum, oldName)
		return r.record(r.journalRenameSkipped(oldName, newName, audit.ReasonInvalidInput))
	}

	if !r.renamer.exists(oldName) {
		if r.renamed[oldName] == newName {
			return nil
		}
		r.summary.Missing++
		r.out.Verbose("Audio file not found: %s", oldName)
		return r.record(r.journalRenameSkipped(oldName, newName, audit.ReasonSourceMissing))
	}

	result, err := r.renamer.rename(oldName, newName)
	if err != nil {
		if workspace.IsRenameError(err, workspace.DestinationExists) {
			err = fmt.Errorf("line %d: cannot rename %s, %s already exists: %w", r.lineNum, oldName, newName, err)
			return errors.Join(err, r.record(r.journalCollision(oldName, newName)))
		}
		return fmt.Errorf("line %d: %w", r.lineNum, err)
	}

	r.renamed[oldName] = newName
	r.summary.Renamed++
	if r.cfg.DryRun {
		r.out.Verbose("Would rename %s -> %s", oldName, newName)
	} else {
		r.out.Verbose("Renamed %s -> %s", oldName, newName)
	}
	return r.record(r.journalRename(result))
}

// reportUnsafe warns about audio files no fwdata line renamed whose names
// are still unsafe.
func (r *run) reportUnsafe() error {
	dir := r.cfg.OutputAudioDir()
	if r.cfg.DryRun {
		dir = r.cfg.InputAudioDir()
	}

	entries, err := workspace.UnsafeAudioFiles(dir)
	if err != nil {
		return fmt.Errorf("failed to scan audio files: %w", err)
	}

	for _, entry := range entries {
		if planned, ok := r.renamer.(*plannedRenamer); ok && planned.renamedAway(entry.Name) {
			continue
		}
		r.summary.Unsafe = append(r.summary.Unsafe, entry)
		r.out.Warn("audio file not referenced in fwdata still has an unsafe name: %s", entry.Name)
	}
	return nil
}

func (r *run) warnTransliteration(err error) {
	r.summary.Warnings++
	r.out.Warn("line %d: %v", r.lineNum, err)
}
