package internal

import (
	"path/filepath"
)

// Processor infers the capture time of one file and stamps it into the
// file's metadata. It holds no mutable state and is safe for concurrent use.
type Processor struct {
	Root    string
	Rules   []Rule
	Writers WriterSet
	DryRun  bool
}

// NewProcessor returns a Processor using DefaultRules.
func NewProcessor(root string, writers WriterSet, dryRun bool) *Processor {
	return &Processor{
		Root:    root,
		Rules:   DefaultRules,
		Writers: writers,
		DryRun:  dryRun,
	}
}

// Process handles a single file and always returns exactly one Result.
func (p *Processor) Process(path string) Result {
	res := Result{Path: path, RelPath: p.relPath(path)}

	inf, err := InferWith(p.Rules, filepath.Base(path), path)
	res.Convention = inf.Convention
	if err != nil {
		res.Outcome = OutcomeInvalidDate
		res.Err = err
		return res
	}
	if !inf.Found() {
		res.Outcome = OutcomeNoDate
		if inf.Convention == ConventionSnapchat {
			res.Outcome = OutcomeUnsupportedConvention
		}
		return res
	}
	res.Timestamp = inf.Time

	w, ok := p.Writers.For(filepath.Ext(path))
	if !ok {
		res.Outcome = OutcomeUnsupportedType
		return res
	}

	res.Outcome, res.Err = Stamp(w, path, inf.Time, p.DryRun)
	return res
}

// relPath is for reporting only; it falls back to the path as given.
func (p *Processor) relPath(path string) string {
	if p.Root == "" {
		return path
	}
	rel, err := filepath.Rel(p.Root, path)
	if err != nil {
		return path
	}
	return rel
}
