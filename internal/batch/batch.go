// Package batch evaluates many expressions concurrently.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/codefionn/calcschnell/internal/calc"
	"github.com/codefionn/calcschnell/internal/consts"
)

// Line is one expression read from the input together with its 1-based line number.
type Line struct {
	Number     int
	Expression string
}

// Result is the outcome of evaluating one Line.
type Result struct {
	Line
	Result string
	Err    error
}

// OK reports whether the line evaluated successfully.
func (r Result) OK() bool {
	return r.Err == nil
}

// ReadLines reads expressions from r, skipping blank lines and lines starting with '#'.
func ReadLines(r io.Reader) ([]Line, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, consts.BufferSize1KB), consts.BufferSize64KB)

	var lines []Line
	number := 0
	for scanner.Scan() {
		number++
		text := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines = append(lines, Line{Number: number, Expression: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expressions: %w", err)
	}
	return lines, nil
}

// Run evaluates lines with at most workers goroutines. Results keep the input
// order. Evaluation errors are reported per line; only cancellation of ctx
// makes Run itself fail.
func Run(ctx context.Context, lines []Line, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = consts.DefaultBatchWorkers
	}

	results := make([]Result, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, line := range lines {
		i, line := i, line
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			value, err := calc.Evaluate(line.Expression)
			results[i] = Result{Line: line, Result: value, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summary counts batch outcomes.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	ByKind    map[calc.ErrorKind]int
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	s := Summary{ByKind: make(map[calc.ErrorKind]int)}
	for _, r := range results {
		s.Total++
		if r.OK() {
			s.Succeeded++
			continue
		}
		s.Failed++
		s.ByKind[calc.KindOf(r.Err)]++
	}
	return s
}

// String renders the summary on one line, kinds sorted by name.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d evaluated, %d succeeded, %d failed", s.Total, s.Succeeded, s.Failed)

	if len(s.ByKind) == 0 {
		return b.String()
	}

	kinds := make([]calc.ErrorKind, 0, len(s.ByKind))
	for kind := range s.ByKind {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i].String() < kinds[j].String()
	})

	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%d", kind, s.ByKind[kind]))
	}
	fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	return b.String()
}
