// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/invowk/cmdengine/pkg/engine"
)

// printer writes results. Background handlers print concurrently with the
// REPL loop, so writes are serialized.
type printer struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

func (p *printer) result(input string, result engine.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, formatResult(input, result, p.verbose))
}

// background prints the result of a handler that finished in the background,
// always labeled with its input.
func (p *printer) background(input string, result engine.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prefix := "[background] "
	if !p.verbose {
		prefix += input + " => "
	}
	fmt.Fprintln(p.out, VerboseStyle.Render(prefix)+formatResult(input, result, p.verbose))
}

// formatResult renders one result. Verbose output prefixes the input and
// lists every failure detail.
func formatResult(input string, result engine.Result, verbose bool) string {
	var b strings.Builder
	if verbose {
		b.WriteString(VerboseStyle.Render(input + " => "))
	}

	if s, ok := result.(*engine.SuccessResult); ok {
		switch {
		case s.Deferred:
			b.WriteString(SubtitleStyle.Render("started in background"))
		case s.HasValue:
			b.WriteString(SuccessStyle.Render(fmt.Sprint(s.Value)))
		default:
			b.WriteString(SuccessStyle.Render("ok"))
		}
		return b.String()
	}

	b.WriteString(ErrorStyle.Render(result.Kind().String()+":") + " " + result.Reason())
	details := engine.Details(result)
	if !verbose && result.Kind() != engine.KindChecksFailed && result.Kind() != engine.KindParameterChecksFailed {
		details = nil
	}
	for _, d := range details {
		b.WriteString("\n" + resultDetailStyle.Render(d))
	}
	return b.String()
}
