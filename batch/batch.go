// This file is part of zxfleet.
//
// zxfleet is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// zxfleet is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with zxfleet.  If not, see <https://www.gnu.org/licenses/>.

// Package batch implements the C6 component: a whitelisted, positional
// fan-out dispatcher over a fixed-size worker pool. Grounded on the
// teacher's channel-based goroutine coordination in gopher2600.go's
// mainSync loop for the "bounded pool draws from a shared queue" shape,
// built here on top of golang.org/x/sync/errgroup (a dependency the
// teacher itself only pulls in indirectly; this package is what gives it
// a real home) for panic/error-safe worker boundaries.
package batch

import (
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zxfleet/core/events"
	"github.com/zxfleet/core/manager"
	"github.com/zxfleet/core/zxerrors"
)

// DefaultPoolSize is the fixed worker-pool size used when a Dispatcher is
// not configured otherwise (spec §4.6).
const DefaultPoolSize = 4

// whitelist is the closed set of command names a batch may submit (spec
// §4.6). Any other name is rejected wholesale at validation.
var whitelist = map[string]bool{
	"load-snapshot": true,
	"reset":         true,
	"pause":         true,
	"resume":        true,
	"feature":       true,
	"create":        true,
	"start":         true,
	"stop":          true,
}

// Command is one entry in a submitted batch: a target instance selector
// (resolved through manager.Manager, same rules as the single-instance
// REST endpoints), a whitelisted command name, and up to two string
// arguments whose meaning depends on the command.
type Command struct {
	Selector string
	Name     string
	Arg1     string
	Arg2     string
}

// Result is the positional outcome of one Command: Selector and Command
// echo the input so a caller can correlate results without needing the
// index, Success/Error report the outcome.
type Result struct {
	Selector string
	Command  string
	Success  bool
	Error    string
}

// Summary aggregates a completed batch's results (spec §4.6).
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	ElapsedMS int64
	Success   bool
	Results   []Result
}

// Dispatcher fans a batch of commands out across a fixed-size worker
// pool, resolving each command's target instance through mgr and
// executing it via exec.
type Dispatcher struct {
	mgr      *manager.Manager
	bus      *events.Bus
	poolSize int
	exec     Executor
}

// Executor performs one command against a resolved instance. Supplied by
// the caller (cmd/zxfleet's wiring code, or webapi directly) so this
// package does not need to import the instance package's full operation
// surface to know how to run "feature" or "create", which (unlike the
// other six whitelisted commands) are not plain instance.Instance
// methods.
type Executor func(mgr *manager.Manager, cmd Command) error

// New returns a Dispatcher with the given pool size (DefaultPoolSize if
// poolSize <= 0).
func New(mgr *manager.Manager, bus *events.Bus, poolSize int, exec Executor) *Dispatcher {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	return &Dispatcher{mgr: mgr, bus: bus, poolSize: poolSize, exec: exec}
}

// Validate rejects the whole batch with NotBatchable if any command's
// name is not in the whitelist (spec §8 scenario 5): nothing in the
// batch is executed when validation fails.
func Validate(commands []Command) error {
	for _, c := range commands {
		if !whitelist[c.Name] {
			return zxerrors.New(zxerrors.NotBatchable, "command %q is not batchable", c.Name)
		}
	}
	return nil
}

// Run validates then executes commands, returning a Summary once every
// command has produced a positional result. A panic inside a single
// command's execution is recovered at the worker boundary and converted
// into a failed Result carrying the panic's message, rather than taking
// down the whole batch (spec §4.6 "failure isolation").
func (d *Dispatcher) Run(commands []Command) (Summary, error) {
	if err := Validate(commands); err != nil {
		return Summary{}, err
	}

	start := time.Now()
	results := make([]Result, len(commands))

	var g errgroup.Group
	sem := make(chan struct{}, d.poolSize)

	for i, cmd := range commands {
		i, cmd := i, cmd
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			results[i] = d.runOne(cmd)
			return nil
		})
	}
	_ = g.Wait() // runOne never returns an error to errgroup; failures live in results

	summary := Summary{
		Total:     len(commands),
		ElapsedMS: time.Since(start).Milliseconds(),
		Results:   results,
	}
	for _, r := range results {
		if r.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	summary.Success = summary.Failed == 0

	if d.bus != nil {
		d.bus.Publish(events.Event{Kind: events.BatchCompleted, Payload: summary})
	}

	return summary, nil
}

// runOne executes a single command, converting both returned errors and
// recovered panics into a Result so one bad command can never abort the
// batch or corrupt a sibling worker's slot in the results vector.
func (d *Dispatcher) runOne(cmd Command) (result Result) {
	result = Result{Selector: cmd.Selector, Command: cmd.Name}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Error = panicMessage(r)
		}
	}()

	if err := d.exec(d.mgr, cmd); err != nil {
		result.Success = false
		result.Error = err.Error()
		return result
	}

	result.Success = true
	return result
}

func panicMessage(r interface{}) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	if s, ok := r.(string); ok {
		return s
	}
	return "panic in batch worker"
}
