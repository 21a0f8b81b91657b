// SPDX-License-Identifier: MPL-2.0

// Package demo provides the handlers, checks and tree bundled with the
// cmdengine CLI.
//
// Handlers read the invoking user from the "user" service and the engine
// owner from the "owner" service.
package demo

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/invowk/cmdengine/internal/clock"
	"github.com/invowk/cmdengine/pkg/commandtree"
	"github.com/invowk/cmdengine/pkg/treefile"
	"github.com/invowk/cmdengine/pkg/typeparser"
)

// Service keys read by the demo bindings.
const (
	ServiceUser   = "user"
	ServiceOwner  = "owner"
	ServiceClock  = "clock"
	ServiceRandom = "random"
)

//go:embed tree.cue
var treeSource []byte

// ErrNoUser is returned by handlers that need an invoking user.
var ErrNoUser = errors.New("no invoking user")

// TreeSource returns the bundled tree file.
func TreeSource() []byte {
	return append([]byte(nil), treeSource...)
}

// Types returns a registry with the demo enum registered.
func Types() *typeparser.Registry {
	reg := typeparser.NewRegistry()
	_ = reg.RegisterEnum("color",
		typeparser.EnumMember{Name: "red", Value: 0xff0000},
		typeparser.EnumMember{Name: "green", Value: 0x00ff00},
		typeparser.EnumMember{Name: "blue", Value: 0x0000ff},
	)
	return reg
}

// Bindings returns every name the bundled tree refers to.
func Bindings() treefile.Bindings {
	return treefile.Bindings{
		Handlers: map[string]commandtree.Handler{
			"echo":   echo,
			"whoami": whoami,
			"sum":    sum,
			"roll":   roll,
			"paint":  paint,
			"shout":  shout,
			"nap":    nap,
			"status": status,
		},
		Hooks: map[string]commandtree.Hook{
			"trace": trace,
		},
		Checks: map[string]commandtree.Check{
			"has-user":  {Name: "has-user", Run: hasUser},
			"owner":     {Name: "owner", Run: isOwner},
			"moderator": {Name: "moderator", Run: isModerator},
		},
		Parsers: map[string]commandtree.TypeParser{
			"hex": commandtree.TypeParserFunc(parseHex),
		},
		Keys: map[string]commandtree.KeyFunc{
			"per-user": perUser,
		},
	}
}

func user(ec *commandtree.ExecutionContext) (string, bool) {
	name, ok := commandtree.Service[string](ec, ServiceUser)
	return name, ok && name != ""
}

func echo(_ context.Context, ec *commandtree.ExecutionContext) (any, error) {
	text, _ := ec.Argument(0)
	return text, nil
}

func whoami(_ context.Context, ec *commandtree.ExecutionContext) (any, error) {
	name, ok := user(ec)
	if !ok {
		return nil, ErrNoUser
	}
	return name, nil
}

// sum adds ints or durations, whichever the overload bound.
func sum(_ context.Context, ec *commandtree.ExecutionContext) (any, error) {
	values, _ := ec.Argument(0)
	list, _ := values.([]any)
	var (
		total int
		span  time.Duration
	)
	for _, v := range list {
		switch n := v.(type) {
		case int:
			total += n
		case time.Duration:
			span += n
		}
	}
	if span != 0 {
		return span, nil
	}
	return total, nil
}

func roll(_ context.Context, ec *commandtree.ExecutionContext) (any, error) {
	sides, _ := ec.Argument(0)
	count, _ := ec.Argument(1)
	intN := rand.IntN
	if rng, ok := commandtree.Service[*rand.Rand](ec, ServiceRandom); ok {
		intN = rng.IntN
	}
	n, s := count.(int), sides.(int)
	rolls := make([]int, n)
	for i := range rolls {
		rolls[i] = intN(s) + 1
	}
	return rolls, nil
}

func paint(_ context.Context, ec *commandtree.ExecutionContext) (any, error) {
	color, _ := ec.Argument(0)
	shade, _ := ec.Argument(1)
	if shade == nil {
		return fmt.Sprint(color), nil
	}
	return fmt.Sprintf("%v #%06x", color, shade), nil
}

func shout(_ context.Context, ec *commandtree.ExecutionContext) (any, error) {
	text, _ := ec.Argument(0)
	s, _ := text.(string)
	return cases.Upper(language.Und).String(s), nil
}

// nap sleeps on the "clock" service so tests can drive it.
func nap(ctx context.Context, ec *commandtree.ExecutionContext) (any, error) {
	d, _ := ec.Argument(0)
	clk, ok := commandtree.Service[clock.Clock](ec, ServiceClock)
	if !ok {
		clk = clock.Real{}
	}
	select {
	case <-clk.After(d.(time.Duration)):
		return "rested", nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func status(_ context.Context, ec *commandtree.ExecutionContext) (any, error) {
	return "ok: invocation " + ec.ID().String(), nil
}

func trace(ctx context.Context, ec *commandtree.ExecutionContext) error {
	log.FromContext(ctx).Debug("hook", "command", ec.Command().FullName(), "invocation", ec.ID())
	return nil
}

func hasUser(_ context.Context, ec *commandtree.ExecutionContext) commandtree.CheckResult {
	if _, ok := user(ec); !ok {
		return commandtree.Failed("This command needs an invoking user.")
	}
	return commandtree.Passed()
}

func isOwner(_ context.Context, ec *commandtree.ExecutionContext) commandtree.CheckResult {
	name, _ := user(ec)
	owner, _ := commandtree.Service[string](ec, ServiceOwner)
	if name == "" || name != owner {
		return commandtree.Failed("Only the owner can do this.")
	}
	return commandtree.Passed()
}

// isModerator accepts users named "mod-*".
func isModerator(_ context.Context, ec *commandtree.ExecutionContext) commandtree.CheckResult {
	name, _ := user(ec)
	if !strings.HasPrefix(name, "mod-") {
		return commandtree.Failed("Only moderators can do this.")
	}
	return commandtree.Passed()
}

func perUser(_ string, ec *commandtree.ExecutionContext) (string, bool) {
	return user(ec)
}

// parseHex parses "#rrggbb" or "rrggbb".
func parseHex(_ context.Context, _ *commandtree.Parameter, raw string, _ *commandtree.ExecutionContext) commandtree.TypeParserResult {
	s := strings.TrimPrefix(raw, "#")
	if len(s) != 6 {
		return commandtree.ParseFailed("A hex color has six digits.")
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return commandtree.ParseFailed("A hex color has six digits.")
	}
	return commandtree.Parsed(uint32(v))
}
