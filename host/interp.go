package host

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"jsyn/foreign"
	"jsyn/logger"
)

// ScriptError reports the script line a statement failed on.
type ScriptError struct {
	Line int
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// Interp runs control scripts against a module. Each line is one statement:
//
//	name = fn arg...
//	fn arg...
//	name.method arg...
//	sleep 500ms | unset name | gc | print name
//
// Arguments are numbers, double-quoted strings or bound names; # starts a comment.
type Interp struct {
	mod    *Module
	heap   *Heap
	env    map[string]Value
	out    io.Writer
	logger *slog.Logger
}

// NewInterp returns an interpreter for mod printing to out.
func NewInterp(mod *Module, out io.Writer) *Interp {
	return &Interp{
		mod:    mod,
		heap:   NewHeap(),
		env:    make(map[string]Value),
		out:    out,
		logger: logger.WithComponent("interp").With("module", mod.Name),
	}
}

// Heap returns the heap holding the script's foreign references.
func (in *Interp) Heap() *Heap {
	return in.heap
}

// Lookup returns the value bound to name.
func (in *Interp) Lookup(name string) (Value, bool) {
	v, ok := in.env[name]
	return v, ok
}

// Collect finalizes references no longer bound to a name.
func (in *Interp) Collect() int {
	roots := make([]Value, 0, len(in.env))
	for _, v := range in.env {
		roots = append(roots, v)
	}
	return in.heap.Collect(roots)
}

// Close unbinds everything and finalizes every reference.
func (in *Interp) Close() {
	clear(in.env)
	in.heap.Close()
}

// Exec runs the script read from r until it ends, a statement fails, or ctx is done.
func (in *Interp) Exec(ctx context.Context, r io.Reader) error {
	src := transform.NewReader(r, transform.Chain(runes.Remove(runes.In(unicode.Cf)), norm.NFC))
	scanner := bufio.NewScanner(src)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := in.exec(ctx, scanner.Text()); err != nil {
			return &ScriptError{Line: line, Err: err}
		}
	}
	return scanner.Err()
}

func (in *Interp) exec(ctx context.Context, text string) error {
	tokens, err := tokenize(text)
	if err != nil || len(tokens) == 0 {
		return err
	}

	if len(tokens) >= 2 && tokens[1].raw == "=" {
		name := tokens[0]
		if name.quoted || !isIdent(name.raw) || len(tokens) < 3 {
			return fmt.Errorf("%w: bad assignment", ErrSyntax)
		}
		v, err := in.call(ctx, tokens[2:])
		if err != nil {
			return err
		}
		in.env[name.raw] = v
		in.logger.Debug("Bound", slog.String("name", name.raw), slog.String("type", TypeOf(v)))
		return nil
	}

	_, err = in.call(ctx, tokens)
	return err
}

func (in *Interp) call(ctx context.Context, tokens []token) (Value, error) {
	head := tokens[0]
	if head.quoted {
		return nil, fmt.Errorf("%w: expected function, got string", ErrSyntax)
	}
	rest := tokens[1:]

	switch head.raw {
	case "sleep":
		return nil, in.sleep(ctx, rest)
	case "unset":
		for _, t := range rest {
			delete(in.env, t.raw)
		}
		return nil, nil
	case "gc":
		in.Collect()
		return nil, nil
	case "print":
		args, err := in.eval(rest)
		if err != nil {
			return nil, err
		}
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = Format(a)
		}
		fmt.Fprintln(in.out, strings.Join(parts, " "))
		return nil, nil
	}

	if recv, method, ok := strings.Cut(head.raw, "."); ok {
		v, bound := in.env[recv]
		if !bound {
			return nil, fmt.Errorf("%w: %s", ErrUnbound, recv)
		}
		ref, isRef := v.(foreign.Ref)
		if !isRef {
			return nil, fmt.Errorf("%w: %s has no methods", ErrUnknownMethod, TypeOf(v))
		}
		d, registered := foreign.Lookup(ref.TypeName())
		if !registered || d != ref.TypeDescriptor() {
			return nil, fmt.Errorf("%w: %s is not a registered type", ErrUnknownMethod, ref.TypeName())
		}
		fn, found := in.mod.Methods[d.TypeName()][method]
		if !found {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, d.TypeName(), method)
		}
		args, err := in.eval(rest)
		if err != nil {
			return nil, err
		}
		return in.result(fn(append([]Value{ref}, args...)))
	}

	if fn, found := in.mod.Funcs[head.raw]; found {
		args, err := in.eval(rest)
		if err != nil {
			return nil, err
		}
		return in.result(fn(args))
	}

	if len(rest) == 0 {
		args, err := in.eval(tokens)
		if err != nil {
			return nil, err
		}
		return args[0], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFunc, head.raw)
}

func (in *Interp) result(v Value, err error) (Value, error) {
	if r, ok := v.(foreign.Ref); ok {
		in.heap.Track(r)
	}
	return v, err
}

func (in *Interp) sleep(ctx context.Context, args []token) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: sleep takes a duration", ErrArity)
	}
	d, err := time.ParseDuration(args[0].raw)
	if err != nil {
		secs, nerr := strconv.ParseFloat(args[0].raw, 64)
		if nerr != nil {
			return fmt.Errorf("%w: bad duration %q", ErrArgument, args[0].raw)
		}
		d = time.Duration(secs * float64(time.Second))
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// eval resolves argument tokens to values.
func (in *Interp) eval(tokens []token) ([]Value, error) {
	args := make([]Value, 0, len(tokens))
	for _, t := range tokens {
		switch {
		case t.quoted:
			args = append(args, t.raw)
		case t.raw == "nil":
			args = append(args, nil)
		case t.raw == "true" || t.raw == "false":
			args = append(args, t.raw == "true")
		default:
			if n, err := strconv.ParseFloat(t.raw, 64); err == nil {
				args = append(args, n)
				continue
			}
			v, ok := in.env[t.raw]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnbound, t.raw)
			}
			args = append(args, v)
		}
	}
	return args, nil
}

type token struct {
	raw    string
	quoted bool
}

func tokenize(line string) ([]token, error) {
	var tokens []token
	for {
		line = strings.TrimLeftFunc(line, unicode.IsSpace)
		if line == "" || line[0] == '#' {
			return tokens, nil
		}
		if line[0] == '"' {
			quoted, err := strconv.QuotedPrefix(line)
			if err != nil {
				return nil, fmt.Errorf("%w: unterminated string", ErrSyntax)
			}
			s, err := strconv.Unquote(quoted)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
			}
			tokens = append(tokens, token{raw: s, quoted: true})
			line = line[len(quoted):]
			continue
		}
		end := strings.IndexFunc(line, unicode.IsSpace)
		if end < 0 {
			end = len(line)
		}
		tokens = append(tokens, token{raw: line[:end]})
		line = line[end:]
	}
}

func isIdent(s string) bool {
	for i, r := range s {
		if !(unicode.IsLetter(r) || r == '_' || r == '-' || (i > 0 && unicode.IsDigit(r))) {
			return false
		}
	}
	return s != ""
}
