// Package shell implements the line-oriented interactive control surface
// of spec §6.2: a bufio.Scanner loop over stdin dispatching whitespace-
// separated commands to the catalog, validator, normalform, keys, closure
// and normalizer packages, modeled on the distilled original's cmd.Cmd
// shell and the teacher's per-command try/except error rendering.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fdengine/fdengine/catalog"
	"github.com/fdengine/fdengine/closure"
	"github.com/fdengine/fdengine/keys"
	"github.com/fdengine/fdengine/model"
	"github.com/fdengine/fdengine/normalform"
	"github.com/fdengine/fdengine/normalizer"
	"github.com/fdengine/fdengine/store"
	"github.com/fdengine/fdengine/validator"
)

// ConnectFunc opens a store for the named database, using whatever driver
// and host/port/credentials the CLI entrypoint captured at startup.
type ConnectFunc func(ctx context.Context, dbName string) (store.Store, error)

// NormalizeTarget opens the fixed output store (spec §6.3) for the active
// driver; the shell commits the decomposition into it and closes it.
type NormalizeTarget func(ctx context.Context) (store.Store, error)

// Shell runs the interactive loop. It holds at most one live store
// connection at a time (spec §5: a single connection for the session).
type Shell struct {
	in      *bufio.Scanner
	out     io.Writer
	connect ConnectFunc
	openOut NormalizeTarget
	log     *slog.Logger

	st  store.Store
	cat *catalog.Manager
	db  string
}

func New(in io.Reader, out io.Writer, connect ConnectFunc, openOut NormalizeTarget, log *slog.Logger) *Shell {
	return &Shell{
		in:      bufio.NewScanner(in),
		out:     out,
		connect: connect,
		openOut: openOut,
		log:     log,
	}
}

func (s *Shell) prompt() string {
	if s.st != nil {
		return fmt.Sprintf("(%s) >> ", s.db)
	}
	return ">> "
}

// Run drives the read-eval-print loop until EOF or an "exit" command.
func (s *Shell) Run(ctx context.Context) error {
	for {
		fmt.Fprint(s.out, s.prompt())
		if !s.in.Scan() {
			return s.in.Err()
		}
		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}
		if s.Dispatch(ctx, line) {
			return nil
		}
	}
}

// Dispatch runs a single command line, reporting true if the shell should
// stop, which only the "exit" command does.
func (s *Shell) Dispatch(ctx context.Context, line string) bool {
	args := strings.Fields(line)
	cmd, rest := args[0], args[1:]

	var err error
	stop := false

	switch cmd {
	case "connect":
		err = s.cmdConnect(ctx, rest)
	case "disconnect":
		err = s.cmdDisconnect()
	case "tables":
		err = s.cmdTables(ctx)
	case "fields":
		err = s.cmdFields(ctx, rest)
	case "list":
		err = s.cmdList(ctx, rest)
	case "add":
		err = s.cmdAdd(ctx, rest)
	case "del":
		err = s.cmdDel(ctx, rest)
	case "check":
		err = s.cmdCheck(ctx, rest)
	case "purge":
		err = s.cmdPurge(ctx)
	case "clean":
		err = s.cmdClean(ctx)
	case "closure":
		err = s.cmdClosure(ctx, rest)
	case "key":
		err = s.cmdKey(ctx, rest)
	case "super_key":
		err = s.cmdSuperKey(ctx, rest)
	case "3nf":
		err = s.cmdClassify(ctx, true)
	case "bcnf":
		err = s.cmdClassify(ctx, false)
	case "normalize":
		err = s.cmdNormalize(ctx)
	case "exit":
		s.cmdDisconnect()
		stop = true
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		fmt.Fprintf(s.out, "ERROR: %s\n", err)
	}
	return stop
}

func (s *Shell) requireConnection() error {
	if s.st == nil {
		return errors.New("not connected — use connect first")
	}
	return nil
}

func (s *Shell) cmdConnect(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: connect db_name")
	}
	if s.st != nil {
		if err := s.st.Close(); err != nil {
			return err
		}
	}
	st, err := s.connect(ctx, args[0])
	if err != nil {
		return err
	}
	s.st = st
	s.cat = catalog.New(st)
	s.db = args[0]
	s.log.Info("connected", "db", args[0])
	return nil
}

func (s *Shell) cmdDisconnect() error {
	if s.st == nil {
		return nil
	}
	err := s.st.Close()
	s.st, s.cat, s.db = nil, nil, ""
	return err
}

func (s *Shell) cmdTables(ctx context.Context) error {
	if err := s.requireConnection(); err != nil {
		return err
	}
	tables, err := s.st.Tables(ctx, false)
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Fprintln(s.out, t)
	}
	return nil
}

func (s *Shell) cmdFields(ctx context.Context, args []string) error {
	if err := s.requireConnection(); err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("usage: fields T")
	}
	cols, err := s.st.Columns(ctx, args[0])
	if err != nil {
		return err
	}
	for _, c := range cols {
		fmt.Fprintf(s.out, "%s %s\n", c.Name, c.DeclaredType)
	}
	return nil
}

func (s *Shell) cmdList(ctx context.Context, args []string) error {
	if err := s.requireConnection(); err != nil {
		return err
	}
	var fds []model.FD
	var err error
	if len(args) == 1 {
		fds, err = s.cat.ListFor(ctx, args[0])
	} else {
		fds, err = s.cat.List(ctx)
	}
	if err != nil {
		return err
	}
	for _, fd := range fds {
		fmt.Fprintf(s.out, "%s: %s -> %s\n", fd.Table, fd.LHSString(), fd.RHS)
	}
	return nil
}

func (s *Shell) cmdAdd(ctx context.Context, args []string) error {
	if err := s.requireConnection(); err != nil {
		return err
	}
	table, lhs, rhs, err := parseFDArgs(args)
	if err != nil {
		return err
	}
	return s.cat.Add(ctx, table, lhs, rhs)
}

func (s *Shell) cmdDel(ctx context.Context, args []string) error {
	if err := s.requireConnection(); err != nil {
		return err
	}
	table, lhs, rhs, err := parseFDArgs(args)
	if err != nil {
		return err
	}
	return s.cat.Delete(ctx, table, lhs, rhs)
}

func parseFDArgs(args []string) (table string, lhs []model.Attribute, rhs model.Attribute, err error) {
	if len(args) < 3 {
		return "", nil, "", errors.New("usage: T lhs... rhs")
	}
	table = args[0]
	last := args[len(args)-1]
	for _, a := range args[1 : len(args)-1] {
		lhs = append(lhs, model.Attribute(a))
	}
	rhs = model.Attribute(last)
	return table, lhs, rhs, nil
}

func (s *Shell) cmdCheck(ctx context.Context, args []string) error {
	if err := s.requireConnection(); err != nil {
		return err
	}
	var fds []model.FD
	var err error
	if len(args) == 1 {
		fds, err = s.cat.ListFor(ctx, args[0])
	} else {
		fds, err = s.cat.List(ctx)
	}
	if err != nil {
		return err
	}

	violations, err := validator.ValidateAll(ctx, s.st, fds, 4)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		fmt.Fprintln(s.out, "all FDs hold")
		return nil
	}
	for _, v := range violations {
		fmt.Fprintf(s.out, "VIOLATED: %s: %s -> %s (%d conflicting rows)\n",
			v.FD.Table, v.FD.LHSString(), v.FD.RHS, len(v.Rows))
	}
	return nil
}

func (s *Shell) cmdPurge(ctx context.Context) error {
	if err := s.requireConnection(); err != nil {
		return err
	}
	return s.cat.Purge(ctx)
}

func (s *Shell) cmdClean(ctx context.Context) error {
	if err := s.requireConnection(); err != nil {
		return err
	}
	return s.cat.Clean(ctx)
}

func (s *Shell) cmdClosure(ctx context.Context, args []string) error {
	if err := s.requireConnection(); err != nil {
		return err
	}
	if len(args) < 2 {
		return errors.New("usage: closure T a...")
	}
	table := args[0]
	u, fds, err := s.tableUniverseAndFDs(ctx, table)
	if err != nil {
		return err
	}
	x := model.NewSet(u, toAttributes(args[1:])...)
	result := closure.Closure(x, fds)
	fmt.Fprintln(s.out, result.String())
	return nil
}

func (s *Shell) cmdKey(ctx context.Context, args []string) error {
	if err := s.requireConnection(); err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("usage: key T")
	}
	u, fds, err := s.tableUniverseAndFDs(ctx, args[0])
	if err != nil {
		return err
	}
	for _, k := range keys.CandidateKeys(u, fds) {
		fmt.Fprintln(s.out, k.String())
	}
	return nil
}

func (s *Shell) cmdSuperKey(ctx context.Context, args []string) error {
	if err := s.requireConnection(); err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("usage: super_key T")
	}
	u, fds, err := s.tableUniverseAndFDs(ctx, args[0])
	if err != nil {
		return err
	}
	for _, k := range keys.Superkeys(u, fds) {
		fmt.Fprintln(s.out, k.String())
	}
	return nil
}

func (s *Shell) cmdClassify(ctx context.Context, threeNF bool) error {
	if err := s.requireConnection(); err != nil {
		return err
	}
	tables, err := s.st.Tables(ctx, false)
	if err != nil {
		return err
	}
	for _, table := range tables {
		u, fds, err := s.tableUniverseAndFDs(ctx, table)
		if err != nil {
			return err
		}
		c := normalform.Classify(u, fds)
		if threeNF {
			if c.IsTNF() {
				fmt.Fprintf(s.out, "%s: 3NF\n", table)
			} else {
				fmt.Fprintf(s.out, "%s: NOT 3NF (%d violations)\n", table, len(c.TNFViolations))
			}
		} else {
			if c.IsBCNF() {
				fmt.Fprintf(s.out, "%s: BCNF\n", table)
			} else {
				fmt.Fprintf(s.out, "%s: NOT BCNF (%d violations)\n", table, len(c.BCNFViolations))
			}
		}
	}
	return nil
}

func (s *Shell) cmdNormalize(ctx context.Context) error {
	if err := s.requireConnection(); err != nil {
		return err
	}
	dst, err := s.openOut(ctx)
	if err != nil {
		return err
	}
	defer dst.Close()

	if err := normalizer.Normalize(ctx, s.st, dst); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "normalized database written")
	return nil
}

func (s *Shell) tableUniverseAndFDs(ctx context.Context, table string) (*model.Universe, []model.FD, error) {
	cols, err := s.st.Columns(ctx, table)
	if err != nil {
		return nil, nil, err
	}
	fds, err := s.cat.ListFor(ctx, table)
	if err != nil {
		return nil, nil, err
	}
	return model.TableSchema{Name: table, Columns: cols}.Universe(), fds, nil
}

func toAttributes(tokens []string) []model.Attribute {
	out := make([]model.Attribute, len(tokens))
	for i, t := range tokens {
		out[i] = model.Attribute(t)
	}
	return out
}

// RunScript executes each line of a command file non-interactively,
// echoing the prompt and line the way the teacher's -f script flag drives
// a batch of DDL statements.
func RunScript(ctx context.Context, s *Shell, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fmt.Fprintf(s.out, "%s%s\n", s.prompt(), line)
		if s.Dispatch(ctx, line) {
			return nil
		}
	}
	return scanner.Err()
}
