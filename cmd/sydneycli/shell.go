/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nabbar/sydney-client/client"
	"github.com/nabbar/sydney-client/logger"
	"github.com/nabbar/sydney-client/wire"
)

var replCommands = []string{".quit", ".exit", ".cancel", ".help"}

func newShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "open an interactive SQL shell against --address",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell()
		},
	}
}

type shell struct {
	ds  *client.DataSource
	sess *client.Session
	rs   *client.ResultSet // in-flight statement, for ".cancel"
}

func runShell() error {
	log := logger.NewNop()
	ds, err := openDataSource(log)
	if err != nil {
		return err
	}
	defer func() { _ = ds.Close() }()

	sess, err := openShellSession(ds)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	sh := &shell{ds: ds, sess: sess}
	_, _ = okColor.Fprintf(stdout, "connected to %s, session %d. Type .help for commands.\n", flagAddress, sess.ID())

	prompt.New(
		sh.execute,
		sh.complete,
		prompt.OptionPrefix("sydney> "),
		prompt.OptionTitle("sydneycli"),
	).Run()
	return nil
}

// openShellSession prompts for a password on stdin when --user is set and
// the terminal supports hidden input, mirroring the teacher's PromptString
// idiom but with masked echo.
func openShellSession(ds *client.DataSource) (*client.Session, error) {
	if flagUser == "" {
		return ds.CreateSession(context.Background(), flagDatabase)
	}

	password, err := readPassword(fmt.Sprintf("password for %s", flagUser))
	if err != nil {
		return nil, err
	}
	return ds.CreateSession(context.Background(), flagDatabase, flagUser, password)
}

func readPassword(label string) (string, error) {
	_, _ = fmt.Fprintf(stdout, "%s: ", label)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		_, _ = fmt.Fprintln(stdout)
		return string(b), err
	}
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text(), scanner.Err()
	}
	return "", scanner.Err()
}

func (sh *shell) complete(d prompt.Document) []prompt.Suggest {
	var suggestions []prompt.Suggest
	for _, c := range replCommands {
		suggestions = append(suggestions, prompt.Suggest{Text: c})
	}
	return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), true)
}

func (sh *shell) execute(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	switch line {
	case ".quit", ".exit":
		os.Exit(0)
	case ".cancel":
		sh.handleCancel()
		return
	case ".help":
		_, _ = fmt.Fprintln(stdout, "enter a SQL statement, or one of: .cancel, .quit/.exit, .help")
		return
	}

	sh.runStatement(line)
}

func (sh *shell) handleCancel() {
	if sh.rs == nil {
		_, _ = fmt.Fprintln(stdout, "nothing in flight")
		return
	}
	if err := sh.rs.Cancel(); err != nil {
		_, _ = errColor.Fprintln(stderr, err.Error())
	}
	sh.rs = nil
}

func (sh *shell) runStatement(sql string) {
	rs, err := sh.sess.ExecuteStatement(context.Background(), sql, nil)
	if err != nil {
		_, _ = errColor.Fprintln(stderr, err.Error())
		return
	}
	sh.rs = rs
	defer func() { sh.rs = nil }()

	renderResultSet(rs)
}

// renderResultSet drains rs, building a tablewriter table once column
// metadata arrives and appending each row as it streams in.
func renderResultSet(rs *client.ResultSet) {
	var (
		table *tablewriter.Table
		rows  int
	)

	for {
		tuple, ok, err := rs.Next()
		if err != nil {
			_, _ = errColor.Fprintln(stderr, err.Error())
			return
		}
		if !ok {
			break
		}
		if table == nil {
			if meta := rs.MetaData(); meta != nil {
				table = newResultTable(meta)
			}
		}
		if tuple == nil {
			continue
		}
		if table != nil {
			table.Append(rowToStrings(tuple))
		}
		rows++
	}

	if table != nil {
		table.Render()
	}

	switch rs.State() {
	case client.StateSuccess:
		_, _ = okColor.Fprintf(stdout, "%d row(s)\n", rows)
	case client.StateCanceled:
		_, _ = fmt.Fprintln(stdout, "canceled")
	case client.StateError:
		_, _ = errColor.Fprintln(stderr, "statement failed")
	}
}

func newResultTable(meta *wire.ResultSetMetaData) *tablewriter.Table {
	t := tablewriter.NewWriter(stdout)
	headers := make([]string, 0, len(meta.Columns))
	for _, c := range meta.Columns {
		headers = append(headers, c.Name)
	}
	t.SetHeader(headers)
	return t
}

func rowToStrings(tuple *wire.DataArrayData) []string {
	out := make([]string, 0, len(tuple.Value))
	for _, col := range tuple.Value {
		out = append(out, string(col))
	}
	return out
}
