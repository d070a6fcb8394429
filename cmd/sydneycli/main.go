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

// Command sydneycli is an interactive shell and one-shot query runner built
// on this module's client package: connect, open a session, run statements,
// render result sets.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
	"github.com/spf13/cobra"

	"github.com/nabbar/sydney-client/client"
	"github.com/nabbar/sydney-client/config"
	"github.com/nabbar/sydney-client/logger"
)

var (
	flagConfigFile string
	flagAddress    string
	flagDatabase   string
	flagUser       string

	stdout = colorable.NewColorableStdout()
	stderr = colorable.NewColorableStderr()

	errColor = color.New(color.FgRed, color.Bold)
	okColor  = color.New(color.FgGreen)
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		_, _ = errColor.Fprintln(stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "sydneycli",
		Short:         "interactive shell for a Sydney-protocol server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagConfigFile, "config", "", "path to a TOML configuration file")
	root.PersistentFlags().StringVar(&flagAddress, "address", "127.0.0.1:50000", "server address host:port")
	root.PersistentFlags().StringVar(&flagDatabase, "database", "", "database name to open a session against")
	root.PersistentFlags().StringVar(&flagUser, "user", "", "user name; prompts for password if set")

	root.AddCommand(newShellCommand())
	root.AddCommand(newConfigInitCommand())
	return root
}

func loadClientConfig() client.Config {
	if flagConfigFile == "" {
		return client.DefaultConfig()
	}
	l, err := config.NewLoader(flagConfigFile)
	if err != nil {
		_, _ = errColor.Fprintf(stderr, "failed to load %s, falling back to defaults: %v\n", flagConfigFile, err)
		return client.DefaultConfig()
	}
	return l.Current().ToClientConfig()
}

func newConfigInitCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "config-init",
		Short: "write a starter TOML configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			return config.WriteDefaultConfig(f)
		},
	}
	cmd.Flags().StringVar(&out, "out", "sydney.toml", "output file path")
	return cmd
}

func openDataSource(log logger.Logger) (*client.DataSource, error) {
	ds := client.NewRemoteDataSource(flagAddress, 30*time.Second, loadClientConfig(), log)
	if err := ds.Open(context.Background(), 0); err != nil {
		return nil, fmt.Errorf("connect %s: %w", flagAddress, err)
	}
	return ds, nil
}
