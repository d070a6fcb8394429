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

// Package config loads the process-wide configurable parameters (pool
// sizing, reaper cadence, transport options) from a TOML file, with live
// reload on file change and struct-tag validation before anything in
// client ever sees a value.
package config

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml"
	"github.com/spf13/viper"

	"github.com/nabbar/sydney-client/client"
)

// Settings is the on-disk/env/flag shape of the configurable-parameters
// table: pool sizing and reaper cadence (consumed by client.Config),
// plus the transport-facing options a server binary built on this
// repository's wire/transport packages would also need.
type Settings struct {
	ConnectionThreshold        int           `mapstructure:"connectionThreshold" validate:"min=1"`
	MaximumConnectionPoolCount int           `mapstructure:"maximumConnectionPoolCount" validate:"min=1"`
	CheckConnectionPoolPeriod  time.Duration `mapstructure:"checkConnectionPoolPeriod" validate:"min=0"`
	TimeUnit                   time.Duration `mapstructure:"timeUnit" validate:"min=0"`
	PortNumber                 int           `mapstructure:"portNumber" validate:"min=0,max=65535"`
	BindHostName               string        `mapstructure:"bindHostName"`
	TcpKeepAlive               bool          `mapstructure:"tcpKeepAlive"`
	Family                     string        `mapstructure:"family" validate:"omitempty,oneof=IPv4 IPv6 default"`
	LogConnectionException     bool          `mapstructure:"logConnectionException"`
}

// DefaultSettings returns the §6 documented defaults.
func DefaultSettings() Settings {
	return Settings{
		ConnectionThreshold:        20,
		MaximumConnectionPoolCount: 10,
		CheckConnectionPoolPeriod:  60 * time.Second,
		TimeUnit:                   500 * time.Millisecond,
		PortNumber:                 0,
		BindHostName:               "",
		TcpKeepAlive:               false,
		Family:                     "default",
		LogConnectionException:     true,
	}
}

// ToClientConfig projects the subset of Settings that client.DataSource
// actually consumes.
func (s Settings) ToClientConfig() client.Config {
	return client.Config{
		ConnectionThreshold:        s.ConnectionThreshold,
		MaximumConnectionPoolCount: s.MaximumConnectionPoolCount,
		CheckConnectionPoolPeriod:  s.CheckConnectionPoolPeriod,
		TimeUnit:                   s.TimeUnit,
		LogConnectionException:     s.LogConnectionException,
	}
}

var validate = validator.New()

// Validate runs struct-tag validation (port range, Family enum membership).
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errConfigInvalid.Error(err)
	}
	return nil
}

// Loader owns a viper instance bound to one TOML file, re-reading and
// re-validating it on every fsnotify change and keeping the last-known-good
// Settings available via Current without blocking readers on the reload.
type Loader struct {
	v *viper.Viper

	mu       sync.Mutex
	onChange func(Settings)

	cur atomic.Value
}

// NewLoader reads path as TOML, seeded with DefaultSettings for any key the
// file omits, validates the result, and starts watching path for changes.
func NewLoader(path string) (*Loader, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	def := DefaultSettings()
	v.SetDefault("connectionThreshold", def.ConnectionThreshold)
	v.SetDefault("maximumConnectionPoolCount", def.MaximumConnectionPoolCount)
	v.SetDefault("checkConnectionPoolPeriod", def.CheckConnectionPoolPeriod)
	v.SetDefault("timeUnit", def.TimeUnit)
	v.SetDefault("portNumber", def.PortNumber)
	v.SetDefault("bindHostName", def.BindHostName)
	v.SetDefault("tcpKeepAlive", def.TcpKeepAlive)
	v.SetDefault("family", def.Family)
	v.SetDefault("logConnectionException", def.LogConnectionException)

	if err := v.ReadInConfig(); err != nil {
		return nil, errConfigRead.Error(err)
	}

	l := &Loader{v: v}
	if err := l.reload(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(fsnotify.Event) {
		_ = l.reload()
	})
	v.WatchConfig()

	return l, nil
}

func (l *Loader) reload() error {
	var s Settings
	if err := l.v.Unmarshal(&s); err != nil {
		return errConfigInvalid.Error(err)
	}
	if err := s.Validate(); err != nil {
		return err
	}

	l.cur.Store(s)

	l.mu.Lock()
	cb := l.onChange
	l.mu.Unlock()
	if cb != nil {
		cb(s)
	}
	return nil
}

// Current returns the last successfully validated Settings.
func (l *Loader) Current() Settings {
	return l.cur.Load().(Settings)
}

// OnChange registers fn to run after every successful reload. Only one
// callback is kept; registering again replaces it.
func (l *Loader) OnChange(fn func(Settings)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
}

// WriteDefaultConfig serializes DefaultSettings as TOML, for a first-run
// "write me a starter config file" command.
func WriteDefaultConfig(w io.Writer) error {
	def := DefaultSettings()
	tree, err := toml.TreeFromMap(map[string]interface{}{
		"connectionThreshold":        def.ConnectionThreshold,
		"maximumConnectionPoolCount": def.MaximumConnectionPoolCount,
		"checkConnectionPoolPeriod":  def.CheckConnectionPoolPeriod.String(),
		"timeUnit":                   def.TimeUnit.String(),
		"portNumber":                 def.PortNumber,
		"bindHostName":               def.BindHostName,
		"tcpKeepAlive":               def.TcpKeepAlive,
		"family":                     def.Family,
		"logConnectionException":     def.LogConnectionException,
	})
	if err != nil {
		return errConfigInvalid.Error(err)
	}
	_, err = tree.WriteTo(w)
	if err != nil {
		return errConfig.Error(err)
	}
	return nil
}
