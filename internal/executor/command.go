// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

package executor

import (
	"strings"

	"github.com/offen/obsutil-adapter/internal/errwrap"
	"mvdan.cc/sh/v3/syntax"
)

type token struct {
	value string
	op    bool
}

// Command is a shell command line assembled from words. Every word added
// through New or Arg is quoted on its own when the line is rendered, so
// values like paths can never introduce shell syntax. Operators such as
// pipes or redirections are only added through Op.
type Command struct {
	tokens []token
}

// New creates a command invoking name with the given arguments.
func New(name string, args ...string) *Command {
	return (&Command{}).Arg(name).Arg(args...)
}

// Arg appends the given words.
func (c *Command) Arg(args ...string) *Command {
	for _, a := range args {
		c.tokens = append(c.tokens, token{value: a})
	}
	return c
}

// Op appends the given shell operators or parameter expansions verbatim.
func (c *Command) Op(ops ...string) *Command {
	for _, o := range ops {
		c.tokens = append(c.tokens, token{value: o, op: true})
	}
	return c
}

// Line renders the command as a single POSIX shell line.
func (c *Command) Line() (string, error) {
	if len(c.tokens) == 0 {
		return "", errwrap.Wrap(nil, "received unexpected empty command")
	}
	parts := make([]string, 0, len(c.tokens))
	for _, t := range c.tokens {
		if t.op {
			parts = append(parts, t.value)
			continue
		}
		quoted, err := syntax.Quote(t.value, syntax.LangPOSIX)
		if err != nil {
			return "", errwrap.Wrapf(err, "error quoting `%s`", t.value)
		}
		parts = append(parts, quoted)
	}
	return strings.Join(parts, " "), nil
}

// String returns the rendered line, or the unquoted words in case the line
// cannot be rendered. It is meant for logging.
func (c *Command) String() string {
	line, err := c.Line()
	if err == nil {
		return line
	}
	parts := make([]string, 0, len(c.tokens))
	for _, t := range c.tokens {
		parts = append(parts, t.value)
	}
	return strings.Join(parts, " ")
}

// Words returns the words of the command without any operators.
func (c *Command) Words() []string {
	var words []string
	for _, t := range c.tokens {
		if !t.op {
			words = append(words, t.value)
		}
	}
	return words
}
