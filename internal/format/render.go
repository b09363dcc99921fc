package format

import (
	"strings"
)

// lines accumulates the lines of a rendered file.
type lines []string

// add appends a line.
func (l *lines) add(line string) {
	*l = append(*l, line)
}

// description appends a description as "# " comment lines followed by a
// blank line, an empty description adds nothing.
func (l *lines) description(text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}

	for line := range strings.Lines(text) {
		l.add(strings.TrimRight("# "+strings.TrimRight(line, "\r\n"), " "))
	}

	l.add("")
}

// String joins the lines into file contents ending with a newline.
func (l lines) String() string {
	return strings.Join(l, "\n") + "\n"
}

// continuation is the shell line continuation marker.
const continuation = " \\"

// script accumulates the lines of a shell script, every argument line is
// indented and continued onto the next.
type script struct {
	lines
}

// newScript starts a script with a shebang and the request description.
func newScript(description string) *script {
	s := &script{}
	s.add("#!/bin/sh")
	s.description(description)

	return s
}

// command appends a command line, continued.
func (s *script) command(cmd string) {
	s.add(cmd + continuation)
}

// arg appends an indented argument line, continued.
func (s *script) arg(arg string) {
	s.add("\t" + arg + continuation)
}

// String strips the continuation from the final line and returns the script.
func (s *script) String() string {
	if n := len(s.lines); n > 0 {
		s.lines[n-1] = strings.TrimSuffix(s.lines[n-1], continuation)
	}

	return s.lines.String()
}

// quote single quotes s for the shell.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// shellMeta are the characters that make an unquoted word unsafe in a shell.
const shellMeta = " \t\n'\"`$&|;<>()\\*?[]#~!{}"

// quoteURL quotes a URL only if it would not survive the shell as a bare word.
func quoteURL(url string) string {
	if url == "" || strings.ContainsAny(url, shellMeta) {
		return quote(url)
	}

	return url
}
