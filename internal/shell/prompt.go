package shell

import (
	"strings"

	prompt "github.com/c-bata/go-prompt"
)

// Run starts the interactive prompt and blocks until the user exits with
// exit, quit or Ctrl-D.
func (s *Shell) Run() {
	s.log.Info("shell started", "cap", s.svc.Store().Cap(), "overwrite", s.svc.Store().Overwrite())

	p := prompt.New(
		s.executor,
		s.Complete,
		prompt.OptionTitle("sensorring"),
		prompt.OptionPrefix("sensorring> "),
		prompt.OptionPrefixTextColor(prompt.Green),
		prompt.OptionMaxSuggestion(8),
		prompt.OptionSetExitCheckerOnInput(s.exitChecker),
	)
	p.Run()

	s.log.Info("shell stopped", "len", s.svc.Store().Len())
}

func (s *Shell) executor(line string) {
	s.Exec(line)
}

func (s *Shell) exitChecker(in string, breakline bool) bool {
	return breakline && s.exited
}

var (
	sensorSuggestions = []prompt.Suggest{
		{Text: "GPS,", Description: "GPS,<lon>,<lat>"},
		{Text: "TEL,", Description: "TEL,<battery 0-100>"},
		{Text: "SET,", Description: "SET,<on|off>,<rate 1+>"},
	}
	resizeSuggestions = []prompt.Suggest{
		{Text: "overwrite", Description: "discard the oldest records if they do not fit"},
	}
)

// Complete returns suggestions for the word under the cursor: command names
// and record tokens for the first word, record tokens after push and the
// overwrite keyword after a resize capacity.
func (s *Shell) Complete(d prompt.Document) []prompt.Suggest {
	word := d.GetWordBeforeCursor()
	fields := strings.Fields(d.TextBeforeCursor())

	// Still typing the first word.
	if len(fields) == 0 || (len(fields) == 1 && word != "") {
		return prompt.FilterHasPrefix(append(commandSuggestions(), sensorSuggestions...), word, true)
	}

	switch strings.ToLower(fields[0]) {
	case "push":
		if len(fields) == 1 || (len(fields) == 2 && word != "") {
			return prompt.FilterHasPrefix(sensorSuggestions, word, true)
		}
	case "resize":
		if (len(fields) == 2 && word == "") || (len(fields) == 3 && word != "") {
			return prompt.FilterHasPrefix(resizeSuggestions, word, true)
		}
	}
	return nil
}

func commandSuggestions() []prompt.Suggest {
	out := make([]prompt.Suggest, 0, len(commands))
	for _, c := range commands {
		out = append(out, prompt.Suggest{Text: c.name, Description: c.summary})
	}
	return out
}
