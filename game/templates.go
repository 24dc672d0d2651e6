package game

import (
	"fmt"
	"strings"
	"text/template"
)

// TemplateConfig holds the raw template strings for every outbound game
// message. Empty fields fall back to the defaults.
type TemplateConfig struct {
	Question        string `env:"TEMPLATE_QUESTION"`
	RestartQuestion string `env:"TEMPLATE_RESTART_QUESTION"`
	Hint            string `env:"TEMPLATE_HINT"`
	TimeLeft        string `env:"TEMPLATE_TIME"`
	Correct         string `env:"TEMPLATE_CORRECT"`
	RestartCorrect  string `env:"TEMPLATE_RESTART_CORRECT"`
	Skip            string `env:"TEMPLATE_SKIP"`
	Stop            string `env:"TEMPLATE_STOP"`
}

const (
	defaultQuestion = `[{{.Number}}/{{.Total}}] {{.Category}} for {{.Points}}: {{.Clue}}`
	defaultHint     = `HINT: {{.Hint}}{{if .Points}} [now worth {{.Points}}]{{end}}{{if .Time}} ({{.Time}}s left){{end}}`
	defaultTimeLeft = `{{.Time}} seconds remaining!`
	defaultCorrect  = `{{.Nick}} got it! The answer was: {{.Answer}}. Points: {{.Points}} | Round: {{.Round}} | Total: {{.Total}}`
	defaultSkip     = `The answer was: {{.Answer}}`
	defaultStop     = `Trivia stopped.{{if .Answer}} The answer was: {{.Answer}}{{end}}`
)

// QuestionData is the named-field context for question messages.
type QuestionData struct {
	Points  int
	Number  int
	Total   int
	Category string
	Clue    string
}

// HintData is the named-field context for hint messages. Points is nil until
// a reveal has reduced the question's value; Time is empty when no timeout
// is configured.
type HintData struct {
	Hint     string
	Time     string
	Points   *int
	HintNum  int
	NumHints int
}

// CorrectData is the named-field context for correct-answer messages.
type CorrectData struct {
	Nick   string
	Answer string
	Points int
	Round  int
	Total  int
}

// Templates renders every outbound game message.
type Templates struct {
	question        *template.Template
	restartQuestion *template.Template
	hint            *template.Template
	timeLeft        *template.Template
	correct         *template.Template
	restartCorrect  *template.Template
	skip            *template.Template
	stop            *template.Template
}

func ParseTemplates(cfg TemplateConfig) (*Templates, error) {
	t := &Templates{}
	for _, entry := range []struct {
		name     string
		raw      string
		fallback string
		dst      **template.Template
	}{
		{"question", cfg.Question, defaultQuestion, &t.question},
		{"restart-question", cfg.RestartQuestion, defaultQuestion, &t.restartQuestion},
		{"hint", cfg.Hint, defaultHint, &t.hint},
		{"time", cfg.TimeLeft, defaultTimeLeft, &t.timeLeft},
		{"correct", cfg.Correct, defaultCorrect, &t.correct},
		{"restart-correct", cfg.RestartCorrect, defaultCorrect, &t.restartCorrect},
		{"skip", cfg.Skip, defaultSkip, &t.skip},
		{"stop", cfg.Stop, defaultStop, &t.stop},
	} {
		raw := entry.raw
		if raw == "" {
			raw = entry.fallback
		}
		parsed, err := template.New(entry.name).Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", entry.name, err)
		}
		*entry.dst = parsed
	}
	return t, nil
}

func (t *Templates) Question(data QuestionData, restarted bool) string {
	if restarted {
		return render(t.restartQuestion, data)
	}
	return render(t.question, data)
}

func (t *Templates) Hint(data HintData) string {
	return render(t.hint, data)
}

func (t *Templates) TimeLeft(seconds int) string {
	return render(t.timeLeft, struct{ Time int }{Time: seconds})
}

func (t *Templates) Correct(data CorrectData, restarted bool) string {
	if restarted {
		return render(t.restartCorrect, data)
	}
	return render(t.correct, data)
}

func (t *Templates) Skip(answer string) string {
	return render(t.skip, struct{ Answer string }{Answer: answer})
}

func (t *Templates) Stop(answer string) string {
	return render(t.stop, struct{ Answer string }{Answer: answer})
}

func render(t *template.Template, data any) string {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return ""
	}
	return b.String()
}
