package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/longkey1/clippyai/internal/clippy"
)

// Builder turns classified input and conversation context into the text sent
// to the model. Building is pure string formatting and cannot fail.
type Builder struct {
	templates map[string]Prompt
	sources   map[string]string
}

// TemplateInfo describes where a template comes from.
type TemplateInfo struct {
	Name   string
	Source string // "built-in" or the override file path
}

// NewBuilder returns a Builder using the built-in templates.
func NewBuilder() *Builder {
	b := &Builder{
		templates: make(map[string]Prompt, len(defaultTemplates)),
		sources:   make(map[string]string, len(defaultTemplates)),
	}
	for name, p := range defaultTemplates {
		b.templates[name] = p
		b.sources[name] = "built-in"
	}
	return b
}

// LoadBuilder returns a Builder whose templates are overridden by
// "<name>.toml" files found in promptDirs. Later directories take precedence.
// Empty system or user fields keep the built-in value.
func LoadBuilder(promptDirs []string) (*Builder, error) {
	b := NewBuilder()
	for _, dir := range promptDirs {
		for name := range defaultTemplates {
			path := filepath.Join(dir, name+".toml")
			if _, err := os.Stat(path); err != nil {
				continue
			}
			p, err := LoadPrompt(path)
			if err != nil {
				return nil, fmt.Errorf("error loading prompt file %s: %w", path, err)
			}
			merged := b.templates[name]
			if strings.TrimSpace(p.System) != "" {
				merged.System = p.System
			}
			if strings.TrimSpace(p.User) != "" {
				merged.User = p.User
			}
			b.templates[name] = merged
			b.sources[name] = path
		}
	}
	return b, nil
}

// BuildInitialPrompt builds the two-part analysis prompt for text in mode.
func (b *Builder) BuildInitialPrompt(text string, mode clippy.Mode) string {
	name := SnippetTemplate
	if mode == clippy.ModeQuestion {
		name = QuestionTemplate
	}
	return b.render(name, map[string]string{"input": text})
}

// BuildFollowupPrompt embeds the role-labeled transcript of contextMessages
// followed by the new user turn.
func (b *Builder) BuildFollowupPrompt(contextMessages []clippy.ContextMessage, newUserText string) string {
	return b.render(FollowupTemplate, map[string]string{
		"context": Transcript(contextMessages),
		"input":   newUserText,
	})
}

// Templates lists the templates in name order with their source.
func (b *Builder) Templates() []TemplateInfo {
	infos := make([]TemplateInfo, 0, len(b.templates))
	for name := range b.templates {
		infos = append(infos, TemplateInfo{Name: name, Source: b.sources[name]})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Transcript renders messages as "Label: content" paragraphs.
func Transcript(messages []clippy.ContextMessage) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role.Label(), m.Content))
	}
	return strings.Join(lines, "\n\n")
}

func (b *Builder) render(name string, replacements map[string]string) string {
	tmpl := b.templates[name]
	oldnew := make([]string, 0, 2*len(replacements))
	for key, value := range replacements {
		oldnew = append(oldnew, fmt.Sprintf("{{%s}}", key), value)
	}
	// Single pass: placeholder text inside substituted values is left as is.
	r := strings.NewReplacer(oldnew...)
	return fmt.Sprintf("System: %s\n\nUser: %s", r.Replace(tmpl.System), r.Replace(tmpl.User))
}
