package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const dayFileLayout = "2006-01-02"

// NoteVault is the per-day record collaborator: one note per calendar
// day, with named fields the engine reads and writes. Notes are referred
// to by an opaque ref (for the file-backed vault, the file path).
type NoteVault interface {
	GetOrCreate(day time.Time) (string, error)
	ReadField(note, key string) (string, error)
	WriteField(note, key, value string) error
	Days() ([]time.Time, error)
}

// DailyNoteVault keeps one markdown note per day in a directory, with
// fields stored in YAML frontmatter. The note body below the frontmatter
// belongs to the user and is preserved on every field write.
type DailyNoteVault struct {
	dir     string
	enabled bool
}

func NewDailyNoteVault(dir string, enabled bool) *DailyNoteVault {
	return &DailyNoteVault{dir: dir, enabled: enabled}
}

func (v *DailyNoteVault) notePath(day time.Time) string {
	return filepath.Join(v.dir, day.Format(dayFileLayout)+".md")
}

func (v *DailyNoteVault) GetOrCreate(day time.Time) (string, error) {
	if !v.enabled {
		return "", ErrDailyNotesDisabled
	}
	path := v.notePath(day)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %v", ErrNoteNotCreatable, err)
	}
	if err := os.MkdirAll(v.dir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoteNotCreatable, err)
	}
	if err := os.WriteFile(path, []byte("---\n---\n"), 0644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoteNotCreatable, err)
	}
	return path, nil
}

func (v *DailyNoteVault) ReadField(note, key string) (string, error) {
	data, err := os.ReadFile(note)
	if err != nil {
		return "", err
	}
	fields, _, err := splitFrontmatter(string(data))
	if err != nil {
		return "", err
	}
	val, ok := fields[key]
	if !ok {
		return "", nil
	}
	s, ok := val.(string)
	if !ok {
		return fmt.Sprintf("%v", val), nil
	}
	return s, nil
}

func (v *DailyNoteVault) WriteField(note, key, value string) error {
	data, err := os.ReadFile(note)
	if err != nil {
		return err
	}
	fields, body, err := splitFrontmatter(string(data))
	if err != nil {
		return err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	if value == "" {
		delete(fields, key)
	} else {
		fields[key] = value
	}

	var out strings.Builder
	out.WriteString("---\n")
	if len(fields) > 0 {
		encoded, err := yaml.Marshal(fields)
		if err != nil {
			return err
		}
		out.Write(encoded)
	}
	out.WriteString("---\n")
	out.WriteString(body)
	return os.WriteFile(note, []byte(out.String()), 0644)
}

func (v *DailyNoteVault) Days() ([]time.Time, error) {
	if !v.enabled {
		return nil, ErrDailyNotesDisabled
	}
	dirEntries, err := os.ReadDir(v.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var days []time.Time
	for _, de := range dirEntries {
		name := strings.TrimSuffix(de.Name(), ".md")
		if name == de.Name() {
			continue
		}
		day, err := time.ParseInLocation(dayFileLayout, name, time.Local)
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	return days, nil
}

// splitFrontmatter separates a note into its YAML frontmatter fields and
// the remaining body. A note without frontmatter has nil fields and the
// whole content as body.
func splitFrontmatter(content string) (map[string]any, string, error) {
	if !strings.HasPrefix(content, "---\n") {
		return nil, content, nil
	}
	rest := content[len("---\n"):]
	end := strings.Index(rest, "\n---")
	var block, body string
	if strings.HasPrefix(rest, "---\n") {
		// Empty frontmatter.
		block, body = "", rest[len("---\n"):]
	} else if end < 0 {
		return nil, content, nil
	} else {
		block = rest[:end]
		body = rest[end+len("\n---"):]
		body = strings.TrimPrefix(body, "\n")
	}

	fields := map[string]any{}
	if block != "" {
		if err := yaml.Unmarshal([]byte(block), &fields); err != nil {
			return nil, "", fmt.Errorf("parsing note frontmatter: %w", err)
		}
	}
	return fields, body, nil
}
