package contracts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Типы и версии событий, как они передаются в заголовках event-type / event-version
const (
	EventIndexRefreshRequested = "IndexRefreshRequestedEvent"
	EventStreetIndexRefreshed  = "StreetIndexRefreshedEvent"
	EventVersionV1             = "1.0.0"
)

//go:embed schemas/events
var schemasFS embed.FS

var (
	compileOnce     sync.Once
	compiledSchemas map[string]*jsonschema.Schema
	compileErr      error
)

// LoadSchemas компилирует все схемы из schemas/events. Повторные вызовы возвращают тот же результат.
func LoadSchemas() error {
	compileOnce.Do(func() {
		compiledSchemas, compileErr = compileAll(schemasFS)
	})
	return compileErr
}

func compileAll(fsys fs.FS) (map[string]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	var paths []string
	err := fs.WalkDir(fsys, "schemas/events", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		file, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		// ресурсы добавляются заранее, чтобы работали $ref между схемами
		if err := compiler.AddResource(path, file); err != nil {
			return fmt.Errorf("failed to add schema resource %s: %w", path, err)
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking schema resources: %w", err)
	}

	compiled := make(map[string]*jsonschema.Schema, len(paths))
	for _, path := range paths {
		key := keyFromPath(path)
		if key == "" {
			return nil, fmt.Errorf("schema path %s does not follow <event-name>/v<N>.json", path)
		}
		schema, err := compiler.Compile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", path, err)
		}
		compiled[key] = schema
	}
	return compiled, nil
}

// keyFromPath: "schemas/events/index-refresh-requested/v1.json" -> "IndexRefreshRequestedEvent/1.0.0"
func keyFromPath(path string) string {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(path, "schemas/events/"), ".json")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || !strings.HasPrefix(parts[1], "v") {
		return ""
	}

	caser := cases.Title(language.English)
	var name strings.Builder
	for _, word := range strings.Split(parts[0], "-") {
		name.WriteString(caser.String(word))
	}
	name.WriteString("Event")

	return name.String() + "/" + strings.TrimPrefix(parts[1], "v") + ".0.0"
}

// ValidateEvent проверяет тело сообщения по схеме его типа и версии
func ValidateEvent(eventType, eventVersion string, body []byte) error {
	if err := LoadSchemas(); err != nil {
		return err
	}

	schema, ok := compiledSchemas[eventType+"/"+eventVersion]
	if !ok {
		return fmt.Errorf("schema for event '%s' version '%s' not found", eventType, eventVersion)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("message body is not a valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}
