package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/imposter-project/imposter-expect/internal/model"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

var envVarPattern = regexp.MustCompile(`\$\{env\.([A-Za-z0-9_]+)(:-([^}]*))?\}`)

// LoadInitFile reads expectations from a YAML or JSON file. The document is
// either a single expectation or a list of them, using the same field names
// as the admin API.
func LoadInitFile(path string) ([]*model.Expectation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	logger.Infof("loading expectations from init file: %s", path)
	return ParseInitFile(data)
}

// ParseInitFile decodes init file content. Environment references of the form
// ${env.NAME} or ${env.NAME:-default} are substituted first.
func ParseInitFile(data []byte) ([]*model.Expectation, error) {
	data = []byte(substituteEnvVars(string(data)))

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	if doc == nil {
		return nil, nil
	}

	// YAML is a superset of JSON; re-encode so the admin wire decoding applies
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert init file to JSON: %w", err)
	}
	return model.DecodeExpectations(asJSON)
}

// substituteEnvVars replaces ${env.VAR} and ${env.VAR:-default} with environment variable values
func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		envVar := groups[1]
		defaultValue := groups[3]
		if value, exists := os.LookupEnv(envVar); exists {
			return value
		}
		return defaultValue
	})
}
