package shared

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const envFileOverride = "DOCSIG_ENV_FILE"

var dotenvLoadOnce sync.Once

// LoadDotEnv loads the nearest .env file once per process. DOCSIG_ENV_FILE
// points at an explicit file instead of searching upward from the working
// directory.
func LoadDotEnv() {
	dotenvLoadOnce.Do(func() {
		if explicit := strings.TrimSpace(os.Getenv(envFileOverride)); explicit != "" {
			loadDotEnvFile(explicit)
			return
		}

		cwd, err := os.Getwd()
		if err != nil {
			return
		}
		if candidate, ok := findDotEnv(cwd); ok {
			loadDotEnvFile(candidate)
		}
	})
}

func findDotEnv(start string) (string, bool) {
	current := start
	for {
		candidate := filepath.Join(current, ".env")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

func loadDotEnvFile(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	loadedAny := false
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := parseDotEnvLine(scanner.Text())
		if !ok {
			continue
		}
		if _, alreadySet := os.LookupEnv(key); alreadySet {
			continue
		}
		if setErr := os.Setenv(key, value); setErr == nil {
			loadedAny = true
		}
	}

	return loadedAny
}

func parseDotEnvLine(raw string) (string, string, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

	separator := strings.Index(line, "=")
	if separator <= 0 {
		return "", "", false
	}

	key := strings.TrimSpace(line[:separator])
	if !isValidEnvKey(key) {
		return "", "", false
	}

	value := strings.TrimSpace(line[separator+1:])
	if len(value) >= 2 {
		first := value[0]
		last := value[len(value)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	return key, value, true
}

func isValidEnvKey(key string) bool {
	if key == "" {
		return false
	}
	for index, character := range key {
		if (character >= 'A' && character <= 'Z') ||
			(character >= 'a' && character <= 'z') ||
			(index > 0 && character >= '0' && character <= '9') ||
			character == '_' {
			continue
		}
		return false
	}
	return true
}

func firstNonEmptyEnv(keys ...string) string {
	for _, key := range keys {
		value := strings.TrimSpace(os.Getenv(key))
		if value != "" {
			return value
		}
	}
	return ""
}
