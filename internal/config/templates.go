package config

import (
	"fmt"
	"os"
)

func Template() string {
	return runtimeTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(runtimeTemplate), 0o600)
}

const runtimeTemplate = `backend = "sim"
check_stale = true

[heap]
initial_words = 4096
stress = false

[metrics]
enabled = true

[server]
addr = ":9200"
cors_origins = ["http://localhost:3000"]
`
