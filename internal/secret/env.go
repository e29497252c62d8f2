package secret

import (
	"os"
	"strings"
)

// EnvStore reads secrets from environment variables named prefix + KEY,
// with the key upper-cased and dashes and dots turned into underscores.
type EnvStore struct {
	prefix string
}

func NewEnvStore(prefix string) *EnvStore {
	return &EnvStore{prefix: prefix}
}

var envKey = strings.NewReplacer("-", "_", ".", "_", "/", "_")

func (e *EnvStore) name(key string) string {
	return e.prefix + strings.ToUpper(envKey.Replace(key))
}

func (e *EnvStore) Get(key string) ([]byte, error) {
	v, ok := os.LookupEnv(e.name(key))
	if !ok {
		return nil, nil
	}
	return []byte(v), nil
}
