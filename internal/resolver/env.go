package resolver

import "os"

// EnvProvider is a read-only key/value source consulted when a referenced
// path carries the reserved environment prefix but is absent from the
// document. Injecting it keeps the engine free of ambient global reads and
// lets tests supply a fake.
type EnvProvider interface {
	LookupEnv(key string) (string, bool)
}

// OSEnv resolves environment keys from the process environment.
type OSEnv struct{}

// LookupEnv implements EnvProvider.
func (OSEnv) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}
