package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
)

// EnsureDirectories ensures the parent directories of the output files exist
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Output.CSVFile),
		filepath.Dir(c.Output.LogFile),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

// Address returns the host:port the stub gateway listens on
func (c *MockConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
