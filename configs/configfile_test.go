package configs

import (
	"strings"
	"testing"

	"github.com/swarmdeck/swarmdeck-server/examples"
	"gopkg.in/yaml.v3"
)

func Test_ServerConfigExample(t *testing.T) {
	configYAML := examples.SwarmdeckExampleConfig()
	var cfg ServerConfigFile
	decoder := yaml.NewDecoder(strings.NewReader(configYAML))
	decoder.KnownFields(true)
	err := decoder.Decode(&cfg)
	if err != nil {
		t.Fatalf("Error parsing swarmdeck config file: %v", err)
	}
	if cfg.Engine.Host == "" {
		t.Error("expected an engine host in the example config")
	}
	if cfg.Session.TTLHours == 0 {
		t.Error("expected a session ttl in the example config")
	}
}
