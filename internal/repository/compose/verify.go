package compose

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// errImageNotFound is returned when no service uses the bumped image tag.
	errImageNotFound = errors.New("no service uses the expected image")
	// errEnvNotFound is returned when no service sets the variable to the new tag.
	errEnvNotFound = errors.New("no service sets the expected upstream version")
)

// composeFile is the part of a compose document checked after a rewrite.
type composeFile struct {
	Services map[string]*service `yaml:"services"`
}

// service is a single compose service.
type service struct {
	Image string `yaml:"image"`
	// Environment is either a mapping or a list of KEY=VALUE strings.
	Environment any `yaml:"environment"`
}

// Verify parses content as YAML and checks that some service runs
// imageName:packageVersion and some service sets envKey to upstreamTag.
func Verify(content []byte, rules Rules, packageVersion, upstreamTag string) error {
	var doc composeFile
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("parse compose document: %w", err)
	}

	wantImage := rules.ImageName + ":" + packageVersion
	imageFound, envFound := false, rules.EnvKey == ""

	for _, svc := range doc.Services {
		if svc == nil {
			continue
		}

		if svc.Image == wantImage {
			imageFound = true
		}

		if !envFound && envValue(svc.Environment, rules.EnvKey) == upstreamTag {
			envFound = true
		}
	}

	if !imageFound {
		return fmt.Errorf("%w: %s", errImageNotFound, wantImage)
	}

	if !envFound {
		return fmt.Errorf("%w: %s=%s", errEnvNotFound, rules.EnvKey, upstreamTag)
	}

	return nil
}

// envValue reads key from either environment form; missing keys yield "".
func envValue(environment any, key string) string {
	switch env := environment.(type) {
	case map[string]any:
		if v, ok := env[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
	case []any:
		for _, item := range env {
			if s, ok := item.(string); ok {
				if value, found := strings.CutPrefix(s, key+"="); found {
					return value
				}
			}
		}
	}

	return ""
}
