package fhir

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DefaultCredsFile is the fallback credential file checked in the
// working directory when neither an explicit path nor environment
// variables supply credentials.
const DefaultCredsFile = "loinc_creds.txt"

// Environment variables consulted for credentials.
const (
	EnvUser = "LOINC_USER"
	EnvPass = "LOINC_PASS"
)

// Credentials holds a LOINC account username and password.
type Credentials struct {
	Username string
	Password string
}

// ResolveCredentials locates credentials in priority order: the
// explicit file path when non-empty, then the LOINC_USER and
// LOINC_PASS environment variables, then DefaultCredsFile in the
// working directory. An explicit path that cannot be read is an error;
// a missing fallback file is not, it just moves on to
// ErrNoCredentials.
func ResolveCredentials(path string) (Credentials, error) {
	if path != "" {
		c, err := readCredsFile(path)
		if err != nil {
			return Credentials{}, fmt.Errorf("reading credentials file %s: %w", path, err)
		}
		return c, nil
	}
	user, pass := os.Getenv(EnvUser), os.Getenv(EnvPass)
	if user != "" && pass != "" {
		return Credentials{Username: user, Password: pass}, nil
	}
	if _, err := os.Stat(DefaultCredsFile); err == nil {
		c, err := readCredsFile(DefaultCredsFile)
		if err != nil {
			return Credentials{}, fmt.Errorf("reading credentials file %s: %w", DefaultCredsFile, err)
		}
		return c, nil
	}
	return Credentials{}, ErrNoCredentials
}

// readCredsFile reads a two-line credential file: username on the
// first non-empty line, password on the second.
func readCredsFile(path string) (Credentials, error) {
	f, err := os.Open(path)
	if err != nil {
		return Credentials{}, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == 2 {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return Credentials{}, err
	}
	if len(lines) < 2 {
		return Credentials{}, fmt.Errorf("expected username and password on separate lines")
	}
	return Credentials{Username: lines[0], Password: lines[1]}, nil
}
