// Package awsconfig reads and writes the shared AWS CLI config file.
package awsconfig

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/jmreicha/ssoprofile/internal/core"
)

const (
	profileSectionPrefix = "profile "
	ssoSessionPrefix     = "sso-session "
	defaultSection       = "default"
)

// Scan lists the section headers found in a config file.
type Scan struct {
	Profiles   []string
	Sessions   []string
	HasDefault bool

	// SessionDetails holds the start URL and region of each sso-session.
	SessionDetails map[string]Session
}

// ScanContent parses content and collects profile, default and sso-session
// headers. Lines the parser does not understand are ignored.
func ScanContent(content string) (*Scan, error) {
	scan := &Scan{}
	if strings.TrimSpace(content) == "" {
		return scan, nil
	}

	file, err := ini.LoadSources(ini.LoadOptions{
		Loose:                   true,
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, []byte(content))
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	for _, section := range file.Sections() {
		name := strings.TrimSpace(section.Name())
		switch {
		case name == defaultSection:
			scan.HasDefault = true
		case strings.HasPrefix(name, profileSectionPrefix):
			if profile := strings.TrimSpace(strings.TrimPrefix(name, profileSectionPrefix)); profile != "" {
				scan.Profiles = append(scan.Profiles, profile)
			}
		case strings.HasPrefix(name, ssoSessionPrefix):
			if session := strings.TrimSpace(strings.TrimPrefix(name, ssoSessionPrefix)); session != "" {
				scan.Sessions = append(scan.Sessions, session)
				if scan.SessionDetails == nil {
					scan.SessionDetails = make(map[string]Session)
				}
				scan.SessionDetails[session] = Session{
					Name:     session,
					StartURL: strings.TrimSpace(section.Key("sso_start_url").String()),
					Region:   strings.TrimSpace(section.Key("sso_region").String()),
				}
			}
		}
	}

	sort.Strings(scan.Profiles)
	sort.Strings(scan.Sessions)
	return scan, nil
}

// HasProfile reports whether a [profile name] section exists.
func (s *Scan) HasProfile(name string) bool {
	return slices.Contains(s.Profiles, name)
}

// HasSession reports whether an [sso-session name] section exists.
func (s *Scan) HasSession(name string) bool {
	return slices.Contains(s.Sessions, name)
}

// CheckSession fails when an sso-session with the same name already points
// at a different start URL or region. Profiles written for session would
// otherwise resolve against the other portal.
func (s *Scan) CheckSession(session Session) error {
	if !s.HasSession(session.Name) || s.sessionMatches(session) {
		return nil
	}

	current := s.SessionDetails[session.Name]
	reason := fmt.Sprintf("sso-session already exists with start URL %q and region %q, choose another --session-name",
		current.StartURL, current.Region)
	return &core.ValidationError{Field: "session name", Value: session.Name, Reason: reason}
}

// sessionMatches reports whether an identical sso-session section exists.
func (s *Scan) sessionMatches(session Session) bool {
	current, ok := s.SessionDetails[session.Name]
	if !ok {
		return false
	}
	return sameStartURL(current.StartURL, session.StartURL) &&
		strings.EqualFold(strings.TrimSpace(current.Region), strings.TrimSpace(session.Region))
}

func sameStartURL(a, b string) bool {
	normalize := func(url string) string {
		return strings.TrimSuffix(strings.TrimSpace(url), "/")
	}
	return normalize(a) == normalize(b)
}

// UsedNames returns every profile name a new profile must not reuse,
// including the legacy profile written at the end of each block.
func (s *Scan) UsedNames() []string {
	names := make([]string, 0, len(s.Profiles)+1)
	names = append(names, s.Profiles...)
	if !slices.Contains(names, LegacyProfile) {
		names = append(names, LegacyProfile)
	}
	return names
}
